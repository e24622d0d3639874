package face

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/face"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmployeeRepository struct {
	employee.EmployeeRepository
	templates []employee.FaceTemplate
	calls     int
	failWith  error
}

func (f *fakeEmployeeRepository) ListFaceTemplates(ctx context.Context) ([]employee.FaceTemplate, error) {
	f.calls++
	if f.failWith != nil {
		return nil, f.failWith
	}
	return f.templates, nil
}

func gallery() []employee.FaceTemplate {
	return []employee.FaceTemplate{
		{EmployeeID: "emp-1", Name: "Asha Rao", EmployeeCode: "EMP-001", Descriptor: []float64{0, 0, 0}},
		{EmployeeID: "emp-2", Name: "Ben Okafor", EmployeeCode: "EMP-002", Descriptor: []float64{1, 1, 1}},
		{EmployeeID: "emp-3", Name: "Old Model", EmployeeCode: "EMP-003", Descriptor: []float64{0.1, 0.1}},
	}
}

func TestEuclideanDistance(t *testing.T) {
	d, ok := euclideanDistance([]float64{0, 0}, []float64{3, 4})
	assert.True(t, ok)
	assert.InDelta(t, 5.0, d, 1e-9)

	_, ok = euclideanDistance([]float64{0, 0}, []float64{0, 0, 0})
	assert.False(t, ok)
}

func TestVerify(t *testing.T) {
	ctx := context.Background()

	t.Run("closest employee under threshold wins", func(t *testing.T) {
		repo := &fakeEmployeeRepository{templates: gallery()}
		svc := NewFaceService(repo, 0, time.Minute)

		resp, err := svc.Verify(ctx, face.VerifyRequest{Descriptor: []float64{0.9, 0.9, 0.95}})
		require.NoError(t, err)
		assert.True(t, resp.Match)
		assert.Equal(t, "emp-2", resp.EmployeeID)
		assert.Equal(t, "EMP-002", resp.EmployeeCode)
		assert.Less(t, resp.Distance, DefaultThreshold)
	})

	t.Run("nobody close enough", func(t *testing.T) {
		repo := &fakeEmployeeRepository{templates: gallery()}
		svc := NewFaceService(repo, 0.6, time.Minute)

		resp, err := svc.Verify(ctx, face.VerifyRequest{Descriptor: []float64{0.5, 0.5, 0.5}})
		require.NoError(t, err)
		assert.False(t, resp.Match)
		assert.Empty(t, resp.EmployeeID)
	})

	t.Run("mismatched dimensions are skipped", func(t *testing.T) {
		repo := &fakeEmployeeRepository{templates: gallery()}
		svc := NewFaceService(repo, 0.6, time.Minute)

		resp, err := svc.Verify(ctx, face.VerifyRequest{Descriptor: []float64{0.1, 0.1}})
		require.NoError(t, err)
		assert.True(t, resp.Match)
		assert.Equal(t, "emp-3", resp.EmployeeID)
	})

	t.Run("empty gallery", func(t *testing.T) {
		svc := NewFaceService(&fakeEmployeeRepository{}, 0.6, time.Minute)

		resp, err := svc.Verify(ctx, face.VerifyRequest{Descriptor: []float64{0, 0, 0}})
		require.NoError(t, err)
		assert.False(t, resp.Match)
	})

	t.Run("missing descriptor", func(t *testing.T) {
		svc := NewFaceService(&fakeEmployeeRepository{}, 0.6, time.Minute)

		_, err := svc.Verify(ctx, face.VerifyRequest{})
		var verrs validator.ValidationErrors
		assert.ErrorAs(t, err, &verrs)
	})

	t.Run("repository failure", func(t *testing.T) {
		repo := &fakeEmployeeRepository{failWith: errors.New("connection refused")}
		svc := NewFaceService(repo, 0.6, time.Minute)

		_, err := svc.Verify(ctx, face.VerifyRequest{Descriptor: []float64{0, 0, 0}})
		assert.Error(t, err)
	})
}

func TestGalleryCache(t *testing.T) {
	ctx := context.Background()
	repo := &fakeEmployeeRepository{templates: gallery()}
	svc := NewFaceService(repo, 0.6, time.Minute)

	req := face.VerifyRequest{Descriptor: []float64{0, 0, 0}}
	for i := 0; i < 3; i++ {
		_, err := svc.Verify(ctx, req)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, repo.calls)

	// A newly enrolled face is visible after invalidation.
	repo.templates = append(repo.templates, employee.FaceTemplate{
		EmployeeID: "emp-4", Name: "New Hire", EmployeeCode: "EMP-004", Descriptor: []float64{5, 5, 5},
	})
	svc.Invalidate()

	resp, err := svc.Verify(ctx, face.VerifyRequest{Descriptor: []float64{5, 5, 5}})
	require.NoError(t, err)
	assert.Equal(t, "emp-4", resp.EmployeeID)
	assert.Equal(t, 2, repo.calls)
}
