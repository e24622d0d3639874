package face

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/face"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/metrics"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultThreshold is the largest descriptor distance still treated as a match.
const DefaultThreshold = 0.6

const galleryKey = "gallery"

// Match outcomes.
const (
	resultMatched   = "matched"
	resultUnmatched = "unmatched"
)

type FaceServiceImpl struct {
	employee.EmployeeRepository
	threshold float64
	cache     *expirable.LRU[string, []employee.FaceTemplate]

	// generation is bumped on every invalidation so a load that raced with
	// one is not written back to the cache.
	mu         sync.Mutex
	generation uint64
}

func NewFaceService(employeeRepo employee.EmployeeRepository, threshold float64, cacheTTL time.Duration) face.FaceService {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &FaceServiceImpl{
		EmployeeRepository: employeeRepo,
		threshold:          threshold,
		cache:              expirable.NewLRU[string, []employee.FaceTemplate](1, nil, cacheTTL),
	}
}

// Verify implements face.FaceService.
func (s *FaceServiceImpl) Verify(ctx context.Context, req face.VerifyRequest) (face.MatchResponse, error) {
	if err := req.Validate(); err != nil {
		return face.MatchResponse{}, err
	}

	templates, err := s.gallery(ctx)
	if err != nil {
		metrics.FaceMatchesTotal.WithLabelValues(metrics.ResultError).Inc()
		return face.MatchResponse{}, fmt.Errorf("failed to load face gallery: %w", err)
	}

	var best *employee.FaceTemplate
	bestDistance := s.threshold
	for i := range templates {
		distance, ok := euclideanDistance(req.Descriptor, templates[i].Descriptor)
		if !ok {
			continue
		}
		if distance < bestDistance {
			bestDistance = distance
			best = &templates[i]
		}
	}

	if best == nil {
		metrics.FaceMatchesTotal.WithLabelValues(resultUnmatched).Inc()
		return face.MatchResponse{Match: false}, nil
	}

	metrics.FaceMatchesTotal.WithLabelValues(resultMatched).Inc()
	return face.MatchResponse{
		Match:        true,
		EmployeeID:   best.EmployeeID,
		Name:         best.Name,
		EmployeeCode: best.EmployeeCode,
		Distance:     bestDistance,
	}, nil
}

// Invalidate implements face.FaceService.
func (s *FaceServiceImpl) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.cache.Purge()
}

func (s *FaceServiceImpl) gallery(ctx context.Context) ([]employee.FaceTemplate, error) {
	if templates, ok := s.cache.Get(galleryKey); ok {
		metrics.FaceCacheHitsTotal.Inc()
		return templates, nil
	}
	metrics.FaceCacheMissesTotal.Inc()

	s.mu.Lock()
	generation := s.generation
	s.mu.Unlock()

	templates, err := s.EmployeeRepository.ListFaceTemplates(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if generation == s.generation {
		s.cache.Add(galleryKey, templates)
	}
	s.mu.Unlock()

	return templates, nil
}

// euclideanDistance reports false when the descriptors have different dimensions.
func euclideanDistance(a, b []float64) (float64, bool) {
	if len(a) != len(b) || len(a) == 0 {
		return 0, false
	}
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum), true
}
