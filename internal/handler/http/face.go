package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/face"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
)

type FaceHandler interface {
	Verify(w http.ResponseWriter, r *http.Request)
}

type faceHandlerImpl struct {
	faceService face.FaceService
}

func NewFaceHandler(faceService face.FaceService) FaceHandler {
	return &faceHandlerImpl{
		faceService: faceService,
	}
}

// Verify implements FaceHandler. An unknown face is a successful lookup with match=false.
func (h *faceHandlerImpl) Verify(w http.ResponseWriter, r *http.Request) {
	var req face.VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Face verify decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.faceService.Verify(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
