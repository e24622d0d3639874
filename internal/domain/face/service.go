package face

import "context"

type FaceService interface {
	// Verify finds the closest registered face under the match threshold
	Verify(ctx context.Context, req VerifyRequest) (MatchResponse, error)
	// Invalidate drops the cached gallery after a face is added or changed
	Invalidate()
}
