package detection

import (
	"context"
	"log/slog"

	"github.com/heartmarshall/medchan-backend/internal/domain"
)

type detectionRepo interface {
	Create(ctx context.Context, d domain.Detection) (*domain.Detection, error)
	List(ctx context.Context, offset, limit int) ([]domain.Detection, error)
}

// Service stores and lists object-detection results.
type Service struct {
	detections detectionRepo
	log        *slog.Logger
}

// NewService creates a new detection service.
func NewService(log *slog.Logger, detections detectionRepo) *Service {
	return &Service{
		detections: detections,
		log:        log.With("service", "detection"),
	}
}
