package detection

import (
	"context"
	"fmt"

	"github.com/heartmarshall/medchan-backend/internal/domain"
)

// List returns a page of detections ordered by id.
func (s *Service) List(ctx context.Context, input ListInput) ([]domain.Detection, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	detections, err := s.detections.List(ctx, input.Skip, input.limit())
	if err != nil {
		return nil, fmt.Errorf("list detections: %w", err)
	}
	return detections, nil
}
