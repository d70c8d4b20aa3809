package detection

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/heartmarshall/medchan-backend/internal/domain"
)

// Create validates and stores a detection, returning it with its id.
func (s *Service) Create(ctx context.Context, input CreateInput) (*domain.Detection, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	d, err := s.detections.Create(ctx, domain.Detection{
		BoundingBox: input.BoundingBox,
		Confidence:  input.Confidence,
		ClassID:     input.ClassID,
		ClassName:   strings.TrimSpace(input.ClassName),
		ImagePath:   strings.TrimSpace(input.ImagePath),
	})
	if err != nil {
		return nil, fmt.Errorf("create detection: %w", err)
	}

	s.log.InfoContext(ctx, "detection stored",
		slog.Int64("id", d.ID),
		slog.String("class_name", d.ClassName),
		slog.String("image_path", d.ImagePath),
	)
	return d, nil
}
