package detection

import (
	"fmt"
	"math"
	"strings"

	"github.com/heartmarshall/medchan-backend/internal/domain"
)

// CreateInput holds the parameters for storing a detection.
type CreateInput struct {
	BoundingBox []int
	Confidence  float64
	ClassID     int
	ClassName   string
	ImagePath   string
}

// Validate checks all fields and collects all errors.
func (i CreateInput) Validate() error {
	var errs []domain.FieldError

	if len(i.BoundingBox) != domain.BoundingBoxLen {
		errs = append(errs, domain.FieldError{
			Field:   "bounding_box",
			Message: fmt.Sprintf("must have exactly %d values", domain.BoundingBoxLen),
		})
	}
	if math.IsNaN(i.Confidence) || i.Confidence < 0 || i.Confidence > 1 {
		errs = append(errs, domain.FieldError{Field: "confidence", Message: "must be between 0 and 1"})
	}
	if i.ClassID < 0 {
		errs = append(errs, domain.FieldError{Field: "class_id", Message: "must not be negative"})
	}
	if strings.TrimSpace(i.ClassName) == "" {
		errs = append(errs, domain.FieldError{Field: "class_name", Message: "required"})
	}
	if strings.TrimSpace(i.ImagePath) == "" {
		errs = append(errs, domain.FieldError{Field: "image_path", Message: "required"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// ListInput holds paging parameters. A zero Limit means the default page size.
type ListInput struct {
	Skip  int
	Limit int
}

// Validate checks all fields and collects all errors.
func (i ListInput) Validate() error {
	var errs []domain.FieldError

	if i.Skip < 0 {
		errs = append(errs, domain.FieldError{Field: "skip", Message: "must not be negative"})
	}
	if i.Limit < 0 || i.Limit > domain.MaxPageLimit {
		errs = append(errs, domain.FieldError{
			Field:   "limit",
			Message: fmt.Sprintf("must be between 1 and %d", domain.MaxPageLimit),
		})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

func (i ListInput) limit() int {
	if i.Limit == 0 {
		return domain.DefaultPageLimit
	}
	return i.Limit
}
