package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/heartmarshall/medchan-backend/internal/domain"
	"github.com/heartmarshall/medchan-backend/internal/service/detection"
)

type detectionService interface {
	Create(ctx context.Context, input detection.CreateInput) (*domain.Detection, error)
	List(ctx context.Context, input detection.ListInput) ([]domain.Detection, error)
}

// DetectionHandler serves the detection_data endpoints.
type DetectionHandler struct {
	svc detectionService
	log *slog.Logger
}

// NewDetectionHandler creates a DetectionHandler.
func NewDetectionHandler(svc detectionService, logger *slog.Logger) *DetectionHandler {
	return &DetectionHandler{svc: svc, log: logger.With("handler", "detection")}
}

// detectionRequest uses pointers so an absent field is told apart from a zero.
type detectionRequest struct {
	BoundingBox []int    `json:"bounding_box"`
	Confidence  *float64 `json:"confidence"`
	ClassID     *int     `json:"class_id"`
	ClassName   *string  `json:"class_name"`
	ImagePath   *string  `json:"image_path"`
}

func (r detectionRequest) input() (detection.CreateInput, error) {
	var errs []domain.FieldError
	required := func(field string, present bool) {
		if !present {
			errs = append(errs, domain.FieldError{Field: field, Message: "required"})
		}
	}
	required("bounding_box", r.BoundingBox != nil)
	required("confidence", r.Confidence != nil)
	required("class_id", r.ClassID != nil)
	required("class_name", r.ClassName != nil)
	required("image_path", r.ImagePath != nil)
	if len(errs) > 0 {
		return detection.CreateInput{}, domain.NewValidationErrors(errs)
	}

	return detection.CreateInput{
		BoundingBox: r.BoundingBox,
		Confidence:  *r.Confidence,
		ClassID:     *r.ClassID,
		ClassName:   *r.ClassName,
		ImagePath:   *r.ImagePath,
	}, nil
}

type detectionResponse struct {
	ID          int64     `json:"id"`
	BoundingBox []int     `json:"bounding_box"`
	Confidence  float64   `json:"confidence"`
	ClassID     int       `json:"class_id"`
	ClassName   string    `json:"class_name"`
	ImagePath   string    `json:"image_path"`
	CreatedAt   time.Time `json:"created_at"`
}

// Create handles POST /detection_data/.
func (h *DetectionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req detectionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	input, err := req.input()
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	d, err := h.svc.Create(r.Context(), input)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toDetectionResponse(*d))
}

// List handles GET /detection_data/?skip=&limit=.
func (h *DetectionHandler) List(w http.ResponseWriter, r *http.Request) {
	skip, limit, err := pagingParams(r)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	detections, err := h.svc.List(r.Context(), detection.ListInput{Skip: skip, Limit: limit})
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	resp := make([]detectionResponse, 0, len(detections))
	for _, d := range detections {
		resp = append(resp, toDetectionResponse(d))
	}
	writeJSON(w, http.StatusOK, resp)
}

func toDetectionResponse(d domain.Detection) detectionResponse {
	return detectionResponse{
		ID:          d.ID,
		BoundingBox: d.BoundingBox,
		Confidence:  d.Confidence,
		ClassID:     d.ClassID,
		ClassName:   d.ClassName,
		ImagePath:   d.ImagePath,
		CreatedAt:   d.CreatedAt,
	}
}
