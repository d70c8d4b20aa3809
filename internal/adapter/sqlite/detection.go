package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/heartmarshall/medchan-backend/internal/domain"
)

const detectionTable = "detection_data"

// DetectionStore stores and lists object-detection results.
type DetectionStore struct {
	db *sql.DB
}

// NewDetectionStore creates a DetectionStore on an opened database.
func NewDetectionStore(db *sql.DB) *DetectionStore {
	return &DetectionStore{db: db}
}

// Create inserts d and returns it with the generated id and created_at.
func (s *DetectionStore) Create(ctx context.Context, d domain.Detection) (*domain.Detection, error) {
	box, err := json.Marshal(d.BoundingBox)
	if err != nil {
		return nil, fmt.Errorf("encode bounding_box: %w", err)
	}

	var createdAt string
	err = Builder.
		Insert(detectionTable).
		Columns("bounding_box", "confidence", "class_id", "class_name", "image_path").
		Values(string(box), d.Confidence, d.ClassID, d.ClassName, d.ImagePath).
		Suffix("RETURNING id, created_at").
		RunWith(s.db).
		QueryRowContext(ctx).
		Scan(&d.ID, &createdAt)
	if err != nil {
		return nil, mapError(err, "detection", d.ImagePath)
	}
	if d.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	return &d, nil
}

// List returns a page of detections ordered by id.
func (s *DetectionStore) List(ctx context.Context, offset, limit int) ([]domain.Detection, error) {
	rows, err := Builder.
		Select("id", "bounding_box", "confidence", "class_id", "class_name", "image_path", "created_at").
		From(detectionTable).
		OrderBy("id").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		RunWith(s.db).
		QueryContext(ctx)
	if err != nil {
		return nil, mapError(err, "detections", offset)
	}
	defer rows.Close()

	out := []domain.Detection{}
	for rows.Next() {
		var (
			d         domain.Detection
			box       string
			createdAt string
		)
		if err := rows.Scan(&d.ID, &box, &d.Confidence, &d.ClassID, &d.ClassName, &d.ImagePath, &createdAt); err != nil {
			return nil, mapError(err, "detections", offset)
		}
		if err := json.Unmarshal([]byte(box), &d.BoundingBox); err != nil {
			return nil, fmt.Errorf("decode bounding_box: %w", err)
		}
		if d.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "detections", offset)
	}
	return out, nil
}
