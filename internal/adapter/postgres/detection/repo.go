// Package detection implements the detection record repository on PostgreSQL.
package detection

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/medchan-backend/internal/adapter/postgres"
	"github.com/heartmarshall/medchan-backend/internal/domain"
)

const table = "detection_data"

// Repo stores and lists object-detection results.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new detection repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Create inserts d and returns it with the generated id and created_at.
func (r *Repo) Create(ctx context.Context, d domain.Detection) (*domain.Detection, error) {
	box, err := json.Marshal(d.BoundingBox)
	if err != nil {
		return nil, fmt.Errorf("encode bounding_box: %w", err)
	}

	query, args, err := postgres.Builder.
		Insert(table).
		Columns("bounding_box", "confidence", "class_id", "class_name", "image_path").
		Values(box, d.Confidence, d.ClassID, d.ClassName, d.ImagePath).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)
	if err := q.QueryRow(ctx, query, args...).Scan(&d.ID, &d.CreatedAt); err != nil {
		return nil, postgres.MapError(err, "detection", d.ImagePath)
	}
	return &d, nil
}

// List returns a page of detections ordered by id.
func (r *Repo) List(ctx context.Context, offset, limit int) ([]domain.Detection, error) {
	query, args, err := postgres.Builder.
		Select("id", "bounding_box", "confidence", "class_id", "class_name", "image_path", "created_at").
		From(table).
		OrderBy("id").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, postgres.MapError(err, "detections", offset)
	}
	defer rows.Close()

	out := []domain.Detection{}
	for rows.Next() {
		d, err := scanDetection(rows)
		if err != nil {
			return nil, postgres.MapError(err, "detections", offset)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError(err, "detections", offset)
	}
	return out, nil
}

func scanDetection(row pgx.Row) (domain.Detection, error) {
	var (
		d   domain.Detection
		box []byte
	)
	if err := row.Scan(&d.ID, &box, &d.Confidence, &d.ClassID, &d.ClassName, &d.ImagePath, &d.CreatedAt); err != nil {
		return domain.Detection{}, err
	}
	if err := json.Unmarshal(box, &d.BoundingBox); err != nil {
		return domain.Detection{}, fmt.Errorf("decode bounding_box: %w", err)
	}
	return d, nil
}
