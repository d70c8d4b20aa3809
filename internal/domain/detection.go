package domain

import "time"

// BoundingBoxLen is the number of coordinates in a detection bounding box.
const BoundingBoxLen = 4

// Detection is an object-detection result stored through the API.
type Detection struct {
	ID          int64
	BoundingBox []int
	Confidence  float64
	ClassID     int
	ClassName   string
	ImagePath   string
	CreatedAt   time.Time
}
