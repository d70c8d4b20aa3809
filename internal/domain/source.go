package domain

import "strings"

// Source identifies one channel. ID is the channel username without the
// leading "@" and is used as the cursor key and the natural-key prefix.
type Source struct {
	ID string
}

// ParseSource builds a Source from a channel reference such as "@DoctorsET",
// "DoctorsET" or "https://t.me/DoctorsET".
func ParseSource(ref string) (Source, error) {
	id := strings.TrimSpace(ref)
	id = strings.TrimPrefix(id, "https://t.me/s/")
	id = strings.TrimPrefix(id, "https://t.me/")
	id = strings.TrimPrefix(id, "@")
	id = strings.TrimSuffix(id, "/")

	if id == "" {
		return Source{}, NewValidationError("source", "required")
	}
	for _, r := range id {
		if !isUsernameRune(r) {
			return Source{}, NewValidationError("source", "invalid channel username "+ref)
		}
	}
	return Source{ID: id}, nil
}

// ParseSources parses every reference; the first invalid one aborts.
func ParseSources(refs []string) ([]Source, error) {
	sources := make([]Source, 0, len(refs))
	for _, ref := range refs {
		s, err := ParseSource(ref)
		if err != nil {
			return nil, err
		}
		sources = append(sources, s)
	}
	return sources, nil
}

// Username returns the "@"-prefixed channel username.
func (s Source) Username() string {
	return "@" + s.ID
}

// ImagesCursorKey is the cursor key of the image scrape for this source,
// kept apart from the message cursor.
func (s Source) ImagesCursorKey() string {
	return s.ID + "_images"
}

func (s Source) String() string { return s.ID }

func isUsernameRune(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
