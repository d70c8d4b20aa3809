// Package message serves paged reads of the stored channel messages.
package message

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/heartmarshall/medchan-backend/internal/domain"
)

type messageRepo interface {
	List(ctx context.Context, filter domain.MessageFilter) ([]domain.StoredMessage, error)
}

// Service lists stored messages.
type Service struct {
	messages messageRepo
	log      *slog.Logger
}

// NewService creates a new message service.
func NewService(log *slog.Logger, messages messageRepo) *Service {
	return &Service{
		messages: messages,
		log:      log.With("service", "message"),
	}
}

// ListInput holds the channel filter and paging parameters.
// Channel accepts "@name", "name" or a t.me link; empty means every channel.
type ListInput struct {
	Channel string
	Skip    int
	Limit   int
}

// List returns a page of messages ordered by (channel_username, message_id).
func (s *Service) List(ctx context.Context, input ListInput) ([]domain.StoredMessage, error) {
	filter, err := input.filter()
	if err != nil {
		return nil, err
	}

	messages, err := s.messages.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return messages, nil
}

func (i ListInput) filter() (domain.MessageFilter, error) {
	var errs []domain.FieldError
	filter := domain.MessageFilter{Offset: i.Skip, Limit: i.Limit}

	if strings.TrimSpace(i.Channel) != "" {
		src, err := domain.ParseSource(i.Channel)
		if err != nil {
			errs = append(errs, domain.FieldError{Field: "channel", Message: "invalid channel username"})
		} else {
			filter.Channel = src.Username()
		}
	}
	if i.Skip < 0 {
		errs = append(errs, domain.FieldError{Field: "skip", Message: "must not be negative"})
	}
	switch {
	case i.Limit == 0:
		filter.Limit = domain.DefaultPageLimit
	case i.Limit < 0 || i.Limit > domain.MaxPageLimit:
		errs = append(errs, domain.FieldError{
			Field:   "limit",
			Message: fmt.Sprintf("must be between 1 and %d", domain.MaxPageLimit),
		})
	}

	if len(errs) > 0 {
		return domain.MessageFilter{}, &domain.ValidationError{Errors: errs}
	}
	return filter, nil
}
