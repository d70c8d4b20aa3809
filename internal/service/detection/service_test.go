package detection

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"testing"

	"github.com/heartmarshall/medchan-backend/internal/domain"
)

func validInput() CreateInput {
	return CreateInput{
		BoundingBox: []int{10, 20, 30, 40},
		Confidence:  0.9,
		ClassID:     2,
		ClassName:   " pill ",
		ImagePath:   "images/CheMed123/7.jpg",
	}
}

// --- Validate tests ---

func TestCreateInput_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		mutate     func(*CreateInput)
		wantFields []string
	}{
		{"valid", func(*CreateInput) {}, nil},
		{"confidence lower bound", func(i *CreateInput) { i.Confidence = 0 }, nil},
		{"confidence upper bound", func(i *CreateInput) { i.Confidence = 1 }, nil},
		{"short box", func(i *CreateInput) { i.BoundingBox = []int{1, 2, 3} }, []string{"bounding_box"}},
		{"long box", func(i *CreateInput) { i.BoundingBox = []int{1, 2, 3, 4, 5} }, []string{"bounding_box"}},
		{"confidence above 1", func(i *CreateInput) { i.Confidence = 1.01 }, []string{"confidence"}},
		{"confidence negative", func(i *CreateInput) { i.Confidence = -0.1 }, []string{"confidence"}},
		{"confidence NaN", func(i *CreateInput) { i.Confidence = math.NaN() }, []string{"confidence"}},
		{"negative class id", func(i *CreateInput) { i.ClassID = -1 }, []string{"class_id"}},
		{"blank names", func(i *CreateInput) { i.ClassName = " "; i.ImagePath = "" }, []string{"class_name", "image_path"}},
		{"everything wrong", func(i *CreateInput) {
			*i = CreateInput{Confidence: 2}
		}, []string{"bounding_box", "confidence", "class_name", "image_path"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			in := validInput()
			tt.mutate(&in)
			err := in.Validate()

			if len(tt.wantFields) == 0 {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}

			var ve *domain.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if len(ve.Errors) != len(tt.wantFields) {
				t.Fatalf("got %d field errors %+v, want %v", len(ve.Errors), ve.Errors, tt.wantFields)
			}
			for i, f := range tt.wantFields {
				if ve.Errors[i].Field != f {
					t.Errorf("errors[%d].Field = %q, want %q", i, ve.Errors[i].Field, f)
				}
			}
		})
	}
}

// --- Create tests ---

func TestService_Create_Success(t *testing.T) {
	t.Parallel()

	repo := &detectionRepoMock{
		CreateFunc: func(_ context.Context, d domain.Detection) (*domain.Detection, error) {
			d.ID = 17
			return &d, nil
		},
	}
	svc := NewService(slog.Default(), repo)

	got, err := svc.Create(context.Background(), validInput())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.ID != 17 {
		t.Errorf("ID = %d, want 17", got.ID)
	}
	if len(repo.CreateCalls()) != 1 {
		t.Fatalf("expected 1 Create call, got %d", len(repo.CreateCalls()))
	}
	if stored := repo.CreateCalls()[0].D; stored.ClassName != "pill" {
		t.Errorf("ClassName = %q, want trimmed %q", stored.ClassName, "pill")
	}
}

func TestService_Create_InvalidSkipsRepo(t *testing.T) {
	t.Parallel()

	repo := &detectionRepoMock{}
	svc := NewService(slog.Default(), repo)

	in := validInput()
	in.BoundingBox = nil
	_, err := svc.Create(context.Background(), in)

	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if len(repo.CreateCalls()) != 0 {
		t.Fatal("repo must not be called for invalid input")
	}
}

func TestService_Create_RepoError(t *testing.T) {
	t.Parallel()

	dbErr := errors.New("connection reset")
	repo := &detectionRepoMock{
		CreateFunc: func(context.Context, domain.Detection) (*domain.Detection, error) { return nil, dbErr },
	}
	svc := NewService(slog.Default(), repo)

	_, err := svc.Create(context.Background(), validInput())
	if !errors.Is(err, dbErr) {
		t.Fatalf("expected wrapped repo error, got %v", err)
	}
}

// --- List tests ---

func TestService_List_DefaultsLimit(t *testing.T) {
	t.Parallel()

	repo := &detectionRepoMock{
		ListFunc: func(context.Context, int, int) ([]domain.Detection, error) {
			return []domain.Detection{{ID: 1}}, nil
		},
	}
	svc := NewService(slog.Default(), repo)

	got, err := svc.List(context.Background(), ListInput{Skip: 5})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(got) != 1 {
		t.Errorf("len = %d, want 1", len(got))
	}
	call := repo.ListCalls()[0]
	if call.Offset != 5 || call.Limit != domain.DefaultPageLimit {
		t.Errorf("List(offset=%d, limit=%d), want (5, %d)", call.Offset, call.Limit, domain.DefaultPageLimit)
	}
}

func TestService_List_InvalidPaging(t *testing.T) {
	t.Parallel()

	svc := NewService(slog.Default(), &detectionRepoMock{})

	for _, in := range []ListInput{{Skip: -1}, {Limit: -5}, {Limit: domain.MaxPageLimit + 1}} {
		if _, err := svc.List(context.Background(), in); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("List(%+v) error = %v, want ErrValidation", in, err)
		}
	}
}
