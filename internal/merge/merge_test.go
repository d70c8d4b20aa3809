package merge

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/heartmarshall/medchan-backend/internal/domain"
)

func rec(source string, id int64) domain.NormalizedRecord {
	return domain.NormalizedRecord{SourceID: source, ItemID: id}
}

func TestMerge_AppendsInGroupOrder(t *testing.T) {
	t.Parallel()

	groups := []Group[domain.NormalizedRecord]{
		{Source: "DoctorsET", Items: []domain.NormalizedRecord{rec("DoctorsET", 2), rec("DoctorsET", 1)}},
		{Source: "CheMed123"},
		{Source: "EAHCI", Items: []domain.NormalizedRecord{rec("EAHCI", 5)}},
	}

	got := Merge(groups)
	want := []domain.NormalizedRecord{rec("DoctorsET", 2), rec("DoctorsET", 1), rec("EAHCI", 5)}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Merge() mismatch (-want +got):\n%s", diff)
	}
}

func TestMerge_KeepsDuplicates(t *testing.T) {
	t.Parallel()

	groups := []Group[domain.NormalizedRecord]{
		{Items: []domain.NormalizedRecord{rec("A", 1)}},
		{Items: []domain.NormalizedRecord{rec("A", 1)}},
	}

	if got := Merge(groups); len(got) != 2 {
		t.Errorf("len(Merge()) = %d, want 2", len(got))
	}
}

func TestMerge_Empty(t *testing.T) {
	t.Parallel()

	got := Merge[domain.NormalizedRecord](nil)
	if len(got) != 0 {
		t.Errorf("Merge(nil) = %v, want empty", got)
	}
}

func TestDedupe_FirstOccurrenceWins(t *testing.T) {
	t.Parallel()

	first := rec("A", 1)
	first.Text = "first"
	second := rec("A", 1)
	second.Text = "second"

	got := Dedupe([]domain.NormalizedRecord{first, rec("B", 1), second, rec("A", 2)}, domain.NormalizedRecord.Key)
	want := []domain.NormalizedRecord{first, rec("B", 1), rec("A", 2)}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Dedupe() mismatch (-want +got):\n%s", diff)
	}
}

func TestDedupe_RawKeyKeepsDistinctMalformedIDs(t *testing.T) {
	t.Parallel()

	items := []domain.RawItem{
		{SourceID: "A", RawID: "x"},
		{SourceID: "A", RawID: "y"},
		{SourceID: "A", RawID: "x"},
		{SourceID: "A", ItemID: 3, RawID: "3"},
		{SourceID: "A", ItemID: 3, RawID: "3.0"},
	}

	got := Dedupe(items, RawKey)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3: %+v", len(got), got)
	}
}

func TestLoadAndMerge(t *testing.T) {
	t.Parallel()

	files := map[string][]int{
		"a.csv": {1, 2},
		"b.csv": {3},
	}
	load := func(path string) ([]int, error) {
		items, ok := files[path]
		if !ok {
			return nil, errors.New("no such file")
		}
		return items, nil
	}

	got, err := LoadAndMerge([]string{"b.csv", "a.csv"}, load)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]int{3, 1, 2}, got); diff != "" {
		t.Errorf("LoadAndMerge() mismatch (-want +got):\n%s", diff)
	}

	_, err = LoadAndMerge([]string{"a.csv", "missing.csv"}, load)
	if !errors.Is(err, domain.ErrSourceRead) {
		t.Fatalf("expected ErrSourceRead, got %v", err)
	}
	var sre *domain.SourceReadError
	if !errors.As(err, &sre) || sre.Source != "missing.csv" {
		t.Errorf("error should name the failed file, got %v", err)
	}
}
