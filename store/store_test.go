package store

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndGetRun(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	want := Run{
		ID:           "3f1c",
		CreatedAt:    time.Date(2025, 3, 14, 9, 26, 53, 589793000, time.UTC),
		Scenario:     "base",
		HorizonDays:  365,
		NumPaths:     5000,
		Seed:         math.MaxUint64,
		SnapshotDate: "2025-03-13",
		Summary:      []byte(`{"prob_loss":0.41}`),
	}
	if err := s.SaveRun(ctx, want); err != nil {
		t.Fatalf("SaveRun() error = %v", err)
	}
	got, err := s.GetRun(ctx, "3f1c")
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("GetRun() mismatch (-want +got):\n%s", diff)
	}

	if err := s.SaveRun(ctx, want); err == nil {
		t.Errorf("SaveRun() twice with the same id succeeded")
	}
	if _, err := s.GetRun(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetRun(nope) error = %v, want %v", err, ErrNotFound)
	}
}

func TestListRuns(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		r := Run{ID: id, CreatedAt: start.Add(time.Duration(i) * time.Hour), Scenario: "bull", NumPaths: 1, Summary: []byte(`{}`)}
		if err := s.SaveRun(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := s.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	var ids []string
	for _, r := range runs {
		ids = append(ids, r.ID)
	}
	if diff := cmp.Diff([]string{"c", "b"}, ids); diff != "" {
		t.Errorf("ListRuns(2) mismatch (-want +got):\n%s", diff)
	}
}

func TestListRunsSubSecond(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	older := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	runs := []Run{
		{ID: "older", CreatedAt: older, Scenario: "base", NumPaths: 1, Summary: []byte(`{}`)},
		{ID: "newer", CreatedAt: older.Add(500 * time.Millisecond), Scenario: "base", NumPaths: 1, Summary: []byte(`{}`)},
	}
	for _, r := range runs {
		if err := s.SaveRun(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	var ids []string
	for _, r := range got {
		ids = append(ids, r.ID)
	}
	if diff := cmp.Diff([]string{"newer", "older"}, ids); diff != "" {
		t.Errorf("ListRuns(2) mismatch (-want +got):\n%s", diff)
	}
	if !got[1].CreatedAt.Equal(older) {
		t.Errorf("ListRuns(2)[1].CreatedAt = %v, want %v", got[1].CreatedAt, older)
	}
}
