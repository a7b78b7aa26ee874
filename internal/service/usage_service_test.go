package service

import (
	"testing"
	"time"

	"seccode_backend/internal/model"
	"seccode_backend/internal/repository"
)

func TestWeekStartOf(t *testing.T) {
	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{
			name: "midweek maps back to sunday",
			at:   time.Date(2026, 8, 26, 15, 30, 0, 0, time.UTC), // Wednesday
			want: "2026-08-23",
		},
		{
			name: "saturday still belongs to the running week",
			at:   time.Date(2026, 8, 29, 23, 59, 59, 0, time.UTC), // Saturday
			want: "2026-08-23",
		},
		{
			name: "sunday starts a new week",
			at:   time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC), // Sunday
			want: "2026-08-30",
		},
		{
			name: "sunday evening keeps the same key",
			at:   time.Date(2026, 8, 30, 21, 0, 0, 0, time.UTC),
			want: "2026-08-30",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := WeekStartOf(tc.at); got != tc.want {
				t.Errorf("WeekStartOf(%v) = %q, want %q", tc.at, got, tc.want)
			}
		})
	}
}

func TestCounterRollsOverAtWeekBoundary(t *testing.T) {
	repo := repository.NewUsageRepository(newTestDB(t))
	svc := NewUsageService(repo)

	saturday := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	sunday := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	svc.now = fixedClock(saturday)
	if _, err := svc.Increment(1, model.KindPuzzle); err != nil {
		t.Fatalf("increment: %v", err)
	}
	satCounter, err := svc.GetCounter(1)
	if err != nil {
		t.Fatalf("getCounter: %v", err)
	}
	if satCounter.PuzzlesCompleted != 1 {
		t.Fatalf("saturday count = %d, want 1", satCounter.PuzzlesCompleted)
	}

	svc.now = fixedClock(sunday)
	sunCounter, err := svc.GetCounter(1)
	if err != nil {
		t.Fatalf("getCounter sunday: %v", err)
	}
	if sunCounter.WeekStart == satCounter.WeekStart {
		t.Error("saturday and sunday share a week key")
	}
	if sunCounter.PuzzlesCompleted != 0 {
		t.Errorf("sunday inherited saturday usage: %d", sunCounter.PuzzlesCompleted)
	}
}
