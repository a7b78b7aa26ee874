package repository

import (
	"testing"

	"seccode_backend/internal/model"
)

func TestGetOrCreateInitializesZeroedRow(t *testing.T) {
	repo := NewUsageRepository(newTestDB(t))

	counter, err := repo.GetOrCreate(1, "2026-08-30")
	if err != nil {
		t.Fatalf("getOrCreate: %v", err)
	}
	if counter.PuzzlesCompleted != 0 || counter.LabsCompleted != 0 || counter.ProjectsStarted != 0 {
		t.Errorf("new counter not zeroed: %+v", counter)
	}

	// 再次读取拿到同一行
	again, err := repo.GetOrCreate(1, "2026-08-30")
	if err != nil {
		t.Fatalf("second getOrCreate: %v", err)
	}
	if again.ID != counter.ID {
		t.Errorf("expected same row, got id %d then %d", counter.ID, again.ID)
	}

	var count int64
	repo.DB.Model(&model.UsageCounter{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected single row per (user, week), got %d", count)
	}
}

func TestIncrementTouchesOnlyItsColumn(t *testing.T) {
	repo := NewUsageRepository(newTestDB(t))

	counter, err := repo.Increment(2, "2026-08-30", model.KindPuzzle)
	if err != nil {
		t.Fatalf("increment: %v", err)
	}
	if counter.PuzzlesCompleted != 1 {
		t.Errorf("puzzles = %d, want 1", counter.PuzzlesCompleted)
	}
	if counter.LabsCompleted != 0 || counter.ProjectsStarted != 0 {
		t.Errorf("unrelated counters changed: %+v", counter)
	}

	counter, err = repo.Increment(2, "2026-08-30", model.KindLab)
	if err != nil {
		t.Fatalf("increment lab: %v", err)
	}
	if counter.PuzzlesCompleted != 1 || counter.LabsCompleted != 1 {
		t.Errorf("counters wrong after lab increment: %+v", counter)
	}
}

func TestWeekKeysKeptApart(t *testing.T) {
	repo := NewUsageRepository(newTestDB(t))

	if _, err := repo.Increment(3, "2026-08-23", model.KindPuzzle); err != nil {
		t.Fatalf("increment old week: %v", err)
	}

	// 新的一周从零开始，不继承上一周
	fresh, err := repo.GetOrCreate(3, "2026-08-30")
	if err != nil {
		t.Fatalf("getOrCreate new week: %v", err)
	}
	if fresh.PuzzlesCompleted != 0 {
		t.Errorf("new week inherited usage: %d", fresh.PuzzlesCompleted)
	}

	// 历史周的行保留
	var count int64
	repo.DB.Model(&model.UsageCounter{}).Where("user_id = ?", 3).Count(&count)
	if count != 2 {
		t.Errorf("expected 2 rows (old + new week), got %d", count)
	}
}

func TestIncrementRejectsUnknownKind(t *testing.T) {
	repo := NewUsageRepository(newTestDB(t))

	if _, err := repo.Increment(4, "2026-08-30", model.ContentKind("course")); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}
