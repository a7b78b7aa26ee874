package repository

import (
	"testing"

	"seccode_backend/internal/model"
)

func TestChallengeUpdatePersistsFields(t *testing.T) {
	repo := NewChallengeRepository(newTestDB(t))

	challenge := &model.Challenge{
		Slug:    "safe-addition",
		Kind:    model.KindPuzzle,
		Title:   "old title",
		Enabled: true,
		TestCases: []model.TestCase{
			{Input: "1 2", ExpectedOutput: "3"},
		},
	}
	if err := repo.Create(challenge); err != nil {
		t.Fatalf("create: %v", err)
	}

	loaded, err := repo.FindByID(challenge.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	loaded.Title = "new title"
	loaded.Difficulty = "hard"
	if err := repo.Update(loaded); err != nil {
		t.Fatalf("update: %v", err)
	}

	again, err := repo.FindBySlug("safe-addition")
	if err != nil {
		t.Fatalf("find after update: %v", err)
	}
	if again.Title != "new title" || again.Difficulty != "hard" {
		t.Errorf("update not persisted: title=%q difficulty=%q", again.Title, again.Difficulty)
	}
	// 基础字段更新不触碰测试用例
	if len(again.TestCases) != 1 {
		t.Errorf("update touched test cases: %d", len(again.TestCases))
	}
}

func TestChallengeDeleteHidesChallenge(t *testing.T) {
	repo := NewChallengeRepository(newTestDB(t))

	challenge := &model.Challenge{Slug: "gone", Kind: model.KindPuzzle, Title: "t", Enabled: true}
	if err := repo.Create(challenge); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Delete(challenge.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.FindBySlug("gone"); err == nil {
		t.Fatal("deleted challenge still found")
	}
}
