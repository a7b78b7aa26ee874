package service

import (
	"testing"
	"time"

	"seccode_backend/internal/config"
	"seccode_backend/internal/model"
	"seccode_backend/internal/repository"
)

func newEntitlement(t *testing.T) (*EntitlementService, *UsageService) {
	t.Helper()
	repo := repository.NewUsageRepository(newTestDB(t))
	usage := NewUsageService(repo)
	usage.now = fixedClock(time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC))
	return NewEntitlementService(usage, &config.Config{}), usage
}

func freeUser(id uint) *model.User {
	u := &model.User{Plan: model.PlanFree}
	u.ID = id
	return u
}

func proUser(id uint) *model.User {
	u := &model.User{Plan: model.PlanPro}
	u.ID = id
	return u
}

func TestDefaultLimits(t *testing.T) {
	svc, _ := newEntitlement(t)

	if got := svc.LimitFor(model.KindPuzzle); got != 7 {
		t.Errorf("puzzle limit = %d, want 7", got)
	}
	if got := svc.LimitFor(model.KindLab); got != 3 {
		t.Errorf("lab limit = %d, want 3", got)
	}
	if got := svc.LimitFor(model.KindProject); got != 2 {
		t.Errorf("project limit = %d, want 2", got)
	}
}

func TestConfigOverridesLimits(t *testing.T) {
	svc, _ := newEntitlement(t)

	svc.ApplyLimits(&config.Config{Limits: config.LimitsConfig{Puzzles: 10}})
	if got := svc.LimitFor(model.KindPuzzle); got != 10 {
		t.Errorf("puzzle limit = %d, want 10", got)
	}
	// 未配置的类型沿用默认值
	if got := svc.LimitFor(model.KindLab); got != 3 {
		t.Errorf("lab limit = %d, want 3", got)
	}
}

func TestLastAllowedUseThenBlocked(t *testing.T) {
	svc, _ := newEntitlement(t)
	user := freeUser(1)

	// 用到离上限还剩一次
	for i := 0; i < DefaultProjectLimit-1; i++ {
		decision, err := svc.Consume(user, model.KindProject)
		if err != nil {
			t.Fatalf("consume %d: %v", i, err)
		}
		if !decision.Allowed {
			t.Fatalf("consume %d unexpectedly blocked", i)
		}
	}

	decision, err := svc.Check(user, model.KindProject)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !decision.Allowed {
		t.Fatal("check at limit-1 should allow")
	}

	// 第 N 次放行，是最后一次被计入
	decision, err = svc.Consume(user, model.KindProject)
	if err != nil {
		t.Fatalf("final consume: %v", err)
	}
	if !decision.Allowed {
		t.Fatal("nth use should be allowed")
	}

	// 第 N+1 次被拦下
	decision, err = svc.Check(user, model.KindProject)
	if err != nil {
		t.Fatalf("check after limit: %v", err)
	}
	if decision.Allowed {
		t.Fatal("check past limit should block")
	}
	if !decision.LimitReached || decision.LimitType != model.KindProject {
		t.Errorf("blocked decision malformed: %+v", decision)
	}
	if decision.CurrentUsage != DefaultProjectLimit || decision.Limit != DefaultProjectLimit {
		t.Errorf("blocked payload usage/limit = %d/%d, want %d/%d",
			decision.CurrentUsage, decision.Limit, DefaultProjectLimit, DefaultProjectLimit)
	}
}

func TestBlockedConsumeHasNoSideEffects(t *testing.T) {
	svc, usage := newEntitlement(t)
	user := freeUser(2)

	for i := 0; i < DefaultLabLimit; i++ {
		if _, err := svc.Consume(user, model.KindLab); err != nil {
			t.Fatalf("consume %d: %v", i, err)
		}
	}

	decision, err := svc.Consume(user, model.KindLab)
	if err != nil {
		t.Fatalf("blocked consume: %v", err)
	}
	if decision.Allowed {
		t.Fatal("expected blocked decision")
	}

	counter, err := usage.GetCounter(user.ID)
	if err != nil {
		t.Fatalf("getCounter: %v", err)
	}
	if counter.LabsCompleted != DefaultLabLimit {
		t.Errorf("blocked attempt incremented counter: %d", counter.LabsCompleted)
	}
}

func TestProUserBypassesGate(t *testing.T) {
	svc, usage := newEntitlement(t)
	user := proUser(3)

	for i := 0; i < DefaultPuzzleLimit*2; i++ {
		decision, err := svc.Consume(user, model.KindPuzzle)
		if err != nil {
			t.Fatalf("consume %d: %v", i, err)
		}
		if !decision.Allowed {
			t.Fatalf("pro user blocked on attempt %d", i)
		}
	}

	// 专业版不产生计数写入
	counter, err := usage.GetCounter(user.ID)
	if err != nil {
		t.Fatalf("getCounter: %v", err)
	}
	if counter.PuzzlesCompleted != 0 {
		t.Errorf("pro usage counted: %d", counter.PuzzlesCompleted)
	}
}

func TestKindsAreIndependent(t *testing.T) {
	svc, _ := newEntitlement(t)
	user := freeUser(4)

	for i := 0; i < DefaultLabLimit; i++ {
		if _, err := svc.Consume(user, model.KindLab); err != nil {
			t.Fatalf("consume lab %d: %v", i, err)
		}
	}

	decision, err := svc.Check(user, model.KindPuzzle)
	if err != nil {
		t.Fatalf("check puzzle: %v", err)
	}
	if !decision.Allowed {
		t.Error("lab limit must not block puzzles")
	}
}
