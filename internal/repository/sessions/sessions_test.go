package sessions

import (
	"context"
	"testing"

	"github.com/wildlifemlxy/WWF-Telegram-Bot/internal/domain"
)

func TestGetStateByIDCreatesLazily(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	if _, ok := store.PeekStateByID(ctx, 1); ok {
		t.Fatal("expected no entry before first access")
	}

	state := store.GetStateByID(ctx, 1)
	if state == nil {
		t.Fatal("expected a session")
	}
	if state.Step != domain.StepIdle {
		t.Fatalf("fresh session must start idle, got %q", state.Step)
	}

	if _, ok := store.PeekStateByID(ctx, 1); !ok {
		t.Fatal("expected entry after first access")
	}
}

func TestResetRemovesEntry(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	state := store.GetStateByID(ctx, 7)
	state.PhotoFileID = "file-1"
	state.Step = domain.StepAwaitingLocation
	if err := store.SetState(ctx, 7, state); err != nil {
		t.Fatalf("SetState failed: %v", err)
	}

	store.ResetUserState(ctx, 7)

	if _, ok := store.PeekStateByID(ctx, 7); ok {
		t.Fatal("expected entry removed after reset")
	}
	if fresh := store.GetStateByID(ctx, 7); fresh.PhotoFileID != "" {
		t.Fatalf("session after reset must be empty, got %+v", fresh)
	}
}

func TestCorrelationIDIsStable(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	first := store.GetCorrelationID(ctx, 3)
	if first == "" {
		t.Fatal("expected a correlation id")
	}
	if second := store.GetCorrelationID(ctx, 3); second != first {
		t.Fatalf("correlation id changed: %q -> %q", first, second)
	}

	store.ResetUserState(ctx, 3)
	if third := store.GetCorrelationID(ctx, 3); third == first {
		t.Fatal("reset must start a new correlation id")
	}
}

func TestGetCurrentStatesID(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	store.GetStateByID(ctx, 1)
	store.GetStateByID(ctx, 2)
	store.ResetUserState(ctx, 1)

	ids := store.GetCurrentStatesID(ctx)
	if len(ids) != 1 || ids[0] != 2 {
		t.Fatalf("unexpected ids: %v", ids)
	}
}
