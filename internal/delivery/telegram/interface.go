package telegram

import (
	"context"

	"github.com/wildlifemlxy/WWF-Telegram-Bot/internal/domain"
)

type StateProvider interface {
	GetStateByID(ctx context.Context, userID int64) *domain.Session
	PeekStateByID(ctx context.Context, userID int64) (*domain.Session, bool)
	SetState(ctx context.Context, userID int64, state *domain.Session) error
	ResetUserState(ctx context.Context, userID int64)
	GetCorrelationID(ctx context.Context, userID int64) string
}

type SpeciesResolver interface {
	Identify(ctx context.Context, image []byte, location *string) (domain.Identification, error)
}
