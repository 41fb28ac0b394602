package ports

import (
	"context"

	"github.com/sm8ta/patient_records/internal/core/domain"
)

type SessionStore interface {
	Load(ctx context.Context) domain.Session
	Save(ctx context.Context, token string, user domain.User) error
	Clear(ctx context.Context) error
	Current() domain.Session
}
