package ports

import (
	"context"

	"github.com/sm8ta/patient_records/internal/core/domain"
)

type TokenIssuer interface {
	CreateToken(user *domain.User) (string, error)
}

type TokenVerifier interface {
	VerifyToken(token string) (domain.TokenPayload, error)
}

type AuthGateway interface {
	Login(ctx context.Context, email, password string) (domain.Session, error)
	Logout(ctx context.Context) error
	CurrentSession() domain.Session
}
