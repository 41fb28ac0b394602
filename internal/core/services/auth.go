package services

import (
	"context"
	"time"

	"github.com/sm8ta/patient_records/internal/core/domain"
	"github.com/sm8ta/patient_records/internal/core/ports"
	"golang.org/x/crypto/bcrypt"
)

type demoIdentity struct {
	user         domain.User
	passwordHash []byte
}

// DemoAccounts is the fixed identity table standing in for an identity
// provider. Every account uses the password "password".
var DemoAccounts = []domain.User{
	{ID: "1", Email: "admin@example.com", Name: "Admin User", Role: domain.Admin},
	{ID: "2", Email: "user@example.com", Name: "Regular User", Role: domain.AppUser},
}

const demoPassword = "password"

type AuthService struct {
	identities   map[string]demoIdentity
	tokenService ports.TokenIssuer
	sessions     ports.SessionStore
	logger       ports.LoggerPort
	delay        time.Duration
}

// NewAuthService hashes the demo passwords once. delay simulates the
// round trip of a real login endpoint and may be zero.
func NewAuthService(
	tokenService ports.TokenIssuer,
	sessions ports.SessionStore,
	logger ports.LoggerPort,
	delay time.Duration,
) (*AuthService, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	identities := make(map[string]demoIdentity, len(DemoAccounts))
	for _, u := range DemoAccounts {
		identities[u.Email] = demoIdentity{user: u, passwordHash: hash}
	}

	return &AuthService{
		identities:   identities,
		tokenService: tokenService,
		sessions:     sessions,
		logger:       logger,
		delay:        delay,
	}, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (domain.Session, error) {
	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return domain.Session{}, ctx.Err()
		case <-timer.C:
		}
	}

	identity, ok := s.identities[email]
	if !ok {
		s.logger.Info("Login attempt for unknown account", map[string]interface{}{
			"email": email,
		})
		return domain.Session{}, domain.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword(identity.passwordHash, []byte(password)); err != nil {
		s.logger.Info("Invalid password attempt", map[string]interface{}{
			"email": email,
		})
		return domain.Session{}, domain.ErrInvalidCredentials
	}

	user := identity.user
	token, err := s.tokenService.CreateToken(&user)
	if err != nil {
		s.logger.Error("Failed to create token", map[string]interface{}{
			"error":   err.Error(),
			"user_id": user.ID,
		})
		return domain.Session{}, err
	}

	if err := s.sessions.Save(ctx, token, user); err != nil {
		s.logger.Error("Failed to persist session", map[string]interface{}{
			"error":   err.Error(),
			"user_id": user.ID,
		})
		return domain.Session{}, err
	}

	s.logger.Info("User logged in", map[string]interface{}{
		"user_id": user.ID,
		"role":    user.Role,
	})
	return domain.Session{Token: token, User: &user}, nil
}

// Logout is safe to call when no session exists.
func (s *AuthService) Logout(ctx context.Context) error {
	wasLoggedIn := s.sessions.Current().Authenticated()

	if err := s.sessions.Clear(ctx); err != nil {
		s.logger.Error("Failed to clear session", map[string]interface{}{
			"error": err.Error(),
		})
		return err
	}

	if wasLoggedIn {
		s.logger.Info("User logged out", nil)
	}
	return nil
}

func (s *AuthService) CurrentSession() domain.Session {
	return s.sessions.Current()
}

var _ ports.AuthGateway = (*AuthService)(nil)
