package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sm8ta/patient_records/internal/core/domain"
	"github.com/sm8ta/patient_records/internal/core/ports"
)

type JWTTokenService struct {
	secretKey  []byte
	expiration time.Duration
	logger     ports.LoggerPort
}

func NewJWTTokenService(secretKey string, durationStr string, logger ports.LoggerPort) *JWTTokenService {
	duration, err := time.ParseDuration(durationStr)
	if err != nil {
		logger.Error("Invalid token duration, using default 24h", map[string]interface{}{
			"duration": durationStr,
			"error":    err.Error(),
		})
		duration = 24 * time.Hour
	}

	return &JWTTokenService{
		secretKey:  []byte(secretKey),
		expiration: duration,
		logger:     logger,
	}
}

func (j *JWTTokenService) CreateToken(user *domain.User) (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		j.logger.Error("Failed to generate uuid", map[string]interface{}{
			"error":   err.Error(),
			"user_id": user.ID,
			"method":  "CreateToken",
		})
		return "", err
	}

	issuedAt := time.Now()
	expiredAt := issuedAt.Add(j.expiration)

	claims := jwt.MapClaims{
		"id":      id.String(),
		"user_id": user.ID,
		"role":    string(user.Role),
		"iat":     issuedAt.Unix(),
		"exp":     expiredAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.secretKey)
}

func (j *JWTTokenService) VerifyToken(token string) (domain.TokenPayload, error) {
	parsedToken, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		return j.secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}))
	if err != nil {
		j.logger.Debug("Failed to parse jwt", map[string]interface{}{
			"error":  err.Error(),
			"method": "VerifyToken",
		})
		return domain.TokenPayload{}, err
	}

	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	if !ok {
		return domain.TokenPayload{}, errors.New("failed to read claims")
	}

	id, ok := claims["id"].(string)
	if !ok {
		return domain.TokenPayload{}, errors.New("invalid id claim")
	}
	if _, err := uuid.Parse(id); err != nil {
		return domain.TokenPayload{}, errors.New("invalid id claim")
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return domain.TokenPayload{}, errors.New("invalid user_id claim")
	}

	role, ok := claims["role"].(string)
	if !ok || role == "" {
		return domain.TokenPayload{}, errors.New("invalid role claim")
	}

	return domain.TokenPayload{
		ID:     id,
		UserID: userID,
		Role:   domain.UserRole(role),
	}, nil
}

// AnyBearer accepts every non-empty token, matching a backend that only
// checks that the header is present.
type AnyBearer struct{}

func (AnyBearer) VerifyToken(token string) (domain.TokenPayload, error) {
	if token == "" {
		return domain.TokenPayload{}, errors.New("empty token")
	}
	return domain.TokenPayload{ID: token}, nil
}

var (
	_ ports.TokenIssuer   = (*JWTTokenService)(nil)
	_ ports.TokenVerifier = (*JWTTokenService)(nil)
	_ ports.TokenVerifier = AnyBearer{}
)
