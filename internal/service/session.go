package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/msomdec/user-desk/internal/domain"
)

const sessionIssuer = "user-desk"

// SessionService issues and validates the signed tokens that bind a browser
// to its workspace. The token carries no identity beyond the workspace ID.
type SessionService struct {
	secret []byte
	ttl    time.Duration
}

// NewSessionService creates a new SessionService signing with HS256.
func NewSessionService(secret string, ttl time.Duration) *SessionService {
	return &SessionService{secret: []byte(secret), ttl: ttl}
}

// TTL returns how long issued tokens stay valid.
func (s *SessionService) TTL() time.Duration {
	return s.ttl
}

// NewWorkspace allocates a fresh workspace ID and returns it with its token.
func (s *SessionService) NewWorkspace() (id, token string, err error) {
	id = uuid.NewString()
	token, err = s.Sign(id)
	if err != nil {
		return "", "", err
	}
	return id, token, nil
}

// Sign returns a token for the given workspace ID.
func (s *SessionService) Sign(workspaceID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   workspaceID,
		Issuer:    sessionIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign workspace token: %w", err)
	}
	return signed, nil
}

// Validate parses a token and returns the workspace ID it was issued for.
func (s *SessionService) Validate(tokenString string) (string, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// Renew validates a token and, once less than half of its lifetime is left,
// returns a freshly signed token for the same workspace. renewed is empty
// while the token is still young.
func (s *SessionService) Renew(tokenString string) (id, renewed string, err error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return "", "", err
	}

	if time.Until(claims.ExpiresAt.Time) >= s.ttl/2 {
		return claims.Subject, "", nil
	}
	renewed, err = s.Sign(claims.Subject)
	if err != nil {
		return "", "", err
	}
	return claims.Subject, renewed, nil
}

func (s *SessionService) parse(tokenString string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, domain.ErrUnauthorized
	}

	if _, err := uuid.Parse(claims.Subject); err != nil {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}
