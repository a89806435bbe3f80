package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/myanedu/portal-api/pkg/config"
	appErrors "github.com/myanedu/portal-api/pkg/errors"
)

// PortalClaims is the signed payload of a portal token. The token carries
// nothing but the session id; everything else lives in the session store.
type PortalClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// TokenService mints and validates the bearer token the browser holds
// between visits.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenService(cfg config.SessionConfig) *TokenService {
	return &TokenService{secret: []byte(cfg.TokenSecret), ttl: cfg.TokenTTL}
}

// Issue mints a token for a fresh session id and returns both.
func (s *TokenService) Issue() (token, sessionID string, expiresAt time.Time, err error) {
	sessionID = uuid.NewString()
	token, expiresAt, err = s.IssueFor(sessionID)
	return token, sessionID, expiresAt, err
}

// IssueFor mints a token bound to an existing session id.
func (s *TokenService) IssueFor(sessionID string) (string, time.Time, error) {
	issuedAt := time.Now().UTC()
	expiresAt := issuedAt.Add(s.ttl)
	claims := &PortalClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Validate parses a token and returns the session id it carries.
func (s *TokenService) Validate(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &PortalClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}
	claims, ok := token.Claims.(*PortalClaims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return "", appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	return claims.SessionID, nil
}
