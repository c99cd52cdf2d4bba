package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"sadco.org/internal/scope"
)

const localIssuer = "sadco-local"

// ErrInvalidToken indicates a locally issued token failed validation.
var ErrInvalidToken = errors.New("auth: invalid token")

// localClaims carry the introspection fields inside a locally signed JWT.
type localClaims struct {
	ClientID string `json:"client_id"`
	Scope    string `json:"scope"`
	jwt.RegisteredClaims
}

// LocalIntrospector verifies HS256 JWTs minted by IssueLocalToken. It stands
// in for the Hydra admin API in development and tests; an invalid or expired
// token introspects as inactive rather than erroring, matching how a real
// introspection endpoint answers.
type LocalIntrospector struct {
	secret []byte
}

// NewLocalIntrospector builds a local introspector from a shared secret.
func NewLocalIntrospector(secret string) (*LocalIntrospector, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errors.New("auth: local introspection secret is required")
	}
	return &LocalIntrospector{secret: []byte(secret)}, nil
}

// IssueLocalToken signs a development token for the given client, subject
// and scopes. Pass sub equal to clientID to simulate a client-credentials
// grant.
func (l *LocalIntrospector) IssueLocalToken(clientID, sub string, scopes []scope.Scope, ttl time.Duration) (string, error) {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return "", errors.New("auth: clientID is required")
	}
	if sub = strings.TrimSpace(sub); sub == "" {
		sub = clientID
	}
	if ttl <= 0 {
		return "", errors.New("auth: ttl must be greater than zero")
	}

	parts := make([]string, 0, len(scopes))
	for _, s := range scopes {
		parts = append(parts, string(s))
	}
	now := time.Now().UTC()
	claims := localClaims{
		ClientID: clientID,
		Scope:    strings.Join(parts, " "),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    localIssuer,
			Subject:   sub,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(l.secret)
}

// Introspect implements Introspector over locally signed tokens.
func (l *LocalIntrospector) Introspect(_ context.Context, token string, requiredScopes []scope.Scope) (Introspection, error) {
	claims, err := l.parse(token)
	if err != nil {
		return Introspection{}, nil // inactive
	}

	granted := map[string]struct{}{}
	for _, s := range strings.Fields(claims.Scope) {
		granted[s] = struct{}{}
	}
	for _, s := range requiredScopes {
		if _, ok := granted[string(s)]; !ok {
			return Introspection{}, nil
		}
	}
	return Introspection{
		Active:   true,
		ClientID: claims.ClientID,
		Sub:      claims.Subject,
	}, nil
}

func (l *LocalIntrospector) parse(token string) (*localClaims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}
	parsed, err := jwt.ParseWithClaims(token, &localClaims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return l.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*localClaims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Issuer != localIssuer {
		return nil, ErrInvalidToken
	}
	if strings.TrimSpace(claims.ClientID) == "" || strings.TrimSpace(claims.Subject) == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
