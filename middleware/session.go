package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"orderdesk/globals"
)

// SessionClaims is the payload of the session cookie.
type SessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// Sessions gives every browser a signed, random session id. It is not
// authentication: it only keeps one visitor's cart apart from another's.
type Sessions struct {
	secret []byte
	cookie string
	logger *zap.Logger
}

func NewSessions(secret []byte, cookieName string, logger *zap.Logger) *Sessions {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sessions{secret: secret, cookie: cookieName, logger: logger}
}

// Handler puts the caller's session id into the request context, issuing a
// new cookie when none or an invalid one is presented.
func (s *Sessions) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ""
		if c, err := r.Cookie(s.cookie); err == nil {
			if id, err = s.Parse(c.Value); err != nil {
				s.logger.Debug("discarding session cookie", zap.Error(err))
				id = ""
			}
		}
		if id == "" {
			var err error
			id, err = s.issue(w)
			if err != nil {
				s.logger.Error("issue session", zap.Error(err))
				http.Error(w, "Session unavailable", http.StatusInternalServerError)
				return
			}
		}
		next.ServeHTTP(w, r.WithContext(globals.WithSessionID(r.Context(), id)))
	})
}

func (s *Sessions) issue(w http.ResponseWriter) (string, error) {
	id := uuid.NewString()
	token, err := s.Sign(id)
	if err != nil {
		return "", err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id, nil
}

// Sign returns the cookie value for session id.
func (s *Sessions) Sign(id string) (string, error) {
	claims := SessionClaims{
		SessionID: id,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return token, nil
}

// Parse verifies a cookie value and returns its session id.
func (s *Sessions) Parse(token string) (string, error) {
	claims := &SessionClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", fmt.Errorf("invalid session: %w", err)
	}
	if _, err := uuid.Parse(claims.SessionID); err != nil {
		return "", errors.New("invalid session: malformed id")
	}
	return claims.SessionID, nil
}
