package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/todoboard/task-tracker/internal/core/domain"
	"github.com/todoboard/task-tracker/internal/core/ports"
)

const defaultSessionTTL = 24 * time.Hour

// SessionService resolves cookie tokens to sessions and drives the
// Anonymous/Authenticated transitions.
//
// The cookie token is an HS256 JWT whose subject is the random session id.
// Everything else (user, flashes) stays server-side in the SessionStore.
type SessionService struct {
	store  ports.SessionStore
	users  ports.UserRepository
	secret []byte
	ttl    time.Duration
	logger zerolog.Logger
}

func NewSessionService(store ports.SessionStore, users ports.UserRepository, secret string, ttl time.Duration, logger zerolog.Logger) *SessionService {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &SessionService{store: store, users: users, secret: []byte(secret), ttl: ttl, logger: logger}
}

func (s *SessionService) TTL() time.Duration { return s.ttl }

// Resolve loads the session named by token and the user bound to it.
func (s *SessionService) Resolve(ctx context.Context, token string) (*domain.Session, *domain.Actor, error) {
	anonymous := &domain.Actor{}
	if token == "" {
		return nil, anonymous, nil
	}

	sid, err := s.parseToken(token)
	if err != nil {
		s.logger.Debug().Err(err).Msg("rejected session token")
		return nil, anonymous, nil
	}

	sess, err := s.store.Get(ctx, sid)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, anonymous, nil
		}
		return nil, nil, fmt.Errorf("load session: %w", err)
	}

	if !sess.Authenticated() {
		return sess, anonymous, nil
	}

	user, err := s.users.FindByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return sess, anonymous, domain.ErrSessionInvalid
		}
		return nil, nil, fmt.Errorf("resolve session user: %w", err)
	}
	return sess, &domain.Actor{User: user}, nil
}

// Login moves the session to Authenticated(user). The session id is rotated
// so a token issued before login cannot be replayed as the logged-in user.
func (s *SessionService) Login(ctx context.Context, sess *domain.Session, user *domain.User) (*domain.Session, string, error) {
	next := s.newSession()
	next.UserID = user.ID
	if sess != nil {
		next.Flashes = sess.Flashes
		if err := s.store.Delete(ctx, sess.ID); err != nil {
			s.logger.Warn().Err(err).Msg("failed to drop pre-login session")
		}
	}

	if err := s.store.Save(ctx, next, s.ttl); err != nil {
		return nil, "", fmt.Errorf("save session: %w", err)
	}

	token, err := s.signToken(next.ID)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info().Int64("user_id", user.ID).Msg("session authenticated")
	return next, token, nil
}

// Logout moves the session back to Anonymous. The record itself is kept so a
// flash can still reach the login page.
func (s *SessionService) Logout(ctx context.Context, sess *domain.Session) error {
	if sess == nil {
		return nil
	}
	sess.UserID = 0
	if err := s.store.Save(ctx, sess, s.ttl); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Destroy removes the session record entirely.
func (s *SessionService) Destroy(ctx context.Context, sess *domain.Session) error {
	if sess == nil {
		return nil
	}
	if err := s.store.Delete(ctx, sess.ID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *SessionService) AddFlash(ctx context.Context, sess *domain.Session, f domain.Flash) (*domain.Session, string, error) {
	var token string
	if sess == nil {
		sess = s.newSession()
		t, err := s.signToken(sess.ID)
		if err != nil {
			return nil, "", err
		}
		token = t
	}

	sess.Flashes = append(sess.Flashes, f)
	if err := s.store.Save(ctx, sess, s.ttl); err != nil {
		return nil, "", fmt.Errorf("save session: %w", err)
	}
	return sess, token, nil
}

// PopFlashes returns the queued notices and clears them.
func (s *SessionService) PopFlashes(ctx context.Context, sess *domain.Session) ([]domain.Flash, error) {
	if sess == nil || len(sess.Flashes) == 0 {
		return nil, nil
	}
	flashes := sess.Flashes
	sess.Flashes = nil
	if err := s.store.Save(ctx, sess, s.ttl); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return flashes, nil
}

func (s *SessionService) newSession() *domain.Session {
	return &domain.Session{ID: uuid.NewString(), CreatedAt: time.Now().UTC()}
}

func (s *SessionService) signToken(sid string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   sid,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

func (s *SessionService) parseToken(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", fmt.Errorf("invalid session token: %w", err)
	}
	if !tkn.Valid {
		return "", errors.New("invalid session token")
	}
	if claims.Subject == "" {
		return "", errors.New("session token without subject")
	}
	return claims.Subject, nil
}
