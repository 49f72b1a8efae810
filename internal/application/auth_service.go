package application

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/oksasatya/go-ddd-todo/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-todo/internal/domain/repository"
	"github.com/oksasatya/go-ddd-todo/pkg/helpers"
)

var (
	ErrProviderDisabled = errors.New("sign-in provider not configured")
	ErrInvalidState     = errors.New("invalid or expired sign-in state")
	ErrSignInFailed     = errors.New("sign-in failed")
)

const signInStateTTL = 10 * time.Minute

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

// Identity is a resolved caller.
type Identity struct {
	UserID    string
	SessionID string
}

// AuthService signs users in through the identity provider and resolves
// session tokens back to user ids.
type AuthService struct {
	Users      repo.UserRepository
	Provider   IdentityProvider
	Sessions   SessionStore
	JWT        *helpers.JWTManager
	Avatars    AvatarMirror
	Logger     *logrus.Logger
	SessionTTL time.Duration
}

func NewAuthService(users repo.UserRepository, provider IdentityProvider, sessions SessionStore, jwt *helpers.JWTManager, avatars AvatarMirror, logger *logrus.Logger, sessionTTL time.Duration) *AuthService {
	return &AuthService{
		Users:      users,
		Provider:   provider,
		Sessions:   sessions,
		JWT:        jwt,
		Avatars:    avatars,
		Logger:     logger,
		SessionTTL: sessionTTL,
	}
}

// SafeCallbackPath keeps only same-site relative paths.
func SafeCallbackPath(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.Contains(raw, "\\") {
		return "/"
	}
	u, err := url.Parse(raw)
	if err != nil || u.IsAbs() || u.Host != "" {
		return "/"
	}
	return raw
}

// BeginSignIn stores a one-shot state and returns the provider consent URL.
func (s *AuthService) BeginSignIn(ctx context.Context, callbackPath string) (string, error) {
	if s.Provider == nil {
		return "", ErrProviderDisabled
	}
	state := uuid.NewString()
	st := SignInState{Verifier: oauth2.GenerateVerifier(), CallbackURL: SafeCallbackPath(callbackPath)}
	if err := s.Sessions.SaveState(ctx, state, st, signInStateTTL); err != nil {
		return "", err
	}
	return s.Provider.AuthCodeURL(state, st.Verifier), nil
}

// CompleteSignIn consumes the state, exchanges the code and opens a session.
func (s *AuthService) CompleteSignIn(ctx context.Context, state, code string) (*entity.User, TokenPair, string, error) {
	if s.Provider == nil {
		return nil, TokenPair{}, "", ErrProviderDisabled
	}
	if state == "" || code == "" {
		return nil, TokenPair{}, "", ErrInvalidState
	}
	st, ok, err := s.Sessions.TakeState(ctx, state)
	if err != nil {
		return nil, TokenPair{}, "", err
	}
	if !ok {
		return nil, TokenPair{}, "", ErrInvalidState
	}
	ext, err := s.Provider.Exchange(ctx, code, st.Verifier)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).Warn("code exchange failed")
		}
		return nil, TokenPair{}, "", ErrSignInFailed
	}
	u, err := s.SignIn(ctx, ext)
	if err != nil {
		return nil, TokenPair{}, "", err
	}
	pair, err := s.IssueTokens(ctx, u)
	if err != nil {
		return nil, TokenPair{}, "", err
	}
	return u, pair, st.CallbackURL, nil
}

// SignIn upserts the user keyed by email and refreshes the mirrored avatar.
func (s *AuthService) SignIn(ctx context.Context, ext *ExternalIdentity) (*entity.User, error) {
	if ext == nil {
		return nil, ErrSignInFailed
	}
	email := strings.ToLower(strings.TrimSpace(ext.Email))
	if email == "" {
		return nil, ErrSignInFailed
	}
	u := &entity.User{
		Email:       email,
		Name:        strings.TrimSpace(ext.Name),
		ImageURL:    ext.Picture,
		GoogleID:    ext.Subject,
		LastLoginAt: time.Now().UTC(),
	}
	if err := s.Users.UpsertByEmail(ctx, u); err != nil {
		return nil, err
	}
	if s.Avatars != nil && ext.Picture != "" {
		mirrored, err := s.Avatars.Mirror(ctx, u.ID, ext.Picture)
		if err != nil {
			if s.Logger != nil {
				s.Logger.WithError(err).WithField("user_id", u.ID).Warn("avatar mirror failed")
			}
		} else if err := s.Users.UpdateImage(ctx, u.ID, mirrored); err == nil {
			u.ImageURL = mirrored
		}
	}
	return u, nil
}

// IssueTokens starts a new session next to any the user already has.
func (s *AuthService) IssueTokens(ctx context.Context, u *entity.User) (TokenPair, error) {
	sid := uuid.NewString()
	pair, err := s.sign(u.ID, sid)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate tokens failed")
		}
		return TokenPair{}, err
	}
	if err := s.Sessions.SaveSession(ctx, u, sid, s.SessionTTL); err != nil {
		return TokenPair{}, err
	}
	return pair, nil
}

// Refresh rotates both tokens when the refresh token belongs to the live session.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (TokenPair, string, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, "", ErrUnauthorized
	}
	if err := s.checkSession(ctx, claims.UserID, claims.SessionID); err != nil {
		return TokenPair{}, "", err
	}
	u, err := s.Users.GetByID(ctx, claims.UserID)
	if err != nil {
		return TokenPair{}, "", ErrUnauthorized
	}
	pair, err := s.IssueTokens(ctx, u)
	if err != nil {
		return TokenPair{}, "", err
	}
	if err := s.Sessions.DeleteSession(ctx, claims.UserID, claims.SessionID); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("retire refreshed session failed")
	}
	return pair, u.ID, nil
}

// Resolve maps an access token to the caller. Any failure is ErrUnauthorized.
func (s *AuthService) Resolve(ctx context.Context, accessToken string) (Identity, error) {
	if accessToken == "" {
		return Identity{}, ErrUnauthorized
	}
	claims, err := s.JWT.ParseAccessToken(accessToken)
	if err != nil {
		return Identity{}, ErrUnauthorized
	}
	if err := s.checkSession(ctx, claims.UserID, claims.SessionID); err != nil {
		return Identity{}, err
	}
	return Identity{UserID: claims.UserID, SessionID: claims.SessionID}, nil
}

// Logout ends the session sid only; the user's other devices stay signed in.
func (s *AuthService) Logout(ctx context.Context, userID, sid string) error {
	if err := requireOwner(userID); err != nil {
		return err
	}
	return s.Sessions.DeleteSession(ctx, userID, sid)
}

func (s *AuthService) Me(ctx context.Context, userID string) (*entity.User, error) {
	if err := requireOwner(userID); err != nil {
		return nil, err
	}
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err)
	}
	return u, nil
}

func (s *AuthService) checkSession(ctx context.Context, userID, sid string) error {
	if sid == "" {
		return ErrUnauthorized
	}
	ok, err := s.Sessions.HasSession(ctx, userID, sid)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", userID).Warn("session lookup failed")
		}
		return ErrUnauthorized
	}
	if !ok {
		return ErrUnauthorized
	}
	return nil
}

func (s *AuthService) sign(userID, sid string) (TokenPair, error) {
	access, aexp, err := s.JWT.GenerateAccessToken(userID, sid)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(userID, sid)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}
