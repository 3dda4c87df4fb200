// Package service contains the client-side application services: account
// flows and note synchronization.
package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/and161185/notepad/internal/model"
	"github.com/and161185/notepad/internal/repository"
)

// Authenticator is the part of the session controller the auth service drives.
type Authenticator interface {
	Login(token string) error
	Logout() error
}

// AuthService implements register/login/logout on top of the remote API and the session.
type AuthService struct {
	repo repository.AuthRepository
	sess Authenticator
	log  *zap.Logger
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(repo repository.AuthRepository, sess Authenticator, log *zap.Logger) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{repo: repo, sess: sess, log: log}
}

// Register creates an account and returns the server message. The session is untouched.
func (s *AuthService) Register(ctx context.Context, r model.Registration) (string, error) {
	msg, err := s.repo.Register(ctx, r)
	if err != nil {
		return "", err
	}
	s.log.Info("registered", zap.String("username", r.Username))
	return msg, nil
}

// Login authenticates and starts a session with the issued token.
// ErrStorageUnavailable means the session is active but will not survive a restart.
func (s *AuthService) Login(ctx context.Context, c model.Credentials) error {
	tok, err := s.repo.Login(ctx, c)
	if err != nil {
		return err
	}
	if err := s.sess.Login(tok.AccessToken); err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	return nil
}

// Logout ends the session.
func (s *AuthService) Logout() error {
	return s.sess.Logout()
}
