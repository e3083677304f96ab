package authapi

import (
	"context"

	"github.com/KurtDeGreeff/habitat/internal/account"
	"github.com/KurtDeGreeff/habitat/internal/session"
	"github.com/KurtDeGreeff/habitat/pkg/githubauth"
	"github.com/KurtDeGreeff/habitat/pkg/logger"
)

// GitHub is the identity-resolution surface of the GitHub client.
type GitHub interface {
	Authenticate(ctx context.Context, code string) (string, error)
	User(ctx context.Context, token string) (*githubauth.User, error)
	Emails(ctx context.Context, token string) ([]githubauth.Email, error)
}

// Accounts provisions local account records.
type Accounts interface {
	FindOrCreate(ctx context.Context, acct account.Account) (account.Account, error)
}

// Sessions manages login sessions.
type Sessions interface {
	Create(ctx context.Context, acct account.Account, token string) (*session.Session, error)
	Get(ctx context.Context, id string) (*session.Session, error)
	Delete(ctx context.Context, id string) error
}

type Service struct {
	github   GitHub
	accounts Accounts
	sessions Sessions
	logger   logger.Client
}

func NewService(github GitHub, accounts Accounts, sessions Sessions, log logger.Client) *Service {
	return &Service{
		github:   github,
		accounts: accounts,
		sessions: sessions,
		logger:   log,
	}
}

// Login drives the whole pipeline: code-for-token exchange, profile fetch,
// account provisioning, session creation. Every client failure is terminal
// and surfaces to the handler untouched; authorization codes are single-use,
// so a failed login needs a fresh code from the caller.
func (s *Service) Login(ctx context.Context, code string) (*session.Session, error) {
	token, err := s.github.Authenticate(ctx, code)
	if err != nil {
		return nil, err
	}

	user, err := s.github.User(ctx, token)
	if err != nil {
		return nil, err
	}

	acct := account.NewFromUser(user)
	if acct.Email == "" {
		// Profile email is hidden for most users; fall back to the
		// verified set. A user with no usable email can still log in.
		emails, err := s.github.Emails(ctx, token)
		if err != nil {
			s.logger.Warn("could not resolve verified emails", logger.F("login", acct.Name), logger.F("err", err))
		} else {
			acct.Email = account.PreferredEmail(emails)
		}
	}

	provisioned, err := s.accounts.FindOrCreate(ctx, acct)
	if err != nil {
		return nil, err
	}

	sess, err := s.sessions.Create(ctx, provisioned, token)
	if err != nil {
		return nil, err
	}

	s.logger.Info("authenticated", logger.F("login", provisioned.Name), logger.F("account_id", provisioned.ID))
	return sess, nil
}

// Profile fetches the live GitHub profile for an established session.
func (s *Service) Profile(ctx context.Context, sess *session.Session) (*githubauth.User, error) {
	return s.github.User(ctx, sess.Token)
}

// Emails fetches the live email set for an established session.
func (s *Service) Emails(ctx context.Context, sess *session.Session) ([]githubauth.Email, error) {
	return s.github.Emails(ctx, sess.Token)
}
