package auth

import (
	"context"
	"net/http"

	"catalogconsole/internal/api"
	"catalogconsole/internal/errs"

	"go.uber.org/zap"
)

// LoginClient is the backend login call.
type LoginClient interface {
	Login(ctx context.Context, email, password string) (api.LoginResponse, error)
}

// LoginResult says what to persist and whether to leave the login view.
type LoginResult struct {
	Token    string
	Navigate bool
}

type Authenticator struct {
	client LoginClient
	log    *zap.Logger
}

func NewAuthenticator(client LoginClient, log *zap.Logger) *Authenticator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Authenticator{client: client, log: log}
}

// Login exchanges credentials for a token. Every failure, network or
// rejection, is reported as errs.ErrInvalidCredentials.
func (a *Authenticator) Login(ctx context.Context, email, password string) (LoginResult, error) {
	res, err := a.client.Login(ctx, email, password)
	if err != nil {
		a.log.Warn("login failed", zap.String("email", email), zap.Error(err))
		return LoginResult{}, errs.ErrInvalidCredentials
	}
	if res.Data.Token == "" {
		a.log.Warn("login response without token", zap.String("email", email), zap.Int("status_code", res.StatusCode))
		return LoginResult{}, errs.ErrInvalidCredentials
	}
	return LoginResult{
		Token:    res.Data.Token,
		Navigate: res.StatusCode == http.StatusOK,
	}, nil
}
