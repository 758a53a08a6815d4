// Package services contains application services for the medreminder client.
// This file defines the auth coordinator: remote calls against the auth server
// followed by persisting the logged-in user locally.
package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/medreminder/internal/client/client"
	"github.com/dmitrijs2005/medreminder/internal/client/models"
	"github.com/dmitrijs2005/medreminder/internal/client/session"
)

// AuthService composes the remote client and the local session store.
//
// Contract:
//   - CreateAccount, Login: call the server, then save the returned user locally.
//   - SendOTP: call the server and return the issued code.
//   - ForgotPassword: call the server only.
//   - GetLoggedInUser, SignOut: local store only.
//
// Failures are returned as-is so callers can match them with errors.Is
// against the client and session sentinels. When the remote call succeeds
// but the local save fails, the account exists on the server while the
// device stays signed out; nothing is retried or rolled back.
type AuthService interface {
	CreateAccount(ctx context.Context, req models.CreateAccountRequest) (*models.Admin, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.Admin, error)
	SendOTP(ctx context.Context, req models.SendOTPRequest) (string, error)
	ForgotPassword(ctx context.Context, req models.ForgotPasswordRequest) error
	GetLoggedInUser(ctx context.Context) (*models.Admin, error)
	SignOut(ctx context.Context) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

type authService struct {
	client client.Client
	store  session.Store
}

// NewAuthService constructs an AuthService bound to the given API client and store.
func NewAuthService(client client.Client, store session.Store) AuthService {
	return &authService{client: client, store: store}
}

func (a *authService) CreateAccount(ctx context.Context, req models.CreateAccountRequest) (*models.Admin, error) {
	resp, err := a.client.CreateAccount(ctx, req)
	if err != nil {
		return nil, err
	}
	return a.saveUser(ctx, resp)
}

func (a *authService) Login(ctx context.Context, req models.LoginRequest) (*models.Admin, error) {
	resp, err := a.client.Login(ctx, req)
	if err != nil {
		return nil, err
	}
	return a.saveUser(ctx, resp)
}

// saveUser persists the user returned by the server. A 2xx payload without a
// valid email and username is a server fault, not a local write failure.
func (a *authService) saveUser(ctx context.Context, resp *models.UserAPIResponse) (*models.Admin, error) {
	admin := resp.Admin()
	if !admin.IsValid() {
		return nil, fmt.Errorf("%w: invalid user in response", client.ErrServerError)
	}
	return a.store.SaveLoggedInUser(ctx, admin, resp.AccessToken)
}

func (a *authService) SendOTP(ctx context.Context, req models.SendOTPRequest) (string, error) {
	resp, err := a.client.SendOTP(ctx, req)
	if err != nil {
		return "", err
	}
	return resp.OTP, nil
}

func (a *authService) ForgotPassword(ctx context.Context, req models.ForgotPasswordRequest) error {
	_, err := a.client.ForgotPassword(ctx, req)
	return err
}

func (a *authService) GetLoggedInUser(ctx context.Context) (*models.Admin, error) {
	return a.store.GetLoggedInUser(ctx)
}

func (a *authService) SignOut(ctx context.Context) error {
	return a.store.SignOut(ctx)
}

// Ping proxies a liveness check to the underlying client.
func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

// Close releases resources held by the underlying client.
func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}
