package client

import (
	"context"

	"github.com/dmitrijs2005/medreminder/internal/client/models"
)

// Client is the remote half of the auth module.
type Client interface {
	CreateAccount(ctx context.Context, req models.CreateAccountRequest) (*models.UserAPIResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.UserAPIResponse, error)
	SendOTP(ctx context.Context, req models.SendOTPRequest) (*models.SendOTPResponse, error)
	ForgotPassword(ctx context.Context, req models.ForgotPasswordRequest) (*models.ForgotPasswordResponse, error)
	Ping(ctx context.Context) error
	Close() error
}
