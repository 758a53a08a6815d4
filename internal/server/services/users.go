// Package services contains server-side business logic. UserService handles
// account creation, login, one-time codes and password resets.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/medreminder/internal/common"
	"github.com/dmitrijs2005/medreminder/internal/server/auth"
	"github.com/dmitrijs2005/medreminder/internal/server/config"
	"github.com/dmitrijs2005/medreminder/internal/server/models"
	"github.com/dmitrijs2005/medreminder/internal/server/otp"
	"github.com/dmitrijs2005/medreminder/internal/server/repositories/users"
	"golang.org/x/crypto/bcrypt"
)

// generateOTP is a test seam for common.GenerateOTP.
var generateOTP = common.GenerateOTP

// Session is what create-account and login hand back to the client.
type Session struct {
	User        *models.User
	AccessToken string
}

type UserService struct {
	users                       users.Repository
	otps                        otp.Store
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
	otpValidityDuration         time.Duration
	hashCost                    int
}

func NewUserService(repo users.Repository, otps otp.Store, cfg *config.Config) *UserService {
	return &UserService{
		users:                       repo,
		otps:                        otps,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
		otpValidityDuration:         cfg.OTPValidityDuration,
		hashCost:                    bcrypt.DefaultCost,
	}
}

func internalErr(err error) error {
	return fmt.Errorf("%w: %v", common.ErrorInternal, err)
}

// CreateAccount stores a new user. A taken email yields common.ErrorAlreadyExists.
func (s *UserService) CreateAccount(ctx context.Context, username, email, password string) (*Session, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return nil, internalErr(err)
	}

	u, err := s.users.Create(ctx, &models.User{Username: username, Email: email, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, err
		}
		return nil, internalErr(err)
	}
	return s.session(u)
}

// Login checks the password. Unknown emails and wrong passwords both yield
// common.ErrorInvalidCredentials.
func (s *UserService) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorInvalidCredentials
		}
		return nil, internalErr(err)
	}
	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
		return nil, common.ErrorInvalidCredentials
	}
	return s.session(u)
}

// SendOTP issues a new code for email. Registration requires a free email,
// recovery a known one.
func (s *UserService) SendOTP(ctx context.Context, email string, isRegister bool) (string, error) {
	_, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil && isRegister:
		return "", common.ErrorAlreadyExists
	case errors.Is(err, common.ErrorNotFound) && !isRegister:
		return "", common.ErrorInvalidCredentials
	case err != nil && !errors.Is(err, common.ErrorNotFound):
		return "", internalErr(err)
	}

	code, err := generateOTP()
	if err != nil {
		return "", internalErr(err)
	}
	if err := s.otps.Save(ctx, email, code, s.otpValidityDuration); err != nil {
		return "", internalErr(err)
	}
	return code, nil
}

// ForgotPassword consumes the code of email and sets a new password.
func (s *UserService) ForgotPassword(ctx context.Context, email, newPassword, code string) error {
	if err := s.otps.Consume(ctx, email, code); err != nil {
		if errors.Is(err, common.ErrorInvalidCredentials) {
			return err
		}
		return internalErr(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.hashCost)
	if err != nil {
		return internalErr(err)
	}
	if err := s.users.UpdatePassword(ctx, email, hash); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorInvalidCredentials
		}
		return internalErr(err)
	}
	return nil
}

func (s *UserService) session(u *models.User) (*Session, error) {
	token, err := auth.GenerateToken(u.ID, u.Email, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, internalErr(err)
	}
	return &Session{User: u, AccessToken: token}, nil
}
