package cli

import (
	"context"
	"crypto/subtle"
	"errors"

	"github.com/dmitrijs2005/medreminder/internal/client/models"
	"github.com/dmitrijs2005/medreminder/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

var (
	errWrongCode   = errors.New("wrong confirmation code")
	errNotLoggedIn = errors.New("not logged in")
)

func (a *App) askEmail() (models.Email, error) {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return "", err
	}
	return models.Email(email).Normalized(), nil
}

func (a *App) askPassword(prompt string) (models.Password, error) {
	pw, err := getPassword(a.out, prompt)
	if err != nil {
		return "", err
	}
	// Only the terminal read buffer is cleared; the returned string keeps
	// its own copy of the secret.
	defer common.WipeByteArray(pw)
	return models.Password(pw), nil
}

// Register asks the server for a one-time code, checks the code typed by the
// user against it and creates the account.
func (a *App) Register(ctx context.Context) error {
	email, err := a.askEmail()
	if err != nil {
		return err
	}
	username, err := getSimpleText(a.reader, "Enter your name", a.out)
	if err != nil {
		return err
	}
	password, err := a.askPassword("Enter password")
	if err != nil {
		return err
	}

	if err := a.controller.SendOTP(ctx, models.SendOTPRequest{Email: email, IsRegister: true}); err != nil {
		return err
	}

	code, err := getSimpleText(a.reader, "Enter the code sent to "+string(email), a.out)
	if err != nil {
		return err
	}
	sent := a.controller.State().OTP
	if sent == nil || subtle.ConstantTimeCompare([]byte(*sent), []byte(code)) != 1 {
		a.println("Wrong code")
		return errWrongCode
	}

	return a.controller.CreateAccount(ctx, models.CreateAccountRequest{
		Username: models.Username(username),
		Email:    email,
		Password: password,
	})
}

func (a *App) Login(ctx context.Context) error {
	email, err := a.askEmail()
	if err != nil {
		return err
	}
	password, err := a.askPassword("Enter password")
	if err != nil {
		return err
	}
	return a.controller.Login(ctx, models.LoginRequest{Email: email, Password: password})
}

// Forgot resets the password of a known account using an emailed code.
func (a *App) Forgot(ctx context.Context) error {
	email, err := a.askEmail()
	if err != nil {
		return err
	}
	if err := a.controller.SendOTP(ctx, models.SendOTPRequest{Email: email}); err != nil {
		return err
	}

	code, err := getSimpleText(a.reader, "Enter the code sent to "+string(email), a.out)
	if err != nil {
		return err
	}
	password, err := a.askPassword("Enter new password")
	if err != nil {
		return err
	}

	return a.controller.ForgotPassword(ctx, models.ForgotPasswordRequest{
		Email:       email,
		NewPassword: password,
		OTP:         models.OTP(code),
	})
}

func (a *App) WhoAmI(ctx context.Context) error {
	admin := a.controller.State().Admin
	if admin == nil {
		a.println("Not logged in")
		return errNotLoggedIn
	}
	a.printf("%s <%s>\n", admin.Username, admin.Email)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.controller.SignOut(ctx); err != nil {
		a.println(describe(err))
		return err
	}
	a.println("Logged out")
	return nil
}
