package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/dmitrijs2005/medreminder/internal/client/client"
	"github.com/dmitrijs2005/medreminder/internal/client/models"
	"github.com/dmitrijs2005/medreminder/internal/client/session"
	"github.com/stretchr/testify/require"
)

// ---- helpers ----

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// ---- fakes ----

type fakeClient struct {
	UserRet   *models.UserAPIResponse
	CreateErr error
	LoginErr  error

	OTPRet     string
	SendOTPErr error

	ForgotErr error
	PingErr   error
	CloseErr  error

	Calls       []string
	LastLogin   models.LoginRequest
	LastSendOTP models.SendOTPRequest
}

func (f *fakeClient) CreateAccount(ctx context.Context, req models.CreateAccountRequest) (*models.UserAPIResponse, error) {
	f.Calls = append(f.Calls, "create")
	if f.CreateErr != nil {
		return nil, f.CreateErr
	}
	return f.UserRet, nil
}

func (f *fakeClient) Login(ctx context.Context, req models.LoginRequest) (*models.UserAPIResponse, error) {
	f.Calls = append(f.Calls, "login")
	f.LastLogin = req
	if f.LoginErr != nil {
		return nil, f.LoginErr
	}
	return f.UserRet, nil
}

func (f *fakeClient) SendOTP(ctx context.Context, req models.SendOTPRequest) (*models.SendOTPResponse, error) {
	f.Calls = append(f.Calls, "otp")
	f.LastSendOTP = req
	if f.SendOTPErr != nil {
		return nil, f.SendOTPErr
	}
	return &models.SendOTPResponse{OTP: f.OTPRet}, nil
}

func (f *fakeClient) ForgotPassword(ctx context.Context, req models.ForgotPasswordRequest) (*models.ForgotPasswordResponse, error) {
	f.Calls = append(f.Calls, "forgot")
	if f.ForgotErr != nil {
		return nil, f.ForgotErr
	}
	return &models.ForgotPasswordResponse{Message: "ok"}, nil
}

func (f *fakeClient) Ping(ctx context.Context) error { return f.PingErr }
func (f *fakeClient) Close() error                   { return f.CloseErr }

// failingStore accepts reads and rejects writes.
type failingStore struct{ session.Store }

func (failingStore) SaveLoggedInUser(ctx context.Context, admin models.Admin, token string) (*models.Admin, error) {
	return nil, session.ErrWriteFailed
}

var alice = &models.UserAPIResponse{Email: "a@b.com", Username: "A", AccessToken: "tok"}

// ---- TESTS ----

func TestLogin_Success_PersistsUser(t *testing.T) {
	db := setupDB(t)
	fc := &fakeClient{UserRet: alice}
	store := session.NewSQLiteStore(db)
	svc := NewAuthService(fc, store)
	ctx := context.Background()

	req := models.LoginRequest{Email: "a@b.com", Password: "Secret1!"}
	admin, err := svc.Login(ctx, req)
	require.NoError(t, err)
	require.Equal(t, models.Admin{Email: "a@b.com", Username: "A"}, *admin)
	require.Equal(t, req, fc.LastLogin)

	got, err := svc.GetLoggedInUser(ctx)
	require.NoError(t, err)
	require.Equal(t, *admin, *got)

	tok, err := store.AccessToken(ctx)
	require.NoError(t, err)
	require.Equal(t, "tok", tok)
}

func TestLogin_RemoteFailure_NothingSaved(t *testing.T) {
	db := setupDB(t)
	fc := &fakeClient{LoginErr: client.ErrInvalidCredentials}
	svc := NewAuthService(fc, session.NewSQLiteStore(db))
	ctx := context.Background()

	_, err := svc.Login(ctx, models.LoginRequest{Email: "a@b.com", Password: "wrong-pass"})
	require.ErrorIs(t, err, client.ErrInvalidCredentials)

	_, err = svc.GetLoggedInUser(ctx)
	require.ErrorIs(t, err, session.ErrNotFound)
}

func TestCreateAccount_Success_PersistsUser(t *testing.T) {
	db := setupDB(t)
	fc := &fakeClient{UserRet: &models.UserAPIResponse{Email: "a@b.com", Username: "A"}}
	svc := NewAuthService(fc, session.NewSQLiteStore(db))
	ctx := context.Background()

	admin, err := svc.CreateAccount(ctx, models.CreateAccountRequest{Username: "A", Email: "a@b.com", Password: "Secret1!"})
	require.NoError(t, err)
	require.Equal(t, models.Email("a@b.com"), admin.Email)

	got, err := svc.GetLoggedInUser(ctx)
	require.NoError(t, err)
	require.Equal(t, *admin, *got)
}

func TestCreateAccount_AlreadyExists(t *testing.T) {
	fc := &fakeClient{CreateErr: client.ErrUserAlreadyExists}
	svc := NewAuthService(fc, session.NewSQLiteStore(setupDB(t)))

	admin, err := svc.CreateAccount(context.Background(), models.CreateAccountRequest{Username: "A", Email: "a@b.com", Password: "Secret1!"})
	require.ErrorIs(t, err, client.ErrUserAlreadyExists)
	require.Nil(t, admin)
}

func TestLogin_LocalWriteFailure_Surfaced(t *testing.T) {
	fc := &fakeClient{UserRet: alice}
	svc := NewAuthService(fc, failingStore{})

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "a@b.com", Password: "Secret1!"})
	require.ErrorIs(t, err, session.ErrWriteFailed)
	require.Equal(t, []string{"login"}, fc.Calls)
}

func TestLogin_InvalidServerPayload_IsServerError(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	for _, bad := range []*models.UserAPIResponse{
		{Email: "not-an-email", Username: "A"},
		{Email: "a@b.com", Username: "  "},
	} {
		svc := NewAuthService(&fakeClient{UserRet: bad}, session.NewSQLiteStore(db))

		_, err := svc.Login(ctx, models.LoginRequest{Email: "a@b.com", Password: "Secret1!"})
		require.ErrorIs(t, err, client.ErrServerError)
		require.NotErrorIs(t, err, session.ErrWriteFailed)

		_, err = svc.CreateAccount(ctx, models.CreateAccountRequest{Username: "A", Email: "a@b.com", Password: "Secret1!"})
		require.ErrorIs(t, err, client.ErrServerError)

		_, err = svc.GetLoggedInUser(ctx)
		require.ErrorIs(t, err, session.ErrNotFound)
	}
}

func TestSendOTP_ReturnsCode(t *testing.T) {
	fc := &fakeClient{OTPRet: "123456"}
	svc := NewAuthService(fc, session.NewSQLiteStore(setupDB(t)))

	otp, err := svc.SendOTP(context.Background(), models.SendOTPRequest{Email: "a@b.com", IsRegister: true})
	require.NoError(t, err)
	require.Equal(t, "123456", otp)
	require.True(t, fc.LastSendOTP.IsRegister)
}

func TestSendOTP_Error(t *testing.T) {
	fc := &fakeClient{SendOTPErr: client.ErrServerError}
	svc := NewAuthService(fc, session.NewSQLiteStore(setupDB(t)))

	otp, err := svc.SendOTP(context.Background(), models.SendOTPRequest{Email: "a@b.com"})
	require.ErrorIs(t, err, client.ErrServerError)
	require.Empty(t, otp)
}

func TestForgotPassword_RemoteOnly(t *testing.T) {
	db := setupDB(t)
	fc := &fakeClient{}
	svc := NewAuthService(fc, session.NewSQLiteStore(db))
	ctx := context.Background()

	require.NoError(t, svc.ForgotPassword(ctx, models.ForgotPasswordRequest{Email: "a@b.com", NewPassword: "NewPass1", OTP: "123456"}))
	_, err := svc.GetLoggedInUser(ctx)
	require.ErrorIs(t, err, session.ErrNotFound)

	fc.ForgotErr = client.ErrInvalidCredentials
	require.ErrorIs(t, svc.ForgotPassword(ctx, models.ForgotPasswordRequest{}), client.ErrInvalidCredentials)
}

func TestSignOut_ClearsUser(t *testing.T) {
	db := setupDB(t)
	svc := NewAuthService(&fakeClient{UserRet: alice}, session.NewSQLiteStore(db))
	ctx := context.Background()

	_, err := svc.Login(ctx, models.LoginRequest{Email: "a@b.com", Password: "Secret1!"})
	require.NoError(t, err)
	require.NoError(t, svc.SignOut(ctx))

	_, err = svc.GetLoggedInUser(ctx)
	require.ErrorIs(t, err, session.ErrNotFound)
}

func TestPing_Close_Delegations(t *testing.T) {
	fc := &fakeClient{}
	svc := NewAuthService(fc, session.NewSQLiteStore(setupDB(t)))
	require.NoError(t, svc.Ping(context.Background()))
	require.NoError(t, svc.Close(context.Background()))

	fc.PingErr = client.ErrUnavailable
	fc.CloseErr = errors.New("io")
	require.ErrorIs(t, svc.Ping(context.Background()), client.ErrUnavailable)
	require.Error(t, svc.Close(context.Background()))
}
