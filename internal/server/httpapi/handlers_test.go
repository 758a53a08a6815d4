package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dmitrijs2005/medreminder/internal/client/client"
	"github.com/dmitrijs2005/medreminder/internal/client/models"
	"github.com/dmitrijs2005/medreminder/internal/common"
	"github.com/dmitrijs2005/medreminder/internal/logging"
	srvmodels "github.com/dmitrijs2005/medreminder/internal/server/models"
	"github.com/dmitrijs2005/medreminder/internal/server/services"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsers struct {
	createErr error
	loginErr  error
	otpErr    error
	forgotErr error

	gotEmail string
	gotCode  string
}

func (f *fakeUsers) CreateAccount(ctx context.Context, username, email, password string) (*services.Session, error) {
	f.gotEmail = email
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &services.Session{User: &srvmodels.User{Email: email, Username: username}, AccessToken: "tok"}, nil
}

func (f *fakeUsers) Login(ctx context.Context, email, password string) (*services.Session, error) {
	f.gotEmail = email
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &services.Session{User: &srvmodels.User{Email: email, Username: "A"}, AccessToken: "tok"}, nil
}

func (f *fakeUsers) SendOTP(ctx context.Context, email string, isRegister bool) (string, error) {
	f.gotEmail = email
	if f.otpErr != nil {
		return "", f.otpErr
	}
	return "123456", nil
}

func (f *fakeUsers) ForgotPassword(ctx context.Context, email, newPassword, code string) error {
	f.gotEmail, f.gotCode = email, code
	return f.forgotErr
}

func newTestServer(t *testing.T, users UserService, checks map[string]Check) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewRouter(NewHandler(users, checks, logging.NewNopLogger())))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url, body string) (int, map[string]any) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]any{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestCreateAccount_Created(t *testing.T) {
	users := &fakeUsers{}
	srv := newTestServer(t, users, nil)

	status, body := postJSON(t, srv.URL+common.PathCreateAccount,
		`{"username":"A","email":" A@B.com ","password":"Secret1!"}`)

	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "a@b.com", body["email"])
	assert.Equal(t, "A", body["username"])
	assert.Equal(t, "tok", body["accessToken"])
	assert.Equal(t, "a@b.com", users.gotEmail)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		users  *fakeUsers
		path   string
		body   string
		status int
		code   common.ErrorCode
	}{
		{"bad json", &fakeUsers{}, common.PathLogin, `{`, http.StatusBadRequest, common.CodeInvalidData},
		{"bad email", &fakeUsers{}, common.PathLogin, `{"email":"nope","password":"Secret1!"}`, http.StatusBadRequest, common.CodeInvalidData},
		{"short password", &fakeUsers{}, common.PathCreateAccount, `{"username":"A","email":"a@b.com","password":"1"}`, http.StatusBadRequest, common.CodeInvalidData},
		{"blank username", &fakeUsers{}, common.PathCreateAccount, `{"username":"  ","email":"a@b.com","password":"Secret1!"}`, http.StatusBadRequest, common.CodeInvalidData},
		{"bad otp", &fakeUsers{}, common.PathForgotPassword, `{"email":"a@b.com","newPassword":"Secret1!","otp":"12ab56"}`, http.StatusBadRequest, common.CodeInvalidData},
		{"wrong password", &fakeUsers{loginErr: common.ErrorInvalidCredentials}, common.PathLogin, `{"email":"a@b.com","password":"Secret1!"}`, http.StatusUnauthorized, common.CodeInvalidCredentials},
		{"taken email", &fakeUsers{createErr: common.ErrorAlreadyExists}, common.PathCreateAccount, `{"username":"A","email":"a@b.com","password":"Secret1!"}`, http.StatusConflict, common.CodeUserAlreadyExists},
		{"otp for taken email", &fakeUsers{otpErr: common.ErrorAlreadyExists}, common.PathSendOTP, `{"email":"a@b.com","isRegister":true}`, http.StatusConflict, common.CodeUserAlreadyExists},
		{"wrong code", &fakeUsers{forgotErr: common.ErrorInvalidCredentials}, common.PathForgotPassword, `{"email":"a@b.com","newPassword":"Secret1!","otp":"123456"}`, http.StatusUnauthorized, common.CodeInvalidCredentials},
		{"internal", &fakeUsers{loginErr: errors.New("db down")}, common.PathLogin, `{"email":"a@b.com","password":"Secret1!"}`, http.StatusInternalServerError, common.CodeServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, tt.users, nil)
			status, body := postJSON(t, srv.URL+tt.path, tt.body)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, string(tt.code), body["code"])
		})
	}
}

func TestInternalErrorMessageHidden(t *testing.T) {
	srv := newTestServer(t, &fakeUsers{loginErr: errors.New("pq: connection refused")}, nil)

	_, body := postJSON(t, srv.URL+common.PathLogin, `{"email":"a@b.com","password":"Secret1!"}`)
	assert.Equal(t, "internal server error", body["message"])
}

func TestPing(t *testing.T) {
	healthy := map[string]Check{"postgres": func(context.Context) error { return nil }}
	srv := newTestServer(t, &fakeUsers{}, healthy)

	resp, err := http.Get(srv.URL + common.PathPing)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	broken := map[string]Check{"redis": func(context.Context) error { return errors.New("down") }}
	srv = newTestServer(t, &fakeUsers{}, broken)

	resp, err = http.Get(srv.URL + common.PathPing)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestRequestsAreCounted(t *testing.T) {
	srv := newTestServer(t, &fakeUsers{loginErr: common.ErrorInvalidCredentials}, nil)
	counter := requestsTotal.WithLabelValues(common.PathLogin, "401")
	before := testutil.ToFloat64(counter)

	postJSON(t, srv.URL+common.PathLogin, `{"email":"a@b.com","password":"Secret1!"}`)

	assert.Equal(t, before+1, testutil.ToFloat64(counter))

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// The terminal client and the server must agree on the wire contract.
func TestHTTPClientRoundTrip(t *testing.T) {
	users := &fakeUsers{}
	srv := newTestServer(t, users, map[string]Check{})
	ctx := context.Background()

	c, err := client.NewHTTPClient(srv.URL, srv.Client(), logging.NewNopLogger())
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Ping(ctx))

	u, err := c.CreateAccount(ctx, models.CreateAccountRequest{Username: "A", Email: "a@b.com", Password: "Secret1!"})
	require.NoError(t, err)
	assert.Equal(t, "tok", u.AccessToken)

	otp, err := c.SendOTP(ctx, models.SendOTPRequest{Email: "a@b.com"})
	require.NoError(t, err)
	assert.Equal(t, "123456", otp.OTP)

	_, err = c.ForgotPassword(ctx, models.ForgotPasswordRequest{Email: "a@b.com", NewPassword: "NewPass1", OTP: "123456"})
	require.NoError(t, err)
	assert.Equal(t, "123456", users.gotCode)

	users.loginErr = common.ErrorInvalidCredentials
	_, err = c.Login(ctx, models.LoginRequest{Email: "a@b.com", Password: "Secret1!"})
	require.ErrorIs(t, err, client.ErrInvalidCredentials)

	users.createErr = common.ErrorAlreadyExists
	_, err = c.CreateAccount(ctx, models.CreateAccountRequest{Username: "A", Email: "a@b.com", Password: "Secret1!"})
	require.ErrorIs(t, err, client.ErrUserAlreadyExists)
}
