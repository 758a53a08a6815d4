package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/medreminder/internal/common"
	"github.com/dmitrijs2005/medreminder/internal/server/auth"
	"github.com/dmitrijs2005/medreminder/internal/server/config"
	"github.com/dmitrijs2005/medreminder/internal/server/models"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// ---- fakes ----

type fakeUsers struct {
	mu     sync.Mutex
	byMail map[string]*models.User
	err    error
}

func newFakeUsers() *fakeUsers { return &fakeUsers{byMail: map[string]*models.User{}} }

func (f *fakeUsers) Create(ctx context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if _, ok := f.byMail[u.Email]; ok {
		return nil, common.ErrorAlreadyExists
	}
	u.ID = "id-" + u.Email
	u.CreatedAt = time.Now()
	cp := *u
	f.byMail[u.Email] = &cp
	return u, nil
}

func (f *fakeUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.byMail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) UpdatePassword(ctx context.Context, email string, hash []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byMail[email]
	if !ok {
		return common.ErrorNotFound
	}
	u.PasswordHash = hash
	return nil
}

type fakeOTPs struct {
	codes   map[string]string
	lastTTL time.Duration
	saveErr error
}

func (f *fakeOTPs) Save(ctx context.Context, email, code string, ttl time.Duration) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.codes[email] = code
	f.lastTTL = ttl
	return nil
}

func (f *fakeOTPs) Consume(ctx context.Context, email, code string) error {
	if c, ok := f.codes[email]; !ok || c != code {
		return common.ErrorInvalidCredentials
	}
	delete(f.codes, email)
	return nil
}

// ---- helpers ----

var testConfig = &config.Config{
	SecretKey:                   "k",
	AccessTokenValidityDuration: time.Hour,
	OTPValidityDuration:         5 * time.Minute,
}

func newService(t *testing.T) (*UserService, *fakeUsers, *fakeOTPs) {
	t.Helper()
	repo := newFakeUsers()
	otps := &fakeOTPs{codes: map[string]string{}}
	s := NewUserService(repo, otps, testConfig)
	s.hashCost = bcrypt.MinCost
	return s, repo, otps
}

func stubOTP(t *testing.T, code string) {
	t.Helper()
	orig := generateOTP
	generateOTP = func() (string, error) { return code, nil }
	t.Cleanup(func() { generateOTP = orig })
}

// ---- tests ----

func TestCreateAccountThenLogin(t *testing.T) {
	s, repo, _ := newService(t)
	ctx := context.Background()

	sess, err := s.CreateAccount(ctx, "A", "a@b.com", "Secret1!")
	require.NoError(t, err)
	require.Equal(t, "a@b.com", sess.User.Email)
	require.NotEqual(t, []byte("Secret1!"), repo.byMail["a@b.com"].PasswordHash)

	uid, err := auth.GetUserIDFromToken(sess.AccessToken, []byte("k"))
	require.NoError(t, err)
	require.Equal(t, sess.User.ID, uid)

	sess, err = s.Login(ctx, "a@b.com", "Secret1!")
	require.NoError(t, err)
	require.Equal(t, "A", sess.User.Username)
	require.NotEmpty(t, sess.AccessToken)
}

func TestCreateAccount_Duplicate(t *testing.T) {
	s, _, _ := newService(t)
	ctx := context.Background()

	_, err := s.CreateAccount(ctx, "A", "a@b.com", "Secret1!")
	require.NoError(t, err)
	_, err = s.CreateAccount(ctx, "B", "a@b.com", "Other1!")
	require.ErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestCreateAccount_RepoFailure(t *testing.T) {
	s, repo, _ := newService(t)
	repo.err = errors.New("db down")

	_, err := s.CreateAccount(context.Background(), "A", "a@b.com", "Secret1!")
	require.ErrorIs(t, err, common.ErrorInternal)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	s, _, _ := newService(t)
	ctx := context.Background()

	_, err := s.Login(ctx, "nobody@b.com", "Secret1!")
	require.ErrorIs(t, err, common.ErrorInvalidCredentials)

	_, err = s.CreateAccount(ctx, "A", "a@b.com", "Secret1!")
	require.NoError(t, err)
	_, err = s.Login(ctx, "a@b.com", "wrong-pass")
	require.ErrorIs(t, err, common.ErrorInvalidCredentials)
}

func TestSendOTP_Rules(t *testing.T) {
	s, _, otps := newService(t)
	ctx := context.Background()
	stubOTP(t, "123456")

	code, err := s.SendOTP(ctx, "a@b.com", true)
	require.NoError(t, err)
	require.Equal(t, "123456", code)
	require.Equal(t, 5*time.Minute, otps.lastTTL)

	_, err = s.SendOTP(ctx, "a@b.com", false)
	require.ErrorIs(t, err, common.ErrorInvalidCredentials)

	_, err = s.CreateAccount(ctx, "A", "a@b.com", "Secret1!")
	require.NoError(t, err)

	_, err = s.SendOTP(ctx, "a@b.com", true)
	require.ErrorIs(t, err, common.ErrorAlreadyExists)

	code, err = s.SendOTP(ctx, "a@b.com", false)
	require.NoError(t, err)
	require.Equal(t, "123456", otps.codes["a@b.com"])
	require.Equal(t, "123456", code)
}

func TestSendOTP_StoreFailure(t *testing.T) {
	s, _, otps := newService(t)
	otps.saveErr = errors.New("redis down")

	_, err := s.SendOTP(context.Background(), "a@b.com", true)
	require.ErrorIs(t, err, common.ErrorInternal)
}

func TestForgotPassword(t *testing.T) {
	s, _, _ := newService(t)
	ctx := context.Background()
	stubOTP(t, "654321")

	_, err := s.CreateAccount(ctx, "A", "a@b.com", "Secret1!")
	require.NoError(t, err)
	_, err = s.SendOTP(ctx, "a@b.com", false)
	require.NoError(t, err)

	require.ErrorIs(t, s.ForgotPassword(ctx, "a@b.com", "NewPass1", "000000"), common.ErrorInvalidCredentials)
	require.NoError(t, s.ForgotPassword(ctx, "a@b.com", "NewPass1", "654321"))

	// the code is single use
	require.ErrorIs(t, s.ForgotPassword(ctx, "a@b.com", "Again1!", "654321"), common.ErrorInvalidCredentials)

	_, err = s.Login(ctx, "a@b.com", "Secret1!")
	require.ErrorIs(t, err, common.ErrorInvalidCredentials)
	_, err = s.Login(ctx, "a@b.com", "NewPass1")
	require.NoError(t, err)
}
