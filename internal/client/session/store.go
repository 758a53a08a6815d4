// Package session is the local auth store: it keeps the single logged-in
// user record in the client database so a session survives restarts.
package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/medreminder/internal/client/models"
	"github.com/dmitrijs2005/medreminder/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/medreminder/internal/common"
	"github.com/dmitrijs2005/medreminder/internal/dbx"
)

var (
	ErrNotFound     = errors.New("logged in user not found")
	ErrWriteFailed  = errors.New("failed to save logged in user")
	ErrDeleteFailed = errors.New("failed to delete logged in user")
)

const (
	keyEmail       = "email"
	keyUsername    = "username"
	keyAccessToken = "access_token"
)

// Store persists the logged-in user.
type Store interface {
	// GetLoggedInUser returns the stored user or ErrNotFound.
	GetLoggedInUser(ctx context.Context) (*models.Admin, error)
	// SaveLoggedInUser replaces the stored user. An empty accessToken removes
	// any previously saved token.
	SaveLoggedInUser(ctx context.Context, admin models.Admin, accessToken string) (*models.Admin, error)
	// SignOut removes every locally persisted auth value.
	SignOut(ctx context.Context) error
	// AccessToken returns the token saved with the user, or ErrNotFound.
	AccessToken(ctx context.Context) (string, error)
}

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) GetLoggedInUser(ctx context.Context) (*models.Admin, error) {
	repo := metadata.NewSQLiteRepository(s.db)

	email, err := get(ctx, repo, keyEmail)
	if err != nil {
		return nil, err
	}
	username, err := get(ctx, repo, keyUsername)
	if err != nil {
		return nil, err
	}

	admin := &models.Admin{Email: models.Email(email), Username: models.Username(username)}
	if !admin.IsValid() {
		return nil, fmt.Errorf("%w: stored record is invalid", ErrNotFound)
	}
	return admin, nil
}

func (s *SQLiteStore) SaveLoggedInUser(ctx context.Context, admin models.Admin, accessToken string) (*models.Admin, error) {
	if !admin.IsValid() {
		return nil, fmt.Errorf("%w: %w", ErrWriteFailed, common.ErrorInvalidData)
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, keyEmail, []byte(admin.Email)); err != nil {
			return err
		}
		if err := repo.Set(ctx, keyUsername, []byte(admin.Username)); err != nil {
			return err
		}
		if accessToken == "" {
			return repo.Delete(ctx, keyAccessToken)
		}
		return repo.Set(ctx, keyAccessToken, []byte(accessToken))
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}

	saved := admin
	return &saved, nil
}

func (s *SQLiteStore) SignOut(ctx context.Context) error {
	if err := metadata.NewSQLiteRepository(s.db).Clear(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrDeleteFailed, err)
	}
	return nil
}

func (s *SQLiteStore) AccessToken(ctx context.Context) (string, error) {
	return get(ctx, metadata.NewSQLiteRepository(s.db), keyAccessToken)
}

func get(ctx context.Context, repo metadata.Repository, key string) (string, error) {
	v, err := repo.Get(ctx, key)
	if errors.Is(err, common.ErrorNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return string(v), nil
}
