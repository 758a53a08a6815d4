// Package httpapi exposes the auth endpoints over HTTP/JSON.
package httpapi

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/medreminder/internal/common"
	"github.com/dmitrijs2005/medreminder/internal/logging"
	"github.com/dmitrijs2005/medreminder/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// UserService is the business logic behind the auth endpoints.
type UserService interface {
	CreateAccount(ctx context.Context, username, email, password string) (*services.Session, error)
	Login(ctx context.Context, email, password string) (*services.Session, error)
	SendOTP(ctx context.Context, email string, isRegister bool) (string, error)
	ForgotPassword(ctx context.Context, email, newPassword, code string) error
}

// Check reports whether a backing dependency is reachable.
type Check func(ctx context.Context) error

type Handler struct {
	users    UserService
	checks   map[string]Check
	validate *validator.Validate
	logger   logging.Logger
}

// NewHandler builds the handler. checks are run by GET /ping, keyed by the
// dependency name that is logged when one fails.
func NewHandler(users UserService, checks map[string]Check, logger logging.Logger) *Handler {
	return &Handler{
		users:    users,
		checks:   checks,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger.With("module", "http"),
	}
}

func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.instrument)

	r.Get(common.PathPing, h.ping)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Post(common.PathCreateAccount, h.createAccount)
	r.Post(common.PathLogin, h.login)
	r.Post(common.PathSendOTP, h.sendOTP)
	r.Post(common.PathForgotPassword, h.forgotPassword)

	return r
}
