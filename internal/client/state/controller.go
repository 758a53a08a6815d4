package state

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/medreminder/internal/client/models"
	"github.com/dmitrijs2005/medreminder/internal/client/services"
	"github.com/dmitrijs2005/medreminder/internal/logging"
)

// Listener receives published snapshots. It runs on the goroutine that
// triggered the change and must not start another controller operation
// synchronously.
type Listener func(AuthState)

type AuthController struct {
	svc    services.AuthService
	logger logging.Logger

	// pubMu keeps snapshot delivery in publication order.
	pubMu sync.Mutex

	mu        sync.Mutex
	state     AuthState
	listeners map[int]Listener
	nextID    int
}

// NewAuthController restores the session from local storage and publishes
// the outcome without a loading phase.
func NewAuthController(ctx context.Context, svc services.AuthService, logger logging.Logger) *AuthController {
	c := &AuthController{
		svc:       svc,
		logger:    logger.With("module", "auth-state"),
		listeners: make(map[int]Listener),
	}

	admin, err := svc.GetLoggedInUser(ctx)
	c.publish(func(s *AuthState) {
		s.Admin = admin
		s.Result = &Result{Err: err}
	})
	if err != nil {
		c.logger.Debug(ctx, "no session restored", "error", err)
	} else {
		c.logger.Info(ctx, "session restored", "email", string(admin.Email))
	}
	return c
}

// State returns a copy of the current snapshot.
func (c *AuthController) State() AuthState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Subscribe registers fn and immediately delivers the current snapshot to it.
// The returned func removes the subscription.
func (c *AuthController) Subscribe(fn Listener) (unsubscribe func()) {
	c.pubMu.Lock()
	defer c.pubMu.Unlock()

	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	snap := c.state.clone()
	c.mu.Unlock()

	fn(snap)

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.listeners, id)
			c.mu.Unlock()
		})
	}
}

func (c *AuthController) CreateAccount(ctx context.Context, req models.CreateAccountRequest) error {
	var admin *models.Admin
	return c.run(ctx, "create-account", func(ctx context.Context) (err error) {
		admin, err = c.svc.CreateAccount(ctx, req)
		return err
	}, func(s *AuthState) {
		s.Admin = admin
	})
}

func (c *AuthController) Login(ctx context.Context, req models.LoginRequest) error {
	var admin *models.Admin
	return c.run(ctx, "login", func(ctx context.Context) (err error) {
		admin, err = c.svc.Login(ctx, req)
		return err
	}, func(s *AuthState) {
		s.Admin = admin
	})
}

func (c *AuthController) SendOTP(ctx context.Context, req models.SendOTPRequest) error {
	var otp string
	return c.run(ctx, "send-otp", func(ctx context.Context) (err error) {
		otp, err = c.svc.SendOTP(ctx, req)
		return err
	}, func(s *AuthState) {
		s.OTP = &otp
	})
}

// ForgotPassword resets the password; the consumed OTP is cleared on success.
func (c *AuthController) ForgotPassword(ctx context.Context, req models.ForgotPasswordRequest) error {
	return c.run(ctx, "forgot-password", func(ctx context.Context) error {
		return c.svc.ForgotPassword(ctx, req)
	}, func(s *AuthState) {
		s.OTP = nil
	})
}

// SignOut clears the local session synchronously. On failure Admin is kept.
func (c *AuthController) SignOut(ctx context.Context) error {
	err := c.svc.SignOut(ctx)
	c.publish(func(s *AuthState) {
		s.IsLoading = false
		s.Result = &Result{Err: err}
		if err == nil {
			s.Admin = nil
			s.OTP = nil
		}
	})
	if err != nil {
		c.logger.Warn(ctx, "sign out failed", "error", err)
	}
	return err
}

// run publishes a loading snapshot, calls op and publishes the terminal
// snapshot. onSuccess adjusts the state only when op succeeds.
func (c *AuthController) run(ctx context.Context, name string, op func(context.Context) error, onSuccess func(*AuthState)) error {
	c.publish(func(s *AuthState) {
		s.IsLoading = true
		s.Result = nil
	})

	err := op(ctx)

	c.publish(func(s *AuthState) {
		s.IsLoading = false
		s.Result = &Result{Err: err}
		if err == nil {
			onSuccess(s)
		}
	})

	if err != nil {
		c.logger.Info(ctx, "operation failed", "op", name, "error", err)
	} else {
		c.logger.Debug(ctx, "operation succeeded", "op", name)
	}
	return err
}

func (c *AuthController) publish(mutate func(*AuthState)) {
	c.pubMu.Lock()
	defer c.pubMu.Unlock()

	c.mu.Lock()
	mutate(&c.state)
	listeners := make([]Listener, 0, len(c.listeners))
	for _, l := range c.listeners {
		listeners = append(listeners, l)
	}
	snap := c.state
	c.mu.Unlock()

	for _, l := range listeners {
		l(snap.clone())
	}
}
