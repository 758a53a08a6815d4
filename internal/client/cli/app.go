package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/medreminder/internal/client/client"
	"github.com/dmitrijs2005/medreminder/internal/client/config"
	"github.com/dmitrijs2005/medreminder/internal/client/services"
	"github.com/dmitrijs2005/medreminder/internal/client/session"
	"github.com/dmitrijs2005/medreminder/internal/client/state"
	"github.com/dmitrijs2005/medreminder/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// pingTimeout bounds a single liveness probe.
const pingTimeout = 3 * time.Second

type App struct {
	config      *config.Config
	db          *sql.DB
	authService services.AuthService
	medicines   services.MedicineService
	controller  *state.AuthController
	logger      logging.Logger

	reader *bufio.Reader
	out    io.Writer
	outMu  sync.Mutex
	now    func() time.Time

	modeMu sync.Mutex
	mode   Mode

	// pending is set while an operation started from the REPL is loading.
	pending atomic.Bool
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		logger.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	apiClient, err := client.NewHTTPClient(c.ServerEndpointAddr, &http.Client{}, logger.With("module", "http-client"))
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	as := services.NewAuthService(apiClient, session.NewSQLiteStore(db))
	ms := services.NewMedicineService(db)

	return &App{
		config:      c,
		db:          db,
		authService: as,
		medicines:   ms,
		controller:  state.NewAuthController(ctx, as, logger),
		logger:      logger,
		reader:      bufio.NewReader(os.Stdin),
		out:         os.Stdout,
		now:         time.Now,
	}, nil
}

// Run prints a greeting, starts the online watcher and blocks in the REPL.
func (a *App) Run(ctx context.Context) {
	defer a.closeDB(ctx)
	defer a.authService.Close(ctx)

	unsubscribe := a.controller.Subscribe(a.onState)
	defer unsubscribe()

	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)
	}()

	a.println("Welcome to medreminder (type 'help' for commands)")
	if admin := a.controller.State().Admin; admin != nil {
		a.printf("Signed in as %s <%s>\n", admin.Username, admin.Email)
	}

	runREPL(ctx, a, a.getStatus, a.reader)

	cancel()
	wg.Wait()
}

func (a *App) closeDB(ctx context.Context) {
	if a.db == nil {
		return
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error(ctx, "error closing database", "error", err)
	}
}

func (a *App) isLoggedIn() bool {
	return a.controller.State().Admin != nil
}

func (a *App) getStatus() string {
	var parts []string
	if admin := a.controller.State().Admin; admin != nil {
		parts = append(parts, string(admin.Email))
	}
	if mode := a.Mode(); mode != "" {
		parts = append(parts, string(mode))
	}
	if len(parts) == 0 {
		return ""
	}
	return fmt.Sprintf("(%s)", strings.Join(parts, " "))
}

// onState prints the outcome of operations started from the REPL.
// Snapshots without a preceding loading phase are ignored.
func (a *App) onState(s state.AuthState) {
	if s.IsLoading {
		a.pending.Store(true)
		return
	}
	if !a.pending.Swap(false) || s.Result == nil {
		return
	}
	if s.Result.Succeeded() {
		a.println("Success!")
		return
	}
	a.println(describe(s.Result.Err))
}

func describe(err error) string {
	if client.IsAuthFailure(err) {
		return "Failed: " + err.Error()
	}
	return "Error: " + err.Error()
}

func (a *App) Mode() Mode {
	a.modeMu.Lock()
	defer a.modeMu.Unlock()
	return a.mode
}

func (a *App) setMode(ctx context.Context, mode Mode) {
	a.modeMu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.modeMu.Unlock()

	if changed {
		a.logger.Debug(ctx, "mode changed", "mode", string(mode))
		a.printf("Switched to %s mode\n", mode)
	}
}

// StartOnlineStatusWatcher probes the server right away and then every
// interval until ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		err := a.authService.Ping(pingCtx)
		cancel()

		if ctx.Err() != nil {
			return
		}
		if err != nil {
			a.setMode(ctx, ModeOffline)
		} else {
			a.setMode(ctx, ModeOnline)
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) println(args ...any) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	fmt.Fprintf(a.out, format, args...)
}
