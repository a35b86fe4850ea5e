package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"shogi/internal/storage"
	"shogi/pkg/usi"
)

// errNoEngine is reported by the analysis and explain surfaces when no
// engine binary is configured; handlers map it to 503.
var errNoEngine = errors.New("no engine configured")

// Application wires the position API, the game archive and the analysis
// stream together.
type Application struct {
	cfg      Config
	logger   *slog.Logger
	store    *storage.Store
	validate *validator.Validate

	engineMu sync.Mutex
	engine   *usi.Session
}

// New builds an Application. The engine session is started lazily on the
// first analysis request so the server comes up even without an engine
// binary installed.
func New(cfg Config, logger *slog.Logger, store *storage.Store) *Application {
	return &Application{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		validate: validator.New(),
	}
}

// Router returns the HTTP handler with logging and CORS applied.
func (a *Application) Router() http.Handler {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/position", a.handlePosition).Methods(http.MethodPost)
	api.HandleFunc("/reachable", a.handleReachable).Methods(http.MethodPost)
	api.HandleFunc("/timeline", a.handleTimeline).Methods(http.MethodPost)
	api.HandleFunc("/explain", a.handleExplain).Methods(http.MethodPost)
	api.HandleFunc("/games", a.handleImportGame).Methods(http.MethodPost)
	api.HandleFunc("/games", a.handleListGames).Methods(http.MethodGet)
	api.HandleFunc("/games/{id}", a.handleGetGame).Methods(http.MethodGet)
	r.HandleFunc("/ws/analysis", a.handleAnalysisWS)
	r.HandleFunc("/healthz", a.handleHealth).Methods(http.MethodGet)

	origins := a.cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	cors := handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)
	return handlers.LoggingHandler(os.Stdout, cors(r))
}

func (a *Application) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Run serves until SIGINT/SIGTERM, then shuts down with a grace period.
func (a *Application) Run() error {
	srv := &http.Server{
		Addr:         a.cfg.Listen,
		Handler:      a.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("listening", "addr", a.cfg.Listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		a.logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}
	return a.closeEngine()
}

// session returns the shared engine session, starting it on first use.
func (a *Application) session(ctx context.Context) (*usi.Session, error) {
	a.engineMu.Lock()
	defer a.engineMu.Unlock()
	if a.engine != nil {
		return a.engine, nil
	}
	if a.cfg.Engine == "" {
		return nil, errNoEngine
	}
	sess, err := usi.StartSession(context.Background(), a.cfg.Engine)
	if err != nil {
		return nil, err
	}
	if err := sess.Handshake(ctx, map[string]string{"Threads": "1"}); err != nil {
		sess.Close()
		return nil, err
	}
	a.engine = sess
	return sess, nil
}

func (a *Application) closeEngine() error {
	a.engineMu.Lock()
	defer a.engineMu.Unlock()
	if a.engine == nil {
		return nil
	}
	err := a.engine.Close()
	a.engine = nil
	return err
}
