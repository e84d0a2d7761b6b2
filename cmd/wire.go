package cmd

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/bnema/dchat/internal/adapters/completion"
	chainstore "github.com/bnema/dchat/internal/adapters/kv/chain"
	filestore "github.com/bnema/dchat/internal/adapters/kv/file"
	memorystore "github.com/bnema/dchat/internal/adapters/kv/memory"
	sqlitestore "github.com/bnema/dchat/internal/adapters/kv/sqlite"
	tomlstore "github.com/bnema/dchat/internal/adapters/kv/toml"
	chatadapter "github.com/bnema/dchat/internal/adapters/render/chat"
	statusadapter "github.com/bnema/dchat/internal/adapters/render/status"
	"github.com/bnema/dchat/internal/adapters/watch"
	"github.com/bnema/dchat/internal/application"
	"github.com/bnema/dchat/internal/config"
	"github.com/bnema/dchat/internal/domain"
	"github.com/bnema/dchat/internal/ports"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"go.uber.org/zap"
)

type app struct {
	cfg            *config.Config
	logger         *zap.Logger
	store          ports.KVStore
	chat           *application.ChatService
	theme          *application.ThemeController
	statusRenderer func(application.Status, statusadapter.RenderOptions) string
	runDashboard   func(context.Context, chatadapter.Options) (chatadapter.Result, error)
	newWatcher     func() (*watch.Watcher, error)
	now            func() time.Time
	closers        []func() error
}

func wireApp(cfg *config.Config, logger *zap.Logger) (*app, error) {
	store, closer, err := openStateStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("wire state store: %w", err)
	}

	var policy ports.QuotaPolicy = domain.NeverReset{}
	if cfg.Quota.AutoReset {
		policy = domain.NewDailyResetPolicy(cfg.Quota.ResetHour, time.Local)
	}

	client := completion.NewClient(&http.Client{}, completion.Config{
		Endpoint:    cfg.Endpoint.URL,
		MinInterval: cfg.Endpoint.MinInterval,
	})

	chat := application.NewChatService(
		application.NewSessionStore(store, logger),
		application.NewQuotaManager(policy),
		client,
		ports.SystemClock{},
		application.ChatConfig{
			Prompt:    cfg.Endpoint.Prompt,
			Timeout:   cfg.Endpoint.Timeout,
			ResetHour: cfg.Quota.ResetHour,
		},
		logger,
	)

	theme := application.NewThemeController(store, ports.SystemThemeFunc(termenv.HasDarkBackground), logger)
	theme.OnApply(func(pref domain.ThemePreference) {
		lipgloss.SetHasDarkBackground(pref.IsDark)
	})

	a := &app{
		cfg:            cfg,
		logger:         logger,
		store:          store,
		chat:           chat,
		theme:          theme,
		statusRenderer: statusadapter.Render,
		runDashboard: func(ctx context.Context, opts chatadapter.Options) (chatadapter.Result, error) {
			return chatadapter.Run(ctx, opts)
		},
		newWatcher: func() (*watch.Watcher, error) {
			return newStateWatcher(cfg, logger)
		},
		now: time.Now,
	}
	if closer != nil {
		a.closers = append(a.closers, closer)
	}

	return a, nil
}

func (a *app) close() {
	for _, closer := range a.closers {
		if err := closer(); err != nil && a.logger != nil {
			a.logger.Warn("close resource", zap.Error(err))
		}
	}
	a.closers = nil

	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

// openStateStore builds the key-value backend named by state.backend. The
// returned closer is nil for backends that hold no open handle.
func openStateStore(cfg *config.Config) (ports.KVStore, func() error, error) {
	switch cfg.State.Backend {
	case config.BackendTOML:
		store, err := tomlstore.NewStore(cfg.Viper())
		return store, nil, err
	case config.BackendFile:
		return filestore.NewStore(cfg.State.Path), nil, nil
	case config.BackendPass:
		store, err := chainstore.NewPassFirstWithFileFallback(cfg.State.Path)
		return store, nil, err
	case config.BackendSQLite:
		store, err := sqlitestore.Open(cfg.State.Path)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	case config.BackendMemory:
		return memorystore.NewStore(), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown state backend %q", cfg.State.Backend)
	}
}

// newStateWatcher watches whatever files back the state store so the
// dashboard notices `dchat quota reset` or `dchat logout` run elsewhere.
// The memory backend has nothing to watch.
func newStateWatcher(cfg *config.Config, logger *zap.Logger) (*watch.Watcher, error) {
	opts := []watch.Option{watch.WithLogger(logger)}

	switch cfg.State.Backend {
	case config.BackendTOML:
		return watch.ForFile(cfg.State.Path, opts...)
	case config.BackendFile, config.BackendPass:
		return watch.New(cfg.State.Path, []string{application.UserKey, application.DarkModeKey}, opts...)
	case config.BackendSQLite:
		base := filepath.Base(cfg.State.Path)
		return watch.New(filepath.Dir(cfg.State.Path), []string{base, base + "-wal"}, opts...)
	default:
		return nil, nil
	}
}
