package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/wassimtechnew/Techsatwassim/internal/auth"
	"github.com/wassimtechnew/Techsatwassim/internal/catalog"
	"github.com/wassimtechnew/Techsatwassim/internal/content"
	"github.com/wassimtechnew/Techsatwassim/internal/httpserver"
	"github.com/wassimtechnew/Techsatwassim/internal/i18n"
	"github.com/wassimtechnew/Techsatwassim/internal/platform/config"
	"github.com/wassimtechnew/Techsatwassim/internal/platform/observability"
	"github.com/wassimtechnew/Techsatwassim/internal/session"
	"github.com/wassimtechnew/Techsatwassim/internal/store"
	"github.com/wassimtechnew/Techsatwassim/internal/whatsapp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger, err := observability.NewLogger()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	st, err := buildStore(cfg, logger)
	if err != nil {
		logger.Fatal("init store", zap.Error(err))
	}

	bundle, err := i18n.Default()
	if err != nil {
		logger.Fatal("load locales", zap.Error(err))
	}
	siteCopy, err := content.Default()
	if err != nil {
		logger.Fatal("load site copy", zap.Error(err))
	}

	sessions, err := buildSessions(cfg, logger)
	if err != nil {
		logger.Fatal("init sessions", zap.Error(err))
	}

	state := catalog.New(st, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go state.Poll(ctx, cfg.Site.RefreshInterval)

	srv, err := httpserver.New(httpserver.Config{
		Logger:        logger,
		Catalog:       state,
		Sessions:      sessions,
		Verifier:      auth.NewStaticVerifier(cfg.Admin.Username, cfg.Admin.Password),
		Bundle:        bundle,
		Copy:          siteCopy,
		WhatsApp:      whatsapp.NewLinker(cfg.Site.WhatsAppPhone),
		SecureCookies: cfg.Admin.CookieSecure,
	})
	if err != nil {
		logger.Fatal("init server", zap.Error(err))
	}

	httpSrv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	logger.Info("site listening",
		zap.String("addr", cfg.Server.Addr),
		zap.Bool("dev", cfg.Site.Dev))

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
		os.Exit(1)
	}
}

func buildStore(cfg config.Config, logger *zap.Logger) (store.Store, error) {
	if cfg.Site.Dev {
		logger.Warn("dev mode: using in-memory store, data will not persist")
		return store.NewMemoryStore(), nil
	}
	return store.NewRESTStore(cfg.Store.URL, cfg.Store.APIKey, nil)
}

func buildSessions(cfg config.Config, logger *zap.Logger) (*session.Manager, error) {
	hashKey := []byte(cfg.Admin.SessionHashKey)
	if len(hashKey) == 0 {
		logger.Warn("SESSION_HASH_KEY not set; sessions will not survive restarts")
		hashKey = session.RandomKey()
	}
	var blockKey []byte
	if cfg.Admin.SessionBlockKey != "" {
		blockKey = []byte(cfg.Admin.SessionBlockKey)
	}
	return session.NewManager(session.Config{
		HashKey:      hashKey,
		BlockKey:     blockKey,
		CookieSecure: cfg.Admin.CookieSecure,
	})
}
