package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/user"

	"github.com/spf13/cobra"

	"github.com/dyluth/kashi/internal/config"
	"github.com/dyluth/kashi/internal/imagestore"
	"github.com/dyluth/kashi/internal/offer"
	"github.com/dyluth/kashi/internal/printer"
	"github.com/dyluth/kashi/internal/profile"
	"github.com/dyluth/kashi/internal/session"
	"github.com/dyluth/kashi/pkg/market"
)

// env is everything a command needs to talk to the marketplace as the viewer.
type env struct {
	cfg     *config.KashiConfig
	client  *market.Client
	store   session.Store
	session *session.Session // nil when logged out
}

// loadEnv reads the configuration, sets up logging, and opens the API client
// and session store. Callers must call close.
func loadEnv(cmd *cobra.Command) (*env, error) {
	path := config.DefaultPath(configPath)
	cfg, err := config.Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, printer.Error(
				"no configuration found",
				fmt.Sprintf("Could not read %s.", path),
				[]string{"Create one:\n  kashi init"},
			)
		}
		return nil, printer.ErrorWithContext(
			"invalid configuration",
			err.Error(),
			map[string]string{"Config": path},
			nil,
		)
	}

	setupLogging(cfg.Log.Level, verbose)

	doer := &market.LoggingDoer{Doer: &http.Client{Timeout: cfg.API.Timeout.Std()}}
	client, err := market.NewClient(cfg.API.BaseURL, doer)
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}

	store, err := openStore(cfg)
	if err != nil {
		return nil, printer.Error("failed to open session store", err.Error(), nil)
	}

	e := &env{cfg: cfg, client: client, store: store}

	sess, err := store.Load(cmd.Context())
	switch {
	case errors.Is(err, session.ErrNoSession):
	case err != nil:
		e.close()
		return nil, printer.Error(
			"failed to load session",
			err.Error(),
			[]string{"Log in again:\n  kashi logout\n  kashi login"},
		)
	default:
		e.session = sess
	}

	return e, nil
}

func (e *env) close() {
	if c, ok := e.store.(io.Closer); ok {
		c.Close()
	}
}

// requireViewer refuses unless someone is logged in and their account is active.
func (e *env) requireViewer(ctx context.Context) (string, error) {
	if e.session == nil {
		return "", printer.Error(
			"not logged in",
			"This command acts on your account.",
			[]string{"Log in first:\n  kashi login"},
		)
	}

	if err := profile.CheckActive(ctx, e.client, e.session.UserID); err != nil {
		if errors.Is(err, profile.ErrDeactivated) {
			return "", printer.Error("User Deactivated", "Please contact administrator.", nil)
		}
		return "", printer.APIError("Failed to check your account", err)
	}

	return e.session.UserID, nil
}

// notifier returns the offer mailer, or a no-op when notifications are off.
func (e *env) notifier() (offer.Notifier, error) {
	if !e.cfg.NotificationsEnabled() {
		return offer.NopNotifier{}, nil
	}
	return offer.NewMailer(e.client, offer.DefaultEmailCacheSize)
}

// imageStore returns the configured image uploader.
func (e *env) imageStore(ctx context.Context) (imagestore.Store, error) {
	if e.cfg.Images.Mode != "s3" {
		return imagestore.NewAPIStore(e.client), nil
	}
	s3cfg := e.cfg.Images.S3
	return imagestore.NewS3Store(ctx, imagestore.S3Options{
		Bucket:    s3cfg.Bucket,
		Region:    s3cfg.Region,
		Endpoint:  s3cfg.Endpoint,
		AccessKey: s3cfg.AccessKey,
		SecretKey: s3cfg.SecretKey,
		PublicURL: s3cfg.PublicURL,
	})
}

func openStore(cfg *config.KashiConfig) (session.Store, error) {
	if cfg.Session.Store == "redis" {
		return session.NewRedisStoreFromURL(cfg.Session.RedisURL, localUser(), cfg.Session.TTL.Std())
	}
	return session.NewFileStore(cfg.Session.Path)
}

// localUser names the Redis session namespace after the OS account.
func localUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "default"
}

// setupLogging installs a text handler on stderr. --verbose forces debug.
func setupLogging(level string, verbose bool) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelWarn
	}
	if verbose {
		lvl = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}
