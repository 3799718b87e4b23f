package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"reminders-lite/internal/cache"
	"reminders-lite/internal/gateway"
	"reminders-lite/internal/session"
)

// app is the CLI's view layer: it owns the gateway, the session and the cache
// service and renders what they report.
type app struct {
	out    io.Writer
	errOut io.Writer
	v      *viper.Viper
	logger *slog.Logger

	gateway  *gateway.Client
	sessions *session.Store
	cache    *cache.Service

	route    string
	failures []error
}

func (a *app) Navigate(route string) {
	a.route = route
	a.logger.Debug("navigate", "route", route)
}

func (a *app) Notify(message string) {
	fmt.Fprintln(a.out, message)
}

func (a *app) onWriteError(op string, err error) {
	a.failures = append(a.failures, fmt.Errorf("could not %s reminder: %w", op, err))
}

// writeResult turns side-channel failures into a non-zero exit. cobra prints
// the returned error, so nothing is written to errOut here.
func (a *app) writeResult() error {
	if len(a.failures) == 0 {
		return nil
	}
	return errors.Join(a.failures...)
}

func (a *app) setup() error {
	level := slog.LevelInfo
	if a.v.GetBool("debug") {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(a.errOut, &slog.HandlerOptions{Level: level}))

	gw, err := gateway.New(gateway.Options{
		BaseURL: a.v.GetString("server"),
		Timeout: a.v.GetDuration("timeout"),
	})
	if err != nil {
		return err
	}
	a.gateway = gw

	path, err := expandHome(a.v.GetString("session_file"))
	if err != nil {
		return err
	}
	sessions, err := session.Open(path)
	if err != nil {
		return err
	}
	a.sessions = sessions

	a.cache = cache.New(gw, sessions, cache.Options{
		Navigator: a,
		Notifier:  a,
		OnError:   a.onWriteError,
		Logger:    a.logger,
	})
	return nil
}

func (a *app) loadConfig(cfgFile string) error {
	if cfgFile != "" {
		a.v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			a.v.AddConfigPath(home)
		}
		a.v.AddConfigPath(".")
		a.v.SetConfigType("yaml")
		a.v.SetConfigName(".reminders")
	}

	a.v.SetEnvPrefix("REMINDERS")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	a.v.AutomaticEnv()

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) && cfgFile == "" {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func expandHome(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
	}
	return path, nil
}

func defaultSessionFile() string {
	return filepath.Join("~", ".reminders", "session.json")
}

const defaultTimeout = 15 * time.Second
