// Command reader is a terminal front end for the Guardian content search API.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/browser"
	"github.com/spf13/pflag"

	"github.com/Adda-Baaj/taja-reader/internal/config"
	"github.com/Adda-Baaj/taja-reader/internal/crawler"
	"github.com/Adda-Baaj/taja-reader/internal/domain"
	"github.com/Adda-Baaj/taja-reader/internal/logger"
	"github.com/Adda-Baaj/taja-reader/internal/netcheck"
	"github.com/Adda-Baaj/taja-reader/internal/prefs"
	"github.com/Adda-Baaj/taja-reader/internal/screen"
	"github.com/Adda-Baaj/taja-reader/internal/tui"
	"github.com/Adda-Baaj/taja-reader/pkg/httpclient"
	"github.com/Adda-Baaj/taja-reader/pkg/providers"
	"github.com/Adda-Baaj/taja-reader/pkg/share"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "reader: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	fs := pflag.NewFlagSet("reader", pflag.ContinueOnError)
	config.RegisterFlags(fs)
	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	cfgFile, _ := fs.GetString("config")
	envFile, _ := fs.GetString("env-file")

	cfg, err := config.Load(config.LoadOptions{ConfigFile: cfgFile, EnvFile: envFile, Flags: fs})
	if err != nil {
		return err
	}

	log, err := logger.NewFile(cfg.Log.File, cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	if cfg.API.Key == "" {
		log.WarnObj("no api key configured", "config_warning", map[string]any{"hint": "set GUARDIAN_API_KEY"})
	}
	log.InfoObj("reader starting", "config", cfg.String())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := httpclient.NewRestyClientWithTimeouts(httpclient.Timeouts{
		Connect: cfg.HTTP.ConnectTimeout,
		Read:    cfg.HTTP.ReadTimeout,
	}, func(level, msg string) {
		switch level {
		case "error":
			log.ErrorObj("http client", "resty", msg)
		case "warn":
			log.WarnObj("http client", "resty", msg)
		default:
			log.DebugObj("http client", "resty", msg)
		}
	})

	store, err := openPrefs(cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()

	var reach screen.Reachability = netcheck.New()
	if cfg.Network.SkipCheck {
		reach = netcheck.Static(true)
	}

	source := providers.NewGuardianSource(cfg.API.BaseURL, client, log)
	ctrl := screen.NewController(source, reach, store, cfg.API.Key, log)

	shareFn, err := buildSharer(ctx, cfg.Share.TargetsFile, log)
	if err != nil {
		return err
	}

	// the terminal belongs to the UI
	browser.Stdout, browser.Stderr = io.Discard, io.Discard

	model := tui.New(ctx, tui.Deps{
		Loader:  ctrl,
		Prefs:   store,
		Preview: crawler.NewPreviewer(client, log),
		Share:   shareFn,
		Open:    browser.OpenURL,
		Log:     log,
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("run ui: %w", err)
	}
	ctrl.Stop()
	log.InfoObj("reader stopped", "shutdown", map[string]any{"state": ctrl.State().String()})
	return nil
}

func openPrefs(cfg *config.Config, log logger.Logger) (prefs.Store, error) {
	defaults := cfg.DefaultPreferences()
	if cfg.Prefs.Path == "" {
		return prefs.NewMemory(defaults), nil
	}
	store, err := prefs.Open(cfg.Prefs.Path, defaults, log)
	if err != nil {
		return nil, fmt.Errorf("open preferences: %w", err)
	}
	return store, nil
}

// buildSharer returns nil when no targets file is configured or every target
// is disabled.
func buildSharer(ctx context.Context, path string, log logger.Logger) (tui.ShareFunc, error) {
	if path == "" {
		return nil, nil
	}
	cfgs, err := share.LoadTargets(path)
	if err != nil {
		return nil, err
	}
	targets, err := share.BuildAll(ctx, share.DefaultRegistry(), cfgs, log)
	if err != nil {
		return nil, fmt.Errorf("build share targets: %w", err)
	}
	if len(targets) == 0 {
		return nil, nil
	}
	log.InfoObj("share targets ready", "share_targets", map[string]any{"count": len(targets)})

	return func(ctx context.Context, art domain.Article) error {
		return share.Broadcast(ctx, targets, share.NewEvent(art, time.Now()), log)
	}, nil
}
