package runner

import (
	"context"
	"io"
	"time"

	"github.com/cnosuke/redirect-checker/config"
	"github.com/cnosuke/redirect-checker/navigator"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// Execute owns the browser lifecycle around a single Run. The whole run is
// bounded by cfg.Check.RunTimeout seconds when it is positive.
func Execute(ctx context.Context, cfg *config.Config, out io.Writer) error {
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}

	if cfg.Check.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(cfg.Check.RunTimeout)*time.Second)
		defer cancel()
	}

	nav, err := NewNavigator(ctx, cfg)
	if err != nil {
		return err
	}
	if closer, ok := nav.(navigator.Closer); ok {
		defer func() {
			if cerr := closer.Close(); cerr != nil {
				zap.S().Warnw("failed to close navigator", "error", cerr)
			}
		}()
	}

	err = New(cfg, nav, out).Run(ctx)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return errors.Wrapf(err, "run exceeded run_timeout of %ds", cfg.Check.RunTimeout)
	}
	return err
}

// NewNavigator builds the navigator selected by cfg.Browser.Engine.
func NewNavigator(ctx context.Context, cfg *config.Config) (navigator.Navigator, error) {
	zap.S().Debugw("creating navigator", "engine", cfg.Browser.Engine)

	switch cfg.Browser.Engine {
	case config.EngineHTTP:
		return navigator.NewHTTPNavigator(navigator.HTTPConfig{
			UserAgent: cfg.Browser.UserAgent,
		}), nil
	case config.EngineRod:
		nav, err := navigator.LaunchRod(ctx, navigator.RodConfig{
			ControlURL: cfg.Browser.ControlURL,
			Bin:        cfg.Browser.Bin,
			Headless:   !cfg.Browser.Show,
			NoSandbox:  cfg.Browser.NoSandbox,
			UserAgent:  cfg.Browser.UserAgent,
		})
		if err != nil {
			zap.S().Errorw("failed to start browser", "error", err)
			return nil, err
		}
		return nav, nil
	default:
		return nil, errors.Newf("unknown browser engine %q", cfg.Browser.Engine)
	}
}
