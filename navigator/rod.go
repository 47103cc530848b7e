package navigator

import (
	"context"
	"regexp"
	"strings"
	"time"

	ierrors "github.com/cnosuke/redirect-checker/internal/errors"
	"github.com/cockroachdb/errors"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

// RodConfig configures the Chrome instance behind a RodNavigator.
type RodConfig struct {
	// ControlURL connects to an already running Chrome instead of launching one.
	ControlURL string
	Bin        string
	Headless   bool
	NoSandbox  bool
	// UserAgent overrides Chrome's own user agent. Empty keeps it.
	UserAgent string
}

// RodNavigator drives one Chrome tab over the DevTools protocol.
type RodNavigator struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	// owned is false when connected through ControlURL; Close then leaves Chrome running.
	owned bool
}

// LaunchRod starts (or connects to) Chrome and opens the page used for every navigation.
func LaunchRod(ctx context.Context, cfg RodConfig) (*RodNavigator, error) {
	zap.S().Infow("starting browser",
		"control_url", cfg.ControlURL,
		"bin", cfg.Bin,
		"headless", cfg.Headless,
		"no_sandbox", cfg.NoSandbox)

	n := &RodNavigator{}

	controlURL := cfg.ControlURL
	if controlURL == "" {
		l := launcher.New().Headless(cfg.Headless).NoSandbox(cfg.NoSandbox)
		if cfg.Bin != "" {
			l = l.Bin(cfg.Bin)
		}
		u, err := l.Launch()
		if err != nil {
			return nil, errors.Wrap(err, "failed to launch chrome")
		}
		n.launcher = l
		n.owned = true
		controlURL = u
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		n.cleanupLauncher()
		return nil, errors.Wrap(err, "failed to connect to chrome")
	}
	n.browser = browser

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = n.Close()
		return nil, errors.Wrap(err, "failed to open page")
	}
	n.page = page

	if cfg.UserAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: cfg.UserAgent}); err != nil {
			_ = n.Close()
			return nil, errors.Wrap(err, "failed to set user agent")
		}
	}

	zap.S().Debugw("browser connected", "control_url", controlURL)
	return n, nil
}

// Navigate loads url and waits for DOMContentLoaded, bounded by timeout.
func (n *RodNavigator) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	p := n.page.Context(ctx).Timeout(timeout)
	defer p.CancelTimeout()

	wait := p.WaitNavigation(proto.PageLifecycleEventNameDOMContentLoaded)
	if err := p.Navigate(url); err != nil {
		return ierrors.Wrapf(err, "failed to navigate to %s", url)
	}
	wait()

	// WaitNavigation gives up silently when the context ends
	if err := p.GetContext().Err(); err != nil {
		return ierrors.Wrapf(err, "timeout of %s exceeded waiting for DOMContentLoaded on %s", timeout, url)
	}
	return nil
}

// CurrentURL returns the URL the tab is showing.
func (n *RodNavigator) CurrentURL(ctx context.Context) (string, error) {
	info, err := n.page.Context(ctx).Info()
	if err != nil {
		return "", ierrors.Wrap(err, "failed to read page info")
	}
	return info.URL, nil
}

// CountElements counts tag elements on the current page whose text matches pattern.
func (n *RodNavigator) CountElements(ctx context.Context, tag string, pattern *regexp.Regexp) (int, error) {
	elements, err := n.page.Context(ctx).Elements(tag)
	if err != nil {
		return 0, ierrors.Wrapf(err, "failed to query %s elements", tag)
	}

	count := 0
	for _, el := range elements {
		text, err := el.Text()
		if err != nil {
			return 0, ierrors.Wrapf(err, "failed to read %s text", tag)
		}
		if pattern.MatchString(strings.TrimSpace(text)) {
			count++
		}
	}
	return count, nil
}

// Close closes the page and browser and stops a launched Chrome process.
func (n *RodNavigator) Close() error {
	var err error
	if n.page != nil {
		if cerr := n.page.Close(); cerr != nil {
			zap.S().Debugw("failed to close page", "error", cerr)
		}
		n.page = nil
	}
	if n.browser != nil && n.owned {
		err = n.browser.Close()
	}
	n.browser = nil
	n.cleanupLauncher()
	return errors.Wrap(err, "failed to close browser")
}

func (n *RodNavigator) cleanupLauncher() {
	if n.launcher != nil {
		n.launcher.Cleanup()
		n.launcher = nil
	}
}
