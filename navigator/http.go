package navigator

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	ierrors "github.com/cnosuke/redirect-checker/internal/errors"
	"go.uber.org/zap"
)

const maxRedirects = 10

// DefaultUserAgent is sent by HTTPNavigator when no user agent is configured.
const DefaultUserAgent = "redirect-checker/1.0"

// HTTPConfig configures an HTTPNavigator.
type HTTPConfig struct {
	UserAgent string
}

// HTTPNavigator follows redirects with a plain HTTP client. It does not execute
// JavaScript, so client-side redirects are not observed.
type HTTPNavigator struct {
	client    *http.Client
	userAgent string

	currentURL string
	doc        *goquery.Document
}

// NewHTTPNavigator creates a new HTTPNavigator.
func NewHTTPNavigator(cfg HTTPConfig) *HTTPNavigator {
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	zap.S().Infow("creating new HTTP navigator", "user_agent", userAgent)

	return &HTTPNavigator{
		client:    &http.Client{},
		userAgent: userAgent,
	}
}

// Navigate fetches urlStr, following up to 10 redirects, and parses the final body.
func (n *HTTPNavigator) Navigate(ctx context.Context, urlStr string, timeout time.Duration) error {
	n.currentURL = ""
	n.doc = nil

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return ierrors.Wrap(err, "failed to create request")
	}
	req.Header.Set("User-Agent", n.userAgent)

	// Track redirect chain for this request
	var redirectChain []string
	client := *n.client
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) == 1 {
			redirectChain = append(redirectChain, via[0].URL.String())
		}
		redirectChain = append(redirectChain, req.URL.String())
		if len(via) >= maxRedirects {
			return errors.New("stopped after 10 redirects")
		}
		return nil
	}

	resp, err := client.Do(req)
	if err != nil {
		return ierrors.Wrap(err, "failed to execute request")
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return ierrors.Wrap(err, "failed to parse response body")
	}

	zap.S().Debugw(
		"response received",
		"url", urlStr,
		"final_url", resp.Request.URL.String(),
		"status", resp.StatusCode,
		"redirect_chain", redirectChain,
		"content_type", resp.Header.Get("Content-Type"),
	)

	n.currentURL = resp.Request.URL.String()
	n.doc = doc
	return nil
}

// CurrentURL returns the URL reached by the last successful Navigate.
func (n *HTTPNavigator) CurrentURL(_ context.Context) (string, error) {
	if n.doc == nil {
		return "", errors.New("no page loaded")
	}
	return n.currentURL, nil
}

// CountElements counts tag elements in the last loaded document whose text matches pattern.
func (n *HTTPNavigator) CountElements(_ context.Context, tag string, pattern *regexp.Regexp) (int, error) {
	if n.doc == nil {
		return 0, errors.New("no page loaded")
	}

	count := 0
	n.doc.Find(tag).Each(func(_ int, s *goquery.Selection) {
		if pattern.MatchString(strings.TrimSpace(s.Text())) {
			count++
		}
	})
	return count, nil
}
