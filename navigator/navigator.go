package navigator

import (
	"context"
	"regexp"
	"time"
)

// Navigator drives a single page through a sequence of navigations.
// Implementations are not safe for concurrent use; callers navigate one URL at a time.
type Navigator interface {
	// Navigate loads url and waits until the initial DOM parse completes or timeout elapses.
	Navigate(ctx context.Context, url string, timeout time.Duration) error

	// CurrentURL returns the URL of the page after the last navigation, redirects included.
	CurrentURL(ctx context.Context) (string, error)

	// CountElements counts elements with the given tag whose text matches pattern.
	CountElements(ctx context.Context, tag string, pattern *regexp.Regexp) (int, error)
}

// Closer is implemented by navigators that hold resources such as a browser process.
type Closer interface {
	Close() error
}
