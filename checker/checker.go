package checker

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/cnosuke/redirect-checker/dataset"
	"github.com/cnosuke/redirect-checker/navigator"
	"github.com/cnosuke/redirect-checker/types"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

const (
	DefaultNavigationTimeout = 60 * time.Second
	DefaultHeadingTag        = "h1"

	// ReasonMissingFields is the reason recorded for rows lacking a URL or an expected fragment.
	ReasonMissingFields = "Missing Old URL or Expected New URL part"
)

// DefaultNotFoundPattern matches the headings sites typically render on a missing page.
var DefaultNotFoundPattern = regexp.MustCompile(`(?i)Page Not Found|Error 404|404 Not Found`)

// Options tunes a Checker. Zero values fall back to the package defaults.
type Options struct {
	NavigationTimeout time.Duration
	HeadingTag        string
	NotFoundPattern   *regexp.Regexp
}

// Checker visits legacy URLs one at a time and records where each one ends up.
type Checker struct {
	nav             navigator.Navigator
	timeout         time.Duration
	headingTag      string
	notFoundPattern *regexp.Regexp
}

// New creates a Checker that drives nav.
func New(nav navigator.Navigator, opts Options) *Checker {
	c := &Checker{
		nav:             nav,
		timeout:         opts.NavigationTimeout,
		headingTag:      opts.HeadingTag,
		notFoundPattern: opts.NotFoundPattern,
	}
	if c.timeout <= 0 {
		c.timeout = DefaultNavigationTimeout
	}
	if c.headingTag == "" {
		c.headingTag = DefaultHeadingTag
	}
	if c.notFoundPattern == nil {
		c.notFoundPattern = DefaultNotFoundPattern
	}
	return c
}

// CheckFile loads the dataset at path and checks every row.
func (c *Checker) CheckFile(ctx context.Context, path string, opts dataset.Options) ([]types.CheckRecord, error) {
	rows, err := dataset.Load(path, opts)
	if err != nil {
		return nil, err
	}
	return c.Check(ctx, rows)
}

// Check checks every row after the header and returns one record per row, in row order.
// Row failures are recorded, never returned. If ctx ends before every row is reached,
// the records checked so far are returned together with an error wrapping ctx.Err().
func (c *Checker) Check(ctx context.Context, rows [][]string) ([]types.CheckRecord, error) {
	specs := dataset.Specs(rows)
	records := make([]types.CheckRecord, 0, len(specs))

	zap.S().Infow("checking redirections",
		"rows", len(specs),
		"timeout", c.timeout,
		"heading_tag", c.headingTag)

	for i, spec := range specs {
		if err := ctx.Err(); err != nil {
			remaining := len(specs) - i
			zap.S().Warnw("run cancelled, remaining rows not checked",
				"checked", i,
				"remaining", remaining,
				"error", err)
			return records, errors.Wrapf(err, "run aborted: %d of %d row(s) not checked", remaining, len(specs))
		}
		records = append(records, c.checkOne(ctx, spec))
	}

	return records, nil
}

func (c *Checker) checkOne(ctx context.Context, spec types.RedirectionSpec) types.CheckRecord {
	record := types.CheckRecord{
		OldURL:                 spec.OldURL,
		ExpectedNewURLContains: spec.ExpectedNewURLContains,
		Status:                 types.StatusPassed,
		NewURL:                 types.NotAvailable,
		Error:                  types.NotAvailable,
	}

	if spec.OldURL == "" || spec.ExpectedNewURLContains == "" {
		zap.S().Warnw("skipping row due to missing Old URL or Expected New URL part",
			"old_url", spec.OldURL,
			"expected_new_url_contains", spec.ExpectedNewURLContains)
		record.Status = types.StatusSkipped
		record.Reason = ReasonMissingFields
		record.Error = record.Reason
		return record
	}

	reasons := c.inspect(ctx, spec, &record)

	if len(reasons) > 0 {
		record.Status = types.StatusFailed
		record.Reason = strings.Join(reasons, " ")
		record.Error = record.Reason
		zap.S().Errorw("FAILED",
			"old_url", record.OldURL,
			"new_url", record.NewURL,
			"reason", record.Reason)
	} else {
		zap.S().Infow("SUCCESS",
			"old_url", record.OldURL,
			"new_url", record.NewURL)
	}

	return record
}

// inspect navigates to spec.OldURL and returns the failure clauses. It sets record.NewURL once known.
func (c *Checker) inspect(ctx context.Context, spec types.RedirectionSpec, record *types.CheckRecord) []string {
	var reasons []string

	if err := c.nav.Navigate(ctx, spec.OldURL, c.timeout); err != nil {
		return append(reasons, initialCheckFailed(err))
	}

	newURL, err := c.nav.CurrentURL(ctx)
	if err != nil {
		return append(reasons, initialCheckFailed(err))
	}
	record.NewURL = newURL

	if !Matches(newURL, spec.ExpectedNewURLContains) {
		reasons = append(reasons, fmt.Sprintf(
			"URL Mismatch (Case & Trailing Slash Insensitive): Expected to contain \"%s\", but got \"%s\".",
			spec.ExpectedNewURLContains, newURL))
	}

	count, err := c.nav.CountElements(ctx, c.headingTag, c.notFoundPattern)
	if err != nil {
		return append(reasons, initialCheckFailed(err))
	}
	if count > 0 {
		reasons = append(reasons, fmt.Sprintf("Page Not Found %s detected on the new page.", strings.ToUpper(c.headingTag)))
	}

	return reasons
}

func initialCheckFailed(err error) string {
	return fmt.Sprintf("Navigation or initial check failed: %s.", err.Error())
}
