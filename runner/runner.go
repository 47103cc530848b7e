package runner

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/cnosuke/redirect-checker/checker"
	"github.com/cnosuke/redirect-checker/config"
	"github.com/cnosuke/redirect-checker/dataset"
	"github.com/cnosuke/redirect-checker/navigator"
	"github.com/cnosuke/redirect-checker/report"
	"github.com/cnosuke/redirect-checker/types"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// ErrRedirectionsFailed marks the error returned by Run when at least one record failed.
var ErrRedirectionsFailed = errors.New("URL redirections failed")

// Runner performs one full pass: check every row, render the report, decide pass or fail.
type Runner struct {
	cfg *config.Config
	nav navigator.Navigator
	out io.Writer
	now func() time.Time
}

// New creates a Runner. Console output (banners and failure details) is written to out.
func New(cfg *config.Config, nav navigator.Navigator, out io.Writer) *Runner {
	return &Runner{
		cfg: cfg,
		nav: nav,
		out: out,
		now: time.Now,
	}
}

// ReportPath returns the timestamped report path for a run started at t.
func ReportPath(dir, prefix string, t time.Time) string {
	stamp := strings.ReplaceAll(t.UTC().Format("2006-01-02T15:04:05.000Z"), ":", "-")
	return filepath.Join(dir, prefix+stamp+".html")
}

// Run executes one pass and returns an error marked with ErrRedirectionsFailed if any record failed.
// A run cut short by ctx returns the unmarked abort error instead, after rendering the partial report.
func (r *Runner) Run(ctx context.Context) error {
	started := r.now()
	reportPath := ReportPath(r.cfg.Report.Dir, r.cfg.Report.FilePrefix, started)

	fmt.Fprintf(r.out, "\n--- Starting URL Redirection Test ---\n")
	fmt.Fprintf(r.out, "   Input File: %s\n", r.cfg.Check.InputPath)
	fmt.Fprintf(r.out, "   Report will be saved to: %s\n", reportPath)
	fmt.Fprintf(r.out, "   Timestamp: %s\n\n", started.Format(report.TimeFormat))

	pattern, err := r.cfg.NotFoundRegexp()
	if err != nil {
		return err
	}

	c := checker.New(r.nav, checker.Options{
		NavigationTimeout: time.Duration(r.cfg.Check.NavigationTimeout) * time.Second,
		HeadingTag:        r.cfg.Check.HeadingTag,
		NotFoundPattern:   pattern,
	})

	rows, err := dataset.Load(r.cfg.Check.InputPath, dataset.Options{Sheet: r.cfg.Check.Sheet})
	if err != nil {
		return errors.Wrap(err, "failed to load dataset")
	}

	// A cut-short run still reports what it checked
	records, checkErr := c.Check(ctx, rows)

	failed := types.FilterByStatus(records, types.StatusFailed)
	zap.S().Debugw("rendering report",
		"total", len(records),
		"failed", len(failed),
		"report_path", reportPath)

	// Always the full record list, never the filtered failures
	report.Render(records, reportPath, report.Options{
		TemplatePath: r.cfg.Report.TemplatePath,
		Markdown:     r.cfg.Report.Markdown,
		Now:          r.now,
	})

	summary := types.Summarize(records)
	zap.S().Infow("run completed",
		"total", summary.Total,
		"passed", summary.Passed,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
		"aborted", checkErr != nil,
		"elapsed", r.now().Sub(started))

	if len(failed) > 0 {
		r.printFailures(failed)
	}

	if checkErr != nil {
		fmt.Fprintf(r.out, "\n!!!!! RUN ABORTED: not every URL was checked !!!!!\n%s\n\n", checkErr)
		return checkErr
	}

	if len(failed) > 0 {
		return errors.Mark(
			errors.Newf("%d URL redirection(s) failed. See detailed console logs and HTML report for details.", len(failed)),
			ErrRedirectionsFailed,
		)
	}

	fmt.Fprintf(r.out, "\n=================================================\n")
	fmt.Fprintf(r.out, "==== All URL Redirections Passed Successfully! ====\n")
	fmt.Fprintf(r.out, "=================================================\n\n")
	return nil
}

func (r *Runner) printFailures(failed []types.CheckRecord) {
	banner := strings.Repeat("!", 69)
	fmt.Fprintf(r.out, "\n%s\n", banner)
	fmt.Fprintf(r.out, "!!!!! TEST FAILED: Some URL Redirections or 404 Pages Found !!!!!\n")
	fmt.Fprintf(r.out, "%s\n\n", banner)
	fmt.Fprintf(r.out, "Total Failed Navigations: %d\n\n", len(failed))

	for i, rec := range failed {
		fmt.Fprintf(r.out, "--- FAILURE #%d ---\n", i+1)
		fmt.Fprintf(r.out, "  Old URL:                 %s\n", rec.OldURL)
		fmt.Fprintf(r.out, "  Expected New URL Part:   %s\n", rec.ExpectedNewURLContains)
		fmt.Fprintf(r.out, "  Actual New URL Reached:  %s\n", rec.NewURL)
		fmt.Fprintf(r.out, "  Reason for Failure:      %s\n", rec.Reason)
		fmt.Fprintf(r.out, "--------------------------------------------------\n\n")
	}
}
