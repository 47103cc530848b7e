package report

import (
	"bytes"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/cnosuke/redirect-checker/types"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// TimeFormat is the layout of the generation timestamp shown in the report.
const TimeFormat = "2006-01-02 15:04:05 MST"

// Options controls how a report is rendered.
type Options struct {
	TemplatePath string
	// Markdown also writes a Markdown conversion of the report next to the HTML file.
	Markdown bool
	Now      func() time.Time
}

// Data is the value passed to the report template.
type Data struct {
	Records     []types.CheckRecord
	Total       int
	Passed      int
	Failed      int
	Skipped     int
	GeneratedAt string
}

// Render writes the HTML report for records to destinationPath.
// Failures are logged and never returned: the check verdict must not depend on the report.
func Render(records []types.CheckRecord, destinationPath string, opts Options) {
	zap.S().Debugw("generating report",
		"report_path", destinationPath,
		"template_path", opts.TemplatePath,
		"records", len(records))

	if err := render(records, destinationPath, opts); err != nil {
		zap.S().Errorw("failed to generate HTML report",
			"report_path", destinationPath,
			"template_path", opts.TemplatePath,
			"error", err,
			"details", errors.FlattenDetails(err))
		return
	}

	zap.S().Infow("HTML report generated", "report_path", destinationPath)
}

func render(records []types.CheckRecord, destinationPath string, opts Options) error {
	if err := os.MkdirAll(filepath.Dir(destinationPath), 0o755); err != nil {
		return errors.Wrap(err, "failed to create report directory")
	}

	if _, err := os.Stat(opts.TemplatePath); err != nil {
		return errors.Wrapf(err, "report template not found at %s", opts.TemplatePath)
	}

	tmpl, err := template.New(filepath.Base(opts.TemplatePath)).
		Funcs(template.FuncMap{"inc": func(i int) int { return i + 1 }}).
		ParseFiles(opts.TemplatePath)
	if err != nil {
		return errors.Wrap(err, "failed to parse report template")
	}

	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	summary := types.Summarize(records)
	data := Data{
		Records:     records,
		Total:       summary.Total,
		Passed:      summary.Passed,
		Failed:      summary.Failed,
		Skipped:     summary.Skipped,
		GeneratedAt: now().Format(TimeFormat),
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return errors.Wrap(err, "failed to execute report template")
	}

	if err := os.WriteFile(destinationPath, buf.Bytes(), 0o644); err != nil {
		return errors.Wrap(err, "failed to write report")
	}

	if opts.Markdown {
		if err := writeMarkdown(buf.String(), MarkdownPath(destinationPath)); err != nil {
			// The HTML report is already on disk
			zap.S().Warnw("failed to write Markdown report", "error", err)
		}
	}
	return nil
}

// MarkdownPath returns the path of the Markdown companion of an HTML report.
func MarkdownPath(htmlPath string) string {
	return strings.TrimSuffix(htmlPath, filepath.Ext(htmlPath)) + ".md"
}

func writeMarkdown(html string, path string) error {
	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())
	converter.Remove("style", "title")
	markdown, err := converter.ConvertString(html)
	if err != nil {
		return errors.Wrap(err, "failed to convert report to Markdown")
	}
	if err := os.WriteFile(path, []byte(markdown), 0o644); err != nil {
		return errors.Wrap(err, "failed to write Markdown report")
	}
	zap.S().Infow("Markdown report generated", "report_path", path)
	return nil
}
