package dataset

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cnosuke/redirect-checker/types"
	"github.com/cockroachdb/errors"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Options selects what to read from a dataset file.
type Options struct {
	// Sheet is the workbook sheet to read. Empty means the first sheet. Ignored for CSV.
	Sheet string
}

// Load reads every row of the dataset at path, header row included.
func Load(path string, opts Options) ([][]string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	zap.S().Debugw("loading dataset", "path", path, "format", ext, "sheet", opts.Sheet)

	switch ext {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return loadWorkbook(path, opts.Sheet)
	case ".csv":
		return loadCSV(path)
	default:
		return nil, errors.Newf("unsupported dataset format %q: %s", ext, path)
	}
}

func loadWorkbook(path string, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open workbook %s", path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			zap.S().Warnw("failed to close workbook", "path", path, "error", cerr)
		}
	}()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.Newf("workbook %s has no sheets", path)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read sheet %q of %s", sheet, path)
	}

	zap.S().Infow("dataset loaded", "path", path, "sheet", sheet, "rows", len(rows))
	return rows, nil
}

// loadCSV reads a CSV file. Blank lines between records are kept as empty rows,
// the way workbook sheets report blank rows, so both formats yield the same row count.
func loadCSV(path string) ([][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	rows := [][]string{}
	nextLine := 1
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse %s", path)
		}

		line, _ := r.FieldPos(0)
		for ; nextLine < line; nextLine++ {
			rows = append(rows, []string{})
		}
		rows = append(rows, record)
		nextLine = 1 + bytes.Count(data[:r.InputOffset()], []byte("\n"))
	}

	zap.S().Infow("dataset loaded", "path", path, "rows", len(rows))
	return rows, nil
}

// Specs converts raw rows into redirection specs, discarding the header row.
// A missing cell becomes an empty field so the checker can report it as skipped.
func Specs(rows [][]string) []types.RedirectionSpec {
	if len(rows) <= 1 {
		return []types.RedirectionSpec{}
	}

	specs := make([]types.RedirectionSpec, 0, len(rows)-1)
	for _, row := range rows[1:] {
		specs = append(specs, types.RedirectionSpec{
			OldURL:                 cell(row, 0),
			ExpectedNewURLContains: cell(row, 1),
		})
	}
	return specs
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
