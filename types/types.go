package types

// NotAvailable is the sentinel stored in CheckRecord fields that have no value.
const NotAvailable = "N/A"

// Status - Outcome of a single redirection check
type Status string

const (
	StatusPassed  Status = "Passed"
	StatusFailed  Status = "Failed"
	StatusSkipped Status = "Skipped"
)

// RedirectionSpec - One data row of the input dataset
type RedirectionSpec struct {
	OldURL                 string `json:"old_url"`
	ExpectedNewURLContains string `json:"expected_new_url_contains"`
}

// CheckRecord - Result of checking one RedirectionSpec
type CheckRecord struct {
	OldURL                 string `json:"old_url"`
	ExpectedNewURLContains string `json:"expected_new_url_contains"`
	Status                 Status `json:"status"`
	Reason                 string `json:"reason"`
	// NewURL is the URL the browser ended up on, or NotAvailable if navigation never completed.
	NewURL string `json:"new_url"`
	// Error mirrors Reason for failed and skipped records and is NotAvailable otherwise.
	Error string `json:"error"`
}

// Summary - Record counts by status
type Summary struct {
	Total   int `json:"total"`
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

// Summarize counts records by status.
func Summarize(records []CheckRecord) Summary {
	s := Summary{Total: len(records)}
	for _, r := range records {
		switch r.Status {
		case StatusPassed:
			s.Passed++
		case StatusFailed:
			s.Failed++
		case StatusSkipped:
			s.Skipped++
		}
	}
	return s
}

// FilterByStatus returns the records with the given status, preserving order.
func FilterByStatus(records []CheckRecord, status Status) []CheckRecord {
	filtered := []CheckRecord{}
	for _, r := range records {
		if r.Status == status {
			filtered = append(filtered, r)
		}
	}
	return filtered
}
