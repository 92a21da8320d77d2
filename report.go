package rowlint

import (
	"fmt"
	"io"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/rowlint/rowlint/i18n"
)

// Report packages one validation outcome for presentation. Rendering is a
// pure transformation of the diagnostic list; the engine never prints.
type Report struct {
	RunID  string `json:"run_id"`
	Source string `json:"source"`
	Rows   int64  `json:"rows"`
	Valid  bool   `json:"valid"`
	Issues Issues `json:"issues"`
}

// NewReport stamps the result with a fresh run ID.
func NewReport(src Source, res Result) Report {
	return Report{
		RunID:  uuid.NewString(),
		Source: src.Name(),
		Rows:   res.Rows,
		Valid:  res.Valid(),
		Issues: res.Issues,
	}
}

// WriteText renders one line per diagnostic followed by a summary line. The
// per-code label is localized through the i18n package.
func (r Report) WriteText(w io.Writer) error {
	for _, it := range r.Issues {
		if _, err := fmt.Fprintf(w, "%s: %s: %s\n", it.Where(), i18n.T(it.Code, nil), it.Message); err != nil {
			return err
		}
	}
	var err error
	if r.Valid {
		_, err = fmt.Fprintf(w, "%s: ok (%d rows)\n", r.Source, r.Rows)
	} else {
		_, err = fmt.Fprintf(w, "%s: %d issue(s) in %d rows\n", r.Source, len(r.Issues), r.Rows)
	}
	return err
}

// WriteJSON renders the report as a single JSON document.
func (r Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
