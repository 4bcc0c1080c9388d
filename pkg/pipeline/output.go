package pipeline

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/chartsync/chartsync/pkg/mirror"
)

// Output format selectors.
const (
	FormatJSON = "json"
	FormatText = "text"
)

// WriteRecords serializes extraction records either as a JSON array or as
// pipe-delimited text lines (original|mirror|chart).
func WriteRecords(w io.Writer, records []mirror.Record, format string) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if records == nil {
			records = []mirror.Record{}
		}
		return enc.Encode(records)
	case FormatText:
		for _, rec := range records {
			if _, err := fmt.Fprintln(w, rec.Text()); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}
