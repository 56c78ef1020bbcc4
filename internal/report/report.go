// Package report defines the post-run history export shared by both
// backends: a comma-separated file with a header row, one record per
// attempted backup step.
package report

import (
	"fmt"
	"strings"
)

// Row is one attempted step in the run history.
type Row struct {
	Name          string // database or job-step name, depending on backend
	Status        string // Success, Failed or Error
	Size          string // rendered size, or N/A when unknown
	BackupFile    string
	CompletedTime string
	Error         string
}

const (
	StatusSuccess = "Success"
	StatusFailed  = "Failed"
	StatusError   = "Error"
)

// Header returns the report columns. The first column is "Database" for the
// task backend and "JobName" for the agent backend; the rest are fixed.
func Header(firstColumn string) []string {
	return []string{firstColumn, "Status", "Size", "BackupFile", "CompletedTime", "Error"}
}

// HeaderLine renders the header as one comma-separated line.
func HeaderLine(firstColumn string) string {
	return strings.Join(Header(firstColumn), ",")
}

// Line renders one record. Fields are embedded verbatim with no quoting,
// because the rows end up inside generated scripts where fields carry shell
// runtime variables; callers keep commas out of field values.
func Line(r Row) string {
	return strings.Join([]string{r.Name, r.Status, r.Size, r.BackupFile, r.CompletedTime, r.Error}, ",")
}

// SizeOrNA renders a byte count, or N/A for an unknown size.
func SizeOrNA(n int64) string {
	if n < 0 {
		return "N/A"
	}
	return fmt.Sprintf("%d", n)
}
