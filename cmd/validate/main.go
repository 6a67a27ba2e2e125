// Command validate checks a local memory data document offline: it decodes
// the document the way the local source does, maps the header row and runs
// row admission, then prints which rows would be dropped and why.
//
// Usage:
//
//	go run ./cmd/validate -file sheets_data.json [-field map] [-strict]
//
// The exit status is 1 when the document is structurally invalid or lacks a
// required column. With -strict any dropped row also fails the check.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/couchcryptid/memory-map/internal/domain"
	"github.com/couchcryptid/memory-map/internal/source"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	notes  []string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) notef(format string, args ...any) {
	p.notes = append(p.notes, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	file := flag.String("file", "sheets_data.json", "path to the JSON data document")
	field := flag.String("field", "map", "top-level field holding the rows")
	strict := flag.Bool("strict", false, "fail when any row is dropped")
	flag.Parse()

	os.Exit(run(os.Stdout, *file, *field, *strict))
}

func run(w io.Writer, path, field string, strict bool) int {
	fmt.Fprintln(w, "=== Memory Data Validation ===")
	fmt.Fprintln(w)

	rows, err := source.NewFile(path, field).Fetch(context.Background())
	if err != nil {
		fmt.Fprintf(w, "FATAL: %v\n", err)
		return 1
	}
	if len(rows) == 0 {
		fmt.Fprintln(w, "FATAL: document has no header row")
		return 1
	}

	header := checkHeader(rows[0])
	report := checkRows(rows)
	rowsPhase := &phase{name: "Row admission"}
	for _, r := range report.Rejections {
		msg := fmt.Sprintf("row %d: %s", r.ID, r.Reason)
		if r.Detail != "" {
			msg += " (" + r.Detail + ")"
		}
		if strict {
			rowsPhase.errorf("%s", msg)
		} else {
			rowsPhase.notef("%s", msg)
		}
	}

	allPassed := true
	for _, p := range []*phase{header, rowsPhase} {
		status := "PASS"
		if !p.passed() {
			status = fmt.Sprintf("FAIL (%d errors)", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(w, "  %-24s %s\n", p.name, status)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Rows: %d data, %d admitted, %d dropped\n", report.DataRows, report.Admitted, len(report.Rejections))

	for _, p := range []*phase{header, rowsPhase} {
		if len(p.errors)+len(p.notes) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(w, "  [%d] %s\n", i+1, e)
		}
		for _, n := range p.notes {
			fmt.Fprintf(w, "  - %s\n", n)
		}
	}

	if allPassed {
		fmt.Fprintln(w, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(w, "\nValidation FAILED.")
	return 1
}

// checkHeader maps every header label and requires the columns row
// admission depends on.
func checkHeader(header domain.RawRow) *phase {
	p := &phase{name: "Header mapping"}
	seen := make(map[string]string, len(header))
	for _, label := range header {
		f, ok := domain.CanonicalField(label)
		if !ok {
			p.notef("column %q is not a known field and is ignored", label)
			continue
		}
		if prev, dup := seen[f]; dup {
			p.notef("columns %q and %q both map to %s; the first wins", prev, label, f)
			continue
		}
		seen[f] = label
	}
	for _, required := range []string{domain.FieldCoordinates, domain.FieldAvatar} {
		if _, ok := seen[required]; !ok {
			p.errorf("no column maps to %s", required)
		}
	}
	return p
}

func checkRows(rows []domain.RawRow) domain.Report {
	_, report := domain.BuildRecords(rows, domain.DefaultAvatarPath)
	return report
}
