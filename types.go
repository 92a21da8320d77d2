package rowlint

import "github.com/rowlint/rowlint/internal/rowio"

// FixedPolicy decides what happens to a fixed-width line whose length does
// not equal the sum of the declared field widths.
type FixedPolicy int

const (
	// FixedStrict aborts the run with a data format error naming the row.
	FixedStrict FixedPolicy = iota
	// FixedPad right-pads short lines with spaces and truncates long ones.
	FixedPad
)

func (p FixedPolicy) rowio() rowio.FixedPolicy {
	if p == FixedPad {
		return rowio.FixedPad
	}
	return rowio.FixedStrict
}

// ValidateOpt bundles validation options.
type ValidateOpt struct {
	// MaxIssues stops the run once that many diagnostics were collected;
	// 0 means exhaustive validation.
	MaxIssues int
	// FailFast is shorthand for MaxIssues = 1.
	FailFast bool
	// FixedPolicy applies to fixed-width data only.
	FixedPolicy FixedPolicy
}

// Result is the outcome of one validation run.
type Result struct {
	// Issues holds every diagnostic in document order. After a fatal error
	// it holds that single diagnostic.
	Issues Issues
	// Rows counts the data rows that were read.
	Rows int64
}

// Valid reports whether the run completed without any diagnostic.
func (r Result) Valid() bool { return len(r.Issues) == 0 }
