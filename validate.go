package rowlint

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rowlint/rowlint/checks"
	"github.com/rowlint/rowlint/fields"
	"github.com/rowlint/rowlint/icd"
	"github.com/rowlint/rowlint/internal/rowio"
	"github.com/rowlint/rowlint/internal/sheet"
	"github.com/rowlint/rowlint/ranges"
)

// contextCheckInterval is how often (in rows) the orchestrator polls for
// context cancellation; per-row polling would dominate small-row workloads.
const contextCheckInterval = 100

// Ruleset is a compiled ICD: the parsed Spec plus the per-field validators,
// ready to validate any number of data sources. Compile checks everything
// that can fail before data is read, so a Ruleset never produces ICD syntax
// errors at validation time.
type Ruleset struct {
	Spec       *icd.Spec
	validators []fields.Validator
	fieldIndex map[string]int
}

// icdContainerFormat describes the ICD document itself: comma-separated
// text, independent of the format the ICD declares for the data.
func icdContainerFormat() icd.DataFormat {
	return icd.DataFormat{
		Format:        icd.FormatCSV,
		Encoding:      "utf-8",
		LineDelimiter: icd.LineAny,
		ItemDelimiter: ',',
		Quote:         '"',
		Escape:        '"',
	}
}

// LoadICD parses and compiles an ICD supplied as delimited text. Errors are
// returned as Issues holding a single fatal icd_syntax diagnostic.
func LoadICD(r io.Reader) (*Ruleset, error) {
	reader, err := rowio.Open(r, icdContainerFormat(), nil, rowio.FixedStrict)
	if err != nil {
		return nil, Issues{icdIssue(err)}
	}
	var rows [][]string
	for {
		row, err := reader.ReadRow()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, Issues{icdIssue(err)}
		}
		rows = append(rows, row.Cells)
	}
	spec, err := icd.Parse(rows)
	if err != nil {
		return nil, Issues{icdIssue(err)}
	}
	return Compile(spec)
}

// Compile builds the Ruleset for a parsed Spec: one validator per field and
// one compile pass over every check rule. Example values must satisfy their
// own field's validation.
func Compile(spec *icd.Spec) (*Ruleset, error) {
	rs := &Ruleset{
		Spec:       spec,
		validators: make([]fields.Validator, len(spec.Fields)),
		fieldIndex: spec.FieldIndex(),
	}
	for i, f := range spec.Fields {
		if spec.Format.Format == icd.FormatFixed && f.Type == icd.FieldInteger {
			// In fixed format the length is the column width, enforced by
			// the reader; it does not bound the numeric value.
			f.Length = ranges.Range{}
		}
		v, err := fields.New(f)
		if err != nil {
			return nil, Issues{icdIssue(err)}
		}
		if f.Example != "" {
			if viol := v.Validate(f.Example); viol != nil {
				return nil, Issues{icdIssue(fmt.Errorf("field %q: example value %q does not satisfy the field's own rules: %s", f.Name, f.Example, viol.Message))}
			}
		}
		rs.validators[i] = v
	}
	if _, err := rs.newChecks(); err != nil {
		return nil, Issues{icdIssue(err)}
	}
	return rs, nil
}

// newChecks builds fresh accumulators; check state is scoped to one run.
func (rs *Ruleset) newChecks() ([]checks.Check, error) {
	accs := make([]checks.Check, len(rs.Spec.Checks))
	for i, c := range rs.Spec.Checks {
		acc, err := checks.New(c, rs.fieldIndex)
		if err != nil {
			return nil, err
		}
		accs[i] = acc
	}
	return accs, nil
}

func icdIssue(err error) Issue {
	return Issue{Code: CodeIcdSyntax, Class: ClassIcdSyntax, Message: err.Error()}
}

// ValidateFrom reads the data source once and returns every deviation from
// the ICD in document order. Validation is exhaustive, never fail-fast,
// except for fatal reader-level errors, which abort the run and become the
// sole diagnostic (also returned as the error). Non-fatal diagnostics never
// produce a non-nil error; inspect Result.Valid.
func ValidateFrom(ctx context.Context, rs *Ruleset, src Source, opts ...ValidateOpt) (Result, error) {
	var opt ValidateOpt
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	if opt.FailFast && opt.MaxIssues == 0 {
		opt.MaxIssues = 1
	}

	rc, err := src.Open()
	if err != nil {
		return fatal(Issue{
			Code:    CodeDataFormat,
			Class:   ClassDataFormat,
			Message: fmt.Sprintf("cannot open %s: %v", src.Name(), err),
		})
	}
	defer rc.Close()

	reader, err := openReader(rc, rs.Spec, opt.FixedPolicy)
	if err != nil {
		return fatal(formatIssue(err))
	}
	if c, ok := reader.(io.Closer); ok {
		defer c.Close()
	}

	accs, err := rs.newChecks()
	if err != nil {
		return fatal(icdIssue(err))
	}

	col := collector{max: opt.MaxIssues}
	var res Result
	for {
		if res.Rows%contextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				res.Issues = col.issues
				return res, err
			}
		}
		row, err := reader.ReadRow()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fatal(formatIssue(err))
		}
		res.Rows++
		rs.validateRow(row, accs, &col)
		if col.full {
			res.Issues = col.issues
			return res, nil
		}
	}
	for _, acc := range accs {
		for _, v := range acc.Finalize() {
			col.add(checkIssue(v))
		}
	}
	res.Issues = col.issues
	return res, nil
}

// validateRow runs the per-row pipeline: allowed characters on the raw
// cells, then the structural cell-count check, then per-cell field
// validation, then the check accumulators. Rows failing the structural
// check are withheld from field validation and from the accumulators.
func (rs *Ruleset) validateRow(row rowio.Row, accs []checks.Check, col *collector) {
	allowed := rs.Spec.Format.AllowedCharacters
	if !allowed.Unconstrained() {
		for ci, cell := range row.Cells {
			name := ""
			if ci < len(rs.Spec.Fields) {
				name = rs.Spec.Fields[ci].Name
			}
			pos := 0
			for _, r := range cell {
				pos++
				if !allowed.Contains(int64(r)) {
					col.add(Issue{
						Code:    CodeCharSet,
						Class:   ClassFieldValue,
						Message: fmt.Sprintf("character %q (code %d) at position %d is not allowed", string(r), r, pos),
						Row:     row.Number,
						Column:  ci + 1,
						Field:   name,
					})
				}
			}
		}
	}
	if len(row.Cells) != len(rs.Spec.Fields) {
		col.add(Issue{
			Code:    CodeRowStructure,
			Class:   ClassStructural,
			Message: fmt.Sprintf("row has %d cells but the ICD defines %d fields", len(row.Cells), len(rs.Spec.Fields)),
			Row:     row.Number,
		})
		return
	}
	for i, cell := range row.Cells {
		if viol := rs.validators[i].Validate(cell); viol != nil {
			col.add(Issue{
				Code:    viol.Code,
				Class:   ClassFieldValue,
				Message: viol.Message,
				Row:     row.Number,
				Column:  i + 1,
				Field:   rs.Spec.Fields[i].Name,
				Params:  viol.Params,
			})
		}
	}
	for _, acc := range accs {
		for _, v := range acc.Observe(row.Number, row.Cells) {
			col.add(checkIssue(v))
		}
	}
}

func openReader(rc io.Reader, spec *icd.Spec, pol FixedPolicy) (rowio.Reader, error) {
	f := spec.Format
	switch f.Format {
	case icd.FormatExcel:
		return sheet.OpenXLSX(rc, f, len(spec.Fields))
	case icd.FormatODS:
		return sheet.OpenODS(rc, f, len(spec.Fields))
	case icd.FormatFixed:
		return rowio.Open(rc, f, spec.FieldWidths(), pol.rowio())
	default:
		return rowio.Open(rc, f, nil, pol.rowio())
	}
}

func formatIssue(err error) Issue {
	it := Issue{Code: CodeDataFormat, Class: ClassDataFormat, Message: err.Error()}
	var fe *rowio.FormatError
	if errors.As(err, &fe) {
		it.Row = fe.Row
		it.Message = fe.Message
	}
	return it
}

func checkIssue(v checks.Violation) Issue {
	return Issue{
		Code:    v.Code,
		Class:   ClassCheckViolation,
		Message: v.Message,
		Row:     v.Row,
		Params:  v.Params,
	}
}

func fatal(it Issue) (Result, error) {
	iss := Issues{it}
	return Result{Issues: iss}, iss
}

// collector accumulates diagnostics up to an optional cap.
type collector struct {
	issues Issues
	max    int
	full   bool
}

func (c *collector) add(it Issue) {
	if c.full {
		return
	}
	c.issues = append(c.issues, it)
	if c.max > 0 && len(c.issues) >= c.max {
		c.full = true
	}
}
