package rowlint

// Package rowlint validates tabular data files against a declarative
// Interface Control Document (ICD). It provides:
//
// - An ICD parser turning table-shaped specification text into a Spec
//   (data format, ordered fields, document-wide checks)
// - Lazy row readers for delimited, fixed-width, Excel and Open-Document
//   data, unified behind one row stream
// - A typed field validation system (Text, Integer, Choice, DateTime,
//   Pattern, RegEx) and stateful document checks (DistinctCount, IsUnique)
// - A stable diagnostic model via Issues (row/column location, code,
//   message), collected exhaustively in document order
//
// Design policy:
// - Keep only public APIs in the root package; put the physical readers
//   under internal/.
// - Place the range micro-language under ranges/, the ICD model under icd/,
//   field validators under fields/, checks under checks/ and the CLI under
//   cmd/rowlint.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	rs, err := rowlint.LoadICD(icdFile)
//	res, err := rowlint.ValidateFrom(ctx, rs, rowlint.FileSource("orders.csv"))
//	if !res.Valid() {
//	    rowlint.NewReport(src, res).WriteText(os.Stdout)
//	}
