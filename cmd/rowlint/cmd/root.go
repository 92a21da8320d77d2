package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rowlint/rowlint/internal/config"
)

// Exit codes: 0 all data valid, 1 diagnostics found, 2 setup failure
// (bad flags, unreadable files, broken ICD or config).
const (
	exitOK     = 0
	exitIssues = 1
	exitSetup  = 2
)

// errIssuesFound marks a run that completed but found diagnostics.
var errIssuesFound = errors.New("validation issues found")

var (
	cfgFile   string
	logLevel  string
	logFormat string
	lang      string
)

var rootCmd = &cobra.Command{
	Use:   "rowlint",
	Short: "Validate tabular data against an interface control document",
	Long: `rowlint validates delimited, fixed-width, Excel and Open-Document
data files against an interface control document (ICD): a table-shaped
specification of the data format, the fields and document-wide checks.

Every deviation is reported with its row and column; a clean run is one
that produces no diagnostics.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() int {
	err := rootCmd.Execute()
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errIssuesFound):
		return exitIssues
	default:
		fmt.Fprintf(os.Stderr, "rowlint: %v\n", err)
		return exitSetup
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "run configuration file (YAML)")
	pf.StringVar(&logLevel, "log-level", config.Default().LogLevel, "log level (debug|info|warn|error)")
	pf.StringVar(&logFormat, "log-format", config.Default().LogFormat, "log format (text|json)")
	pf.StringVar(&lang, "lang", config.Default().Lang, "diagnostic label language (en|ja)")
}
