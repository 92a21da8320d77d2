package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	rowlint "github.com/rowlint/rowlint"
	"github.com/rowlint/rowlint/i18n"
	"github.com/rowlint/rowlint/internal/config"
	"github.com/rowlint/rowlint/internal/logging"
)

var (
	maxIssues   int
	output      string
	fixedPolicy string
)

var validateCmd = &cobra.Command{
	Use:   "validate <icd> <data>...",
	Short: "Validate one or more data files against an ICD",
	Long: `Validate reads the ICD, compiles it, then validates each data file
in turn. One report per data file is written to stdout.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().IntVar(&maxIssues, "max-issues", 0, "stop after this many diagnostics per file (0 = unlimited)")
	validateCmd.Flags().StringVarP(&output, "output", "o", config.Default().Output, "report format (text|json)")
	validateCmd.Flags().StringVar(&fixedPolicy, "fixed-policy", config.Default().FixedPolicy, "fixed-width length mismatch handling (strict|pad)")
	rootCmd.AddCommand(validateCmd)
}

// runConfig merges the config file (when given) with command-line flags;
// flags set explicitly always win.
func runConfig(cmd *cobra.Command) (config.Run, error) {
	run := config.Default()
	if cfgFile != "" {
		var err error
		if run, err = config.Load(cfgFile); err != nil {
			return run, err
		}
	}
	if cmd.Flags().Changed("max-issues") {
		run.MaxIssues = maxIssues
	}
	if cmd.Flags().Changed("output") {
		run.Output = output
	}
	if cmd.Flags().Changed("fixed-policy") {
		run.FixedPolicy = fixedPolicy
	}
	rf := cmd.Root().PersistentFlags()
	if rf.Changed("log-level") {
		run.LogLevel = logLevel
	}
	if rf.Changed("log-format") {
		run.LogFormat = logFormat
	}
	if rf.Changed("lang") {
		run.Lang = lang
	}
	return run, run.Validate()
}

func runValidate(cmd *cobra.Command, args []string) error {
	run, err := runConfig(cmd)
	if err != nil {
		return err
	}
	logging.Setup(run.LogLevel, run.LogFormat)
	i18n.SetLanguage(run.Lang)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	icdPath := args[0]
	icdFile, err := os.Open(icdPath)
	if err != nil {
		return err
	}
	rs, err := rowlint.LoadICD(icdFile)
	icdFile.Close()
	if err != nil {
		return fmt.Errorf("%s: %w", icdPath, err)
	}
	slog.Debug("ICD compiled", "icd", icdPath,
		"fields", len(rs.Spec.Fields), "checks", len(rs.Spec.Checks))

	opt := rowlint.ValidateOpt{MaxIssues: run.MaxIssues}
	if run.FixedPolicy == "pad" {
		opt.FixedPolicy = rowlint.FixedPad
	}

	clean := true
	for _, path := range args[1:] {
		src := rowlint.FileSource(path)
		res, err := rowlint.ValidateFrom(ctx, rs, src, opt)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if _, ok := rowlint.AsIssues(err); !ok {
				return err
			}
			// Fatal data format error: the sole diagnostic is in res.
		}
		slog.Info("validated", "source", path, "rows", res.Rows, "issues", len(res.Issues))
		if !res.Valid() {
			clean = false
		}
		if err := writeReport(rowlint.NewReport(src, res), run.Output); err != nil {
			return err
		}
	}
	if !clean {
		return errIssuesFound
	}
	return nil
}

func writeReport(rep rowlint.Report, format string) error {
	if format == "json" {
		return rep.WriteJSON(os.Stdout)
	}
	return rep.WriteText(os.Stdout)
}
