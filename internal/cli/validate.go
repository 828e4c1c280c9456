package cmd

import (
	"fmt"

	"github.com/rohmanhakim/docs-harvester/internal/config"
	"github.com/rohmanhakim/docs-harvester/internal/report"
	"github.com/rohmanhakim/docs-harvester/internal/validator"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Re-validate every stored artifact without fetching anything.",
	RunE: func(cmd *cobra.Command, args []string) error {
		log, closeLog, err := newLogger(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer closeLog()

		out, reports, minText, err := validateTargets()
		if err != nil {
			return err
		}

		audit, path, err := Validate(out, reports, minText)
		if err != nil {
			return err
		}
		log.Info().
			Str("path", path).
			Int("references", audit.References).
			Int("invalid", audit.Invalid).
			Msg("validation report written")
		fmt.Fprintf(cmd.OutOrStdout(), "%d references, %d valid, %d invalid, %d empty\n",
			audit.References, audit.Valid, audit.Invalid, audit.Empty)
		return nil
	},
}

// validateTargets resolves the directories to audit. The inventory is not
// needed here, so flags are read directly unless a config file is given.
func validateTargets() (string, string, int, error) {
	if cfgFile != "" {
		cfg, err := config.WithConfigFile(cfgFile)
		if err != nil {
			return "", "", 0, fmt.Errorf("error initializing config from file: %w", err)
		}
		return cfg.OutputDir(), cfg.ReportsDir(), cfg.MinTextChars(), nil
	}
	defaults := config.WithDefault("-")
	out := defaults.OutputDir()
	if outputDir != "" {
		out = outputDir
	}
	reports := defaults.ReportsDir()
	if reportsDir != "" {
		reports = reportsDir
	}
	return out, reports, defaults.MinTextChars(), nil
}

// Validate audits outputDir and writes the validation report into reportsDir.
func Validate(outputDir string, reportsDir string, minTextChars int) (report.AuditReport, string, error) {
	v := validator.New(validator.DefaultRules().WithMinTextChars(minTextChars))
	audit, err := report.AuditWith(v, outputDir)
	if err != nil {
		return report.AuditReport{}, "", err
	}
	path, err := report.WriteJSON(reportsDir, report.ValidationPrefix, audit.GeneratedAt, audit)
	if err != nil {
		return audit, "", err
	}
	return audit, path, nil
}
