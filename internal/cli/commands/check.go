package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aifstack-labs/aifgen/internal/checker"
	"github.com/aifstack-labs/aifgen/internal/cli/output"
)

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	var severity string

	cmd := &cobra.Command{
		Use:   "check [path]",
		Short: "Check a package tree against the naming conventions",
		Long: `Walk a generated package tree and report every convention violation:
naming constants out of sync with directories, asset names that do not
match their files, unresolved dependency keys, dangling registry imports,
and leftover template placeholders.

The command exits non-zero when violations at or above the selected
severity are found.`,
		Example: `  # Check the configured package root
  aifgen check

  # Check a specific tree, errors only
  aifgen check ./ai_analytics --severity error

  # Machine-readable report
  aifgen check --output json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}

			root := ctx.Cfg.PackageDir
			if len(args) > 0 {
				root = args[0]
			}
			return runCheck(ctx, root, severity)
		},
	}

	cmd.Flags().StringVar(&severity, "severity", "warning", "Minimum severity to fail on (error|warning)")

	return cmd
}

func runCheck(ctx *CommandContext, root, severity string) error {
	min, ok := checker.ParseSeverity(severity)
	if !ok {
		return fmt.Errorf("invalid severity %q (expected error or warning)", severity)
	}

	violations, err := checker.Check(root)
	if err != nil {
		return err
	}

	r := ctx.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		return checkJSON(r, violations, min)
	}

	for _, v := range violations {
		if v.Severity == checker.SeverityError {
			r.Err(v.Path + ": " + v.Message + " (" + v.Rule + ")")
		} else {
			r.Warning(v.Path + ": " + v.Message + " (" + v.Rule + ")")
		}
	}

	failing := checker.Filter(violations, min)
	if len(failing) > 0 {
		return fmt.Errorf("%d violation(s) at severity %s or above", len(failing), min)
	}

	r.Success(fmt.Sprintf("No violations found in %s", root))
	return nil
}

// checkJSON emits the violation list as a JSON report. The exit status
// follows the same threshold as the text mode.
func checkJSON(r *output.Renderer, violations []checker.Violation, min checker.Severity) error {
	type jsonViolation struct {
		Rule     string `json:"rule"`
		Severity string `json:"severity"`
		Path     string `json:"path"`
		Message  string `json:"message"`
	}
	report := struct {
		Violations []jsonViolation `json:"violations"`
		Total      int             `json:"total"`
	}{Violations: []jsonViolation{}}

	for _, v := range violations {
		report.Violations = append(report.Violations, jsonViolation{
			Rule:     v.Rule,
			Severity: v.Severity.String(),
			Path:     v.Path,
			Message:  v.Message,
		})
	}
	report.Total = len(violations)

	if err := r.JSON(report); err != nil {
		return err
	}
	if failing := checker.Filter(violations, min); len(failing) > 0 {
		return fmt.Errorf("%d violation(s) at severity %s or above", len(failing), min)
	}
	return nil
}
