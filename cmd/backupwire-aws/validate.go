package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	backupwire "github.com/lex00/backupwire-aws-go"
	"github.com/lex00/backupwire-aws-go/internal/validate"
	"github.com/lex00/backupwire-aws-go/internal/validation"
)

// newValidateCmd creates the "validate" subcommand for checking policy validity.
func newValidateCmd() *cobra.Command {
	var (
		outputFormat string
		strict       bool
		cfnLint      bool
		expandEnv    bool
	)

	cmd := &cobra.Command{
		Use:   "validate [path]",
		Short: "Validate backup policies and references",
		Long: `Validate normalizes policy documents and checks every invariant.

Checks performed:
  - Reference validity: rules target defined vaults, selections belong to plans
  - Lifecycle: cold storage precedes deletion by at least 90 days
  - Vault lock: mode, retention bounds, compliance cooldown
  - Continuous backup: retention within 35 days, no cold storage
  - Schedules: cron()/rate() expression syntax
  - ARNs: copy destinations, IAM roles, selection resources

With --cfn-lint the rendered CloudFormation template is additionally
checked with cfn-lint.

Examples:
    backupwire-aws validate ./policies
    backupwire-aws validate ./policies --strict
    backupwire-aws validate ./policies --cfn-lint --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(args[0], outputFormat, strict, cfnLint, expandEnv)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&strict, "strict", false, "Treat warnings as errors")
	cmd.Flags().BoolVar(&cfnLint, "cfn-lint", false, "Also lint the rendered CloudFormation template")
	cmd.Flags().BoolVar(&expandEnv, "expand-env", false, "Expand ${VAR} references from the environment")

	return cmd
}

func runValidate(path, format string, strict, cfnLint, expandEnv bool) error {
	set, _, err := loadResourceSet(path, expandEnv)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	result := validate.Set(set, validate.Options{Strict: strict})

	validateResult := backupwire.ValidateResult{
		Success:   result.Valid,
		Resources: set.Len(),
		Errors:    result.Errors,
		Warnings:  result.Warnings,
	}

	if cfnLint {
		cfnResult, err := validation.LintResourceSet(set)
		if err != nil {
			return fmt.Errorf("cfn-lint failed: %w", err)
		}
		for _, msg := range cfnResult.Errors {
			validateResult.Errors = append(validateResult.Errors, backupwire.Issue{
				Severity: backupwire.SeverityError,
				Message:  msg,
			})
		}
		for _, msg := range cfnResult.Warnings {
			validateResult.Warnings = append(validateResult.Warnings, backupwire.Issue{
				Severity: backupwire.SeverityWarning,
				Message:  msg,
			})
		}
		if !cfnResult.Passed {
			validateResult.Success = false
		}
	}

	return outputValidateResult(validateResult, format)
}

func outputValidateResult(result backupwire.ValidateResult, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))

	case "text":
		if result.Success && len(result.Warnings) == 0 {
			fmt.Printf("Validation passed: %d resources OK\n", result.Resources)
			return nil
		}

		if !result.Success {
			fmt.Println("Validation FAILED:")
		}
		for _, issue := range result.Errors {
			fmt.Printf("  ERROR: %s\n", issue.String())
		}
		for _, issue := range result.Warnings {
			fmt.Printf("  WARNING: %s\n", issue.String())
		}
		if result.Success {
			fmt.Printf("Validation passed with warnings: %d resources\n", result.Resources)
		}

	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	if !result.Success {
		os.Exit(1)
	}

	return nil
}
