package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	backupwire "github.com/lex00/backupwire-aws-go"
	"github.com/lex00/backupwire-aws-go/internal/lint"
	"github.com/lex00/backupwire-aws-go/internal/policy"
)

func newLintCmd() *cobra.Command {
	var (
		outputFormat string
		rules        []string
		minRetention int
		expandEnv    bool
	)

	cmd := &cobra.Command{
		Use:   "lint [path]",
		Short: "Check backup policies for best-practice issues",
		Long: `Lint checks backup policy documents for common issues.

Rules:
    BWA001: Vault without a vault lock
    BWA002: Rule without a cross-region or cross-account copy
    BWA003: Retention shorter than the configured minimum
    BWA004: Selection matching all resources with a wildcard
    BWA005: Vault encrypted with the AWS-managed key
    BWA006: Plan without any selection
    BWA007: Continuous backup combined with cold storage
    BWA008: Vault access policy that permits recovery point deletion
    BWA009: Rule without recovery point tags
    BWA010: Compliance lock cooldown longer than 30 days

Examples:
    backupwire-aws lint ./policies
    backupwire-aws lint ./policies --rules BWA001,BWA008
    backupwire-aws lint ./policies --min-retention 90`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLint(args[0], outputFormat, rules, minRetention, expandEnv)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")
	cmd.Flags().StringSliceVar(&rules, "rules", nil, "Comma-separated rule IDs to run (default: all)")
	cmd.Flags().IntVar(&minRetention, "min-retention", 0, "Minimum retention days for BWA003")
	cmd.Flags().BoolVar(&expandEnv, "expand-env", false, "Expand ${VAR} references from the environment")

	return cmd
}

func runLint(path, format string, rules []string, minRetention int, expandEnv bool) error {
	loaded, err := policy.Load(path, policy.Options{ExpandEnv: expandEnv})
	if err != nil {
		return fmt.Errorf("lint failed: %w", err)
	}

	result := lint.Policy(loaded.Policy, lint.Options{
		EnabledRules:     rules,
		MinRetentionDays: minRetention,
	})

	lintResult := backupwire.LintResult{
		Success: result.Success,
		Issues:  result.Issues,
	}
	return outputLintResult(lintResult, format)
}

func outputLintResult(result backupwire.LintResult, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))

	case "text":
		if result.Success {
			fmt.Println("No issues found.")
			return nil
		}
		for _, issue := range result.Issues {
			fmt.Println(issue.String())
			if issue.Suggestion != "" {
				fmt.Printf("  suggestion: %s\n", issue.Suggestion)
			}
		}

	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	if !result.Success {
		os.Exit(2) // Exit code 2 for issues found
	}

	return nil
}
