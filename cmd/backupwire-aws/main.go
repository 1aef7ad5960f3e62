// Command backupwire-aws computes normalized AWS Backup resource plans
// from declarative policy documents.
//
// Usage:
//
//	backupwire-aws build ./policies        Render CloudFormation from policies
//	backupwire-aws validate ./policies     Check invariants and references
//	backupwire-aws lint ./policies         Check best practices
//	backupwire-aws diff a.yaml b.yaml      Diff two policy documents
//	backupwire-aws version                 Show version
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "backupwire-aws",
		Short: "Declarative AWS Backup policy tooling",
		Long: `backupwire-aws turns declarative backup policy documents into
normalized AWS Backup resource plans.

Describe vaults, plans, and selections in YAML:

    vaults:
      primary:
        lock: {mode: compliance, min_retention_days: 30, changeable_for_days: 3}
    plans:
      daily:
        rules:
          nightly: {vault: primary, schedule: "cron(0 5 * * ? *)"}

Then validate, lint, render, and diff them:

    backupwire-aws build ./policies`,
	}

	rootCmd.AddCommand(
		newBuildCmd(),
		newValidateCmd(),
		newLintCmd(),
		newDiffCmd(),
		newStatusCmd(),
		newListCmd(),
		newGraphCmd(),
		newInitCmd(),
		newDesignCmd(),
		newWatchCmd(),
		newVersionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("backupwire-aws %s\n", getVersion())
		},
	}
}
