package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	backupwire "github.com/lex00/backupwire-aws-go"
	"github.com/lex00/backupwire-aws-go/internal/awsstate"
	"github.com/lex00/backupwire-aws-go/internal/differ"
)

func newDiffCmd() *cobra.Command {
	var (
		outputFormat string
		ignoreOrder  bool
		remote       bool
		region       string
		expandEnv    bool
		timeout      time.Duration
	)

	cmd := &cobra.Command{
		Use:   "diff <desired> [actual]",
		Short: "Diff desired backup policies against another document or live AWS state",
		Long: `Diff compares two normalized resource sets and reports added, removed,
and modified resources.

With two paths, both are policy documents. With one path and --remote,
the second set is read from the live AWS Backup control plane. The diff
never mutates AWS state.

Examples:
    backupwire-aws diff old.backup.yaml new.backup.yaml
    backupwire-aws diff ./policies --remote
    backupwire-aws diff ./policies --remote --region us-west-2`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 && !remote {
				return fmt.Errorf("need a second document, or --remote to diff against live state")
			}
			if len(args) == 2 && remote {
				return fmt.Errorf("--remote takes a single desired document")
			}
			return runDiff(args, diffCmdOptions{
				format:      outputFormat,
				ignoreOrder: ignoreOrder,
				remote:      remote,
				region:      region,
				expandEnv:   expandEnv,
				timeout:     timeout,
			})
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&ignoreOrder, "ignore-order", false, "Ignore ordering of list properties")
	cmd.Flags().BoolVar(&remote, "remote", false, "Diff against the live AWS Backup control plane")
	cmd.Flags().StringVar(&region, "region", "", "AWS region for --remote (default: credential chain)")
	cmd.Flags().BoolVar(&expandEnv, "expand-env", false, "Expand ${VAR} references from the environment")
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "Timeout for AWS API calls")

	return cmd
}

type diffCmdOptions struct {
	format      string
	ignoreOrder bool
	remote      bool
	region      string
	expandEnv   bool
	timeout     time.Duration
}

func runDiff(args []string, opts diffCmdOptions) error {
	desired, _, err := loadResourceSet(args[0], opts.expandEnv)
	if err != nil {
		return err
	}

	var actual *backupwire.ResourceSet
	if opts.remote {
		actual, err = fetchRemoteState(opts.region, opts.timeout)
	} else {
		actual, _, err = loadResourceSet(args[1], opts.expandEnv)
	}
	if err != nil {
		return err
	}

	result, err := differ.Compare(desired, actual, differ.Options{IgnoreOrder: opts.ignoreOrder})
	if err != nil {
		return fmt.Errorf("diff failed: %w", err)
	}

	diffResult := backupwire.DiffResult{
		Success: result.Summary.Total == 0,
		Diff:    result.Diff,
		Summary: result.Summary,
	}
	return outputDiffResult(diffResult, opts.format)
}

func fetchRemoteState(region string, timeout time.Duration) (*backupwire.ResourceSet, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	svc, err := awsstate.New(ctx, awsstate.Options{Region: region})
	if err != nil {
		return nil, err
	}
	return svc.Fetch(ctx)
}

func outputDiffResult(result backupwire.DiffResult, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))

	case "text":
		if result.Success {
			fmt.Println("No differences.")
			return nil
		}
		for _, entry := range result.Diff.Added {
			fmt.Printf("+ %s\n", entry.Resource)
		}
		for _, entry := range result.Diff.Removed {
			fmt.Printf("- %s\n", entry.Resource)
		}
		for _, entry := range result.Diff.Modified {
			fmt.Printf("~ %s\n", entry.Resource)
			for _, change := range entry.Changes {
				fmt.Printf("    %s\n", change)
			}
		}
		fmt.Printf("\n%d added, %d removed, %d modified\n",
			result.Summary.Added, result.Summary.Removed, result.Summary.Modified)

	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	if !result.Success {
		os.Exit(1)
	}

	return nil
}
