package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lex00/backupwire-aws-go/internal/cfn"
	"github.com/lex00/backupwire-aws-go/internal/k8s"
)

func newBuildCmd() *cobra.Command {
	var (
		outputFormat string
		outputFile   string
		target       string
		namespace    string
		description  string
		expandEnv    bool
		retainVaults bool
	)

	cmd := &cobra.Command{
		Use:   "build [path]",
		Short: "Render backup policies into deployable templates",
		Long: `Build loads policy documents, normalizes them into backup resources,
and renders a deployable artifact.

Targets:
    cfn   CloudFormation template with AWS::Backup resources (default)
    k8s   ACK custom resources for AWS Controllers for Kubernetes

Examples:
    backupwire-aws build ./policies
    backupwire-aws build ./policies -o template.json
    backupwire-aws build ./policies --format yaml
    backupwire-aws build ./policies --target k8s --namespace ack-system`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(args[0], buildOptions{
				format:       outputFormat,
				outputFile:   outputFile,
				target:       target,
				namespace:    namespace,
				description:  description,
				expandEnv:    expandEnv,
				retainVaults: retainVaults,
			})
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "json", "Output format: json or yaml")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVarP(&target, "target", "t", "cfn", "Render target: cfn or k8s")
	cmd.Flags().StringVar(&namespace, "namespace", "", "Namespace for k8s manifests")
	cmd.Flags().StringVar(&description, "description", "", "Template description (cfn target)")
	cmd.Flags().BoolVar(&expandEnv, "expand-env", false, "Expand ${VAR} references from the environment")
	cmd.Flags().BoolVar(&retainVaults, "retain-vaults", false, "Emit DeletionPolicy: Retain on vaults without force_destroy")

	return cmd
}

type buildOptions struct {
	format       string
	outputFile   string
	target       string
	namespace    string
	description  string
	expandEnv    bool
	retainVaults bool
}

func runBuild(path string, opts buildOptions) error {
	set, _, err := loadResourceSet(path, opts.expandEnv)
	if err != nil {
		return err
	}

	switch opts.target {
	case "cfn":
		tpl, err := cfn.Render(set, cfn.Options{
			Description:  opts.description,
			RetainVaults: opts.retainVaults,
		})
		if err != nil {
			return fmt.Errorf("rendering template: %w", err)
		}
		data, err := cfn.Encode(tpl, opts.format)
		if err != nil {
			return err
		}
		return writeOutput(data, opts.outputFile)

	case "k8s":
		manifests, err := k8s.Render(set, k8s.Options{Namespace: opts.namespace})
		if err != nil {
			return fmt.Errorf("rendering manifests: %w", err)
		}
		data, err := k8s.Encode(manifests)
		if err != nil {
			return err
		}
		return writeOutput(data, opts.outputFile)

	default:
		return fmt.Errorf("unknown target: %s (use 'cfn' or 'k8s')", opts.target)
	}
}
