package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lex00/backupwire-aws-go/internal/graph"
)

func newGraphCmd() *cobra.Command {
	var (
		outputFormat  string
		clusterByPlan bool
		expandEnv     bool
	)

	cmd := &cobra.Command{
		Use:   "graph [path]",
		Short: "Generate DOT graph of the backup topology",
		Long: `Generate a DOT or Mermaid format graph showing how selections feed
plans, which vaults rules write into, and where copy actions replicate.

The output can be rendered with Graphviz:
    backupwire-aws graph ./policies | dot -Tpng -o topology.png

Or used in GitHub markdown (Mermaid format):
    backupwire-aws graph ./policies -f mermaid

Examples:
    backupwire-aws graph ./policies
    backupwire-aws graph ./policies -c            # cluster by plan
    backupwire-aws graph ./policies -f mermaid    # mermaid format`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(args[0], outputFormat, clusterByPlan, expandEnv)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "dot", "Output format: dot or mermaid")
	cmd.Flags().BoolVarP(&clusterByPlan, "cluster", "c", false, "Cluster rules and selections by plan")
	cmd.Flags().BoolVar(&expandEnv, "expand-env", false, "Expand ${VAR} references from the environment")

	return cmd
}

func runGraph(path, format string, cluster, expandEnv bool) error {
	set, _, err := loadResourceSet(path, expandEnv)
	if err != nil {
		return err
	}

	if set.Len() == 0 {
		return fmt.Errorf("no resources found")
	}

	var graphFormat graph.Format
	switch format {
	case "dot":
		graphFormat = graph.FormatDOT
	case "mermaid":
		graphFormat = graph.FormatMermaid
	default:
		return fmt.Errorf("unknown format: %s (use 'dot' or 'mermaid')", format)
	}

	gen := &graph.Generator{
		Format:        graphFormat,
		ClusterByPlan: cluster,
	}
	return gen.Generate(set, os.Stdout)
}
