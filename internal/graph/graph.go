// Package graph generates DOT and Mermaid format graphs of the backup
// topology: which plans write into which vaults, which selections feed
// which plans, and where copy actions replicate to.
package graph

import (
	"io"
	"strings"

	"github.com/emicklei/dot"

	backupwire "github.com/lex00/backupwire-aws-go"
	"github.com/lex00/backupwire-aws-go/internal/arn"
)

// Format specifies the output format for the graph.
type Format string

const (
	// FormatDOT outputs Graphviz DOT format.
	FormatDOT Format = "dot"
	// FormatMermaid outputs Mermaid format for GitHub/markdown rendering.
	FormatMermaid Format = "mermaid"
)

// Generator creates backup topology graphs from a resource set.
type Generator struct {
	// Format specifies the output format (dot or mermaid). Defaults to dot.
	Format Format

	// ClusterByPlan groups each plan's rules and selections in a subgraph.
	ClusterByPlan bool
}

// Generate builds the topology graph and writes it to w.
func (g *Generator) Generate(set *backupwire.ResourceSet, w io.Writer) error {
	graph := g.buildGraph(set)

	format := g.Format
	if format == "" {
		format = FormatDOT
	}

	var output string
	if format == FormatMermaid {
		output = dot.MermaidGraph(graph, dot.MermaidTopToBottom)
	} else {
		output = graph.String()
	}

	_, err := w.Write([]byte(output))
	return err
}

// GenerateString is a convenience method that returns the graph as a string.
func (g *Generator) GenerateString(set *backupwire.ResourceSet) (string, error) {
	var sb strings.Builder
	if err := g.Generate(set, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (g *Generator) buildGraph(set *backupwire.ResourceSet) *dot.Graph {
	graph := dot.NewGraph(dot.Directed)
	graph.Attr("rankdir", "LR")

	graph.NodeInitializer(func(n dot.Node) {
		n.Attr("shape", "box")
		n.Attr("fontname", "Arial")
	})
	graph.EdgeInitializer(func(e dot.Edge) {
		e.Attr("fontname", "Arial")
		e.Attr("fontsize", "10")
	})

	vaultNodes := map[string]dot.Node{}
	for _, vault := range set.Vaults {
		n := graph.Node("vault:" + vault.Name)
		label := vault.Name + "\\n[vault]"
		if vault.Lock != nil {
			label = vault.Name + "\\n[vault, " + vault.Lock.Mode + " lock]"
		}
		n.Label(label)
		n.Attr("shape", "cylinder")
		vaultNodes[vault.Name] = n
	}

	for _, plan := range set.Plans {
		parent := graph
		if g.ClusterByPlan {
			cluster := graph.Subgraph("cluster_"+plan.Name, dot.ClusterOption{})
			cluster.Attr("label", plan.Name)
			cluster.Attr("style", "rounded")
			parent = cluster
		}

		planNode := parent.Node("plan:" + plan.Name)
		planNode.Label(plan.Name + "\\n[plan]")

		for _, rule := range plan.Rules {
			vaultNode, ok := vaultNodes[rule.VaultName]
			if !ok {
				// External vault, referenced by name only.
				vaultNode = graph.Node("vault:" + rule.VaultName)
				vaultNode.Label(rule.VaultName + "\\n[vault]")
				vaultNode.Attr("shape", "cylinder")
				vaultNode.Attr("style", "dashed")
				vaultNodes[rule.VaultName] = vaultNode
			}
			e := graph.Edge(planNode, vaultNode)
			e.Label(rule.Name)

			for _, copyAction := range rule.CopyActions {
				dest := g.copyDestNode(graph, vaultNodes, copyAction.DestinationVaultARN)
				ce := graph.Edge(vaultNode, dest)
				ce.Label("copy")
				ce.Attr("style", "dashed")
				ce.Attr("color", "blue")
			}
		}
	}

	for _, sel := range set.Selections {
		parent := graph
		if g.ClusterByPlan {
			parent = graph.Subgraph("cluster_"+sel.PlanName, dot.ClusterOption{})
		}
		n := parent.Node("selection:" + sel.PlanName + "/" + sel.Name)
		n.Label(sel.Name + "\\n[selection]")
		n.Attr("shape", "ellipse")

		planNode := graph.Node("plan:" + sel.PlanName)
		graph.Edge(n, planNode)
	}

	return graph
}

// copyDestNode returns the node for a copy destination. In-set vaults
// are matched by ARN resource name; everything else gets a dashed
// external node labeled with its region and account.
func (g *Generator) copyDestNode(graph *dot.Graph, vaultNodes map[string]dot.Node, destARN string) dot.Node {
	if parsed, err := arn.ParseBackupVault(destARN); err == nil {
		if n, ok := vaultNodes[parsed.Name]; ok {
			return n
		}
		n := graph.Node("vault-arn:" + destARN)
		n.Label(parsed.Name + "\\n[" + parsed.Region + " " + parsed.AccountID + "]")
		n.Attr("shape", "cylinder")
		n.Attr("style", "dashed")
		return n
	}
	n := graph.Node("vault-arn:" + destARN)
	n.Label(destARN)
	n.Attr("style", "dashed")
	return n
}
