package graph

import (
	"strings"
	"testing"

	backupwire "github.com/lex00/backupwire-aws-go"
)

func topologySet() *backupwire.ResourceSet {
	return &backupwire.ResourceSet{
		Vaults: []backupwire.VaultInstance{
			{Name: "primary", Lock: &backupwire.VaultLock{Mode: backupwire.LockModeCompliance}},
			{Name: "secondary"},
		},
		Plans: []backupwire.PlanInstance{
			{
				Name: "daily",
				Rules: []backupwire.RuleInstance{
					{
						Name:      "nightly",
						VaultName: "primary",
						CopyActions: []backupwire.CopyAction{
							{DestinationVaultARN: "arn:aws:backup:us-west-2:123456789012:backup-vault:dr"},
						},
					},
				},
			},
		},
		Selections: []backupwire.SelectionInstance{
			{Name: "tagged", PlanName: "daily"},
		},
	}
}

func TestGenerator_Generate(t *testing.T) {
	gen := &Generator{}
	var sb strings.Builder
	if err := gen.Generate(topologySet(), &sb); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := sb.String()
	if !strings.Contains(output, "digraph") {
		t.Error("expected digraph declaration")
	}
	for _, want := range []string{"primary", "daily", "tagged", "nightly"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output", want)
		}
	}
	if !strings.Contains(output, "compliance lock") {
		t.Error("expected lock annotation on primary vault")
	}
}

func TestGenerator_CopyEdge(t *testing.T) {
	gen := &Generator{}
	output, err := gen.GenerateString(topologySet())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(output, `label="copy"`) {
		t.Error("expected a copy edge")
	}
	// Copy destination is out-of-set: rendered with region and account.
	if !strings.Contains(output, "us-west-2") {
		t.Error("expected external copy destination node")
	}
}

func TestGenerator_InSetCopyDestination(t *testing.T) {
	set := topologySet()
	set.Plans[0].Rules[0].CopyActions[0].DestinationVaultARN = "arn:aws:backup:us-east-1:123456789012:backup-vault:secondary"

	gen := &Generator{}
	output, err := gen.GenerateString(set)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(output, "vault-arn:") {
		t.Error("in-set destination should reuse the vault node, not create an external one")
	}
}

func TestGenerator_MermaidFormat(t *testing.T) {
	gen := &Generator{Format: FormatMermaid}
	output, err := gen.GenerateString(topologySet())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Should be mermaid format (flowchart or graph)
	if !strings.Contains(output, "graph") && !strings.Contains(output, "flowchart") {
		t.Errorf("expected mermaid graph/flowchart, got:\n%s", output)
	}
	if strings.Contains(output, "digraph") {
		t.Error("mermaid output should not contain DOT syntax")
	}
}

func TestGenerator_ClusterByPlan(t *testing.T) {
	gen := &Generator{ClusterByPlan: true}
	output, err := gen.GenerateString(topologySet())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Cluster subgraph ids are sequence-numbered; the plan name
	// survives as the cluster label.
	if !strings.Contains(output, "subgraph") {
		t.Error("expected a cluster subgraph")
	}
	if !strings.Contains(output, `label="daily"`) {
		t.Error("expected the cluster to be labeled with the plan name")
	}
}
