package main

import (
	"testing"
)

func TestNewDiffCmd(t *testing.T) {
	cmd := newDiffCmd()

	if cmd.Use != "diff <desired> [actual]" {
		t.Errorf("Use = %q, want 'diff <desired> [actual]'", cmd.Use)
	}

	if cmd.Short == "" {
		t.Error("Short description should not be empty")
	}

	// Check flags exist
	if cmd.Flags().Lookup("format") == nil {
		t.Error("missing --format flag")
	}

	if cmd.Flags().Lookup("ignore-order") == nil {
		t.Error("missing --ignore-order flag")
	}

	if cmd.Flags().Lookup("remote") == nil {
		t.Error("missing --remote flag")
	}

	if cmd.Flags().Lookup("region") == nil {
		t.Error("missing --region flag")
	}
}

func TestDiffCmd_RemoteWithTwoArgs(t *testing.T) {
	cmd := newDiffCmd()
	cmd.SetArgs([]string{"--remote", "a.backup.yaml", "b.backup.yaml"})

	err := cmd.Execute()
	if err == nil {
		t.Fatal("expected error when --remote is combined with two documents")
	}
}

func TestDiffCmd_OneArgWithoutRemote(t *testing.T) {
	cmd := newDiffCmd()
	cmd.SetArgs([]string{"a.backup.yaml"})

	err := cmd.Execute()
	if err == nil {
		t.Fatal("expected error when the second document is missing without --remote")
	}
}
