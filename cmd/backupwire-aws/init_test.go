package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValidProjectName(t *testing.T) {
	tests := []struct {
		name  string
		valid bool
	}{
		{"prod-backups", true},
		{"backups_2026", true},
		{"a", true},
		{"9lives", false},
		{"-leading-dash", false},
		{"has space", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := validProjectName.MatchString(tt.name); got != tt.valid {
			t.Errorf("validProjectName.MatchString(%q) = %v, want %v", tt.name, got, tt.valid)
		}
	}
}

func TestRunInit(t *testing.T) {
	dir := t.TempDir()

	if err := runInit(dir, "prod-backups"); err != nil {
		t.Fatalf("runInit() error: %v", err)
	}

	policyFile := filepath.Join(dir, "prod-backups", "policies", "main.backup.yaml")
	data, err := os.ReadFile(policyFile)
	if err != nil {
		t.Fatalf("starter policy not created: %v", err)
	}
	if len(data) == 0 {
		t.Error("starter policy is empty")
	}
}

func TestRunInit_ExistingProject(t *testing.T) {
	dir := t.TempDir()

	if err := runInit(dir, "prod-backups"); err != nil {
		t.Fatalf("runInit() error: %v", err)
	}

	if err := runInit(dir, "prod-backups"); err == nil {
		t.Error("expected error for existing project")
	}
}

func TestRunInit_InvalidName(t *testing.T) {
	if err := runInit(t.TempDir(), "9lives"); err == nil {
		t.Error("expected error for invalid project name")
	}
}
