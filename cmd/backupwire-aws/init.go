package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/spf13/cobra"
)

// validProjectName matches valid project names (alphanumeric, hyphens, underscores)
var validProjectName = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]*$`)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [project-name]",
		Short: "Create a new backup policy project",
		Long: `Init creates a new project with a starter backup policy.

The project is created in a subdirectory with the given name.
Multiple projects can coexist in the same workspace.

Examples:
    backupwire-aws init prod-backups     # Creates ./prod-backups/
    backupwire-aws init dr-plan          # Creates ./dr-plan/`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(".", args[0])
		},
	}
}

// runInit creates a new project in {workspaceDir}/{projectName}/
func runInit(workspaceDir, projectName string) error {
	if !validProjectName.MatchString(projectName) {
		return fmt.Errorf("invalid project name %q: must start with a letter and contain only letters, numbers, hyphens, or underscores", projectName)
	}

	projectPath := filepath.Join(workspaceDir, projectName)
	if _, err := os.Stat(projectPath); err == nil {
		return fmt.Errorf("project already exists: %s", projectPath)
	}

	policiesDir := filepath.Join(projectPath, "policies")
	if err := os.MkdirAll(policiesDir, 0755); err != nil {
		return fmt.Errorf("creating policies directory: %w", err)
	}

	starterPolicy := `# Declarative AWS Backup policy.
# Validate with:  backupwire-aws validate ./policies
# Render with:    backupwire-aws build ./policies

defaults:
  vault: primary
  lifecycle:
    delete_after_days: 35
  tags:
    managed_by: backupwire

vaults:
  primary:
    # Uncomment to encrypt with a customer-managed key:
    # kms_key_arn: arn:aws:kms:us-east-1:123456789012:key/abc
    # Uncomment to enable vault lock:
    # lock:
    #   mode: governance
    #   min_retention_days: 7

plans:
  daily:
    rules:
      nightly:
        schedule: cron(0 5 * * ? *)
        start_window_minutes: 60
        completion_window_minutes: 180
    selections:
      tagged:
        tags:
          - key: backup
            value: "true"
`
	policyPath := filepath.Join(policiesDir, "main.backup.yaml")
	if err := os.WriteFile(policyPath, []byte(starterPolicy), 0644); err != nil {
		return fmt.Errorf("writing starter policy: %w", err)
	}

	gitignore := `# Build output
template.json
template.yaml

# IDE
.idea/
.vscode/
*.swp
*.swo

# OS
.DS_Store
Thumbs.db
`
	if err := os.WriteFile(filepath.Join(projectPath, ".gitignore"), []byte(gitignore), 0644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	fmt.Printf("Created project: %s/\n", projectPath)
	fmt.Printf("  └── policies/\n")
	fmt.Printf("      └── main.backup.yaml\n")
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Printf("  backupwire-aws validate ./%s/policies\n", projectName)
	fmt.Printf("  backupwire-aws build ./%s/policies\n", projectName)
	fmt.Println()

	return nil
}
