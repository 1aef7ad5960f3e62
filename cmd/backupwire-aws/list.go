package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	backupwire "github.com/lex00/backupwire-aws-go"
)

func newListCmd() *cobra.Command {
	var (
		outputFormat string
		expandEnv    bool
	)

	cmd := &cobra.Command{
		Use:   "list [path]",
		Short: "List normalized backup resources",
		Long: `List loads and normalizes policy documents and displays the
resulting vaults, plans, rules, and selections.

Examples:
    backupwire-aws list ./policies
    backupwire-aws list ./policies --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(args[0], outputFormat, expandEnv)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&expandEnv, "expand-env", false, "Expand ${VAR} references from the environment")

	return cmd
}

func runList(path, format string, expandEnv bool) error {
	set, _, err := loadResourceSet(path, expandEnv)
	if err != nil {
		return err
	}

	switch format {
	case "json":
		data, err := json.MarshalIndent(set, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))

	case "text":
		printResourceSet(set)

	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	return nil
}

func printResourceSet(set *backupwire.ResourceSet) {
	for _, vault := range set.Vaults {
		line := fmt.Sprintf("vault %s", vault.Name)
		if vault.Lock != nil {
			line += fmt.Sprintf(" (%s lock)", vault.Lock.Mode)
		}
		fmt.Println(line)
	}
	for _, plan := range set.Plans {
		fmt.Printf("plan %s\n", plan.Name)
		for _, rule := range plan.Rules {
			line := fmt.Sprintf("  rule %s -> %s", rule.Name, rule.VaultName)
			if rule.Schedule != "" {
				line += " " + rule.Schedule
			}
			fmt.Println(line)
			for _, copyAction := range rule.CopyActions {
				fmt.Printf("    copy -> %s\n", copyAction.DestinationVaultARN)
			}
		}
	}
	for _, sel := range set.Selections {
		fmt.Printf("selection %s/%s\n", sel.PlanName, sel.Name)
	}
	fmt.Printf("\n%d resources\n", set.Len())
}
