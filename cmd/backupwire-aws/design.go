// Command design provides AI-assisted backup policy design.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	backupwire "github.com/lex00/backupwire-aws-go"
	"github.com/lex00/backupwire-aws-go/internal/lint"
	"github.com/lex00/backupwire-aws-go/internal/normalize"
	"github.com/lex00/backupwire-aws-go/internal/providers"
	"github.com/lex00/backupwire-aws-go/internal/providers/gemini"
	"github.com/lex00/backupwire-aws-go/internal/providers/openai"
	"github.com/lex00/backupwire-aws-go/internal/validate"
)

const designSystemPrompt = `You are an AWS Backup policy designer. You produce declarative
backup policy documents in YAML with this structure:

defaults:
  vault: <vault key>
  iam_role_arn: <role arn>
  lifecycle: {cold_storage_after_days: N, delete_after_days: N}
  tags: {key: value}
vaults:
  <key>:
    kms_key_arn: <arn>
    lock: {mode: governance|compliance, min_retention_days: N, max_retention_days: N, changeable_for_days: N}
plans:
  <key>:
    rules:
      <key>:
        vault: <vault key>
        schedule: cron(M H D M DW Y) or rate(N unit)
        start_window_minutes: N
        completion_window_minutes: N
        enable_continuous_backup: bool
        lifecycle: {cold_storage_after_days: N, delete_after_days: N}
        copy_actions:
          - destination_vault_arn: <arn>
    selections:
      <key>:
        iam_role_arn: <role arn>
        resources: [<arns>]
        tags:
          - {key: K, value: V}

Constraints:
- delete_after_days must exceed cold_storage_after_days by at least 90
- continuous backup retention is at most 35 days and excludes cold storage
- compliance locks need changeable_for_days of at least 3
- schedules use six-field cron() or rate() expressions

Respond with ONLY the YAML document, no prose.`

func newDesignCmd() *cobra.Command {
	var (
		outputFile   string
		provider     string
		model        string
		maxFixCycles int
	)

	cmd := &cobra.Command{
		Use:   "design [prompt]",
		Short: "AI-assisted backup policy design",
		Long: `Design generates a backup policy document from a natural-language
description, then validates and lints the draft. Validation errors are
fed back to the model for another attempt, up to --max-fix-cycles.

Providers:
    openai (default) - requires OPENAI_API_KEY
    gemini           - requires GEMINI_API_KEY

Examples:
    backupwire-aws design "daily RDS backups with 90 day retention and a DR copy to us-west-2"
    backupwire-aws design --provider gemini "weekly EFS backups in a compliance-locked vault"
    backupwire-aws design -o drafted.backup.yaml "hourly PITR for DynamoDB"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := strings.Join(args, " ")
			return runDesign(prompt, outputFile, provider, model, maxFixCycles)
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVar(&provider, "provider", "openai", "AI provider: 'openai' or 'gemini'")
	cmd.Flags().StringVar(&model, "model", "", "Model override for the provider")
	cmd.Flags().IntVarP(&maxFixCycles, "max-fix-cycles", "l", 3, "Maximum validate/fix cycles")

	return cmd
}

func runDesign(prompt, outputFile, providerName, model string, maxFixCycles int) error {
	provider, err := newProvider(providerName)
	if err != nil {
		return err
	}
	if closer, ok := provider.(io.Closer); ok {
		defer closer.Close()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nInterrupted, cleaning up...")
		cancel()
	}()

	messages := []providers.Message{
		{Role: "user", Content: prompt},
	}

	var draft string
	for cycle := 0; cycle < maxFixCycles; cycle++ {
		resp, err := provider.CreateMessage(ctx, providers.MessageRequest{
			Model:    model,
			System:   designSystemPrompt,
			Messages: messages,
		})
		if err != nil {
			return fmt.Errorf("design session failed: %w", err)
		}

		draft = stripCodeFences(resp.Text)
		issues, err := checkDraft(draft)
		if err != nil {
			return err
		}
		if len(issues) == 0 {
			break
		}

		if cycle == maxFixCycles-1 {
			fmt.Fprintf(os.Stderr, "Draft still has %d issue(s) after %d cycles:\n", len(issues), maxFixCycles)
			for _, issue := range issues {
				fmt.Fprintf(os.Stderr, "  %s\n", issue)
			}
			break
		}

		fmt.Fprintf(os.Stderr, "Draft has %d issue(s), asking for a fix (cycle %d/%d)...\n",
			len(issues), cycle+1, maxFixCycles)
		messages = append(messages,
			providers.Message{Role: "assistant", Content: resp.Text},
			providers.Message{Role: "user", Content: "The document has these problems, fix them and respond with the corrected YAML only:\n" + strings.Join(issues, "\n")},
		)
	}

	for _, issue := range lintDraft(draft) {
		fmt.Fprintf(os.Stderr, "%s\n", issue)
	}

	if outputFile == "" {
		fmt.Println(draft)
		return nil
	}
	if err := os.WriteFile(outputFile, []byte(draft), 0644); err != nil {
		return fmt.Errorf("writing draft: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Wrote %s\n", outputFile)
	return nil
}

func newProvider(name string) (providers.Provider, error) {
	switch name {
	case "openai":
		return openai.New(openai.Config{})
	case "gemini":
		return gemini.New(gemini.Config{})
	default:
		return nil, fmt.Errorf("unknown provider: %s (use 'openai' or 'gemini')", name)
	}
}

// checkDraft parses, normalizes, and validates a drafted policy, returning
// the blocking problems found. Lint warnings are advisory and do not block
// a draft; the caller reports them separately.
func checkDraft(draft string) ([]string, error) {
	var p backupwire.Policy
	if err := yaml.Unmarshal([]byte(draft), &p); err != nil {
		return []string{fmt.Sprintf("not valid YAML: %v", err)}, nil
	}

	var issues []string

	normalized := normalize.Normalize(&p)
	for _, e := range normalized.Errors {
		issues = append(issues, e.Error())
	}
	if !normalized.Success() {
		return issues, nil
	}

	result := validate.Set(normalized.Set, validate.Options{})
	for _, issue := range result.Errors {
		issues = append(issues, issue.String())
	}
	return issues, nil
}

// lintDraft reports advisory lint findings for a drafted policy.
func lintDraft(draft string) []backupwire.Issue {
	var p backupwire.Policy
	if err := yaml.Unmarshal([]byte(draft), &p); err != nil {
		return nil
	}
	return lint.Policy(&p, lint.Options{}).Issues
}

// stripCodeFences removes a surrounding markdown code fence, if any.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	lines := strings.Split(s, "\n")
	if len(lines) < 2 {
		return s
	}
	// Drop the opening fence (possibly with a language tag) and the
	// closing fence.
	lines = lines[1:]
	if strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
