package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDesignCommand_ProviderFlag(t *testing.T) {
	cmd := newDesignCmd()

	providerFlag := cmd.Flags().Lookup("provider")
	require.NotNil(t, providerFlag, "provider flag should exist")
	assert.Equal(t, "openai", providerFlag.DefValue, "default provider should be openai")
	assert.Equal(t, "AI provider: 'openai' or 'gemini'", providerFlag.Usage)
}

func TestDesignCommand_UnknownProvider(t *testing.T) {
	cmd := newDesignCmd()
	cmd.SetArgs([]string{"--provider", "unknown", "test prompt"})

	err := cmd.Execute()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown provider")
}

func TestNewProvider_Unknown(t *testing.T) {
	_, err := newProvider("watsonx")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown provider")
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "no fence",
			input: "vaults:\n  primary: {}",
			want:  "vaults:\n  primary: {}",
		},
		{
			name:  "plain fence",
			input: "```\nvaults:\n  primary: {}\n```",
			want:  "vaults:\n  primary: {}",
		},
		{
			name:  "yaml fence",
			input: "```yaml\nvaults:\n  primary: {}\n```",
			want:  "vaults:\n  primary: {}",
		},
		{
			name:  "surrounding whitespace",
			input: "\n```yaml\nplans: {}\n```\n\n",
			want:  "plans: {}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripCodeFences(tt.input))
		})
	}
}

func TestCheckDraft(t *testing.T) {
	issues, err := checkDraft(`
defaults:
  iam_role_arn: arn:aws:iam::123456789012:role/backup
vaults:
  primary: {}
plans:
  daily:
    rules:
      nightly:
        vault: primary
        schedule: cron(0 5 * * ? *)
        lifecycle:
          delete_after_days: 30
    selections:
      all:
        tags:
          - key: env
            value: prod
`)
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestCheckDraft_InvalidYAML(t *testing.T) {
	issues, err := checkDraft("vaults: [unbalanced")
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0], "not valid YAML")
}

func TestCheckDraft_ReportsValidationErrors(t *testing.T) {
	// Cold storage transition without the 90 day retention gap.
	issues, err := checkDraft(`
defaults:
  iam_role_arn: arn:aws:iam::123456789012:role/backup
vaults:
  primary: {}
plans:
  daily:
    rules:
      nightly:
        vault: primary
        schedule: cron(0 5 * * ? *)
        lifecycle:
          cold_storage_after_days: 30
          delete_after_days: 60
    selections:
      all:
        resources:
          - arn:aws:rds:us-east-1:123456789012:db:orders
`)
	require.NoError(t, err)
	assert.NotEmpty(t, issues)
}

func TestLintDraft(t *testing.T) {
	// A bare vault trips several advisory rules without blocking the draft.
	draft := `
defaults:
  iam_role_arn: arn:aws:iam::123456789012:role/backup
vaults:
  primary: {}
plans:
  daily:
    rules:
      nightly:
        vault: primary
        schedule: cron(0 5 * * ? *)
    selections:
      all:
        resources:
          - arn:aws:rds:us-east-1:123456789012:db:orders
`
	findings := lintDraft(draft)
	assert.NotEmpty(t, findings)

	blocking, err := checkDraft(draft)
	require.NoError(t, err)
	assert.Empty(t, blocking)
}
