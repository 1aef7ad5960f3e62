package k8s

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	backupwire "github.com/lex00/backupwire-aws-go"
	backupv1alpha1 "github.com/lex00/backupwire-aws-go/resources/k8s/backup/v1alpha1"
)

func testSet() *backupwire.ResourceSet {
	return &backupwire.ResourceSet{
		Vaults: []backupwire.VaultInstance{
			{
				Name:      "primary",
				KMSKeyARN: "arn:aws:kms:us-east-1:123456789012:key/abc",
				Lock:      &backupwire.VaultLock{Mode: backupwire.LockModeCompliance, MinRetentionDays: 30, ChangeableForDays: 3},
			},
		},
		Plans: []backupwire.PlanInstance{
			{
				Name: "daily",
				Rules: []backupwire.RuleInstance{
					{
						Name:      "nightly",
						VaultName: "primary",
						Schedule:  "cron(0 5 * * ? *)",
						Lifecycle: &backupwire.Lifecycle{DeleteAfterDays: 365},
					},
				},
			},
		},
		Selections: []backupwire.SelectionInstance{
			{
				Name:       "tagged",
				PlanName:   "daily",
				IAMRoleARN: "arn:aws:iam::123456789012:role/backup",
				Tags: []backupwire.TagCondition{
					{Type: backupwire.ConditionTypeStringEquals, Key: "backup", Value: "true"},
				},
			},
		},
	}
}

func TestRender(t *testing.T) {
	manifests, err := Render(testSet(), Options{Namespace: "ack-system"})
	require.NoError(t, err)
	require.Len(t, manifests, 3)

	vault, ok := manifests[0].(backupv1alpha1.BackupVault)
	require.True(t, ok)
	assert.Equal(t, GroupVersion, vault.APIVersion)
	assert.Equal(t, "BackupVault", vault.Kind)
	assert.Equal(t, "primary", vault.ObjectMeta.Name)
	assert.Equal(t, "ack-system", vault.ObjectMeta.Namespace)
	require.NotNil(t, vault.Spec.LockConfiguration)
	require.NotNil(t, vault.Spec.LockConfiguration.ChangeableForDays)
	assert.Equal(t, int64(3), *vault.Spec.LockConfiguration.ChangeableForDays)

	plan, ok := manifests[1].(backupv1alpha1.BackupPlan)
	require.True(t, ok)
	require.Len(t, plan.Spec.Rules, 1)
	assert.Equal(t, "primary", plan.Spec.Rules[0].TargetBackupVaultName)
	require.NotNil(t, plan.Spec.Rules[0].Lifecycle)
	assert.Equal(t, int64(365), *plan.Spec.Rules[0].Lifecycle.DeleteAfterDays)

	sel, ok := manifests[2].(backupv1alpha1.BackupSelection)
	require.True(t, ok)
	assert.Equal(t, "daily-tagged", sel.ObjectMeta.Name)
	require.NotNil(t, sel.Spec.BackupPlanRef)
	assert.Equal(t, "daily", *sel.Spec.BackupPlanRef.From.Name)
	require.Len(t, sel.Spec.ListOfTags, 1)
	assert.Equal(t, "STRINGEQUALS", sel.Spec.ListOfTags[0].ConditionType)
}

func TestRender_PlanRefMatchesManifestName(t *testing.T) {
	set := testSet()
	set.Plans[0].Name = "Daily_Prod"
	set.Selections[0].PlanName = "Daily_Prod"

	manifests, err := Render(set, Options{})
	require.NoError(t, err)

	plan, ok := manifests[1].(backupv1alpha1.BackupPlan)
	require.True(t, ok)
	assert.Equal(t, "daily-prod", plan.ObjectMeta.Name)

	sel, ok := manifests[2].(backupv1alpha1.BackupSelection)
	require.True(t, ok)
	require.NotNil(t, sel.Spec.BackupPlanRef)
	// The ref points at the plan manifest's sanitized object name.
	assert.Equal(t, plan.ObjectMeta.Name, *sel.Spec.BackupPlanRef.From.Name)
}

func TestEncode(t *testing.T) {
	manifests, err := Render(testSet(), Options{})
	require.NoError(t, err)

	data, err := Encode(manifests)
	require.NoError(t, err)
	out := string(data)

	// Three documents in one stream.
	assert.Equal(t, 2, strings.Count(out, "---"))
	assert.Contains(t, out, "apiVersion: backup.services.k8s.aws/v1alpha1")
	assert.Contains(t, out, "kind: BackupVault")
	assert.Contains(t, out, "kind: BackupPlan")
	assert.Contains(t, out, "kind: BackupSelection")
	// json tags drive field names, so camelCase not Go names.
	assert.Contains(t, out, "targetBackupVaultName: primary")
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"primary", "primary"},
		{"Prod_US-East", "prod-us-east"},
		{"daily/tagged", "daily-tagged"},
	}
	for _, tt := range tests {
		if got := sanitizeName(tt.in); got != tt.want {
			t.Errorf("sanitizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
