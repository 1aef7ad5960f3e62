package lint

import (
	"testing"

	backupwire "github.com/lex00/backupwire-aws-go"
)

// hardenedPolicy triggers no lint rules.
func hardenedPolicy() *backupwire.Policy {
	return &backupwire.Policy{
		Vaults: map[string]backupwire.Vault{
			"primary": {
				KMSKeyARN: "arn:aws:kms:us-east-1:123456789012:key/abc",
				Lock:      &backupwire.VaultLock{Mode: backupwire.LockModeCompliance, ChangeableForDays: 3},
				AccessPolicy: map[string]any{
					"Version": "2012-10-17",
					"Statement": []any{
						map[string]any{
							"Effect":   "Deny",
							"Action":   "backup:DeleteRecoveryPoint",
							"Resource": "*",
							"Principal": map[string]any{"AWS": "*"},
						},
					},
				},
			},
		},
		Plans: map[string]backupwire.Plan{
			"daily": {
				Rules: map[string]backupwire.Rule{
					"nightly": {
						Vault:             "primary",
						Schedule:          "cron(0 5 * * ? *)",
						RecoveryPointTags: backupwire.Tags{"plan": "daily"},
						Lifecycle:         &backupwire.Lifecycle{DeleteAfterDays: 35},
						CopyActions: []backupwire.CopyAction{
							{DestinationVaultARN: "arn:aws:backup:us-west-2:123456789012:backup-vault:dr"},
						},
					},
				},
				Selections: map[string]backupwire.Selection{
					"tagged": {Tags: []backupwire.TagCondition{{Key: "backup", Value: "true"}}},
				},
			},
		},
	}
}

func hasRule(issues []backupwire.Issue, id string) bool {
	for _, issue := range issues {
		if issue.Rule == id {
			return true
		}
	}
	return false
}

func TestPolicy_Clean(t *testing.T) {
	result := Policy(hardenedPolicy(), Options{})
	if !result.Success {
		t.Fatalf("Policy() issues = %v", result.Issues)
	}
}

func TestVaultWithoutLock(t *testing.T) {
	p := hardenedPolicy()
	vault := p.Vaults["primary"]
	vault.Lock = nil
	p.Vaults["primary"] = vault

	result := Policy(p, Options{})
	if !hasRule(result.Issues, "BWA001") {
		t.Errorf("missing BWA001, got %v", result.Issues)
	}
}

func TestRuleWithoutCopy(t *testing.T) {
	p := hardenedPolicy()
	plan := p.Plans["daily"]
	rule := plan.Rules["nightly"]
	rule.CopyActions = nil
	plan.Rules["nightly"] = rule
	p.Plans["daily"] = plan

	result := Policy(p, Options{})
	if !hasRule(result.Issues, "BWA002") {
		t.Errorf("missing BWA002, got %v", result.Issues)
	}
}

func TestShortRetention(t *testing.T) {
	p := hardenedPolicy()
	plan := p.Plans["daily"]
	rule := plan.Rules["nightly"]
	rule.Lifecycle = &backupwire.Lifecycle{DeleteAfterDays: 7}
	plan.Rules["nightly"] = rule
	p.Plans["daily"] = plan

	result := Policy(p, Options{})
	if !hasRule(result.Issues, "BWA003") {
		t.Errorf("missing BWA003, got %v", result.Issues)
	}

	// A higher configured minimum flags the hardened policy too.
	result = Policy(hardenedPolicy(), Options{MinRetentionDays: 90})
	if !hasRule(result.Issues, "BWA003") {
		t.Error("missing BWA003 with raised minimum")
	}
}

func TestWildcardSelection(t *testing.T) {
	p := hardenedPolicy()
	plan := p.Plans["daily"]
	plan.Selections["all"] = backupwire.Selection{Resources: []string{"*"}}
	p.Plans["daily"] = plan

	result := Policy(p, Options{})
	if !hasRule(result.Issues, "BWA004") {
		t.Errorf("missing BWA004, got %v", result.Issues)
	}
}

func TestVaultWithoutCMK(t *testing.T) {
	p := hardenedPolicy()
	vault := p.Vaults["primary"]
	vault.KMSKeyARN = ""
	p.Vaults["primary"] = vault

	result := Policy(p, Options{})
	if !hasRule(result.Issues, "BWA005") {
		t.Errorf("missing BWA005, got %v", result.Issues)
	}
}

func TestPlanWithoutSelection(t *testing.T) {
	p := hardenedPolicy()
	plan := p.Plans["daily"]
	plan.Selections = nil
	p.Plans["daily"] = plan

	result := Policy(p, Options{})
	if !hasRule(result.Issues, "BWA006") {
		t.Errorf("missing BWA006, got %v", result.Issues)
	}
}

func TestContinuousWithColdStorage(t *testing.T) {
	p := hardenedPolicy()
	plan := p.Plans["daily"]
	rule := plan.Rules["nightly"]
	rule.EnableContinuousBackup = true
	rule.Lifecycle = &backupwire.Lifecycle{ColdStorageAfterDays: 7, DeleteAfterDays: 30}
	plan.Rules["nightly"] = rule
	p.Plans["daily"] = plan

	result := Policy(p, Options{})
	if !hasRule(result.Issues, "BWA007") {
		t.Errorf("missing BWA007, got %v", result.Issues)
	}
}

func TestAccessPolicyAllowsDelete(t *testing.T) {
	p := hardenedPolicy()
	vault := p.Vaults["primary"]
	vault.AccessPolicy = map[string]any{
		"Version": "2012-10-17",
		"Statement": []any{
			map[string]any{"Effect": "Allow", "Action": "backup:*", "Resource": "*"},
		},
	}
	p.Vaults["primary"] = vault

	result := Policy(p, Options{})
	if !hasRule(result.Issues, "BWA008") {
		t.Errorf("missing BWA008, got %v", result.Issues)
	}
}

func TestUntaggedRecoveryPoints(t *testing.T) {
	p := hardenedPolicy()
	plan := p.Plans["daily"]
	rule := plan.Rules["nightly"]
	rule.RecoveryPointTags = nil
	plan.Rules["nightly"] = rule
	p.Plans["daily"] = plan

	result := Policy(p, Options{})
	if !hasRule(result.Issues, "BWA009") {
		t.Errorf("missing BWA009, got %v", result.Issues)
	}
}

func TestLongLockCooldown(t *testing.T) {
	p := hardenedPolicy()
	vault := p.Vaults["primary"]
	vault.Lock = &backupwire.VaultLock{Mode: backupwire.LockModeCompliance, ChangeableForDays: 365}
	p.Vaults["primary"] = vault

	result := Policy(p, Options{})
	if !hasRule(result.Issues, "BWA010") {
		t.Errorf("missing BWA010, got %v", result.Issues)
	}
}

func TestPolicy_EnabledRules(t *testing.T) {
	p := hardenedPolicy()
	vault := p.Vaults["primary"]
	vault.Lock = nil
	vault.KMSKeyARN = ""
	p.Vaults["primary"] = vault

	result := Policy(p, Options{EnabledRules: []string{"BWA005"}})
	if hasRule(result.Issues, "BWA001") {
		t.Error("BWA001 ran despite not being enabled")
	}
	if !hasRule(result.Issues, "BWA005") {
		t.Error("BWA005 missing despite being enabled")
	}
}
