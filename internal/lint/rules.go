// Lint rules for backup policy documents.
//
// Rules:
//
//	BWA001: Vaults holding scheduled backups should have vault lock
//	BWA002: Rules should copy recovery points to a second vault
//	BWA003: Retention under the configured minimum
//	BWA004: Selections should not match every resource with a wildcard
//	BWA005: Vaults should use a customer-managed KMS key
//	BWA006: Plans should have at least one selection
//	BWA007: Continuous-backup rules must not configure cold storage
//	BWA008: Vault access policies should deny recovery point deletion
//	BWA009: Rules should tag their recovery points
//	BWA010: Compliance lock cooldowns should be short
package lint

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	backupwire "github.com/lex00/backupwire-aws-go"
)

const defaultMinRetentionDays = 30

func warn(rule, path, message, suggestion string) backupwire.Issue {
	return backupwire.Issue{
		Rule:       rule,
		Path:       path,
		Message:    message,
		Suggestion: suggestion,
		Severity:   backupwire.SeverityWarning,
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// VaultWithoutLock flags vaults that have no vault lock, leaving recovery
// points deletable.
type VaultWithoutLock struct{}

func (r VaultWithoutLock) ID() string { return "BWA001" }
func (r VaultWithoutLock) Description() string {
	return "Vaults holding scheduled backups should have vault lock"
}

func (r VaultWithoutLock) Check(p *backupwire.Policy) []backupwire.Issue {
	var issues []backupwire.Issue
	for _, key := range sortedKeys(p.Vaults) {
		if p.Vaults[key].Lock == nil {
			issues = append(issues, warn(r.ID(), "vaults/"+key,
				fmt.Sprintf("vault %q has no vault lock", key),
				"add a lock block (governance or compliance mode) to protect recovery points"))
		}
	}
	return issues
}

// RuleWithoutCopy flags rules with no copy action: a single vault is a
// single blast radius.
type RuleWithoutCopy struct{}

func (r RuleWithoutCopy) ID() string { return "BWA002" }
func (r RuleWithoutCopy) Description() string {
	return "Rules should copy recovery points to a second vault"
}

func (r RuleWithoutCopy) Check(p *backupwire.Policy) []backupwire.Issue {
	var issues []backupwire.Issue
	for _, planKey := range sortedKeys(p.Plans) {
		plan := p.Plans[planKey]
		for _, ruleKey := range sortedKeys(plan.Rules) {
			if len(plan.Rules[ruleKey].CopyActions) == 0 {
				issues = append(issues, warn(r.ID(),
					fmt.Sprintf("plans/%s/rules/%s", planKey, ruleKey),
					fmt.Sprintf("rule %q has no copy action", ruleKey),
					"add a copy_actions entry targeting a vault in another region or account"))
			}
		}
	}
	return issues
}

// ShortRetention flags rules that delete recovery points before MinDays.
type ShortRetention struct {
	MinDays int
}

func (r ShortRetention) ID() string { return "BWA003" }
func (r ShortRetention) Description() string {
	return "Retention should meet the configured minimum"
}

func (r ShortRetention) Check(p *backupwire.Policy) []backupwire.Issue {
	var issues []backupwire.Issue
	for _, planKey := range sortedKeys(p.Plans) {
		plan := p.Plans[planKey]
		for _, ruleKey := range sortedKeys(plan.Rules) {
			rule := plan.Rules[ruleKey]
			lc := rule.Lifecycle
			if lc == nil {
				lc = p.Defaults.Lifecycle
			}
			if lc != nil && lc.DeleteAfterDays > 0 && lc.DeleteAfterDays < r.MinDays && !rule.EnableContinuousBackup {
				issues = append(issues, warn(r.ID(),
					fmt.Sprintf("plans/%s/rules/%s/lifecycle", planKey, ruleKey),
					fmt.Sprintf("retention of %d days is under the %d day minimum", lc.DeleteAfterDays, r.MinDays),
					""))
			}
		}
	}
	return issues
}

// WildcardSelection flags selections that include every resource.
type WildcardSelection struct{}

func (r WildcardSelection) ID() string { return "BWA004" }
func (r WildcardSelection) Description() string {
	return "Selections should not match every resource with a wildcard"
}

func (r WildcardSelection) Check(p *backupwire.Policy) []backupwire.Issue {
	var issues []backupwire.Issue
	for _, planKey := range sortedKeys(p.Plans) {
		plan := p.Plans[planKey]
		for _, selKey := range sortedKeys(plan.Selections) {
			for _, res := range plan.Selections[selKey].Resources {
				if res == "*" {
					issues = append(issues, warn(r.ID(),
						fmt.Sprintf("plans/%s/selections/%s", planKey, selKey),
						fmt.Sprintf("selection %q includes every resource in the account", selKey),
						"scope the selection with tag conditions or explicit ARNs"))
				}
			}
		}
	}
	return issues
}

// VaultWithoutCMK flags vaults encrypted with the AWS-managed key.
type VaultWithoutCMK struct{}

func (r VaultWithoutCMK) ID() string { return "BWA005" }
func (r VaultWithoutCMK) Description() string {
	return "Vaults should use a customer-managed KMS key"
}

func (r VaultWithoutCMK) Check(p *backupwire.Policy) []backupwire.Issue {
	var issues []backupwire.Issue
	for _, key := range sortedKeys(p.Vaults) {
		if p.Vaults[key].KMSKeyARN == "" {
			issues = append(issues, warn(r.ID(), "vaults/"+key,
				fmt.Sprintf("vault %q uses the AWS-managed encryption key", key),
				"set kms_key_arn to a customer-managed key for cross-account restore control"))
		}
	}
	return issues
}

// PlanWithoutSelection flags plans whose rules apply to nothing.
type PlanWithoutSelection struct{}

func (r PlanWithoutSelection) ID() string { return "BWA006" }
func (r PlanWithoutSelection) Description() string {
	return "Plans should have at least one selection"
}

func (r PlanWithoutSelection) Check(p *backupwire.Policy) []backupwire.Issue {
	var issues []backupwire.Issue
	for _, planKey := range sortedKeys(p.Plans) {
		if len(p.Plans[planKey].Selections) == 0 {
			issues = append(issues, warn(r.ID(), "plans/"+planKey,
				fmt.Sprintf("plan %q has no selections; its rules back up nothing", planKey),
				""))
		}
	}
	return issues
}

// ContinuousWithColdStorage flags PITR rules that configure cold storage.
type ContinuousWithColdStorage struct{}

func (r ContinuousWithColdStorage) ID() string { return "BWA007" }
func (r ContinuousWithColdStorage) Description() string {
	return "Continuous-backup rules must not configure cold storage"
}

func (r ContinuousWithColdStorage) Check(p *backupwire.Policy) []backupwire.Issue {
	var issues []backupwire.Issue
	for _, planKey := range sortedKeys(p.Plans) {
		plan := p.Plans[planKey]
		for _, ruleKey := range sortedKeys(plan.Rules) {
			rule := plan.Rules[ruleKey]
			if rule.EnableContinuousBackup && rule.Lifecycle != nil && rule.Lifecycle.ColdStorageAfterDays > 0 {
				issues = append(issues, warn(r.ID(),
					fmt.Sprintf("plans/%s/rules/%s", planKey, ruleKey),
					"continuous backup cannot move recovery points to cold storage",
					"remove cold_storage_after_days or disable continuous backup"))
			}
		}
	}
	return issues
}

// AccessPolicyAllowsDelete flags vault access policies that do not deny
// recovery point deletion.
type AccessPolicyAllowsDelete struct{}

func (r AccessPolicyAllowsDelete) ID() string { return "BWA008" }
func (r AccessPolicyAllowsDelete) Description() string {
	return "Vault access policies should deny recovery point deletion"
}

func (r AccessPolicyAllowsDelete) Check(p *backupwire.Policy) []backupwire.Issue {
	var issues []backupwire.Issue
	for _, key := range sortedKeys(p.Vaults) {
		vault := p.Vaults[key]
		if len(vault.AccessPolicy) == 0 {
			continue
		}
		if !policyDeniesDelete(vault.AccessPolicy) {
			issues = append(issues, warn(r.ID(), "vaults/"+key+"/access_policy",
				fmt.Sprintf("access policy on vault %q does not deny backup:DeleteRecoveryPoint", key),
				"add a Deny statement for backup:DeleteRecoveryPoint"))
		}
	}
	return issues
}

// policyDeniesDelete scans an IAM policy document for a Deny statement
// covering backup:DeleteRecoveryPoint.
func policyDeniesDelete(doc map[string]any) bool {
	// Round-trip through JSON to flatten YAML-decoded nesting.
	data, err := json.Marshal(doc)
	if err != nil {
		return false
	}
	var parsed struct {
		Statement []struct {
			Effect string `json:"Effect"`
			Action any    `json:"Action"`
		} `json:"Statement"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return false
	}

	for _, stmt := range parsed.Statement {
		if !strings.EqualFold(stmt.Effect, "Deny") {
			continue
		}
		for _, action := range actionList(stmt.Action) {
			if action == "backup:DeleteRecoveryPoint" || action == "backup:*" || action == "*" {
				return true
			}
		}
	}
	return false
}

func actionList(v any) []string {
	switch actions := v.(type) {
	case string:
		return []string{actions}
	case []any:
		out := make([]string, 0, len(actions))
		for _, a := range actions {
			if s, ok := a.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// UntaggedRecoveryPoints flags rules that tag none of their recovery points.
type UntaggedRecoveryPoints struct{}

func (r UntaggedRecoveryPoints) ID() string { return "BWA009" }
func (r UntaggedRecoveryPoints) Description() string {
	return "Rules should tag their recovery points"
}

func (r UntaggedRecoveryPoints) Check(p *backupwire.Policy) []backupwire.Issue {
	var issues []backupwire.Issue
	for _, planKey := range sortedKeys(p.Plans) {
		plan := p.Plans[planKey]
		for _, ruleKey := range sortedKeys(plan.Rules) {
			if len(plan.Rules[ruleKey].RecoveryPointTags) == 0 {
				issues = append(issues, warn(r.ID(),
					fmt.Sprintf("plans/%s/rules/%s", planKey, ruleKey),
					fmt.Sprintf("rule %q creates untagged recovery points", ruleKey),
					"set recovery_point_tags for cost attribution and restore filtering"))
			}
		}
	}
	return issues
}

// LongLockCooldown flags compliance locks that stay changeable for over
// 30 days, stretching the window in which the lock can be removed.
type LongLockCooldown struct{}

func (r LongLockCooldown) ID() string { return "BWA010" }
func (r LongLockCooldown) Description() string {
	return "Compliance lock cooldowns should be short"
}

const maxReasonableCooldownDays = 30

func (r LongLockCooldown) Check(p *backupwire.Policy) []backupwire.Issue {
	var issues []backupwire.Issue
	for _, key := range sortedKeys(p.Vaults) {
		lock := p.Vaults[key].Lock
		if lock != nil && lock.Mode == backupwire.LockModeCompliance && lock.ChangeableForDays > maxReasonableCooldownDays {
			issues = append(issues, warn(r.ID(), "vaults/"+key+"/lock",
				fmt.Sprintf("compliance lock stays changeable for %d days", lock.ChangeableForDays),
				"shorten changeable_for_days so the lock becomes immutable sooner"))
		}
	}
	return issues
}
