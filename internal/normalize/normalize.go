// Package normalize expands a nested policy document into a flat set of
// AWS Backup resource instances.
//
// Normalization resolves the plans → rules → selections → copy-actions map
// into one instance per resource, applies policy defaults, and assigns
// stable logical names so that two runs over the same document always
// produce the same set in the same order.
package normalize

import (
	"fmt"
	"sort"
	"strings"

	backupwire "github.com/lex00/backupwire-aws-go"
)

// Result contains the normalized set and any reference errors.
type Result struct {
	Set    *backupwire.ResourceSet
	Errors []error
}

// Success reports whether normalization produced no errors.
func (r *Result) Success() bool { return len(r.Errors) == 0 }

// Normalize expands p into a resource set. Reference errors (a rule naming
// an unknown vault key, a plan with no rules) are collected rather than
// aborting, so callers can report all of them at once.
func Normalize(p *backupwire.Policy) *Result {
	result := &Result{Set: &backupwire.ResourceSet{}}

	vaultNames := normalizeVaults(p, result)
	normalizePlans(p, vaultNames, result)

	return result
}

// normalizeVaults emits vault instances and returns the key → name mapping
// used to resolve rule targets.
func normalizeVaults(p *backupwire.Policy, result *Result) map[string]string {
	names := make(map[string]string, len(p.Vaults))

	for _, key := range sortedKeys(p.Vaults) {
		vault := p.Vaults[key]
		name := vault.Name
		if name == "" {
			name = key
		}
		names[key] = name

		result.Set.Vaults = append(result.Set.Vaults, backupwire.VaultInstance{
			Name:         name,
			KMSKeyARN:    vault.KMSKeyARN,
			Tags:         p.Defaults.Tags.Merge(vault.Tags),
			Lock:         vault.Lock,
			AccessPolicy: vault.AccessPolicy,
			ForceDestroy: vault.ForceDestroy,
		})
	}

	return names
}

func normalizePlans(p *backupwire.Policy, vaultNames map[string]string, result *Result) {
	for _, planKey := range sortedKeys(p.Plans) {
		plan := p.Plans[planKey]
		planName := plan.Name
		if planName == "" {
			planName = planKey
		}

		if len(plan.Rules) == 0 {
			result.Errors = append(result.Errors, fmt.Errorf("plan %q has no rules", planKey))
			continue
		}

		instance := backupwire.PlanInstance{
			Name:       planName,
			Tags:       p.Defaults.Tags.Merge(plan.Tags),
			WindowsVSS: plan.WindowsVSS,
		}

		for _, ruleKey := range sortedKeys(plan.Rules) {
			rule, errs := normalizeRule(p, planKey, ruleKey, plan.Rules[ruleKey], vaultNames)
			result.Errors = append(result.Errors, errs...)
			instance.Rules = append(instance.Rules, rule)
		}

		result.Set.Plans = append(result.Set.Plans, instance)

		for _, selKey := range sortedKeys(plan.Selections) {
			sel := plan.Selections[selKey]
			roleARN := sel.IAMRoleARN
			if roleARN == "" {
				roleARN = p.Defaults.IAMRoleARN
			}

			result.Set.Selections = append(result.Set.Selections, backupwire.SelectionInstance{
				Name:         selKey,
				PlanName:     planName,
				IAMRoleARN:   roleARN,
				Resources:    sel.Resources,
				NotResources: sel.NotResources,
				Tags:         normalizeTagConditions(sel.Tags),
				Conditions:   sel.Conditions,
			})
		}
	}
}

func normalizeRule(p *backupwire.Policy, planKey, ruleKey string, rule backupwire.Rule, vaultNames map[string]string) (backupwire.RuleInstance, []error) {
	var errs []error

	vaultName, err := resolveVault(p, planKey, ruleKey, rule.Vault, vaultNames)
	if err != nil {
		errs = append(errs, err)
	}

	lifecycle := rule.Lifecycle
	if lifecycle.IsZero() && !p.Defaults.Lifecycle.IsZero() {
		lifecycle = p.Defaults.Lifecycle
		if rule.EnableContinuousBackup {
			// Continuous backup cannot tier to cold storage, so a
			// continuous rule takes only the default retention.
			lifecycle = &backupwire.Lifecycle{DeleteAfterDays: p.Defaults.Lifecycle.DeleteAfterDays}
			if lifecycle.IsZero() {
				lifecycle = nil
			}
		}
	}

	// Copy actions with no lifecycle of their own inherit the rule's.
	copies := make([]backupwire.CopyAction, len(rule.CopyActions))
	for i, copyAction := range rule.CopyActions {
		if copyAction.Lifecycle.IsZero() {
			copyAction.Lifecycle = lifecycle
		}
		copies[i] = copyAction
	}
	if len(copies) == 0 {
		copies = nil
	}

	return backupwire.RuleInstance{
		Name:                    ruleKey,
		VaultName:               vaultName,
		Schedule:                rule.Schedule,
		StartWindowMinutes:      rule.StartWindowMinutes,
		CompletionWindowMinutes: rule.CompletionWindowMinutes,
		EnableContinuousBackup:  rule.EnableContinuousBackup,
		RecoveryPointTags:       rule.RecoveryPointTags,
		Lifecycle:               lifecycle,
		CopyActions:             copies,
	}, errs
}

// resolveVault maps a rule's vault reference to a concrete vault name.
// References resolve against vault keys first; a literal name that matches
// no key is an error so typos do not silently create dangling targets.
func resolveVault(p *backupwire.Policy, planKey, ruleKey, ref string, vaultNames map[string]string) (string, error) {
	if ref == "" {
		ref = p.Defaults.Vault
	}
	if ref == "" {
		return "", fmt.Errorf("rule %q in plan %q names no vault and the policy has no default vault", ruleKey, planKey)
	}
	if name, ok := vaultNames[ref]; ok {
		return name, nil
	}
	return ref, fmt.Errorf("rule %q in plan %q references unknown vault %q", ruleKey, planKey, ref)
}

// normalizeTagConditions fills in the default STRINGEQUALS operator and
// upper-cases explicit operators.
func normalizeTagConditions(tags []backupwire.TagCondition) []backupwire.TagCondition {
	if len(tags) == 0 {
		return nil
	}
	out := make([]backupwire.TagCondition, len(tags))
	for i, tc := range tags {
		if tc.Type == "" {
			tc.Type = backupwire.ConditionTypeStringEquals
		} else {
			tc.Type = strings.ToUpper(tc.Type)
		}
		out[i] = tc
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
