// Package backupwire_aws provides the shared types for declarative AWS Backup
// policy documents.
//
// A policy document describes vaults, plans, rules, selections, and copy
// actions in a single nested structure:
//
//	vaults:
//	  primary:
//	    kms_key_arn: arn:aws:kms:us-east-1:123456789012:key/abc
//	plans:
//	  daily:
//	    rules:
//	      nightly:
//	        vault: primary
//	        schedule: cron(0 5 * * ? *)
//
// The backupwire-aws CLI normalizes these documents into flat resource
// instances, validates them, and diffs them against other documents or the
// live AWS Backup control plane.
package backupwire_aws

import (
	"sort"
)

// Tags is a set of AWS resource tags.
type Tags map[string]string

// Merge returns a new tag set with other layered over t.
// Keys in other win on conflict.
func (t Tags) Merge(other Tags) Tags {
	if len(t) == 0 && len(other) == 0 {
		return nil
	}
	merged := make(Tags, len(t)+len(other))
	for k, v := range t {
		merged[k] = v
	}
	for k, v := range other {
		merged[k] = v
	}
	return merged
}

// SortedKeys returns the tag keys in sorted order.
func (t Tags) SortedKeys() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Policy is the top-level desired-state document.
type Policy struct {
	// Defaults apply to every vault, plan, and selection unless overridden.
	Defaults Defaults `json:"defaults,omitempty" yaml:"defaults,omitempty"`

	// Vaults maps vault keys to vault definitions. The key becomes the
	// vault name unless the definition overrides it.
	Vaults map[string]Vault `json:"vaults,omitempty" yaml:"vaults,omitempty"`

	// Plans maps plan keys to backup plan definitions.
	Plans map[string]Plan `json:"plans,omitempty" yaml:"plans,omitempty"`
}

// Defaults holds fallback values applied during normalization.
type Defaults struct {
	// Vault is the vault key used by rules that name no vault.
	Vault string `json:"vault,omitempty" yaml:"vault,omitempty"`

	// IAMRoleARN is the role used by selections that name no role.
	IAMRoleARN string `json:"iam_role_arn,omitempty" yaml:"iam_role_arn,omitempty"`

	// Lifecycle is inherited by rules with no lifecycle of their own.
	Lifecycle *Lifecycle `json:"lifecycle,omitempty" yaml:"lifecycle,omitempty"`

	// Tags are merged into every vault and plan.
	Tags Tags `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// Vault is a named container for recovery points.
type Vault struct {
	// Name overrides the map key as the vault name.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// KMSKeyARN is the server-side encryption key. Empty means the
	// AWS-managed key.
	KMSKeyARN string `json:"kms_key_arn,omitempty" yaml:"kms_key_arn,omitempty"`

	Tags Tags `json:"tags,omitempty" yaml:"tags,omitempty"`

	// Lock configures vault lock. Nil means unlocked.
	Lock *VaultLock `json:"lock,omitempty" yaml:"lock,omitempty"`

	// AccessPolicy is a resource-based IAM policy document.
	AccessPolicy map[string]any `json:"access_policy,omitempty" yaml:"access_policy,omitempty"`

	// ForceDestroy allows deleting the vault with recovery points inside.
	ForceDestroy bool `json:"force_destroy,omitempty" yaml:"force_destroy,omitempty"`
}

// Vault lock modes.
const (
	LockModeGovernance = "governance"
	LockModeCompliance = "compliance"
)

// VaultLock is an immutability guarantee on a vault.
type VaultLock struct {
	// Mode is "governance" or "compliance".
	Mode string `json:"mode" yaml:"mode"`

	// MinRetentionDays is the minimum retention a rule targeting this
	// vault may use. Zero means no minimum.
	MinRetentionDays int `json:"min_retention_days,omitempty" yaml:"min_retention_days,omitempty"`

	// MaxRetentionDays is the maximum retention. Zero means no maximum.
	MaxRetentionDays int `json:"max_retention_days,omitempty" yaml:"max_retention_days,omitempty"`

	// ChangeableForDays is the compliance-mode cooldown before the lock
	// becomes immutable. Ignored in governance mode.
	ChangeableForDays int `json:"changeable_for_days,omitempty" yaml:"changeable_for_days,omitempty"`
}

// Plan is a set of scheduled backup rules plus the selections they apply to.
type Plan struct {
	// Name overrides the map key as the plan name.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	Rules map[string]Rule `json:"rules,omitempty" yaml:"rules,omitempty"`

	Selections map[string]Selection `json:"selections,omitempty" yaml:"selections,omitempty"`

	Tags Tags `json:"tags,omitempty" yaml:"tags,omitempty"`

	// WindowsVSS enables application-consistent Windows backups.
	WindowsVSS bool `json:"windows_vss,omitempty" yaml:"windows_vss,omitempty"`
}

// Rule defines backup frequency, window, lifecycle, and copy destinations.
type Rule struct {
	// Vault is the target vault key (or literal vault name). Empty uses
	// the policy default vault.
	Vault string `json:"vault,omitempty" yaml:"vault,omitempty"`

	// Schedule is a cron(...) or rate(...) expression. Empty means
	// on-demand only.
	Schedule string `json:"schedule,omitempty" yaml:"schedule,omitempty"`

	// StartWindowMinutes is how long a backup may wait to start.
	StartWindowMinutes int `json:"start_window_minutes,omitempty" yaml:"start_window_minutes,omitempty"`

	// CompletionWindowMinutes is how long a started backup may run.
	CompletionWindowMinutes int `json:"completion_window_minutes,omitempty" yaml:"completion_window_minutes,omitempty"`

	// EnableContinuousBackup turns on point-in-time recovery.
	EnableContinuousBackup bool `json:"enable_continuous_backup,omitempty" yaml:"enable_continuous_backup,omitempty"`

	RecoveryPointTags Tags `json:"recovery_point_tags,omitempty" yaml:"recovery_point_tags,omitempty"`

	Lifecycle *Lifecycle `json:"lifecycle,omitempty" yaml:"lifecycle,omitempty"`

	CopyActions []CopyAction `json:"copy_actions,omitempty" yaml:"copy_actions,omitempty"`
}

// Lifecycle controls cold-storage transition and deletion of recovery points.
type Lifecycle struct {
	// ColdStorageAfterDays moves recovery points to cold storage.
	// Zero disables the transition.
	ColdStorageAfterDays int `json:"cold_storage_after_days,omitempty" yaml:"cold_storage_after_days,omitempty"`

	// DeleteAfterDays deletes recovery points. Zero means retain forever.
	DeleteAfterDays int `json:"delete_after_days,omitempty" yaml:"delete_after_days,omitempty"`

	// OptInToArchive enables archive tiering for supported resources.
	OptInToArchive bool `json:"opt_in_to_archive,omitempty" yaml:"opt_in_to_archive,omitempty"`
}

// IsZero reports whether the lifecycle sets nothing.
func (l *Lifecycle) IsZero() bool {
	return l == nil || (l.ColdStorageAfterDays == 0 && l.DeleteAfterDays == 0 && !l.OptInToArchive)
}

// CopyAction replicates recovery points into another vault, often
// cross-region or cross-account.
type CopyAction struct {
	DestinationVaultARN string `json:"destination_vault_arn" yaml:"destination_vault_arn"`

	// Lifecycle for the copies. Nil inherits the rule lifecycle.
	Lifecycle *Lifecycle `json:"lifecycle,omitempty" yaml:"lifecycle,omitempty"`
}

// Selection is the set of resources a plan's rules apply to.
type Selection struct {
	// IAMRoleARN is the role AWS Backup assumes. Empty uses the policy
	// default role.
	IAMRoleARN string `json:"iam_role_arn,omitempty" yaml:"iam_role_arn,omitempty"`

	// Resources are ARNs (or ARN wildcards) to include.
	Resources []string `json:"resources,omitempty" yaml:"resources,omitempty"`

	// NotResources are ARNs to exclude.
	NotResources []string `json:"not_resources,omitempty" yaml:"not_resources,omitempty"`

	// Tags selects resources by tag (ListOfTags semantics: OR).
	Tags []TagCondition `json:"tags,omitempty" yaml:"tags,omitempty"`

	// Conditions selects resources by tag (AND semantics).
	Conditions *SelectionConditions `json:"conditions,omitempty" yaml:"conditions,omitempty"`
}

// Empty reports whether the selection matches nothing.
func (s Selection) Empty() bool {
	return len(s.Resources) == 0 && len(s.Tags) == 0 && (s.Conditions == nil || s.Conditions.Empty())
}

// ConditionTypeStringEquals is the only operator AWS Backup accepts for
// ListOfTags entries.
const ConditionTypeStringEquals = "STRINGEQUALS"

// TagCondition is a single tag match in a selection.
type TagCondition struct {
	// Type is the match operator. Empty defaults to STRINGEQUALS.
	Type  string `json:"type,omitempty" yaml:"type,omitempty"`
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// SelectionConditions are AND-combined tag matchers.
type SelectionConditions struct {
	StringEquals    []ConditionPair `json:"string_equals,omitempty" yaml:"string_equals,omitempty"`
	StringLike      []ConditionPair `json:"string_like,omitempty" yaml:"string_like,omitempty"`
	StringNotEquals []ConditionPair `json:"string_not_equals,omitempty" yaml:"string_not_equals,omitempty"`
	StringNotLike   []ConditionPair `json:"string_not_like,omitempty" yaml:"string_not_like,omitempty"`
}

// Empty reports whether no condition is set.
func (c *SelectionConditions) Empty() bool {
	return c == nil || (len(c.StringEquals) == 0 && len(c.StringLike) == 0 &&
		len(c.StringNotEquals) == 0 && len(c.StringNotLike) == 0)
}

// ConditionPair is a tag key/value matcher.
type ConditionPair struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}
