// Package validate checks a normalized resource set against AWS Backup
// service constraints.
//
// Validation is offline: it catches the cross-field mistakes the control
// plane would reject (retention bounds, malformed ARNs, bad schedule
// expressions, vault-lock violations) before anything reaches AWS.
package validate

import (
	"fmt"
	"regexp"

	backupwire "github.com/lex00/backupwire-aws-go"
	"github.com/lex00/backupwire-aws-go/internal/arn"
	"github.com/lex00/backupwire-aws-go/internal/schedule"
)

// AWS Backup service limits.
const (
	// MinColdStorageGapDays is the minimum spread between cold-storage
	// transition and deletion: recovery points must sit in cold storage
	// at least 90 days.
	MinColdStorageGapDays = 90

	// MaxContinuousRetentionDays is the PITR retention ceiling.
	MaxContinuousRetentionDays = 35

	// MinStartWindowMinutes is the smallest allowed start window.
	MinStartWindowMinutes = 60

	// MinCompletionSpreadMinutes is the minimum gap between start and
	// completion windows.
	MinCompletionSpreadMinutes = 60

	// MinLockChangeableDays is the compliance-lock cooldown floor.
	MinLockChangeableDays = 3
)

var vaultNameRe = regexp.MustCompile(`^[0-9A-Za-z\-_]{2,50}$`)

// Options configures validation.
type Options struct {
	// Strict promotes warnings to errors.
	Strict bool
}

// Result contains validation findings.
type Result struct {
	Valid    bool
	Errors   []backupwire.Issue
	Warnings []backupwire.Issue
}

// Set validates every instance in the set and the references between them.
func Set(set *backupwire.ResourceSet, opts Options) *Result {
	v := &validator{set: set, account: sourceAccount(set)}

	for _, vault := range set.Vaults {
		v.vault(vault)
	}
	for _, plan := range set.Plans {
		v.plan(plan)
	}
	for _, sel := range set.Selections {
		v.selection(sel)
	}

	result := &Result{Errors: v.errors, Warnings: v.warnings}
	if opts.Strict {
		result.Errors = append(result.Errors, result.Warnings...)
		result.Warnings = nil
	}
	result.Valid = len(result.Errors) == 0
	return result
}

type validator struct {
	set      *backupwire.ResourceSet
	account  string
	errors   []backupwire.Issue
	warnings []backupwire.Issue
}

// sourceAccount infers the deployment account from the selection IAM
// role ARNs. Returns "" when no roles agree on a single account, in
// which case account-dependent checks fall back to conservative
// behavior.
func sourceAccount(set *backupwire.ResourceSet) string {
	account := ""
	for _, sel := range set.Selections {
		acct := arn.AccountID(sel.IAMRoleARN)
		if acct == "" {
			continue
		}
		if account == "" {
			account = acct
		} else if account != acct {
			return ""
		}
	}
	return account
}

func (v *validator) errorf(path, format string, args ...any) {
	v.errors = append(v.errors, backupwire.Issue{
		Path:     path,
		Message:  fmt.Sprintf(format, args...),
		Severity: backupwire.SeverityError,
	})
}

func (v *validator) warnf(path, format string, args ...any) {
	v.warnings = append(v.warnings, backupwire.Issue{
		Path:     path,
		Message:  fmt.Sprintf(format, args...),
		Severity: backupwire.SeverityWarning,
	})
}

func (v *validator) vault(vault backupwire.VaultInstance) {
	path := "vaults/" + vault.Name

	if !vaultNameRe.MatchString(vault.Name) {
		v.errorf(path, "vault name %q must match %s", vault.Name, vaultNameRe)
	}

	if vault.KMSKeyARN != "" && !isKMSKey(vault.KMSKeyARN) {
		v.errorf(path+"/kms_key_arn", "invalid KMS key ARN %q", vault.KMSKeyARN)
	}

	if vault.Lock != nil {
		v.vaultLock(path+"/lock", vault.Name, vault.Lock)
	}

	if vault.Lock != nil && vault.ForceDestroy {
		v.warnf(path, "force_destroy has no effect on a locked vault")
	}
}

func (v *validator) vaultLock(path, vaultName string, lock *backupwire.VaultLock) {
	switch lock.Mode {
	case backupwire.LockModeGovernance, backupwire.LockModeCompliance:
	default:
		v.errorf(path+"/mode", "lock mode %q must be %q or %q", lock.Mode, backupwire.LockModeGovernance, backupwire.LockModeCompliance)
		return
	}

	if lock.MinRetentionDays < 0 || lock.MaxRetentionDays < 0 {
		v.errorf(path, "lock retention bounds must not be negative")
	}
	if lock.MinRetentionDays > 0 && lock.MaxRetentionDays > 0 && lock.MinRetentionDays > lock.MaxRetentionDays {
		v.errorf(path, "min_retention_days %d exceeds max_retention_days %d", lock.MinRetentionDays, lock.MaxRetentionDays)
	}

	if lock.Mode == backupwire.LockModeCompliance {
		if lock.ChangeableForDays < MinLockChangeableDays {
			v.errorf(path+"/changeable_for_days", "compliance lock on vault %q requires changeable_for_days >= %d, got %d", vaultName, MinLockChangeableDays, lock.ChangeableForDays)
		}
	} else if lock.ChangeableForDays != 0 {
		v.warnf(path+"/changeable_for_days", "changeable_for_days is ignored in governance mode")
	}
}

func (v *validator) plan(plan backupwire.PlanInstance) {
	path := "plans/" + plan.Name

	if len(plan.Rules) == 0 {
		v.errorf(path, "plan %q has no rules", plan.Name)
		return
	}

	seen := make(map[string]bool, len(plan.Rules))
	for _, rule := range plan.Rules {
		if seen[rule.Name] {
			v.errorf(path, "duplicate rule name %q", rule.Name)
		}
		seen[rule.Name] = true
		v.rule(path+"/rules/"+rule.Name, rule)
	}
}

func (v *validator) rule(path string, rule backupwire.RuleInstance) {
	vault, vaultKnown := v.set.VaultByName(rule.VaultName)
	if !vaultKnown {
		v.errorf(path+"/vault", "rule targets vault %q which is not in this policy", rule.VaultName)
	}

	if rule.Schedule != "" {
		if err := schedule.Validate(rule.Schedule); err != nil {
			v.errorf(path+"/schedule", "%v", err)
		}
	}

	if rule.StartWindowMinutes != 0 && rule.StartWindowMinutes < MinStartWindowMinutes {
		v.errorf(path+"/start_window_minutes", "start window %d is below the %d minute minimum", rule.StartWindowMinutes, MinStartWindowMinutes)
	}
	if rule.CompletionWindowMinutes != 0 {
		start := rule.StartWindowMinutes
		if start == 0 {
			start = MinStartWindowMinutes
		}
		if rule.CompletionWindowMinutes < start+MinCompletionSpreadMinutes {
			v.errorf(path+"/completion_window_minutes", "completion window %d must be at least start window + %d minutes", rule.CompletionWindowMinutes, MinCompletionSpreadMinutes)
		}
	}

	v.lifecycle(path+"/lifecycle", rule.Lifecycle, rule.EnableContinuousBackup)

	if vaultKnown && vault.Lock != nil && rule.Lifecycle != nil && rule.Lifecycle.DeleteAfterDays > 0 {
		retention := rule.Lifecycle.DeleteAfterDays
		if vault.Lock.MinRetentionDays > 0 && retention < vault.Lock.MinRetentionDays {
			v.errorf(path+"/lifecycle", "retention %d days is below locked vault %q minimum of %d", retention, vault.Name, vault.Lock.MinRetentionDays)
		}
		if vault.Lock.MaxRetentionDays > 0 && retention > vault.Lock.MaxRetentionDays {
			v.errorf(path+"/lifecycle", "retention %d days exceeds locked vault %q maximum of %d", retention, vault.Name, vault.Lock.MaxRetentionDays)
		}
	}

	for i, copyAction := range rule.CopyActions {
		v.copyAction(fmt.Sprintf("%s/copy_actions/%d", path, i), rule, copyAction)
	}
}

func (v *validator) lifecycle(path string, lc *backupwire.Lifecycle, continuous bool) {
	if lc.IsZero() {
		return
	}

	if lc.ColdStorageAfterDays < 0 || lc.DeleteAfterDays < 0 {
		v.errorf(path, "lifecycle days must not be negative")
		return
	}

	if continuous {
		if lc.ColdStorageAfterDays > 0 {
			v.errorf(path, "continuous backup does not support cold storage")
		}
		if lc.DeleteAfterDays > MaxContinuousRetentionDays {
			v.errorf(path, "continuous backup retention %d exceeds the %d day maximum", lc.DeleteAfterDays, MaxContinuousRetentionDays)
		}
		return
	}

	if lc.ColdStorageAfterDays > 0 && lc.DeleteAfterDays > 0 {
		if lc.DeleteAfterDays < lc.ColdStorageAfterDays+MinColdStorageGapDays {
			v.errorf(path, "delete_after_days %d must be at least cold_storage_after_days %d + %d", lc.DeleteAfterDays, lc.ColdStorageAfterDays, MinColdStorageGapDays)
		}
	}
}

func (v *validator) copyAction(path string, rule backupwire.RuleInstance, copyAction backupwire.CopyAction) {
	dest, err := arn.ParseBackupVault(copyAction.DestinationVaultARN)
	if err != nil {
		v.errorf(path+"/destination_vault_arn", "%v", err)
		return
	}

	crossAccount := v.account != "" && dest.AccountID != v.account

	if dest.Name == rule.VaultName && !crossAccount {
		// Deployed in the destination's region and account, this copy
		// action would target the very vault it copies from.
		v.errorf(path, "copy destination %q could be the source vault itself; copy to a vault with a different name or account", dest.Name)
	}

	if crossAccount {
		v.warnf(path, "cross-account copy to account %s: the destination vault's access policy must allow backup:CopyIntoBackupVault from account %s", dest.AccountID, v.account)
	}

	v.lifecycle(path+"/lifecycle", copyAction.Lifecycle, false)

	if copyAction.Lifecycle != nil && rule.Lifecycle != nil &&
		copyAction.Lifecycle.DeleteAfterDays > 0 && rule.Lifecycle.DeleteAfterDays > 0 &&
		copyAction.Lifecycle.DeleteAfterDays < rule.Lifecycle.DeleteAfterDays {
		v.warnf(path+"/lifecycle", "copy retention %d days is shorter than the source retention %d days", copyAction.Lifecycle.DeleteAfterDays, rule.Lifecycle.DeleteAfterDays)
	}
}

func (v *validator) selection(sel backupwire.SelectionInstance) {
	path := "plans/" + sel.PlanName + "/selections/" + sel.Name

	if _, ok := v.set.PlanByName(sel.PlanName); !ok {
		v.errorf(path, "selection references unknown plan %q", sel.PlanName)
	}

	if sel.IAMRoleARN == "" {
		v.errorf(path+"/iam_role_arn", "selection has no IAM role and the policy has no default role")
	} else if !arn.IsIAMRole(sel.IAMRoleARN) {
		v.errorf(path+"/iam_role_arn", "invalid IAM role ARN %q", sel.IAMRoleARN)
	}

	if len(sel.Resources) == 0 && len(sel.Tags) == 0 && sel.Conditions.Empty() {
		v.errorf(path, "selection matches nothing: set resources, tags, or conditions")
	}

	for i, res := range sel.Resources {
		if err := arn.ValidateResource(res); err != nil {
			v.errorf(fmt.Sprintf("%s/resources/%d", path, i), "%v", err)
		}
	}
	for i, res := range sel.NotResources {
		if err := arn.ValidateResource(res); err != nil {
			v.errorf(fmt.Sprintf("%s/not_resources/%d", path, i), "%v", err)
		}
	}

	for i, tc := range sel.Tags {
		if tc.Type != backupwire.ConditionTypeStringEquals {
			v.errorf(fmt.Sprintf("%s/tags/%d", path, i), "tag condition type %q is not supported; AWS Backup accepts only %s", tc.Type, backupwire.ConditionTypeStringEquals)
		}
		if tc.Key == "" {
			v.errorf(fmt.Sprintf("%s/tags/%d", path, i), "tag condition has no key")
		}
	}
}

var kmsKeyRe = regexp.MustCompile(`^arn:[a-z0-9\-]+:kms:[a-z0-9\-]+:\d{12}:(key|alias)/.+$`)

func isKMSKey(s string) bool {
	return kmsKeyRe.MatchString(s)
}
