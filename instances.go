package backupwire_aws

// ResourceSet is the normalized, flat form of a policy document: one
// instance per AWS Backup resource, fully defaulted, in deterministic order.
type ResourceSet struct {
	Vaults     []VaultInstance     `json:"vaults,omitempty" yaml:"vaults,omitempty"`
	Plans      []PlanInstance      `json:"plans,omitempty" yaml:"plans,omitempty"`
	Selections []SelectionInstance `json:"selections,omitempty" yaml:"selections,omitempty"`
}

// Len returns the total number of resource instances.
func (s *ResourceSet) Len() int {
	return len(s.Vaults) + len(s.Plans) + len(s.Selections)
}

// VaultByName returns the vault instance with the given name, if any.
func (s *ResourceSet) VaultByName(name string) (VaultInstance, bool) {
	for _, v := range s.Vaults {
		if v.Name == name {
			return v, true
		}
	}
	return VaultInstance{}, false
}

// PlanByName returns the plan instance with the given name, if any.
func (s *ResourceSet) PlanByName(name string) (PlanInstance, bool) {
	for _, p := range s.Plans {
		if p.Name == name {
			return p, true
		}
	}
	return PlanInstance{}, false
}

// VaultInstance is a normalized backup vault.
type VaultInstance struct {
	Name         string         `json:"name" yaml:"name"`
	KMSKeyARN    string         `json:"kms_key_arn,omitempty" yaml:"kms_key_arn,omitempty"`
	Tags         Tags           `json:"tags,omitempty" yaml:"tags,omitempty"`
	Lock         *VaultLock     `json:"lock,omitempty" yaml:"lock,omitempty"`
	AccessPolicy map[string]any `json:"access_policy,omitempty" yaml:"access_policy,omitempty"`
	ForceDestroy bool           `json:"force_destroy,omitempty" yaml:"force_destroy,omitempty"`
}

// PlanInstance is a normalized backup plan with its rules resolved.
type PlanInstance struct {
	Name       string         `json:"name" yaml:"name"`
	Rules      []RuleInstance `json:"rules" yaml:"rules"`
	Tags       Tags           `json:"tags,omitempty" yaml:"tags,omitempty"`
	WindowsVSS bool           `json:"windows_vss,omitempty" yaml:"windows_vss,omitempty"`
}

// RuleInstance is a normalized backup rule. VaultName is always resolved
// to a concrete vault name and the copy-action lifecycles are inherited.
type RuleInstance struct {
	Name                    string       `json:"name" yaml:"name"`
	VaultName               string       `json:"vault_name" yaml:"vault_name"`
	Schedule                string       `json:"schedule,omitempty" yaml:"schedule,omitempty"`
	StartWindowMinutes      int          `json:"start_window_minutes,omitempty" yaml:"start_window_minutes,omitempty"`
	CompletionWindowMinutes int          `json:"completion_window_minutes,omitempty" yaml:"completion_window_minutes,omitempty"`
	EnableContinuousBackup  bool         `json:"enable_continuous_backup,omitempty" yaml:"enable_continuous_backup,omitempty"`
	RecoveryPointTags       Tags         `json:"recovery_point_tags,omitempty" yaml:"recovery_point_tags,omitempty"`
	Lifecycle               *Lifecycle   `json:"lifecycle,omitempty" yaml:"lifecycle,omitempty"`
	CopyActions             []CopyAction `json:"copy_actions,omitempty" yaml:"copy_actions,omitempty"`
}

// SelectionInstance is a normalized selection bound to its plan.
type SelectionInstance struct {
	Name         string               `json:"name" yaml:"name"`
	PlanName     string               `json:"plan_name" yaml:"plan_name"`
	IAMRoleARN   string               `json:"iam_role_arn,omitempty" yaml:"iam_role_arn,omitempty"`
	Resources    []string             `json:"resources,omitempty" yaml:"resources,omitempty"`
	NotResources []string             `json:"not_resources,omitempty" yaml:"not_resources,omitempty"`
	Tags         []TagCondition       `json:"tags,omitempty" yaml:"tags,omitempty"`
	Conditions   *SelectionConditions `json:"conditions,omitempty" yaml:"conditions,omitempty"`
}
