// Package cfn renders a normalized resource set as a CloudFormation
// template with AWS::Backup resources.
package cfn

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"github.com/lex00/cloudformation-schema-go/intrinsics"
	"gopkg.in/yaml.v3"

	backupwire "github.com/lex00/backupwire-aws-go"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Options configures rendering.
type Options struct {
	// Description is the template Description field.
	Description string

	// RetainVaults emits DeletionPolicy: Retain on vaults without
	// force_destroy, so a stack delete cannot drop recovery points.
	RetainVaults bool
}

// Render builds a CloudFormation template from a resource set.
func Render(set *backupwire.ResourceSet, opts Options) (*backupwire.Template, error) {
	tpl := &backupwire.Template{
		AWSTemplateFormatVersion: "2010-09-09",
		Description:              opts.Description,
		Resources:                map[string]backupwire.ResourceDef{},
		Outputs:                  map[string]backupwire.Output{},
	}

	vaultIDs := map[string]string{}
	for _, vault := range set.Vaults {
		id := logicalID("Vault", vault.Name)
		if _, dup := tpl.Resources[id]; dup {
			return nil, fmt.Errorf("vault %q: logical ID %s already in use", vault.Name, id)
		}
		vaultIDs[vault.Name] = id
		tpl.Resources[id] = renderVault(vault, opts)
		tpl.Outputs[id+"Arn"] = backupwire.Output{
			Description: fmt.Sprintf("ARN of backup vault %s", vault.Name),
			Value:       intrinsics.GetAtt{LogicalName: id, Attribute: "BackupVaultArn"},
		}
	}

	planIDs := map[string]string{}
	for _, plan := range set.Plans {
		id := logicalID("Plan", plan.Name)
		if _, dup := tpl.Resources[id]; dup {
			return nil, fmt.Errorf("plan %q: logical ID %s already in use", plan.Name, id)
		}
		planIDs[plan.Name] = id
		def, err := renderPlan(plan, vaultIDs)
		if err != nil {
			return nil, err
		}
		tpl.Resources[id] = def
		tpl.Outputs[id+"Id"] = backupwire.Output{
			Description: fmt.Sprintf("ID of backup plan %s", plan.Name),
			Value:       intrinsics.Ref{LogicalName: id},
		}
	}

	for _, sel := range set.Selections {
		planID, ok := planIDs[sel.PlanName]
		if !ok {
			return nil, fmt.Errorf("selection %q references unknown plan %q", sel.Name, sel.PlanName)
		}
		id := logicalID("Selection", sel.PlanName+"-"+sel.Name)
		if _, dup := tpl.Resources[id]; dup {
			return nil, fmt.Errorf("selection %q: logical ID %s already in use", sel.Name, id)
		}
		tpl.Resources[id] = renderSelection(sel, planID)
	}

	if len(tpl.Outputs) == 0 {
		tpl.Outputs = nil
	}
	return tpl, nil
}

func renderVault(vault backupwire.VaultInstance, opts Options) backupwire.ResourceDef {
	props := map[string]any{
		"BackupVaultName": vault.Name,
	}
	if vault.KMSKeyARN != "" {
		props["EncryptionKeyArn"] = vault.KMSKeyARN
	}
	if len(vault.Tags) > 0 {
		props["BackupVaultTags"] = map[string]string(vault.Tags)
	}
	if vault.Lock != nil {
		lock := map[string]any{}
		if vault.Lock.MinRetentionDays > 0 {
			lock["MinRetentionDays"] = vault.Lock.MinRetentionDays
		}
		if vault.Lock.MaxRetentionDays > 0 {
			lock["MaxRetentionDays"] = vault.Lock.MaxRetentionDays
		}
		// ChangeableForDays is what makes the lock compliance mode;
		// omitting it leaves the lock in governance mode.
		if vault.Lock.Mode == backupwire.LockModeCompliance {
			lock["ChangeableForDays"] = vault.Lock.ChangeableForDays
		}
		props["LockConfiguration"] = lock
	}
	if len(vault.AccessPolicy) > 0 {
		props["AccessPolicy"] = vault.AccessPolicy
	}

	def := backupwire.ResourceDef{
		Type:       "AWS::Backup::BackupVault",
		Properties: props,
	}
	if opts.RetainVaults && !vault.ForceDestroy {
		def.DeletionPolicy = "Retain"
	}
	return def
}

func renderPlan(plan backupwire.PlanInstance, vaultIDs map[string]string) (backupwire.ResourceDef, error) {
	var rules []map[string]any
	var dependsOn []string
	seen := map[string]bool{}

	for _, rule := range plan.Rules {
		props := map[string]any{
			"RuleName":          rule.Name,
			"TargetBackupVault": rule.VaultName,
		}
		// Rules target vaults by name; an explicit DependsOn keeps
		// stack ordering correct when the vault lives in the same
		// template.
		if vaultID, ok := vaultIDs[rule.VaultName]; ok && !seen[vaultID] {
			dependsOn = append(dependsOn, vaultID)
			seen[vaultID] = true
		}
		if rule.Schedule != "" {
			props["ScheduleExpression"] = rule.Schedule
		}
		if rule.StartWindowMinutes > 0 {
			props["StartWindowMinutes"] = rule.StartWindowMinutes
		}
		if rule.CompletionWindowMinutes > 0 {
			props["CompletionWindowMinutes"] = rule.CompletionWindowMinutes
		}
		if rule.EnableContinuousBackup {
			props["EnableContinuousBackup"] = true
		}
		if len(rule.RecoveryPointTags) > 0 {
			props["RecoveryPointTags"] = map[string]string(rule.RecoveryPointTags)
		}
		if lc := renderLifecycle(rule.Lifecycle); lc != nil {
			props["Lifecycle"] = lc
		}
		if len(rule.CopyActions) > 0 {
			var copies []map[string]any
			for _, copyAction := range rule.CopyActions {
				c := map[string]any{
					"DestinationBackupVaultArn": copyAction.DestinationVaultARN,
				}
				if lc := renderLifecycle(copyAction.Lifecycle); lc != nil {
					c["Lifecycle"] = lc
				}
				copies = append(copies, c)
			}
			props["CopyActions"] = copies
		}
		rules = append(rules, props)
	}

	planProps := map[string]any{
		"BackupPlanName": plan.Name,
		"BackupPlanRule": rules,
	}
	if plan.WindowsVSS {
		planProps["AdvancedBackupSettings"] = []map[string]any{
			{
				"ResourceType":  "EC2",
				"BackupOptions": map[string]string{"WindowsVSS": "enabled"},
			},
		}
	}

	props := map[string]any{
		"BackupPlan": planProps,
	}
	if len(plan.Tags) > 0 {
		props["BackupPlanTags"] = map[string]string(plan.Tags)
	}
	return backupwire.ResourceDef{
		Type:       "AWS::Backup::BackupPlan",
		Properties: props,
		DependsOn:  dependsOn,
	}, nil
}

func renderSelection(sel backupwire.SelectionInstance, planID string) backupwire.ResourceDef {
	selection := map[string]any{
		"SelectionName": sel.Name,
		"IamRoleArn":    selectionRole(sel),
	}
	if len(sel.Resources) > 0 {
		selection["Resources"] = sel.Resources
	}
	if len(sel.NotResources) > 0 {
		selection["NotResources"] = sel.NotResources
	}
	if len(sel.Tags) > 0 {
		var conditions []map[string]any
		for _, tag := range sel.Tags {
			conditions = append(conditions, map[string]any{
				"ConditionType":  tag.Type,
				"ConditionKey":   tag.Key,
				"ConditionValue": tag.Value,
			})
		}
		selection["ListOfTags"] = conditions
	}
	if !sel.Conditions.Empty() {
		conditions := map[string]any{}
		addConditionList(conditions, "StringEquals", sel.Conditions.StringEquals)
		addConditionList(conditions, "StringLike", sel.Conditions.StringLike)
		addConditionList(conditions, "StringNotEquals", sel.Conditions.StringNotEquals)
		addConditionList(conditions, "StringNotLike", sel.Conditions.StringNotLike)
		selection["Conditions"] = conditions
	}

	return backupwire.ResourceDef{
		Type: "AWS::Backup::BackupSelection",
		Properties: map[string]any{
			"BackupPlanId":    intrinsics.Ref{LogicalName: planID},
			"BackupSelection": selection,
		},
		DependsOn: []string{planID},
	}
}

// selectionRole returns the selection's role, or a Sub expression for the
// AWS Backup service role when none is set.
func selectionRole(sel backupwire.SelectionInstance) any {
	if sel.IAMRoleARN != "" {
		return sel.IAMRoleARN
	}
	return intrinsics.Sub{String: "arn:${AWS::Partition}:iam::${AWS::AccountId}:role/service-role/AWSBackupDefaultServiceRole"}
}

func addConditionList(conditions map[string]any, key string, pairs []backupwire.ConditionPair) {
	if len(pairs) == 0 {
		return
	}
	var list []map[string]any
	for _, pair := range pairs {
		list = append(list, map[string]any{
			"ConditionKey":   pair.Key,
			"ConditionValue": pair.Value,
		})
	}
	conditions[key] = list
}

func renderLifecycle(lc *backupwire.Lifecycle) map[string]any {
	if lc.IsZero() {
		return nil
	}
	out := map[string]any{}
	if lc.ColdStorageAfterDays > 0 {
		out["MoveToColdStorageAfterDays"] = lc.ColdStorageAfterDays
	}
	if lc.DeleteAfterDays > 0 {
		out["DeleteAfterDays"] = lc.DeleteAfterDays
	}
	if lc.OptInToArchive {
		out["OptInToArchiveForSupportedResources"] = true
	}
	return out
}

// logicalID turns a resource name into a CloudFormation logical ID:
// alphanumeric, with each name segment capitalized.
func logicalID(prefix, name string) string {
	var b strings.Builder
	b.WriteString(prefix)
	upper := true
	for _, r := range name {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if upper {
				r = unicode.ToUpper(r)
				upper = false
			}
			b.WriteRune(r)
		default:
			upper = true
		}
	}
	return b.String()
}

// Encode serializes the template in the given format. Intrinsic values
// are JSON-marshaled first so YAML output carries the expanded
// {"Ref": ...} / {"Fn::Sub": ...} maps rather than Go struct fields.
func Encode(tpl *backupwire.Template, format string) ([]byte, error) {
	data, err := json.MarshalIndent(tpl, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding template: %w", err)
	}
	switch format {
	case FormatJSON, "":
		return append(data, '\n'), nil
	case FormatYAML:
		var generic map[string]any
		if err := json.Unmarshal(data, &generic); err != nil {
			return nil, fmt.Errorf("encoding template: %w", err)
		}
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(generic); err != nil {
			return nil, fmt.Errorf("encoding template: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unknown format %q (want json or yaml)", format)
	}
}
