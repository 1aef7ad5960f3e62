// Package k8s renders a normalized resource set as ACK custom
// resources, for clusters that manage AWS Backup through AWS
// Controllers for Kubernetes.
package k8s

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"gopkg.in/yaml.v3"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	backupwire "github.com/lex00/backupwire-aws-go"
	backupv1alpha1 "github.com/lex00/backupwire-aws-go/resources/k8s/backup/v1alpha1"
)

// GroupVersion is the API group/version the rendered manifests use.
const GroupVersion = "backup.services.k8s.aws/v1alpha1"

// Options configures rendering.
type Options struct {
	// Namespace is applied to every manifest. Empty leaves it unset.
	Namespace string
}

// Render converts a resource set into ACK custom resources.
func Render(set *backupwire.ResourceSet, opts Options) ([]any, error) {
	var manifests []any

	for _, vault := range set.Vaults {
		manifest, err := renderVault(vault, opts)
		if err != nil {
			return nil, err
		}
		manifests = append(manifests, manifest)
	}
	for _, plan := range set.Plans {
		manifests = append(manifests, renderPlan(plan, opts))
	}
	for _, sel := range set.Selections {
		manifests = append(manifests, renderSelection(sel, opts))
	}
	return manifests, nil
}

// Encode serializes the manifests as a multi-document YAML stream.
func Encode(manifests []any) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	for _, manifest := range manifests {
		// JSON round-trip so the apimachinery json tags drive the
		// field names instead of yaml struct defaults.
		data, err := json.Marshal(manifest)
		if err != nil {
			return nil, fmt.Errorf("encoding manifest: %w", err)
		}
		var generic map[string]any
		if err := json.Unmarshal(data, &generic); err != nil {
			return nil, fmt.Errorf("encoding manifest: %w", err)
		}
		if err := enc.Encode(generic); err != nil {
			return nil, fmt.Errorf("encoding manifest: %w", err)
		}
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderVault(vault backupwire.VaultInstance, opts Options) (backupv1alpha1.BackupVault, error) {
	manifest := backupv1alpha1.BackupVault{
		TypeMeta: metav1.TypeMeta{
			APIVersion: GroupVersion,
			Kind:       "BackupVault",
		},
		ObjectMeta: objectMeta(vault.Name, opts),
		Spec: backupv1alpha1.BackupVaultSpec{
			Name: vault.Name,
			Tags: renderTags(vault.Tags),
		},
	}
	if vault.KMSKeyARN != "" {
		manifest.Spec.EncryptionKeyARN = aws.String(vault.KMSKeyARN)
	}
	if vault.Lock != nil {
		lock := &backupv1alpha1.VaultLockConfiguration{}
		if vault.Lock.MinRetentionDays > 0 {
			lock.MinRetentionDays = aws.Int64(int64(vault.Lock.MinRetentionDays))
		}
		if vault.Lock.MaxRetentionDays > 0 {
			lock.MaxRetentionDays = aws.Int64(int64(vault.Lock.MaxRetentionDays))
		}
		if vault.Lock.Mode == backupwire.LockModeCompliance {
			lock.ChangeableForDays = aws.Int64(int64(vault.Lock.ChangeableForDays))
		}
		manifest.Spec.LockConfiguration = lock
	}
	if len(vault.AccessPolicy) > 0 {
		policy, err := json.Marshal(vault.AccessPolicy)
		if err != nil {
			return backupv1alpha1.BackupVault{}, fmt.Errorf("vault %q: encoding access policy: %w", vault.Name, err)
		}
		manifest.Spec.AccessPolicy = aws.String(string(policy))
	}
	return manifest, nil
}

func renderPlan(plan backupwire.PlanInstance, opts Options) backupv1alpha1.BackupPlan {
	manifest := backupv1alpha1.BackupPlan{
		TypeMeta: metav1.TypeMeta{
			APIVersion: GroupVersion,
			Kind:       "BackupPlan",
		},
		ObjectMeta: objectMeta(plan.Name, opts),
		Spec: backupv1alpha1.BackupPlanSpec{
			Name: plan.Name,
			Tags: renderTags(plan.Tags),
		},
	}
	if plan.WindowsVSS {
		manifest.Spec.WindowsVSS = aws.Bool(true)
	}
	for _, rule := range plan.Rules {
		manifest.Spec.Rules = append(manifest.Spec.Rules, renderRule(rule))
	}
	return manifest
}

func renderRule(rule backupwire.RuleInstance) *backupv1alpha1.BackupRule {
	out := &backupv1alpha1.BackupRule{
		Name:                  rule.Name,
		TargetBackupVaultName: rule.VaultName,
		RecoveryPointTags:     rule.RecoveryPointTags,
		Lifecycle:             renderLifecycle(rule.Lifecycle),
	}
	if rule.Schedule != "" {
		out.ScheduleExpression = aws.String(rule.Schedule)
	}
	if rule.StartWindowMinutes > 0 {
		out.StartWindowMinutes = aws.Int64(int64(rule.StartWindowMinutes))
	}
	if rule.CompletionWindowMinutes > 0 {
		out.CompletionWindowMinutes = aws.Int64(int64(rule.CompletionWindowMinutes))
	}
	if rule.EnableContinuousBackup {
		out.EnableContinuousBackup = aws.Bool(true)
	}
	for _, copyAction := range rule.CopyActions {
		out.CopyActions = append(out.CopyActions, &backupv1alpha1.CopyAction{
			DestinationBackupVaultARN: copyAction.DestinationVaultARN,
			Lifecycle:                 renderLifecycle(copyAction.Lifecycle),
		})
	}
	return out
}

func renderLifecycle(lc *backupwire.Lifecycle) *backupv1alpha1.Lifecycle {
	if lc.IsZero() {
		return nil
	}
	out := &backupv1alpha1.Lifecycle{}
	if lc.ColdStorageAfterDays > 0 {
		out.MoveToColdStorageAfterDays = aws.Int64(int64(lc.ColdStorageAfterDays))
	}
	if lc.DeleteAfterDays > 0 {
		out.DeleteAfterDays = aws.Int64(int64(lc.DeleteAfterDays))
	}
	if lc.OptInToArchive {
		out.OptInToArchiveForSupportedResources = aws.Bool(true)
	}
	return out
}

func renderSelection(sel backupwire.SelectionInstance, opts Options) backupv1alpha1.BackupSelection {
	manifest := backupv1alpha1.BackupSelection{
		TypeMeta: metav1.TypeMeta{
			APIVersion: GroupVersion,
			Kind:       "BackupSelection",
		},
		ObjectMeta: objectMeta(sel.PlanName+"-"+sel.Name, opts),
		Spec: backupv1alpha1.BackupSelectionSpec{
			Name:       sel.Name,
			IAMRoleARN: sel.IAMRoleARN,
			// The ref must match the BackupPlan manifest's sanitized
			// object name, not the raw plan name.
			BackupPlanRef: &backupv1alpha1.AWSResourceReferenceWrapper{
				From: &backupv1alpha1.AWSResourceReference{Name: aws.String(sanitizeName(sel.PlanName))},
			},
		},
	}
	for _, r := range sel.Resources {
		manifest.Spec.Resources = append(manifest.Spec.Resources, aws.String(r))
	}
	for _, r := range sel.NotResources {
		manifest.Spec.NotResources = append(manifest.Spec.NotResources, aws.String(r))
	}
	for _, tag := range sel.Tags {
		manifest.Spec.ListOfTags = append(manifest.Spec.ListOfTags, &backupv1alpha1.TagCondition{
			ConditionType:  tag.Type,
			ConditionKey:   tag.Key,
			ConditionValue: tag.Value,
		})
	}
	if !sel.Conditions.Empty() {
		manifest.Spec.Conditions = &backupv1alpha1.SelectionConditions{
			StringEquals:    renderConditionParams(sel.Conditions.StringEquals),
			StringLike:      renderConditionParams(sel.Conditions.StringLike),
			StringNotEquals: renderConditionParams(sel.Conditions.StringNotEquals),
			StringNotLike:   renderConditionParams(sel.Conditions.StringNotLike),
		}
	}
	return manifest
}

func renderConditionParams(pairs []backupwire.ConditionPair) []*backupv1alpha1.ConditionParameter {
	var out []*backupv1alpha1.ConditionParameter
	for _, pair := range pairs {
		out = append(out, &backupv1alpha1.ConditionParameter{
			ConditionKey:   aws.String(pair.Key),
			ConditionValue: aws.String(pair.Value),
		})
	}
	return out
}

func renderTags(tags backupwire.Tags) []*backupv1alpha1.Tag {
	var out []*backupv1alpha1.Tag
	for _, key := range tags.SortedKeys() {
		out = append(out, &backupv1alpha1.Tag{
			Key:   aws.String(key),
			Value: aws.String(tags[key]),
		})
	}
	return out
}

func objectMeta(name string, opts Options) metav1.ObjectMeta {
	meta := metav1.ObjectMeta{Name: sanitizeName(name)}
	if opts.Namespace != "" {
		meta.Namespace = opts.Namespace
	}
	return meta
}

// sanitizeName lowercases a resource name into a DNS-1123 label.
func sanitizeName(name string) string {
	out := make([]byte, 0, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '-':
			out = append(out, c)
		case c >= 'A' && c <= 'Z':
			out = append(out, c+('a'-'A'))
		case c == '_', c == '.', c == '/':
			out = append(out, '-')
		}
	}
	if len(out) == 0 {
		return "resource-" + strconv.Itoa(len(name))
	}
	return string(out)
}
