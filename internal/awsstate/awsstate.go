// Package awsstate reads the live AWS Backup control plane into a
// normalized resource set, so a desired policy can be diffed against
// what is actually deployed.
package awsstate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/backup"
	"github.com/aws/aws-sdk-go-v2/service/backup/types"

	backupwire "github.com/lex00/backupwire-aws-go"
)

// Client is the subset of the AWS Backup API the fetcher uses.
// *backup.Client satisfies it; tests substitute a fake.
type Client interface {
	ListBackupVaults(ctx context.Context, in *backup.ListBackupVaultsInput, optFns ...func(*backup.Options)) (*backup.ListBackupVaultsOutput, error)
	DescribeBackupVault(ctx context.Context, in *backup.DescribeBackupVaultInput, optFns ...func(*backup.Options)) (*backup.DescribeBackupVaultOutput, error)
	GetBackupVaultAccessPolicy(ctx context.Context, in *backup.GetBackupVaultAccessPolicyInput, optFns ...func(*backup.Options)) (*backup.GetBackupVaultAccessPolicyOutput, error)
	ListBackupPlans(ctx context.Context, in *backup.ListBackupPlansInput, optFns ...func(*backup.Options)) (*backup.ListBackupPlansOutput, error)
	GetBackupPlan(ctx context.Context, in *backup.GetBackupPlanInput, optFns ...func(*backup.Options)) (*backup.GetBackupPlanOutput, error)
	ListBackupSelections(ctx context.Context, in *backup.ListBackupSelectionsInput, optFns ...func(*backup.Options)) (*backup.ListBackupSelectionsOutput, error)
	GetBackupSelection(ctx context.Context, in *backup.GetBackupSelectionInput, optFns ...func(*backup.Options)) (*backup.GetBackupSelectionOutput, error)
	ListTags(ctx context.Context, in *backup.ListTagsInput, optFns ...func(*backup.Options)) (*backup.ListTagsOutput, error)
}

// Options configures the fetcher.
type Options struct {
	// Region overrides the region from the default credential chain.
	Region string

	// SkipTags disables the per-resource ListTags calls, which cuts the
	// number of API requests roughly in half on large accounts.
	SkipTags bool
}

// Service fetches AWS Backup state.
type Service struct {
	client Client
	opts   Options
}

// New builds a Service using the default AWS credential chain.
func New(ctx context.Context, opts Options) (*Service, error) {
	var cfgOpts []func(*config.LoadOptions) error
	if opts.Region != "" {
		cfgOpts = append(cfgOpts, config.WithRegion(opts.Region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, cfgOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return &Service{client: backup.NewFromConfig(cfg), opts: opts}, nil
}

// NewFromClient builds a Service around an existing client.
func NewFromClient(client Client, opts Options) *Service {
	return &Service{client: client, opts: opts}
}

// Fetch reads all vaults, plans, and selections visible to the caller
// and returns them as a normalized resource set.
func (s *Service) Fetch(ctx context.Context) (*backupwire.ResourceSet, error) {
	set := &backupwire.ResourceSet{}

	vaults, err := s.fetchVaults(ctx)
	if err != nil {
		return nil, err
	}
	set.Vaults = vaults

	plans, selections, err := s.fetchPlans(ctx)
	if err != nil {
		return nil, err
	}
	set.Plans = plans
	set.Selections = selections

	sort.Slice(set.Vaults, func(i, j int) bool { return set.Vaults[i].Name < set.Vaults[j].Name })
	sort.Slice(set.Plans, func(i, j int) bool { return set.Plans[i].Name < set.Plans[j].Name })
	sort.Slice(set.Selections, func(i, j int) bool {
		if set.Selections[i].PlanName != set.Selections[j].PlanName {
			return set.Selections[i].PlanName < set.Selections[j].PlanName
		}
		return set.Selections[i].Name < set.Selections[j].Name
	})
	return set, nil
}

func (s *Service) fetchVaults(ctx context.Context) ([]backupwire.VaultInstance, error) {
	var vaults []backupwire.VaultInstance
	var token *string
	for {
		out, err := s.client.ListBackupVaults(ctx, &backup.ListBackupVaultsInput{NextToken: token})
		if err != nil {
			return nil, fmt.Errorf("listing backup vaults: %w", err)
		}
		for _, member := range out.BackupVaultList {
			vault, err := s.fetchVault(ctx, member)
			if err != nil {
				return nil, err
			}
			vaults = append(vaults, vault)
		}
		if out.NextToken == nil {
			break
		}
		token = out.NextToken
	}
	return vaults, nil
}

func (s *Service) fetchVault(ctx context.Context, member types.BackupVaultListMember) (backupwire.VaultInstance, error) {
	name := aws.ToString(member.BackupVaultName)

	// The per-vault describe is the authoritative source for lock and
	// encryption details; the list member is only used for enumeration.
	desc, err := s.client.DescribeBackupVault(ctx, &backup.DescribeBackupVaultInput{
		BackupVaultName: aws.String(name),
	})
	if err != nil {
		return backupwire.VaultInstance{}, fmt.Errorf("describing backup vault %q: %w", name, err)
	}

	vault := backupwire.VaultInstance{
		Name:      name,
		KMSKeyARN: aws.ToString(desc.EncryptionKeyArn),
	}

	if aws.ToBool(desc.Locked) {
		lock := &backupwire.VaultLock{
			Mode:             backupwire.LockModeGovernance,
			MinRetentionDays: int(aws.ToInt64(desc.MinRetentionDays)),
			MaxRetentionDays: int(aws.ToInt64(desc.MaxRetentionDays)),
		}
		// A lock date means the vault is (or will become) immutable,
		// which is compliance mode.
		if desc.LockDate != nil {
			lock.Mode = backupwire.LockModeCompliance
		}
		vault.Lock = lock
	}

	policy, err := s.fetchAccessPolicy(ctx, name)
	if err != nil {
		return backupwire.VaultInstance{}, err
	}
	vault.AccessPolicy = policy

	if !s.opts.SkipTags {
		tags, err := s.fetchTags(ctx, aws.ToString(member.BackupVaultArn))
		if err != nil {
			return backupwire.VaultInstance{}, err
		}
		vault.Tags = tags
	}
	return vault, nil
}

func (s *Service) fetchAccessPolicy(ctx context.Context, vaultName string) (map[string]any, error) {
	out, err := s.client.GetBackupVaultAccessPolicy(ctx, &backup.GetBackupVaultAccessPolicyInput{
		BackupVaultName: aws.String(vaultName),
	})
	if err != nil {
		var notFound *types.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading access policy for vault %q: %w", vaultName, err)
	}
	if out.Policy == nil || *out.Policy == "" {
		return nil, nil
	}
	var doc map[string]any
	if err := json.Unmarshal([]byte(*out.Policy), &doc); err != nil {
		return nil, fmt.Errorf("parsing access policy for vault %q: %w", vaultName, err)
	}
	return doc, nil
}

func (s *Service) fetchPlans(ctx context.Context) ([]backupwire.PlanInstance, []backupwire.SelectionInstance, error) {
	var plans []backupwire.PlanInstance
	var selections []backupwire.SelectionInstance
	var token *string
	for {
		out, err := s.client.ListBackupPlans(ctx, &backup.ListBackupPlansInput{NextToken: token})
		if err != nil {
			return nil, nil, fmt.Errorf("listing backup plans: %w", err)
		}
		for _, member := range out.BackupPlansList {
			plan, planSelections, err := s.fetchPlan(ctx, member)
			if err != nil {
				return nil, nil, err
			}
			plans = append(plans, plan)
			selections = append(selections, planSelections...)
		}
		if out.NextToken == nil {
			break
		}
		token = out.NextToken
	}
	return plans, selections, nil
}

func (s *Service) fetchPlan(ctx context.Context, member types.BackupPlansListMember) (backupwire.PlanInstance, []backupwire.SelectionInstance, error) {
	planID := aws.ToString(member.BackupPlanId)
	out, err := s.client.GetBackupPlan(ctx, &backup.GetBackupPlanInput{BackupPlanId: aws.String(planID)})
	if err != nil {
		return backupwire.PlanInstance{}, nil, fmt.Errorf("reading backup plan %s: %w", planID, err)
	}

	plan := backupwire.PlanInstance{
		Name: aws.ToString(out.BackupPlan.BackupPlanName),
	}
	for _, setting := range out.BackupPlan.AdvancedBackupSettings {
		if strings.EqualFold(setting.BackupOptions["WindowsVSS"], "enabled") {
			plan.WindowsVSS = true
		}
	}
	for _, rule := range out.BackupPlan.Rules {
		plan.Rules = append(plan.Rules, convertRule(rule))
	}
	sort.Slice(plan.Rules, func(i, j int) bool { return plan.Rules[i].Name < plan.Rules[j].Name })

	if !s.opts.SkipTags {
		tags, err := s.fetchTags(ctx, aws.ToString(member.BackupPlanArn))
		if err != nil {
			return backupwire.PlanInstance{}, nil, err
		}
		plan.Tags = tags
	}

	selections, err := s.fetchSelections(ctx, planID, plan.Name)
	if err != nil {
		return backupwire.PlanInstance{}, nil, err
	}
	return plan, selections, nil
}

func convertRule(rule types.BackupRule) backupwire.RuleInstance {
	instance := backupwire.RuleInstance{
		Name:                    aws.ToString(rule.RuleName),
		VaultName:               aws.ToString(rule.TargetBackupVaultName),
		Schedule:                aws.ToString(rule.ScheduleExpression),
		StartWindowMinutes:      int(aws.ToInt64(rule.StartWindowMinutes)),
		CompletionWindowMinutes: int(aws.ToInt64(rule.CompletionWindowMinutes)),
		EnableContinuousBackup:  aws.ToBool(rule.EnableContinuousBackup),
		Lifecycle:               convertLifecycle(rule.Lifecycle),
	}
	if len(rule.RecoveryPointTags) > 0 {
		instance.RecoveryPointTags = backupwire.Tags(rule.RecoveryPointTags)
	}
	for _, copyAction := range rule.CopyActions {
		instance.CopyActions = append(instance.CopyActions, backupwire.CopyAction{
			DestinationVaultARN: aws.ToString(copyAction.DestinationBackupVaultArn),
			Lifecycle:           convertLifecycle(copyAction.Lifecycle),
		})
	}
	return instance
}

func convertLifecycle(lc *types.Lifecycle) *backupwire.Lifecycle {
	if lc == nil {
		return nil
	}
	converted := &backupwire.Lifecycle{
		ColdStorageAfterDays: int(aws.ToInt64(lc.MoveToColdStorageAfterDays)),
		DeleteAfterDays:      int(aws.ToInt64(lc.DeleteAfterDays)),
		OptInToArchive:       aws.ToBool(lc.OptInToArchiveForSupportedResources),
	}
	if converted.IsZero() {
		return nil
	}
	return converted
}

func (s *Service) fetchSelections(ctx context.Context, planID, planName string) ([]backupwire.SelectionInstance, error) {
	var selections []backupwire.SelectionInstance
	var token *string
	for {
		out, err := s.client.ListBackupSelections(ctx, &backup.ListBackupSelectionsInput{
			BackupPlanId: aws.String(planID),
			NextToken:    token,
		})
		if err != nil {
			return nil, fmt.Errorf("listing selections for plan %s: %w", planID, err)
		}
		for _, member := range out.BackupSelectionsList {
			selection, err := s.fetchSelection(ctx, planID, planName, aws.ToString(member.SelectionId))
			if err != nil {
				return nil, err
			}
			selections = append(selections, selection)
		}
		if out.NextToken == nil {
			break
		}
		token = out.NextToken
	}
	return selections, nil
}

func (s *Service) fetchSelection(ctx context.Context, planID, planName, selectionID string) (backupwire.SelectionInstance, error) {
	out, err := s.client.GetBackupSelection(ctx, &backup.GetBackupSelectionInput{
		BackupPlanId: aws.String(planID),
		SelectionId:  aws.String(selectionID),
	})
	if err != nil {
		return backupwire.SelectionInstance{}, fmt.Errorf("reading selection %s: %w", selectionID, err)
	}
	sel := out.BackupSelection

	instance := backupwire.SelectionInstance{
		Name:         aws.ToString(sel.SelectionName),
		PlanName:     planName,
		IAMRoleARN:   aws.ToString(sel.IamRoleArn),
		Resources:    sel.Resources,
		NotResources: sel.NotResources,
	}
	for _, cond := range sel.ListOfTags {
		instance.Tags = append(instance.Tags, backupwire.TagCondition{
			Type:  string(cond.ConditionType),
			Key:   aws.ToString(cond.ConditionKey),
			Value: aws.ToString(cond.ConditionValue),
		})
	}
	if sel.Conditions != nil {
		conditions := &backupwire.SelectionConditions{
			StringEquals:    convertConditionPairs(sel.Conditions.StringEquals),
			StringLike:      convertConditionPairs(sel.Conditions.StringLike),
			StringNotEquals: convertConditionPairs(sel.Conditions.StringNotEquals),
			StringNotLike:   convertConditionPairs(sel.Conditions.StringNotLike),
		}
		if !conditions.Empty() {
			instance.Conditions = conditions
		}
	}
	return instance, nil
}

func convertConditionPairs(params []types.ConditionParameter) []backupwire.ConditionPair {
	var pairs []backupwire.ConditionPair
	for _, p := range params {
		pairs = append(pairs, backupwire.ConditionPair{
			Key:   aws.ToString(p.ConditionKey),
			Value: aws.ToString(p.ConditionValue),
		})
	}
	return pairs
}

func (s *Service) fetchTags(ctx context.Context, arn string) (backupwire.Tags, error) {
	if arn == "" {
		return nil, nil
	}
	tags := backupwire.Tags{}
	var token *string
	for {
		out, err := s.client.ListTags(ctx, &backup.ListTagsInput{
			ResourceArn: aws.String(arn),
			NextToken:   token,
		})
		if err != nil {
			return nil, fmt.Errorf("listing tags for %s: %w", arn, err)
		}
		for k, v := range out.Tags {
			tags[k] = v
		}
		if out.NextToken == nil {
			break
		}
		token = out.NextToken
	}
	if len(tags) == 0 {
		return nil, nil
	}
	return tags, nil
}
