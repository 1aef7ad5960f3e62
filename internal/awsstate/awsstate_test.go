package awsstate

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/backup"
	"github.com/aws/aws-sdk-go-v2/service/backup/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	backupwire "github.com/lex00/backupwire-aws-go"
)

// fakeClient serves canned AWS Backup API responses.
type fakeClient struct {
	vaults     []types.BackupVaultListMember
	describe   map[string]*backup.DescribeBackupVaultOutput
	plans      map[string]*types.BackupPlan
	planArns   map[string]string
	selections map[string]map[string]*backup.GetBackupSelectionOutput
	policies   map[string]string
	tags       map[string]map[string]string
}

func (f *fakeClient) ListBackupVaults(ctx context.Context, in *backup.ListBackupVaultsInput, _ ...func(*backup.Options)) (*backup.ListBackupVaultsOutput, error) {
	return &backup.ListBackupVaultsOutput{BackupVaultList: f.vaults}, nil
}

func (f *fakeClient) DescribeBackupVault(ctx context.Context, in *backup.DescribeBackupVaultInput, _ ...func(*backup.Options)) (*backup.DescribeBackupVaultOutput, error) {
	name := aws.ToString(in.BackupVaultName)
	if out, ok := f.describe[name]; ok {
		return out, nil
	}
	for _, member := range f.vaults {
		if aws.ToString(member.BackupVaultName) != name {
			continue
		}
		return &backup.DescribeBackupVaultOutput{
			BackupVaultName:  member.BackupVaultName,
			BackupVaultArn:   member.BackupVaultArn,
			EncryptionKeyArn: member.EncryptionKeyArn,
			Locked:           member.Locked,
			LockDate:         member.LockDate,
			MinRetentionDays: member.MinRetentionDays,
			MaxRetentionDays: member.MaxRetentionDays,
		}, nil
	}
	return nil, &types.ResourceNotFoundException{Message: aws.String("no such vault")}
}

func (f *fakeClient) GetBackupVaultAccessPolicy(ctx context.Context, in *backup.GetBackupVaultAccessPolicyInput, _ ...func(*backup.Options)) (*backup.GetBackupVaultAccessPolicyOutput, error) {
	policy, ok := f.policies[aws.ToString(in.BackupVaultName)]
	if !ok {
		return nil, &types.ResourceNotFoundException{Message: aws.String("no policy")}
	}
	return &backup.GetBackupVaultAccessPolicyOutput{Policy: aws.String(policy)}, nil
}

func (f *fakeClient) ListBackupPlans(ctx context.Context, in *backup.ListBackupPlansInput, _ ...func(*backup.Options)) (*backup.ListBackupPlansOutput, error) {
	var members []types.BackupPlansListMember
	for id := range f.plans {
		members = append(members, types.BackupPlansListMember{
			BackupPlanId:   aws.String(id),
			BackupPlanName: f.plans[id].BackupPlanName,
			BackupPlanArn:  aws.String(f.planArns[id]),
		})
	}
	return &backup.ListBackupPlansOutput{BackupPlansList: members}, nil
}

func (f *fakeClient) GetBackupPlan(ctx context.Context, in *backup.GetBackupPlanInput, _ ...func(*backup.Options)) (*backup.GetBackupPlanOutput, error) {
	return &backup.GetBackupPlanOutput{BackupPlan: f.plans[aws.ToString(in.BackupPlanId)]}, nil
}

func (f *fakeClient) ListBackupSelections(ctx context.Context, in *backup.ListBackupSelectionsInput, _ ...func(*backup.Options)) (*backup.ListBackupSelectionsOutput, error) {
	var members []types.BackupSelectionsListMember
	for id := range f.selections[aws.ToString(in.BackupPlanId)] {
		members = append(members, types.BackupSelectionsListMember{SelectionId: aws.String(id)})
	}
	return &backup.ListBackupSelectionsOutput{BackupSelectionsList: members}, nil
}

func (f *fakeClient) GetBackupSelection(ctx context.Context, in *backup.GetBackupSelectionInput, _ ...func(*backup.Options)) (*backup.GetBackupSelectionOutput, error) {
	return f.selections[aws.ToString(in.BackupPlanId)][aws.ToString(in.SelectionId)], nil
}

func (f *fakeClient) ListTags(ctx context.Context, in *backup.ListTagsInput, _ ...func(*backup.Options)) (*backup.ListTagsOutput, error) {
	return &backup.ListTagsOutput{Tags: f.tags[aws.ToString(in.ResourceArn)]}, nil
}

func testClient() *fakeClient {
	return &fakeClient{
		vaults: []types.BackupVaultListMember{
			{
				BackupVaultName:  aws.String("primary"),
				BackupVaultArn:   aws.String("arn:aws:backup:us-east-1:123456789012:backup-vault:primary"),
				EncryptionKeyArn: aws.String("arn:aws:kms:us-east-1:123456789012:key/abc"),
			},
		},
		plans: map[string]*types.BackupPlan{
			"plan-1": {
				BackupPlanName: aws.String("daily"),
				Rules: []types.BackupRule{
					{
						RuleName:              aws.String("nightly"),
						TargetBackupVaultName: aws.String("primary"),
						ScheduleExpression:    aws.String("cron(0 5 * * ? *)"),
						StartWindowMinutes:    aws.Int64(60),
						Lifecycle: &types.Lifecycle{
							MoveToColdStorageAfterDays: aws.Int64(30),
							DeleteAfterDays:            aws.Int64(365),
						},
					},
				},
			},
		},
		planArns: map[string]string{
			"plan-1": "arn:aws:backup:us-east-1:123456789012:backup-plan:plan-1",
		},
		selections: map[string]map[string]*backup.GetBackupSelectionOutput{
			"plan-1": {
				"sel-1": {
					BackupSelection: &types.BackupSelection{
						SelectionName: aws.String("tagged"),
						IamRoleArn:    aws.String("arn:aws:iam::123456789012:role/backup"),
						ListOfTags: []types.Condition{
							{
								ConditionType:  types.ConditionTypeStringequals,
								ConditionKey:   aws.String("backup"),
								ConditionValue: aws.String("true"),
							},
						},
					},
				},
			},
		},
		tags: map[string]map[string]string{
			"arn:aws:backup:us-east-1:123456789012:backup-vault:primary": {"env": "prod"},
		},
	}
}

func TestFetch(t *testing.T) {
	svc := NewFromClient(testClient(), Options{})

	set, err := svc.Fetch(context.Background())
	require.NoError(t, err)

	require.Len(t, set.Vaults, 1)
	assert.Equal(t, "primary", set.Vaults[0].Name)
	assert.Equal(t, "arn:aws:kms:us-east-1:123456789012:key/abc", set.Vaults[0].KMSKeyARN)
	assert.Equal(t, backupwire.Tags{"env": "prod"}, set.Vaults[0].Tags)
	assert.Nil(t, set.Vaults[0].Lock)
	assert.Nil(t, set.Vaults[0].AccessPolicy)

	require.Len(t, set.Plans, 1)
	plan := set.Plans[0]
	assert.Equal(t, "daily", plan.Name)
	require.Len(t, plan.Rules, 1)
	assert.Equal(t, "nightly", plan.Rules[0].Name)
	assert.Equal(t, "primary", plan.Rules[0].VaultName)
	require.NotNil(t, plan.Rules[0].Lifecycle)
	assert.Equal(t, 30, plan.Rules[0].Lifecycle.ColdStorageAfterDays)
	assert.Equal(t, 365, plan.Rules[0].Lifecycle.DeleteAfterDays)

	require.Len(t, set.Selections, 1)
	sel := set.Selections[0]
	assert.Equal(t, "tagged", sel.Name)
	assert.Equal(t, "daily", sel.PlanName)
	require.Len(t, sel.Tags, 1)
	assert.Equal(t, "STRINGEQUALS", sel.Tags[0].Type)
	assert.Equal(t, "backup", sel.Tags[0].Key)
}

func TestFetch_LockedVault(t *testing.T) {
	client := testClient()
	now := time.Now()
	client.vaults[0].Locked = aws.Bool(true)
	client.vaults[0].MinRetentionDays = aws.Int64(30)
	client.vaults[0].LockDate = &now

	svc := NewFromClient(client, Options{SkipTags: true})
	set, err := svc.Fetch(context.Background())
	require.NoError(t, err)

	require.NotNil(t, set.Vaults[0].Lock)
	assert.Equal(t, backupwire.LockModeCompliance, set.Vaults[0].Lock.Mode)
	assert.Equal(t, 30, set.Vaults[0].Lock.MinRetentionDays)
}

func TestFetch_DescribeIsAuthoritative(t *testing.T) {
	// Lock and encryption details come from the per-vault describe, not
	// from the list member.
	client := testClient()
	client.vaults[0].EncryptionKeyArn = nil
	now := time.Now()
	client.describe = map[string]*backup.DescribeBackupVaultOutput{
		"primary": {
			BackupVaultName:  aws.String("primary"),
			EncryptionKeyArn: aws.String("arn:aws:kms:us-east-1:123456789012:key/from-describe"),
			Locked:           aws.Bool(true),
			LockDate:         &now,
			MinRetentionDays: aws.Int64(14),
		},
	}

	svc := NewFromClient(client, Options{SkipTags: true})
	set, err := svc.Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "arn:aws:kms:us-east-1:123456789012:key/from-describe", set.Vaults[0].KMSKeyARN)
	require.NotNil(t, set.Vaults[0].Lock)
	assert.Equal(t, backupwire.LockModeCompliance, set.Vaults[0].Lock.Mode)
	assert.Equal(t, 14, set.Vaults[0].Lock.MinRetentionDays)
}

func TestFetch_AccessPolicy(t *testing.T) {
	client := testClient()
	client.policies = map[string]string{
		"primary": `{"Version":"2012-10-17","Statement":[]}`,
	}

	svc := NewFromClient(client, Options{SkipTags: true})
	set, err := svc.Fetch(context.Background())
	require.NoError(t, err)

	require.NotNil(t, set.Vaults[0].AccessPolicy)
	assert.Equal(t, "2012-10-17", set.Vaults[0].AccessPolicy["Version"])
}

func TestFetch_SkipTags(t *testing.T) {
	svc := NewFromClient(testClient(), Options{SkipTags: true})
	set, err := svc.Fetch(context.Background())
	require.NoError(t, err)
	assert.Nil(t, set.Vaults[0].Tags)
}
