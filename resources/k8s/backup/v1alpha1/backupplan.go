package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// BackupPlan represents an ACK AWS Backup plan resource.
// +kubebuilder:object:root=true
type BackupPlan struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   BackupPlanSpec   `json:"spec,omitempty"`
	Status BackupPlanStatus `json:"status,omitempty"`
}

// BackupPlanSpec defines the desired state of a backup plan.
type BackupPlanSpec struct {
	// Name is the name of the backup plan.
	Name string `json:"name"`

	// Rules are the scheduled backup rules of the plan.
	Rules []*BackupRule `json:"rules,omitempty"`

	// WindowsVSS enables application-consistent Windows backups.
	WindowsVSS *bool `json:"windowsVSS,omitempty"`

	// Tags are key-value pairs to categorize the plan.
	Tags []*Tag `json:"tags,omitempty"`
}

// BackupRule defines a single scheduled rule in a backup plan.
type BackupRule struct {
	// Name is the rule name.
	Name string `json:"name"`

	// TargetBackupVaultName is the vault the rule writes recovery points to.
	TargetBackupVaultName string `json:"targetBackupVaultName"`

	// ScheduleExpression is a cron() or rate() expression.
	ScheduleExpression *string `json:"scheduleExpression,omitempty"`

	// StartWindowMinutes is how long a backup may wait to start.
	StartWindowMinutes *int64 `json:"startWindowMinutes,omitempty"`

	// CompletionWindowMinutes is how long a started backup may run.
	CompletionWindowMinutes *int64 `json:"completionWindowMinutes,omitempty"`

	// EnableContinuousBackup turns on point-in-time recovery.
	EnableContinuousBackup *bool `json:"enableContinuousBackup,omitempty"`

	// RecoveryPointTags are applied to every recovery point the rule creates.
	RecoveryPointTags map[string]string `json:"recoveryPointTags,omitempty"`

	// Lifecycle controls cold-storage transition and deletion.
	Lifecycle *Lifecycle `json:"lifecycle,omitempty"`

	// CopyActions replicate recovery points to other vaults.
	CopyActions []*CopyAction `json:"copyActions,omitempty"`
}

// Lifecycle controls cold-storage transition and deletion of recovery points.
type Lifecycle struct {
	// MoveToColdStorageAfterDays moves recovery points to cold storage.
	MoveToColdStorageAfterDays *int64 `json:"moveToColdStorageAfterDays,omitempty"`

	// DeleteAfterDays deletes recovery points after the given number of days.
	DeleteAfterDays *int64 `json:"deleteAfterDays,omitempty"`

	// OptInToArchiveForSupportedResources enables archive tiering.
	OptInToArchiveForSupportedResources *bool `json:"optInToArchiveForSupportedResources,omitempty"`
}

// CopyAction replicates recovery points into another vault.
type CopyAction struct {
	// DestinationBackupVaultARN is the ARN of the destination vault.
	DestinationBackupVaultARN string `json:"destinationBackupVaultARN"`

	// Lifecycle for the copies.
	Lifecycle *Lifecycle `json:"lifecycle,omitempty"`
}

// BackupPlanStatus defines the observed state of a backup plan.
type BackupPlanStatus struct {
	// ACKResourceMetadata contains ACK-specific metadata.
	ACKResourceMetadata *ACKResourceMetadata `json:"ackResourceMetadata,omitempty"`

	// Conditions represent the latest available observations.
	Conditions []*Condition `json:"conditions,omitempty"`

	// BackupPlanID is the unique ID of the plan.
	BackupPlanID *string `json:"backupPlanID,omitempty"`

	// VersionID is the version of the plan document.
	VersionID *string `json:"versionID,omitempty"`

	// CreationDate is the date and time the plan was created.
	CreationDate *metav1.Time `json:"creationDate,omitempty"`
}
