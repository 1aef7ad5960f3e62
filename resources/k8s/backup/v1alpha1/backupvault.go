package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// BackupVault represents an ACK AWS Backup vault resource.
// +kubebuilder:object:root=true
type BackupVault struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   BackupVaultSpec   `json:"spec,omitempty"`
	Status BackupVaultStatus `json:"status,omitempty"`
}

// BackupVaultSpec defines the desired state of a backup vault.
type BackupVaultSpec struct {
	// Name is the name of the backup vault.
	Name string `json:"name"`

	// EncryptionKeyARN is the KMS key used to encrypt recovery points.
	EncryptionKeyARN *string `json:"encryptionKeyARN,omitempty"`

	// LockConfiguration enables vault lock on the vault.
	LockConfiguration *VaultLockConfiguration `json:"lockConfiguration,omitempty"`

	// AccessPolicy is the resource-based IAM policy document as JSON.
	AccessPolicy *string `json:"accessPolicy,omitempty"`

	// Tags are key-value pairs to categorize the vault.
	Tags []*Tag `json:"tags,omitempty"`
}

// VaultLockConfiguration defines an AWS Backup vault lock.
type VaultLockConfiguration struct {
	// MinRetentionDays is the minimum retention period the lock enforces.
	MinRetentionDays *int64 `json:"minRetentionDays,omitempty"`

	// MaxRetentionDays is the maximum retention period the lock enforces.
	MaxRetentionDays *int64 `json:"maxRetentionDays,omitempty"`

	// ChangeableForDays is the compliance-mode cooldown in days.
	// Omitting it creates a governance-mode lock.
	ChangeableForDays *int64 `json:"changeableForDays,omitempty"`
}

// BackupVaultStatus defines the observed state of a backup vault.
type BackupVaultStatus struct {
	// ACKResourceMetadata contains ACK-specific metadata.
	ACKResourceMetadata *ACKResourceMetadata `json:"ackResourceMetadata,omitempty"`

	// Conditions represent the latest available observations.
	Conditions []*Condition `json:"conditions,omitempty"`

	// Locked reports whether vault lock is active.
	Locked *bool `json:"locked,omitempty"`

	// NumberOfRecoveryPoints is the count of recovery points in the vault.
	NumberOfRecoveryPoints *int64 `json:"numberOfRecoveryPoints,omitempty"`

	// CreationDate is the date and time the vault was created.
	CreationDate *metav1.Time `json:"creationDate,omitempty"`
}
