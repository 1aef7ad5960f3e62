package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// BackupSelection represents an ACK AWS Backup selection resource.
// +kubebuilder:object:root=true
type BackupSelection struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   BackupSelectionSpec   `json:"spec,omitempty"`
	Status BackupSelectionStatus `json:"status,omitempty"`
}

// BackupSelectionSpec defines the desired state of a backup selection.
type BackupSelectionSpec struct {
	// Name is the selection name.
	Name string `json:"name"`

	// BackupPlanID is the ID of the plan the selection belongs to.
	BackupPlanID *string `json:"backupPlanID,omitempty"`

	// BackupPlanRef is a reference to a BackupPlan resource.
	BackupPlanRef *AWSResourceReferenceWrapper `json:"backupPlanRef,omitempty"`

	// IAMRoleARN is the role AWS Backup assumes to take backups.
	IAMRoleARN string `json:"iamRoleARN"`

	// Resources are ARNs (or ARN wildcards) to include.
	Resources []*string `json:"resources,omitempty"`

	// NotResources are ARNs to exclude.
	NotResources []*string `json:"notResources,omitempty"`

	// ListOfTags selects resources by tag with OR semantics.
	ListOfTags []*TagCondition `json:"listOfTags,omitempty"`

	// Conditions selects resources by tag with AND semantics.
	Conditions *SelectionConditions `json:"conditions,omitempty"`
}

// TagCondition is a single tag match in a selection.
type TagCondition struct {
	// ConditionType is the match operator, STRINGEQUALS.
	ConditionType string `json:"conditionType"`

	// ConditionKey is the tag key.
	ConditionKey string `json:"conditionKey"`

	// ConditionValue is the tag value.
	ConditionValue string `json:"conditionValue"`
}

// SelectionConditions are AND-combined tag matchers.
type SelectionConditions struct {
	StringEquals    []*ConditionParameter `json:"stringEquals,omitempty"`
	StringLike      []*ConditionParameter `json:"stringLike,omitempty"`
	StringNotEquals []*ConditionParameter `json:"stringNotEquals,omitempty"`
	StringNotLike   []*ConditionParameter `json:"stringNotLike,omitempty"`
}

// ConditionParameter is a tag key/value matcher.
type ConditionParameter struct {
	// ConditionKey is the tag key.
	ConditionKey *string `json:"conditionKey,omitempty"`

	// ConditionValue is the tag value.
	ConditionValue *string `json:"conditionValue,omitempty"`
}

// BackupSelectionStatus defines the observed state of a backup selection.
type BackupSelectionStatus struct {
	// ACKResourceMetadata contains ACK-specific metadata.
	ACKResourceMetadata *ACKResourceMetadata `json:"ackResourceMetadata,omitempty"`

	// Conditions represent the latest available observations.
	Conditions []*Condition `json:"conditions,omitempty"`

	// SelectionID is the unique ID of the selection.
	SelectionID *string `json:"selectionID,omitempty"`

	// CreationDate is the date and time the selection was created.
	CreationDate *metav1.Time `json:"creationDate,omitempty"`
}
