// Package arn parses and validates the ARN shapes AWS Backup policies use.
package arn

import (
	"fmt"
	"strings"

	awsarn "github.com/aws/aws-sdk-go-v2/aws/arn"
)

// BackupVault identifies a backup vault by its ARN components.
type BackupVault struct {
	Partition string
	Region    string
	AccountID string
	Name      string
}

// String reassembles the vault ARN.
func (v BackupVault) String() string {
	return fmt.Sprintf("arn:%s:backup:%s:%s:backup-vault:%s", v.Partition, v.Region, v.AccountID, v.Name)
}

// ParseBackupVault parses a backup vault ARN
// (arn:<partition>:backup:<region>:<account>:backup-vault:<name>).
func ParseBackupVault(s string) (BackupVault, error) {
	parsed, err := awsarn.Parse(s)
	if err != nil {
		return BackupVault{}, fmt.Errorf("invalid ARN %q: %w", s, err)
	}
	if parsed.Service != "backup" {
		return BackupVault{}, fmt.Errorf("not a backup service ARN: %q", s)
	}
	name, ok := strings.CutPrefix(parsed.Resource, "backup-vault:")
	if !ok || name == "" {
		return BackupVault{}, fmt.Errorf("not a backup vault ARN: %q", s)
	}
	return BackupVault{
		Partition: parsed.Partition,
		Region:    parsed.Region,
		AccountID: parsed.AccountID,
		Name:      name,
	}, nil
}

// IsIAMRole reports whether s is an IAM role ARN
// (arn:<partition>:iam::<account>:role/<path>).
func IsIAMRole(s string) bool {
	parsed, err := awsarn.Parse(s)
	if err != nil {
		return false
	}
	return parsed.Service == "iam" && parsed.Region == "" &&
		strings.HasPrefix(parsed.Resource, "role/") && len(parsed.Resource) > len("role/")
}

// AccountID extracts the account ID from any parseable ARN, or "" when
// s is not an ARN.
func AccountID(s string) string {
	parsed, err := awsarn.Parse(s)
	if err != nil {
		return ""
	}
	return parsed.AccountID
}

// ValidateResource checks a selection resource ARN. The lone wildcard "*"
// is allowed, as are ARNs ending in a wildcard segment.
func ValidateResource(s string) error {
	if s == "*" {
		return nil
	}
	// awsarn.Parse accepts wildcard resource segments
	if !awsarn.IsARN(s) {
		return fmt.Errorf("invalid resource ARN %q", s)
	}
	return nil
}
