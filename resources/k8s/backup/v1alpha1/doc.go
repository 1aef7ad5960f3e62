// Package v1alpha1 contains ACK-style AWS Backup resource types for
// Kubernetes-native backup infrastructure management.
//
// These types enable managing backup vaults, plans, and selections as
// Kubernetes CRDs via AWS Controllers for Kubernetes (ACK).
//
// Example usage:
//
//	import (
//		backupv1alpha1 "github.com/lex00/backupwire-aws-go/resources/k8s/backup/v1alpha1"
//		metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
//	)
//
//	var PrimaryVault = backupv1alpha1.BackupVault{
//		ObjectMeta: metav1.ObjectMeta{
//			Name:      "primary",
//			Namespace: "ack-system",
//		},
//		Spec: backupv1alpha1.BackupVaultSpec{
//			Name: "primary",
//		},
//	}
package v1alpha1
