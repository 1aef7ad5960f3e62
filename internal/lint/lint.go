// Package lint provides best-practice rules for backup policy documents.
package lint

import (
	backupwire "github.com/lex00/backupwire-aws-go"
)

// Result contains the outcome of linting.
type Result struct {
	Success bool
	Issues  []backupwire.Issue
}

// Options configures the linter.
type Options struct {
	// EnabledRules limits which rules run. Empty enables all rules.
	EnabledRules []string

	// MinRetentionDays for the ShortRetention rule. Zero uses the default.
	MinRetentionDays int
}

// Rule is the interface for lint rules.
type Rule interface {
	ID() string
	Description() string
	Check(p *backupwire.Policy) []backupwire.Issue
}

// AllRules returns every rule, configured from opts.
func AllRules(opts Options) []Rule {
	minRetention := opts.MinRetentionDays
	if minRetention == 0 {
		minRetention = defaultMinRetentionDays
	}

	return []Rule{
		VaultWithoutLock{},
		RuleWithoutCopy{},
		ShortRetention{MinDays: minRetention},
		WildcardSelection{},
		VaultWithoutCMK{},
		PlanWithoutSelection{},
		ContinuousWithColdStorage{},
		AccessPolicyAllowsDelete{},
		UntaggedRecoveryPoints{},
		LongLockCooldown{},
	}
}

// Policy runs all enabled rules against p.
func Policy(p *backupwire.Policy, opts Options) Result {
	rules := AllRules(opts)

	if len(opts.EnabledRules) > 0 {
		enabled := make(map[string]bool, len(opts.EnabledRules))
		for _, id := range opts.EnabledRules {
			enabled[id] = true
		}
		filtered := rules[:0]
		for _, rule := range rules {
			if enabled[rule.ID()] {
				filtered = append(filtered, rule)
			}
		}
		rules = filtered
	}

	var issues []backupwire.Issue
	for _, rule := range rules {
		issues = append(issues, rule.Check(p)...)
	}

	return Result{
		Success: len(issues) == 0,
		Issues:  issues,
	}
}
