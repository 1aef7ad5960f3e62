package backupwire_aws

// Severity classifies a validation or lint finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Issue is a single validation or lint finding.
type Issue struct {
	// Rule is the rule ID for lint issues (e.g. "BWA001"), empty for
	// validation issues.
	Rule string `json:"rule,omitempty"`

	// Path locates the finding in the policy document
	// (e.g. "plans/daily/rules/nightly/lifecycle").
	Path string `json:"path,omitempty"`

	Message string `json:"message"`

	// Suggestion is an optional remediation hint.
	Suggestion string `json:"suggestion,omitempty"`

	Severity Severity `json:"severity"`
}

// String renders the issue in one line for CLI output.
func (i Issue) String() string {
	s := string(i.Severity)
	if i.Rule != "" {
		s += " " + i.Rule
	}
	if i.Path != "" {
		s += " " + i.Path
	}
	return s + ": " + i.Message
}

// BuildResult is the outcome of normalizing a policy document.
type BuildResult struct {
	Success   bool     `json:"success"`
	Resources []string `json:"resources,omitempty"`
	Errors    []string `json:"errors,omitempty"`
}

// ValidateResult is the outcome of validating a normalized resource set.
type ValidateResult struct {
	Success   bool    `json:"success"`
	Resources int     `json:"resources"`
	Errors    []Issue `json:"errors,omitempty"`
	Warnings  []Issue `json:"warnings,omitempty"`
}

// LintResult is the outcome of linting a policy document.
type LintResult struct {
	Success bool    `json:"success"`
	Issues  []Issue `json:"issues,omitempty"`
}

// StateDiff is the difference between two normalized resource sets.
type StateDiff struct {
	Added    []DiffEntry `json:"added,omitempty"`
	Removed  []DiffEntry `json:"removed,omitempty"`
	Modified []DiffEntry `json:"modified,omitempty"`
}

// DiffEntry is one added, removed, or modified resource instance.
type DiffEntry struct {
	// Resource is the instance key (e.g. "plan/daily",
	// "selection/daily/databases").
	Resource string `json:"resource"`

	// Type is the resource kind: vault, plan, or selection.
	Type string `json:"type"`

	// Changes lists property-path changes for modified entries.
	Changes []string `json:"changes,omitempty"`
}

// DiffSummary counts diff entries.
type DiffSummary struct {
	Added    int `json:"added"`
	Removed  int `json:"removed"`
	Modified int `json:"modified"`
	Total    int `json:"total"`
}

// DiffResult is the outcome of a diff run.
type DiffResult struct {
	Success bool        `json:"success"`
	Diff    StateDiff   `json:"diff"`
	Summary DiffSummary `json:"summary"`
}
