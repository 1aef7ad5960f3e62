// Package differ provides semantic comparison of normalized resource sets.
//
// Both sides of a diff are ResourceSets, so the same code compares two
// policy documents or a document against the live AWS Backup state.
package differ

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"

	backupwire "github.com/lex00/backupwire-aws-go"
)

// Options configures the differ.
type Options struct {
	// IgnoreOrder ignores slice element order in comparisons.
	IgnoreOrder bool
}

// Result contains the difference between two resource sets.
type Result struct {
	Diff    backupwire.StateDiff
	Summary backupwire.DiffSummary
}

// instance is one comparable resource: a stable key plus its properties
// flattened to a JSON-shaped map.
type instance struct {
	kind  string
	props map[string]any
}

// Compare diffs desired against actual. Entries in actual but not desired
// are "removed" (they would be deleted if the desired state were applied).
func Compare(desired, actual *backupwire.ResourceSet, opts Options) (*Result, error) {
	want, err := index(desired)
	if err != nil {
		return nil, fmt.Errorf("indexing desired set: %w", err)
	}
	have, err := index(actual)
	if err != nil {
		return nil, fmt.Errorf("indexing actual set: %w", err)
	}

	result := &Result{}

	for key, inst := range want {
		if _, exists := have[key]; !exists {
			result.Diff.Added = append(result.Diff.Added, backupwire.DiffEntry{
				Resource: key,
				Type:     inst.kind,
			})
		}
	}

	for key, inst := range have {
		if _, exists := want[key]; !exists {
			result.Diff.Removed = append(result.Diff.Removed, backupwire.DiffEntry{
				Resource: key,
				Type:     inst.kind,
			})
		}
	}

	for key, wantInst := range want {
		haveInst, exists := have[key]
		if !exists {
			continue
		}
		changes := compareProperties("", haveInst.props, wantInst.props, opts)
		changes = append(changes, lockRegressions(haveInst, wantInst)...)
		if len(changes) > 0 {
			sort.Strings(changes)
			result.Diff.Modified = append(result.Diff.Modified, backupwire.DiffEntry{
				Resource: key,
				Type:     wantInst.kind,
				Changes:  changes,
			})
		}
	}

	sortEntries(result.Diff.Added)
	sortEntries(result.Diff.Removed)
	sortEntries(result.Diff.Modified)

	result.Summary = backupwire.DiffSummary{
		Added:    len(result.Diff.Added),
		Removed:  len(result.Diff.Removed),
		Modified: len(result.Diff.Modified),
	}
	result.Summary.Total = result.Summary.Added + result.Summary.Removed + result.Summary.Modified

	return result, nil
}

// index flattens a resource set into comparable instances keyed by
// "vault/<name>", "plan/<name>", and "selection/<plan>/<name>".
func index(set *backupwire.ResourceSet) (map[string]instance, error) {
	out := make(map[string]instance, set.Len())

	for _, v := range set.Vaults {
		props, err := toProps(v)
		if err != nil {
			return nil, err
		}
		delete(props, "name")
		out["vault/"+v.Name] = instance{kind: "vault", props: props}
	}

	for _, p := range set.Plans {
		props, err := toProps(p)
		if err != nil {
			return nil, err
		}
		delete(props, "name")
		out["plan/"+p.Name] = instance{kind: "plan", props: props}
	}

	for _, s := range set.Selections {
		props, err := toProps(s)
		if err != nil {
			return nil, err
		}
		delete(props, "name")
		delete(props, "plan_name")
		out["selection/"+s.PlanName+"/"+s.Name] = instance{kind: "selection", props: props}
	}

	return out, nil
}

// toProps converts an instance struct to a JSON-shaped property map so
// both sides of the diff compare with the same value types.
func toProps(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var props map[string]any
	if err := json.Unmarshal(data, &props); err != nil {
		return nil, err
	}
	return props, nil
}

// compareProperties recursively compares property maps, returning one
// change string per differing path.
func compareProperties(prefix string, have, want map[string]any, opts Options) []string {
	var changes []string

	for key, wantVal := range want {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}

		haveVal, exists := have[key]
		if !exists {
			changes = append(changes, path+" added")
			continue
		}

		wantMap, wantIsMap := wantVal.(map[string]any)
		haveMap, haveIsMap := haveVal.(map[string]any)
		if wantIsMap && haveIsMap {
			changes = append(changes, compareProperties(path, haveMap, wantMap, opts)...)
			continue
		}

		if !deepEqual(haveVal, wantVal, opts) {
			changes = append(changes, path+" modified")
		}
	}

	for key := range have {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		if _, exists := want[key]; !exists {
			changes = append(changes, path+" removed")
		}
	}

	return changes
}

// lockRegressions flags vault-lock changes the control plane cannot honor:
// a compliance lock cannot be removed or weakened once its cooldown passes.
func lockRegressions(have, want instance) []string {
	if have.kind != "vault" {
		return nil
	}

	haveLock, _ := have.props["lock"].(map[string]any)
	if haveLock == nil || haveLock["mode"] != backupwire.LockModeCompliance {
		return nil
	}

	wantLock, _ := want.props["lock"].(map[string]any)
	if wantLock == nil {
		return []string{"lock removal on a compliance-locked vault cannot be applied"}
	}
	if wantLock["mode"] != backupwire.LockModeCompliance {
		return []string{"lock downgrade on a compliance-locked vault cannot be applied"}
	}
	return nil
}

func deepEqual(a, b any, opts Options) bool {
	if opts.IgnoreOrder {
		a = normalizeValue(a)
		b = normalizeValue(b)
	}
	return reflect.DeepEqual(a, b)
}

// normalizeValue sorts slices by their JSON form so order differences
// do not register as changes.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case []any:
		result := make([]any, len(val))
		for i, item := range val {
			result[i] = normalizeValue(item)
		}
		sort.Slice(result, func(i, j int) bool {
			a, _ := json.Marshal(result[i])
			b, _ := json.Marshal(result[j])
			return string(a) < string(b)
		})
		return result
	case map[string]any:
		result := make(map[string]any, len(val))
		for k, item := range val {
			result[k] = normalizeValue(item)
		}
		return result
	default:
		return v
	}
}

func sortEntries(entries []backupwire.DiffEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Resource < entries[j].Resource
	})
}
