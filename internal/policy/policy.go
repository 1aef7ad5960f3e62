// Package policy loads declarative backup policy documents.
//
// Documents are JSON or YAML. A load path may be a single file or a
// directory tree, in which case every *.backup.yaml, *.backup.yml, and
// *.backup.json file is loaded and merged into one policy.
package policy

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	backupwire "github.com/lex00/backupwire-aws-go"
)

// Options configures loading.
type Options struct {
	// ExpandEnv interpolates ${VAR} references from the environment
	// before parsing.
	ExpandEnv bool
}

// Result contains the loaded policy and the files that contributed to it.
type Result struct {
	Policy *backupwire.Policy
	Files  []string
}

var docPattern = regexp.MustCompile(`\.backup\.(ya?ml|json)$`)

// Load reads a policy from a file or directory tree.
func Load(path string, opts Options) (*Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	files := []string{path}
	if info.IsDir() {
		files, err = FindDocuments(path)
		if err != nil {
			return nil, err
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("no *.backup.{yaml,yml,json} documents under %s", path)
		}
	}

	merged := &backupwire.Policy{}
	for _, file := range files {
		p, err := LoadFile(file, opts)
		if err != nil {
			return nil, err
		}
		if err := merge(merged, p, file); err != nil {
			return nil, err
		}
	}

	return &Result{Policy: merged, Files: files}, nil
}

// LoadFile reads a single policy document. JSON is tried first, then YAML,
// so either format works regardless of extension.
func LoadFile(path string, opts Options) (*backupwire.Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if opts.ExpandEnv {
		data = []byte(expandEnv(string(data)))
	}

	var p backupwire.Policy
	if err := json.Unmarshal(data, &p); err != nil {
		if err := yaml.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("%s: failed to parse as JSON or YAML: %w", path, err)
		}
	}

	return &p, nil
}

// FindDocuments walks root and returns all policy document paths, sorted.
func FindDocuments(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			// Skip hidden directories (.git, .terraform, ...)
			if name := d.Name(); name != "." && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if docPattern.MatchString(d.Name()) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	sort.Strings(files)
	return files, nil
}

// merge folds src into dst. Duplicate vault or plan keys across documents
// are an error; defaults may only be set by one document.
func merge(dst, src *backupwire.Policy, file string) error {
	if hasDefaults(src.Defaults) {
		if hasDefaults(dst.Defaults) {
			return fmt.Errorf("%s: defaults already set by another document", file)
		}
		dst.Defaults = src.Defaults
	}

	for key, vault := range src.Vaults {
		if dst.Vaults == nil {
			dst.Vaults = make(map[string]backupwire.Vault)
		}
		if _, exists := dst.Vaults[key]; exists {
			return fmt.Errorf("%s: duplicate vault %q", file, key)
		}
		dst.Vaults[key] = vault
	}

	for key, plan := range src.Plans {
		if dst.Plans == nil {
			dst.Plans = make(map[string]backupwire.Plan)
		}
		if _, exists := dst.Plans[key]; exists {
			return fmt.Errorf("%s: duplicate plan %q", file, key)
		}
		dst.Plans[key] = plan
	}

	return nil
}

func hasDefaults(d backupwire.Defaults) bool {
	return d.Vault != "" || d.IAMRoleARN != "" || d.Lifecycle != nil || len(d.Tags) > 0
}

var envRefRe = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnv replaces ${VAR} with the environment value. Unset variables
// expand to the empty string, matching shell semantics.
func expandEnv(s string) string {
	return envRefRe.ReplaceAllStringFunc(s, func(ref string) string {
		name := envRefRe.FindStringSubmatch(ref)[1]
		return os.Getenv(name)
	})
}
