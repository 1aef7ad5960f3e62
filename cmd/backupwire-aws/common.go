package main

import (
	"fmt"
	"os"
	"strings"

	backupwire "github.com/lex00/backupwire-aws-go"
	"github.com/lex00/backupwire-aws-go/internal/normalize"
	"github.com/lex00/backupwire-aws-go/internal/policy"
)

// loadResourceSet loads a policy path and normalizes it into a resource
// set. Normalization errors abort with all errors listed.
func loadResourceSet(path string, expandEnv bool) (*backupwire.ResourceSet, *backupwire.Policy, error) {
	loaded, err := policy.Load(path, policy.Options{ExpandEnv: expandEnv})
	if err != nil {
		return nil, nil, fmt.Errorf("loading %s: %w", path, err)
	}

	result := normalize.Normalize(loaded.Policy)
	if !result.Success() {
		msgs := make([]string, len(result.Errors))
		for i, e := range result.Errors {
			msgs[i] = e.Error()
		}
		return nil, nil, fmt.Errorf("normalizing %s:\n  %s", path, strings.Join(msgs, "\n  "))
	}
	return result.Set, loaded.Policy, nil
}

// writeOutput writes data to the given file, or stdout when file is empty.
func writeOutput(data []byte, outputFile string) error {
	if outputFile == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(outputFile, data, 0644)
}
