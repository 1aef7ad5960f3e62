package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"regexp"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/lex00/backupwire-aws-go/internal/cfn"
	"github.com/lex00/backupwire-aws-go/internal/lint"
	"github.com/lex00/backupwire-aws-go/internal/validate"
)

var watchDocPattern = regexp.MustCompile(`\.backup\.(ya?ml|json)$`)

// newWatchCmd creates the "watch" subcommand for auto-revalidation on
// policy document changes.
func newWatchCmd() *cobra.Command {
	var (
		validateOnly bool
		debounce     time.Duration
		outputFormat string
		outputFile   string
		expandEnv    bool
	)

	cmd := &cobra.Command{
		Use:   "watch <path>",
		Short: "Auto-revalidate on policy document changes",
		Long: `Watch monitors backup policy documents for changes and automatically
revalidates.

The watch command:
- Monitors the path for *.backup.yaml, *.backup.yml, and *.backup.json changes
- Runs validate and lint on each change
- Rebuilds the CloudFormation template if validation passes (unless --validate-only)
- Debounces rapid changes to avoid excessive rebuilds

Examples:
    backupwire-aws watch ./policies
    backupwire-aws watch ./policies --validate-only
    backupwire-aws watch ./policies --debounce 1s -o template.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(args[0], watchOptions{
				validateOnly: validateOnly,
				debounce:     debounce,
				outputFormat: outputFormat,
				outputFile:   outputFile,
				expandEnv:    expandEnv,
			})
		},
	}

	cmd.Flags().BoolVar(&validateOnly, "validate-only", false, "Only validate and lint, skip build")
	cmd.Flags().DurationVar(&debounce, "debounce", 500*time.Millisecond, "Debounce duration for rapid changes")
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "json", "Output format for build: json or yaml")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file for build (default: none)")
	cmd.Flags().BoolVar(&expandEnv, "expand-env", false, "Expand ${VAR} references from the environment")

	return cmd
}

type watchOptions struct {
	validateOnly bool
	debounce     time.Duration
	outputFormat string
	outputFile   string
	expandEnv    bool
}

// runWatch monitors policy documents and revalidates on changes.
func runWatch(path string, opts watchOptions) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() {
		_ = watcher.Close()
	}()

	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return err
	}
	watchRoot := absPath
	if !info.IsDir() {
		watchRoot = filepath.Dir(absPath)
	}
	if err := addDirRecursive(watcher, watchRoot); err != nil {
		return fmt.Errorf("failed to watch %s: %w", watchRoot, err)
	}
	fmt.Printf("Watching: %s\n", watchRoot)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	fmt.Println("Running initial validation...")
	runValidateAndBuild(absPath, opts)

	var debounceTimer *time.Timer
	rebuildChan := make(chan struct{}, 1)

	fmt.Println("\nWatching for changes... (Ctrl+C to stop)")

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if !watchDocPattern.MatchString(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			// Debounce: reset timer on each change
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(opts.debounce, func() {
				select {
				case rebuildChan <- struct{}{}:
				default:
				}
			})

		case <-rebuildChan:
			fmt.Printf("\n[%s] Change detected, revalidating...\n", time.Now().Format("15:04:05"))
			runValidateAndBuild(absPath, opts)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "Watch error: %v\n", err)

		case <-sigChan:
			fmt.Println("\nStopping watch...")
			return nil
		}
	}
}

// addDirRecursive adds a directory and all subdirectories to the watcher.
func addDirRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			// Skip hidden directories
			if strings.HasPrefix(filepath.Base(path), ".") && path != dir {
				return filepath.SkipDir
			}
			return watcher.Add(path)
		}
		return nil
	})
}

// runValidateAndBuild validates the policy documents and optionally
// builds the template.
func runValidateAndBuild(path string, opts watchOptions) {
	set, pol, err := loadResourceSet(path, opts.expandEnv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}

	result := validate.Set(set, validate.Options{})
	for _, issue := range result.Warnings {
		fmt.Printf("warning: %s\n", issue)
	}
	if !result.Valid {
		for _, issue := range result.Errors {
			fmt.Printf("error: %s\n", issue)
		}
		fmt.Println("Validation failed, skipping build")
		return
	}

	lintResult := lint.Policy(pol, lint.Options{})
	for _, issue := range lintResult.Issues {
		fmt.Printf("%s\n", issue)
	}

	fmt.Printf("Validation passed (%d resources)\n", set.Len())

	if opts.validateOnly {
		return
	}

	tpl, err := cfn.Render(set, cfn.Options{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Build error: %v\n", err)
		return
	}
	data, err := cfn.Encode(tpl, opts.outputFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Output error: %v\n", err)
		return
	}

	if opts.outputFile == "" {
		fmt.Printf("Build successful, %d template resources\n", len(tpl.Resources))
		return
	}
	if err := os.WriteFile(opts.outputFile, data, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write output: %v\n", err)
		return
	}
	fmt.Printf("Build successful, wrote %s\n", opts.outputFile)
}
