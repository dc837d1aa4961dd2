package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ksysoev/checkbox-labels-action/pkg/core"
	"github.com/ksysoev/checkbox-labels-action/pkg/github"
	"github.com/spf13/cobra"
)

type stderrLogger struct{}

func (stderrLogger) Infof(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, msg+"\n", args...)
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		repoFullName string
		number       int
		labels       string
		rules        string
		mode         string
		dryRun       bool
	)

	cmd := &cobra.Command{
		Use:   "test-client",
		Short: "Synchronize checkbox labels of a single issue or pull request",
		Long: `test-client runs the checkbox label pipeline against a live issue or
pull request. Labels are only printed unless --dry-run=false is given.

Example:
  GITHUB_TOKEN=... test-client --repo ksysoev/checkbox-labels-action --number 12 --rules '[Checked, WIP]'`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			token := os.Getenv("GITHUB_TOKEN")
			if token == "" {
				return fmt.Errorf("GITHUB_TOKEN environment variable is required")
			}

			owner, repo, err := github.SplitRepo(repoFullName)
			if err != nil {
				return err
			}

			m, err := core.ParseMode(mode)
			if err != nil {
				return err
			}

			labelSpecs, err := core.ParseRuleSpecs("labels", labels)
			if err != nil {
				return err
			}
			ruleSpecs, err := core.ParseRuleSpecs("rules", rules)
			if err != nil {
				return err
			}

			client := github.NewClient(token)

			var writer core.LabelWriter = client
			if dryRun {
				writer = core.DryRunWriter{Logger: stderrLogger{}}
			}

			reconciler, err := core.NewReconciler(&core.Options{Labels: labelSpecs, Rules: ruleSpecs}, m, writer, stderrLogger{})
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			subject, err := client.FetchSubject(ctx, core.TargetRef{Owner: owner, Repo: repo, Number: number})
			if err != nil {
				return err
			}

			result, err := reconciler.Run(ctx, subject)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s %v\n", subject.Ref, result.Outcome, result.Labels)
			return nil
		},
	}

	cmd.Flags().StringVar(&repoFullName, "repo", os.Getenv("GITHUB_REPOSITORY"), "repository in owner/name form")
	cmd.Flags().IntVar(&number, "number", 0, "issue or pull request number")
	cmd.Flags().StringVar(&labels, "labels", "", "label names or a YAML mapping of item name to label")
	cmd.Flags().StringVar(&rules, "rules", "", "YAML list of names and {match, label} rules")
	cmd.Flags().StringVar(&mode, "mode", string(core.ModeReplaceAll), "write mode: replace-all or add-only")
	cmd.Flags().BoolVar(&dryRun, "dry-run", true, "print the labels instead of writing them")
	_ = cmd.MarkFlagRequired("number")

	return cmd
}
