package main

import (
	"context"
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/ksysoev/checkbox-labels-action/pkg/core"
	"github.com/ksysoev/checkbox-labels-action/pkg/github"
	"github.com/sethvargo/go-githubactions"
)

func main() {
	// Set up action
	action := githubactions.New()
	ctx := context.Background()

	config, err := loadConfig(action)
	if err != nil {
		action.Fatalf("%v", err)
	}

	opts, err := buildOptions(config)
	if err != nil {
		action.Fatalf("%v", err)
	}

	client := github.NewClient(config.GitHubToken)

	var writer core.LabelWriter = client
	if config.DryRun {
		action.Infof("Dry run enabled - labels will not be changed")
		writer = core.DryRunWriter{Logger: action}
	}

	reconciler, err := core.NewReconciler(opts, config.Mode, writer, action)
	if err != nil {
		action.Fatalf("%v", err)
	}

	// Get GitHub context
	ghctx, err := action.Context()
	if err != nil {
		action.Fatalf("Failed to read GitHub context: %v", err)
	}

	subject, err := loadSubject(ctx, action, client, ghctx)
	if errors.Is(err, github.ErrUnsupportedEvent) {
		action.Warningf("Event %s is not supported, nothing to do", ghctx.EventName)
		return
	}
	if err != nil {
		action.Fatalf("Failed to load subject: %v", err)
	}

	result, err := reconciler.Run(ctx, subject)
	if err != nil {
		action.Fatalf("%v", err)
	}

	action.SetOutput("outcome", result.Outcome.String())
	action.SetOutput("labels", strings.Join(result.Labels, ","))

	if result.Outcome == core.OutcomeSkipped {
		action.Infof("Labels of %s left unchanged: %s", subject.Ref, result.Reason)
		return
	}

	action.Infof("Checkbox labels action completed successfully")
}

// loadConfig reads action inputs, falling back to environment variables
func loadConfig(action *githubactions.Action) (core.Config, error) {
	githubToken := action.GetInput("github_token")
	if githubToken == "" {
		githubToken = os.Getenv("LABELS_GITHUB_TOKEN")
		if githubToken == "" {
			return core.Config{}, errors.New("github_token input is required")
		}
	}

	mode, err := core.ParseMode(action.GetInput("mode"))
	if err != nil {
		return core.Config{}, err
	}

	config := core.Config{
		GitHubToken: githubToken,
		Labels:      action.GetInput("labels"),
		Rules:       action.GetInput("rules"),
		Mode:        mode,
	}

	if v := action.GetInput("max_labels"); v != "" {
		config.MaxLabels, err = strconv.Atoi(v)
		if err != nil || config.MaxLabels < 0 {
			return core.Config{}, &core.ConfigurationError{Field: "max_labels", Reason: "must be a non-negative integer"}
		}
	}

	for _, label := range strings.Split(action.GetInput("allowed_labels"), ",") {
		if label = strings.TrimSpace(label); label != "" {
			config.AllowedLabels = append(config.AllowedLabels, label)
		}
	}

	if v := action.GetInput("dry_run"); v != "" {
		config.DryRun, err = strconv.ParseBool(v)
		if err != nil {
			return core.Config{}, &core.ConfigurationError{Field: "dry_run", Reason: "must be true or false"}
		}
	}

	return config, nil
}

// buildOptions decodes the rule inputs and the validators they enable
func buildOptions(config core.Config) (*core.Options, error) {
	labels, err := core.ParseRuleSpecs("labels", config.Labels)
	if err != nil {
		return nil, err
	}

	rules, err := core.ParseRuleSpecs("rules", config.Rules)
	if err != nil {
		return nil, err
	}

	opts := &core.Options{Labels: labels, Rules: rules}

	var validators []core.ValidateFunc
	if config.MaxLabels > 0 {
		validators = append(validators, core.MaxLabels(config.MaxLabels))
	}
	if len(config.AllowedLabels) > 0 {
		validators = append(validators, core.AllowedLabels(config.AllowedLabels...))
	}
	if len(validators) > 0 {
		opts.Validate = core.ChainValidators(validators...)
	}

	return opts, nil
}

// loadSubject resolves the issue or pull request the workflow runs for
func loadSubject(ctx context.Context, action *githubactions.Action, client *github.Client, ghctx *githubactions.GitHubContext) (core.Subject, error) {
	if ghctx.EventName == "workflow_dispatch" {
		number, err := strconv.Atoi(action.GetInput("number"))
		if err != nil {
			return core.Subject{}, errors.New("number input is required for workflow_dispatch events")
		}

		owner, repo := ghctx.Repo()
		action.Infof("Running in workflow_dispatch mode for #%d", number)

		return client.FetchSubject(ctx, core.TargetRef{Owner: owner, Repo: repo, Number: number})
	}

	payload, err := os.ReadFile(ghctx.EventPath)
	if err != nil {
		return core.Subject{}, err
	}

	return client.LoadSubject(ctx, ghctx.EventName, payload)
}
