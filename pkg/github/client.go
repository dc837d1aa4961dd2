package github

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/go-github/v60/github"
	"github.com/ksysoev/checkbox-labels-action/pkg/core"
	"golang.org/x/oauth2"
)

const labelsPerPage = 100

// ErrUnsupportedEvent is returned for events that carry no issue or pull request
var ErrUnsupportedEvent = errors.New("unsupported event")

var supportedEvents = map[string]bool{
	"pull_request":        true,
	"pull_request_target": true,
	"issues":              true,
	"issue_comment":       true,
}

// Client handles interaction with the GitHub API
type Client struct {
	client *github.Client
}

// NewClient creates a new GitHub client
func NewClient(token string) *Client {
	return &Client{client: NewRawClient(token)}
}

// NewRawClient creates a new raw GitHub client
func NewRawClient(token string) *github.Client {
	ctx := context.Background()
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)
	return github.NewClient(tc)
}

// SplitRepo splits an "owner/name" repository string
func SplitRepo(fullName string) (owner, repo string, err error) {
	parts := strings.Split(fullName, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository %q, expected owner/name", fullName)
	}
	return parts[0], parts[1], nil
}

// LoadSubject builds the subject from a webhook payload of the triggering event.
// The body comes from the payload, labels are read fresh from the API.
func (c *Client) LoadSubject(ctx context.Context, eventName string, payload []byte) (core.Subject, error) {
	if !supportedEvents[eventName] {
		return core.Subject{}, fmt.Errorf("%w: %s", ErrUnsupportedEvent, eventName)
	}

	event, err := github.ParseWebHook(eventName, payload)
	if err != nil {
		return core.Subject{}, fmt.Errorf("failed to parse %s event: %w", eventName, err)
	}

	var subject core.Subject

	switch e := event.(type) {
	case *github.PullRequestEvent:
		subject = pullRequestSubject(e.GetRepo(), e.GetPullRequest())
	case *github.PullRequestTargetEvent:
		subject = pullRequestSubject(e.GetRepo(), e.GetPullRequest())
	case *github.IssuesEvent:
		subject = issueSubject(e.GetRepo(), e.GetIssue())
	case *github.IssueCommentEvent:
		subject = issueSubject(e.GetRepo(), e.GetIssue())
	default:
		return core.Subject{}, fmt.Errorf("%w: %s", ErrUnsupportedEvent, eventName)
	}

	if subject.Ref.Number == 0 {
		return core.Subject{}, fmt.Errorf("%s event has no issue or pull request number", eventName)
	}

	subject.Labels, err = c.ListLabels(ctx, subject.Ref)
	if err != nil {
		return core.Subject{}, err
	}

	return subject, nil
}

// FetchSubject builds the subject for an issue or pull request from the API
func (c *Client) FetchSubject(ctx context.Context, ref core.TargetRef) (core.Subject, error) {
	issue, _, err := c.client.Issues.Get(ctx, ref.Owner, ref.Repo, ref.Number)
	if err != nil {
		return core.Subject{}, fmt.Errorf("failed to get %s: %w", ref, err)
	}

	subject := core.Subject{
		Kind: core.KindIssue,
		Ref:  ref,
		Body: issue.GetBody(),
	}
	if issue.IsPullRequest() {
		subject.Kind = core.KindPullRequest
	}

	subject.Labels, err = c.ListLabels(ctx, ref)
	if err != nil {
		return core.Subject{}, err
	}

	return subject, nil
}

// ListLabels returns the current label names of an issue or pull request
func (c *Client) ListLabels(ctx context.Context, ref core.TargetRef) ([]string, error) {
	var names []string

	opts := &github.ListOptions{PerPage: labelsPerPage}
	for {
		labels, resp, err := c.client.Issues.ListLabelsByIssue(ctx, ref.Owner, ref.Repo, ref.Number, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list labels of %s: %w", ref, err)
		}

		for _, label := range labels {
			names = append(names, label.GetName())
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return names, nil
}

// ReplaceLabels sets the complete label set of an issue or pull request
func (c *Client) ReplaceLabels(ctx context.Context, ref core.TargetRef, labels []string) error {
	if _, _, err := c.client.Issues.ReplaceLabelsForIssue(ctx, ref.Owner, ref.Repo, ref.Number, labels); err != nil {
		return fmt.Errorf("failed to replace labels: %w", err)
	}
	return nil
}

// AddLabels adds labels to an issue or pull request, keeping existing ones
func (c *Client) AddLabels(ctx context.Context, ref core.TargetRef, labels []string) error {
	if _, _, err := c.client.Issues.AddLabelsToIssue(ctx, ref.Owner, ref.Repo, ref.Number, labels); err != nil {
		return fmt.Errorf("failed to add labels: %w", err)
	}
	return nil
}

func pullRequestSubject(repo *github.Repository, pr *github.PullRequest) core.Subject {
	return core.Subject{
		Kind: core.KindPullRequest,
		Ref: core.TargetRef{
			Owner:  repo.GetOwner().GetLogin(),
			Repo:   repo.GetName(),
			Number: pr.GetNumber(),
		},
		Body: pr.GetBody(),
	}
}

func issueSubject(repo *github.Repository, issue *github.Issue) core.Subject {
	subject := core.Subject{
		Kind: core.KindIssue,
		Ref: core.TargetRef{
			Owner:  repo.GetOwner().GetLogin(),
			Repo:   repo.GetName(),
			Number: issue.GetNumber(),
		},
		Body: issue.GetBody(),
	}
	if issue.IsPullRequest() {
		subject.Kind = core.KindPullRequest
	}
	return subject
}
