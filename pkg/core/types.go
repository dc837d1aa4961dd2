package core

import "fmt"

// TargetRef identifies the issue or pull request whose labels are synchronized
type TargetRef struct {
	Owner  string
	Repo   string
	Number int
}

func (r TargetRef) String() string {
	return fmt.Sprintf("%s/%s#%d", r.Owner, r.Repo, r.Number)
}

// Kind tells whether a subject came from a pull request or a plain issue
type Kind int

const (
	KindIssue Kind = iota
	KindPullRequest
)

func (k Kind) String() string {
	if k == KindPullRequest {
		return "pull request"
	}
	return "issue"
}

// Subject is the target item resolved once at the start of a run
type Subject struct {
	Kind   Kind
	Ref    TargetRef
	Body   string
	Labels []string
}

// CheckboxItem is a single markdown task-list entry found in a body
type CheckboxItem struct {
	Text    string
	Checked bool
}

// Config represents the GitHub Action configuration
type Config struct {
	GitHubToken   string
	Labels        string
	Rules         string
	Mode          Mode
	MaxLabels     int
	AllowedLabels []string
	DryRun        bool
}
