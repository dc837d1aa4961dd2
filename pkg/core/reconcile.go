package core

import (
	"context"
	"fmt"
)

// Mode selects how the final label set is written
type Mode string

const (
	// ModeReplaceAll writes the complete label set in one call
	ModeReplaceAll Mode = "replace-all"
	// ModeAddOnly only adds labels and never removes any
	ModeAddOnly Mode = "add-only"
)

// ParseMode converts an input value to a Mode, defaulting to ModeReplaceAll
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeReplaceAll:
		return ModeReplaceAll, nil
	case ModeAddOnly:
		return ModeAddOnly, nil
	default:
		return "", &ConfigurationError{Field: "mode", Reason: fmt.Sprintf("unknown mode %q", s)}
	}
}

// LabelWriter performs the label update on the hosting platform
type LabelWriter interface {
	ReplaceLabels(ctx context.Context, ref TargetRef, labels []string) error
	AddLabels(ctx context.Context, ref TargetRef, labels []string) error
}

// Logger receives progress messages
type Logger interface {
	Infof(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Infof(string, ...any) {}

// Outcome is the terminal state of a successful run
type Outcome int

const (
	OutcomeSkipped Outcome = iota
	OutcomeWritten
)

func (o Outcome) String() string {
	if o == OutcomeWritten {
		return "written"
	}
	return "skipped"
}

// Result describes what a run did
type Result struct {
	Outcome    Outcome
	Resolution Resolution
	Labels     []string
	Reason     string
}

// Reconciler synchronizes a subject's labels with its checkboxes
type Reconciler struct {
	rules    []LabelRule
	mode     Mode
	validate ValidateFunc
	writer   LabelWriter
	logger   Logger
}

// NewReconciler normalizes the options and creates a reconciler.
// It fails with *ConfigurationError before any read or write happens.
func NewReconciler(opts *Options, mode Mode, writer LabelWriter, logger Logger) (*Reconciler, error) {
	rules, err := NormalizeRules(opts)
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = nopLogger{}
	}

	return &Reconciler{
		rules:    rules,
		mode:     mode,
		validate: opts.Validate,
		writer:   writer,
		logger:   logger,
	}, nil
}

// Run extracts checkboxes from the subject body and writes the resulting
// labels with at most one call to the writer. Write errors are returned
// unchanged in the error chain and are not retried. In add-only mode a run
// where only unchecked items matched is skipped, since there is nothing to add.
func (r *Reconciler) Run(ctx context.Context, subject Subject) (Result, error) {
	checked, unchecked := SplitCheckboxes(ExtractCheckboxes(subject.Body))
	r.logger.Infof("Found %d checked and %d unchecked boxes in %s %s",
		len(checked), len(unchecked), subject.Kind, subject.Ref)

	res := Resolve(checked, unchecked, r.rules)
	result := Result{Outcome: OutcomeSkipped, Resolution: res}

	if res.Empty() {
		result.Reason = "no checkbox matched a rule"
		return result, nil
	}

	if r.validate != nil {
		decision, err := r.validate(ctx, res.On)
		if err != nil {
			return result, fmt.Errorf("failed to validate labels: %w", err)
		}
		if decision == DecisionReject {
			result.Reason = "labels rejected by validation"
			return result, nil
		}
	}

	labels := FinalLabels(res, subject.Labels, r.mode)
	result.Labels = labels

	var err error
	switch r.mode {
	case ModeAddOnly:
		if len(labels) == 0 {
			result.Reason = "no labels to add"
			return result, nil
		}
		err = r.writer.AddLabels(ctx, subject.Ref, labels)
	default:
		err = r.writer.ReplaceLabels(ctx, subject.Ref, labels)
	}
	if err != nil {
		return result, fmt.Errorf("failed to update labels of %s: %w", subject.Ref, err)
	}

	result.Outcome = OutcomeWritten
	r.logger.Infof("Updated labels of %s: %v", subject.Ref, labels)

	return result, nil
}

// FinalLabels computes the label set to write. In replace-all mode existing
// labels survive unless an unchecked item turns them off, and a label that is
// both checked and unchecked stays on. In add-only mode only the checked
// labels are returned.
func FinalLabels(res Resolution, existing []string, mode Mode) []string {
	set := NewLabelSet(res.On...)

	if mode == ModeAddOnly {
		return set.Slice()
	}

	off := NewLabelSet(res.Off...)
	for _, label := range existing {
		if !off.Contains(label) {
			set.Add(label)
		}
	}

	return set.Slice()
}
