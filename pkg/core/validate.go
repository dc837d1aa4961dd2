package core

import (
	"context"
	"strings"
)

// Decision is the verdict of a ValidateFunc
type Decision int

const (
	// DecisionNone means the validator expressed no opinion, which approves the write.
	DecisionNone Decision = iota
	DecisionApprove
	DecisionReject
)

// ValidateFunc inspects the labels about to be turned on before any write.
// It may block; the reconciler waits for it to return.
type ValidateFunc func(ctx context.Context, labels []string) (Decision, error)

// MaxLabels rejects runs that would turn on more than limit labels
func MaxLabels(limit int) ValidateFunc {
	return func(_ context.Context, labels []string) (Decision, error) {
		if len(labels) > limit {
			return DecisionReject, nil
		}
		return DecisionNone, nil
	}
}

// AllowedLabels rejects runs that would turn on a label outside the list
func AllowedLabels(allowed ...string) ValidateFunc {
	return func(_ context.Context, labels []string) (Decision, error) {
		for _, label := range labels {
			if !containsFold(allowed, label) {
				return DecisionReject, nil
			}
		}
		return DecisionApprove, nil
	}
}

// ChainValidators runs validators in order and stops at the first rejection or error
func ChainValidators(validators ...ValidateFunc) ValidateFunc {
	return func(ctx context.Context, labels []string) (Decision, error) {
		decision := DecisionNone
		for _, validate := range validators {
			if validate == nil {
				continue
			}
			d, err := validate(ctx, labels)
			if err != nil || d == DecisionReject {
				return d, err
			}
			if d == DecisionApprove {
				decision = d
			}
		}
		return decision, nil
	}
}

func containsFold(list []string, s string) bool {
	for _, item := range list {
		if strings.EqualFold(strings.TrimSpace(item), s) {
			return true
		}
	}
	return false
}
