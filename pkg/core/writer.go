package core

import "context"

// DryRunWriter logs label updates instead of performing them
type DryRunWriter struct {
	Logger Logger
}

func (w DryRunWriter) ReplaceLabels(_ context.Context, ref TargetRef, labels []string) error {
	w.logger().Infof("[dry run] would replace labels of %s with %v", ref, labels)
	return nil
}

func (w DryRunWriter) AddLabels(_ context.Context, ref TargetRef, labels []string) error {
	w.logger().Infof("[dry run] would add labels %v to %s", labels, ref)
	return nil
}

func (w DryRunWriter) logger() Logger {
	if w.Logger == nil {
		return nopLogger{}
	}
	return w.Logger
}
