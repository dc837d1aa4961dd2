package core

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigurationError reports missing or malformed label configuration
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return "invalid configuration: " + e.Reason
	}
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// RuleSpec is one configured rule. A spec with Match set is a pattern rule,
// otherwise Name is compared to item text ignoring case.
type RuleSpec struct {
	Name  string
	Match string
	Label string
}

// UnmarshalYAML accepts either a plain name or a {match, label} mapping
func (r *RuleSpec) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		r.Name = node.Value
		return nil
	case yaml.MappingNode:
		var raw struct {
			Name  string `yaml:"name"`
			Match string `yaml:"match"`
			Label string `yaml:"label"`
		}
		if err := node.Decode(&raw); err != nil {
			return err
		}
		r.Name, r.Match, r.Label = raw.Name, raw.Match, raw.Label
		return nil
	default:
		return fmt.Errorf("line %d: rule must be a name or a mapping with match and label", node.Line)
	}
}

// Options is the caller-supplied label configuration
type Options struct {
	// Labels holds plain names or name to label pairs.
	Labels []RuleSpec
	// Rules holds plain names or pattern rules.
	Rules    []RuleSpec
	Validate ValidateFunc
}

// LabelRule maps item text to a label. Several rules may share a label;
// resolved label sets are deduplicated.
type LabelRule struct {
	Label string
	match func(string) bool
}

// Matches reports whether the rule accepts the item text
func (r LabelRule) Matches(text string) bool {
	return r.match(text)
}

// ParseRuleSpecs decodes a rule set from an action input. The input may be a
// YAML sequence of names and {match, label} mappings, a YAML mapping of item
// name to label, or a comma separated list of names.
func ParseRuleSpecs(field, input string) ([]RuleSpec, error) {
	if strings.TrimSpace(input) == "" {
		return nil, nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(input), &doc); err != nil {
		return nil, &ConfigurationError{Field: field, Reason: err.Error()}
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}

	root := doc.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		var specs []RuleSpec
		if err := root.Decode(&specs); err != nil {
			return nil, &ConfigurationError{Field: field, Reason: err.Error()}
		}
		return specs, nil
	case yaml.MappingNode:
		if field == "rules" && hasKey(root, "match") {
			var spec RuleSpec
			if err := root.Decode(&spec); err != nil {
				return nil, &ConfigurationError{Field: field, Reason: err.Error()}
			}
			return []RuleSpec{spec}, nil
		}

		specs := make([]RuleSpec, 0, len(root.Content)/2)
		for i := 0; i+1 < len(root.Content); i += 2 {
			key, value := root.Content[i], root.Content[i+1]
			if value.Kind != yaml.ScalarNode {
				return nil, &ConfigurationError{
					Field:  field,
					Reason: fmt.Sprintf("line %d: label for %q must be a string", value.Line, key.Value),
				}
			}
			specs = append(specs, RuleSpec{Name: key.Value, Label: value.Value})
		}
		return specs, nil
	case yaml.ScalarNode:
		var specs []RuleSpec
		for _, name := range strings.Split(root.Value, ",") {
			if name = strings.TrimSpace(name); name != "" {
				specs = append(specs, RuleSpec{Name: name})
			}
		}
		return specs, nil
	default:
		return nil, &ConfigurationError{Field: field, Reason: "unsupported format"}
	}
}

// NormalizeRules turns the configured labels and rules into an ordered rule
// set, one rule per configured entry. When several rules accept the same
// item text the first one in configuration order wins.
func NormalizeRules(opts *Options) ([]LabelRule, error) {
	if opts == nil {
		return nil, &ConfigurationError{Reason: "options are required"}
	}
	if opts.Labels == nil && opts.Rules == nil {
		return nil, &ConfigurationError{Reason: `please specify the "labels" or "rules" option`}
	}

	specs := make([]RuleSpec, 0, len(opts.Labels)+len(opts.Rules))
	specs = append(specs, opts.Labels...)
	specs = append(specs, opts.Rules...)

	rules := make([]LabelRule, 0, len(specs))

	for i, spec := range specs {
		label, matcher, err := compileRule(spec)
		if err != nil {
			return nil, &ConfigurationError{Field: fmt.Sprintf("rule %d", i+1), Reason: err.Error()}
		}

		rules = append(rules, LabelRule{Label: label, match: matcher})
	}

	return rules, nil
}

func compileRule(spec RuleSpec) (string, func(string) bool, error) {
	label := strings.TrimSpace(spec.Label)

	if spec.Match != "" {
		if label == "" {
			return "", nil, fmt.Errorf("pattern %q has no label", spec.Match)
		}
		re, err := regexp.Compile("(?i)" + spec.Match)
		if err != nil {
			return "", nil, fmt.Errorf("invalid pattern %q: %w", spec.Match, err)
		}
		return label, re.MatchString, nil
	}

	name := strings.TrimSpace(spec.Name)
	if name == "" {
		return "", nil, fmt.Errorf("rule has neither a name nor a pattern")
	}
	if label == "" {
		label = name
	}

	return label, func(text string) bool {
		return strings.EqualFold(strings.TrimSpace(text), name)
	}, nil
}

func hasKey(node *yaml.Node, key string) bool {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return true
		}
	}
	return false
}
