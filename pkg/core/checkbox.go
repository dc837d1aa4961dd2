package core

import (
	"bufio"
	"regexp"
	"strings"
)

// checkboxRegex matches a whole line such as "  - [x] Item" or "- [ ] Item".
// Group 1 is the box content, group 2 the item name.
var checkboxRegex = regexp.MustCompile(`^[\t ]*-[\t ]*\[(x|X|[\t ]+)\][\t ]*(.+?)[\t ]*$`)

// ExtractCheckboxes scans body text for markdown task-list lines
func ExtractCheckboxes(body string) []CheckboxItem {
	var items []CheckboxItem

	scanner := bufio.NewScanner(strings.NewReader(body))
	scanner.Buffer(make([]byte, 0, 64*1024), len(body)+1)

	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")

		match := checkboxRegex.FindStringSubmatch(line)
		if match == nil || strings.TrimSpace(match[2]) == "" {
			continue
		}

		items = append(items, CheckboxItem{
			Text:    match[2],
			Checked: strings.EqualFold(match[1], "x"),
		})
	}

	return items
}

// SplitCheckboxes separates item names by state, keeping body order
func SplitCheckboxes(items []CheckboxItem) (checked, unchecked []string) {
	for _, item := range items {
		if item.Checked {
			checked = append(checked, item.Text)
		} else {
			unchecked = append(unchecked, item.Text)
		}
	}
	return checked, unchecked
}
