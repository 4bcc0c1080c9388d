// Package locate scans rendered chart manifests and raw values sources for
// container image references.
//
// The scanning is deliberately line-oriented rather than a structured YAML
// walk: rendered output mixes multiple document boundaries and
// partially-templated content that a document parser would choke on. Each
// heuristic lives behind its own named pass so any one of them can be
// replaced independently.
package locate

import (
	"bufio"
	"regexp"
	"sort"
	"strings"

	"github.com/chartsync/chartsync/pkg/log"
)

// containerWindow bounds how many lines after a containers: key are
// examined for image: entries.
const containerWindow = 20

var (
	// imageLinePattern matches an image: key with optional list-item
	// marker and arbitrary indentation, capturing the value.
	imageLinePattern = regexp.MustCompile(`^\s*(?:-\s+)?image:\s*(.+)$`)

	// repositoryLinePattern matches repository: keys in values sources.
	repositoryLinePattern = regexp.MustCompile(`^\s*(?:-\s+)?repository:\s*(.+)$`)

	// tagLinePattern matches tag: keys in values sources.
	tagLinePattern = regexp.MustCompile(`^\s*(?:-\s+)?tag:\s*(.+)$`)

	// containersKeyPattern matches a line opening a containers block
	// (containers:, initContainers:, ephemeralContainers:).
	containersKeyPattern = regexp.MustCompile(`^\s*(?:-\s+)?\w*[cC]ontainers:\s*$`)
)

// Locate runs all passes over the rendered manifest text and the chart's
// values source, returning the union of candidate raw image strings,
// deduplicated and sorted. A chart yielding zero candidates is a valid,
// non-error outcome.
func Locate(manifestText, valuesText string) []string {
	seen := map[string]struct{}{}

	for _, candidate := range directPass(manifestText) {
		admit(seen, candidate)
	}
	for _, candidate := range containerPass(manifestText) {
		admit(seen, candidate)
	}
	for _, candidate := range valuesPass(valuesText) {
		admit(seen, candidate)
	}

	out := make([]string, 0, len(seen))
	for candidate := range seen {
		out = append(out, candidate)
	}
	sort.Strings(out)
	return out
}

// admit applies the shared candidate filter: empty strings and anything
// still containing an unresolved template delimiter are dropped.
func admit(seen map[string]struct{}, candidate string) {
	if candidate == "" {
		return
	}
	if strings.Contains(candidate, "{{") || strings.Contains(candidate, "}}") {
		log.Debug("skipping templated candidate", "candidate", candidate)
		return
	}
	seen[candidate] = struct{}{}
}

// directPass collects the value of every line matching an image: key in
// the rendered manifest stream.
func directPass(text string) []string {
	var out []string
	forEachLine(text, func(line string) {
		if m := imageLinePattern.FindStringSubmatch(line); m != nil {
			out = append(out, stripQuotes(m[1]))
		}
	})
	return out
}

// containerPass examines a bounded window of lines following any
// containers: key for image: entries. The value must contain a "/" to
// guard against false positives on unrelated fields named image.
func containerPass(text string) []string {
	lines := splitLines(text)
	var out []string
	for i, line := range lines {
		if !containersKeyPattern.MatchString(line) {
			continue
		}
		end := i + 1 + containerWindow
		if end > len(lines) {
			end = len(lines)
		}
		for _, inner := range lines[i+1 : end] {
			m := imageLinePattern.FindStringSubmatch(inner)
			if m == nil {
				continue
			}
			value := stripQuotes(m[1])
			if strings.Contains(value, "/") {
				out = append(out, value)
			}
		}
	}
	return out
}

// valuesPass reconstructs references from the chart's raw values source:
// every repository: value becomes a candidate (the normalizer pairs it
// with the default tag), and image: values containing a "/" are collected
// directly. tag: values are gathered but not positionally paired with the
// repository list; the pairing ambiguity is left to the default-tag rule.
func valuesPass(text string) []string {
	var out []string
	var tags []string
	forEachLine(text, func(line string) {
		if m := repositoryLinePattern.FindStringSubmatch(line); m != nil {
			out = append(out, stripQuotes(m[1]))
			return
		}
		if m := tagLinePattern.FindStringSubmatch(line); m != nil {
			tags = append(tags, stripQuotes(m[1]))
			return
		}
		if m := imageLinePattern.FindStringSubmatch(line); m != nil {
			value := stripQuotes(m[1])
			if strings.Contains(value, "/") {
				out = append(out, value)
			}
		}
	})
	if len(tags) > 0 {
		log.Debug("values source tag entries not positionally paired", "count", len(tags))
	}
	return out
}

func forEachLine(text string, fn func(string)) {
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		fn(scanner.Text())
	}
}

func splitLines(text string) []string {
	return strings.Split(text, "\n")
}

// stripQuotes trims surrounding whitespace and a single layer of matching
// quotes from a scanned value.
func stripQuotes(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			s = s[1 : len(s)-1]
		}
	}
	return strings.TrimSpace(s)
}
