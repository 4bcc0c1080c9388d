// Package image parses raw image strings into canonical (repository, tag)
// references, the unit the pipeline deduplicates and schedules on.
package image

import (
	"fmt"
	"strings"

	"github.com/distribution/reference"

	"github.com/chartsync/chartsync/pkg/log"
)

const (
	// DefaultTag is used when no tag is present in the input.
	DefaultTag = "latest"

	// TagSeparator separates the repository from the tag.
	TagSeparator = ":"

	// Template markers that identify an unresolved Helm placeholder.
	templateOpen  = "{{"
	templateClose = "}}"
)

// Parse normalizes a raw image string into a Reference.
//
// The tag is whatever follows the last ":" that appears after the last "/",
// so a registry port is never misread as a tag ("host:5000/repo" keeps its
// full repository). When no such colon exists the tag defaults to "latest".
//
// Empty input and input still containing unresolved template markers are
// rejected; such entries are placeholders that must be filtered out, never
// mirrored. The split result is validated with the distribution/reference
// library so heuristic scanner noise cannot reach the mirror stage.
func Parse(raw string) (*Reference, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, ErrEmptyReference
	}
	if strings.Contains(trimmed, templateOpen) || strings.Contains(trimmed, templateClose) {
		log.Debug("rejecting templated image reference", "raw", raw)
		return nil, fmt.Errorf("%w: %s", ErrTemplatedReference, raw)
	}

	repository, tag := splitTag(trimmed)
	if repository == "" {
		return nil, fmt.Errorf("%w: %s", ErrInvalidReference, raw)
	}
	if tag == "" {
		// A trailing colon with nothing after it.
		return nil, fmt.Errorf("%w: empty tag in %s", ErrInvalidReference, raw)
	}
	if strings.ContainsAny(repository, " \t") {
		return nil, fmt.Errorf("%w: whitespace in repository %q", ErrInvalidReference, repository)
	}

	if err := validate(repository, tag); err != nil {
		log.Debug("image reference failed validation", "raw", raw, "error", err)
		return nil, fmt.Errorf("%w: %s", ErrInvalidReference, raw)
	}

	return &Reference{Repository: repository, Tag: tag}, nil
}

// splitTag separates repository and tag on the last colon that appears
// after the last slash. Returns tag "latest" when no tag colon exists.
func splitTag(s string) (repository, tag string) {
	lastSlash := strings.LastIndex(s, "/")
	lastColon := strings.LastIndex(s, TagSeparator)
	if lastColon > lastSlash {
		return s[:lastColon], s[lastColon+1:]
	}
	return s, DefaultTag
}

// validate runs the split result through the distribution/reference
// grammar. The repository keeps its original spelling; the library is used
// only to reject candidates it cannot express.
func validate(repository, tag string) error {
	named, err := reference.ParseNormalizedNamed(repository)
	if err != nil {
		return fmt.Errorf("repository %q: %w", repository, err)
	}
	if _, err := reference.WithTag(named, tag); err != nil {
		return fmt.Errorf("tag %q: %w", tag, err)
	}
	return nil
}
