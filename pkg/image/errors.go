package image

import "errors"

// Sentinel errors returned by Parse. All of them mark a candidate string as
// malformed; callers that only need the class can use errors.Is against
// ErrMalformedReference.
var (
	// ErrMalformedReference is the base class for every parse failure.
	ErrMalformedReference = errors.New("malformed image reference")

	// ErrEmptyReference indicates an empty or whitespace-only input.
	ErrEmptyReference = errors.New("empty image reference")

	// ErrTemplatedReference indicates the input still contains unresolved
	// Helm template markers and is a placeholder, not a real image.
	ErrTemplatedReference = errors.New("image reference contains template markers")

	// ErrInvalidReference indicates the input is not a valid image
	// reference (bad characters, empty tag, whitespace in the repository).
	ErrInvalidReference = errors.New("invalid image reference")
)

// IsMalformed reports whether err belongs to the malformed-reference class.
func IsMalformed(err error) bool {
	return errors.Is(err, ErrEmptyReference) ||
		errors.Is(err, ErrTemplatedReference) ||
		errors.Is(err, ErrInvalidReference) ||
		errors.Is(err, ErrMalformedReference)
}
