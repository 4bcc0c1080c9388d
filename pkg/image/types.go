package image

import "fmt"

// Reference is the canonical identity of a container image: a repository
// (which may include a registry host and port) and a tag. Two references
// are equal iff both fields match exactly; no semantic version comparison
// is performed anywhere in the pipeline.
type Reference struct {
	Repository string `json:"repository"`
	Tag        string `json:"tag"`
}

// String returns the repository:tag form of the reference.
func (r Reference) String() string {
	return fmt.Sprintf("%s:%s", r.Repository, r.Tag)
}

// Equal reports exact field equality.
func (r Reference) Equal(other Reference) bool {
	return r.Repository == other.Repository && r.Tag == other.Tag
}
