package build

import (
	"fmt"

	"github.com/distribution/reference"
)

// ImageRef is a container image reference serialized as name:tag.
type ImageRef struct {
	Name string
	Tag  string
}

func (r ImageRef) String() string {
	return r.Name + ":" + r.Tag
}

// ParseImageRef parses and validates name[:tag]. A missing tag means
// "latest". The name is kept as written, not normalized.
func ParseImageRef(s string) (ImageRef, error) {
	parsed, err := reference.Parse(s)
	if err != nil {
		return ImageRef{}, fmt.Errorf("invalid image reference %q: %w", s, err)
	}
	named, ok := parsed.(reference.Named)
	if !ok {
		return ImageRef{}, fmt.Errorf("image reference %q has no repository name", s)
	}
	if _, digested := parsed.(reference.Digested); digested {
		return ImageRef{}, fmt.Errorf("image reference %q must be tagged, not pinned by digest", s)
	}
	ref := ImageRef{Name: named.Name(), Tag: "latest"}
	if tagged, ok := parsed.(reference.Tagged); ok {
		ref.Tag = tagged.Tag()
	}
	return ref, nil
}
