package entity

import "time"

// PendingPost is a stored, mutable wrapper around an Artifact awaiting an
// operator decision. It is owned exclusively by the pending-post store from
// creation until publish or cancel; callers always receive copies, never the
// stored value itself.
type PendingPost struct {
	// ID is an opaque unique identifier assigned by the store.
	ID string

	Artifact *Artifact

	// Parts holds the ordered delivery segments of the rendered text.
	// A single-part post carries exactly one element equal to the
	// artifact's rendered text.
	Parts []string

	IsMultiPart bool

	CreatedAt time.Time
}

// Clone returns a deep copy of the pending post.
func (p *PendingPost) Clone() *PendingPost {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Artifact = p.Artifact.Clone()
	cp.Parts = append([]string(nil), p.Parts...)
	return &cp
}

// DisplayText returns the text an operator sees for the post: the first part
// for multi-part posts, otherwise the rendered text.
func (p *PendingPost) DisplayText() string {
	if len(p.Parts) > 0 {
		return p.Parts[0]
	}
	if p.Artifact != nil {
		return p.Artifact.RenderedText
	}
	return ""
}
