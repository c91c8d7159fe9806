// Package policy decides whether the current actor may mutate a post or a
// comment. Authorization is ownership-based: only the author touches their
// own content.
package policy

import (
	"blogicum/internal/models"
)

type Verdict int

const (
	// Allowed means the actor owns the resource.
	Allowed Verdict = iota
	// Forbidden means the actor is signed in but is not the owner.
	Forbidden
	// RequiresAuth means there is no signed-in actor; the handler should
	// redirect to the login page instead of judging ownership.
	RequiresAuth
)

func (v Verdict) String() string {
	switch v {
	case Allowed:
		return "allowed"
	case Forbidden:
		return "forbidden"
	case RequiresAuth:
		return "requires_auth"
	}
	return "unknown"
}

// CanModify returns the verdict for actor mutating a resource owned by
// ownerID. A nil actor is an anonymous request.
func CanModify(actor *models.User, ownerID uint) Verdict {
	if actor == nil {
		return RequiresAuth
	}
	if actor.ID != ownerID {
		return Forbidden
	}
	return Allowed
}
