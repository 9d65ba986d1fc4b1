// Package policy holds the read-visibility and mutation-permission rules for
// posts and comments. Every function is pure: callers pass the viewer, a
// snapshot of the record and the current time, and get a verdict with no side
// effects. Results must not be cached across requests.
package policy

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/avasileva/blogicum-backend/models"
)

// Resource identifies the kind of record a mutation check applies to.
type Resource int

const (
	ResourcePost Resource = iota
	ResourceComment
)

// Visible reports whether viewer may read post at the given instant.
//
// The author always sees their own posts, drafts and future-dated ones
// included. Everyone else sees a post only when it is published, its category
// is published and its pub date has passed. The post's Category must be
// loaded; a missing category association is treated as not visible.
//
// When Visible gates a detail fetch, a false result must surface as "not
// found" rather than "forbidden" so hidden posts cannot be probed for.
func Visible(viewer *models.User, post *models.Post, now time.Time) bool {
	if post == nil {
		return false
	}
	if viewer != nil && viewer.ID == post.AuthorID {
		return true
	}
	if !post.IsPublished || post.PubDate.After(now) {
		return false
	}
	return post.Category != nil && post.Category.IsPublished
}

// CanMutate reports whether actor may update or delete a record owned by
// authorID. Only the author and superusers qualify; an anonymous actor never
// does.
func CanMutate(actor *models.User, authorID uuid.UUID) bool {
	if actor == nil {
		return false
	}
	return actor.ID == authorID || actor.IsSuperuser
}

// RedirectTarget is the fallback destination for a failed CanMutate check.
// The caller routes there instead of performing the mutation; both posts and
// comments fall back to the parent post's detail resource.
func RedirectTarget(kind Resource, postID uuid.UUID) string {
	switch kind {
	case ResourcePost, ResourceComment:
		return fmt.Sprintf("/posts/%s", postID)
	default:
		return "/posts"
	}
}
