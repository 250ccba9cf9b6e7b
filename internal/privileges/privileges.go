// Package privileges is the post/topic visibility and authorization engine.
//
// It is deliberately free of I/O: every function is a pure decision over a
// RoleFacts value resolved once per request (see service.Identity) and the
// records the caller already loaded. Persistence, transport and session
// handling are collaborators; this package only says yes or no.
package privileges

import "tribune/internal/models"

// RoleFacts is the per-request snapshot of a viewer's role memberships.
// Policy functions never go looking for roles themselves; whoever builds
// the request resolves facts once and passes them down.
type RoleFacts struct {
	UID         uint
	IsAdmin     bool
	IsGlobalMod bool
	// ModeratedCategories holds the category ids the user moderates.
	ModeratedCategories map[uint]struct{}
}

// Guest is the fact set for an unauthenticated viewer (uid 0).
func Guest() RoleFacts {
	return RoleFacts{}
}

// IsCategoryMod reports whether the viewer moderates the given category.
func (f RoleFacts) IsCategoryMod(cid uint) bool {
	_, ok := f.ModeratedCategories[cid]
	return ok
}

// IsAdminOrMod reports whether the viewer holds any privileged role for the
// given category scope: administrator, global moderator, or moderator of
// that category. A category with no assigned moderators elevates nobody.
func (f RoleFacts) IsAdminOrMod(cid uint) bool {
	return f.IsAdmin || f.IsGlobalMod || f.IsCategoryMod(cid)
}

// IsSelf reports whether the viewer is the given author. Guests are never
// self.
func (f RoleFacts) IsSelf(authorUID uint) bool {
	return f.UID != 0 && f.UID == authorUID
}

// CanView decides read access to a single post. Normal posts are visible
// to everyone including guests. Mod-only posts are visible to privileged
// roles only; the gate is role-based, not ownership-based, so an
// unprivileged author is denied their own mod-only post.
func CanView(post *models.Post, facts RoleFacts) bool {
	if !post.ModOnly {
		return true
	}
	return facts.IsAdminOrMod(post.CategoryID)
}

// CanSetModOnly decides whether the viewer may set or clear the mod-only
// flag on a post in the given category.
func CanSetModOnly(cid uint, facts RoleFacts) bool {
	return facts.IsAdminOrMod(cid)
}

// CanSolve decides whether the actor may flip the solved state of a topic:
// the topic owner, or any privileged role for the topic's category.
func CanSolve(topic *models.Topic, facts RoleFacts) bool {
	return topic.IsOwner(facts.UID) || facts.IsAdminOrMod(topic.CategoryID)
}

// PostPrivileges is the structured, side-effect-free answer to "what may
// this viewer do with this post". The topics:read key mirrors the read
// flag; both are false exactly when CanView denies.
type PostPrivileges struct {
	Read         bool `json:"read"`
	TopicsRead   bool `json:"topics:read"`
	IsModOnly    bool `json:"isModOnly"`
	IsAdminOrMod bool `json:"isAdminOrMod"`
	SelfPost     bool `json:"selfPost"`
}

// Get computes privilege flags for one post.
func Get(post *models.Post, facts RoleFacts) PostPrivileges {
	read := CanView(post, facts)
	return PostPrivileges{
		Read:         read,
		TopicsRead:   read,
		IsModOnly:    post.ModOnly.Bool(),
		IsAdminOrMod: facts.IsAdminOrMod(post.CategoryID),
		SelfPost:     facts.IsSelf(post.UserID),
	}
}

// Filter returns the viewable subsequence of posts, preserving input order.
func Filter(posts []*models.Post, facts RoleFacts) []*models.Post {
	out := make([]*models.Post, 0, len(posts))
	for _, p := range posts {
		if CanView(p, facts) {
			out = append(out, p)
		}
	}
	return out
}

// FilterPids returns the ids of the viewable posts, preserving input order.
// Ids the loader could not resolve are dropped.
func FilterPids(pids []uint, byID map[uint]*models.Post, facts RoleFacts) []uint {
	out := make([]uint, 0, len(pids))
	for _, pid := range pids {
		p, ok := byID[pid]
		if !ok {
			continue
		}
		if CanView(p, facts) {
			out = append(out, pid)
		}
	}
	return out
}

// ApplyRedaction hides mod-only content on an in-memory view when the
// privileges deny it: the body becomes the fixed placeholder and the author
// signature is cleared. It never touches stored state; callers pass a copy
// destined for output.
func ApplyRedaction(post *models.Post, privs PostPrivileges) {
	if !post.ModOnly.Bool() || privs.IsAdminOrMod {
		return
	}
	post.Content = models.HiddenContentPlaceholder
	if post.User != nil {
		post.User.Signature = ""
	}
}
