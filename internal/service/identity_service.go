// Package service contains the application's business logic layer.
package service

import (
	"context"
	"errors"

	"tribune/internal/cache"
	"tribune/internal/privileges"
	"tribune/internal/repository"

	"gorm.io/gorm"
)

// IdentityService resolves the role facts for a viewer. Handlers call it
// exactly once per request and pass the resulting value down; nothing below
// the handler layer looks roles up again.
type IdentityService struct {
	userRepo repository.UserRepository
}

// cachedFacts is the Redis shape of a resolved fact set. Maps don't
// round-trip through JSON as sets, so the category ids travel as a slice.
type cachedFacts struct {
	UID         uint   `json:"uid"`
	IsAdmin     bool   `json:"is_admin"`
	IsGlobalMod bool   `json:"is_global_mod"`
	CategoryIDs []uint `json:"category_ids"`
}

func NewIdentityService(userRepo repository.UserRepository) *IdentityService {
	return &IdentityService{userRepo: userRepo}
}

// Resolve builds the RoleFacts snapshot for the given uid. Uid 0 and
// unknown uids resolve to guest facts; a deleted account's stale token
// grants nothing.
func (s *IdentityService) Resolve(ctx context.Context, uid uint) (privileges.RoleFacts, error) {
	if uid == 0 {
		return privileges.Guest(), nil
	}

	var cached cachedFacts
	err := cache.CacheAside(ctx, cache.UserRolesKey(uid), &cached, cache.UserRolesTTL, func() error {
		user, err := s.userRepo.GetByID(ctx, uid)
		if err != nil {
			return err
		}
		ids, err := s.userRepo.GetModeratedCategoryIDs(ctx, uid)
		if err != nil {
			return err
		}
		cached = cachedFacts{
			UID:         user.ID,
			IsAdmin:     user.IsAdmin,
			IsGlobalMod: user.IsGlobalMod,
			CategoryIDs: ids,
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return privileges.Guest(), nil
		}
		return privileges.Guest(), err
	}

	facts := privileges.RoleFacts{
		UID:         cached.UID,
		IsAdmin:     cached.IsAdmin,
		IsGlobalMod: cached.IsGlobalMod,
	}
	if len(cached.CategoryIDs) > 0 {
		facts.ModeratedCategories = make(map[uint]struct{}, len(cached.CategoryIDs))
		for _, cid := range cached.CategoryIDs {
			facts.ModeratedCategories[cid] = struct{}{}
		}
	}
	return facts, nil
}
