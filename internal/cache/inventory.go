package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix      = "user:%d"
	UserRolesKeyPrefix = "user:%d:roles"
	PostKeyPrefix      = "post:%d"
	TopicKeyPrefix     = "topic:%d"
	TopicPostsPrefix   = "topic:%d:posts"
	CategoryKeyPrefix  = "category:%d"
)

const (
	UserTTL      = 5 * time.Minute
	UserRolesTTL = 1 * time.Minute
	PostTTL      = 30 * time.Minute
	TopicTTL     = 10 * time.Minute
	CategoryTTL  = 10 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

// UserRolesKey caches the resolved role facts for a user. Short TTL so a
// granted or revoked moderator assignment takes effect quickly.
func UserRolesKey(userID uint) string {
	return fmt.Sprintf(UserRolesKeyPrefix, userID)
}

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

func TopicKey(topicID uint) string {
	return fmt.Sprintf(TopicKeyPrefix, topicID)
}

func TopicPostsKey(topicID uint) string {
	return fmt.Sprintf(TopicPostsPrefix, topicID)
}

func CategoryKey(categoryID uint) string {
	return fmt.Sprintf(CategoryKeyPrefix, categoryID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
	Invalidate(ctx, UserRolesKey(userID))
}

func InvalidatePost(ctx context.Context, postID uint) {
	Invalidate(ctx, PostKey(postID))
}

func InvalidateTopic(ctx context.Context, topicID uint) {
	Invalidate(ctx, TopicKey(topicID))
	Invalidate(ctx, TopicPostsKey(topicID))
}

func InvalidateCategory(ctx context.Context, categoryID uint) {
	Invalidate(ctx, CategoryKey(categoryID))
}
