package forum

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/socialsense/social-sense-backend/internal/models"
)

const nameCacheTTL = 10 * time.Minute

// UserLookup is the user-directory slice the resolver needs.
type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// NameResolver maps an author id to a display name for forum listings. The
// enrichment is cosmetic: every lookup strategy is best-effort and the
// resolver always produces some name, falling back to a placeholder derived
// from the id.
type NameResolver struct {
	users UserLookup
	rdb   *redis.Client // optional; nil disables caching
}

func NewNameResolver(users UserLookup, rdb *redis.Client) *NameResolver {
	return &NameResolver{users: users, rdb: rdb}
}

// Resolve never fails; errors degrade to the placeholder name.
func (r *NameResolver) Resolve(ctx context.Context, userID string) string {
	if name := r.cached(ctx, userID); name != "" {
		return name
	}

	name := r.lookup(ctx, userID)
	r.cache(ctx, userID, name)
	return name
}

func (r *NameResolver) lookup(ctx context.Context, userID string) string {
	if user, err := r.users.GetUserByID(ctx, userID); err == nil && user != nil {
		return user.Username
	}
	// Legacy posts recorded the username itself as the author id.
	if user, err := r.users.GetUserByUsername(ctx, userID); err == nil && user != nil {
		return user.Username
	}
	return placeholder(userID)
}

func placeholder(userID string) string {
	if len(userID) > 8 {
		userID = userID[:8]
	}
	return "user_" + userID
}

func (r *NameResolver) cached(ctx context.Context, userID string) string {
	if r.rdb == nil {
		return ""
	}
	name, err := r.rdb.Get(ctx, "uname:"+userID).Result()
	if err != nil {
		return ""
	}
	return name
}

func (r *NameResolver) cache(ctx context.Context, userID, name string) {
	if r.rdb == nil {
		return
	}
	r.rdb.Set(ctx, "uname:"+userID, name, nameCacheTTL)
}
