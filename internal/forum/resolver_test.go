package forum

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/socialsense/social-sense-backend/internal/models"
)

func TestResolveStrategies(t *testing.T) {
	lookup := &fakeUserLookup{
		byID:       map[string]*models.User{"uid-1": {ID: "uid-1", Username: "ahsen"}},
		byUsername: map[string]*models.User{"deniz": {ID: "uid-2", Username: "deniz"}},
	}
	r := NewNameResolver(lookup, nil)
	ctx := context.Background()

	tests := []struct {
		name   string
		userID string
		want   string
	}{
		{"by store id", "uid-1", "ahsen"},
		{"legacy username as id", "deniz", "deniz"},
		{"unknown long id", "507f1f77bcf86cd799439011", "user_507f1f77"},
		{"unknown short id", "x1", "user_x1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Resolve(ctx, tt.userID))
		})
	}
}
