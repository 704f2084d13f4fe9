package api

import (
	"context"

	"github.com/skni-kod/kolo-rest-api/models"
)

type keyType string

const (
	userKey       keyType = "user"
	permissionKey keyType = "permission"
)

// ctxWithUser stores the authenticated user of the request.
func ctxWithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// ctxGetUser returns the authenticated user, nil for anonymous requests.
func ctxGetUser(ctx context.Context) *models.User {
	user, _ := ctx.Value(userKey).(*models.User)
	return user
}

func ctxWithPermission(ctx context.Context, perm Permission) context.Context {
	return context.WithValue(ctx, permissionKey, perm)
}

func ctxGetPermission(ctx context.Context) Permission {
	perm, _ := ctx.Value(permissionKey).(Permission)
	return perm
}
