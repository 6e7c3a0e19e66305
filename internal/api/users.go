package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/pribylovaa/modverse-client/internal/client"
	"github.com/pribylovaa/modverse-client/internal/models"
	"github.com/pribylovaa/modverse-client/internal/session"
)

var withMod = url.Values{"withMod": {"true"}}

type Users struct {
	c    *client.Client
	sess *session.Session
}

func (u *Users) Get(ctx context.Context, userID uint64) (*models.Envelope[models.User], error) {
	return get[models.User](ctx, u.c, "user/"+id(userID), nil)
}

func (u *Users) GetWithMods(ctx context.Context, userID uint64) (*models.Envelope[models.UserWithMods], error) {
	return get[models.UserWithMods](ctx, u.c, "user/"+id(userID), withMod)
}

// Self возвращает профиль текущего пользователя и кэширует его в сессии.
func (u *Users) Self(ctx context.Context) (*models.Envelope[models.User], error) {
	env, err := get[models.User](ctx, u.c, "user/my/profile", nil)
	if err != nil {
		return nil, err
	}
	if env.OK() {
		u.sess.SetProfile(&env.Data)
	}

	return env, nil
}

func (u *Users) SelfWithMods(ctx context.Context) (*models.Envelope[models.UserWithMods], error) {
	return get[models.UserWithMods](ctx, u.c, "user/my/profile", withMod)
}

func (u *Users) ByNameWithMods(ctx context.Context, name string) (*models.Envelope[models.UserWithMods], error) {
	return get[models.UserWithMods](ctx, u.c, "user/name/"+url.PathEscape(name), nil)
}

func (u *Users) UpdateProfile(ctx context.Context, req models.UpdateUserProfileRequest) (*models.Raw, error) {
	return send(ctx, u.c, http.MethodPut, "user/profile", req)
}

func (u *Users) Delete(ctx context.Context, userID uint64) (*models.Raw, error) {
	return send(ctx, u.c, http.MethodDelete, "user/"+id(userID), nil)
}

// List — список пользователей (админка).
func (u *Users) List(ctx context.Context, q models.UserQuery) (*models.Envelope[models.List[models.User]], error) {
	return get[models.List[models.User]](ctx, u.c, "user", q.Values())
}

// UpdateState меняет роль/статус пользователя (админка).
func (u *Users) UpdateState(ctx context.Context, userID uint64, req models.UpdateUserStateRequest) (*models.Raw, error) {
	return send(ctx, u.c, http.MethodPut, "user/state/"+id(userID), req)
}
