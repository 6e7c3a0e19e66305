package api

import (
	"context"
	"net/http"

	"github.com/pribylovaa/modverse-client/internal/client"
	"github.com/pribylovaa/modverse-client/internal/models"
)

type Mods struct {
	c *client.Client
}

func (m *Mods) List(ctx context.Context, q models.ModQuery) (*models.Envelope[models.List[models.Mod]], error) {
	return get[models.List[models.Mod]](ctx, m.c, "mod", q.Values())
}

func (m *Mods) Get(ctx context.Context, modID uint64) (*models.Envelope[models.Mod], error) {
	return get[models.Mod](ctx, m.c, "mod/"+id(modID), nil)
}

func (m *Mods) Create(ctx context.Context, req models.CreateModRequest) (*models.Raw, error) {
	return send(ctx, m.c, http.MethodPost, "mod", req)
}

func (m *Mods) Update(ctx context.Context, modID uint64, req models.UpdateModRequest) (*models.Raw, error) {
	return send(ctx, m.c, http.MethodPut, "mod/"+id(modID), req)
}

func (m *Mods) Delete(ctx context.Context, modID uint64) (*models.Raw, error) {
	return send(ctx, m.c, http.MethodDelete, "mod/"+id(modID), nil)
}

// Versions — версии файлов мода.
type Versions struct {
	c *client.Client
}

func (v *Versions) List(ctx context.Context, modID uint64) (*models.Envelope[models.List[models.ModVersion]], error) {
	return get[models.List[models.ModVersion]](ctx, v.c, "mod_version/"+id(modID), nil)
}

func (v *Versions) Create(ctx context.Context, req models.CreateModVersionRequest) (*models.Raw, error) {
	return send(ctx, v.c, http.MethodPost, "mod_version", req)
}

// CountDownload учитывает скачивание версии; data — новое число скачиваний.
func (v *Versions) CountDownload(ctx context.Context, modID, versionID uint64) (*models.Envelope[uint64], error) {
	return client.Call[uint64](ctx, v.c, client.Request{
		Method: http.MethodPost,
		Path:   "mod_version/count/" + id(modID) + "/" + id(versionID),
	})
}

func (v *Versions) Delete(ctx context.Context, versionID uint64) (*models.Raw, error) {
	return send(ctx, v.c, http.MethodDelete, "mod_version/"+id(versionID), nil)
}

// Likes — лайки мода текущим пользователем.
type Likes struct {
	c *client.Client
}

func (l *Likes) Like(ctx context.Context, modID uint64) (*models.Raw, error) {
	return send(ctx, l.c, http.MethodPost, "mod/"+id(modID)+"/likes", nil)
}

func (l *Likes) Unlike(ctx context.Context, modID uint64) (*models.Raw, error) {
	return send(ctx, l.c, http.MethodDelete, "mod/"+id(modID)+"/likes", nil)
}

// Status — лайкнул ли текущий пользователь мод.
func (l *Likes) Status(ctx context.Context, modID uint64) (*models.Envelope[bool], error) {
	return get[bool](ctx, l.c, "mod/"+id(modID)+"/likes", nil)
}
