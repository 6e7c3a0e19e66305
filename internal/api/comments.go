package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/pribylovaa/modverse-client/internal/client"
	"github.com/pribylovaa/modverse-client/internal/models"
)

type Comments struct {
	c *client.Client
}

// ForMod — дерево комментариев мода.
func (cm *Comments) ForMod(ctx context.Context, modID uint64) (*models.Envelope[models.List[models.Comment]], error) {
	return get[models.List[models.Comment]](ctx, cm.c, "comment/mod/"+id(modID), nil)
}

func (cm *Comments) Create(ctx context.Context, req models.CreateCommentRequest) (*models.Raw, error) {
	return send(ctx, cm.c, http.MethodPost, "comment", req)
}

func (cm *Comments) Delete(ctx context.Context, commentID uint64) (*models.Raw, error) {
	return send(ctx, cm.c, http.MethodDelete, "comment/"+id(commentID), nil)
}

// List — все комментарии с фильтром (админка).
func (cm *Comments) List(ctx context.Context, q models.CommentQuery) (*models.Envelope[models.List[models.Comment]], error) {
	return get[models.List[models.Comment]](ctx, cm.c, "comment", q.Values())
}

func (cm *Comments) Get(ctx context.Context, commentID uint64) (*models.Envelope[models.Comment], error) {
	return get[models.Comment](ctx, cm.c, "comment/"+id(commentID), nil)
}

type Reports struct {
	c *client.Client
}

func (r *Reports) Create(ctx context.Context, req models.CreateReportRequest) (*models.Raw, error) {
	return send(ctx, r.c, http.MethodPost, "report", req)
}

func (r *Reports) List(ctx context.Context, q models.ReportQuery) (*models.Envelope[models.List[models.Report]], error) {
	return get[models.List[models.Report]](ctx, r.c, "report", q.Values())
}

func (r *Reports) Get(ctx context.Context, reportID uint64) (*models.Envelope[models.Report], error) {
	return get[models.Report](ctx, r.c, "report/"+id(reportID), nil)
}

func (r *Reports) Update(ctx context.Context, reportID uint64, req models.UpdateReportRequest) (*models.Raw, error) {
	return send(ctx, r.c, http.MethodPut, "report/"+id(reportID), req)
}

func (r *Reports) Delete(ctx context.Context, reportID uint64) (*models.Raw, error) {
	return send(ctx, r.c, http.MethodDelete, "report/"+id(reportID), nil)
}

type Categories struct {
	c *client.Client
}

func (cg *Categories) List(ctx context.Context, q models.CategoryQuery) (*models.Envelope[models.List[models.Category]], error) {
	return get[models.List[models.Category]](ctx, cg.c, "categories", q.Values())
}

func (cg *Categories) Create(ctx context.Context, req models.CategoryRequest) (*models.Raw, error) {
	return send(ctx, cg.c, http.MethodPost, "categories", req)
}

func (cg *Categories) Update(ctx context.Context, categoryID uint64, req models.CategoryRequest) (*models.Raw, error) {
	return send(ctx, cg.c, http.MethodPut, "categories/"+id(categoryID), req)
}

func (cg *Categories) Delete(ctx context.Context, categoryID uint64) (*models.Raw, error) {
	return send(ctx, cg.c, http.MethodDelete, "categories/"+id(categoryID), nil)
}

type Favorites struct {
	c *client.Client
}

func (f *Favorites) Add(ctx context.Context, modID uint64) (*models.Raw, error) {
	return send(ctx, f.c, http.MethodPost, "mod_favorite", models.ModFavoriteRequest{ModID: modID})
}

func (f *Favorites) Remove(ctx context.Context, modID uint64) (*models.Raw, error) {
	return send(ctx, f.c, http.MethodDelete, "mod_favorite/"+id(modID), nil)
}

func (f *Favorites) List(ctx context.Context, q models.ModFavoriteQuery) (*models.Envelope[models.List[models.ModFavorite]], error) {
	return get[models.List[models.ModFavorite]](ctx, f.c, "mod_favorite", q.Values())
}

// Check — находится ли мод в избранном текущего пользователя.
func (f *Favorites) Check(ctx context.Context, modID uint64) (*models.Envelope[bool], error) {
	return get[bool](ctx, f.c, "mod_favorite/check", url.Values{"mod_id": {id(modID)}})
}
