package api

import (
	"context"
	"net/http"

	"github.com/pribylovaa/modverse-client/internal/client"
	"github.com/pribylovaa/modverse-client/internal/models"
)

type Games struct {
	c *client.Client
}

func (g *Games) List(ctx context.Context, q models.GameQuery) (*models.Envelope[models.List[models.Game]], error) {
	return get[models.List[models.Game]](ctx, g.c, "game", q.Values())
}

func (g *Games) Get(ctx context.Context, gameID uint64) (*models.Envelope[models.Game], error) {
	return get[models.Game](ctx, g.c, "game/"+id(gameID), nil)
}

func (g *Games) Create(ctx context.Context, req models.CreateGameRequest) (*models.Raw, error) {
	return send(ctx, g.c, http.MethodPost, "game", req)
}

func (g *Games) Update(ctx context.Context, gameID uint64, req models.UpdateGameRequest) (*models.Raw, error) {
	return send(ctx, g.c, http.MethodPut, "game/"+id(gameID), req)
}

func (g *Games) Delete(ctx context.Context, gameID uint64) (*models.Raw, error) {
	return send(ctx, g.c, http.MethodDelete, "game/"+id(gameID), nil)
}
