package api

import (
	"context"

	"github.com/crag-collective/logbook-engine/internal/models"
)

// The authenticated ApiClient rides the request context between the
// auth middleware and the permission checks.

type ctxKey int

const clientKey ctxKey = iota

func withClient(ctx context.Context, client *models.ApiClient) context.Context {
	return context.WithValue(ctx, clientKey, client)
}

func clientFrom(ctx context.Context) *models.ApiClient {
	client, _ := ctx.Value(clientKey).(*models.ApiClient)
	return client
}
