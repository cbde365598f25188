package client

import (
	"context"
	"net/http"

	"github.com/distributed-hotel-saga/shared-domain/retry"
	"github.com/distributed-hotel-saga/shared-domain/types"
)

type InventoryClient struct {
	base baseClient
}

func NewInventoryClient(baseURL string, httpClient *http.Client, policy retry.Policy) *InventoryClient {
	return &InventoryClient{base: newBaseClient(baseURL, httpClient, policy)}
}

func (c *InventoryClient) Reserve(ctx context.Context, req types.ReserveRequest) (*types.ReserveResponse, error) {
	var resp types.ReserveResponse
	if err := c.base.call(ctx, http.MethodPost, "/api/v1/reservations", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *InventoryClient) Confirm(ctx context.Context, bookingID string) error {
	return c.base.call(ctx, http.MethodPost, "/api/v1/reservations/"+bookingID+"/confirm", nil, nil)
}

func (c *InventoryClient) Release(ctx context.Context, req types.ReleaseRequest) error {
	return c.base.call(ctx, http.MethodPost, "/api/v1/reservations/release", req, nil)
}
