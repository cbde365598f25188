package client

import (
	"context"
	"net/http"

	"github.com/distributed-hotel-saga/shared-domain/retry"
	"github.com/distributed-hotel-saga/shared-domain/types"
)

type PaymentClient struct {
	base baseClient
}

func NewPaymentClient(baseURL string, httpClient *http.Client, policy retry.Policy) *PaymentClient {
	return &PaymentClient{base: newBaseClient(baseURL, httpClient, policy)}
}

// Charge returns a decoded response even on a decline — a decline is a
// definite business outcome carried in the body (status=FAILED), not a
// transport-level error. Only idempotency conflicts, not-found, other 4xx
// rejections, and unclear/transport outcomes come back as an error here.
func (c *PaymentClient) Charge(ctx context.Context, req types.ChargeRequest) (*types.ChargeResponse, error) {
	var resp types.ChargeResponse
	if err := c.base.call(ctx, http.MethodPost, "/api/v1/payments", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
