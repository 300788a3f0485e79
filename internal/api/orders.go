package api

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/shutterdesk/core/pkg/handler"
	"github.com/shutterdesk/core/pkg/store"
	"github.com/shutterdesk/core/pkg/validator"
)

func (a *api) listOrders(ctx handler.Context, _ struct{}) handler.Response {
	orders, err := a.orders.List(ctx)
	if err != nil {
		return fail(err)
	}
	if orders == nil {
		orders = []store.Order{}
	}
	return handler.JSON(orders, handler.WithJSONMeta(map[string]any{"count": len(orders)}))
}

type orderRequest struct {
	ID uuid.UUID `path:"id"`
}

func (a *api) getOrder(ctx handler.Context, req orderRequest) handler.Response {
	o, err := a.orders.Get(ctx, req.ID)
	if err != nil {
		return fail(err)
	}
	return handler.JSON(o)
}

type createOrderRequest struct {
	Number     string `json:"number"`
	ClientName string `json:"client_name"`
	TotalCents int64  `json:"total_cents"`
}

func (a *api) createOrder(ctx handler.Context, req createOrderRequest) handler.Response {
	if err := validator.Apply(
		validator.RequiredString("number", req.Number),
		validator.MaxLenString("number", req.Number, 32),
		validator.RequiredString("client_name", req.ClientName),
		validator.MaxLenString("client_name", req.ClientName, 200),
		validator.Rule{
			Check: func() bool { return req.TotalCents >= 0 },
			Error: validator.ValidationError{Field: "total_cents", Message: "must not be negative"},
		},
	); err != nil {
		return fail(err)
	}

	o := &store.Order{Number: req.Number, ClientName: req.ClientName, TotalCents: req.TotalCents}
	if err := a.orders.Create(ctx, o); err != nil {
		return fail(err)
	}
	return handler.JSON(o, handler.WithJSONStatus(http.StatusCreated))
}
