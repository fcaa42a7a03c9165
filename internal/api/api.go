// Package api holds typed clients for the sales backend resources. Every
// call goes through the shared HTTP client, so failures arrive already
// classified (and, unless quiet, already presented).
package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/gosuda/agrotrack/internal/domain"
	"github.com/gosuda/agrotrack/internal/httpclient"
)

// Doer is the subset of *httpclient.Client the resource clients need.
type Doer interface {
	GetJSON(ctx context.Context, path string, out any, opts ...httpclient.CallOption) error
	PostJSON(ctx context.Context, path string, in, out any, opts ...httpclient.CallOption) error
	PutJSON(ctx context.Context, path string, in, out any, opts ...httpclient.CallOption) error
	PatchJSON(ctx context.Context, path string, in, out any, opts ...httpclient.CallOption) error
	PatchText(ctx context.Context, path string, opts ...httpclient.CallOption) (string, error)
}

var _ Doer = (*httpclient.Client)(nil)

// Resource paths relative to the API base URL.
const (
	PathSeller              = "/seller"
	PathHarvest             = "/harvest"
	PathMarketCustomer      = "/marketcustomer"
	PathSupermarketCustomer = "/supermarketcustomer"
	PathPublication         = "/publication"
)

// API bundles every resource client over one Doer.
type API struct {
	Sellers      *Sellers
	Harvests     *Harvests
	Markets      *MarketCustomers
	Supermarkets *SupermarketCustomers
	Publications *Publications
	Contacts     *ContactBook
}

// New creates the resource clients.
func New(c Doer) *API {
	a := &API{
		Sellers:      &Sellers{resource[domain.Seller]{c: c, base: PathSeller}},
		Harvests:     &Harvests{resource[domain.Harvest]{c: c, base: PathHarvest}},
		Markets:      &MarketCustomers{resource[domain.MarketCustomer]{c: c, base: PathMarketCustomer}},
		Supermarkets: &SupermarketCustomers{resource[domain.SupermarketCustomer]{c: c, base: PathSupermarketCustomer}},
		Publications: &Publications{c: c},
	}
	a.Contacts = NewContactBook(a.Supermarkets, a.Markets)
	return a
}

// resource implements the operations every backend resource shares.
type resource[T any] struct {
	c    Doer
	base string
}

func (r resource[T]) path(parts ...string) string {
	p := r.base
	for _, part := range parts {
		p += "/" + url.PathEscape(part)
	}
	return p
}

func (r resource[T]) list(ctx context.Context, op, path string, opts ...httpclient.CallOption) ([]T, error) {
	var out []T
	if err := r.c.GetJSON(ctx, path, &out, opts...); err != nil {
		return nil, fmt.Errorf("api.%s: %w", op, err)
	}
	return out, nil
}

func (r resource[T]) one(ctx context.Context, op, path string, opts ...httpclient.CallOption) (*T, error) {
	var out T
	if err := r.c.GetJSON(ctx, path, &out, opts...); err != nil {
		return nil, fmt.Errorf("api.%s: %w", op, err)
	}
	return &out, nil
}

func (r resource[T]) send(ctx context.Context, op string, put bool, in any) (*T, error) {
	var (
		out T
		err error
	)
	if put {
		err = r.c.PutJSON(ctx, r.base, in, &out)
	} else {
		err = r.c.PostJSON(ctx, r.base, in, &out)
	}
	if err != nil {
		return nil, fmt.Errorf("api.%s: %w", op, err)
	}
	return &out, nil
}

func (r resource[T]) findAll(ctx context.Context, op string) ([]T, error) {
	return r.list(ctx, op, r.base)
}

func (r resource[T]) findByID(ctx context.Context, op string, id int64) (*T, error) {
	return r.one(ctx, op, r.path(formatID(id)))
}

func (r resource[T]) findByState(ctx context.Context, op string, state domain.State) ([]T, error) {
	return r.list(ctx, op, r.path("state", string(state)))
}

// remove soft-deletes a row. The backend answers with plain text.
func (r resource[T]) remove(ctx context.Context, op string, id int64) (string, error) {
	msg, err := r.c.PatchText(ctx, r.path("delete", formatID(id)))
	if err != nil {
		return "", fmt.Errorf("api.%s: %w", op, err)
	}
	return msg, nil
}

func (r resource[T]) restore(ctx context.Context, op string, id int64) (*T, error) {
	var out T
	if err := r.c.PatchJSON(ctx, r.path("restore", formatID(id)), struct{}{}, &out); err != nil {
		return nil, fmt.Errorf("api.%s: %w", op, err)
	}
	return &out, nil
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
