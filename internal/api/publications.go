package api

import (
	"context"
	"fmt"

	"github.com/gosuda/agrotrack/internal/domain"
)

// Publications is the /publication resource.
type Publications struct {
	c Doer
}

func (p *Publications) r() resource[domain.ProductPublication] {
	return resource[domain.ProductPublication]{c: p.c, base: PathPublication}
}

func (p *Publications) FindAll(ctx context.Context) ([]domain.ProductPublication, error) {
	return p.r().findAll(ctx, "Publications.FindAll")
}

func (p *Publications) FindByID(ctx context.Context, id int64) (*domain.ProductPublication, error) {
	return p.r().findByID(ctx, "Publications.FindByID", id)
}

func (p *Publications) FindBySeller(ctx context.Context, sellerID int64) ([]domain.ProductPublication, error) {
	return p.r().list(ctx, "Publications.FindBySeller", p.r().path("seller", formatID(sellerID)))
}

// Save publishes req with per-line averages filled in.
func (p *Publications) Save(ctx context.Context, req domain.PublicationRequest) (*domain.ProductPublication, error) {
	req = req.WithAverages()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var out domain.ProductPublication
	if err := p.c.PostJSON(ctx, PathPublication, req, &out); err != nil {
		return nil, fmt.Errorf("api.Publications.Save: %w", err)
	}
	return &out, nil
}
