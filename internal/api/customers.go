package api

import (
	"context"

	"github.com/gosuda/agrotrack/internal/domain"
)

// MarketCustomers is the /marketcustomer resource.
type MarketCustomers struct {
	r resource[domain.MarketCustomer]
}

func (m *MarketCustomers) FindAll(ctx context.Context) ([]domain.MarketCustomer, error) {
	return m.r.findAll(ctx, "MarketCustomers.FindAll")
}

func (m *MarketCustomers) FindByID(ctx context.Context, id int64) (*domain.MarketCustomer, error) {
	return m.r.findByID(ctx, "MarketCustomers.FindByID", id)
}

func (m *MarketCustomers) Save(ctx context.Context, c domain.MarketCustomer) (*domain.MarketCustomer, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return m.r.send(ctx, "MarketCustomers.Save", false, c)
}

func (m *MarketCustomers) Update(ctx context.Context, c domain.MarketCustomer) (*domain.MarketCustomer, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return m.r.send(ctx, "MarketCustomers.Update", true, c)
}

func (m *MarketCustomers) Delete(ctx context.Context, id int64) (string, error) {
	return m.r.remove(ctx, "MarketCustomers.Delete", id)
}

func (m *MarketCustomers) Restore(ctx context.Context, id int64) (*domain.MarketCustomer, error) {
	return m.r.restore(ctx, "MarketCustomers.Restore", id)
}

func (m *MarketCustomers) FindByState(ctx context.Context, state domain.State) ([]domain.MarketCustomer, error) {
	return m.r.findByState(ctx, "MarketCustomers.FindByState", state)
}

func (m *MarketCustomers) FindByDocumentNumber(ctx context.Context, number string) (*domain.MarketCustomer, error) {
	return m.r.one(ctx, "MarketCustomers.FindByDocumentNumber", m.r.path("document", number))
}

func (m *MarketCustomers) FindByMarketName(ctx context.Context, market string) ([]domain.MarketCustomer, error) {
	return m.r.list(ctx, "MarketCustomers.FindByMarketName", m.r.path("market", market))
}

func (m *MarketCustomers) FindByCity(ctx context.Context, city string) ([]domain.MarketCustomer, error) {
	return m.r.list(ctx, "MarketCustomers.FindByCity", m.r.path("city", city))
}

func (m *MarketCustomers) SearchByName(ctx context.Context, name string) ([]domain.MarketCustomer, error) {
	return m.r.list(ctx, "MarketCustomers.SearchByName", m.r.path("search", name))
}

// SupermarketCustomers is the /supermarketcustomer resource.
type SupermarketCustomers struct {
	r resource[domain.SupermarketCustomer]
}

func (s *SupermarketCustomers) FindAll(ctx context.Context) ([]domain.SupermarketCustomer, error) {
	return s.r.findAll(ctx, "SupermarketCustomers.FindAll")
}

func (s *SupermarketCustomers) FindByID(ctx context.Context, id int64) (*domain.SupermarketCustomer, error) {
	return s.r.findByID(ctx, "SupermarketCustomers.FindByID", id)
}

func (s *SupermarketCustomers) Save(ctx context.Context, c domain.SupermarketCustomer) (*domain.SupermarketCustomer, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return s.r.send(ctx, "SupermarketCustomers.Save", false, c)
}

func (s *SupermarketCustomers) Update(ctx context.Context, c domain.SupermarketCustomer) (*domain.SupermarketCustomer, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return s.r.send(ctx, "SupermarketCustomers.Update", true, c)
}

func (s *SupermarketCustomers) Delete(ctx context.Context, id int64) (string, error) {
	return s.r.remove(ctx, "SupermarketCustomers.Delete", id)
}

func (s *SupermarketCustomers) Restore(ctx context.Context, id int64) (*domain.SupermarketCustomer, error) {
	return s.r.restore(ctx, "SupermarketCustomers.Restore", id)
}

func (s *SupermarketCustomers) FindByState(ctx context.Context, state domain.State) ([]domain.SupermarketCustomer, error) {
	return s.r.findByState(ctx, "SupermarketCustomers.FindByState", state)
}

func (s *SupermarketCustomers) FindByRUC(ctx context.Context, ruc string) (*domain.SupermarketCustomer, error) {
	return s.r.one(ctx, "SupermarketCustomers.FindByRUC", s.r.path("ruc", ruc))
}

func (s *SupermarketCustomers) FindByCity(ctx context.Context, city string) ([]domain.SupermarketCustomer, error) {
	return s.r.list(ctx, "SupermarketCustomers.FindByCity", s.r.path("city", city))
}
