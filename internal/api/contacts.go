package api

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/gosuda/agrotrack/internal/domain"
)

// ContactBook presents market and supermarket customers as one list.
type ContactBook struct {
	supermarkets *SupermarketCustomers
	markets      *MarketCustomers
}

// NewContactBook joins the two customer resources.
func NewContactBook(supermarkets *SupermarketCustomers, markets *MarketCustomers) *ContactBook {
	return &ContactBook{supermarkets: supermarkets, markets: markets}
}

// LoadAll fetches both customer lists concurrently and merges them. It fails
// as a whole if either list fails; the first failure cancels the other.
func (b *ContactBook) LoadAll(ctx context.Context) ([]domain.Contact, error) {
	var (
		supermarkets []domain.SupermarketCustomer
		markets      []domain.MarketCustomer
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		supermarkets, err = b.supermarkets.FindAll(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		markets, err = b.markets.FindAll(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("api.ContactBook.LoadAll: %w", err)
	}

	return domain.MergeContacts(supermarkets, markets), nil
}

// Save creates c when it has no id and updates it otherwise.
func (b *ContactBook) Save(ctx context.Context, c domain.Contact) (domain.Contact, error) {
	if c.Type == domain.ContactMarket {
		m := c.Market()
		var (
			saved *domain.MarketCustomer
			err   error
		)
		if c.ID == 0 {
			saved, err = b.markets.Save(ctx, m)
		} else {
			saved, err = b.markets.Update(ctx, m)
		}
		if err != nil {
			return domain.Contact{}, err
		}
		return domain.ContactFromMarket(*saved), nil
	}

	s := c.Supermarket()
	var (
		saved *domain.SupermarketCustomer
		err   error
	)
	if c.ID == 0 {
		saved, err = b.supermarkets.Save(ctx, s)
	} else {
		saved, err = b.supermarkets.Update(ctx, s)
	}
	if err != nil {
		return domain.Contact{}, err
	}
	return domain.ContactFromSupermarket(*saved), nil
}

// Delete deactivates the customer behind c.
func (b *ContactBook) Delete(ctx context.Context, c domain.Contact) (string, error) {
	if c.Type == domain.ContactMarket {
		return b.markets.Delete(ctx, c.ID)
	}
	return b.supermarkets.Delete(ctx, c.ID)
}

// Restore reactivates the customer behind c.
func (b *ContactBook) Restore(ctx context.Context, c domain.Contact) (domain.Contact, error) {
	if c.Type == domain.ContactMarket {
		m, err := b.markets.Restore(ctx, c.ID)
		if err != nil {
			return domain.Contact{}, err
		}
		return domain.ContactFromMarket(*m), nil
	}
	s, err := b.supermarkets.Restore(ctx, c.ID)
	if err != nil {
		return domain.Contact{}, err
	}
	return domain.ContactFromSupermarket(*s), nil
}
