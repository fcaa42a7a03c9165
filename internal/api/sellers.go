package api

import (
	"context"
	"fmt"
	"strings"

	"github.com/gosuda/agrotrack/internal/apperr"
	"github.com/gosuda/agrotrack/internal/domain"
	"github.com/gosuda/agrotrack/internal/httpclient"
)

// Sellers is the /seller resource.
type Sellers struct {
	r resource[domain.Seller]
}

func (s *Sellers) FindAll(ctx context.Context) ([]domain.Seller, error) {
	return s.r.findAll(ctx, "Sellers.FindAll")
}

func (s *Sellers) FindByID(ctx context.Context, id int64) (*domain.Seller, error) {
	return s.r.findByID(ctx, "Sellers.FindByID", id)
}

func (s *Sellers) Save(ctx context.Context, seller domain.Seller) (*domain.Seller, error) {
	if err := seller.Validate(); err != nil {
		return nil, err
	}
	return s.r.send(ctx, "Sellers.Save", false, seller)
}

func (s *Sellers) Update(ctx context.Context, seller domain.Seller) (*domain.Seller, error) {
	if err := seller.Validate(); err != nil {
		return nil, err
	}
	return s.r.send(ctx, "Sellers.Update", true, seller)
}

// Delete deactivates a seller and returns the backend's confirmation text.
func (s *Sellers) Delete(ctx context.Context, id int64) (string, error) {
	return s.r.remove(ctx, "Sellers.Delete", id)
}

func (s *Sellers) Restore(ctx context.Context, id int64) (*domain.Seller, error) {
	return s.r.restore(ctx, "Sellers.Restore", id)
}

func (s *Sellers) FindByState(ctx context.Context, state domain.State) ([]domain.Seller, error) {
	return s.r.findByState(ctx, "Sellers.FindByState", state)
}

func (s *Sellers) FindByDNI(ctx context.Context, dni string, opts ...httpclient.CallOption) (*domain.Seller, error) {
	return s.r.one(ctx, "Sellers.FindByDNI", s.r.path("dni", dni), opts...)
}

func (s *Sellers) FindByEmail(ctx context.Context, email string) (*domain.Seller, error) {
	return s.r.one(ctx, "Sellers.FindByEmail", s.r.path("email", email))
}

func (s *Sellers) SearchByName(ctx context.Context, name string) ([]domain.Seller, error) {
	return s.r.list(ctx, "Sellers.SearchByName", s.r.path("search", name))
}

// Register validates seller, makes sure no seller holds the same DNI and
// saves it. The DNI probe is quiet: its not-found answer is expected.
func (s *Sellers) Register(ctx context.Context, seller domain.Seller) (*domain.Seller, error) {
	seller.FirstName = strings.TrimSpace(seller.FirstName)
	seller.LastName = strings.TrimSpace(seller.LastName)
	seller.DNI = strings.TrimSpace(seller.DNI)
	if err := seller.Validate(); err != nil {
		return nil, err
	}

	_, err := s.FindByDNI(ctx, seller.DNI, httpclient.Quiet())
	switch {
	case err == nil:
		return nil, apperr.NewConflict(fmt.Sprintf("Ya existe un vendedor con el DNI %s", seller.DNI), "dni")
	case apperr.KindOf(err) != apperr.KindNotFound:
		return nil, fmt.Errorf("api.Sellers.Register: %w", err)
	}

	return s.Save(ctx, seller)
}
