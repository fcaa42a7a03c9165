package cli

import (
	"context"
	"flag"

	"github.com/gosuda/agrotrack/internal/domain"
)

const questionDeactivateSeller = "¿Está seguro de que desea desactivar este vendedor?"

func (a *App) printSellers(sellers []domain.Seller) error {
	return a.emit(sellers, []string{"ID", "NOMBRE", "DNI", "EMAIL", "TELÉFONO", "ESTADO"}, func(add func(...string)) {
		for _, s := range sellers {
			add(itoa(s.ID), s.FullName(), s.DNI, s.Email, s.Phone, s.State.Label())
		}
	})
}

func (a *App) sellersList(args []string) (action, error) {
	fs := a.flags("sellers list")
	filter := fs.String("filter", string(domain.SellerFilterAll), "all, active, inactive or alphabetical")
	search := fs.String("search", "", "match names, DNI or email")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := noArgs(fs); err != nil {
		return nil, err
	}
	switch f := domain.SellerFilter(*filter); f {
	case domain.SellerFilterAll, domain.SellerFilterActive, domain.SellerFilterInactive, domain.SellerFilterAlphabetical:
	default:
		return nil, usagef("unknown filter %q", *filter)
	}

	return func(ctx context.Context) error {
		sellers, err := a.api.Sellers.FindAll(ctx)
		if err != nil {
			return err
		}
		return a.printSellers(domain.FilterSellers(sellers, domain.SellerFilter(*filter), *search))
	}, nil
}

func (a *App) sellersGet(args []string) (action, error) {
	fs := a.flags("sellers get")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	id, err := parseID(fs)
	if err != nil {
		return nil, err
	}

	return func(ctx context.Context) error {
		s, err := a.api.Sellers.FindByID(ctx, id)
		if err != nil {
			return err
		}
		return a.printSellers([]domain.Seller{*s})
	}, nil
}

func (a *App) sellersFind(args []string) (action, error) {
	fs := a.flags("sellers find")
	dni := fs.String("dni", "", "exact DNI")
	email := fs.String("email", "", "exact email")
	name := fs.String("name", "", "name fragment")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := noArgs(fs); err != nil {
		return nil, err
	}

	set := 0
	for _, v := range []string{*dni, *email, *name} {
		if v != "" {
			set++
		}
	}
	if set != 1 {
		return nil, usagef("exactly one of -dni, -email or -name is required")
	}

	return func(ctx context.Context) error {
		switch {
		case *dni != "":
			s, err := a.api.Sellers.FindByDNI(ctx, *dni)
			if err != nil {
				return err
			}
			return a.printSellers([]domain.Seller{*s})
		case *email != "":
			s, err := a.api.Sellers.FindByEmail(ctx, *email)
			if err != nil {
				return err
			}
			return a.printSellers([]domain.Seller{*s})
		default:
			sellers, err := a.api.Sellers.SearchByName(ctx, *name)
			if err != nil {
				return err
			}
			return a.printSellers(sellers)
		}
	}, nil
}

type sellerFlags struct {
	first, last, dni, email, phone *string
}

func bindSellerFlags(fs *flag.FlagSet) sellerFlags {
	return sellerFlags{
		first: fs.String("first", "", "first name"),
		last:  fs.String("last", "", "last name"),
		dni:   fs.String("dni", "", "8-digit DNI"),
		email: fs.String("email", "", "email address"),
		phone: fs.String("phone", "", "phone number"),
	}
}

// apply copies the flags that were given on the command line onto s.
func (f sellerFlags) apply(fs *flag.FlagSet, s *domain.Seller) {
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "first":
			s.FirstName = *f.first
		case "last":
			s.LastName = *f.last
		case "dni":
			s.DNI = *f.dni
		case "email":
			s.Email = *f.email
		case "phone":
			s.Phone = *f.phone
		}
	})
}

func (a *App) sellersRegister(args []string) (action, error) {
	fs := a.flags("sellers register")
	f := bindSellerFlags(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := noArgs(fs); err != nil {
		return nil, err
	}

	var seller domain.Seller
	f.apply(fs, &seller)

	return func(ctx context.Context) error {
		saved, err := a.api.Sellers.Register(ctx, seller)
		if err != nil {
			return err
		}
		a.success(ctx, "Vendedor agregado exitosamente")
		return a.printSellers([]domain.Seller{*saved})
	}, nil
}

func (a *App) sellersUpdate(args []string) (action, error) {
	fs := a.flags("sellers update")
	f := bindSellerFlags(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	id, err := parseID(fs)
	if err != nil {
		return nil, err
	}

	return func(ctx context.Context) error {
		current, err := a.api.Sellers.FindByID(ctx, id)
		if err != nil {
			return err
		}
		f.apply(fs, current)

		saved, err := a.api.Sellers.Update(ctx, *current)
		if err != nil {
			return err
		}
		a.success(ctx, "Vendedor actualizado exitosamente")
		return a.printSellers([]domain.Seller{*saved})
	}, nil
}

func (a *App) sellersDelete(args []string) (action, error) {
	fs := a.flags("sellers delete")
	yes := fs.Bool("yes", false, "do not ask for confirmation")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	id, err := parseID(fs)
	if err != nil {
		return nil, err
	}

	return func(ctx context.Context) error {
		ok, err := a.confirm(ctx, *yes, questionDeactivateSeller)
		if err != nil || !ok {
			return err
		}
		if _, err := a.api.Sellers.Delete(ctx, id); err != nil {
			return err
		}
		a.success(ctx, "Vendedor desactivado exitosamente")
		return nil
	}, nil
}

func (a *App) sellersRestore(args []string) (action, error) {
	fs := a.flags("sellers restore")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	id, err := parseID(fs)
	if err != nil {
		return nil, err
	}

	return func(ctx context.Context) error {
		s, err := a.api.Sellers.Restore(ctx, id)
		if err != nil {
			return err
		}
		a.success(ctx, "Vendedor restaurado exitosamente")
		return a.printSellers([]domain.Seller{*s})
	}, nil
}
