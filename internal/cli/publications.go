package cli

import (
	"context"
	"strconv"
	"strings"

	"github.com/gosuda/agrotrack/internal/domain"
)

func (a *App) printPublications(pubs []domain.ProductPublication) error {
	return a.emit(pubs, []string{"ID", "PRODUCTO", "VENDEDOR", "COSECHA", "FECHA", "ESTADO"}, func(add func(...string)) {
		for _, p := range pubs {
			name := p.ProductName
			if p.Emoji != "" {
				name = p.Emoji + " " + name
			}
			add(itoa(p.ID), name, itoa(p.SellerID), itoa(p.HarvestID), p.PublicationDate, p.State.Label())
		}
	})
}

func (a *App) publicationsList(args []string) (action, error) {
	fs := a.flags("publications list")
	seller := fs.Int64("seller", 0, "only publications of this seller")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := noArgs(fs); err != nil {
		return nil, err
	}

	return func(ctx context.Context) error {
		var (
			pubs []domain.ProductPublication
			err  error
		)
		if *seller != 0 {
			pubs, err = a.api.Publications.FindBySeller(ctx, *seller)
		} else {
			pubs, err = a.api.Publications.FindAll(ctx)
		}
		if err != nil {
			return err
		}
		return a.printPublications(pubs)
	}, nil
}

func (a *App) publicationsGet(args []string) (action, error) {
	fs := a.flags("publications get")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	id, err := parseID(fs)
	if err != nil {
		return nil, err
	}

	return func(ctx context.Context) error {
		p, err := a.api.Publications.FindByID(ctx, id)
		if err != nil {
			return err
		}
		return a.printPublications([]domain.ProductPublication{*p})
	}, nil
}

// parseLine reads "selection:crates:kg:price", e.g. "1ra:10:200:3.5".
func parseLine(v string) (domain.PublicationLine, error) {
	parts := strings.Split(v, ":")
	if len(parts) != 4 {
		return domain.PublicationLine{}, usagef("line %q must be selection:crates:kg:price", v)
	}
	qty, err := strconv.Atoi(parts[1])
	if err != nil {
		return domain.PublicationLine{}, usagef("line %q: crates must be an integer", v)
	}
	kg, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return domain.PublicationLine{}, usagef("line %q: kg must be a number", v)
	}
	price, err := strconv.ParseFloat(parts[3], 64)
	if err != nil {
		return domain.PublicationLine{}, usagef("line %q: price must be a number", v)
	}
	return domain.PublicationLine{
		SelectionType: parts[0],
		Quantity:      qty,
		TotalWeight:   kg,
		PricePerKg:    price,
	}, nil
}

func (a *App) publicationsCreate(args []string) (action, error) {
	fs := a.flags("publications create")
	seller := fs.Int64("seller", 0, "seller id")
	category := fs.Int64("category", 0, "category id")
	harvest := fs.Int64("harvest", 0, "harvest id")
	product := fs.String("product", "", "product name")
	emoji := fs.String("emoji", "", "product emoji")
	var lines []domain.PublicationLine
	fs.Func("line", "selection:crates:kg:price, repeatable", func(v string) error {
		l, err := parseLine(v)
		if err != nil {
			return err
		}
		lines = append(lines, l)
		return nil
	})
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := noArgs(fs); err != nil {
		return nil, err
	}

	req := domain.PublicationRequest{
		Publication: domain.PublicationHeader{
			SellerID:    *seller,
			CategoryID:  *category,
			HarvestID:   *harvest,
			ProductName: strings.TrimSpace(*product),
			Emoji:       *emoji,
		},
		Details: lines,
	}

	return func(ctx context.Context) error {
		p, err := a.api.Publications.Save(ctx, req)
		if err != nil {
			return err
		}
		a.success(ctx, "Publicación creada exitosamente")
		return a.printPublications([]domain.ProductPublication{*p})
	}, nil
}
