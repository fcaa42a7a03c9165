package cli

import (
	"context"

	"github.com/gosuda/agrotrack/internal/domain"
)

const questionDeleteContact = "¿Está seguro de que desea eliminar este contacto?"

func (a *App) printContacts(contacts []domain.Contact) error {
	return a.emit(contacts, []string{"ID", "TIPO", "NOMBRE", "CIUDAD", "DISTRITO", "TELÉFONO", "ESTADO"}, func(add func(...string)) {
		for _, c := range contacts {
			state := domain.StateActive
			if c.Deleted {
				state = domain.StateInactive
			}
			add(itoa(c.ID), string(c.Type), c.Name, c.City, c.District, c.Phone, state.Label())
		}
	})
}

func parseContactType(v string) (domain.ContactType, error) {
	switch t := domain.ContactType(v); t {
	case domain.ContactSupermarket, domain.ContactMarket:
		return t, nil
	default:
		return "", usagef("-type must be %q or %q, got %q", domain.ContactSupermarket, domain.ContactMarket, v)
	}
}

func (a *App) contactsList(args []string) (action, error) {
	fs := a.flags("contacts list")
	typ := fs.String("type", "", "supermercado or mercado; both when empty")
	search := fs.String("search", "", "match name, city or district; includes deleted contacts")
	sortBy := fs.String("sort", "", "nombre, ciudad or distrito")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := noArgs(fs); err != nil {
		return nil, err
	}

	q := domain.ContactQuery{Search: *search, Sort: domain.ContactSort(*sortBy)}
	if *typ != "" {
		t, err := parseContactType(*typ)
		if err != nil {
			return nil, err
		}
		q.Type = t
	}
	switch q.Sort {
	case domain.ContactSortNone, domain.ContactSortName, domain.ContactSortCity, domain.ContactSortDistrict:
	default:
		return nil, usagef("unknown sort %q", *sortBy)
	}

	return func(ctx context.Context) error {
		contacts, err := a.api.Contacts.LoadAll(ctx)
		if err != nil {
			return err
		}
		return a.printContacts(domain.FilterContacts(contacts, q))
	}, nil
}

func (a *App) contactArgs(name string, args []string, withYes bool) (domain.Contact, bool, error) {
	fs := a.flags(name)
	typ := fs.String("type", "", "supermercado or mercado")
	var yes *bool
	if withYes {
		yes = fs.Bool("yes", false, "do not ask for confirmation")
	}
	if err := fs.Parse(args); err != nil {
		return domain.Contact{}, false, err
	}
	t, err := parseContactType(*typ)
	if err != nil {
		return domain.Contact{}, false, err
	}
	id, err := parseID(fs)
	if err != nil {
		return domain.Contact{}, false, err
	}
	return domain.Contact{ID: id, Type: t}, yes != nil && *yes, nil
}

func (a *App) contactsDelete(args []string) (action, error) {
	c, yes, err := a.contactArgs("contacts delete", args, true)
	if err != nil {
		return nil, err
	}

	return func(ctx context.Context) error {
		ok, err := a.confirm(ctx, yes, questionDeleteContact)
		if err != nil || !ok {
			return err
		}
		msg, err := a.api.Contacts.Delete(ctx, c)
		if err != nil {
			return err
		}
		a.success(ctx, msg)
		return nil
	}, nil
}

func (a *App) contactsRestore(args []string) (action, error) {
	c, _, err := a.contactArgs("contacts restore", args, false)
	if err != nil {
		return nil, err
	}

	return func(ctx context.Context) error {
		restored, err := a.api.Contacts.Restore(ctx, c)
		if err != nil {
			return err
		}
		a.success(ctx, "Contacto recuperado exitosamente")
		return a.printContacts([]domain.Contact{restored})
	}, nil
}
