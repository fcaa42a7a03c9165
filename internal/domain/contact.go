package domain

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// ContactType distinguishes the two customer resources behind a contact.
type ContactType string

const (
	ContactSupermarket ContactType = "supermercado"
	ContactMarket      ContactType = "mercado"
)

// ContactSort orders the contact book.
type ContactSort string

const (
	ContactSortNone     ContactSort = ""
	ContactSortName     ContactSort = "nombre"
	ContactSortCity     ContactSort = "ciudad"
	ContactSortDistrict ContactSort = "distrito"
)

// Contact is the unified view over market and supermarket customers.
type Contact struct {
	ID         int64       `json:"id,omitempty"`
	Type       ContactType `json:"type"`
	Name       string      `json:"name"`
	City       string      `json:"city"`
	District   string      `json:"district"`
	Deleted    bool        `json:"deleted"`
	RUC        string      `json:"ruc,omitempty"`
	Phone      string      `json:"phone,omitempty"`
	Email      string      `json:"email,omitempty"`
	MarketName string      `json:"marketName,omitempty"`
	Stall      string      `json:"stall,omitempty"`
	FirstName  string      `json:"firstName,omitempty"`
	LastName   string      `json:"lastName,omitempty"`
	DNI        string      `json:"dni,omitempty"`
}

// ContactFromSupermarket maps a supermarket customer to a contact.
func ContactFromSupermarket(s SupermarketCustomer) Contact {
	return Contact{
		ID:       s.ID,
		Type:     ContactSupermarket,
		Name:     s.SupermarketName,
		City:     s.City,
		District: s.District,
		Deleted:  s.State == StateInactive,
		RUC:      s.RUC,
		Phone:    s.Phone,
		Email:    s.Email,
	}
}

// ContactFromMarket maps a market customer to a contact named after the
// stall holder.
func ContactFromMarket(m MarketCustomer) Contact {
	return Contact{
		ID:         m.ID,
		Type:       ContactMarket,
		Name:       m.FirstName + " " + m.LastName,
		City:       m.City,
		District:   m.District,
		Deleted:    m.State == StateInactive,
		Phone:      m.Phone,
		MarketName: m.MarketName,
		Stall:      m.PositionNumber,
		FirstName:  m.FirstName,
		LastName:   m.LastName,
		DNI:        m.DocumentNumber,
	}
}

// MergeContacts lists supermarkets first, then markets.
func MergeContacts(supermarkets []SupermarketCustomer, markets []MarketCustomer) []Contact {
	out := make([]Contact, 0, len(supermarkets)+len(markets))
	for _, s := range supermarkets {
		out = append(out, ContactFromSupermarket(s))
	}
	for _, m := range markets {
		out = append(out, ContactFromMarket(m))
	}
	return out
}

func stateOf(deleted bool) State {
	if deleted {
		return StateInactive
	}
	return StateActive
}

// Supermarket converts c back into the resource it came from.
func (c Contact) Supermarket() SupermarketCustomer {
	return SupermarketCustomer{
		ID:              c.ID,
		RUC:             c.RUC,
		SupermarketName: c.Name,
		City:            c.City,
		District:        c.District,
		Phone:           c.Phone,
		Email:           c.Email,
		State:           stateOf(c.Deleted),
	}
}

// Market converts c back into the resource it came from.
func (c Contact) Market() MarketCustomer {
	return MarketCustomer{
		ID:             c.ID,
		FirstName:      c.FirstName,
		LastName:       c.LastName,
		DocumentNumber: c.DNI,
		MarketName:     c.MarketName,
		PositionNumber: c.Stall,
		City:           c.City,
		District:       c.District,
		Phone:          c.Phone,
		State:          stateOf(c.Deleted),
	}
}

// Validate checks c against the rules of its underlying resource.
func (c Contact) Validate() error {
	if c.Type == ContactMarket {
		return c.Market().Validate()
	}
	return c.Supermarket().Validate()
}

// ContactQuery narrows and orders the contact book. Deleted contacts are
// hidden unless a search term is set.
type ContactQuery struct {
	Type   ContactType
	Search string
	Sort   ContactSort
}

// FilterContacts applies q to contacts without modifying the input.
func FilterContacts(contacts []Contact, q ContactQuery) []Contact {
	term := strings.ToLower(q.Search)
	out := make([]Contact, 0, len(contacts))
	for _, c := range contacts {
		if q.Type != "" && c.Type != q.Type {
			continue
		}
		if term != "" {
			if !strings.Contains(strings.ToLower(c.Name), term) &&
				!strings.Contains(strings.ToLower(c.City), term) &&
				!strings.Contains(strings.ToLower(c.District), term) {
				continue
			}
		} else if c.Deleted {
			continue
		}
		out = append(out, c)
	}

	key := sortKey(q.Sort)
	if key == nil {
		return out
	}
	coll := collate.New(language.Spanish, collate.IgnoreCase)
	slices.SortStableFunc(out, func(a, b Contact) int {
		return coll.CompareString(strings.ToLower(key(a)), strings.ToLower(key(b)))
	})
	return out
}

func sortKey(s ContactSort) func(Contact) string {
	switch s {
	case ContactSortName:
		return func(c Contact) string { return c.Name }
	case ContactSortCity:
		return func(c Contact) string { return c.City }
	case ContactSortDistrict:
		return func(c Contact) string { return c.District }
	case ContactSortNone:
	}
	return nil
}
