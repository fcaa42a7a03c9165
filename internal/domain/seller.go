package domain

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// State is the soft-delete flag every backend resource carries.
type State string

const (
	StateActive   State = "A"
	StateInactive State = "I"
)

// Label is the human-readable state shown in listings.
func (s State) Label() string {
	if s == StateActive {
		return "Activo"
	}
	return "Inactivo"
}

// Seller is a producer who registers harvests.
type Seller struct {
	ID        int64  `json:"idSeller,omitempty"`
	FirstName string `json:"firstName"           validate:"required"`
	LastName  string `json:"lastName"            validate:"required"`
	DNI       string `json:"dni"                 validate:"required,len=8,numeric"`
	Email     string `json:"email,omitempty"     validate:"omitempty,email"`
	Phone     string `json:"phone,omitempty"`
	State     State  `json:"state,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// FullName joins first and last name.
func (s Seller) FullName() string {
	return s.FirstName + " " + s.LastName
}

// Validate enforces the mandatory seller fields. Names are trimmed first so
// blank input counts as missing.
func (s Seller) Validate() error {
	s.FirstName = strings.TrimSpace(s.FirstName)
	s.LastName = strings.TrimSpace(s.LastName)
	s.DNI = strings.TrimSpace(s.DNI)
	return Validate(s)
}

// SellerFilter selects which sellers a listing shows.
type SellerFilter string

const (
	SellerFilterAll          SellerFilter = "all"
	SellerFilterActive       SellerFilter = "active"
	SellerFilterInactive     SellerFilter = "inactive"
	SellerFilterAlphabetical SellerFilter = "alphabetical"
)

// FilterSellers narrows sellers by state and free-text search, then orders
// them by full name when filter is alphabetical. The input is not modified.
func FilterSellers(sellers []Seller, filter SellerFilter, search string) []Seller {
	out := make([]Seller, 0, len(sellers))
	term := strings.ToLower(strings.TrimSpace(search))

	for _, s := range sellers {
		switch filter {
		case SellerFilterActive:
			if s.State != StateActive {
				continue
			}
		case SellerFilterInactive:
			if s.State != StateInactive {
				continue
			}
		}
		if term != "" && !s.matches(term) {
			continue
		}
		out = append(out, s)
	}

	if filter == SellerFilterAlphabetical {
		c := collate.New(language.Spanish, collate.IgnoreCase)
		slices.SortStableFunc(out, func(a, b Seller) int {
			return c.CompareString(strings.ToLower(a.FullName()), strings.ToLower(b.FullName()))
		})
	}
	return out
}

func (s Seller) matches(term string) bool {
	return strings.Contains(strings.ToLower(s.FirstName), term) ||
		strings.Contains(strings.ToLower(s.LastName), term) ||
		strings.Contains(s.DNI, term) ||
		strings.Contains(strings.ToLower(s.Email), term)
}
