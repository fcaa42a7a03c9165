package fakeapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/gosuda/agrotrack/internal/apperr"
	"github.com/gosuda/agrotrack/internal/domain"
)

// resource wires the routes every backend resource shares.
type resource[T any] struct {
	rows  *collection[T]
	label string
	// validate runs before inserts and updates; nil skips it.
	validate func(T) error
	// prepare adjusts a row before it is stored; nil keeps it as sent.
	prepare func(T) T
	// conflict reports a uniqueness violation message for a new row.
	conflict func(T) string
}

func (res resource[T]) mount(r chi.Router) {
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, res.rows.list(nil))
	})

	r.Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		row, found := res.rows.get(id)
		if !found {
			writeMessage(w, http.StatusNotFound, fmt.Sprintf("%s no encontrado", res.label))
			return
		}
		writeJSON(w, http.StatusOK, row)
	})

	r.Post("/", func(w http.ResponseWriter, r *http.Request) {
		row, ok := decode[T](w, r)
		if !ok || !res.check(w, row) {
			return
		}
		if res.conflict != nil {
			if msg := res.conflict(row); msg != "" {
				writeMessage(w, http.StatusConflict, msg)
				return
			}
		}
		if res.prepare != nil {
			row = res.prepare(row)
		}
		writeJSON(w, http.StatusCreated, res.rows.insert(row))
	})

	r.Put("/", func(w http.ResponseWriter, r *http.Request) {
		row, ok := decode[T](w, r)
		if !ok || !res.check(w, row) {
			return
		}
		if res.prepare != nil {
			row = res.prepare(row)
		}
		updated, found := res.rows.update(row)
		if !found {
			writeMessage(w, http.StatusNotFound, fmt.Sprintf("%s no encontrado", res.label))
			return
		}
		writeJSON(w, http.StatusOK, updated)
	})

	r.Patch("/delete/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		if _, found := res.rows.setState(id, domain.StateInactive); !found {
			writeMessage(w, http.StatusNotFound, fmt.Sprintf("%s no encontrado", res.label))
			return
		}
		writeText(w, fmt.Sprintf("%s desactivado correctamente", res.label))
	})

	r.Patch("/restore/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		row, found := res.rows.setState(id, domain.StateActive)
		if !found {
			writeMessage(w, http.StatusNotFound, fmt.Sprintf("%s no encontrado", res.label))
			return
		}
		writeJSON(w, http.StatusOK, row)
	})
}

func (res resource[T]) check(w http.ResponseWriter, row T) bool {
	if res.validate == nil {
		return true
	}
	if err := res.validate(row); err != nil {
		writeInvalid(w, err)
		return false
	}
	return true
}

// many serves the rows for which match(row, param) holds.
func many[T any](rows *collection[T], key string, match func(T, string) bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v := param(r, key)
		writeJSON(w, http.StatusOK, rows.list(func(row T) bool { return match(row, v) }))
	}
}

// one serves the first row for which match(row, param) holds, or 404.
func one[T any](rows *collection[T], key, label string, match func(T, string) bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v := param(r, key)
		row, ok := rows.find(func(row T) bool { return match(row, v) })
		if !ok {
			writeMessage(w, http.StatusNotFound, fmt.Sprintf("%s no encontrado", label))
			return
		}
		writeJSON(w, http.StatusOK, row)
	}
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func stateIs[T any](state func(T) domain.State) func(T, string) bool {
	return func(row T, s string) bool { return string(state(row)) == s }
}

func (b *Backend) sellerRoutes(r chi.Router) {
	resource[domain.Seller]{
		rows:     b.sellers,
		label:    "Vendedor",
		validate: domain.Seller.Validate,
		conflict: func(s domain.Seller) string {
			if _, dup := b.sellers.find(func(o domain.Seller) bool { return o.DNI == s.DNI }); dup {
				return "Ya existe un vendedor con el DNI " + s.DNI
			}
			return ""
		},
	}.mount(r)

	r.Get("/state/{state}", many(b.sellers, "state", stateIs(func(s domain.Seller) domain.State { return s.State })))
	r.Get("/dni/{dni}", one(b.sellers, "dni", "Vendedor", func(s domain.Seller, v string) bool { return s.DNI == v }))
	r.Get("/email/{email}", one(b.sellers, "email", "Vendedor", func(s domain.Seller, v string) bool {
		return strings.EqualFold(s.Email, v)
	}))
	r.Get("/search/{name}", many(b.sellers, "name", func(s domain.Seller, v string) bool {
		return containsFold(s.FullName(), v)
	}))
}

func (b *Backend) harvestRoutes(r chi.Router) {
	resource[domain.Harvest]{
		rows:  b.harvests,
		label: "Registro de cosecha",
		validate: func(h domain.Harvest) error {
			if h.SellerID != 0 {
				if _, ok := b.sellers.get(h.SellerID); !ok {
					return apperr.NewValidation(domain.MsgInvalidForm, map[string][]string{
						"idSeller": {"El vendedor no existe"},
					})
				}
			}
			return h.Request().Validate()
		},
		prepare: b.completeHarvest,
	}.mount(r)

	r.Get("/state/{state}", many(b.harvests, "state", stateIs(func(h domain.Harvest) domain.State { return h.State })))
	r.Get("/seller/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, b.harvests.list(func(h domain.Harvest) bool { return h.SellerID == id }))
	})
	r.Get("/fruit/{fruit}", many(b.harvests, "fruit", func(h domain.Harvest, v string) bool {
		return strings.EqualFold(h.FruitName, v)
	}))
	r.Get("/date/{date}", many(b.harvests, "date", func(h domain.Harvest, v string) bool { return h.HarvestDate == v }))
	r.Get("/daterange", func(w http.ResponseWriter, r *http.Request) {
		start, end := r.URL.Query().Get("startDate"), r.URL.Query().Get("endDate")
		if start == "" || end == "" {
			writeMessage(w, http.StatusBadRequest, "startDate y endDate son requeridos")
			return
		}
		writeJSON(w, http.StatusOK, b.harvests.list(func(h domain.Harvest) bool {
			return h.HarvestDate >= start && h.HarvestDate <= end
		}))
	})
	r.Get("/search/{fruit}", many(b.harvests, "fruit", func(h domain.Harvest, v string) bool {
		return containsFold(h.FruitName, v)
	}))
}

func (b *Backend) marketRoutes(r chi.Router) {
	resource[domain.MarketCustomer]{
		rows:     b.markets,
		label:    "Cliente",
		validate: domain.MarketCustomer.Validate,
		conflict: func(m domain.MarketCustomer) string {
			if _, dup := b.markets.find(func(o domain.MarketCustomer) bool { return o.DocumentNumber == m.DocumentNumber }); dup {
				return "Ya existe un cliente con el documento " + m.DocumentNumber
			}
			return ""
		},
	}.mount(r)

	r.Get("/state/{state}", many(b.markets, "state", stateIs(func(m domain.MarketCustomer) domain.State { return m.State })))
	r.Get("/document/{number}", one(b.markets, "number", "Cliente", func(m domain.MarketCustomer, v string) bool {
		return m.DocumentNumber == v
	}))
	r.Get("/market/{market}", many(b.markets, "market", func(m domain.MarketCustomer, v string) bool {
		return strings.EqualFold(m.MarketName, v)
	}))
	r.Get("/city/{city}", many(b.markets, "city", func(m domain.MarketCustomer, v string) bool {
		return strings.EqualFold(m.City, v)
	}))
	r.Get("/search/{name}", many(b.markets, "name", func(m domain.MarketCustomer, v string) bool {
		return containsFold(m.FirstName+" "+m.LastName, v)
	}))
}

func (b *Backend) supermarketRoutes(r chi.Router) {
	resource[domain.SupermarketCustomer]{
		rows:     b.supermarkets,
		label:    "Cliente",
		validate: domain.SupermarketCustomer.Validate,
		conflict: func(s domain.SupermarketCustomer) string {
			if _, dup := b.supermarkets.find(func(o domain.SupermarketCustomer) bool { return o.RUC == s.RUC }); dup {
				return "Ya existe un supermercado con el RUC " + s.RUC
			}
			return ""
		},
	}.mount(r)

	r.Get("/state/{state}", many(b.supermarkets, "state", stateIs(func(s domain.SupermarketCustomer) domain.State { return s.State })))
	r.Get("/ruc/{ruc}", one(b.supermarkets, "ruc", "Cliente", func(s domain.SupermarketCustomer, v string) bool {
		return s.RUC == v
	}))
	r.Get("/city/{city}", many(b.supermarkets, "city", func(s domain.SupermarketCustomer, v string) bool {
		return strings.EqualFold(s.City, v)
	}))
}

func (b *Backend) publicationRoutes(r chi.Router) {
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, b.publications.list(nil))
	})
	r.Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		p, found := b.publications.get(id)
		if !found {
			writeMessage(w, http.StatusNotFound, "Publicación no encontrada")
			return
		}
		writeJSON(w, http.StatusOK, p)
	})
	r.Get("/seller/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, b.publications.list(func(p domain.ProductPublication) bool { return p.SellerID == id }))
	})
	r.Post("/", func(w http.ResponseWriter, r *http.Request) {
		req, ok := decode[domain.PublicationRequest](w, r)
		if !ok {
			return
		}
		if err := req.Validate(); err != nil {
			writeInvalid(w, err)
			return
		}
		if _, found := b.harvests.get(req.Publication.HarvestID); !found {
			writeMessage(w, http.StatusNotFound, "Cosecha no encontrada")
			return
		}

		p := b.publications.insert(domain.ProductPublication{
			SellerID:        req.Publication.SellerID,
			CategoryID:      req.Publication.CategoryID,
			HarvestID:       req.Publication.HarvestID,
			ProductName:     req.Publication.ProductName,
			Emoji:           req.Publication.Emoji,
			PublicationDate: b.now().Format("2006-01-02"),
		})
		for _, d := range req.Details {
			b.details.insert(domain.PublicationDetail{
				PublicationID:   p.ID,
				SelectionType:   d.SelectionType,
				Quantity:        d.Quantity,
				TotalWeight:     d.TotalWeight,
				AvgWeightPerBox: d.AvgWeightPerBox,
				PricePerKg:      d.PricePerKg,
			})
		}
		writeJSON(w, http.StatusCreated, p)
	})
}
