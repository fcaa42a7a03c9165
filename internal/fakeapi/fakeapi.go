// Package fakeapi is an in-memory stand-in for the sales backend. It serves
// the same REST paths and error bodies so clients can be exercised end to end
// against an httptest server.
package fakeapi

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/gosuda/agrotrack/internal/apperr"
	"github.com/gosuda/agrotrack/internal/domain"
)

// BasePath is where the resources are mounted.
const BasePath = "/v1/api"

type fault struct {
	status int
	body   string
}

// Backend holds the resources and serves them over chi.
type Backend struct {
	router chi.Router
	secret string
	rps    float64
	burst  int
	now    func() time.Time

	sellers      *collection[domain.Seller]
	harvests     *collection[domain.Harvest]
	markets      *collection[domain.MarketCustomer]
	supermarkets *collection[domain.SupermarketCustomer]
	publications *collection[domain.ProductPublication]
	details      *collection[domain.PublicationDetail]

	mu     sync.Mutex
	faults map[string]fault

	requests atomic.Int64
}

// Option configures optional Backend parameters.
type Option func(*Backend)

// WithSecret requires an HS256 bearer token signed with secret.
func WithSecret(secret string) Option {
	return func(b *Backend) {
		b.secret = secret
	}
}

// WithRateLimit answers 429 beyond rps requests per second.
func WithRateLimit(rps float64, burst int) Option {
	return func(b *Backend) {
		b.rps = rps
		b.burst = burst
	}
}

// WithClock sets the time source for creation stamps and default dates.
func WithClock(now func() time.Time) Option {
	return func(b *Backend) {
		b.now = now
	}
}

// New creates an empty Backend.
func New(opts ...Option) *Backend {
	b := &Backend{
		now:    time.Now,
		faults: make(map[string]fault),
	}
	for _, opt := range opts {
		opt(b)
	}

	b.sellers = newCollection(fields[domain.Seller]{
		id:      func(s *domain.Seller) *int64 { return &s.ID },
		state:   func(s *domain.Seller) *domain.State { return &s.State },
		created: func(s *domain.Seller) *string { return &s.CreatedAt },
	}, b.now)
	b.harvests = newCollection(fields[domain.Harvest]{
		id:      func(h *domain.Harvest) *int64 { return &h.ID },
		state:   func(h *domain.Harvest) *domain.State { return &h.State },
		created: func(h *domain.Harvest) *string { return &h.CreatedAt },
	}, b.now)
	b.markets = newCollection(fields[domain.MarketCustomer]{
		id:      func(m *domain.MarketCustomer) *int64 { return &m.ID },
		state:   func(m *domain.MarketCustomer) *domain.State { return &m.State },
		created: func(m *domain.MarketCustomer) *string { return &m.CreatedAt },
	}, b.now)
	b.supermarkets = newCollection(fields[domain.SupermarketCustomer]{
		id:      func(s *domain.SupermarketCustomer) *int64 { return &s.ID },
		state:   func(s *domain.SupermarketCustomer) *domain.State { return &s.State },
		created: func(s *domain.SupermarketCustomer) *string { return &s.CreatedAt },
	}, b.now)
	b.publications = newCollection(fields[domain.ProductPublication]{
		id:      func(p *domain.ProductPublication) *int64 { return &p.ID },
		state:   func(p *domain.ProductPublication) *domain.State { return &p.State },
		created: func(p *domain.ProductPublication) *string { return &p.CreatedAt },
	}, b.now)
	b.details = newCollection(fields[domain.PublicationDetail]{
		id:      func(d *domain.PublicationDetail) *int64 { return &d.ID },
		state:   func(d *domain.PublicationDetail) *domain.State { return &d.State },
		created: func(d *domain.PublicationDetail) *string { return &d.CreatedAt },
	}, b.now)

	b.router = b.routes()
	return b
}

func (b *Backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.router.ServeHTTP(w, r)
}

// Requests returns how many requests reached the backend.
func (b *Backend) Requests() int64 {
	return b.requests.Load()
}

// Fail makes every request for method and path (relative to BasePath) answer
// status with body until Heal is called.
func (b *Backend) Fail(method, path string, status int, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.faults[method+" "+BasePath+path] = fault{status: status, body: body}
}

// Heal removes every injected fault.
func (b *Backend) Heal() {
	b.mu.Lock()
	defer b.mu.Unlock()
	clear(b.faults)
}

// AddSeller stores s and returns it with its id.
func (b *Backend) AddSeller(s domain.Seller) domain.Seller { return b.sellers.insert(s) }

// AddHarvest stores h with computed totals and returns it with its id.
func (b *Backend) AddHarvest(h domain.Harvest) domain.Harvest {
	return b.harvests.insert(b.completeHarvest(h))
}

// AddMarketCustomer stores m and returns it with its id.
func (b *Backend) AddMarketCustomer(m domain.MarketCustomer) domain.MarketCustomer {
	return b.markets.insert(m)
}

// AddSupermarketCustomer stores s and returns it with its id.
func (b *Backend) AddSupermarketCustomer(s domain.SupermarketCustomer) domain.SupermarketCustomer {
	return b.supermarkets.insert(s)
}

func (b *Backend) completeHarvest(h domain.Harvest) domain.Harvest {
	req := h.Request()
	h.QtyTotal = req.TotalQuantity()
	h.WeightTotal = req.TotalWeight()
	if h.HarvestDate == "" {
		h.HarvestDate = b.now().Format("2006-01-02")
	}
	return h
}

func (b *Backend) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.requests.Add(1)
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) injectFaults(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		f, ok := b.faults[r.Method+" "+r.URL.Path]
		b.mu.Unlock()
		if ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(f.status)
			_, _ = w.Write([]byte(f.body))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

func writeText(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(msg))
}

// writeInvalid answers 422 with the field map of a validation error.
func writeInvalid(w http.ResponseWriter, err error) {
	body := map[string]any{"message": err.Error()}
	if e, ok := apperr.As(err); ok {
		body["message"] = e.Message()
		body["errors"] = e.Fields()
	}
	writeJSON(w, http.StatusUnprocessableEntity, body)
}

func decode[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var v T
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		writeMessage(w, http.StatusBadRequest, "Cuerpo de solicitud inválido")
		return v, false
	}
	return v, true
}

func param(r *http.Request, key string) string {
	raw := chi.URLParam(r, key)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

func pathID(w http.ResponseWriter, r *http.Request, key string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, key), 10, 64)
	if err != nil || id <= 0 {
		writeMessage(w, http.StatusBadRequest, "ID inválido")
		return 0, false
	}
	return id, true
}

func (b *Backend) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(b.count)
	r.Use(b.injectFaults)
	if b.rps > 0 {
		r.Use(rateLimit(b.rps, b.burst))
	}

	r.Route(BasePath, func(r chi.Router) {
		if b.secret != "" {
			r.Use(requireBearer(b.secret))
			r.Use(requireWriter)
		}
		r.Route("/seller", b.sellerRoutes)
		r.Route("/harvest", b.harvestRoutes)
		r.Route("/marketcustomer", b.marketRoutes)
		r.Route("/supermarketcustomer", b.supermarketRoutes)
		r.Route("/publication", b.publicationRoutes)
	})
	return r
}
