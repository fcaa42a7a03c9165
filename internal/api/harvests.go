package api

import (
	"context"
	"net/url"
	"time"

	"github.com/gosuda/agrotrack/internal/domain"
	"github.com/gosuda/agrotrack/internal/httpclient"
)

const dateLayout = "2006-01-02"

// Harvests is the /harvest resource.
type Harvests struct {
	r resource[domain.Harvest]
}

func (h *Harvests) FindAll(ctx context.Context) ([]domain.Harvest, error) {
	return h.r.findAll(ctx, "Harvests.FindAll")
}

func (h *Harvests) FindByID(ctx context.Context, id int64) (*domain.Harvest, error) {
	return h.r.findByID(ctx, "Harvests.FindByID", id)
}

// Save checks the form and business rules before anything is sent. A
// rejected request never reaches the backend.
func (h *Harvests) Save(ctx context.Context, req domain.HarvestRequest) (*domain.Harvest, error) {
	if err := req.Check(); err != nil {
		return nil, err
	}
	return h.r.send(ctx, "Harvests.Save", false, req.Normalized())
}

// Update applies the same rules as Save to an edited harvest.
func (h *Harvests) Update(ctx context.Context, harvest domain.Harvest) (*domain.Harvest, error) {
	if err := harvest.Request().Check(); err != nil {
		return nil, err
	}
	return h.r.send(ctx, "Harvests.Update", true, harvest)
}

func (h *Harvests) Delete(ctx context.Context, id int64) (string, error) {
	return h.r.remove(ctx, "Harvests.Delete", id)
}

func (h *Harvests) Restore(ctx context.Context, id int64) (*domain.Harvest, error) {
	return h.r.restore(ctx, "Harvests.Restore", id)
}

func (h *Harvests) FindByState(ctx context.Context, state domain.State) ([]domain.Harvest, error) {
	return h.r.findByState(ctx, "Harvests.FindByState", state)
}

func (h *Harvests) FindBySeller(ctx context.Context, sellerID int64) ([]domain.Harvest, error) {
	return h.r.list(ctx, "Harvests.FindBySeller", h.r.path("seller", formatID(sellerID)))
}

func (h *Harvests) FindByFruitName(ctx context.Context, fruit string) ([]domain.Harvest, error) {
	return h.r.list(ctx, "Harvests.FindByFruitName", h.r.path("fruit", fruit))
}

func (h *Harvests) FindByHarvestDate(ctx context.Context, date time.Time) ([]domain.Harvest, error) {
	return h.r.list(ctx, "Harvests.FindByHarvestDate", h.r.path("date", date.Format(dateLayout)))
}

// FindByDateRange lists harvests dated between start and end inclusive.
func (h *Harvests) FindByDateRange(ctx context.Context, start, end time.Time) ([]domain.Harvest, error) {
	q := url.Values{}
	q.Set("startDate", start.Format(dateLayout))
	q.Set("endDate", end.Format(dateLayout))
	return h.r.list(ctx, "Harvests.FindByDateRange", h.r.path("daterange"), httpclient.WithQuery(q))
}

func (h *Harvests) SearchByFruitName(ctx context.Context, fruit string) ([]domain.Harvest, error) {
	return h.r.list(ctx, "Harvests.SearchByFruitName", h.r.path("search", fruit))
}
