package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/gosuda/agrotrack/internal/apperr"
	"github.com/gosuda/agrotrack/internal/domain"
	"github.com/gosuda/agrotrack/internal/notify"
)

const (
	questionDeleteHarvest = "¿Estás seguro de que deseas eliminar este registro?"
	titleHarvestSaved     = "¡Registro guardado exitosamente!"
	msgEditWindowClosed   = "Este registro ya no puede editarse: han pasado más de 30 minutos desde su creación"
)

type recordRow struct {
	ID          int64                        `json:"id"`
	Name        string                       `json:"name"`
	Date        string                       `json:"date"`
	Quantities  map[domain.Selection]int     `json:"quantities"`
	Weights     map[domain.Selection]float64 `json:"weights"`
	TotalQty    int                          `json:"totalQty"`
	TotalWeight float64                      `json:"totalWeight"`
	Editable    bool                         `json:"editable"`
}

type recordGroup struct {
	Date    string      `json:"date,omitempty"`
	Label   string      `json:"label,omitempty"`
	Records []recordRow `json:"records"`
}

func (a *App) printRecords(groups []domain.RecordGroup) error {
	now := a.now()
	out := make([]recordGroup, 0, len(groups))
	for _, g := range groups {
		rows := make([]recordRow, 0, len(g.Records))
		for _, r := range g.Records {
			rows = append(rows, recordRow{
				ID:          r.ID,
				Name:        r.Name,
				Date:        r.Date,
				Quantities:  r.Quantities,
				Weights:     r.Weights,
				TotalQty:    r.TotalQty,
				TotalWeight: r.TotalWeight,
				Editable:    r.Editable(now),
			})
		}
		out = append(out, recordGroup{Date: g.Date, Label: g.Label, Records: rows})
	}

	header := []string{"ID", "FRUTA", "FECHA"}
	for _, sel := range domain.Selections() {
		header = append(header, strings.ToUpper(string(sel)))
	}
	header = append(header, "TOTAL", "PESO (KG)", "EDITABLE")

	return a.emit(out, header, func(add func(...string)) {
		for _, g := range out {
			if g.Label != "" {
				add("# " + g.Label)
			}
			for _, r := range g.Records {
				cols := []string{itoa(r.ID), r.Name, domain.FormatDate(r.Date)}
				for _, sel := range domain.Selections() {
					cols = append(cols, fmt.Sprintf("%d (%s kg)", r.Quantities[sel], domain.FormatKg(r.Weights[sel])))
				}
				editable := "no"
				if r.Editable {
					editable = "sí"
				}
				cols = append(cols, fmt.Sprint(r.TotalQty), domain.FormatKg(r.TotalWeight), editable)
				add(cols...)
			}
		}
	})
}

func (a *App) harvestsList(args []string) (action, error) {
	fs := a.flags("harvests list")
	sortBy := fs.String("sort", "", "az, za or oldest; newest first when empty")
	search := fs.String("search", "", "fruit name fragment")
	seller := fs.Int64("seller", 0, "only harvests of this seller")
	from := fs.String("from", "", "first harvest date, YYYY-MM-DD")
	to := fs.String("to", "", "last harvest date, YYYY-MM-DD")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := noArgs(fs); err != nil {
		return nil, err
	}

	sort := domain.RecordSort(*sortBy)
	switch sort {
	case domain.RecordSortNone, domain.RecordSortAZ, domain.RecordSortZA, domain.RecordSortOldest:
	default:
		return nil, usagef("unknown sort %q", *sortBy)
	}
	if (*from == "") != (*to == "") {
		return nil, usagef("-from and -to must be given together")
	}
	if *seller != 0 && *from != "" {
		return nil, usagef("-seller cannot be combined with -from/-to")
	}
	var start, end time.Time
	if *from != "" {
		var err error
		if start, err = parseDate("from", *from); err != nil {
			return nil, err
		}
		if end, err = parseDate("to", *to); err != nil {
			return nil, err
		}
	}

	return func(ctx context.Context) error {
		var (
			harvests []domain.Harvest
			err      error
		)
		switch {
		case *seller != 0:
			harvests, err = a.api.Harvests.FindBySeller(ctx, *seller)
		case !start.IsZero():
			harvests, err = a.api.Harvests.FindByDateRange(ctx, start, end)
		default:
			harvests, err = a.api.Harvests.FindAll(ctx)
		}
		if err != nil {
			return err
		}

		records := domain.FilterRecords(domain.NewRecords(harvests, a.now()), sort, *search)
		return a.printRecords(domain.GroupRecords(records, sort))
	}, nil
}

func (a *App) harvestsGet(args []string) (action, error) {
	fs := a.flags("harvests get")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	id, err := parseID(fs)
	if err != nil {
		return nil, err
	}

	return func(ctx context.Context) error {
		h, err := a.api.Harvests.FindByID(ctx, id)
		if err != nil {
			return err
		}
		return a.printRecords([]domain.RecordGroup{{Records: []domain.Record{domain.NewRecord(*h, a.now())}}})
	}, nil
}

type harvestFlags struct {
	seller *int64
	fruit  *string
	qty    map[domain.Selection]*int
	kg     map[domain.Selection]*float64
}

func bindHarvestFlags(fs *flag.FlagSet) harvestFlags {
	f := harvestFlags{
		seller: fs.Int64("seller", 0, "seller id"),
		fruit:  fs.String("fruit", "", "fruit name"),
		qty:    make(map[domain.Selection]*int),
		kg:     make(map[domain.Selection]*float64),
	}
	for _, sel := range domain.Selections() {
		name := strings.ToLower(string(sel))
		f.qty[sel] = fs.Int("qty-"+name, 0, "crates of selection "+string(sel))
		f.kg[sel] = fs.Float64("kg-"+name, 0, "kilograms of selection "+string(sel))
	}
	return f
}

// apply copies the flags that were given on the command line onto req.
func (f harvestFlags) apply(fs *flag.FlagSet, req *domain.HarvestRequest) {
	set := make(map[string]bool)
	fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })

	if set["seller"] {
		req.SellerID = *f.seller
	}
	if set["fruit"] {
		req.FruitName = *f.fruit
	}
	for _, sel := range domain.Selections() {
		name := strings.ToLower(string(sel))
		if set["qty-"+name] {
			req.SetQuantity(sel, *f.qty[sel])
		}
		if set["kg-"+name] {
			req.SetWeight(sel, *f.kg[sel])
		}
	}
}

func (a *App) harvestsCreate(args []string) (action, error) {
	fs := a.flags("harvests create")
	f := bindHarvestFlags(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := noArgs(fs); err != nil {
		return nil, err
	}

	var req domain.HarvestRequest
	f.apply(fs, &req)

	return func(ctx context.Context) error {
		saved, err := a.api.Harvests.Save(ctx, req)
		if err != nil {
			return err
		}
		a.success(ctx, saved.Summary(a.now()), notify.WithTitle(titleHarvestSaved), notify.WithTimer(0))
		if a.json {
			return a.emit(saved, nil, nil)
		}
		return nil
	}, nil
}

func (a *App) harvestsUpdate(args []string) (action, error) {
	fs := a.flags("harvests update")
	f := bindHarvestFlags(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	id, err := parseID(fs)
	if err != nil {
		return nil, err
	}

	return func(ctx context.Context) error {
		current, err := a.api.Harvests.FindByID(ctx, id)
		if err != nil {
			return err
		}
		now := a.now()
		if !domain.NewRecord(*current, now).Editable(now) {
			return apperr.NewBusiness(msgEditWindowClosed)
		}

		req := current.Request()
		f.apply(fs, &req)
		edited := *current
		edited.SellerID = req.SellerID
		edited.FruitName = strings.TrimSpace(req.FruitName)
		edited.Qty1ra, edited.Qty3ra, edited.Qty5ta, edited.QtyMadura = req.Qty1ra, req.Qty3ra, req.Qty5ta, req.QtyMadura
		edited.Weight1ra, edited.Weight3ra, edited.Weight5ta, edited.WeightMadura = req.Weight1ra, req.Weight3ra, req.Weight5ta, req.WeightMadura
		edited.QtyTotal = req.TotalQuantity()
		edited.WeightTotal = req.TotalWeight()

		saved, err := a.api.Harvests.Update(ctx, edited)
		if err != nil {
			return err
		}
		a.success(ctx, "Registro actualizado exitosamente")
		return a.printRecords([]domain.RecordGroup{{Records: []domain.Record{domain.NewRecord(*saved, now)}}})
	}, nil
}

func (a *App) harvestsDelete(args []string) (action, error) {
	fs := a.flags("harvests delete")
	yes := fs.Bool("yes", false, "do not ask for confirmation")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	id, err := parseID(fs)
	if err != nil {
		return nil, err
	}

	return func(ctx context.Context) error {
		ok, err := a.confirm(ctx, *yes, questionDeleteHarvest)
		if err != nil || !ok {
			return err
		}
		msg, err := a.api.Harvests.Delete(ctx, id)
		if err != nil {
			return err
		}
		a.success(ctx, msg)
		return nil
	}, nil
}

func (a *App) harvestsRestore(args []string) (action, error) {
	fs := a.flags("harvests restore")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	id, err := parseID(fs)
	if err != nil {
		return nil, err
	}

	return func(ctx context.Context) error {
		h, err := a.api.Harvests.Restore(ctx, id)
		if err != nil {
			return err
		}
		a.success(ctx, "Registro restaurado exitosamente")
		return a.printRecords([]domain.RecordGroup{{Records: []domain.Record{domain.NewRecord(*h, a.now())}}})
	}, nil
}
