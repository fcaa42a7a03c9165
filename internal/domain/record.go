package domain

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// EditWindow is how long after creation a harvest may still be edited.
const EditWindow = 30 * time.Minute

const dateLayout = "2006-01-02"

// RecordSort orders a harvest listing. The zero value keeps backend order.
type RecordSort string

const (
	RecordSortNone   RecordSort = ""
	RecordSortAZ     RecordSort = "az"
	RecordSortZA     RecordSort = "za"
	RecordSortOldest RecordSort = "oldest"
)

// Record is a harvest prepared for listing.
type Record struct {
	ID          int64
	Name        string
	Date        string
	Quantities  map[Selection]int
	Weights     map[Selection]float64
	TotalQty    int
	TotalWeight float64
	CreatedAt   time.Time
}

// NewRecord builds the listing view of h. Missing dates and creation times
// fall back to now.
func NewRecord(h Harvest, now time.Time) Record {
	r := Record{
		ID:   h.ID,
		Name: h.FruitName,
		Date: h.HarvestDate,
		Quantities: map[Selection]int{
			SelectionFirst:  h.Qty1ra,
			SelectionThird:  h.Qty3ra,
			SelectionFifth:  h.Qty5ta,
			SelectionMature: h.QtyMadura,
		},
		Weights: map[Selection]float64{
			SelectionFirst:  h.Weight1ra,
			SelectionThird:  h.Weight3ra,
			SelectionFifth:  h.Weight5ta,
			SelectionMature: h.WeightMadura,
		},
		TotalQty:    h.QtyTotal,
		TotalWeight: h.WeightTotal,
		CreatedAt:   now,
	}
	if r.Date == "" {
		r.Date = now.UTC().Format(dateLayout)
	}
	if r.TotalQty == 0 {
		r.TotalQty = h.Request().TotalQuantity()
	}
	if r.TotalWeight == 0 {
		r.TotalWeight = h.Request().TotalWeight()
	}
	if t, ok := ParseTimestamp(h.CreatedAt); ok {
		r.CreatedAt = t
	}
	return r
}

// NewRecords maps harvests to records.
func NewRecords(hs []Harvest, now time.Time) []Record {
	out := make([]Record, 0, len(hs))
	for _, h := range hs {
		out = append(out, NewRecord(h, now))
	}
	return out
}

// Editable reports whether the record is still inside the edit window.
func (r Record) Editable(now time.Time) bool {
	return now.Sub(r.CreatedAt) < EditWindow
}

// FilterRecords keeps records whose name contains search (case-insensitive)
// and orders them by sort. The input is not modified.
func FilterRecords(records []Record, sort RecordSort, search string) []Record {
	term := strings.ToLower(search)
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if term == "" || strings.Contains(strings.ToLower(r.Name), term) {
			out = append(out, r)
		}
	}

	switch sort {
	case RecordSortAZ, RecordSortZA:
		c := collate.New(language.Spanish)
		slices.SortStableFunc(out, func(a, b Record) int {
			if sort == RecordSortZA {
				a, b = b, a
			}
			return c.CompareString(a.Name, b.Name)
		})
	case RecordSortOldest:
		slices.SortStableFunc(out, func(a, b Record) int {
			return cmp.Compare(a.Date, b.Date)
		})
	case RecordSortNone:
	}
	return out
}

// RecordGroup is a run of records sharing a harvest date. Label is empty when
// the listing is not grouped.
type RecordGroup struct {
	Date    string
	Label   string
	Records []Record
}

// GroupRecords groups records by date, newest first unless sort is oldest.
// Alphabetical listings are returned as a single unlabelled group.
func GroupRecords(records []Record, sort RecordSort) []RecordGroup {
	if sort == RecordSortAZ || sort == RecordSortZA {
		return []RecordGroup{{Records: records}}
	}

	byDate := make(map[string][]Record)
	dates := make([]string, 0)
	for _, r := range records {
		if _, ok := byDate[r.Date]; !ok {
			dates = append(dates, r.Date)
		}
		byDate[r.Date] = append(byDate[r.Date], r)
	}

	slices.SortFunc(dates, func(a, b string) int {
		if sort == RecordSortOldest {
			return cmp.Compare(a, b)
		}
		return cmp.Compare(b, a)
	})

	groups := make([]RecordGroup, 0, len(dates))
	for _, d := range dates {
		groups = append(groups, RecordGroup{Date: d, Label: FormatDate(d), Records: byDate[d]})
	}
	return groups
}

// FormatDate turns "2006-01-02" into "02 / 01 / 2006".
func FormatDate(date string) string {
	parts := strings.Split(date, "-")
	slices.Reverse(parts)
	return strings.Join(parts, " / ")
}

var timestampLayouts = []string{ //nolint:gochecknoglobals // lookup table
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	dateLayout,
}

// ParseTimestamp reads the timestamp formats the backend emits. Values
// without a zone are taken as local time.
func ParseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
