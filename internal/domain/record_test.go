package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/agrotrack/internal/domain"
)

func names(records []domain.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Name)
	}
	return out
}

func sampleRecords() []domain.Record {
	now := time.Date(2026, time.October, 19, 12, 0, 0, 0, time.UTC)
	return domain.NewRecords([]domain.Harvest{
		{ID: 1, FruitName: "mango", HarvestDate: "2026-10-18"},
		{ID: 2, FruitName: "Uva", HarvestDate: "2026-10-19"},
		{ID: 3, FruitName: "Arándano", HarvestDate: "2026-10-17"},
		{ID: 4, FruitName: "Mandarina", HarvestDate: "2026-10-19"},
	}, now)
}

func TestNewRecord(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.October, 19, 12, 0, 0, 0, time.UTC)

	t.Run("totals fall back to sums", func(t *testing.T) {
		t.Parallel()

		r := domain.NewRecord(domain.Harvest{
			ID: 7, FruitName: "Mango", HarvestDate: "2026-10-01",
			Qty1ra: 2, Qty5ta: 3, Weight1ra: 40, Weight5ta: 55.5,
			CreatedAt: "2026-10-19T11:50:00Z",
		}, now)

		assert.Equal(t, int64(7), r.ID)
		assert.Equal(t, 5, r.TotalQty)
		assert.InDelta(t, 95.5, r.TotalWeight, 1e-9)
		assert.Equal(t, 3, r.Quantities[domain.SelectionFifth])
		assert.True(t, r.CreatedAt.Equal(time.Date(2026, time.October, 19, 11, 50, 0, 0, time.UTC)))
	})

	t.Run("backend totals win", func(t *testing.T) {
		t.Parallel()

		r := domain.NewRecord(domain.Harvest{Qty1ra: 2, QtyTotal: 9, WeightTotal: 12}, now)
		assert.Equal(t, 9, r.TotalQty)
		assert.InDelta(t, 12.0, r.TotalWeight, 1e-9)
	})

	t.Run("missing date and creation time", func(t *testing.T) {
		t.Parallel()

		r := domain.NewRecord(domain.Harvest{FruitName: "Uva", CreatedAt: "ayer"}, now)
		assert.Equal(t, "2026-10-19", r.Date)
		assert.Equal(t, now, r.CreatedAt)
	})
}

func TestRecord_Editable(t *testing.T) {
	t.Parallel()

	created := time.Date(2026, time.October, 19, 10, 0, 0, 0, time.UTC)
	r := domain.Record{CreatedAt: created}

	assert.True(t, r.Editable(created))
	assert.True(t, r.Editable(created.Add(29*time.Minute+59*time.Second)))
	assert.False(t, r.Editable(created.Add(30*time.Minute)))
	assert.False(t, r.Editable(created.Add(2*time.Hour)))
}

func TestFilterRecords(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		sort   domain.RecordSort
		search string
		want   []string
	}{
		{"backend order", domain.RecordSortNone, "", []string{"mango", "Uva", "Arándano", "Mandarina"}},
		{"az ignores accents and case", domain.RecordSortAZ, "", []string{"Arándano", "Mandarina", "mango", "Uva"}},
		{"za", domain.RecordSortZA, "", []string{"Uva", "mango", "Mandarina", "Arándano"}},
		{"oldest stable within date", domain.RecordSortOldest, "", []string{"Arándano", "mango", "Uva", "Mandarina"}},
		{"search is case-insensitive", domain.RecordSortNone, "MAN", []string{"mango", "Mandarina"}},
		{"search then sort", domain.RecordSortZA, "an", []string{"mango", "Mandarina", "Arándano"}},
		{"no match", domain.RecordSortAZ, "pera", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, names(domain.FilterRecords(sampleRecords(), tt.sort, tt.search)))
		})
	}
}

func TestGroupRecords(t *testing.T) {
	t.Parallel()

	t.Run("newest first by default", func(t *testing.T) {
		t.Parallel()

		groups := domain.GroupRecords(sampleRecords(), domain.RecordSortNone)
		require.Len(t, groups, 3)
		assert.Equal(t, "2026-10-19", groups[0].Date)
		assert.Equal(t, "19 / 10 / 2026", groups[0].Label)
		assert.Equal(t, []string{"Uva", "Mandarina"}, names(groups[0].Records))
		assert.Equal(t, "2026-10-17", groups[2].Date)
	})

	t.Run("oldest first", func(t *testing.T) {
		t.Parallel()

		groups := domain.GroupRecords(sampleRecords(), domain.RecordSortOldest)
		require.Len(t, groups, 3)
		assert.Equal(t, "2026-10-17", groups[0].Date)
		assert.Equal(t, "2026-10-19", groups[2].Date)
	})

	t.Run("alphabetical is ungrouped", func(t *testing.T) {
		t.Parallel()

		sorted := domain.FilterRecords(sampleRecords(), domain.RecordSortAZ, "")
		groups := domain.GroupRecords(sorted, domain.RecordSortAZ)
		require.Len(t, groups, 1)
		assert.Empty(t, groups[0].Label)
		assert.Equal(t, names(sorted), names(groups[0].Records))
	})

	t.Run("empty", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, domain.GroupRecords(nil, domain.RecordSortNone))
	})
}

func TestFormatDate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "05 / 01 / 2026", domain.FormatDate("2026-01-05"))
	assert.Equal(t, "hoy", domain.FormatDate("hoy"))
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	for _, in := range []string{
		"2026-10-19T10:15:30Z",
		"2026-10-19T10:15:30.123456",
		"2026-10-19 10:15:30",
		"2026-10-19",
	} {
		got, ok := domain.ParseTimestamp(in)
		assert.True(t, ok, in)
		assert.Equal(t, 2026, got.Year(), in)
	}

	_, ok := domain.ParseTimestamp("")
	assert.False(t, ok)
	_, ok = domain.ParseTimestamp("19/10/2026")
	assert.False(t, ok)
}
