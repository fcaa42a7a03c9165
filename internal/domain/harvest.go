package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gosuda/agrotrack/internal/apperr"
)

// Selection is a quality grade a harvest is split into.
type Selection string

const (
	SelectionFirst  Selection = "1ra"
	SelectionThird  Selection = "3ra"
	SelectionFifth  Selection = "5ta"
	SelectionMature Selection = "Madura"
)

// Selections lists the grades in display order.
func Selections() []Selection {
	return []Selection{SelectionFirst, SelectionThird, SelectionFifth, SelectionMature}
}

// Harvest limits enforced before a harvest reaches the backend.
const (
	MinFruitNameLen   = 3
	MaxTotalQuantity  = 10000
	MaxTotalWeight    = 100000
	MinAvgCrateWeight = 1
	MaxAvgCrateWeight = 100
)

// Form field keys used in harvest validation errors.
const (
	FieldFruitName = "nombreFruta"
	FieldQuantity  = "cantidad"
	FieldWeight    = "peso"
)

// Harvest is a recorded harvest as the backend returns it. Quantities are in
// crates (javas), weights in kilograms.
type Harvest struct {
	ID           int64   `json:"idHarvest,omitempty"`
	SellerID     int64   `json:"idSeller"`
	FruitName    string  `json:"fruitName"`
	HarvestDate  string  `json:"harvestDate,omitempty"`
	Qty1ra       int     `json:"qty1ra"`
	Qty3ra       int     `json:"qty3ra"`
	Qty5ta       int     `json:"qty5ta"`
	QtyMadura    int     `json:"qtyMadura"`
	QtyTotal     int     `json:"qtyTotal,omitempty"`
	Weight1ra    float64 `json:"weight1ra"`
	Weight3ra    float64 `json:"weight3ra"`
	Weight5ta    float64 `json:"weight5ta"`
	WeightMadura float64 `json:"weightMadura"`
	WeightTotal  float64 `json:"weightTotal,omitempty"`
	State        State   `json:"state,omitempty"`
	CreatedAt    string  `json:"createdAt,omitempty"`
	UpdatedAt    string  `json:"updatedAt,omitempty"`
}

// HarvestRequest is the payload for registering a harvest.
type HarvestRequest struct {
	SellerID     int64   `json:"idSeller" validate:"gt=0"`
	FruitName    string  `json:"fruitName"`
	Qty1ra       int     `json:"qty1ra"`
	Qty3ra       int     `json:"qty3ra"`
	Qty5ta       int     `json:"qty5ta"`
	QtyMadura    int     `json:"qtyMadura"`
	Weight1ra    float64 `json:"weight1ra"`
	Weight3ra    float64 `json:"weight3ra"`
	Weight5ta    float64 `json:"weight5ta"`
	WeightMadura float64 `json:"weightMadura"`
}

// Request converts a stored harvest back into an editable payload.
func (h Harvest) Request() HarvestRequest {
	return HarvestRequest{
		SellerID:     h.SellerID,
		FruitName:    h.FruitName,
		Qty1ra:       h.Qty1ra,
		Qty3ra:       h.Qty3ra,
		Qty5ta:       h.Qty5ta,
		QtyMadura:    h.QtyMadura,
		Weight1ra:    h.Weight1ra,
		Weight3ra:    h.Weight3ra,
		Weight5ta:    h.Weight5ta,
		WeightMadura: h.WeightMadura,
	}
}

// Quantity returns the crates recorded for sel.
func (r HarvestRequest) Quantity(sel Selection) int {
	switch sel {
	case SelectionFirst:
		return r.Qty1ra
	case SelectionThird:
		return r.Qty3ra
	case SelectionFifth:
		return r.Qty5ta
	case SelectionMature:
		return r.QtyMadura
	default:
		return 0
	}
}

// Weight returns the kilograms recorded for sel.
func (r HarvestRequest) Weight(sel Selection) float64 {
	switch sel {
	case SelectionFirst:
		return r.Weight1ra
	case SelectionThird:
		return r.Weight3ra
	case SelectionFifth:
		return r.Weight5ta
	case SelectionMature:
		return r.WeightMadura
	default:
		return 0
	}
}

// SetQuantity records crates for sel.
func (r *HarvestRequest) SetQuantity(sel Selection, qty int) {
	switch sel {
	case SelectionFirst:
		r.Qty1ra = qty
	case SelectionThird:
		r.Qty3ra = qty
	case SelectionFifth:
		r.Qty5ta = qty
	case SelectionMature:
		r.QtyMadura = qty
	}
}

// SetWeight records kilograms for sel.
func (r *HarvestRequest) SetWeight(sel Selection, kg float64) {
	switch sel {
	case SelectionFirst:
		r.Weight1ra = kg
	case SelectionThird:
		r.Weight3ra = kg
	case SelectionFifth:
		r.Weight5ta = kg
	case SelectionMature:
		r.WeightMadura = kg
	}
}

// TotalQuantity sums the crates across selections.
func (r HarvestRequest) TotalQuantity() int {
	return r.Qty1ra + r.Qty3ra + r.Qty5ta + r.QtyMadura
}

// TotalWeight sums the kilograms across selections.
func (r HarvestRequest) TotalWeight() float64 {
	return r.Weight1ra + r.Weight3ra + r.Weight5ta + r.WeightMadura
}

// Validate checks the form rules and returns a validation error carrying
// every broken rule per field.
func (r HarvestRequest) Validate() error {
	fields, err := fieldErrors(r)
	if err != nil {
		return err
	}
	if fields == nil {
		fields = make(map[string][]string)
	}

	name := strings.TrimSpace(r.FruitName)
	switch {
	case name == "":
		fields[FieldFruitName] = []string{"El nombre de la fruta es requerido"}
	case utf8.RuneCountInString(name) < MinFruitNameLen:
		fields[FieldFruitName] = []string{"El nombre debe tener al menos 3 caracteres"}
	}

	switch qty := r.TotalQuantity(); {
	case qty == 0:
		fields[FieldQuantity] = []string{"Debe ingresar al menos una cantidad en alguna selección"}
	case qty > MaxTotalQuantity:
		fields[FieldQuantity] = []string{"La cantidad total no puede exceder las 10,000 javas"}
	}

	switch kg := r.TotalWeight(); {
	case kg == 0:
		fields[FieldWeight] = []string{"Debe ingresar al menos un peso en alguna selección"}
	case kg > MaxTotalWeight:
		fields[FieldWeight] = []string{"El peso total no puede exceder los 100,000 kg"}
	}

	var negQty, negKg bool
	for _, sel := range Selections() {
		negQty = negQty || r.Quantity(sel) < 0
		negKg = negKg || r.Weight(sel) < 0
	}
	if negQty {
		fields[FieldQuantity] = append(fields[FieldQuantity], "Las cantidades no pueden ser negativas")
	}
	if negKg {
		fields[FieldWeight] = append(fields[FieldWeight], "Los pesos no pueden ser negativos")
	}

	if len(fields) > 0 {
		return apperr.NewValidation(MsgInvalidForm, fields)
	}
	return nil
}

// CheckRules applies the business rules that only make sense on a well-formed
// request: every selection pairs crates with weight, and the average crate
// weight is plausible. The first broken rule is returned.
func (r HarvestRequest) CheckRules() error {
	for _, sel := range Selections() {
		qty, kg := r.Quantity(sel), r.Weight(sel)
		if qty > 0 && kg == 0 {
			return apperr.NewBusiness(fmt.Sprintf("La selección %q tiene cantidad pero no tiene peso registrado", sel))
		}
		if kg > 0 && qty == 0 {
			return apperr.NewBusiness(fmt.Sprintf("La selección %q tiene peso pero no tiene cantidad registrada", sel))
		}
	}

	avg := r.TotalWeight() / float64(r.TotalQuantity())
	if avg < MinAvgCrateWeight {
		return apperr.NewBusiness("El peso promedio por java es muy bajo (menor a 1kg). Verifique los datos ingresados.")
	}
	if avg > MaxAvgCrateWeight {
		return apperr.NewBusiness("El peso promedio por java es muy alto (mayor a 100kg). Verifique los datos ingresados.")
	}
	return nil
}

// Check runs Validate and then CheckRules.
func (r HarvestRequest) Check() error {
	if err := r.Validate(); err != nil {
		return err
	}
	return r.CheckRules()
}

// Normalized returns r with the fruit name trimmed, as it is sent.
func (r HarvestRequest) Normalized() HarvestRequest {
	r.FruitName = strings.TrimSpace(r.FruitName)
	return r
}

// Summary is the confirmation text shown after a harvest is saved.
func (h Harvest) Summary(savedAt time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Fruta: %s\n", h.FruitName)
	fmt.Fprintf(&b, "Fecha: %s\n\n", LongDate(savedAt))
	b.WriteString("📊 Resumen:\n")
	fmt.Fprintf(&b, "• 1ª: %d javas (%s kg)\n", h.Qty1ra, FormatKg(h.Weight1ra))
	fmt.Fprintf(&b, "• 3ª: %d javas (%s kg)\n", h.Qty3ra, FormatKg(h.Weight3ra))
	fmt.Fprintf(&b, "• 5ª: %d javas (%s kg)\n", h.Qty5ta, FormatKg(h.Weight5ta))
	fmt.Fprintf(&b, "• Madura: %d javas (%s kg)\n\n", h.QtyMadura, FormatKg(h.WeightMadura))
	fmt.Fprintf(&b, "📦 Total: %d javas\n", h.QtyTotal)
	fmt.Fprintf(&b, "⚖️ Peso total: %s kg", FormatKg(h.WeightTotal))
	return b.String()
}

// FormatKg prints a weight with no trailing zeros.
func FormatKg(kg float64) string {
	return strconv.FormatFloat(kg, 'f', -1, 64)
}

var monthsES = [...]string{ //nolint:gochecknoglobals // lookup table
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// LongDate formats t as "02 de enero de 2006" in Peruvian Spanish.
func LongDate(t time.Time) string {
	return fmt.Sprintf("%02d de %s de %d", t.Day(), monthsES[t.Month()-1], t.Year())
}
