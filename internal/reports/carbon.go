// Package reports calcula los tableros de huella de carbono, moderación y
// ventas a partir de las vistas del marketplace. Todas las funciones son puras.
package reports

import (
	"sort"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/shopspring/decimal"

	"ecobazaarx/internal/carbon"
	"ecobazaarx/internal/models"
)

const monthLayout = "2006-01"

// Breakdown agrupa huella e ingresos por una clave (categoría, vendedor, mes)
type Breakdown struct {
	Key     string  `json:"key"`
	CO2     float64 `json:"co2"`
	Revenue float64 `json:"revenue"`
	Orders  int     `json:"orders"`
}

// CarbonReport compara el mes actual con el anterior
type CarbonReport struct {
	GeneratedAt     time.Time   `json:"generated_at"`
	TotalCO2        float64     `json:"total_co2"`
	CurrentMonthCO2 float64     `json:"current_month_co2"`
	LastMonthCO2    float64     `json:"last_month_co2"`
	SavedCO2        float64     `json:"saved_co2"`
	DrivingEqKm     float64     `json:"driving_equivalent_km"`
	MeanOrderCO2    float64     `json:"mean_order_co2"`
	MedianOrderCO2  float64     `json:"median_order_co2"`
	Orders          int         `json:"orders"`
	ByCategory      []Breakdown `json:"by_category"`
	BySeller        []Breakdown `json:"by_seller"`
	Monthly         []Breakdown `json:"monthly"`
}

type accumulator struct {
	co2     decimal.Decimal
	revenue decimal.Decimal
	orders  int
}

func (a *accumulator) add(o models.Order) {
	a.co2 = a.co2.Add(decimal.NewFromFloat(o.Footprint))
	a.revenue = a.revenue.Add(decimal.NewFromFloat(o.Total))
	a.orders++
}

type buckets map[string]*accumulator

func (b buckets) add(key string, o models.Order) {
	acc, ok := b[key]
	if !ok {
		acc = &accumulator{}
		b[key] = acc
	}
	acc.add(o)
}

// sorted ordena por CO2 descendente, o por clave si byKey
func (b buckets) sorted(byKey bool) []Breakdown {
	out := make([]Breakdown, 0, len(b))
	for key, acc := range b {
		out = append(out, Breakdown{
			Key:     key,
			CO2:     acc.co2.Round(2).InexactFloat64(),
			Revenue: acc.revenue.Round(2).InexactFloat64(),
			Orders:  acc.orders,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if byKey || out[i].CO2 == out[j].CO2 {
			return out[i].Key < out[j].Key
		}
		return out[i].CO2 > out[j].CO2
	})
	return out
}

// BuildCarbonReport resume la huella de las órdenes. now define el mes actual.
func BuildCarbonReport(orders []models.Order, now time.Time) CarbonReport {
	currentMonth := now.Format(monthLayout)
	lastMonth := now.AddDate(0, 0, -now.Day()).Format(monthLayout)

	var (
		total    = decimal.Zero
		current  = decimal.Zero
		last     = decimal.Zero
		perOrder = make(stats.Float64Data, 0, len(orders))
		byCat    = buckets{}
		bySeller = buckets{}
		byMonth  = buckets{}
	)

	for _, o := range orders {
		fp := decimal.NewFromFloat(o.Footprint)
		total = total.Add(fp)
		perOrder = append(perOrder, o.Footprint)

		// El mes se evalúa en la zona de now; los snapshots restaurados vienen en UTC
		month := o.Date.In(now.Location()).Format(monthLayout)
		switch month {
		case currentMonth:
			current = current.Add(fp)
		case lastMonth:
			last = last.Add(fp)
		}

		category := o.Product.Category
		if category == "" {
			category = "Other"
		}
		seller := o.Product.SellerName
		if seller == "" {
			seller = "Unknown"
		}
		byCat.add(category, o)
		bySeller.add(seller, o)
		byMonth.add(month, o)
	}

	report := CarbonReport{
		GeneratedAt:     now,
		TotalCO2:        total.Round(2).InexactFloat64(),
		CurrentMonthCO2: current.Round(2).InexactFloat64(),
		LastMonthCO2:    last.Round(2).InexactFloat64(),
		SavedCO2:        last.Sub(current).Round(2).InexactFloat64(),
		DrivingEqKm:     carbon.DrivingEquivalentKm(total.Round(2).InexactFloat64()),
		Orders:          len(orders),
		ByCategory:      byCat.sorted(false),
		BySeller:        bySeller.sorted(false),
		Monthly:         byMonth.sorted(true),
	}

	// stats sólo falla con la entrada vacía
	if mean, err := stats.Mean(perOrder); err == nil {
		report.MeanOrderCO2 = carbon.Round(mean, 2)
	}
	if median, err := stats.Median(perOrder); err == nil {
		report.MedianOrderCO2 = carbon.Round(median, 2)
	}
	return report
}
