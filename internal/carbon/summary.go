package carbon

import (
	"github.com/shopspring/decimal"

	"ecobazaarx/internal/models"
)

// CartSummary resume el carrito para el checkout
type CartSummary struct {
	Items       int     `json:"items"`
	Units       int     `json:"units"`
	TotalCost   float64 `json:"total_cost"`
	TotalCO2    float64 `json:"total_co2"`
	EcoPoints   int64   `json:"eco_points"`
	DrivingEqKm float64 `json:"driving_equivalent_km"`
}

// Summarize suma costo y huella de las líneas del carrito
func Summarize(lines []models.CartLine) CartSummary {
	cost := decimal.Zero
	co2 := decimal.Zero
	units := 0
	for _, l := range lines {
		qty := decimal.NewFromInt(int64(l.Quantity))
		cost = cost.Add(decimal.NewFromFloat(l.Product.Price).Mul(qty))
		co2 = co2.Add(decimal.NewFromFloat(l.Product.CarbonFootprint).Mul(qty))
		units += l.Quantity
	}
	totalCO2 := co2.Round(2).InexactFloat64()
	return CartSummary{
		Items:       len(lines),
		Units:       units,
		TotalCost:   cost.Round(2).InexactFloat64(),
		TotalCO2:    totalCO2,
		EcoPoints:   co2.Mul(decimal.NewFromFloat(ecoPointsRate)).Round(0).IntPart(),
		DrivingEqKm: DrivingEquivalentKm(totalCO2),
	}
}

// LineTotal devuelve precio × cantidad redondeado a centavos
func LineTotal(price float64, quantity int) float64 {
	return decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(quantity))).Round(2).InexactFloat64()
}
