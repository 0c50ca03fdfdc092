// Package carbon calcula huellas de carbono y métricas ecológicas derivadas.
package carbon

import (
	"math"

	"github.com/shopspring/decimal"

	"ecobazaarx/internal/models"
)

// kg CO2 por kg de producto
var emissionFactors = map[string]float64{
	models.ShippingAir:  0.5,
	models.ShippingRoad: 0.2,
	models.ShippingSea:  0.1,
}

// factores base por categoría (kg CO2e por kg)
var categoryFactors = map[string]float64{
	"Clothing":    25,
	"Electronics": 300,
	"Home":        40,
}

const (
	otherCategoryFactor = 50
	ecoPointsRate       = 0.1
	kmPerKgCO2          = 4
)

// EmissionFactor devuelve el factor del modo de envío
func EmissionFactor(mode string) (float64, bool) {
	f, ok := emissionFactors[mode]
	return f, ok
}

// ShippingModes lista los modos conocidos
func ShippingModes() []string {
	return []string{models.ShippingAir, models.ShippingRoad, models.ShippingSea}
}

// Footprint = peso × factor(modo), redondeado a dos decimales.
// Un modo desconocido produce 0.
func Footprint(weight float64, mode string) float64 {
	factor, _ := EmissionFactor(mode)
	return Round(weight*factor, 2)
}

// SuggestFootprint estima la huella a partir de categoría y peso,
// usado como ayuda al verificar la huella de un producto.
func SuggestFootprint(category string, weight float64) float64 {
	factor, ok := categoryFactors[category]
	if !ok {
		factor = otherCategoryFactor
	}
	if weight <= 0 {
		weight = 0.1
	}
	return Round(math.Max(0.1, weight*factor*0.1), 1)
}

// DrivingEquivalentKm convierte kg CO2 en km equivalentes en auto
func DrivingEquivalentKm(footprint float64) float64 {
	return Round(footprint*kmPerKgCO2, 1)
}

// Round redondea v a places decimales
func Round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
