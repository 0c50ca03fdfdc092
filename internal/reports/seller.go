package reports

import (
	"sort"

	"github.com/shopspring/decimal"

	"ecobazaarx/internal/models"
)

// topProductsLimit limita el ranking del tablero
const topProductsLimit = 5

// ProductSales son las ventas acumuladas de un producto
type ProductSales struct {
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	Units     int     `json:"units"`
	Revenue   float64 `json:"revenue"`
}

// SellerDashboard es el tablero de un vendedor
type SellerDashboard struct {
	SellerID        int64          `json:"seller_id"`
	Revenue         float64        `json:"revenue"`
	Units           int            `json:"units"`
	Orders          int            `json:"orders"`
	CO2             float64        `json:"co2"`
	Products        int            `json:"products"`
	PendingProducts int            `json:"pending_products"`
	TopProducts     []ProductSales `json:"top_products"`
}

// BuildSellerDashboard filtra órdenes y productos del vendedor
func BuildSellerDashboard(orders []models.Order, products []models.Product, sellerID int64) SellerDashboard {
	out := SellerDashboard{SellerID: sellerID, TopProducts: []ProductSales{}}

	for _, p := range products {
		if p.SellerID != sellerID {
			continue
		}
		out.Products++
		if p.Status == models.StatusPending {
			out.PendingProducts++
		}
	}

	revenue := decimal.Zero
	co2 := decimal.Zero
	type sales struct {
		name    string
		units   int
		revenue decimal.Decimal
	}
	perProduct := map[int64]*sales{}

	for _, o := range orders {
		if o.Product.SellerID != sellerID {
			continue
		}
		total := decimal.NewFromFloat(o.Total)
		revenue = revenue.Add(total)
		co2 = co2.Add(decimal.NewFromFloat(o.Footprint))
		out.Units += o.Quantity
		out.Orders++

		s, ok := perProduct[o.Product.ID]
		if !ok {
			s = &sales{name: o.Product.Name}
			perProduct[o.Product.ID] = s
		}
		s.units += o.Quantity
		s.revenue = s.revenue.Add(total)
	}

	out.Revenue = revenue.Round(2).InexactFloat64()
	out.CO2 = co2.Round(2).InexactFloat64()

	for id, s := range perProduct {
		out.TopProducts = append(out.TopProducts, ProductSales{
			ProductID: id,
			Name:      s.name,
			Units:     s.units,
			Revenue:   s.revenue.Round(2).InexactFloat64(),
		})
	}
	sort.Slice(out.TopProducts, func(i, j int) bool {
		a, b := out.TopProducts[i], out.TopProducts[j]
		if a.Units != b.Units {
			return a.Units > b.Units
		}
		return a.ProductID < b.ProductID
	})
	if len(out.TopProducts) > topProductsLimit {
		out.TopProducts = out.TopProducts[:topProductsLimit]
	}
	return out
}
