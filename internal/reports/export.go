package reports

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"ecobazaarx/internal/models"
)

// CarbonCSVHeader son las columnas del export de huella
var CarbonCSVHeader = []string{"OrderID", "Product", "Seller", "Category", "Quantity", "Footprint", "Date"}

// WriteCarbonCSV escribe una fila por orden. Footprint es la huella unitaria
// del producto al momento de la compra.
func WriteCarbonCSV(w io.Writer, orders []models.Order) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CarbonCSVHeader); err != nil {
		return err
	}
	for _, o := range orders {
		seller := o.Product.SellerName
		if seller == "" {
			seller = "Unknown"
		}
		row := []string{
			strconv.FormatInt(o.ID, 10),
			o.Product.Name,
			seller,
			o.Product.Category,
			strconv.Itoa(o.Quantity),
			strconv.FormatFloat(o.Product.CarbonFootprint, 'f', -1, 64),
			o.Date.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
