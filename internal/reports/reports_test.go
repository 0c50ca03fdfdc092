package reports

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecobazaarx/internal/models"
)

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func order(id int64, category, seller string, sellerID int64, qty int, total, footprint float64, date time.Time) models.Order {
	return models.Order{
		ID:        id,
		Product:   models.ProductSnapshot{ID: id * 10, Name: category + " item", Category: category, SellerID: sellerID, SellerName: seller},
		Quantity:  qty,
		Total:     total,
		Footprint: footprint,
		Date:      date,
	}
}

func TestBuildCarbonReport(t *testing.T) {
	orders := []models.Order{
		order(1, "Clothing", "Alice", 1, 1, 20, 2.5, now.AddDate(0, 0, -2)),
		order(2, "Home", "Bob", 2, 2, 30, 1.5, now.AddDate(0, 0, -5)),
		order(3, "Clothing", "Alice", 1, 1, 10, 6, time.Date(2025, 5, 31, 23, 0, 0, 0, time.UTC)),
		order(4, "", "", 0, 1, 5, 0.1, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)),
	}

	r := BuildCarbonReport(orders, now)

	assert.Equal(t, 4, r.Orders)
	assert.Equal(t, 10.1, r.TotalCO2)
	assert.Equal(t, 4.0, r.CurrentMonthCO2)
	assert.Equal(t, 6.0, r.LastMonthCO2)
	assert.Equal(t, 2.0, r.SavedCO2)
	assert.Equal(t, 40.4, r.DrivingEqKm)
	assert.Equal(t, 2.53, r.MeanOrderCO2)
	assert.Equal(t, 2.0, r.MedianOrderCO2)

	require.Len(t, r.ByCategory, 3)
	assert.Equal(t, Breakdown{Key: "Clothing", CO2: 8.5, Revenue: 30, Orders: 2}, r.ByCategory[0])
	assert.Equal(t, "Other", r.ByCategory[2].Key)

	require.Len(t, r.BySeller, 3)
	assert.Equal(t, "Alice", r.BySeller[0].Key)
	assert.Equal(t, "Unknown", r.BySeller[2].Key)

	require.Len(t, r.Monthly, 3)
	assert.Equal(t, []string{"2025-03", "2025-05", "2025-06"},
		[]string{r.Monthly[0].Key, r.Monthly[1].Key, r.Monthly[2].Key})
}

func TestBuildCarbonReport_Empty(t *testing.T) {
	r := BuildCarbonReport(nil, now)
	assert.Zero(t, r.TotalCO2)
	assert.Zero(t, r.MeanOrderCO2)
	assert.Empty(t, r.ByCategory)
	assert.Empty(t, r.Monthly)
}

func TestBuildCarbonReport_IncreaseGivesNegativeSavings(t *testing.T) {
	orders := []models.Order{
		order(1, "Home", "Bob", 2, 1, 1, 3, now),
		order(2, "Home", "Bob", 2, 1, 1, 1, now.AddDate(0, -1, 0)),
	}
	r := BuildCarbonReport(orders, now)
	assert.Equal(t, -2.0, r.SavedCO2)
}

func TestBuildModerationInsights(t *testing.T) {
	approvedRecently := models.Product{
		ID: 1, Status: models.StatusApproved, CarbonFootprint: 1.25, FootprintVerified: true,
		AuditTrail: []models.AuditEntry{{Action: models.ActionApproved, Timestamp: now.Add(-24 * time.Hour)}},
	}
	approvedLongAgo := models.Product{
		ID: 2, Status: models.StatusApproved, CarbonFootprint: 2,
		AuditTrail: []models.AuditEntry{{Action: models.ActionApproved, Timestamp: now.AddDate(0, 0, -30)}},
	}
	pending := models.Product{ID: 3, Status: models.StatusPending, CarbonFootprint: 0.5}
	rejected := models.Product{
		ID: 4, Status: models.StatusRejected, CarbonFootprint: 4,
		AuditTrail: []models.AuditEntry{{Action: models.ActionRejected, Timestamp: now}},
	}

	m := BuildModerationInsights([]models.Product{approvedRecently, approvedLongAgo, pending, rejected}, now)

	assert.Equal(t, 1, m.Pending)
	assert.Equal(t, 2, m.Approved)
	assert.Equal(t, 1, m.Rejected)
	assert.Equal(t, 1, m.VerifiedFootprints)
	assert.Equal(t, 1, m.ApprovalsLast7Days)
	assert.Equal(t, 1.9, m.AvgFootprint)
}

func TestBuildModerationInsights_Empty(t *testing.T) {
	m := BuildModerationInsights(nil, now)
	assert.Equal(t, ModerationInsights{}, m)
}

func TestBuildSellerDashboard(t *testing.T) {
	orders := []models.Order{
		order(1, "Clothing", "Alice", 1, 2, 40, 1, now),
		order(2, "Home", "Alice", 1, 5, 25.5, 2, now),
		order(3, "Home", "Bob", 2, 1, 99, 3, now),
	}
	orders = append(orders, orders[0])
	orders[3].ID = 4

	products := []models.Product{
		{ID: 10, SellerID: 1, Status: models.StatusApproved},
		{ID: 20, SellerID: 1, Status: models.StatusPending},
		{ID: 30, SellerID: 2, Status: models.StatusPending},
	}

	d := BuildSellerDashboard(orders, products, 1)

	assert.Equal(t, int64(1), d.SellerID)
	assert.Equal(t, 105.5, d.Revenue)
	assert.Equal(t, 9, d.Units)
	assert.Equal(t, 3, d.Orders)
	assert.Equal(t, 4.0, d.CO2)
	assert.Equal(t, 2, d.Products)
	assert.Equal(t, 1, d.PendingProducts)

	require.Len(t, d.TopProducts, 2)
	assert.Equal(t, int64(20), d.TopProducts[0].ProductID)
	assert.Equal(t, 5, d.TopProducts[0].Units)
	assert.Equal(t, ProductSales{ProductID: 10, Name: "Clothing item", Units: 4, Revenue: 80}, d.TopProducts[1])
}

func TestBuildSellerDashboard_NoSales(t *testing.T) {
	d := BuildSellerDashboard(nil, nil, 9)
	assert.NotNil(t, d.TopProducts)
	assert.Empty(t, d.TopProducts)
	assert.Zero(t, d.Revenue)
}

func TestBuildCarbonReport_BucketsMonthsInReportZone(t *testing.T) {
	zone := time.FixedZone("UTC+2", 2*60*60)
	localNow := time.Date(2025, 7, 10, 12, 0, 0, 0, zone)
	orders := []models.Order{
		// 1 de julio 01:30 en la zona del reporte
		order(1, "Home", "Bob", 2, 1, 10, 3, time.Date(2025, 6, 30, 23, 30, 0, 0, time.UTC)),
		order(2, "Home", "Bob", 2, 1, 10, 1, time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)),
	}

	r := BuildCarbonReport(orders, localNow)

	assert.Equal(t, 3.0, r.CurrentMonthCO2)
	assert.Equal(t, 1.0, r.LastMonthCO2)
	require.Len(t, r.Monthly, 2)
	assert.Equal(t, "2025-06", r.Monthly[0].Key)
	assert.Equal(t, "2025-07", r.Monthly[1].Key)
}

func TestWriteCarbonCSV(t *testing.T) {
	o := order(7, "Clothing", "Alice, Ltd", 1, 3, 30, 1.8, time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC))
	o.Product.CarbonFootprint = 0.6
	anonymous := order(8, "Home", "", 0, 1, 5, 0.1, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC))

	var buf bytes.Buffer
	require.NoError(t, WriteCarbonCSV(&buf, []models.Order{o, anonymous}))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, CarbonCSVHeader, rows[0])
	assert.Equal(t, []string{"7", "Clothing item", "Alice, Ltd", "Clothing", "3", "0.6", "2025-06-01T09:30:00Z"}, rows[1])
	assert.Equal(t, "Unknown", rows[2][2])
}

func TestWriteCarbonCSV_HeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCarbonCSV(&buf, nil))
	assert.Equal(t, "OrderID,Product,Seller,Category,Quantity,Footprint,Date\n", buf.String())
}
