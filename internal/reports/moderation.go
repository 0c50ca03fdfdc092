package reports

import (
	"time"

	"github.com/montanaflynn/stats"

	"ecobazaarx/internal/carbon"
	"ecobazaarx/internal/models"
)

// approvalWindow es el período de "aprobaciones recientes"
const approvalWindow = 7 * 24 * time.Hour

// ModerationInsights resume la cola de moderación
type ModerationInsights struct {
	Pending            int     `json:"pending"`
	Approved           int     `json:"approved"`
	Rejected           int     `json:"rejected"`
	VerifiedFootprints int     `json:"verified_footprints"`
	AvgFootprint       float64 `json:"avg_footprint"`
	ApprovalsLast7Days int     `json:"approvals_last_7_days"`
}

// BuildModerationInsights cuenta estados y aprobaciones de los últimos 7 días
func BuildModerationInsights(products []models.Product, now time.Time) ModerationInsights {
	var (
		out        ModerationInsights
		footprints = make(stats.Float64Data, 0, len(products))
		since      = now.Add(-approvalWindow)
	)

	for _, p := range products {
		switch p.Status {
		case models.StatusPending:
			out.Pending++
		case models.StatusApproved:
			out.Approved++
		case models.StatusRejected:
			out.Rejected++
		}
		if p.FootprintVerified {
			out.VerifiedFootprints++
		}
		footprints = append(footprints, p.CarbonFootprint)

		for _, e := range p.AuditTrail {
			if e.Action == models.ActionApproved && !e.Timestamp.Before(since) && !e.Timestamp.After(now) {
				out.ApprovalsLast7Days++
			}
		}
	}

	if avg, err := stats.Mean(footprints); err == nil {
		out.AvgFootprint = carbon.Round(avg, 1)
	}
	return out
}
