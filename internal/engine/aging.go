package engine

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sjperalta/bailbooks-api/internal/models"
)

// AgingBucket groups overdue installments by days late. MaxDays is 0 for the
// open-ended last bucket.
type AgingBucket struct {
	Label        string               `json:"label"`
	MinDays      int                  `json:"min_days"`
	MaxDays      int                  `json:"max_days"`
	Count        int                  `json:"count"`
	Total        decimal.Decimal      `json:"total"`
	Installments []models.Installment `json:"installments"`
}

// NewAgingBuckets returns the empty buckets for a set of boundaries: 1..b0,
// b0+1..b1, ..., and bN+.
func NewAgingBuckets(boundaries []int) []AgingBucket {
	bounds := normalizeBoundaries(boundaries)
	buckets := make([]AgingBucket, 0, len(bounds)+1)
	lower := 1
	for _, b := range bounds {
		buckets = append(buckets, AgingBucket{
			Label:        fmt.Sprintf("%d-%d days", lower, b),
			MinDays:      lower,
			MaxDays:      b,
			Total:        decimal.Zero,
			Installments: []models.Installment{},
		})
		lower = b + 1
	}
	last := bounds[len(bounds)-1]
	buckets = append(buckets, AgingBucket{
		Label:        fmt.Sprintf("%d+ days", last),
		MinDays:      last + 1,
		Total:        decimal.Zero,
		Installments: []models.Installment{},
	})
	return buckets
}

// BucketOverdue places every overdue installment into the first bucket whose upper
// boundary it does not exceed, else into the open-ended bucket. All buckets are
// returned, in ascending severity, even when empty.
func BucketOverdue(installments []models.Installment, today time.Time, boundaries []int) []AgingBucket {
	buckets := NewAgingBuckets(boundaries)
	for i := range installments {
		inst := &installments[i]
		if !IsOverdue(inst, today) {
			continue
		}
		days := DaysBetween(*inst.DueDate, today)
		idx := len(buckets) - 1
		for j := 0; j < len(buckets)-1; j++ {
			if days <= buckets[j].MaxDays {
				idx = j
				break
			}
		}
		b := &buckets[idx]
		b.Installments = append(b.Installments, *inst)
		b.Count++
		b.Total = b.Total.Add(inst.Amount)
	}
	return buckets
}

// OverdueTotals returns the summed amount and count across all buckets.
func OverdueTotals(buckets []AgingBucket) (decimal.Decimal, int) {
	total, count := decimal.Zero, 0
	for _, b := range buckets {
		total = total.Add(b.Total)
		count += b.Count
	}
	return total, count
}
