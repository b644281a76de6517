package services

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/hucha-app/hucha/internal/core/domain"
)

// BucketTotal is one slice of an aggregate report: absolute amounts summed
// per category or per tag.
type BucketTotal struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Color string          `json:"color"`
	Total decimal.Decimal `json:"total"`
}

// ReportingService derives aggregate views from a snapshot. It is read-only
// and placeholder-aware: dangling category references land in the
// "Desconocido" bucket, dangling tag ids are dropped.
type ReportingService struct{}

// NewReportingService creates a reporting service.
func NewReportingService() *ReportingService {
	return &ReportingService{}
}

func inRange(date, from, to string) bool {
	if from != "" && date < from {
		return false
	}
	if to != "" && date > to {
		return false
	}
	return true
}

// Balance returns initialBalance plus the signed sum of every transaction.
func (r *ReportingService) Balance(snap domain.Snapshot) decimal.Decimal {
	total := snap.Settings.InitialBalance
	for _, t := range snap.Transactions {
		total = total.Add(t.Amount)
	}
	return total
}

// CategoryTotals sums absolute amounts per category over [from, to]
// (ISO-8601 dates, empty bound = unbounded), largest first. Transactions
// without a category bucket under "Otros"; dangling references bucket under
// the placeholder instead of failing.
func (r *ReportingService) CategoryTotals(snap domain.Snapshot, from, to string) []BucketTotal {
	catByID := make(map[string]domain.Category, len(snap.Categories))
	for _, c := range snap.Categories {
		catByID[c.ID] = c
	}

	totals := map[string]decimal.Decimal{}
	for _, t := range snap.Transactions {
		if !inRange(t.Date, from, to) {
			continue
		}
		key := t.CategoryID
		if key == "" {
			key = "other"
		}
		totals[key] = totals[key].Add(t.Amount.Abs())
	}

	out := make([]BucketTotal, 0, len(totals))
	for id, total := range totals {
		switch {
		case id == "other":
			out = append(out, BucketTotal{ID: "other", Name: "Otros", Color: "#9e9e9e", Total: total})
		default:
			cat, ok := catByID[id]
			if !ok {
				cat = domain.PlaceholderCategory()
			}
			out = append(out, BucketTotal{ID: cat.ID, Name: cat.Name, Color: cat.Color, Total: total})
		}
	}
	sortBuckets(out)
	return out
}

// TagTotals sums absolute amounts per resolvable tag over [from, to].
// Transactions whose tag ids all dangle (or that carry none) bucket under
// "Sin etiqueta".
func (r *ReportingService) TagTotals(snap domain.Snapshot, from, to string) []BucketTotal {
	tagByID := make(map[string]domain.Tag, len(snap.Tags))
	for _, t := range snap.Tags {
		tagByID[t.ID] = t
	}

	totals := map[string]decimal.Decimal{}
	untagged := decimal.Zero
	for _, t := range snap.Transactions {
		if !inRange(t.Date, from, to) {
			continue
		}
		known := 0
		for _, tagID := range t.TagIDs {
			if _, ok := tagByID[tagID]; ok {
				totals[tagID] = totals[tagID].Add(t.Amount.Abs())
				known++
			}
		}
		if known == 0 {
			untagged = untagged.Add(t.Amount.Abs())
		}
	}

	out := make([]BucketTotal, 0, len(totals)+1)
	for id, total := range totals {
		tag := tagByID[id]
		out = append(out, BucketTotal{ID: tag.ID, Name: tag.Name, Color: tag.Color, Total: total})
	}
	sortBuckets(out)
	if untagged.IsPositive() {
		out = append(out, BucketTotal{ID: "untagged", Name: "Sin etiqueta", Color: "#9e9e9e", Total: untagged})
	}
	return out
}

func sortBuckets(buckets []BucketTotal) {
	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].Total.GreaterThan(buckets[j].Total)
	})
}
