package calculator

import (
	"sort"

	"github.com/luc4spas/erp-joy-maker/internal/model"
)

// BrandRangeTotals totals of one brand across a date range
type BrandRangeTotals struct {
	ItemsValue    float64            `json:"itemsValue"`
	ServiceCharge float64            `json:"serviceCharge"`
	Total         float64            `json:"total"`
	Commission    float64            `json:"commission"`
	Payments      map[string]float64 `json:"payments"`
}

// DailySale revenue of one closing day
type DailySale struct {
	Date  string  `json:"date"`
	Total float64 `json:"total"`
}

// RangeSummary dashboard figures over a set of closings and expenses
type RangeSummary struct {
	Revenue       float64          `json:"revenue"`
	ServiceCharge float64          `json:"serviceCharge"`
	Commission    float64          `json:"commission"`
	Expenses      float64          `json:"expenses"`
	NetBalance    float64          `json:"netBalance"`
	Trattoria     BrandRangeTotals `json:"trattoria"`
	Japa          BrandRangeTotals `json:"japa"`
	DailySales    []DailySale      `json:"dailySales"`
	RecordCount   int              `json:"recordCount"`
}

// SummarizeRange sums closings (in date order) and expenses into dashboard figures
func SummarizeRange(closings []model.ClosingRecord, expenses []model.Expense) RangeSummary {
	ordered := append([]model.ClosingRecord(nil), closings...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Date < ordered[j].Date })

	summary := RangeSummary{
		Trattoria:   BrandRangeTotals{Payments: map[string]float64{}},
		Japa:        BrandRangeTotals{Payments: map[string]float64{}},
		DailySales:  make([]DailySale, 0, len(ordered)),
		RecordCount: len(ordered),
	}

	for _, c := range ordered {
		summary.Revenue += c.TotalGeneral
		summary.ServiceCharge += c.Japa.ServiceCharge + c.Trattoria.ServiceCharge
		summary.Commission += c.Japa.Commission + c.Trattoria.Commission

		addBrand(&summary.Trattoria, c.Trattoria)
		addBrand(&summary.Japa, c.Japa)

		summary.DailySales = append(summary.DailySales, DailySale{Date: c.Date, Total: c.TotalGeneral})
	}

	for _, e := range expenses {
		summary.Expenses += e.Amount
	}
	summary.NetBalance = summary.Revenue - summary.Expenses

	return summary
}

func addBrand(dst *BrandRangeTotals, src model.BrandTotals) {
	dst.ItemsValue += src.ItemsValue
	dst.ServiceCharge += src.ServiceCharge
	dst.Total += src.Total
	dst.Commission += src.Commission

	methods := make([]string, 0, len(src.Payments))
	for method := range src.Payments {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	for _, method := range methods {
		dst.Payments[method] += src.Payments[method]
	}
}
