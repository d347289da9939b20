package calculator

import (
	"sort"

	"github.com/luc4spas/erp-joy-maker/internal/model"
)

// DefaultCommissionRate waiter commission over item value
const DefaultCommissionRate = 0.08

// Aggregate partitions rows by restaurant and returns both summaries, Trattoria first.
// A restaurant without rows still gets a zero-valued summary.
func Aggregate(rows []model.NormalizedRow, commissionRate float64) (trattoria, japa model.RestaurantSummary) {
	var trattoriaRows, japaRows []model.NormalizedRow
	for _, row := range rows {
		if Classify(row.TableLabel) == model.RestaurantTrattoria {
			trattoriaRows = append(trattoriaRows, row)
		} else {
			japaRows = append(japaRows, row)
		}
	}

	trattoria = Summarize(model.RestaurantTrattoria, trattoriaRows, commissionRate)
	japa = Summarize(model.RestaurantJapa, japaRows, commissionRate)
	return trattoria, japa
}

// Summarize builds the summary of one restaurant's rows
func Summarize(restaurant model.Restaurant, rows []model.NormalizedRow, commissionRate float64) model.RestaurantSummary {
	summary := model.RestaurantSummary{
		Restaurant:      restaurant,
		ByPaymentMethod: make(map[string]model.PaymentMethodAggregate),
	}

	for _, row := range rows {
		agg := summary.ByPaymentMethod[row.PaymentMethod]
		agg.ItemsValue += row.ItemsValue
		agg.ServiceCharge += row.ServiceCharge
		agg.ReceivedValue += row.ReceivedAmount
		summary.ByPaymentMethod[row.PaymentMethod] = agg

		summary.TotalItemsValue += row.ItemsValue
		summary.TotalServiceCharge += row.ServiceCharge
	}

	applyChangeAdjustment(summary.ByPaymentMethod)

	// total received only after the change bucket is netted out
	for _, method := range SortedMethods(summary.ByPaymentMethod) {
		summary.TotalGeneral += summary.ByPaymentMethod[method].ReceivedValue
	}
	summary.WaiterCommission = summary.TotalItemsValue * commissionRate

	return summary
}

// applyChangeAdjustment nets TROCO (negative) into DINHEIRO and drops the TROCO bucket
func applyChangeAdjustment(byMethod map[string]model.PaymentMethodAggregate) {
	change, ok := byMethod[model.PaymentChange]
	if !ok {
		return
	}
	if cash, ok := byMethod[model.PaymentCash]; ok {
		cash.ReceivedValue += change.ReceivedValue
		byMethod[model.PaymentCash] = cash
	}
	delete(byMethod, model.PaymentChange)
}

// SortedMethods payment method keys in a stable order
func SortedMethods(byMethod map[string]model.PaymentMethodAggregate) []string {
	methods := make([]string, 0, len(byMethod))
	for method := range byMethod {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	return methods
}
