package v1

import (
	"github.com/shopspring/decimal"

	"github.com/luc4spas/erp-joy-maker/internal/calculator"
	"github.com/luc4spas/erp-joy-maker/internal/model"
	"github.com/luc4spas/erp-joy-maker/internal/rateio"
)

// roundMoney rounds half away from zero to cents
func roundMoney(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func roundBrandAmounts(b rateio.BrandAmounts) rateio.BrandAmounts {
	return rateio.BrandAmounts{Japa: roundMoney(b.Japa), Trattoria: roundMoney(b.Trattoria)}
}

func roundRateioResult(r rateio.Result) rateio.Result {
	out := r
	out.CommissionPool = roundBrandAmounts(r.CommissionPool)
	out.ServiceChargePool = roundBrandAmounts(r.ServiceChargePool)
	out.Retained = roundBrandAmounts(r.Retained)

	out.Cells = make([]rateio.Cell, len(r.Cells))
	for i, cell := range r.Cells {
		cell.Share = roundMoney(cell.Share)
		cell.PerCapita = roundMoney(cell.PerCapita)
		out.Cells[i] = cell
	}

	out.Payouts = make([]rateio.Payout, len(r.Payouts))
	for i, p := range r.Payouts {
		p.FromJapa = roundMoney(p.FromJapa)
		p.FromTrattoria = roundMoney(p.FromTrattoria)
		p.Total = roundMoney(p.Total)
		out.Payouts[i] = p
	}
	return out
}

func roundSummaryInPlace(s *model.RestaurantSummary) {
	s.TotalItemsValue = roundMoney(s.TotalItemsValue)
	s.TotalServiceCharge = roundMoney(s.TotalServiceCharge)
	s.TotalGeneral = roundMoney(s.TotalGeneral)
	s.WaiterCommission = roundMoney(s.WaiterCommission)
	for method, agg := range s.ByPaymentMethod {
		agg.ItemsValue = roundMoney(agg.ItemsValue)
		agg.ServiceCharge = roundMoney(agg.ServiceCharge)
		agg.ReceivedValue = roundMoney(agg.ReceivedValue)
		s.ByPaymentMethod[method] = agg
	}
}

func roundBatchInPlace(b *model.Batch) {
	roundSummaryInPlace(&b.Trattoria)
	roundSummaryInPlace(&b.Japa)
}

func roundBrandRange(b calculator.BrandRangeTotals) calculator.BrandRangeTotals {
	out := calculator.BrandRangeTotals{
		ItemsValue:    roundMoney(b.ItemsValue),
		ServiceCharge: roundMoney(b.ServiceCharge),
		Total:         roundMoney(b.Total),
		Commission:    roundMoney(b.Commission),
		Payments:      make(map[string]float64, len(b.Payments)),
	}
	for method, v := range b.Payments {
		out.Payments[method] = roundMoney(v)
	}
	return out
}

func roundRangeSummary(s calculator.RangeSummary) calculator.RangeSummary {
	out := s
	out.Revenue = roundMoney(s.Revenue)
	out.ServiceCharge = roundMoney(s.ServiceCharge)
	out.Commission = roundMoney(s.Commission)
	out.Expenses = roundMoney(s.Expenses)
	out.NetBalance = roundMoney(s.NetBalance)
	out.Trattoria = roundBrandRange(s.Trattoria)
	out.Japa = roundBrandRange(s.Japa)

	out.DailySales = make([]calculator.DailySale, len(s.DailySales))
	for i, d := range s.DailySales {
		out.DailySales[i] = calculator.DailySale{Date: d.Date, Total: roundMoney(d.Total)}
	}
	return out
}
