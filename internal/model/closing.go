package model

import "time"

// Restaurant brand that a sale belongs to
type Restaurant string

const (
	RestaurantTrattoria Restaurant = "TRATTORIA"
	RestaurantJapa      Restaurant = "JAPA"
)

// Payment method keys with special handling
const (
	PaymentCash   = "DINHEIRO"
	PaymentChange = "TROCO"
	PaymentOther  = "Outros"
)

// DateLayout is the persisted calendar date format
const DateLayout = "2006-01-02"

// NormalizedRow one sale line after column resolution and coercion
type NormalizedRow struct {
	TableLabel     string  `json:"tableLabel"`
	ItemsValue     float64 `json:"valorItens"`
	ServiceCharge  float64 `json:"serviceCharge"`
	ReceivedAmount float64 `json:"receivedAmount"`
	PaymentMethod  string  `json:"paymentMethod"`
}

// PaymentMethodAggregate sums for one payment method inside one restaurant
type PaymentMethodAggregate struct {
	ItemsValue    float64 `json:"itemsValue"`
	ServiceCharge float64 `json:"serviceCharge"`
	ReceivedValue float64 `json:"receivedValue"`
}

// RestaurantSummary totals of one brand for one ingestion batch
type RestaurantSummary struct {
	Restaurant         Restaurant                        `json:"restaurant"`
	TotalItemsValue    float64                           `json:"totalItemsValue"`
	TotalServiceCharge float64                           `json:"totalServiceCharge"`
	TotalGeneral       float64                           `json:"totalGeneral"`
	WaiterCommission   float64                           `json:"waiterCommission"`
	ByPaymentMethod    map[string]PaymentMethodAggregate `json:"byPaymentMethod"`
}

// Payments received value per payment method
func (s RestaurantSummary) Payments() map[string]float64 {
	out := make(map[string]float64, len(s.ByPaymentMethod))
	for method, agg := range s.ByPaymentMethod {
		out[method] = agg.ReceivedValue
	}
	return out
}

// Batch result of one ingestion, shown to the user before it is confirmed
type Batch struct {
	ReportDate *string           `json:"reportDate"`
	Trattoria  RestaurantSummary `json:"trattoria"`
	Japa       RestaurantSummary `json:"japa"`
	RowCount   int               `json:"rowCount"`
}

// BrandTotals persisted totals of one brand inside a closing
type BrandTotals struct {
	ItemsValue    float64            `json:"itemsValue"`
	ServiceCharge float64            `json:"serviceCharge"`
	Total         float64            `json:"total"`
	Commission    float64            `json:"commission"`
	Payments      map[string]float64 `json:"payments"`
}

// ClosingRecord one confirmed daily closing (fechamento)
type ClosingRecord struct {
	ID           string      `json:"id"`
	UserID       string      `json:"userId"`
	Date         string      `json:"date"`
	Japa         BrandTotals `json:"japa"`
	Trattoria    BrandTotals `json:"trattoria"`
	TotalGeneral float64     `json:"totalGeneral"`
	CreatedAt    time.Time   `json:"createdAt"`
}

// Commission returns the commission of one brand
func (c ClosingRecord) Commission(r Restaurant) float64 {
	if r == RestaurantJapa {
		return c.Japa.Commission
	}
	return c.Trattoria.Commission
}

// NewClosingRecord builds the persisted shape of a batch.
// A batch without report date is stored under today.
func NewClosingRecord(batch Batch, userID string, today time.Time) ClosingRecord {
	date := today.Format(DateLayout)
	if batch.ReportDate != nil && *batch.ReportDate != "" {
		date = *batch.ReportDate
	}

	return ClosingRecord{
		UserID:       userID,
		Date:         date,
		Japa:         brandTotals(batch.Japa),
		Trattoria:    brandTotals(batch.Trattoria),
		TotalGeneral: batch.Japa.TotalGeneral + batch.Trattoria.TotalGeneral,
	}
}

func brandTotals(s RestaurantSummary) BrandTotals {
	return BrandTotals{
		ItemsValue:    s.TotalItemsValue,
		ServiceCharge: s.TotalServiceCharge,
		Total:         s.TotalGeneral,
		Commission:    s.WaiterCommission,
		Payments:      s.Payments(),
	}
}
