package rateio

import (
	"io"
	"strconv"

	"github.com/gocarina/gocsv"
)

// PayoutRow one line of the weekly payout sheet
type PayoutRow struct {
	WeekStart     string `csv:"semana"`
	Name          string `csv:"nome"`
	Sector        string `csv:"setor"`
	Brand         string `csv:"frente"`
	FromJapa      string `csv:"japa"`
	FromTrattoria string `csv:"trattoria"`
	Total         string `csv:"total"`
	DaysWorked    int    `csv:"dias"`
	Paid          string `csv:"pago"`
}

// PayoutRows payout sheet of a distribution
type PayoutRows []PayoutRow

// NewPayoutRows flattens the payouts of r in their ranking order
func NewPayoutRows(r Result) PayoutRows {
	rows := make(PayoutRows, 0, len(r.Payouts))
	for _, p := range r.Payouts {
		paid := "não"
		if p.Paid {
			paid = "sim"
		}
		rows = append(rows, PayoutRow{
			WeekStart:     r.WeekStart,
			Name:          p.Name,
			Sector:        string(p.Sector),
			Brand:         string(p.Brand),
			FromJapa:      formatAmount(p.FromJapa),
			FromTrattoria: formatAmount(p.FromTrattoria),
			Total:         formatAmount(p.Total),
			DaysWorked:    p.DaysWorked,
			Paid:          paid,
		})
	}
	return rows
}

// ToCSV writes the rows with a header line
func (rows PayoutRows) ToCSV(w io.Writer) error {
	return gocsv.Marshal(rows, w)
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
