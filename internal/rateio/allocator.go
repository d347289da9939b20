package rateio

import (
	"sort"

	"github.com/luc4spas/erp-joy-maker/internal/model"
)

// BrandAmounts one value per brand
type BrandAmounts struct {
	Japa      float64 `json:"japa"`
	Trattoria float64 `json:"trattoria"`
}

// Total sum of both brands
func (b BrandAmounts) Total() float64 { return b.Japa + b.Trattoria }

// Cell one sector/brand slice of the pool and the staff sharing it
type Cell struct {
	Sector    model.Sector `json:"sector"`
	Brand     model.Brand  `json:"brand"`
	Share     float64      `json:"share"`
	Headcount int          `json:"headcount"`
	PerCapita float64      `json:"perCapita"`
}

// Payout what one staff member receives for the week
type Payout struct {
	StaffID       string       `json:"staffId"`
	Name          string       `json:"name"`
	Sector        model.Sector `json:"sector"`
	Brand         model.Brand  `json:"brand"`
	FromJapa      float64      `json:"fromJapa"`
	FromTrattoria float64      `json:"fromTrattoria"`
	Total         float64      `json:"total"`
	Paid          bool         `json:"paid"`
	PaymentID     string       `json:"paymentId,omitempty"`
	DaysWorked    int          `json:"daysWorked"`
	TotalDays     int          `json:"totalDays"`
}

// Result weekly distribution
type Result struct {
	WeekStart         string       `json:"weekStart"`
	WeekEnd           string       `json:"weekEnd"`
	ClosingDays       int          `json:"closingDays"`
	CommissionPool    BrandAmounts `json:"commissionPool"`
	ServiceChargePool BrandAmounts `json:"serviceChargePool"`
	Retained          BrandAmounts `json:"retained"`
	Shares            SectorShares `json:"shares"`
	Cells             []Cell       `json:"cells"`
	Payouts           []Payout     `json:"payouts"`
}

// Distributed sum of every payout
func (r Result) Distributed() float64 {
	var sum float64
	for _, p := range r.Payouts {
		sum += p.Total
	}
	return sum
}

// Allocate distributes the commission of the closings inside week among the active staff.
// Without closings the result has no cells and no payouts.
func Allocate(week Week, closings []model.ClosingRecord, staff []model.StaffMember, confirmations []model.PaymentConfirmation, p Policy) Result {
	res := Result{
		WeekStart: week.StartDate(),
		WeekEnd:   week.EndDate(),
		Shares:    p.Shares(),
		Cells:     []Cell{},
		Payouts:   []Payout{},
	}

	for _, c := range closings {
		if !week.Contains(c.Date) {
			continue
		}
		res.ClosingDays++
		res.CommissionPool.Japa += c.Japa.Commission
		res.CommissionPool.Trattoria += c.Trattoria.Commission
	}
	if res.ClosingDays == 0 {
		return res
	}

	if f := p.commissionFraction(); f > 0 {
		res.ServiceChargePool = BrandAmounts{
			Japa:      res.CommissionPool.Japa / f,
			Trattoria: res.CommissionPool.Trattoria / f,
		}
		res.Retained = BrandAmounts{
			Japa:      res.ServiceChargePool.Japa - res.CommissionPool.Japa,
			Trattoria: res.ServiceChargePool.Trattoria - res.CommissionPool.Trattoria,
		}
	}

	a := newAccumulator(confirmations, res.ClosingDays)
	pool := res.CommissionPool
	shares := res.Shares

	// waiters and kitchen draw per brand
	for _, sector := range []model.Sector{model.SectorWaiter, model.SectorKitchen} {
		fraction := shares.Waiter
		if sector == model.SectorKitchen {
			fraction = shares.Kitchen
		}
		for _, brand := range []model.Restaurant{model.RestaurantJapa, model.RestaurantTrattoria} {
			share := brandPool(pool, brand) * fraction
			members := eligible(staff, func(m model.StaffMember) bool {
				return m.Sector == sector && m.Brand.Serves(brand)
			})
			cell := Cell{Sector: sector, Brand: brandOf(brand), Share: share, Headcount: len(members)}
			if len(members) > 0 {
				cell.PerCapita = share / float64(len(members))
				for _, m := range members {
					if brand == model.RestaurantJapa {
						a.add(m, cell.PerCapita, 0)
					} else {
						a.add(m, 0, cell.PerCapita)
					}
				}
			}
			res.Cells = append(res.Cells, cell)
		}
	}

	// admin draws from both brands combined, split back by each brand's weight in the pool
	admins := eligible(staff, func(m model.StaffMember) bool { return m.Sector == model.SectorAdmin })
	adminShare := pool.Total() * shares.Admin
	adminCell := Cell{Sector: model.SectorAdmin, Brand: model.BrandBoth, Share: adminShare, Headcount: len(admins)}
	if len(admins) > 0 {
		adminCell.PerCapita = adminShare / float64(len(admins))
		var japaWeight, trattoriaWeight float64
		if total := pool.Total(); total != 0 {
			japaWeight = pool.Japa / total
			trattoriaWeight = pool.Trattoria / total
		}
		for _, m := range admins {
			a.add(m, adminCell.PerCapita*japaWeight, adminCell.PerCapita*trattoriaWeight)
		}
	}
	res.Cells = append(res.Cells, adminCell)

	res.Payouts = a.sorted()
	return res
}

func brandPool(pool BrandAmounts, r model.Restaurant) float64 {
	if r == model.RestaurantJapa {
		return pool.Japa
	}
	return pool.Trattoria
}

func brandOf(r model.Restaurant) model.Brand {
	if r == model.RestaurantJapa {
		return model.BrandJapa
	}
	return model.BrandTrattoria
}

func eligible(staff []model.StaffMember, match func(model.StaffMember) bool) []model.StaffMember {
	var out []model.StaffMember
	for _, m := range staff {
		if m.Active && match(m) {
			out = append(out, m)
		}
	}
	return out
}

// accumulator keeps payouts in first-contribution order
type accumulator struct {
	order   []string
	payouts map[string]*Payout
	paid    map[string]model.PaymentConfirmation
	days    int
}

func newAccumulator(confirmations []model.PaymentConfirmation, days int) *accumulator {
	paid := make(map[string]model.PaymentConfirmation, len(confirmations))
	for _, c := range confirmations {
		paid[c.StaffID] = c
	}
	return &accumulator{
		payouts: make(map[string]*Payout),
		paid:    paid,
		days:    days,
	}
}

func (a *accumulator) add(m model.StaffMember, fromJapa, fromTrattoria float64) {
	p, ok := a.payouts[m.ID]
	if !ok {
		p = &Payout{
			StaffID:    m.ID,
			Name:       m.Name,
			Sector:     m.Sector,
			Brand:      m.Brand,
			DaysWorked: a.days,
			TotalDays:  a.days,
		}
		if c, ok := a.paid[m.ID]; ok {
			p.Paid = c.Paid
			p.PaymentID = c.ID
		}
		a.payouts[m.ID] = p
		a.order = append(a.order, m.ID)
	}
	p.FromJapa += fromJapa
	p.FromTrattoria += fromTrattoria
	p.Total = p.FromJapa + p.FromTrattoria
}

// sorted payouts by total descending; ties keep first-contribution order
func (a *accumulator) sorted() []Payout {
	out := make([]Payout, 0, len(a.order))
	for _, id := range a.order {
		out = append(out, *a.payouts[id])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Total > out[j].Total })
	return out
}
