package rateio

import (
	"fmt"
	"strings"
	"time"
)

// Policy distribution parameters of the weekly commission pool
type Policy struct {
	WeekStart         time.Weekday
	CommissionRate    float64 // commission over item value, e.g. 0.08
	ServiceChargeRate float64 // full service charge, e.g. 0.10
	PoolPercent       float64 // percent points the sector percents are taken out of
	WaiterPercent     float64
	KitchenPercent    float64
	AdminPercent      float64
}

// DefaultPolicy Monday weeks, 4.75/2.75/0.5 of the 8% pool
func DefaultPolicy() Policy {
	return Policy{
		WeekStart:         time.Monday,
		CommissionRate:    0.08,
		ServiceChargeRate: 0.10,
		PoolPercent:       8,
		WaiterPercent:     4.75,
		KitchenPercent:    2.75,
		AdminPercent:      0.5,
	}
}

// SectorShares fractions of a brand's commission pool per sector
type SectorShares struct {
	Waiter  float64 `json:"waiter"`
	Kitchen float64 `json:"kitchen"`
	Admin   float64 `json:"admin"`
}

// Shares converts the sector percents into fractions of the pool
func (p Policy) Shares() SectorShares {
	if p.PoolPercent <= 0 {
		return SectorShares{}
	}
	return SectorShares{
		Waiter:  p.WaiterPercent / p.PoolPercent,
		Kitchen: p.KitchenPercent / p.PoolPercent,
		Admin:   p.AdminPercent / p.PoolPercent,
	}
}

// commissionFraction part of the service charge paid out as commission (0.8 by default)
func (p Policy) commissionFraction() float64 {
	if p.ServiceChargeRate <= 0 {
		return 0
	}
	return p.CommissionRate / p.ServiceChargeRate
}

// Validate rejects policies that cannot distribute anything sensible
func (p Policy) Validate() error {
	if p.PoolPercent <= 0 {
		return fmt.Errorf("pool percent must be positive, got %v", p.PoolPercent)
	}
	if p.WaiterPercent < 0 || p.KitchenPercent < 0 || p.AdminPercent < 0 {
		return fmt.Errorf("sector percents must not be negative")
	}
	if sum := p.WaiterPercent + p.KitchenPercent + p.AdminPercent; sum > p.PoolPercent+1e-9 {
		return fmt.Errorf("sector percents (%v) exceed the pool (%v)", sum, p.PoolPercent)
	}
	if p.CommissionRate <= 0 || p.ServiceChargeRate <= 0 || p.CommissionRate > p.ServiceChargeRate {
		return fmt.Errorf("invalid commission/service rates %v/%v", p.CommissionRate, p.ServiceChargeRate)
	}
	if p.WeekStart != time.Monday && p.WeekStart != time.Sunday {
		return fmt.Errorf("week must start on monday or sunday, got %s", p.WeekStart)
	}
	return nil
}

// ParseWeekday accepts "monday"/"sunday" and their Portuguese names
func ParseWeekday(s string) (time.Weekday, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "monday", "segunda", "mon":
		return time.Monday, nil
	case "sunday", "domingo", "sun":
		return time.Sunday, nil
	}
	return time.Monday, fmt.Errorf("unsupported week start %q", s)
}
