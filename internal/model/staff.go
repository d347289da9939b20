package model

import "time"

// Sector staff sector as persisted (setor)
type Sector string

const (
	SectorWaiter  Sector = "Garçom"
	SectorKitchen Sector = "Cozinha"
	SectorAdmin   Sector = "Administrativo"
)

// Valid reports whether the sector is known
func (s Sector) Valid() bool {
	switch s {
	case SectorWaiter, SectorKitchen, SectorAdmin:
		return true
	}
	return false
}

// Brand staff brand assignment as persisted (frente)
type Brand string

const (
	BrandJapa      Brand = "Japa"
	BrandTrattoria Brand = "Trattoria"
	BrandBoth      Brand = "Ambas"
)

// Valid reports whether the brand is known
func (b Brand) Valid() bool {
	switch b {
	case BrandJapa, BrandTrattoria, BrandBoth:
		return true
	}
	return false
}

// Serves reports whether a staff member with this assignment works for the restaurant
func (b Brand) Serves(r Restaurant) bool {
	switch b {
	case BrandBoth:
		return true
	case BrandJapa:
		return r == RestaurantJapa
	case BrandTrattoria:
		return r == RestaurantTrattoria
	}
	return false
}

// StaffMember employee on the roster (funcionario)
type StaffMember struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Sector    Sector    `json:"sector"`
	Brand     Brand     `json:"brand"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

// PaymentConfirmation paid flag of one staff member for one week
type PaymentConfirmation struct {
	ID        string    `json:"id"`
	StaffID   string    `json:"staffId"`
	WeekStart string    `json:"weekStart"`
	Amount    float64   `json:"amount"`
	Paid      bool      `json:"paid"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Expense operating expense (despesa)
type Expense struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Date        string    `json:"date"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	Category    string    `json:"category"`
	CreatedAt   time.Time `json:"createdAt"`
}
