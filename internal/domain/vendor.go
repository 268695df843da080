package domain

import "time"

// Vendor releases tickets into the shared pool on its own cadence.
// TicketsReleased and TotalTicketsSold are monotonic counters:
// TicketsReleased never exceeds TicketsToSell, and TotalTicketsSold
// never exceeds TicketsReleased.
type Vendor struct {
	Identity

	TicketsPerRelease     int           `json:"tickets_per_release"`
	TicketReleaseInterval time.Duration `json:"ticket_release_interval"`
	TicketsToSell         int           `json:"tickets_to_sell"`
	TicketsReleased       int           `json:"tickets_released"`
	TotalTicketsSold      int           `json:"total_tickets_sold"`
}

// Validate checks vendor registration parameters
func (v *Vendor) Validate() error {
	if err := v.Identity.Validate(); err != nil {
		return err
	}
	if v.TicketsPerRelease <= 0 {
		return ErrInvalidQuantity
	}
	if v.TicketReleaseInterval <= 0 {
		return ErrInvalidInterval
	}
	if v.TicketsToSell <= 0 {
		return ErrInvalidLimit
	}
	return nil
}

// RemainingToSell returns how many tickets the vendor may still release
func (v *Vendor) RemainingToSell() int {
	remaining := v.TicketsToSell - v.TicketsReleased
	if remaining < 0 {
		return 0
	}
	return remaining
}

// SoldOut reports whether the vendor has sold its full allotment
func (v *Vendor) SoldOut() bool {
	return v.TotalTicketsSold >= v.TicketsToSell
}
