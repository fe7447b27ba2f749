// Package dues holds the derived money amounts of trips and salaries.
// All functions are pure; negative results mean overpayment and are returned as is.
package dues

import "fleet-backend/internal/models"

// PartyDue is what the rent company still owes against the trip fare
func PartyDue(t *models.Trip) float64 {
	return t.PartyFare - t.PartyAdvanceAmount
}

// TotalAdvance is everything already advanced on the trip
func TotalAdvance(t *models.Trip) float64 {
	return t.PartyAdvanceAmount + t.CompanyAdvanceAmount
}

// DriverPending is what is still owed to the driver. Local trips have no
// package, so the fare is the base.
func DriverPending(t *models.Trip) float64 {
	base := t.PackageAmount
	if t.TripType == models.TripTypeLocal {
		base = t.PartyFare
	}
	return base - TotalAdvance(t)
}

// TotalAdvances sums the advances taken against a salary record
func TotalAdvances(s *models.SalaryRecord) float64 {
	var total float64
	for _, a := range s.Advances {
		total += a.Amount
	}
	return total
}

// NetPayable is base salary minus advances
func NetPayable(s *models.SalaryRecord) float64 {
	return s.BaseSalary - TotalAdvances(s)
}

// View wraps a trip with its derived amounts
func View(t *models.Trip) *models.TripView {
	return &models.TripView{
		Trip:          t,
		PartyDue:      PartyDue(t),
		DriverPending: DriverPending(t),
	}
}

// SalaryView wraps a salary record with its derived totals
func SalaryView(s *models.SalaryRecord) *models.SalaryView {
	return &models.SalaryView{
		SalaryRecord:  s,
		TotalAdvances: TotalAdvances(s),
		NetPayable:    NetPayable(s),
	}
}
