package models

import "time"

const (
	BaseSalary          = 5000
	DefaultAdvanceNotes = "Monthly Salary Advance"
)

type SalaryAdvance struct {
	ID     string  `json:"id"`
	Amount float64 `json:"amount"`
	Date   string  `json:"date"`
	Notes  string  `json:"notes"`
}

// SalaryRecord is unique per (driver, month)
type SalaryRecord struct {
	ID         string          `json:"id"`
	DriverID   string          `json:"driver_id"`
	Month      string          `json:"month"` // YYYY-MM
	BaseSalary float64         `json:"base_salary"`
	Bonus      float64         `json:"bonus"`
	Advances   []SalaryAdvance `json:"advances"`
	IsSettled  bool            `json:"is_settled"`
	SettledAt  *time.Time      `json:"settled_at,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// SalaryView adds the derived totals
type SalaryView struct {
	*SalaryRecord
	DriverName    string  `json:"driver_name,omitempty"`
	TotalAdvances float64 `json:"total_advances"`
	NetPayable    float64 `json:"net_payable"`
}

type AddAdvanceRequest struct {
	Amount float64 `json:"amount"`
	Notes  string  `json:"notes"`
}
