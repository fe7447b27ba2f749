package models

import "time"

type StatementLine struct {
	TripNumber     string  `json:"trip_number"`
	Date           string  `json:"date"`
	VehicleNumber  string  `json:"vehicle_number"`
	LoadingPoint   string  `json:"loading_point"`
	UnloadingPoint string  `json:"unloading_point"`
	Fare           float64 `json:"fare"`
	Paid           float64 `json:"paid"`
	Due            float64 `json:"due"`
}

type StatementSection struct {
	Lines     []StatementLine `json:"lines"`
	TotalFare float64         `json:"total_fare"`
	TotalPaid float64         `json:"total_paid"`
	TotalDue  float64         `json:"total_due"`
}

// MonthlyStatement is what one rent company was billed in a month, split by leg
type MonthlyStatement struct {
	Company     string           `json:"company"`
	Month       string           `json:"month"`
	Input       StatementSection `json:"input"`
	Export      StatementSection `json:"export"`
	TotalFare   float64          `json:"total_fare"`
	TotalPaid   float64          `json:"total_paid"`
	TotalDue    float64          `json:"total_due"`
	GeneratedAt time.Time        `json:"generated_at"`
}
