package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"sort"
	"strings"

	"fleet-backend/internal/models"
	"fleet-backend/internal/timeutil"

	"github.com/jung-kurt/gofpdf/v2"
	"github.com/skip2/go-qrcode"
	"github.com/xuri/excelize/v2"
)

const statementSheet = "Statement"

// ReportService builds the monthly rent company statements
type ReportService struct {
	Trips    *TripService
	Settings *SystemSettingService
	Clock    timeutil.Clock
}

func NewReportService(trips *TripService, settings *SystemSettingService) *ReportService {
	return &ReportService{Trips: trips, Settings: settings}
}

// Companies lists the rent companies found on the viewer's trips, sorted
func (s *ReportService) Companies(ctx context.Context, viewer *models.User) ([]string, error) {
	trips, err := s.Trips.List(ctx, viewer, models.TripFilter{})
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	companies := []string{}
	for _, t := range trips {
		name := strings.TrimSpace(t.RentCompany)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		companies = append(companies, name)
	}
	sort.Strings(companies)
	return companies, nil
}

// Monthly collects one company's trips for a month, oldest first, split into input and export legs
func (s *ReportService) Monthly(ctx context.Context, viewer *models.User, company, month string) (*models.MonthlyStatement, error) {
	company = strings.TrimSpace(company)
	if company == "" {
		return nil, invalidf("company is required")
	}
	if month == "" {
		month = timeutil.Month(clockNow(s.Clock))
	}
	if !timeutil.ValidMonth(month) {
		return nil, invalidf("month must be YYYY-MM")
	}

	trips, err := s.Trips.List(ctx, viewer, models.TripFilter{Month: month})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(trips, func(i, j int) bool { return trips[i].Date < trips[j].Date })

	stmt := &models.MonthlyStatement{
		Company:     company,
		Month:       month,
		Input:       models.StatementSection{Lines: []models.StatementLine{}},
		Export:      models.StatementSection{Lines: []models.StatementLine{}},
		GeneratedAt: clockNow(s.Clock),
	}
	for _, t := range trips {
		if !strings.EqualFold(strings.TrimSpace(t.RentCompany), company) {
			continue
		}
		line := models.StatementLine{
			TripNumber:     t.TripNumber,
			Date:           t.Date,
			VehicleNumber:  t.VehicleNumber,
			LoadingPoint:   t.LoadingPoint,
			UnloadingPoint: t.UnloadingPoint,
			Fare:           t.PartyFare,
			Paid:           t.PartyAdvanceAmount,
			Due:            t.PartyDue,
		}
		section := &stmt.Input
		if t.MovementStatus == models.MovementExport {
			section = &stmt.Export
		}
		section.Lines = append(section.Lines, line)
		section.TotalFare += line.Fare
		section.TotalPaid += line.Paid
		section.TotalDue += line.Due
	}

	stmt.TotalFare = stmt.Input.TotalFare + stmt.Export.TotalFare
	stmt.TotalPaid = stmt.Input.TotalPaid + stmt.Export.TotalPaid
	stmt.TotalDue = stmt.Input.TotalDue + stmt.Export.TotalDue
	return stmt, nil
}

func (s *ReportService) appName(ctx context.Context) string {
	if s.Settings == nil {
		return DefaultAppName
	}
	settings, err := s.Settings.Get(ctx)
	if err != nil || settings.AppName == "" {
		return DefaultAppName
	}
	return settings.AppName
}

// verificationText is what the statement QR code encodes
func verificationText(app string, stmt *models.MonthlyStatement) string {
	return fmt.Sprintf("%s|%s|%s|fare=%.2f|paid=%.2f|due=%.2f",
		app, stmt.Company, stmt.Month, stmt.TotalFare, stmt.TotalPaid, stmt.TotalDue)
}

// MonthlyPDF renders the statement as an A4 PDF with a QR code of its totals
func (s *ReportService) MonthlyPDF(ctx context.Context, stmt *models.MonthlyStatement) ([]byte, error) {
	app := s.appName(ctx)

	qr, err := qrcode.Encode(verificationText(app, stmt), qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	// Header
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(160, 10, tr(app+" - Monthly Statement"), "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(160, 6, tr("Company: "+stmt.Company), "", 1, "L", false, 0, "")
	pdf.CellFormat(160, 6, "Month: "+stmt.Month, "", 1, "L", false, 0, "")
	pdf.CellFormat(160, 6, fmt.Sprintf("Generated: %s", stmt.GeneratedAt.In(timeutil.BST).Format("02-Jan-2006 03:04 PM")), "", 1, "L", false, 0, "")

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("statement-qr", opts, bytes.NewReader(qr))
	pdf.ImageOptions("statement-qr", 170, 10, 30, 30, false, opts, 0, "")
	pdf.SetY(42)

	writeSection := func(title string, section models.StatementSection) {
		pdf.SetFillColor(240, 240, 240)
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(190, 8, title, "1", 1, "L", true, 0, "")

		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(200, 200, 200)
		pdf.CellFormat(32, 7, "Trip No", "1", 0, "C", true, 0, "")
		pdf.CellFormat(22, 7, "Date", "1", 0, "C", true, 0, "")
		pdf.CellFormat(26, 7, "Vehicle", "1", 0, "C", true, 0, "")
		pdf.CellFormat(50, 7, "Route", "1", 0, "C", true, 0, "")
		pdf.CellFormat(20, 7, "Fare", "1", 0, "C", true, 0, "")
		pdf.CellFormat(20, 7, "Paid", "1", 0, "C", true, 0, "")
		pdf.CellFormat(20, 7, "Due", "1", 1, "C", true, 0, "")

		pdf.SetFont("Arial", "", 9)
		if len(section.Lines) == 0 {
			pdf.CellFormat(190, 6, "No trips", "1", 1, "C", false, 0, "")
		}
		for _, l := range section.Lines {
			pdf.CellFormat(32, 6, l.TripNumber, "1", 0, "L", false, 0, "")
			pdf.CellFormat(22, 6, l.Date, "1", 0, "C", false, 0, "")
			pdf.CellFormat(26, 6, tr(l.VehicleNumber), "1", 0, "C", false, 0, "")
			pdf.CellFormat(50, 6, tr(l.LoadingPoint+" -> "+l.UnloadingPoint), "1", 0, "L", false, 0, "")
			pdf.CellFormat(20, 6, fmt.Sprintf("%.2f", l.Fare), "1", 0, "R", false, 0, "")
			pdf.CellFormat(20, 6, fmt.Sprintf("%.2f", l.Paid), "1", 0, "R", false, 0, "")
			pdf.CellFormat(20, 6, fmt.Sprintf("%.2f", l.Due), "1", 1, "R", false, 0, "")
		}

		pdf.SetFont("Arial", "B", 9)
		pdf.CellFormat(130, 7, "Subtotal", "1", 0, "R", false, 0, "")
		pdf.CellFormat(20, 7, fmt.Sprintf("%.2f", section.TotalFare), "1", 0, "R", false, 0, "")
		pdf.CellFormat(20, 7, fmt.Sprintf("%.2f", section.TotalPaid), "1", 0, "R", false, 0, "")
		pdf.CellFormat(20, 7, fmt.Sprintf("%.2f", section.TotalDue), "1", 1, "R", false, 0, "")
		pdf.Ln(5)
	}

	writeSection("Input Trips", stmt.Input)
	writeSection("Export Trips", stmt.Export)

	// Totals
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(63, 8, fmt.Sprintf("Total Fare: Tk %.2f", stmt.TotalFare), "1", 0, "C", false, 0, "")
	pdf.CellFormat(63, 8, fmt.Sprintf("Total Paid: Tk %.2f", stmt.TotalPaid), "1", 0, "C", false, 0, "")
	pdf.CellFormat(64, 8, fmt.Sprintf("Total Due: Tk %.2f", stmt.TotalDue), "1", 1, "C", false, 0, "")

	if stmt.TotalDue > 0 {
		pdf.SetFillColor(255, 200, 200)
	} else {
		pdf.SetFillColor(200, 255, 200)
	}
	pdf.SetFont("Arial", "B", 14)
	balance := "FULLY PAID"
	if stmt.TotalDue > 0 {
		balance = fmt.Sprintf("OUTSTANDING: Tk %.2f", stmt.TotalDue)
	} else if stmt.TotalDue < 0 {
		balance = fmt.Sprintf("OVERPAID: Tk %.2f", -stmt.TotalDue)
	}
	pdf.CellFormat(190, 10, balance, "1", 1, "C", true, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// MonthlyXLSX renders the statement as a single sheet workbook with SUM formulas for the totals
func (s *ReportService) MonthlyXLSX(stmt *models.MonthlyStatement) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", statementSheet); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DCE6F1"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return nil, err
	}

	f.SetCellValue(statementSheet, "A1", "Company")
	f.SetCellValue(statementSheet, "B1", stmt.Company)
	f.SetCellValue(statementSheet, "A2", "Month")
	f.SetCellValue(statementSheet, "B2", stmt.Month)

	headers := []string{"Leg", "Trip No", "Date", "Vehicle", "Loading Point", "Unloading Point", "Fare", "Paid", "Due"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 4)
		f.SetCellValue(statementSheet, cell, h)
	}
	f.SetCellStyle(statementSheet, "A4", "I4", headerStyle)

	row := 5
	write := func(leg string, lines []models.StatementLine) {
		for _, l := range lines {
			f.SetCellValue(statementSheet, fmt.Sprintf("A%d", row), leg)
			f.SetCellValue(statementSheet, fmt.Sprintf("B%d", row), l.TripNumber)
			f.SetCellValue(statementSheet, fmt.Sprintf("C%d", row), l.Date)
			f.SetCellValue(statementSheet, fmt.Sprintf("D%d", row), l.VehicleNumber)
			f.SetCellValue(statementSheet, fmt.Sprintf("E%d", row), l.LoadingPoint)
			f.SetCellValue(statementSheet, fmt.Sprintf("F%d", row), l.UnloadingPoint)
			f.SetCellValue(statementSheet, fmt.Sprintf("G%d", row), l.Fare)
			f.SetCellValue(statementSheet, fmt.Sprintf("H%d", row), l.Paid)
			f.SetCellValue(statementSheet, fmt.Sprintf("I%d", row), l.Due)
			row++
		}
	}
	write(string(models.MovementInput), stmt.Input.Lines)
	write(string(models.MovementExport), stmt.Export.Lines)

	f.SetCellValue(statementSheet, fmt.Sprintf("F%d", row), "Total")
	if row > 5 {
		for _, col := range []string{"G", "H", "I"} {
			f.SetCellFormula(statementSheet, fmt.Sprintf("%s%d", col, row), fmt.Sprintf("SUM(%s5:%s%d)", col, col, row-1))
		}
	} else {
		for _, col := range []string{"G", "H", "I"} {
			f.SetCellValue(statementSheet, fmt.Sprintf("%s%d", col, row), 0)
		}
	}
	f.SetCellStyle(statementSheet, fmt.Sprintf("A%d", row), fmt.Sprintf("I%d", row), headerStyle)

	f.SetColWidth(statementSheet, "A", "A", 10)
	f.SetColWidth(statementSheet, "B", "B", 20)
	f.SetColWidth(statementSheet, "C", "D", 14)
	f.SetColWidth(statementSheet, "E", "F", 22)
	f.SetColWidth(statementSheet, "G", "I", 12)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// MonthlyCSV renders the statement lines as CSV
func (s *ReportService) MonthlyCSV(stmt *models.MonthlyStatement) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	w.Write([]string{"Leg", "Trip No", "Date", "Vehicle", "Loading Point", "Unloading Point", "Fare", "Paid", "Due"})
	rows := func(leg string, lines []models.StatementLine) {
		for _, l := range lines {
			w.Write([]string{
				leg, l.TripNumber, l.Date, l.VehicleNumber, l.LoadingPoint, l.UnloadingPoint,
				fmt.Sprintf("%.2f", l.Fare), fmt.Sprintf("%.2f", l.Paid), fmt.Sprintf("%.2f", l.Due),
			})
		}
	}
	rows(string(models.MovementInput), stmt.Input.Lines)
	rows(string(models.MovementExport), stmt.Export.Lines)
	w.Write([]string{"", "", "", "", "", "Total",
		fmt.Sprintf("%.2f", stmt.TotalFare), fmt.Sprintf("%.2f", stmt.TotalPaid), fmt.Sprintf("%.2f", stmt.TotalDue)})

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
