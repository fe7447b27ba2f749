package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"fleet-backend/internal/services"
	"fleet-backend/pkg/utils"
)

type ReportHandler struct {
	Service *services.ReportService
}

func NewReportHandler(s *services.ReportService) *ReportHandler {
	return &ReportHandler{Service: s}
}

func (h *ReportHandler) Companies(w http.ResponseWriter, r *http.Request) {
	companies, err := h.Service.Companies(r.Context(), currentUser(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, companies)
}

// Monthly returns the statement as json (default), pdf, xlsx or csv
func (h *ReportHandler) Monthly(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	stmt, err := h.Service.Monthly(r.Context(), currentUser(r), q.Get("company"), q.Get("month"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	base := fmt.Sprintf("statement_%s_%s", safeFilename(stmt.Company), stmt.Month)
	switch format := q.Get("format"); format {
	case "", "json":
		utils.JSON(w, http.StatusOK, stmt)
	case "pdf":
		data, err := h.Service.MonthlyPDF(r.Context(), stmt)
		if err != nil {
			writeError(w, r, err)
			return
		}
		utils.Attachment(w, "application/pdf", base+".pdf", data)
	case "xlsx":
		data, err := h.Service.MonthlyXLSX(stmt)
		if err != nil {
			writeError(w, r, err)
			return
		}
		utils.Attachment(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", base+".xlsx", data)
	case "csv":
		data, err := h.Service.MonthlyCSV(stmt)
		if err != nil {
			writeError(w, r, err)
			return
		}
		utils.Attachment(w, "text/csv", base+".csv", data)
	default:
		utils.Error(w, http.StatusBadRequest, "Unknown format: "+format)
	}
}

// safeFilename keeps ASCII letters, digits and dashes; everything else becomes an underscore
func safeFilename(name string) string {
	out := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		}
		return '_'
	}, name)
	if strings.Trim(out, "_") == "" {
		return "company"
	}
	return out
}
