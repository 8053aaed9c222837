package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sjperalta/bailbooks-api/internal/services"
)

type ReportHandler struct {
	reportService *services.ReportService
	exportService *services.ExportService
}

func NewReportHandler(reportService *services.ReportService, exportService *services.ExportService) *ReportHandler {
	return &ReportHandler{reportService: reportService, exportService: exportService}
}

var contentTypes = map[string]string{
	services.FormatCSV:  "text/csv",
	services.FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	services.FormatPDF:  "application/pdf",
}

// today reads the optional as_of date, defaulting to the service's today.
func (h *ReportHandler) today(c *gin.Context) (time.Time, bool) {
	asOf, err := parseDate(c.Query("as_of"))
	if err != nil {
		badRequest(c, err.Error())
		return asOf, false
	}
	if asOf.IsZero() {
		asOf = h.reportService.Today()
	}
	return asOf, true
}

// @Summary Aging Report
// @Description Overdue installments grouped into aging buckets
// @Tags Reports
// @Produce json
// @Param as_of query string false "YYYY-MM-DD, defaults to today"
// @Success 200 {object} services.AgingReport
// @Security BearerAuth
// @Router /reports/aging [get]
func (h *ReportHandler) Aging(c *gin.Context) {
	today, ok := h.today(c)
	if !ok {
		return
	}
	report, err := h.reportService.Aging(c.Request.Context(), today)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// @Summary Overdue Installments Report
// @Description Download overdue installments as CSV
// @Tags Reports
// @Produce text/csv
// @Security BearerAuth
// @Router /reports/overdue_csv [get]
func (h *ReportHandler) OverdueCSV(c *gin.Context) {
	today, ok := h.today(c)
	if !ok {
		return
	}
	buf, err := h.reportService.GenerateOverdueCSV(c.Request.Context(), today)
	if err != nil {
		respondError(c, err)
		return
	}
	attachment(c, "text/csv", fmt.Sprintf("overdue_%s.csv", today.Format(dateLayout)), buf.Bytes())
}

// @Summary Profit and Loss
// @Description Premiums, collections, deposits and expenses for an inclusive date range. format=csv|xlsx|pdf downloads a file.
// @Tags Reports
// @Produce json
// @Param start_date query string false "YYYY-MM-DD, defaults to the first of this month"
// @Param end_date query string false "YYYY-MM-DD, defaults to today"
// @Param format query string false "csv, xlsx or pdf"
// @Success 200 {object} engine.PeriodReport
// @Security BearerAuth
// @Router /reports/profit_and_loss [get]
func (h *ReportHandler) ProfitAndLoss(c *gin.Context) {
	start, end, ok := dateRange(c, h.reportService.Today())
	if !ok {
		return
	}

	format := strings.ToLower(c.Query("format"))
	if format == "" || format == "json" {
		report, err := h.reportService.ProfitAndLoss(c.Request.Context(), start, end)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, report)
		return
	}

	data, filename, err := h.exportService.ProfitAndLoss(c.Request.Context(), start, end, format)
	if err != nil {
		respondError(c, err)
		return
	}
	attachment(c, contentTypes[format], filename, data)
}

// @Summary Dashboard
// @Description Collected and pending this month, overdue totals and aging
// @Tags Reports
// @Produce json
// @Success 200 {object} engine.DashboardSummary
// @Security BearerAuth
// @Router /dashboard [get]
func (h *ReportHandler) Dashboard(c *gin.Context) {
	today, ok := h.today(c)
	if !ok {
		return
	}
	summary, err := h.reportService.Dashboard(c.Request.Context(), today)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// @Summary Payment Tracker
// @Description Download every case and installment as a spreadsheet
// @Tags Exports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Router /exports/tracker [get]
func (h *ReportHandler) Tracker(c *gin.Context) {
	data, filename, err := h.exportService.TrackerXLSX(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	attachment(c, contentTypes[services.FormatXLSX], filename, data)
}

// @Summary Case Statement
// @Description Download a case's statement as PDF
// @Tags Exports
// @Produce application/pdf
// @Param case_id path int true "Case ID"
// @Security BearerAuth
// @Router /cases/{case_id}/statement [get]
func (h *ReportHandler) CaseStatement(c *gin.Context) {
	caseID, ok := paramID(c, "case_id")
	if !ok {
		return
	}
	data, filename, err := h.exportService.CaseStatementPDF(c.Request.Context(), caseID)
	if err != nil {
		respondError(c, err)
		return
	}
	attachment(c, contentTypes[services.FormatPDF], filename, data)
}
