package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/sjperalta/bailbooks-api/internal/config"
	"github.com/sjperalta/bailbooks-api/internal/engine"
	"github.com/sjperalta/bailbooks-api/internal/jobs"
	"github.com/sjperalta/bailbooks-api/internal/metrics"
	"github.com/sjperalta/bailbooks-api/internal/models"
	"github.com/sjperalta/bailbooks-api/internal/repository"
	"github.com/sjperalta/bailbooks-api/pkg/logger"
)

// Export formats
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"
)

const exportsDir = "exports"

// Archiver keeps a copy of every generated document.
type Archiver interface {
	Save(data []byte, filename, subDir string) (string, error)
}

type ExportService struct {
	caseRepo  repository.CaseRepository
	instRepo  repository.InstallmentRepository
	reportSvc *ReportService
	org       config.OrgSettings
	settings  engine.Settings
	archive   Archiver
	worker    *jobs.Worker
	clock     func() time.Time
}

func NewExportService(
	caseRepo repository.CaseRepository,
	instRepo repository.InstallmentRepository,
	reportSvc *ReportService,
	org config.OrgSettings,
	archive Archiver,
	worker *jobs.Worker,
) *ExportService {
	return &ExportService{
		caseRepo:  caseRepo,
		instRepo:  instRepo,
		reportSvc: reportSvc,
		org:       org,
		settings:  org.ToEngine(),
		archive:   archive,
		worker:    worker,
		clock:     engine.Now,
	}
}

// TrackerXLSX writes the payment tracker: one sheet listing cases and one listing
// every installment with its case.
func (s *ExportService) TrackerXLSX(ctx context.Context) (data []byte, filename string, err error) {
	defer s.observe("tracker", FormatXLSX, s.clock(), &err)

	cases, err := s.caseRepo.FindAll(ctx)
	if err != nil {
		return nil, "", err
	}
	installments, err := s.instRepo.FindAll(ctx)
	if err != nil {
		return nil, "", err
	}

	byCase := make(map[uint][]models.Installment, len(cases))
	for _, inst := range installments {
		byCase[inst.CaseID] = append(byCase[inst.CaseID], inst)
	}
	today := engine.DateOf(s.clock())

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	casesSheet := "Cases"
	_ = f.SetSheetName("Sheet1", casesSheet)
	caseHeader := []any{"Case", "Defendant", "Indemnitor", "Bond", "Premium", "Down Payment",
		"Payment", "Frequency", "Paid", "Scheduled", "Balance", "Overdue"}
	_ = f.SetSheetRow(casesSheet, "A1", &caseHeader)
	_ = f.SetCellStyle(casesSheet, "A1", "L1", headerStyle)

	for i := range cases {
		c := &cases[i]
		quote := engine.QuoteCase(c, s.settings)
		totals := engine.ComputeTotals(engine.Value(c.Premium), byCase[c.ID])
		overdue := 0
		for j := range byCase[c.ID] {
			if engine.IsOverdue(&byCase[c.ID][j], today) {
				overdue++
			}
		}
		row := []any{
			c.CaseNumber,
			c.DefendantName,
			stringOrEmpty(c.IndemnitorName),
			money(engine.Value(c.BondAmount)),
			money(quote.Premium),
			money(quote.DownPayment),
			money(engine.Value(c.PaymentAmount)),
			stringOrEmpty(c.PaymentFrequency),
			money(totals.Paid),
			money(totals.Scheduled),
			money(totals.Balance),
			overdue,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		_ = f.SetSheetRow(casesSheet, cell, &row)
	}

	instSheet := "Installments"
	_, _ = f.NewSheet(instSheet)
	instHeader := []any{"Case", "Defendant", "#", "Due Date", "Amount", "Status", "Paid At",
		"Method", "Source", "Days Overdue", "Description"}
	_ = f.SetSheetRow(instSheet, "A1", &instHeader)
	_ = f.SetCellStyle(instSheet, "A1", "K1", headerStyle)

	r := 2
	for i := range cases {
		c := &cases[i]
		rows := byCase[c.ID]
		engine.SortInstallments(rows)
		for j := range rows {
			inst := &rows[j]
			row := []any{
				c.CaseNumber,
				c.DefendantName,
				inst.Sequence,
				dateOrEmpty(inst.DueDate),
				money(inst.Amount),
				inst.Status,
				dateOrEmpty(inst.PaidAt),
				stringOrEmpty(inst.PaymentMethod),
				inst.Source,
				engine.DaysOverdue(inst, today),
				stringOrEmpty(inst.Description),
			}
			cell, _ := excelize.CoordinatesToCellName(1, r)
			_ = f.SetSheetRow(instSheet, cell, &row)
			r++
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}

	filename = fmt.Sprintf("payment_tracker_%s.xlsx", today.Format("2006-01-02"))
	s.archiveAsync(buf.Bytes(), filename)
	return buf.Bytes(), filename, nil
}

// ProfitAndLoss renders the period report in the requested format.
func (s *ExportService) ProfitAndLoss(ctx context.Context, start, end time.Time, format string) (data []byte, filename string, err error) {
	defer s.observe("profit_and_loss", format, s.clock(), &err)

	report, err := s.reportSvc.ProfitAndLoss(ctx, start, end)
	if err != nil {
		return nil, "", err
	}

	switch format {
	case FormatCSV:
		data, err = s.profitAndLossCSV(report)
	case FormatXLSX:
		data, err = s.profitAndLossXLSX(report)
	case FormatPDF:
		data, err = s.profitAndLossPDF(report)
	default:
		return nil, "", fmt.Errorf("%w: unsupported format %q", ErrInvalidInput, format)
	}
	if err != nil {
		return nil, "", err
	}

	filename = fmt.Sprintf("profit_and_loss_%s_%s.%s",
		report.StartDate.Format("2006-01-02"), report.EndDate.Format("2006-01-02"), format)
	s.archiveAsync(data, filename)
	return data, filename, nil
}

// profitAndLossLines is the report as label/amount pairs, shared by every format.
func (s *ExportService) profitAndLossLines(report *engine.PeriodReport) [][2]string {
	lines := [][2]string{
		{"Premiums Earned", money(report.PremiumsEarned)},
		{"Payments Collected", money(report.PaymentsCollected)},
		{"Other Deposits", money(report.OtherDeposits)},
		{"Total Revenue", money(report.TotalRevenue)},
	}
	for _, c := range report.ExpensesByCategory {
		lines = append(lines, [2]string{"Expense: " + c.Category, money(c.Amount)})
	}
	return append(lines,
		[2]string{"Total Expenses", money(report.TotalExpenses)},
		[2]string{"Net Income", money(report.NetIncome)},
	)
}

func (s *ExportService) profitAndLossCSV(report *engine.PeriodReport) ([]byte, error) {
	buf := new(bytes.Buffer)
	writer := csv.NewWriter(buf)

	_ = writer.Write([]string{s.org.AgencyName + " Profit and Loss", periodLabel(report)})
	_ = writer.Write([]string{"Line", "Amount (" + s.org.Currency + ")"})
	for _, line := range s.profitAndLossLines(report) {
		_ = writer.Write(line[:])
	}

	writer.Flush()
	return buf.Bytes(), writer.Error()
}

func (s *ExportService) profitAndLossXLSX(report *engine.PeriodReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Profit and Loss"
	_ = f.SetSheetName("Sheet1", sheet)

	titleStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	boldStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})

	_ = f.SetCellValue(sheet, "A1", s.org.AgencyName+" Profit and Loss")
	_ = f.SetCellStyle(sheet, "A1", "A1", titleStyle)
	_ = f.SetCellValue(sheet, "A2", periodLabel(report))
	_ = f.SetCellValue(sheet, "A4", "Line")
	_ = f.SetCellValue(sheet, "B4", "Amount ("+s.org.Currency+")")
	_ = f.SetCellStyle(sheet, "A4", "B4", boldStyle)

	for i, line := range s.profitAndLossLines(report) {
		amount, _ := decimal.NewFromString(line[1])
		_ = f.SetCellValue(sheet, "A"+strconv.Itoa(i+5), line[0])
		_ = f.SetCellValue(sheet, "B"+strconv.Itoa(i+5), amount.InexactFloat64())
	}
	_ = f.SetColWidth(sheet, "A", "A", 32)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *ExportService) profitAndLossPDF(report *engine.PeriodReport) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, s.org.AgencyName+" - Profit and Loss")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(40, 8, periodLabel(report))
	pdf.Ln(12)

	for _, line := range s.profitAndLossLines(report) {
		style := ""
		if line[0] == "Total Revenue" || line[0] == "Total Expenses" || line[0] == "Net Income" {
			style = "B"
		}
		pdf.SetFont("Arial", style, 10)
		pdf.CellFormat(100, 7, line[0], "", 0, "L", false, 0, "")
		pdf.CellFormat(50, 7, line[1]+" "+s.org.Currency, "", 1, "R", false, 0, "")
	}

	buf := new(bytes.Buffer)
	if err := pdf.Output(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// CaseStatementPDF renders a case's quote, installment ledger and totals.
func (s *ExportService) CaseStatementPDF(ctx context.Context, caseID uint) (data []byte, filename string, err error) {
	defer s.observe("case_statement", FormatPDF, s.clock(), &err)

	c, err := s.caseRepo.FindByID(ctx, caseID)
	if err != nil {
		return nil, "", err
	}
	installments, err := s.instRepo.FindByCase(ctx, caseID)
	if err != nil {
		return nil, "", err
	}
	now := s.clock()
	quote := engine.QuoteCase(c, s.settings)
	ledger := engine.BuildLedger(engine.Value(c.Premium), installments, now)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, s.org.AgencyName+" - Case Statement")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 10)
	summary := [][2]string{
		{"Case", c.CaseNumber},
		{"Defendant", c.DefendantName},
		{"Indemnitor", stringOrEmpty(c.IndemnitorName)},
		{"Bond Amount", money(engine.Value(c.BondAmount))},
		{"Premium", money(quote.Premium)},
		{"Down Payment", money(quote.DownPayment)},
		{"Statement Date", engine.DateOf(now).Format("2006-01-02")},
	}
	for _, line := range summary {
		pdf.CellFormat(45, 6, line[0]+":", "", 0, "L", false, 0, "")
		pdf.CellFormat(80, 6, line[1], "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	widths := []float64{10, 25, 25, 22, 25, 20, 28}
	header := []string{"#", "Due", "Amount", "Status", "Paid At", "Method", "Balance"}
	pdf.SetFont("Arial", "B", 9)
	for i, h := range header {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for i, row := range ledger.Rows {
		status := row.Status
		if row.Overdue {
			status = fmt.Sprintf("overdue %dd", row.DaysOverdue)
		}
		cells := []string{
			strconv.Itoa(i + 1),
			dateOrEmpty(row.DueDate),
			money(row.Amount),
			status,
			dateOrEmpty(row.PaidAt),
			stringOrEmpty(row.PaymentMethod),
			money(row.BalanceAfter),
		}
		for j, v := range cells {
			pdf.CellFormat(widths[j], 6, v, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 10)
	pdf.Cell(45, 6, "Paid: "+money(ledger.Totals.Paid))
	pdf.Cell(55, 6, "Scheduled: "+money(ledger.Totals.Scheduled))
	pdf.Cell(55, 6, "Balance: "+money(ledger.Totals.Balance)+" "+s.org.Currency)

	buf := new(bytes.Buffer)
	if err := pdf.Output(buf); err != nil {
		return nil, "", err
	}

	filename = fmt.Sprintf("statement_%s_%s.pdf", c.CaseNumber, engine.DateOf(now).Format("2006-01-02"))
	s.archiveAsync(buf.Bytes(), filename)
	return buf.Bytes(), filename, nil
}

// archiveAsync saves a copy of a generated document. It runs on the worker pool
// when one is configured.
func (s *ExportService) archiveAsync(data []byte, filename string) {
	if s.archive == nil {
		return
	}
	save := func(ctx context.Context) error {
		path, err := s.archive.Save(data, filename, exportsDir)
		if err != nil {
			logger.Warn("export archive failed", "file", filename, logger.Err(err))
			return err
		}
		logger.Debug("export archived", "path", path)
		return nil
	}
	if s.worker == nil {
		_ = save(context.Background())
		return
	}
	s.worker.EnqueueAsync(save)
}

func (s *ExportService) observe(report, format string, started time.Time, err *error) {
	metrics.ObserveExport(report, format, s.clock().Sub(started), *err)
}

func periodLabel(report *engine.PeriodReport) string {
	return report.StartDate.Format("2006-01-02") + " to " + report.EndDate.Format("2006-01-02")
}

func money(d decimal.Decimal) string {
	return engine.RoundCents(d).StringFixed(2)
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func dateOrEmpty(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
