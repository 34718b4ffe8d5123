/*
report.go - XLSX and PDF export of the financial summary

PURPOSE:
  Renders the summary plus the recent-transactions feed as a downloadable
  report. The numbers come from the same Aggregator calls as the JSON
  endpoints, so an exported report can never disagree with the dashboard.
*/
package api

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"github.com/warp/ledger-engine/ledger"
)

const reportFeedLimit = 50

// ExportSummaryXLSX serves the summary report as a spreadsheet.
func (h *Handler) ExportSummaryXLSX(w http.ResponseWriter, r *http.Request) {
	asOf, ok := h.asOfParam(w, r)
	if !ok {
		return
	}
	summary, feed, err := h.reportData(r, asOf)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	data, err := buildSummaryXLSX(summary, feed)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to render report", err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=summary-%s.xlsx", asOf))
	w.Write(data)
}

// ExportSummaryPDF serves the summary report as a PDF.
func (h *Handler) ExportSummaryPDF(w http.ResponseWriter, r *http.Request) {
	asOf, ok := h.asOfParam(w, r)
	if !ok {
		return
	}
	summary, feed, err := h.reportData(r, asOf)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	data, err := buildSummaryPDF(summary, feed)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to render report", err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=summary-%s.pdf", asOf))
	w.Write(data)
}

func (h *Handler) reportData(r *http.Request, asOf ledger.Date) (ledger.Summary, []ledger.TransactionView, error) {
	ctx := r.Context()
	summary, err := h.Aggregator.Summary(ctx, asOf)
	if err != nil {
		return ledger.Summary{}, nil, err
	}
	feed, err := h.Aggregator.RecentTransactions(ctx, reportFeedLimit, asOf)
	if err != nil {
		return ledger.Summary{}, nil, err
	}
	return summary, feed, nil
}

// =============================================================================
// RENDERERS
// =============================================================================

func buildSummaryXLSX(s ledger.Summary, feed []ledger.TransactionView) ([]byte, error) {
	f := excelize.NewFile()
	summarySheet := "summary"
	feedSheet := "transactions"
	f.SetSheetName("Sheet1", summarySheet)
	f.NewSheet(feedSheet)

	_ = f.SetCellValue(summarySheet, "A1", "Household Ledger Summary")
	_ = f.SetCellValue(summarySheet, "A3", "As of")
	_ = f.SetCellValue(summarySheet, "B3", s.AsOf.String())
	_ = f.SetCellValue(summarySheet, "A4", "Balance")
	_ = f.SetCellValue(summarySheet, "B4", s.Balance.String())
	_ = f.SetCellValue(summarySheet, "A5", "Total income")
	_ = f.SetCellValue(summarySheet, "B5", s.TotalEntries.String())
	_ = f.SetCellValue(summarySheet, "A6", "Total expenses")
	_ = f.SetCellValue(summarySheet, "B6", s.TotalExits.String())
	_ = f.SetCellValue(summarySheet, "A7", "Installments planned")
	_ = f.SetCellValue(summarySheet, "B7", s.TotalInstallmentPlanned.String())
	_ = f.SetCellValue(summarySheet, "A8", "Installments paid")
	_ = f.SetCellValue(summarySheet, "B8", s.TotalPaid.String())
	_ = f.SetCellValue(summarySheet, "A9", "Installments pending")
	_ = f.SetCellValue(summarySheet, "B9", s.TotalPending.String())

	_ = f.SetCellValue(feedSheet, "A1", "Date")
	_ = f.SetCellValue(feedSheet, "B1", "Kind")
	_ = f.SetCellValue(feedSheet, "C1", "Amount")
	_ = f.SetCellValue(feedSheet, "D1", "Counterparty")
	for i, tx := range feed {
		row := i + 2
		_ = f.SetCellValue(feedSheet, fmt.Sprintf("A%d", row), tx.Date.String())
		_ = f.SetCellValue(feedSheet, fmt.Sprintf("B%d", row), string(tx.Kind))
		_ = f.SetCellValue(feedSheet, fmt.Sprintf("C%d", row), tx.Amount.String())
		_ = f.SetCellValue(feedSheet, fmt.Sprintf("D%d", row), string(tx.Counterparty))
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func buildSummaryPDF(s ledger.Summary, feed []ledger.TransactionView) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Household Ledger Summary")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("As of: %s", s.AsOf))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", time.Now().UTC().Format(time.RFC3339)))
	pdf.Ln(8)

	pdf.Cell(0, 6, fmt.Sprintf("Balance: %s", s.Balance))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Total income: %s", s.TotalEntries))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Total expenses: %s", s.TotalExits))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Installments planned: %s", s.TotalInstallmentPlanned))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Installments paid: %s", s.TotalPaid))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Installments pending: %s", s.TotalPending))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(35, 6, "Date", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Kind", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Amount", "1", 0, "C", false, 0, "")
	pdf.CellFormat(70, 6, "Counterparty", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, tx := range feed {
		pdf.CellFormat(35, 6, tx.Date.String(), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, string(tx.Kind), "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 6, tx.Amount.String(), "1", 0, "R", false, 0, "")
		pdf.CellFormat(70, 6, string(tx.Counterparty), "1", 0, "L", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
