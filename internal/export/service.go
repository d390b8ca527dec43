package export

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/pedidobot/ordercore/internal/receipt"
	"github.com/pedidobot/ordercore/internal/resolve"
)

// Service renders resolution and reconciliation results into XLSX workbooks
// for manual review of disputed orders.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// OrderAuditXLSX returns a workbook with one sheet for the resolved order and,
// when a reconciliation result is supplied, a second sheet for it.
func (s *Service) OrderAuditXLSX(order resolve.ResolvedOrder, rec *receipt.Result) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	const orderSheet = "Order"
	if err := f.SetSheetName(f.GetSheetName(0), orderSheet); err != nil {
		return nil, err
	}
	activeIndex, _ := f.GetSheetIndex(orderSheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Product ID",
		"Item",
		"Quantity",
		"Variant",
		"Extras",
		"Unit Price",
		"Line Total",
		"Confidence",
		"Match Methods",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(orderSheet, cell, h)
	}

	row := 2
	for _, it := range order.Items {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(orderSheet, cell, v)
		}
		methods := make([]string, 0, len(it.Evidence))
		for _, ev := range it.Evidence {
			methods = append(methods, string(ev.Method))
		}
		write(1, it.ProductID)
		write(2, it.DisplayName)
		write(3, it.Quantity)
		write(4, it.Variant)
		write(5, strings.Join(it.Extras, "; "))
		if it.UnitPrice != nil {
			write(6, it.UnitPrice.StringFixed(2))
		}
		if it.LineTotal != nil {
			write(7, it.LineTotal.StringFixed(2))
		}
		write(8, fmt.Sprintf("%.2f", it.Confidence))
		write(9, strings.Join(methods, ","))
		row++
	}
	for i, w := range order.Warnings {
		cell, _ := excelize.CoordinatesToCellName(1, row+1+i)
		_ = f.SetCellValue(orderSheet, cell, "WARNING: "+w)
	}

	_ = f.SetColWidth(orderSheet, "A", "B", 24)
	_ = f.SetColWidth(orderSheet, "E", "E", 32)
	_ = f.SetColWidth(orderSheet, "I", "I", 20)

	if rec != nil {
		if err := writeReconciliationSheet(f, rec); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.audit.ok",
		"request_id", order.RequestID,
		"items", len(order.Items),
		"reconciliation", rec != nil,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func writeReconciliationSheet(f *excelize.File, rec *receipt.Result) error {
	const sheet = "Reconciliation"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	write := func(rowNum int, label string, v any) {
		cell, _ := excelize.CoordinatesToCellName(1, rowNum)
		_ = f.SetCellValue(sheet, cell, label)
		cell, _ = excelize.CoordinatesToCellName(2, rowNum)
		_ = f.SetCellValue(sheet, cell, v)
	}
	write(1, "Verdict", string(rec.Verdict))
	write(2, "OK", rec.OK)
	if rec.DetectedTotal != nil {
		write(3, "Detected Total", rec.DetectedTotal.StringFixed(2))
	}
	if rec.ExpectedTotal != nil {
		write(4, "Expected Total", rec.ExpectedTotal.StringFixed(2))
	}
	if rec.RelativeDifference != nil {
		write(5, "Relative Difference", rec.RelativeDifference.Round(4).String())
	}
	row := 7
	for _, n := range rec.Notes {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		_ = f.SetCellValue(sheet, cell, n)
		row++
	}
	_ = f.SetColWidth(sheet, "A", "A", 60)
	return nil
}
