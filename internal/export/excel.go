// Package export builds the admin xlsx report of reservations, scheduled
// classes and store orders.
package export

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"turnero/internal/model"
)

// Store is the read surface the exporter needs.
type Store interface {
	ListReservations(ctx context.Context) ([]model.Reservation, error)
	ListScheduledClasses(ctx context.Context) ([]model.ScheduledClass, error)
	ListOrders(ctx context.Context) ([]model.Order, error)
}

type sheetWriter struct {
	file       *excelize.File
	sheet      string
	currentRow int
	headerSet  bool
}

func newSheetWriter() *sheetWriter {
	return &sheetWriter{file: excelize.NewFile()}
}

func (w *sheetWriter) addSheet(name string) error {
	// Excel caps sheet names at 31 chars.
	if len(name) > 31 {
		name = name[:31]
	}
	if w.sheet == "" {
		w.file.SetSheetName("Sheet1", name)
	} else {
		if _, err := w.file.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}
	w.sheet = name
	w.currentRow = 1
	return nil
}

func (w *sheetWriter) writeHeader(columns []string) error {
	if err := w.writeCells(anyRow(columns)); err != nil {
		return err
	}
	style, err := w.file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err == nil {
		startCell, _ := excelize.CoordinatesToCellName(1, w.currentRow)
		endCell, _ := excelize.CoordinatesToCellName(len(columns), w.currentRow)
		_ = w.file.SetCellStyle(w.sheet, startCell, endCell, style)
	}
	w.currentRow++
	return nil
}

func (w *sheetWriter) writeRow(row []interface{}) error {
	if err := w.writeCells(row); err != nil {
		return err
	}
	w.currentRow++
	return nil
}

func (w *sheetWriter) writeCells(row []interface{}) error {
	if w.sheet == "" {
		return fmt.Errorf("no active sheet")
	}
	for i, val := range row {
		cell, err := excelize.CoordinatesToCellName(i+1, w.currentRow)
		if err != nil {
			return err
		}
		if err := w.file.SetCellValue(w.sheet, cell, val); err != nil {
			return err
		}
	}
	return nil
}

func anyRow(cols []string) []interface{} {
	row := make([]interface{}, len(cols))
	for i, c := range cols {
		row[i] = c
	}
	return row
}

// WriteWorkbook renders every collection into one workbook and writes it
// as xlsx to wr.
func WriteWorkbook(ctx context.Context, st Store, wr io.Writer) error {
	w := newSheetWriter()
	defer w.file.Close()

	if err := writeReservations(ctx, st, w); err != nil {
		return err
	}
	if err := writeClasses(ctx, st, w); err != nil {
		return err
	}
	if err := writeOrders(ctx, st, w); err != nil {
		return err
	}
	return w.file.Write(wr)
}

func writeReservations(ctx context.Context, st Store, w *sheetWriter) error {
	reservations, err := st.ListReservations(ctx)
	if err != nil {
		return err
	}
	if err := w.addSheet("Reservations"); err != nil {
		return err
	}
	if err := w.writeHeader([]string{
		"ID", "Date", "Time", "End", "Service", "Price",
		"Customer", "Email", "Phone", "Status", "Payment ID",
	}); err != nil {
		return err
	}
	for _, r := range reservations {
		if err := w.writeRow([]interface{}{
			r.ID, r.Date, r.Time, r.EndTime, r.ServiceName, r.ServicePrice,
			r.CustomerName, r.CustomerEmail, r.CustomerPhone, string(r.Status), r.PaymentID,
		}); err != nil {
			return err
		}
	}
	return nil
}

func writeClasses(ctx context.Context, st Store, w *sheetWriter) error {
	classes, err := st.ListScheduledClasses(ctx)
	if err != nil {
		return err
	}
	if err := w.addSheet("Classes"); err != nil {
		return err
	}
	if err := w.writeHeader([]string{
		"ID", "Date", "Time", "End", "User", "Pack", "Customer", "Status",
	}); err != nil {
		return err
	}
	for _, c := range classes {
		if err := w.writeRow([]interface{}{
			c.ID, c.Date, c.Time, c.EndTime, c.UserID, c.UserPackID,
			c.CustomerName, string(c.Status),
		}); err != nil {
			return err
		}
	}
	return nil
}

func writeOrders(ctx context.Context, st Store, w *sheetWriter) error {
	orders, err := st.ListOrders(ctx)
	if err != nil {
		return err
	}
	if err := w.addSheet("Orders"); err != nil {
		return err
	}
	if err := w.writeHeader([]string{
		"Order ID", "Status", "Total", "Customer", "Slot Service",
		"Slot Date", "Slot Time", "Slot Status",
	}); err != nil {
		return err
	}
	for _, o := range orders {
		if len(o.SelectedSlots) == 0 {
			if err := w.writeRow([]interface{}{
				o.ID, string(o.Status), o.Total, o.Customer.Name, "", "", "", "",
			}); err != nil {
				return err
			}
			continue
		}
		for _, s := range o.SelectedSlots {
			if err := w.writeRow([]interface{}{
				o.ID, string(o.Status), o.Total, o.Customer.Name,
				s.ServiceID, s.Date, s.Time, string(s.Status),
			}); err != nil {
				return err
			}
		}
	}
	return nil
}
