package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/venue-pos-api/internal/config"
	"github.com/sangkips/venue-pos-api/internal/domain/entity"
	"github.com/sangkips/venue-pos-api/pkg/money"
	"github.com/sangkips/venue-pos-api/pkg/printer"
	"github.com/sirupsen/logrus"
)

// PrinterService handles receipt formatting and thermal printing.
type PrinterService struct {
	printer printer.Printer
	bills   *BillService
	cfg     config.PrinterConfig
	log     logrus.FieldLogger
}

// NewPrinterService creates a new printer service.
func NewPrinterService(p printer.Printer, bills *BillService, cfg config.PrinterConfig, log logrus.FieldLogger) *PrinterService {
	return &PrinterService{
		printer: p,
		bills:   bills,
		cfg:     cfg,
		log:     log,
	}
}

// PrinterStatus returns the current printer status information.
type PrinterStatus struct {
	Configured bool   `json:"configured"`
	Connected  bool   `json:"connected"`
	Type       string `json:"type"`
}

// GetStatus returns printer connection status.
func (s *PrinterService) GetStatus() *PrinterStatus {
	return &PrinterStatus{
		Configured: s.printer.Kind() != printer.KindNone,
		Connected:  s.printer.Connected(),
		Type:       s.printer.Kind(),
	}
}

// TestPrint sends a test page to the printer.
// Returns the receipt data so the handler can return it as JSON when printer is disabled.
func (s *PrinterService) TestPrint() (*entity.Receipt, error) {
	receipt := &entity.Receipt{
		StoreName: s.cfg.StoreName,
		Reference: "TEST-001",
		Table:     "Bar",
		Date:      time.Now().Format("2006-01-02 15:04"),
		Status:    "test",
		Lines: []entity.ReceiptLine{
			{Name: "Test Item 1", Quantity: 1, UnitPrice: 10.00, Total: 10.00},
			{Name: "Test Item 2", Addons: "extra shot", Quantity: 2, Paid: 1, UnitPrice: 5.00, Total: 10.00},
		},
		Total:     20.00,
		Paid:      5.00,
		Remaining: 15.00,
	}

	if err := s.printer.Print(FormatReceipt(receipt, s.cfg.Width)); err != nil {
		return receipt, fmt.Errorf("test print failed: %w", err)
	}
	return receipt, nil
}

// PrintBillReceipt prints the aggregated rows of a bill with what has been
// paid so far.
func (s *PrinterService) PrintBillReceipt(ctx context.Context, billID uuid.UUID) (*entity.Receipt, error) {
	items, err := s.bills.GetBillItems(ctx, billID)
	if err != nil {
		return nil, err
	}
	bill := items.Bill

	receipt := &entity.Receipt{
		StoreName: s.cfg.StoreName,
		Reference: bill.Reference,
		Table:     bill.TableLabel,
		Date:      time.Now().Format("2006-01-02 15:04"),
		Status:    bill.Status.String(),
		Discount:  money.FromCents(bill.Discount),
		Total:     money.FromCents(bill.Total),
		Paid:      money.FromCents(bill.Paid),
		Remaining: money.FromCents(bill.Remaining),
	}
	for _, r := range items.Rows {
		names := make([]string, len(r.Addons))
		for i, a := range r.Addons {
			names[i] = a.Name
		}
		receipt.Lines = append(receipt.Lines, entity.ReceiptLine{
			Name:      r.Name,
			Addons:    strings.Join(names, ", "),
			Quantity:  r.TotalQuantity,
			Paid:      r.PaidQuantity,
			UnitPrice: money.FromCents(r.UnitPrice),
			Total:     money.FromCents(r.UnitPrice * int64(r.TotalQuantity)),
		})
	}
	for _, sc := range bill.SessionCharges {
		line := entity.ReceiptLine{Name: sc.Label, Quantity: 1, UnitPrice: money.FromCents(sc.Amount), Total: money.FromCents(sc.Amount)}
		if sc.Settled() {
			line.Paid = 1
		}
		receipt.Sessions = append(receipt.Sessions, line)
	}

	if err := s.printer.Print(FormatReceipt(receipt, s.cfg.Width)); err != nil {
		s.log.WithFields(logrus.Fields{"bill_id": billID, "error": err}).Error("Printer error")
		return receipt, fmt.Errorf("failed to print receipt: %w", err)
	}
	return receipt, nil
}

// FormatReceipt converts a Receipt into ESC/POS bytes.
func FormatReceipt(r *entity.Receipt, width int) []byte {
	doc := printer.NewDocument(width)

	doc.Align(printer.AlignCenter).
		Bold(true).
		Size(printer.SizeDouble).
		Line(r.StoreName).
		Size(printer.SizeNormal).
		Bold(false).
		Align(printer.AlignLeft).
		Rule('-')

	doc.Pair("Bill:", r.Reference)
	if r.Table != "" {
		doc.Pair("Table:", r.Table)
	}
	doc.Pair("Date:", r.Date).
		Pair("Status:", strings.ToUpper(r.Status)).
		Rule('-')

	for _, l := range r.Lines {
		doc.Pair(fmt.Sprintf("%s x%d", l.Name, l.Quantity), money.Format(money.ToCents(l.Total)))
		if l.Addons != "" {
			doc.Linef("  + %s", l.Addons)
		}
		if l.Quantity > 1 {
			doc.Linef("  @ %s each", money.Format(money.ToCents(l.UnitPrice)))
		}
		if l.Paid > 0 && l.Paid < l.Quantity {
			doc.Linef("  paid %d of %d", l.Paid, l.Quantity)
		} else if l.Paid >= l.Quantity {
			doc.Line("  paid")
		}
	}
	if len(r.Sessions) > 0 {
		doc.Rule('-')
		for _, l := range r.Sessions {
			doc.Pair(l.Name, money.Format(money.ToCents(l.Total)))
		}
	}

	doc.Rule('-')
	if r.Discount > 0 {
		doc.Pair("Discount:", "-"+money.Format(money.ToCents(r.Discount)))
	}
	doc.Bold(true).
		Pair("TOTAL:", money.Format(money.ToCents(r.Total))).
		Bold(false)
	if r.Paid > 0 {
		doc.Pair("Paid:", money.Format(money.ToCents(r.Paid)))
	}
	doc.Pair("Remaining:", money.Format(money.ToCents(r.Remaining))).
		Rule('-')

	doc.Align(printer.AlignCenter).
		Feed(1).
		Line("Thank you, see you again!").
		Feed(1).
		Align(printer.AlignLeft).
		Feed(3).
		Cut()

	return doc.Bytes()
}
