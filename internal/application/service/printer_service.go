package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/colmado-pos/internal/domain/checkout"
	"github.com/sangkips/colmado-pos/pkg/printer"
	"github.com/shopspring/decimal"
)

// PrinterService formats receipts and sends them to the thermal printer.
type PrinterService struct {
	printer     printer.Printer
	invoices    *InvoiceService
	settings    *SettingsService
	printerType string
}

// NewPrinterService creates a new printer service.
func NewPrinterService(p printer.Printer, invoices *InvoiceService, settings *SettingsService, printerType string) *PrinterService {
	return &PrinterService{
		printer:     p,
		invoices:    invoices,
		settings:    settings,
		printerType: printerType,
	}
}

// PrinterStatus returns the current printer status information.
type PrinterStatus struct {
	Configured bool   `json:"configured"`
	Connected  bool   `json:"connected"`
	Type       string `json:"type"`
}

// GetStatus returns printer connection status.
func (s *PrinterService) GetStatus(ctx context.Context) *PrinterStatus {
	return &PrinterStatus{
		Configured: s.printerType != "none" && s.printerType != "",
		Connected:  s.printer.IsConnected(ctx),
		Type:       s.printerType,
	}
}

// TestPrint prints a sample receipt with the current store identity.
// The view is returned even when printing fails.
func (s *PrinterService) TestPrint(ctx context.Context) (*checkout.PrintView, error) {
	assembler, err := s.settings.Assembler(ctx)
	if err != nil {
		return nil, err
	}
	received := decimal.NewFromInt(200)
	change := decimal.RequireFromString("82.00")
	sample := checkout.InvoicePayload{
		Customer:      checkout.PayloadCustomer{Name: checkout.DefaultCustomerName},
		PaymentMethod: checkout.WireCash,
		PaymentDetails: checkout.PaymentDetails{
			Received: &received,
			Change:   &change,
		},
		Items: []checkout.PayloadItem{
			{Name: "Prueba de impresión ñ á é", Quantity: decimal.NewFromInt(2), Price: decimal.NewFromInt(50), Subtotal: decimal.NewFromInt(100)},
		},
		Subtotal:  decimal.NewFromInt(100),
		TaxAmount: decimal.NewFromInt(18),
		Total:     decimal.NewFromInt(118),
	}
	view := assembler.Preview(sample, "PRUEBA", time.Now())

	if err := s.printer.Print(ctx, FormatReceipt(view)); err != nil {
		return &view, fmt.Errorf("test print failed: %w", err)
	}
	return &view, nil
}

// PrintInvoice prints the receipt of a stored invoice.
func (s *PrinterService) PrintInvoice(ctx context.Context, id uuid.UUID) (*checkout.PrintView, error) {
	view, err := s.invoices.Receipt(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.printer.Print(ctx, FormatReceipt(*view)); err != nil {
		log.Printf("Printer error (invoice %s): %v", view.ReceiptNumber, err)
		return view, fmt.Errorf("failed to print receipt: %w", err)
	}
	return view, nil
}

// FormatReceipt converts a print view into ESC/POS bytes.
func FormatReceipt(v checkout.PrintView) []byte {
	doc := printer.NewDocument(v.Business.PaperWidth)
	b := v.Business

	doc.SetAlign(printer.AlignCenter).
		SetBold(true).
		SetFontSize(printer.FontDouble).
		Wrapped(b.Name).
		SetFontSize(printer.FontNormal).
		SetBold(false)
	if b.Address != "" {
		doc.Wrapped(b.Address)
	}
	if b.Phone != "" {
		doc.TextF("Tel: %s", b.Phone)
	}
	if b.TaxID != "" {
		doc.TextF("RNC: %s", b.TaxID)
	}
	if b.Email != "" {
		doc.Text(b.Email)
	}

	doc.SetAlign(printer.AlignLeft).
		Separator('-').
		KeyValue("Factura:", v.ReceiptNumber).
		Wrapped(v.IssuedAt).
		KeyValue("Cliente:", v.CustomerName).
		KeyValue("Pago:", v.PaymentLabel)
	if v.IsCredit {
		doc.SetBold(true).Text("VENTA A CRÉDITO").SetBold(false)
	}
	doc.Separator('-')

	for _, item := range v.Items {
		doc.ItemLine(item.Name, item.Quantity, item.Price, item.Total)
	}

	doc.Separator('-')
	if v.Rounding != "" {
		doc.KeyValue("Redondeo:", v.Rounding)
	}
	doc.KeyValue("Subtotal:", v.Subtotal).
		KeyValue("ITBIS (18%):", v.Tax).
		SetBold(true).
		KeyValue("TOTAL:", v.Total).
		SetBold(false)
	if v.Received != "" {
		doc.KeyValue("Recibido:", v.Received)
	}
	if v.Change != "" {
		doc.KeyValue("Devuelta:", v.Change)
	}
	if v.Reference != "" {
		doc.Wrapped(v.Reference)
	}
	doc.Separator('-')

	if v.Footer != "" {
		doc.SetAlign(printer.AlignCenter).
			LineFeed().
			Wrapped(v.Footer).
			SetAlign(printer.AlignLeft)
	}
	doc.FeedLines(3).
		PartialCut()

	return doc.Bytes()
}
