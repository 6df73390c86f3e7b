package printing

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/shopspring/decimal"
	apporder "github.com/stitchline/backend/internal/application/order"
	"github.com/stitchline/backend/internal/domain/company"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	contentTypePDF  = "application/pdf"
	contentTypeHTML = "text/html; charset=utf-8"
	dateLayout      = "02 Jan 2006"
)

// Archiver stores rendered invoices
type Archiver interface {
	Upload(ctx context.Context, storageKey string, data []byte, contentType string) error
}

// InvoiceRendererConfig configures invoice rendering
type InvoiceRendererConfig struct {
	// Currency is printed before every amount, e.g. "LKR"
	Currency string
	// Language selects digit grouping
	Language language.Tag
	Timeout  time.Duration
}

// InvoiceRenderer renders invoices to PDF, or to HTML when no PDF renderer
// is configured or the renderer fails
type InvoiceRenderer struct {
	tmpl    *template.Template
	pdf     PDFRenderer
	archive Archiver
	config  InvoiceRendererConfig
	printer *message.Printer
	titler  cases.Caser
	logger  *zap.Logger
}

// NewInvoiceRenderer creates a new InvoiceRenderer. pdf and archive may be nil.
func NewInvoiceRenderer(pdf PDFRenderer, archive Archiver, config InvoiceRendererConfig, logger *zap.Logger) *InvoiceRenderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.Language == language.Und {
		config.Language = language.English
	}
	funcs := template.FuncMap{"inc": func(i int) int { return i + 1 }}
	return &InvoiceRenderer{
		tmpl:    template.Must(template.New("invoice").Funcs(funcs).Parse(invoiceTemplate)),
		pdf:     pdf,
		archive: archive,
		config:  config,
		printer: message.NewPrinter(config.Language),
		titler:  cases.Title(config.Language),
		logger:  logger,
	}
}

type invoiceLine struct {
	Name      string
	Quantity  int
	UnitPrice string
	Amount    string
}

type invoiceView struct {
	Number            string
	IssuedAt          string
	OrderDate         string
	EstimatedDelivery string
	Company           company.Profile
	CustomerName      string
	CustomerEmail     string
	CustomerPhone     string
	ShippingAddress   string
	TrackingNumber    string
	Status            string
	PaymentMethod     string
	Lines             []invoiceLine
	Total             string
}

// RenderInvoice builds the invoice document for data
func (r *InvoiceRenderer) RenderInvoice(ctx context.Context, data apporder.InvoiceData) (*apporder.InvoiceDocument, error) {
	html, err := r.renderHTML(data)
	if err != nil {
		return nil, err
	}

	number := invoiceNumber(data)
	if r.pdf != nil {
		result, err := r.pdf.Render(ctx, &RenderRequest{HTML: html, Title: "Invoice " + number, Timeout: r.config.Timeout})
		if err == nil {
			doc := &apporder.InvoiceDocument{
				ContentType: contentTypePDF,
				Filename:    "invoice-" + number + ".pdf",
				Data:        result.PDFData,
			}
			r.store(ctx, data, doc)
			return doc, nil
		}
		r.logger.Warn("PDF rendering failed, serving HTML invoice",
			zap.String("order_id", data.Order.ID.String()),
			zap.Error(err))
	}

	return &apporder.InvoiceDocument{
		ContentType: contentTypeHTML,
		Filename:    "invoice-" + number + ".html",
		Data:        []byte(html),
	}, nil
}

func (r *InvoiceRenderer) renderHTML(data apporder.InvoiceData) (string, error) {
	o := data.Order
	view := invoiceView{
		Number:            invoiceNumber(data),
		IssuedAt:          data.IssuedAt.Format(dateLayout),
		OrderDate:         o.CreatedAt.Format(dateLayout),
		EstimatedDelivery: o.EstimatedDelivery.Format(dateLayout),
		Company:           data.Company,
		CustomerName:      r.titler.String(data.CustomerName),
		CustomerEmail:     data.CustomerEmail,
		CustomerPhone:     data.CustomerPhone,
		ShippingAddress:   o.ShippingAddress,
		TrackingNumber:    o.TrackingNumber,
		Status:            string(o.Status),
		PaymentMethod:     o.PaymentMethod,
		Total:             r.money(o.Total),
	}
	for _, it := range o.Items {
		view.Lines = append(view.Lines, invoiceLine{
			Name:      it.ProductName,
			Quantity:  it.Quantity,
			UnitPrice: r.money(it.UnitPrice),
			Amount:    r.money(it.LineTotal),
		})
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("render invoice template: %w", err)
	}
	return buf.String(), nil
}

// money formats an amount with locale digit grouping and two decimals
func (r *InvoiceRenderer) money(d decimal.Decimal) string {
	amount := r.printer.Sprintf("%.2f", d.Round(2).InexactFloat64())
	if r.config.Currency == "" {
		return amount
	}
	return r.config.Currency + " " + amount
}

// store archives the PDF. Failures are logged and do not fail the download.
func (r *InvoiceRenderer) store(ctx context.Context, data apporder.InvoiceData, doc *apporder.InvoiceDocument) {
	if r.archive == nil {
		return
	}
	key := fmt.Sprintf("invoices/%s/%s", data.Order.CreatedAt.Format("2006/01"), doc.Filename)
	if err := r.archive.Upload(ctx, key, doc.Data, doc.ContentType); err != nil {
		r.logger.Warn("Invoice archive upload failed", zap.String("key", key), zap.Error(err))
	}
}

func invoiceNumber(data apporder.InvoiceData) string {
	if data.Order.TrackingNumber != "" {
		return data.Order.TrackingNumber
	}
	return data.Order.ID.String()
}

var _ apporder.InvoiceRenderer = (*InvoiceRenderer)(nil)
