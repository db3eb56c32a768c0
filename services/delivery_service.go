package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/domodwyer/mailyak/v3"
	"github.com/jung-kurt/gofpdf"
	"github.com/sirupsen/logrus"
	qrcode "github.com/skip2/go-qrcode"

	"xposure-ticketing/utils"
)

// EmailConfig carries the SMTP settings for ticket delivery.
type EmailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	FromName string
}

// EmailDeliverer sends the purchase confirmation: an HTML email with
// the QR code inlined and a printable PDF ticket attached.
type EmailDeliverer struct {
	cfg     EmailConfig
	breaker *utils.Breaker
	tmpl    *template.Template
}

func NewEmailDeliverer(cfg EmailConfig) *EmailDeliverer {
	return &EmailDeliverer{
		cfg:     cfg,
		breaker: utils.NewBreaker("email"),
		tmpl:    template.Must(template.New("ticket").Parse(ticketEmailTemplate)),
	}
}

func (d *EmailDeliverer) DeliverTicket(ctx context.Context, email string, info DeliveryInfo) error {
	png, err := qrcode.Encode(info.Code, qrcode.Medium, 300)
	if err != nil {
		return fmt.Errorf("render qr code: %w", err)
	}

	pdf, err := d.renderPDF(info, png)
	if err != nil {
		return fmt.Errorf("render ticket pdf: %w", err)
	}

	var body bytes.Buffer
	if err := d.tmpl.Execute(&body, info); err != nil {
		return fmt.Errorf("render ticket email: %w", err)
	}

	return d.breaker.Do(func() error {
		mail := mailyak.New(
			fmt.Sprintf("%s:%d", d.cfg.Host, d.cfg.Port),
			smtp.PlainAuth("", d.cfg.User, d.cfg.Password, d.cfg.Host),
		)
		mail.From(d.cfg.From)
		mail.FromName(d.cfg.FromName)
		mail.To(email)
		mail.Subject(fmt.Sprintf("Biletul tau pentru %s", info.EventTitle))
		mail.HTML().Set(body.String())
		mail.AttachInline("qrcode.png", bytes.NewReader(png))
		mail.Attach(fmt.Sprintf("bilet-%s.pdf", info.Code), bytes.NewReader(pdf))

		if err := mail.Send(); err != nil {
			logrus.WithField("to", email).WithError(err).Error("smtp send failed")
			return err
		}
		return nil
	})
}

// renderPDF draws the printable ticket: event facts on the left, the
// entrance QR bottom centre.
func (d *EmailDeliverer) renderPDF(info DeliveryInfo, qrPNG []byte) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 22)
	pdf.CellFormat(0, 12, info.EventTitle, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 12)
	pdf.Ln(6)
	lines := [][2]string{
		{"Name", info.Name},
		{"Date", info.EventDate.Format("02 Jan 2006 15:04")},
		{"Location", info.EventLocation},
		{"Tickets", fmt.Sprintf("%d", info.Quantity)},
		{"Total", info.TotalAmount},
		{"Code", info.Code},
	}
	for _, line := range lines {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(40, 8, line[0], "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 12)
		pdf.CellFormat(0, 8, line[1], "", 1, "L", false, 0, "")
	}

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qrcode", opts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qrcode", 75, 120, 60, 60, false, opts, 0, "")

	pdf.SetY(185)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.CellFormat(0, 6, "Present this QR code at the entrance.", "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

const ticketEmailTemplate = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #1a1a1a;">
  <h2>Salut, {{.Name}}!</h2>
  <p>Your ticket for <strong>{{.EventTitle}}</strong> is confirmed.</p>
  <table cellpadding="4">
    <tr><td><strong>Date</strong></td><td>{{.EventDate.Format "02 Jan 2006 15:04"}}</td></tr>
    <tr><td><strong>Location</strong></td><td>{{.EventLocation}}</td></tr>
    <tr><td><strong>Tickets</strong></td><td>{{.Quantity}}</td></tr>
    <tr><td><strong>Total</strong></td><td>{{.TotalAmount}}</td></tr>
    <tr><td><strong>Code</strong></td><td>{{.Code}}</td></tr>
  </table>
  <p>Show this QR code at the entrance:</p>
  <img src="cid:qrcode.png" alt="{{.Code}}" width="220" height="220"/>
  <p>A printable PDF is attached to this email.</p>
</body>
</html>`
