// internal/app/system/mailer/templates.go
package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

// PaymentEmailData holds data for payment decision emails.
type PaymentEmailData struct {
	SiteName      string
	Username      string
	Month         string // "YYYY-MM"
	Amount        int64
	PaymentID     string
	AdminUsername string
	Reason        string // optional, rejections only
}

// BuildPaymentApprovedEmail creates the email sent when an admin accepts a
// payment request. The recipient is set by the caller.
func BuildPaymentApprovedEmail(data PaymentEmailData) Email {
	return Email{
		Subject:  fmt.Sprintf("Payment approved for %s", data.Month),
		TextBody: buildApprovedText(data),
		HTMLBody: buildPaymentHTML("Payment approved", approvedLine(data), data),
	}
}

// BuildPaymentRejectedEmail creates the email sent when an admin rejects a
// payment request.
func BuildPaymentRejectedEmail(data PaymentEmailData) Email {
	return Email{
		Subject:  fmt.Sprintf("Payment rejected for %s", data.Month),
		TextBody: buildRejectedText(data),
		HTMLBody: buildPaymentHTML("Payment rejected", rejectedLine(data), data),
	}
}

func approvedLine(d PaymentEmailData) string {
	return fmt.Sprintf("Your payment of ₹%d for %s has been approved by %s.", d.Amount, d.Month, d.AdminUsername)
}

func rejectedLine(d PaymentEmailData) string {
	line := fmt.Sprintf("Your payment of ₹%d for %s was rejected by %s.", d.Amount, d.Month, d.AdminUsername)
	if d.Reason != "" {
		line += " Reason: " + d.Reason
	}
	return line
}

func buildApprovedText(d PaymentEmailData) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Hi %s,\n\n%s\n\n", d.Username, approvedLine(d))
	if d.PaymentID != "" {
		fmt.Fprintf(&buf, "Receipt code: %s\n\n", d.PaymentID)
	}
	buf.WriteString("You can download your receipt from the app.\n")
	return buf.String()
}

func buildRejectedText(d PaymentEmailData) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Hi %s,\n\n%s\n\n", d.Username, rejectedLine(d))
	buf.WriteString("Please submit a new payment request from the app.\n")
	return buf.String()
}

func buildPaymentHTML(heading, line string, d PaymentEmailData) string {
	tmpl := template.Must(template.New("payment").Parse(paymentHTMLTemplate))
	var buf bytes.Buffer
	_ = tmpl.Execute(&buf, struct {
		SiteName, Heading, Line, PaymentID string
	}{d.SiteName, heading, line, d.PaymentID})
	return buf.String()
}

const paymentHTMLTemplate = `<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>{{.Heading}}</title></head>
<body style="margin:0;padding:24px;font-family:-apple-system,'Segoe UI',Roboto,Arial,sans-serif;background:#f3f4f6;">
  <div style="max-width:480px;margin:0 auto;background:#ffffff;border-radius:8px;padding:24px;">
    <h2 style="margin:0 0 8px;color:#b91c1c;">{{.SiteName}}</h2>
    <h3 style="margin:0 0 16px;">{{.Heading}}</h3>
    <p style="margin:0 0 12px;color:#111827;">{{.Line}}</p>
    {{if .PaymentID}}<p style="margin:0;color:#6b7280;">Receipt code: <code>{{.PaymentID}}</code></p>{{end}}
  </div>
</body>
</html>`
