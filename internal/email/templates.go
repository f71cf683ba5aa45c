package email

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ChaseData carries the fields the chase templates render.
type ChaseData struct {
	ContactName    string
	BusinessName   string
	InvoiceNumber  string
	AmountDue      decimal.Decimal
	Currency       string
	DueDate        time.Time
	DaysOverdue    int
	UnsubscribeURL string
}

// DigestInvoice is one paid invoice line in the weekly digest.
type DigestInvoice struct {
	ContactName   string
	InvoiceNumber string
	Amount        decimal.Decimal
	Currency      string
	PaidAt        time.Time
}

// DigestData carries the fields the weekly digest template renders.
type DigestData struct {
	BusinessName   string
	WeekStart      time.Time
	WeekEnd        time.Time
	PaidInvoices   []DigestInvoice
	TotalRecovered decimal.Decimal
	Currency       string
	OpenCount      int
	ChasesSent     int
}

// Chase escalates in tone across four stages. Subjects reference the
// invoice number so replies thread correctly in the contact's mailbox.
var chaseSubjects = map[int16]string{
	1: "Quick reminder: invoice %s",
	2: "Payment outstanding: invoice %s",
	3: "Overdue: invoice %s needs your attention",
	4: "Final notice: invoice %s",
}

var chaseOpenings = map[int16]string{
	1: "Just a friendly reminder that the invoice below is now due. If you've already paid, please ignore this and thank you!",
	2: "We haven't yet received payment for the invoice below, which is now past due. Could you take a look when you get a moment?",
	3: "The invoice below is still unpaid despite previous reminders. Please arrange payment, or reply to this email if something is holding it up.",
	4: "This is a final reminder for the invoice below. If payment isn't received shortly we may need to review the account. Please reply if you believe this is in error.",
}

const chaseHTMLTemplate = `<!DOCTYPE html>
<html>
<body style="font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; color: #1f2937; max-width: 560px; margin: 0 auto; padding: 24px;">
  <p>Hi {{.FirstName}},</p>
  <p>{{.Opening}}</p>
  <table style="width: 100%; border-collapse: collapse; margin: 20px 0; background: #f9fafb; border-radius: 8px;">
    <tr>
      <td style="padding: 16px;">
        <div style="font-size: 13px; color: #6b7280;">Invoice {{.InvoiceNumber}}</div>
        <div style="font-size: 24px; font-weight: 600; margin: 4px 0;">{{.Amount}}</div>
        <div style="font-size: 13px; color: #6b7280;">Due {{.DueDate}}{{if .DaysOverdue}} ({{.DaysOverdue}} days overdue){{end}}</div>
      </td>
    </tr>
  </table>
  <p>If you have any questions, just reply to this email.</p>
  <p>Thanks,<br>{{.BusinessName}}</p>
  <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 28px 0 12px;">
  <p style="font-size: 12px; color: #9ca3af;">
    Sent on behalf of {{.BusinessName}} &middot; Powered by Owed &middot;
    <a href="{{.UnsubscribeURL}}" style="color: #9ca3af;">Unsubscribe</a>
  </p>
</body>
</html>`

const chaseTextTemplate = `Hi {{.FirstName}},

{{.Opening}}

Invoice {{.InvoiceNumber}}
Amount due: {{.Amount}}
Due {{.DueDate}}{{if .DaysOverdue}} ({{.DaysOverdue}} days overdue){{end}}

If you have any questions, just reply to this email.

Thanks,
{{.BusinessName}}

--
Sent on behalf of {{.BusinessName}}. Powered by Owed.
Unsubscribe: {{.UnsubscribeURL}}`

const digestHTMLTemplate = `<!DOCTYPE html>
<html>
<body style="font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; color: #1f2937; max-width: 560px; margin: 0 auto; padding: 24px;">
  <p>Hi,</p>
  <p>Here's your week with Owed ({{.WeekStart}} to {{.WeekEnd}}).</p>
  {{if .PaidInvoices}}
  <p style="font-size: 18px; font-weight: 600;">{{.TotalRecovered}} recovered this week</p>
  <table style="width: 100%; border-collapse: collapse; margin: 12px 0;">
    {{range .PaidInvoices}}
    <tr style="border-bottom: 1px solid #e5e7eb;">
      <td style="padding: 8px 0;">{{.ContactName}}{{if .InvoiceNumber}} &middot; {{.InvoiceNumber}}{{end}}</td>
      <td style="padding: 8px 0; text-align: right; font-weight: 600;">{{.Amount}}</td>
    </tr>
    {{end}}
  </table>
  {{else}}
  <p>No invoices were paid this week, but your reminders are still working in the background.</p>
  {{end}}
  <p style="font-size: 14px; color: #6b7280;">{{.ChasesSent}} reminders sent &middot; {{.OpenCount}} invoices still open</p>
  <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 28px 0 12px;">
  <p style="font-size: 12px; color: #9ca3af;">Owed &middot; your invoices, chased automatically</p>
</body>
</html>`

var (
	chaseHTML  = template.Must(template.New("chase").Parse(chaseHTMLTemplate))
	chaseText  = template.Must(template.New("chase_text").Parse(chaseTextTemplate))
	digestHTML = template.Must(template.New("digest").Parse(digestHTMLTemplate))
)

// ChaseSubject returns the subject line for the given stage.
func ChaseSubject(stage int16, invoiceNumber string) string {
	format, ok := chaseSubjects[stage]
	if !ok {
		format = chaseSubjects[1]
	}
	if invoiceNumber == "" {
		invoiceNumber = "outstanding"
	}
	return fmt.Sprintf(format, invoiceNumber)
}

// RenderChase renders the HTML and text bodies for a chase email.
func RenderChase(stage int16, data ChaseData) (htmlBody, textBody string, err error) {
	opening, ok := chaseOpenings[stage]
	if !ok {
		opening = chaseOpenings[1]
	}

	view := struct {
		FirstName      string
		Opening        string
		InvoiceNumber  string
		Amount         string
		DueDate        string
		DaysOverdue    int
		BusinessName   string
		UnsubscribeURL string
	}{
		FirstName:      FirstName(data.ContactName),
		Opening:        opening,
		InvoiceNumber:  data.InvoiceNumber,
		Amount:         FormatAmount(data.AmountDue, data.Currency),
		DueDate:        data.DueDate.Format("2 January 2006"),
		DaysOverdue:    data.DaysOverdue,
		BusinessName:   data.BusinessName,
		UnsubscribeURL: data.UnsubscribeURL,
	}

	var htmlBuf, textBuf bytes.Buffer
	if err := chaseHTML.Execute(&htmlBuf, view); err != nil {
		return "", "", fmt.Errorf("failed to render chase html: %w", err)
	}
	if err := chaseText.Execute(&textBuf, view); err != nil {
		return "", "", fmt.Errorf("failed to render chase text: %w", err)
	}

	return htmlBuf.String(), textBuf.String(), nil
}

// RenderDigest renders the HTML body for the weekly digest email.
func RenderDigest(data DigestData) (string, error) {
	type digestLine struct {
		ContactName   string
		InvoiceNumber string
		Amount        string
	}

	lines := make([]digestLine, len(data.PaidInvoices))
	for i, inv := range data.PaidInvoices {
		lines[i] = digestLine{
			ContactName:   inv.ContactName,
			InvoiceNumber: inv.InvoiceNumber,
			Amount:        FormatAmount(inv.Amount, inv.Currency),
		}
	}

	view := struct {
		WeekStart      string
		WeekEnd        string
		PaidInvoices   []digestLine
		TotalRecovered string
		OpenCount      int
		ChasesSent     int
	}{
		WeekStart:      data.WeekStart.Format("2 Jan"),
		WeekEnd:        data.WeekEnd.Format("2 Jan"),
		PaidInvoices:   lines,
		TotalRecovered: FormatAmount(data.TotalRecovered, data.Currency),
		OpenCount:      data.OpenCount,
		ChasesSent:     data.ChasesSent,
	}

	var buf bytes.Buffer
	if err := digestHTML.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("failed to render digest: %w", err)
	}
	return buf.String(), nil
}

// FirstName extracts the first word of a contact name for the greeting.
// Falls back to "there" when the name is empty.
func FirstName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "there"
	}
	return fields[0]
}

var currencySymbols = map[string]string{
	"GBP": "£",
	"USD": "$",
	"EUR": "€",
	"AUD": "A$",
	"NZD": "NZ$",
	"CAD": "C$",
}

// FormatAmount renders a monetary amount with its currency symbol, or the
// ISO code as a prefix when the currency has no common symbol.
func FormatAmount(amount decimal.Decimal, currency string) string {
	value := amount.StringFixed(2)
	if symbol, ok := currencySymbols[strings.ToUpper(currency)]; ok {
		return symbol + value
	}
	if currency == "" {
		return value
	}
	return strings.ToUpper(currency) + " " + value
}
