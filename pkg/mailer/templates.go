package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

var invoiceTemplate = template.Must(template.New("invoice").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #222;">
  <p>Dear {{.CustomerName}},</p>
  {{if .Message}}<p>{{.Message}}</p>{{end}}
  <p>Please find attached invoice <strong>{{.InvoiceNumber}}</strong> dated {{.InvoiceDate}}
  from {{.BusinessName}} for <strong>INR {{.TotalAmount}}</strong>.</p>
  {{if .DueDate}}<p>Payment is due by {{.DueDate}}.</p>{{end}}
  <p>Regards,<br>{{.BusinessName}}</p>
</body>
</html>`))

var passwordResetTemplate = template.Must(template.New("reset").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #222;">
  <p>Hi {{.Name}},</p>
  <p>We received a request to reset your password. The link below is valid for {{.ValidFor}}.</p>
  <p><a href="{{.Link}}">Reset your password</a></p>
  <p>If you did not ask for this, you can ignore this email.</p>
</body>
</html>`))

type InvoiceEmailData struct {
	CustomerName  string
	BusinessName  string
	InvoiceNumber string
	InvoiceDate   string
	DueDate       string
	TotalAmount   string
	Message       string
}

type PasswordResetData struct {
	Name     string
	Link     string
	ValidFor string
}

func RenderInvoiceEmail(data InvoiceEmailData) (string, error) {
	return render(invoiceTemplate, data)
}

func RenderPasswordReset(data PasswordResetData) (string, error) {
	return render(passwordResetTemplate, data)
}

func render(t *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s template: %w", t.Name(), err)
	}
	return buf.String(), nil
}
