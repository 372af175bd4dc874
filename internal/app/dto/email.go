package dto

type SendInvoiceEmailInput struct {
	To      string `json:"to" validate:"omitempty,email"` // defaults to the customer's email
	Subject string `json:"subject" validate:"omitempty,max=255"`
	Message string `json:"message" validate:"omitempty,max=1000"`
}

func (in *SendInvoiceEmailInput) Normalize() {
	trim(&in.To)
	trim(&in.Subject)
}
