package dto

import "strings"

type CheckoutInput struct {
	Plan     string `json:"plan" validate:"required"`
	Amount   int64  `json:"amount" validate:"required"`
	Currency string `json:"currency" validate:"omitempty,len=3"`
}

func (in *CheckoutInput) Normalize() {
	in.Plan = strings.ToLower(strings.TrimSpace(in.Plan))
	in.Currency = upper(in.Currency)
	if in.Currency == "" {
		in.Currency = "INR"
	}
}

type SubscriptionActionInput struct {
	SubscriptionID uint `json:"subscriptionId" validate:"required"`
}
