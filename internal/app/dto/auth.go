package dto

import "strings"

type SignUpInput struct {
	Name            string `json:"name" validate:"required,max=255"`
	Email           string `json:"email" validate:"required,email,max=255"`
	Password        string `json:"password" validate:"required,min=8,max=72"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
	AcceptTerms     bool   `json:"accept_terms" validate:"eq=true"`
}

func (in *SignUpInput) Normalize() {
	trim(&in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
}

type SignInInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

func (in *SignInInput) Normalize() {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
}

type ForgotPasswordInput struct {
	Email string `json:"email" validate:"required,email"`
}

func (in *ForgotPasswordInput) Normalize() {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
}

type ResetPasswordInput struct {
	Token           string `json:"token" validate:"required"`
	Password        string `json:"password" validate:"required,min=8,max=72"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

type RefreshInput struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}
