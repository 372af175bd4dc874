package dto

type CustomerInput struct {
	Name         string `json:"name" validate:"required,max=255"`
	GSTNumber    string `json:"gst_number" validate:"omitempty,gstin"`
	Email        string `json:"email" validate:"omitempty,email,max=255"`
	Phone        string `json:"phone" validate:"omitempty,in_phone"`
	Address      string `json:"address" validate:"omitempty,max=500"`
	City         string `json:"city" validate:"omitempty,max=100"`
	State        string `json:"state" validate:"required,max=100"`
	Pincode      string `json:"pincode" validate:"omitempty,pincode"`
	CustomerType string `json:"customer_type" validate:"omitempty,oneof=individual business"`
	Notes        string `json:"notes" validate:"omitempty,max=1000"`
}

func (in *CustomerInput) Normalize() {
	in.GSTNumber = upper(in.GSTNumber)
	trim(&in.Name)
	trim(&in.State)
	trim(&in.Email)
	trim(&in.Phone)
	if in.CustomerType == "" {
		in.CustomerType = "individual"
	}
}

type CustomerUpdate struct {
	ID           uint    `json:"id" validate:"required"`
	Name         *string `json:"name" validate:"omitnil,min=1,max=255"`
	GSTNumber    *string `json:"gst_number" validate:"omitempty,gstin"`
	Email        *string `json:"email" validate:"omitempty,email,max=255"`
	Phone        *string `json:"phone" validate:"omitempty,in_phone"`
	Address      *string `json:"address" validate:"omitempty,max=500"`
	City         *string `json:"city" validate:"omitempty,max=100"`
	State        *string `json:"state" validate:"omitnil,min=1,max=100"`
	Pincode      *string `json:"pincode" validate:"omitempty,pincode"`
	CustomerType *string `json:"customer_type" validate:"omitempty,oneof=individual business"`
	Notes        *string `json:"notes" validate:"omitempty,max=1000"`
}

func (in *CustomerUpdate) Normalize() {
	upperPtr(in.GSTNumber)
	trim(in.Name)
	trim(in.State)
	trim(in.Email)
	trim(in.Phone)
}
