package dto

type BusinessInput struct {
	Name      string `json:"name" validate:"required,max=255"`
	GSTNumber string `json:"gst_number" validate:"required,gstin"`
	PANNumber string `json:"pan_number" validate:"omitempty,pan"`
	Address   string `json:"address" validate:"required,max=500"`
	City      string `json:"city" validate:"required,max=100"`
	State     string `json:"state" validate:"required,max=100"`
	Pincode   string `json:"pincode" validate:"required,pincode"`
	Email     string `json:"email" validate:"omitempty,email,max=255"`
	Phone     string `json:"phone" validate:"omitempty,in_phone"`
	IsPrimary bool   `json:"is_primary"`
}

func (in *BusinessInput) Normalize() {
	in.GSTNumber = upper(in.GSTNumber)
	in.PANNumber = upper(in.PANNumber)
	trim(&in.Name)
	trim(&in.State)
	trim(&in.Email)
	trim(&in.Phone)
}

// BusinessUpdate is a partial update; nil fields are left unchanged.
type BusinessUpdate struct {
	ID        uint    `json:"id" validate:"required"`
	Name      *string `json:"name" validate:"omitnil,min=1,max=255"`
	GSTNumber *string `json:"gst_number" validate:"omitnil,gstin"`
	PANNumber *string `json:"pan_number" validate:"omitempty,pan"`
	Address   *string `json:"address" validate:"omitnil,min=1,max=500"`
	City      *string `json:"city" validate:"omitnil,min=1,max=100"`
	State     *string `json:"state" validate:"omitnil,min=1,max=100"`
	Pincode   *string `json:"pincode" validate:"omitnil,pincode"`
	Email     *string `json:"email" validate:"omitempty,email,max=255"`
	Phone     *string `json:"phone" validate:"omitempty,in_phone"`
	IsPrimary *bool   `json:"is_primary"`
}

func (in *BusinessUpdate) Normalize() {
	upperPtr(in.GSTNumber)
	upperPtr(in.PANNumber)
	trim(in.Name)
	trim(in.State)
	trim(in.Email)
	trim(in.Phone)
}
