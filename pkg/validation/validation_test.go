package validation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormats(t *testing.T) {
	tests := []struct {
		name  string
		check func(string) bool
		value string
		want  bool
	}{
		{"gstin valid", IsGSTIN, "29ABCDE1234F1Z5", true},
		{"gstin lowercase", IsGSTIN, "29abcde1234f1z5", false},
		{"gstin missing Z", IsGSTIN, "29ABCDE1234F1X5", false},
		{"gstin zero entity code", IsGSTIN, "29ABCDE1234F0Z5", false},
		{"gstin too short", IsGSTIN, "29ABCDE1234F1Z", false},
		{"pan valid", IsPAN, "ABCDE1234F", true},
		{"pan digits swapped", IsPAN, "ABCD12345F", false},
		{"phone plain", IsPhone, "9876543210", true},
		{"phone +91", IsPhone, "+919876543210", true},
		{"phone 91", IsPhone, "919876543210", true},
		{"phone starts with 5", IsPhone, "5876543210", false},
		{"phone too short", IsPhone, "987654321", false},
		{"pincode valid", IsPincode, "560001", true},
		{"pincode leading zero", IsPincode, "060001", false},
		{"pincode five digits", IsPincode, "56000", false},
		{"hsn 4", IsHSN, "8471", true},
		{"hsn 8", IsHSN, "84713010", true},
		{"hsn 3", IsHSN, "847", false},
		{"hsn 9", IsHSN, "847130101", false},
		{"hsn letters", IsHSN, "84A1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.check(tt.value))
		})
	}
}

type sample struct {
	Name  string          `json:"name" validate:"required,max=5"`
	GST   string          `json:"gst_number" validate:"omitempty,gstin"`
	Price decimal.Decimal `json:"price" validate:"gte=0"`
	Rate  decimal.Decimal `json:"rate" validate:"gte=0,lte=100"`

	normalized bool
}

func (s *sample) Normalize() { s.normalized = true }

func TestStruct_ReportsFieldsByJSONName(t *testing.T) {
	in := &sample{
		Name:  "",
		GST:   "bad",
		Price: decimal.NewFromInt(-1),
		Rate:  decimal.NewFromInt(101),
	}

	err := Struct(in)
	require.Error(t, err)
	assert.True(t, in.normalized)

	verrs, ok := err.(*Errors)
	require.True(t, ok)
	assert.Equal(t, "is required", verrs.Fields["name"])
	assert.Contains(t, verrs.Fields["gst_number"], "GST")
	assert.Contains(t, verrs.Fields, "price")
	assert.Contains(t, verrs.Fields, "rate")
}

func TestStruct_Valid(t *testing.T) {
	in := &sample{Name: "ok", Price: decimal.RequireFromString("10.50"), Rate: decimal.NewFromInt(18)}
	assert.NoError(t, Struct(in))
}
