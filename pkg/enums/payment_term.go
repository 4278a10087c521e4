package enums

import "fmt"

// PaymentTerm captures how the buyer agreed to settle an order.
type PaymentTerm string

const (
	PaymentTermPayNow     PaymentTerm = "pay_now"
	PaymentTermNet30      PaymentTerm = "net30"
	PaymentTermOnDelivery PaymentTerm = "on_delivery"
)

var validPaymentTerms = []PaymentTerm{
	PaymentTermPayNow,
	PaymentTermNet30,
	PaymentTermOnDelivery,
}

// String implements fmt.Stringer.
func (p PaymentTerm) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentTerm.
func (p PaymentTerm) IsValid() bool {
	for _, candidate := range validPaymentTerms {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentTerm converts raw input into a PaymentTerm.
func ParsePaymentTerm(value string) (PaymentTerm, error) {
	for _, candidate := range validPaymentTerms {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment term %q", value)
}
