package valueobjects

import "fmt"

type PaymentMethod string

const (
	PaymentMethodCreditCard   PaymentMethod = "credit_card"
	PaymentMethodBit          PaymentMethod = "bit"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodPayPal       PaymentMethod = "paypal"
)

func NewPaymentMethod(method string) (PaymentMethod, error) {
	pm := PaymentMethod(method)
	if !pm.IsValid() {
		return "", fmt.Errorf("invalid payment method: %s", method)
	}
	return pm, nil
}

func (pm PaymentMethod) IsValid() bool {
	switch pm {
	case PaymentMethodCreditCard, PaymentMethodBit, PaymentMethodBankTransfer,
		PaymentMethodCash, PaymentMethodPayPal:
		return true
	}
	return false
}

// IsOffline reports methods staff record by hand rather than through a gateway.
func (pm PaymentMethod) IsOffline() bool {
	return pm == PaymentMethodCash || pm == PaymentMethodBankTransfer
}

func (pm PaymentMethod) String() string {
	return string(pm)
}
