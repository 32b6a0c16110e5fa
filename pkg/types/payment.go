package types

type PaymentProvider string

const (
	PaymentProviderMercadoPago PaymentProvider = "mercadopago"
)

// PaymentStatus is the local payment lifecycle state.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusApproved  PaymentStatus = "approved"
	PaymentStatusRejected  PaymentStatus = "rejected"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

var PaymentStatuses = []PaymentStatus{
	PaymentStatusPending,
	PaymentStatusApproved,
	PaymentStatusRejected,
	PaymentStatusCancelled,
}

func (s PaymentStatus) Valid() bool {
	for _, v := range PaymentStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// DonationCategory tags what a donation is meant for. Informational only.
type DonationCategory string

const (
	DonationCategoryToys DonationCategory = "toys"
	DonationCategoryFood DonationCategory = "food"
)

var donationCategoryLabels = map[DonationCategory]string{
	DonationCategoryToys: "Brinquedos",
	DonationCategoryFood: "Alimentação",
}

// GenericCategoryLabel is used when a donation has no known category.
const GenericCategoryLabel = "Geral"

// ParseDonationCategory returns nil for empty or unknown values.
func ParseDonationCategory(s string) *DonationCategory {
	c := DonationCategory(s)
	if _, ok := donationCategoryLabels[c]; !ok {
		return nil
	}
	return &c
}

// Label returns the human readable label, falling back to the generic one.
func (c *DonationCategory) Label() string {
	if c == nil {
		return GenericCategoryLabel
	}
	if l, ok := donationCategoryLabels[*c]; ok {
		return l
	}
	return GenericCategoryLabel
}
