package reconcile

import "github.com/toylink/donations/pkg/types"

// StatusTable maps provider payment statuses to local ones.
type StatusTable struct {
	Version  string
	Entries  map[string]types.PaymentStatus
	Fallback types.PaymentStatus
}

// StatusTableV1 is the Mercado Pago status vocabulary in use since launch.
var StatusTableV1 = StatusTable{
	Version: "v1",
	Entries: map[string]types.PaymentStatus{
		"approved":     types.PaymentStatusApproved,
		"pending":      types.PaymentStatusPending,
		"in_process":   types.PaymentStatusPending,
		"rejected":     types.PaymentStatusRejected,
		"cancelled":    types.PaymentStatusCancelled,
		"refunded":     types.PaymentStatusCancelled,
		"charged_back": types.PaymentStatusCancelled,
	},
	Fallback: types.PaymentStatusPending,
}

// Map translates a provider status. Unknown values map to the fallback.
func (t StatusTable) Map(providerStatus string) types.PaymentStatus {
	if s, ok := t.Entries[providerStatus]; ok {
		return s
	}
	return t.Fallback
}
