package webhook

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/toylink/donations/internal/app/service/payment"
)

func TestParse(t *testing.T) {
	cases := []struct {
		name      string
		body      string
		supported bool
		id        string
		ignored   string
		err       string
	}{
		{name: "topic shape", body: `{"resource":"125381511429","topic":"payment"}`, supported: true, id: "125381511429"},
		{name: "topic numeric resource", body: `{"resource":125381511429,"topic":"payment"}`, supported: true, id: "125381511429"},
		{name: "action shape", body: `{"action":"payment.updated","data":{"id":"123"}}`, supported: true, id: "123"},
		{name: "action numeric id", body: `{"action":"payment.updated","data":{"id":123}}`, supported: true, id: "123"},
		{name: "other topic", body: `{"topic":"shipping","resource":"1"}`, ignored: "topic not supported"},
		{name: "merchant order", body: `{"topic":"merchant_order","resource":"https://api.mercadolibre.com/merchant_orders/1"}`, ignored: "topic not supported"},
		{name: "other action", body: `{"action":"payment.created","data":{"id":"1"}}`, ignored: "action not supported"},
		{name: "empty resource", body: `{"topic":"payment","resource":""}`, err: "no payment id"},
		{name: "null resource", body: `{"topic":"payment","resource":null}`, err: "no payment id"},
		{name: "missing data id", body: `{"action":"payment.updated","data":{}}`, err: "no payment id"},
		{name: "data not object", body: `{"action":"payment.updated","data":"1"}`, err: "no payment id"},
		{name: "only topic", body: `{"topic":"payment"}`, err: "invalid webhook format"},
		{name: "unknown shape", body: `{"type":"payment","id":"1"}`, err: "invalid webhook format"},
		{name: "not json", body: `not json`, err: "invalid JSON"},
		{name: "array", body: `[1,2]`, err: "invalid JSON"},
		{name: "null", body: `null`, err: "invalid JSON"},
		{name: "empty", body: ``, err: "invalid JSON"},
		{name: "trailing garbage", body: `{"topic":"payment","resource":"1"} trailing-garbage`, err: "invalid JSON"},
		{name: "two objects", body: `{"topic":"payment","resource":"1"}{"topic":"payment","resource":"2"}`, err: "invalid JSON"},
		{name: "trailing newline", body: "{\"topic\":\"payment\",\"resource\":\"7\"}\n", supported: true, id: "7"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			n, err := Parse([]byte(tc.body))
			if tc.err != "" {
				require.EqualError(t, err, tc.err)
				require.True(t, errors.Is(err, payment.ErrMalformedInput))
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.supported, n.Supported)
			require.Equal(t, tc.id, n.ProviderPaymentID)
			require.Equal(t, tc.ignored, n.Ignored)
		})
	}
}
