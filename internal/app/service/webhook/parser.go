package webhook

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/toylink/donations/internal/app/service/payment"
)

const (
	TopicPayment         = "payment"
	ActionPaymentUpdated = "payment.updated"
)

// Notification is a parsed provider delivery. Supported is false for topics and
// actions that are acknowledged but not processed.
type Notification struct {
	Topic             string
	Supported         bool
	ProviderPaymentID string
	// Ignored holds the acknowledgement body for unsupported notifications.
	Ignored string
}

type parseError struct {
	msg string
}

func (e *parseError) Error() string { return e.msg }
func (e *parseError) Unwrap() error { return payment.ErrMalformedInput }

func malformed(msg string) error { return &parseError{msg: msg} }

// Parse accepts the two delivery shapes:
//
//	{"topic":"payment","resource":"125381511429"}
//	{"action":"payment.updated","data":{"id":"125381511429"}}
func Parse(body []byte) (*Notification, error) {
	var obj map[string]json.RawMessage
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&obj); err != nil || obj == nil {
		return nil, malformed("invalid JSON")
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, malformed("invalid JSON")
	}

	topicRaw, hasTopic := obj["topic"]
	resourceRaw, hasResource := obj["resource"]
	actionRaw, hasAction := obj["action"]
	dataRaw, hasData := obj["data"]

	switch {
	case hasTopic && hasResource:
		topic := rawString(topicRaw)
		if topic != TopicPayment {
			return &Notification{Topic: topic, Ignored: "topic not supported"}, nil
		}
		id := rawID(resourceRaw)
		if id == "" {
			return nil, malformed("no payment id")
		}
		return &Notification{Topic: topic, Supported: true, ProviderPaymentID: id}, nil
	case hasAction && hasData:
		action := rawString(actionRaw)
		if action != ActionPaymentUpdated {
			return &Notification{Topic: action, Ignored: "action not supported"}, nil
		}
		var data map[string]json.RawMessage
		d := json.NewDecoder(bytes.NewReader(dataRaw))
		d.UseNumber()
		if err := d.Decode(&data); err != nil {
			return nil, malformed("no payment id")
		}
		id := rawID(data["id"])
		if id == "" {
			return nil, malformed("no payment id")
		}
		return &Notification{Topic: action, Supported: true, ProviderPaymentID: id}, nil
	default:
		return nil, malformed("invalid webhook format")
	}
}

func rawString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// rawID normalises a payment id sent as a JSON string or number.
func rawID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var v any
	d := json.NewDecoder(bytes.NewReader(raw))
	d.UseNumber()
	if err := d.Decode(&v); err != nil {
		return ""
	}
	switch id := v.(type) {
	case string:
		return strings.TrimSpace(id)
	case json.Number:
		if i, err := id.Int64(); err == nil {
			return fmt.Sprintf("%d", i)
		}
		return id.String()
	default:
		return ""
	}
}
