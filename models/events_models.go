package models

import (
	// Go Internal Packages
	"encoding/json"
	"time"
)

// EventTransactionUpdate is the one recognized real-time event type.
const EventTransactionUpdate = "TRANSACTION_UPDATE"

// InboundEvent is one parsed real-time frame. Transient: it triggers a
// single merge into the working set and is not retained afterwards.
type InboundEvent struct {
	Type               string  `json:"type"`
	TrxID              string  `json:"trx_id"`
	MerchantID         string  `json:"merchant_id"`
	ReferenceNo        string  `json:"reference_no"`
	ReferenceNoAlias   string  `json:"referenceNo"`
	PartnerReferenceNo string  `json:"partner_reference_no"`
	Status             string  `json:"status"`
	Amount             float64 `json:"amount"`
	Currency           string  `json:"currency"`
	TransactionDate    string  `json:"transaction_date"`
	PaidDate           *string `json:"paid_date"`
	UpdatedAt          string  `json:"updated_at"`
	Timestamp          int64   `json:"timestamp"`

	ReceivedAt time.Time `json:"-"`
}

// Reference returns the reference number regardless of which of the two
// wire spellings carried it. Empty when the event has none.
func (e *InboundEvent) Reference() string {
	if e.ReferenceNo != "" {
		return e.ReferenceNo
	}
	return e.ReferenceNoAlias
}

// ParseInboundEvent decodes one text frame into an InboundEvent, stamping
// the receive time. A decode failure leaves nothing half-built.
func ParseInboundEvent(frame []byte, now time.Time) (InboundEvent, error) {
	var ev InboundEvent
	if err := json.Unmarshal(frame, &ev); err != nil {
		return InboundEvent{}, err
	}
	ev.ReceivedAt = now
	return ev, nil
}

// Record builds a TransactionRecord from the event payload. Fields the
// event does not carry (customer name, description) default to empty
// strings; both reference-number spellings are populated.
func (e *InboundEvent) Record() TransactionRecord {
	ref := e.Reference()
	return TransactionRecord{
		TrxID:              e.TrxID,
		MerchantID:         e.MerchantID,
		ReferenceNo:        ref,
		ReferenceNoAlias:   ref,
		PartnerReferenceNo: e.PartnerReferenceNo,
		Status:             NormalizeStatus(e.Status),
		Amount:             e.Amount,
		Currency:           e.Currency,
		TransactionDate:    e.TransactionDate,
		PaidDate:           e.PaidDate,
		CustomerName:       "",
		Description:        "",
		UpdatedAt:          e.UpdatedAt,
	}
}
