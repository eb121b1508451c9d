package models

// TransactionRecord is one merchant payment transaction as known to the
// client. ReferenceNo is the business key: the working set never holds two
// records with the same reference number. Both reference-number spellings
// are kept populated so either lookup path succeeds downstream.
type TransactionRecord struct {
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
	CustomerName       string  `json:"customer_name"`
	Description        string  `json:"description"`
	UpdatedAt          string  `json:"updated_at"`

	// SequenceNo is assigned by the client for display and recomputed
	// whenever the working set changes. Never taken from the wire.
	SequenceNo int `json:"sequence_no"`
}

// Reference returns the canonical reference number, falling back through the
// alias spelling and the transport id the way the wire sometimes requires.
func (t *TransactionRecord) Reference() string {
	switch {
	case t.ReferenceNo != "":
		return t.ReferenceNo
	case t.ReferenceNoAlias != "":
		return t.ReferenceNoAlias
	default:
		return t.TrxID
	}
}

// Normalize fills both reference-number spellings from whichever one the
// wire carried and lowercases the status.
func (t *TransactionRecord) Normalize() {
	ref := t.Reference()
	t.ReferenceNo = ref
	t.ReferenceNoAlias = ref
	t.Status = NormalizeStatus(t.Status)
}

// Pagination mirrors the pagination block of the transactions API envelope.
type Pagination struct {
	Page      int `json:"page"`
	Limit     int `json:"limit"`
	Total     int `json:"total"`
	TotalPage int `json:"totalPage"`
}

// TransactionsResponse is the envelope returned by the transactions endpoint.
type TransactionsResponse struct {
	ResponseCode    string              `json:"responseCode"`
	ResponseMessage string              `json:"responseMessage"`
	Data            []TransactionRecord `json:"data"`
	Pagination      *Pagination         `json:"pagination"`
}

// TransactionQuery holds the search parameters round-tripped to the
// transactions endpoint.
type TransactionQuery struct {
	ReferenceNumber string
	Status          string
	StartDate       string
	EndDate         string
	Search          string
	Page            int
	Limit           int
}
