package billing

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// TransactionState tracks whether an order's billing data has reached the
// financial manager.
type TransactionState string

const (
	// TransactionStateToBeSent is the initial state: the record exists but
	// no send attempt has completed yet.
	TransactionStateToBeSent TransactionState = "TO_BE_SENT"
	// TransactionStateSentWithSuccess indicates the financial manager has
	// accepted the transaction (directly or as a known duplicate).
	TransactionStateSentWithSuccess TransactionState = "SENT_WITH_SUCCESS"
	// TransactionStateSentWithError indicates the last attempt failed and
	// the record is eligible for retry.
	TransactionStateSentWithError TransactionState = "SENT_WITH_ERROR"
)

// IsValid checks if the state is a known TransactionState.
func (s TransactionState) IsValid() bool {
	switch s {
	case TransactionStateToBeSent, TransactionStateSentWithSuccess, TransactionStateSentWithError:
		return true
	}
	return false
}

// String returns the string representation of TransactionState.
func (s TransactionState) String() string {
	return string(s)
}

// IsRetryable reports whether a record in this state is picked up by the
// retry sweep.
func (s TransactionState) IsRetryable() bool {
	return s == TransactionStateToBeSent || s == TransactionStateSentWithError
}

// duplicateTransactionMessage is the exact field error the financial
// manager returns when a transaction id was already registered. A 400
// carrying it means the data is already there, so it counts as delivered.
const duplicateTransactionMessage = "transaction with this transaction id already exists."

// TransactionRecord tracks the one send attempt lifecycle per basket.
// BasketID is nullable so the record survives basket deletion, orphaned.
type TransactionRecord struct {
	ID        uuid.UUID
	BasketID  *int64
	State     TransactionState
	Request   *TransactionPayload
	Response  json.RawMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewTransactionRecord creates a record in the initial state with empty
// request and response.
func NewTransactionRecord(basketID int64) *TransactionRecord {
	return &TransactionRecord{
		ID:       uuid.New(),
		BasketID: &basketID,
		State:    TransactionStateToBeSent,
	}
}

// IsSentWithSuccess reports whether the record reached the success state.
func (r *TransactionRecord) IsSentWithSuccess() bool {
	return r.State == TransactionStateSentWithSuccess
}

// ApplyOutcome transitions the record according to the financial manager's
// HTTP response and stores the response document alongside the new state:
//   - 201 Created: accepted.
//   - 400 whose transaction_id field error says the id already exists:
//     already delivered, also success.
//   - anything else: error, retryable.
//
// A body that is not valid JSON is not stored; the state still transitions
// to error. Returns false in that case so the caller can log the parse
// failure.
func (r *TransactionRecord) ApplyOutcome(statusCode int, body []byte) (parsed bool) {
	parsed = len(body) > 0 && json.Valid(body)
	if parsed {
		r.Response = json.RawMessage(body)
	} else {
		r.Response = nil
	}

	switch {
	case statusCode == http.StatusCreated:
		r.State = TransactionStateSentWithSuccess
	case statusCode == http.StatusBadRequest && isDuplicateTransaction(body):
		r.State = TransactionStateSentWithSuccess
	default:
		r.State = TransactionStateSentWithError
	}
	return parsed
}

// MarkSendFailed records a send attempt that produced no HTTP response at
// all (transport error). The record stays retryable.
func (r *TransactionRecord) MarkSendFailed() {
	r.State = TransactionStateSentWithError
	r.Response = nil
}

// isDuplicateTransaction checks a 400 body for the duplicate-id field error.
func isDuplicateTransaction(body []byte) bool {
	var fieldErrors map[string][]string
	if err := json.Unmarshal(body, &fieldErrors); err != nil {
		return false
	}
	messages := fieldErrors["transaction_id"]
	return len(messages) > 0 && messages[0] == duplicateTransactionMessage
}
