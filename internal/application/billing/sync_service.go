package billing

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/nau/billing/internal/domain/billing"
)

// DefaultRetryMinAge is how long a record must have existed before the
// retry sweep picks it up, leaving room for the checkout hook's own send.
const DefaultRetryMinAge = 5 * time.Minute

// SyncService forwards completed-order billing data to the financial
// manager and tracks the outcome per basket. Safe to invoke repeatedly on
// the same record: creation is get-or-create and a duplicate submission is
// reclassified as success by the state machine.
type SyncService struct {
	records  billing.TransactionRepository
	orders   billing.OrderRepository
	profiles billing.BillingProfileRepository
	manager  billing.FinancialManager
	log      *zap.Logger
}

// NewSyncService creates a new SyncService.
func NewSyncService(
	records billing.TransactionRepository,
	orders billing.OrderRepository,
	profiles billing.BillingProfileRepository,
	manager billing.FinancialManager,
	log *zap.Logger,
) *SyncService {
	return &SyncService{
		records:  records,
		orders:   orders,
		profiles: profiles,
		manager:  manager,
		log:      log,
	}
}

// CreateForBasket returns the transaction record for a basket, creating it
// in the initial state when absent. Requires a completed order for the
// basket; returns billing.ErrOrderNotFound otherwise.
func (s *SyncService) CreateForBasket(ctx context.Context, basketID int64) (*billing.TransactionRecord, error) {
	if _, err := s.orders.FindByBasket(ctx, basketID); err != nil {
		return nil, err
	}
	return s.records.GetOrCreate(ctx, basketID)
}

// BuildRequest assembles the request payload from the basket's order,
// owner and optional billing profile, and persists it onto the record
// before any send so a partial failure still leaves a record of intent.
func (s *SyncService) BuildRequest(ctx context.Context, record *billing.TransactionRecord) (*billing.TransactionPayload, error) {
	if record.BasketID == nil {
		return nil, billing.ErrOrderNotFound
	}
	order, err := s.orders.FindByBasket(ctx, *record.BasketID)
	if err != nil {
		return nil, err
	}

	profile, err := s.profiles.FindByBasket(ctx, *record.BasketID)
	if err != nil && !errors.Is(err, billing.ErrProfileNotFound) {
		return nil, err
	}

	payload := billing.NewTransactionPayload(order, profile)
	record.Request = payload
	if err := s.records.Save(ctx, record); err != nil {
		return nil, err
	}
	return payload, nil
}

// Send submits the record's billing data to the financial manager and
// persists the resulting state together with the response document.
//
// Returns attempted=false without touching the record when the order's
// partner has no integration configured. Configuration errors (a partner
// entry with missing keys) escape to the caller; transport failures and
// unparseable responses are logged, recorded as SENT_WITH_ERROR and never
// propagated, so a failing integration cannot break checkout.
func (s *SyncService) Send(ctx context.Context, record *billing.TransactionRecord) (attempted bool, err error) {
	if record.BasketID == nil {
		return false, billing.ErrOrderNotFound
	}
	order, err := s.orders.FindByBasket(ctx, *record.BasketID)
	if err != nil {
		return false, err
	}

	if !s.manager.Enabled(order.Partner) {
		s.log.Info("financial manager integration not configured, skipping send",
			zap.String("partner", order.Partner),
			zap.Int64("basket_id", *record.BasketID))
		return false, nil
	}

	payload, err := s.BuildRequest(ctx, record)
	if err != nil {
		return false, err
	}

	result, err := s.manager.SendTransaction(ctx, order.Partner, payload)
	if err != nil {
		if errors.Is(err, billing.ErrMissingSetting) {
			return false, err
		}
		s.log.Error("financial manager send failed",
			zap.Error(err),
			zap.String("partner", order.Partner),
			zap.String("transaction_id", payload.TransactionID))
		record.MarkSendFailed()
		if saveErr := s.records.Save(ctx, record); saveErr != nil {
			return true, saveErr
		}
		return true, nil
	}

	if parsed := record.ApplyOutcome(result.StatusCode, result.Body); !parsed && len(result.Body) > 0 {
		s.log.Error("cannot parse financial manager response as json",
			zap.Int("status", result.StatusCode),
			zap.String("transaction_id", payload.TransactionID))
	}
	if err := s.records.Save(ctx, record); err != nil {
		return true, err
	}
	return true, nil
}

// CompleteCheckout is the post-checkout hook: it creates the basket's
// transaction record and immediately attempts the send.
func (s *SyncService) CompleteCheckout(ctx context.Context, basketID int64) (*billing.TransactionRecord, error) {
	record, err := s.CreateForBasket(ctx, basketID)
	if err != nil {
		return nil, err
	}
	if _, err := s.Send(ctx, record); err != nil {
		return record, err
	}
	return record, nil
}

// ReceiptLink fetches the receipt link for an order. Returns "" when the
// integration is disabled, the receipt does not exist, or the lookup hits
// a transport error (logged, not propagated). Configuration errors escape.
func (s *SyncService) ReceiptLink(ctx context.Context, orderNumber string) (string, error) {
	order, err := s.orders.FindByNumber(ctx, orderNumber)
	if err != nil {
		return "", err
	}
	if !s.manager.Enabled(order.Partner) {
		return "", nil
	}
	link, err := s.manager.ReceiptLink(ctx, order.Partner, order.Number)
	if err != nil {
		if errors.Is(err, billing.ErrMissingSetting) {
			return "", err
		}
		s.log.Error("receipt link lookup failed",
			zap.Error(err),
			zap.String("order_number", orderNumber))
		return "", nil
	}
	return link, nil
}

// RetryOptions selects which records a retry sweep processes.
type RetryOptions struct {
	// BasketID limits the sweep to one basket, regardless of age or state.
	BasketID *int64
	// MinAge excludes records younger than this; zero selects everything
	// currently retryable.
	MinAge time.Duration
}

// RetryReport aggregates the outcome of one retry sweep.
type RetryReport struct {
	Total     int
	Attempted int
	Succeeded int
}

// AllSucceeded reports whether every selected record ended in success.
func (r *RetryReport) AllSucceeded() bool {
	return r.Succeeded == r.Total
}

// Retry re-invokes Send for records still pending or previously failed.
// Records already sent with success are never selected by the sweep; an
// explicitly named basket is processed regardless of age.
func (s *SyncService) Retry(ctx context.Context, opts RetryOptions) (*RetryReport, error) {
	var records []*billing.TransactionRecord
	if opts.BasketID != nil {
		record, err := s.records.FindByBasket(ctx, *opts.BasketID)
		if err != nil {
			return nil, err
		}
		records = []*billing.TransactionRecord{record}
	} else {
		var err error
		records, err = s.records.FindRetryable(ctx, time.Now().Add(-opts.MinAge))
		if err != nil {
			return nil, err
		}
	}

	report := &RetryReport{Total: len(records)}
	for _, record := range records {
		var basketID int64
		if record.BasketID != nil {
			basketID = *record.BasketID
		}
		s.log.Info("retrying send to financial manager",
			zap.Int64("basket_id", basketID),
			zap.String("state", record.State.String()))

		attempted, err := s.Send(ctx, record)
		if err != nil {
			if errors.Is(err, billing.ErrMissingSetting) {
				return report, err
			}
			// One broken record must not starve the rest of the sweep.
			s.log.Error("retry skipped record",
				zap.Error(err),
				zap.Int64("basket_id", basketID))
			continue
		}
		if attempted {
			report.Attempted++
		}
		if record.IsSentWithSuccess() {
			report.Succeeded++
		} else {
			s.log.Error("retry send failed", zap.Int64("basket_id", basketID))
		}
	}
	return report, nil
}
