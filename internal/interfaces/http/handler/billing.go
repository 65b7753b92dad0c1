package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	billingapp "github.com/nau/billing/internal/application/billing"
	"github.com/nau/billing/internal/domain/billing"
	"github.com/nau/billing/internal/domain/vatin"
	"github.com/nau/billing/internal/interfaces/http/dto"
)

// BillingHandler handles billing profile and transaction sync API endpoints
type BillingHandler struct {
	BaseHandler
	syncService    *billingapp.SyncService
	profiles       billing.BillingProfileRepository
	records        billing.TransactionRepository
	defaultCountry string
}

// NewBillingHandler creates a new BillingHandler. defaultCountry is the
// country code billing forms prepopulate.
func NewBillingHandler(
	syncService *billingapp.SyncService,
	profiles billing.BillingProfileRepository,
	records billing.TransactionRepository,
	defaultCountry string,
) *BillingHandler {
	return &BillingHandler{
		syncService:    syncService,
		profiles:       profiles,
		records:        records,
		defaultCountry: defaultCountry,
	}
}

// RegisterRoutes registers billing routes on the given group
func (h *BillingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	baskets := rg.Group("/baskets")
	{
		baskets.GET("/:id/billing-profile", h.GetBillingProfile)
		baskets.PUT("/:id/billing-profile", h.PutBillingProfile)
		baskets.POST("/:id/checkout-complete", h.CheckoutComplete)
		baskets.GET("/:id/transaction", h.GetTransaction)
	}
	rg.GET("/orders/:number/receipt-link", h.GetReceiptLink)
	rg.GET("/billing/defaults", h.GetDefaults)
}

// BillingDefaultsResponse carries form-prepopulation defaults
type BillingDefaultsResponse struct {
	CountryCode        string   `json:"country_code"`
	SupportedCountries []string `json:"supported_countries"`
}

// GetDefaults returns the defaults billing forms prepopulate
func (h *BillingHandler) GetDefaults(c *gin.Context) {
	h.Success(c, BillingDefaultsResponse{
		CountryCode:        h.defaultCountry,
		SupportedCountries: vatin.Countries(),
	})
}

// BillingProfileRequest represents a request to create or replace the
// billing profile attached to a basket
type BillingProfileRequest struct {
	Name        string `json:"name" binding:"max=255"`
	Line1       string `json:"line1" binding:"max=255"`
	Line2       string `json:"line2" binding:"max=255"`
	Line3       string `json:"line3" binding:"max=255"`
	Line4       string `json:"line4" binding:"max=255"`
	State       string `json:"state" binding:"max=255"`
	PostalCode  string `json:"postal_code" binding:"max=64"`
	CountryCode string `json:"country_code" binding:"required,len=2"`
	VATIN       string `json:"vatin" binding:"max=255"`
}

// BillingProfileResponse represents a billing profile in API responses
type BillingProfileResponse struct {
	BasketID    int64  `json:"basket_id"`
	Name        string `json:"name"`
	Line1       string `json:"line1"`
	Line2       string `json:"line2"`
	Line3       string `json:"line3"`
	Line4       string `json:"line4"`
	State       string `json:"state"`
	PostalCode  string `json:"postal_code"`
	CountryCode string `json:"country_code"`
	VATIN       string `json:"vatin"`
}

func newBillingProfileResponse(profile *billing.BillingProfile) BillingProfileResponse {
	return BillingProfileResponse{
		BasketID:    profile.BasketID,
		Name:        profile.Name,
		Line1:       profile.Line1,
		Line2:       profile.Line2,
		Line3:       profile.Line3,
		Line4:       profile.Line4,
		State:       profile.State,
		PostalCode:  profile.PostalCode,
		CountryCode: profile.CountryCode,
		VATIN:       profile.VATIN,
	}
}

// TransactionResponse represents the sync state of a basket's transaction
type TransactionResponse struct {
	ID       string `json:"id"`
	BasketID *int64 `json:"basket_id"`
	State    string `json:"state"`
}

func newTransactionResponse(record *billing.TransactionRecord) TransactionResponse {
	return TransactionResponse{
		ID:       record.ID.String(),
		BasketID: record.BasketID,
		State:    record.State.String(),
	}
}

func basketID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// GetBillingProfile returns the billing profile attached to a basket
func (h *BillingHandler) GetBillingProfile(c *gin.Context) {
	id, ok := basketID(c)
	if !ok {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeValidation, "invalid basket id")
		return
	}

	profile, err := h.profiles.FindByBasket(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, billing.ErrProfileNotFound) {
			h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, "billing profile not found")
			return
		}
		h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, "failed to load billing profile")
		return
	}
	h.Success(c, newBillingProfileResponse(profile))
}

// PutBillingProfile creates or replaces the billing profile for a basket.
// The VAT id is validated against the country's format before saving.
func (h *BillingHandler) PutBillingProfile(c *gin.Context) {
	id, ok := basketID(c)
	if !ok {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeValidation, "invalid basket id")
		return
	}

	var req BillingProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeValidation, err.Error())
		return
	}

	profile := &billing.BillingProfile{
		BasketID:    id,
		Name:        req.Name,
		Line1:       req.Line1,
		Line2:       req.Line2,
		Line3:       req.Line3,
		Line4:       req.Line4,
		State:       req.State,
		PostalCode:  req.PostalCode,
		CountryCode: req.CountryCode,
		VATIN:       req.VATIN,
	}
	if err := profile.Validate(); err != nil {
		h.FieldError(c, "invalid billing profile", map[string][]string{
			"vatin": {"The VAT Identification Number isn't valid for the selected country."},
		})
		return
	}

	if err := h.profiles.Save(c.Request.Context(), profile); err != nil {
		h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, "failed to save billing profile")
		return
	}
	h.Success(c, newBillingProfileResponse(profile))
}

// CheckoutComplete creates the basket's transaction record and attempts an
// immediate synchronous send to the partner's financial manager. Send
// failures do not fail the request; the record keeps an error state and the
// retry command picks it up later.
func (h *BillingHandler) CheckoutComplete(c *gin.Context) {
	id, ok := basketID(c)
	if !ok {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeValidation, "invalid basket id")
		return
	}

	record, err := h.syncService.CompleteCheckout(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, billing.ErrOrderNotFound) {
			h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, "no order for basket")
			return
		}
		if errors.Is(err, billing.ErrMissingSetting) {
			h.ErrorWithCode(c, dto.ErrCodeNotConfigured, err.Error())
			return
		}
		// Send failures must never break checkout. The record keeps its
		// state and the retry sweep picks it up later.
		if record != nil {
			h.Success(c, newTransactionResponse(record))
			return
		}
		h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, "checkout completion failed")
		return
	}
	h.Created(c, newTransactionResponse(record))
}

// GetTransaction returns the sync state of the basket's transaction record
func (h *BillingHandler) GetTransaction(c *gin.Context) {
	id, ok := basketID(c)
	if !ok {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeValidation, "invalid basket id")
		return
	}

	record, err := h.records.FindByBasket(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, billing.ErrRecordNotFound) {
			h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, "transaction record not found")
			return
		}
		h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, "failed to load transaction record")
		return
	}
	h.Success(c, newTransactionResponse(record))
}

// ReceiptLinkResponse carries the receipt URL for an order. The link is
// empty when the financial manager has no receipt yet or cannot be reached;
// callers fall back to their own receipt page.
type ReceiptLinkResponse struct {
	OrderNumber string `json:"order_number"`
	ReceiptLink string `json:"receipt_link"`
}

// GetReceiptLink returns the financial manager's receipt URL for an order
func (h *BillingHandler) GetReceiptLink(c *gin.Context) {
	number := c.Param("number")

	link, err := h.syncService.ReceiptLink(c.Request.Context(), number)
	if err != nil {
		if errors.Is(err, billing.ErrOrderNotFound) {
			h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, "order not found")
			return
		}
		if errors.Is(err, billing.ErrMissingSetting) {
			h.ErrorWithCode(c, dto.ErrCodeNotConfigured, err.Error())
			return
		}
		h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, "failed to fetch receipt link")
		return
	}
	h.Success(c, ReceiptLinkResponse{OrderNumber: number, ReceiptLink: link})
}
