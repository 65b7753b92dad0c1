package billing

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Order is the read model of a completed checkout that the sync engine
// consumes. It is owned by the storefront; the engine never mutates it.
type Order struct {
	ID                   int64
	Number               string
	BasketID             int64
	Partner              string
	OwnerName            string
	OwnerEmail           string
	Currency             string
	TotalInclTax         decimal.Decimal
	TotalDiscountInclTax decimal.Decimal
	// CardType is the card brand of the first payment source, empty when
	// the payment method carries none.
	CardType  string
	Lines     []OrderLine
	PlacedAt  time.Time
	CreatedAt time.Time
}

// OrderLine is a single purchased item. Unit prices are tax-inclusive;
// discounts are carried both tax-exclusive and tax-inclusive.
type OrderLine struct {
	ID               int64
	OrderID          int64
	Title            string
	Quantity         int
	UnitPriceInclTax decimal.Decimal
	DiscountExclTax  decimal.Decimal
	DiscountInclTax  decimal.Decimal
	ProductTitle     string
	// CourseID is the structured course identifier of the purchased run,
	// empty for products without an associated course.
	CourseID string
}

// SplitCourseID splits a structured course identifier of the form
// "course-v1:ORG+COURSE+RUN" (or the legacy "ORG/COURSE/RUN") into its
// organization and course components. ok is false when the identifier
// does not follow either form.
func SplitCourseID(id string) (org, course string, ok bool) {
	if rest, found := strings.CutPrefix(id, "course-v1:"); found {
		parts := strings.Split(rest, "+")
		if len(parts) == 3 && parts[0] != "" && parts[1] != "" {
			return parts[0], parts[1], true
		}
		return "", "", false
	}
	parts := strings.Split(id, "/")
	if len(parts) == 3 && parts[0] != "" && parts[1] != "" {
		return parts[0], parts[1], true
	}
	return "", "", false
}
