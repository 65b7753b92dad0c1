package billing

import (
	"strings"
	"time"

	"github.com/nau/billing/internal/domain/vatin"
)

// BillingProfile holds the invoicing details a buyer supplies for a basket.
// Address lines follow the storefront's layout: Line1 is the street address,
// Line2/Line3 are optional extra lines and Line4 is the city.
type BillingProfile struct {
	BasketID    int64
	Name        string
	Line1       string
	Line2       string
	Line3       string
	Line4       string
	State       string
	PostalCode  string
	CountryCode string
	VATIN       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate checks the profile's VAT id against its country's format rules.
// An empty VATIN is always accepted; the field is optional.
func (p *BillingProfile) Validate() error {
	if p.VATIN == "" {
		return nil
	}
	if !vatin.Valid(p.CountryCode, p.VATIN) {
		return ErrInvalidVATIN
	}
	return nil
}

// CountryVATIN returns the VAT id prefixed with its country code, the form
// used on invoices.
func (p *BillingProfile) CountryVATIN() string {
	return strings.ToUpper(p.CountryCode) + p.VATIN
}

// City returns the city component of the address.
func (p *BillingProfile) City() string {
	return p.Line4
}

// AddressLine2 joins the optional extra address lines with a comma, the
// way they are presented to the billing service. Empty when both are blank.
func (p *BillingProfile) AddressLine2() string {
	parts := make([]string, 0, 2)
	for _, line := range []string{p.Line2, p.Line3} {
		if line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, ", ")
}
