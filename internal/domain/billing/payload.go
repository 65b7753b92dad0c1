package billing

import "github.com/shopspring/decimal"

// transactionTypeCredit is the only transaction type the billing service
// accepts from this integration.
const transactionTypeCredit = "credit"

// TransactionPayload is the request document sent to the financial manager
// when an order completes. Nullable fields are pointers: a basket without a
// billing profile produces null address and VAT fields, never an error.
type TransactionPayload struct {
	TransactionID            string            `json:"transaction_id"`
	TransactionType          string            `json:"transaction_type"`
	ClientName               string            `json:"client_name"`
	Email                    string            `json:"email"`
	AddressLine1             *string           `json:"address_line_1"`
	AddressLine2             *string           `json:"address_line_2"`
	City                     *string           `json:"city"`
	PostalCode               *string           `json:"postal_code"`
	State                    *string           `json:"state"`
	CountryCode              *string           `json:"country_code"`
	VATIdentificationNumber  *string           `json:"vat_identification_number"`
	VATIdentificationCountry *string           `json:"vat_identification_country"`
	TotalAmountIncludeVAT    decimal.Decimal   `json:"total_amount_include_vat"`
	TotalDiscountInclTax     decimal.Decimal   `json:"total_discount_incl_tax"`
	Currency                 string            `json:"currency"`
	PaymentType              *string           `json:"payment_type"`
	Items                    []TransactionItem `json:"items"`
}

// TransactionItem is one order line in the financial manager's format.
type TransactionItem struct {
	Description      string          `json:"description"`
	Quantity         int             `json:"quantity"`
	UnitPriceInclVAT decimal.Decimal `json:"unit_price_incl_vat"`
	OrganizationCode *string         `json:"organization_code"`
	ProductCode      *string         `json:"product_code"`
	ProductID        string          `json:"product_id"`
	DiscountExclTax  decimal.Decimal `json:"discount_excl_tax"`
	DiscountInclTax  decimal.Decimal `json:"discount_incl_tax"`
}

// NewTransactionPayload assembles the request document for an order and its
// optional billing profile. profile may be nil; every profile-derived field
// then defaults to null while client name and email still come from the
// order owner.
func NewTransactionPayload(order *Order, profile *BillingProfile) *TransactionPayload {
	p := &TransactionPayload{
		TransactionID:         order.Number,
		TransactionType:       transactionTypeCredit,
		ClientName:            order.OwnerName,
		Email:                 order.OwnerEmail,
		TotalAmountIncludeVAT: order.TotalInclTax,
		TotalDiscountInclTax:  order.TotalDiscountInclTax,
		Currency:              order.Currency,
		PaymentType:           optional(order.CardType),
		Items:                 make([]TransactionItem, 0, len(order.Lines)),
	}

	if profile != nil {
		p.AddressLine1 = optional(profile.Line1)
		p.AddressLine2 = optional(profile.AddressLine2())
		p.City = optional(profile.City())
		p.PostalCode = optional(profile.PostalCode)
		p.State = optional(profile.State)
		p.CountryCode = optional(profile.CountryCode)
		p.VATIdentificationNumber = optional(profile.VATIN)
		p.VATIdentificationCountry = optional(profile.CountryCode)
	}

	for _, line := range order.Lines {
		p.Items = append(p.Items, newTransactionItem(line))
	}
	return p
}

func newTransactionItem(line OrderLine) TransactionItem {
	item := TransactionItem{
		Description:      line.Title,
		Quantity:         line.Quantity,
		UnitPriceInclVAT: line.UnitPriceInclTax,
		ProductID:        line.ProductTitle,
		DiscountExclTax:  line.DiscountExclTax,
		DiscountInclTax:  line.DiscountInclTax,
	}
	if line.CourseID != "" {
		item.ProductID = line.CourseID
		if org, course, ok := SplitCourseID(line.CourseID); ok {
			item.OrganizationCode = &org
			item.ProductCode = &course
		}
	}
	return item
}

// optional maps the empty string to a JSON null.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
