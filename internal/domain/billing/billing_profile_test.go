package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBillingProfileValidate(t *testing.T) {
	tests := []struct {
		name    string
		country string
		vatin   string
		wantErr error
	}{
		{"empty vatin is optional", "PT", "", nil},
		{"valid portuguese nif", "PT", "600021505", nil},
		{"invalid portuguese nif", "PT", "600021506", ErrInvalidVATIN},
		{"valid german number", "DE", "123456789", nil},
		{"wrong length for germany", "DE", "1234", ErrInvalidVATIN},
		{"unsupported country accepts anything", "US", "whatever", nil},
		{"lowercase country code", "pt", "600021505", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := &BillingProfile{
				BasketID:    1,
				CountryCode: tt.country,
				VATIN:       tt.vatin,
			}
			assert.ErrorIs(t, profile.Validate(), tt.wantErr)
		})
	}
}

func TestBillingProfileCountryVATIN(t *testing.T) {
	profile := &BillingProfile{CountryCode: "pt", VATIN: "600021505"}
	assert.Equal(t, "PT600021505", profile.CountryVATIN())
}

func TestBillingProfileAddressLine2(t *testing.T) {
	tests := []struct {
		name  string
		line2 string
		line3 string
		want  string
	}{
		{"both lines", "Floor 2", "Door B", "Floor 2, Door B"},
		{"only line2", "Floor 2", "", "Floor 2"},
		{"only line3", "", "Door B", "Door B"},
		{"neither", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := &BillingProfile{Line2: tt.line2, Line3: tt.line3}
			assert.Equal(t, tt.want, profile.AddressLine2())
		})
	}
}
