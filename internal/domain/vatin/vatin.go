// Package vatin validates VAT identification numbers (VATINs) against
// per-country structural rules.
//
// Reference: https://en.wikipedia.org/wiki/VAT_identification_number
package vatin

import (
	"regexp"
	"sort"
	"strings"
)

// validator decides whether an identifier is structurally valid for one
// country. pattern is mandatory; checksum, when set, overrides the pattern
// result entirely (the Portuguese NIF algorithm subsumes the PT pattern).
type validator struct {
	pattern  *regexp.Regexp
	checksum func(id string) bool
}

func (v validator) valid(id string) bool {
	if v.checksum != nil {
		return v.checksum(id)
	}
	return v.pattern.MatchString(id)
}

// countryRules maps ISO 3166-1 alpha-2 country codes to their VATIN rules.
// Patterns are anchored and matched against the bare identifier, without
// the country prefix. Built once at init; read-only afterwards.
var countryRules = map[string]validator{
	"AT": {pattern: regexp.MustCompile(`^U[0-9]{8}$`)},
	"BE": {pattern: regexp.MustCompile(`^0[0-9]{9}$`)},
	"BG": {pattern: regexp.MustCompile(`^[0-9]{9,10}$`)},
	"CY": {pattern: regexp.MustCompile(`^[0-9]{8}L$`)},
	"CZ": {pattern: regexp.MustCompile(`^[0-9]{8,10}$`)},
	"DE": {pattern: regexp.MustCompile(`^[0-9]{9}$`)},
	"DK": {pattern: regexp.MustCompile(`^[0-9]{8}$`)},
	"EE": {pattern: regexp.MustCompile(`^[0-9]{9}$`)},
	"EL": {pattern: regexp.MustCompile(`^[0-9]{9}$`)},
	"GR": {pattern: regexp.MustCompile(`^[0-9]{9}$`)},
	"ES": {pattern: regexp.MustCompile(`^[0-9A-Z][0-9]{7}[0-9A-Z]$`)},
	"FI": {pattern: regexp.MustCompile(`^[0-9]{8}$`)},
	"FR": {pattern: regexp.MustCompile(`^[0-9A-Z]{2}[0-9]{9}$`)},
	"GB": {pattern: regexp.MustCompile(`^(?:[0-9]{9}(?:[0-9]{3})?|[A-Z]{2}[0-9]{3})$`)},
	"HU": {pattern: regexp.MustCompile(`^[0-9]{8}$`)},
	"IE": {pattern: regexp.MustCompile(`^[0-9]S[0-9]{5}L$`)},
	"IT": {pattern: regexp.MustCompile(`^[0-9]{11}$`)},
	"LT": {pattern: regexp.MustCompile(`^(?:[0-9]{9}|[0-9]{12})$`)},
	"LU": {pattern: regexp.MustCompile(`^[0-9]{8}$`)},
	"LV": {pattern: regexp.MustCompile(`^[0-9]{11}$`)},
	"MT": {pattern: regexp.MustCompile(`^[0-9]{8}$`)},
	"NL": {pattern: regexp.MustCompile(`^[0-9]{9}B[0-9]{2}$`)},
	"PL": {pattern: regexp.MustCompile(`^[0-9]{10}$`)},
	"PT": {pattern: regexp.MustCompile(`^[0-9]{9}$`), checksum: validNIF},
	"RO": {pattern: regexp.MustCompile(`^[0-9]{2,10}$`)},
	"SE": {pattern: regexp.MustCompile(`^[0-9]{12}$`)},
	"SI": {pattern: regexp.MustCompile(`^[0-9]{8}$`)},
	"SK": {pattern: regexp.MustCompile(`^[0-9]{10}$`)},
}

// Valid reports whether vatin is structurally valid for the given
// ISO 3166-1 alpha-2 country code. Country codes are case-insensitive.
// Countries without a configured rule are never rejected on format
// grounds, so Valid returns true for them regardless of input.
func Valid(countryCode, vatin string) bool {
	rule, ok := countryRules[strings.ToUpper(countryCode)]
	if !ok {
		return true
	}
	return rule.valid(strings.ToUpper(vatin))
}

// Supported reports whether the country has a configured validation rule.
func Supported(countryCode string) bool {
	_, ok := countryRules[strings.ToUpper(countryCode)]
	return ok
}

// Countries returns the country codes with a configured rule, sorted.
func Countries() []string {
	codes := make([]string, 0, len(countryRules))
	for code := range countryRules {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
