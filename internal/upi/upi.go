// Package upi builds UPI deep links for external payment apps.
package upi

import (
	"net/url"

	"github.com/shopspring/decimal"
)

// Currency is the fixed currency code embedded in every link.
const Currency = "INR"

// Link formats a upi://pay URI for the given payee and amount.
//
// Payment apps match fields by query key, not order, but the output is
// still deterministic: url.Values.Encode sorts keys (am, cu, pa, pn, tn)
// and applies standard query encoding (spaces become '+'). The amount is
// always rendered with two decimal places.
func Link(payeeAddress, payeeName string, amount decimal.Decimal, note string) string {
	v := url.Values{}
	v.Set("pa", payeeAddress)
	v.Set("pn", payeeName)
	v.Set("am", amount.StringFixed(2))
	v.Set("cu", Currency)
	v.Set("tn", note)
	return "upi://pay?" + v.Encode()
}
