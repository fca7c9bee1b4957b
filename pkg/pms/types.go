// Package pms provides the booking-platform API client and wire types.
package pms

import (
	"fmt"
	"strings"
	"time"
)

// Invoice represents a guest-folio invoice as returned by the platform.
type Invoice struct {
	InvoiceNumber     string        `json:"invoiceNumber"`
	ReservationNumber string        `json:"reservationNumber"`
	TotalAmount       float64       `json:"totalAmount"`
	VatAmount         float64       `json:"vatAmount"`
	CreationDate      string        `json:"creationDate"`
	IsReversed        bool          `json:"isReversed"`
	Items             []InvoiceItem `json:"invoicesItemsDetails,omitempty"`
}

// InvoiceItem is a single folio line. Older platform versions send the
// item tag under "type" instead of "itemType".
type InvoiceItem struct {
	SubTotal   float64 `json:"subTotal"`
	VatTotal   float64 `json:"vatTaxCalculatedTotal"`
	ItemType   string  `json:"itemType,omitempty"`
	LegacyType string  `json:"type,omitempty"`
}

// Tag returns the item-type tag, whichever field the platform populated.
func (it InvoiceItem) Tag() string {
	if it.ItemType != "" {
		return it.ItemType
	}
	return it.LegacyType
}

// Voucher represents a receipt or refund voucher. Refund amounts may be
// reported negative by the platform; consumers take the absolute value.
type Voucher struct {
	VoucherNumber     string  `json:"voucherNumber"`
	ReservationNumber string  `json:"reservationNumber"`
	Amount            float64 `json:"amount"`
	PaymentMethodID   int     `json:"paymentMethodId"`
	IssueDateTime     string  `json:"issueDateTime"`
	IsCanceled        bool    `json:"isCanceled"`
}

// timestampLayouts are tried in order when parsing platform timestamps.
var timestampLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

// ParseTimestamp parses a platform timestamp string. A trailing "Z" is
// dropped first; the platform reports property-local time either way.
func ParseTimestamp(s string) (time.Time, error) {
	trimmed := strings.TrimSuffix(strings.TrimSpace(s), "Z")
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, trimmed, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
}
