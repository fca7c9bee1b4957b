package ledger

import (
	"math"

	"github.com/hotelops/folio-ledger/pkg/pms"
)

// Outcome classifies how an invoice's payments compare to its total.
// Every outcome is processed; out-of-tolerance shortfalls are diverted
// to the staff account for manual collection rather than left behind
// for a retry that may never succeed.
type Outcome string

const (
	// OutcomeExact: net receipts equal the invoice within the exact
	// tolerance. No clearing entry.
	OutcomeExact Outcome = "EXACT"
	// OutcomeOverpaid: net receipts exceed the invoice. The overage is
	// credited to cash-over/short.
	OutcomeOverpaid Outcome = "OVERPAID"
	// OutcomeUnderpaidTolerable: a small shortage, within the underpay
	// tolerance. Debited to cash-over/short.
	OutcomeUnderpaidTolerable Outcome = "UNDERPAID_TOLERABLE"
	// OutcomeNoNetPayment: nothing was net-received. The full invoice
	// amount is debited to the staff account.
	OutcomeNoNetPayment Outcome = "NO_NET_PAYMENT"
	// OutcomeUnderpaidLarge: a shortage beyond the underpay tolerance.
	// The shortage is debited to the staff account.
	OutcomeUnderpaidLarge Outcome = "UNDERPAID_LARGE"
)

// MatchResult is the per-invoice outcome of payment matching.
type MatchResult struct {
	InvoiceNumber     string
	ReservationNumber string
	Outcome           Outcome
	InvoiceAmount     float64
	GrossReceipts     float64
	GrossRefunds      float64
	Net               float64
	// Diff is net minus invoice amount: negative is a shortage,
	// positive an overage.
	Diff float64
}

// ToCashOverShort reports whether the result's difference belongs in the
// cash-over/short clearing account.
func (r MatchResult) ToCashOverShort() bool {
	switch r.Outcome {
	case OutcomeExact, OutcomeOverpaid, OutcomeUnderpaidTolerable:
		return true
	}
	return false
}

// ToStaffAccount reports whether the result's shortage belongs in the
// staff account.
func (r MatchResult) ToStaffAccount() bool {
	return r.Outcome == OutcomeNoNetPayment || r.Outcome == OutcomeUnderpaidLarge
}

// Shortage returns the positive shortage magnitude for staff-account
// outcomes, zero otherwise.
func (r MatchResult) Shortage() float64 {
	if !r.ToStaffAccount() {
		return 0
	}
	return Round2(-r.Diff)
}

// Matcher matches one invoice against the receipts and refunds sharing
// its reservation key. Refunds reduce net payment at reservation scope,
// the same scope the receipts are looked up by.
type Matcher struct {
	// ExactTolerance bounds a difference still considered fully paid.
	ExactTolerance float64
	// UnderpayTolerance bounds a shortage still absorbed by
	// cash-over/short. Must be much larger than ExactTolerance.
	UnderpayTolerance float64
}

const (
	DefaultExactTolerance    = 0.01
	DefaultUnderpayTolerance = 10.00
)

// NewMatcher creates a Matcher, applying defaults for zero tolerances.
func NewMatcher(exactTolerance, underpayTolerance float64) *Matcher {
	if exactTolerance == 0 {
		exactTolerance = DefaultExactTolerance
	}
	if underpayTolerance == 0 {
		underpayTolerance = DefaultUnderpayTolerance
	}
	return &Matcher{
		ExactTolerance:    exactTolerance,
		UnderpayTolerance: underpayTolerance,
	}
}

// Match classifies one invoice against the vouchers for its reservation.
// It never fails: every invoice gets an outcome.
func (m *Matcher) Match(inv pms.Invoice, receipts, refunds []pms.Voucher) MatchResult {
	var grossReceipts, grossRefunds float64
	for _, r := range receipts {
		grossReceipts += r.Amount
	}
	for _, r := range refunds {
		grossRefunds += math.Abs(r.Amount)
	}

	grossReceipts = Round2(grossReceipts)
	grossRefunds = Round2(grossRefunds)
	invoiceAmount := Round2(inv.TotalAmount)
	net := Round2(grossReceipts - grossRefunds)
	diff := Round2(net - invoiceAmount)

	result := MatchResult{
		InvoiceNumber:     inv.InvoiceNumber,
		ReservationNumber: inv.ReservationNumber,
		InvoiceAmount:     invoiceAmount,
		GrossReceipts:     grossReceipts,
		GrossRefunds:      grossRefunds,
		Net:               net,
		Diff:              diff,
	}

	switch {
	case math.Abs(diff) <= m.ExactTolerance:
		result.Outcome = OutcomeExact
	case diff > m.ExactTolerance:
		result.Outcome = OutcomeOverpaid
	case math.Abs(diff) <= m.UnderpayTolerance:
		result.Outcome = OutcomeUnderpaidTolerable
	case net == 0:
		result.Outcome = OutcomeNoNetPayment
	default:
		result.Outcome = OutcomeUnderpaidLarge
	}

	return result
}
