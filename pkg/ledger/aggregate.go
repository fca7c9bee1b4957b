package ledger

import (
	"math"
	"time"

	"github.com/hotelops/folio-ledger/pkg/pms"
)

// InvoiceResult pairs an invoice's match classification with its revenue
// decomposition.
type InvoiceResult struct {
	Match      MatchResult
	Components RevenueComponents
}

// Aggregate holds everything the journal builder needs for one revenue
// date. The guest-ledger residual is solved for, not measured: it is the
// amount that makes the batch balance, capturing prepayments collected
// for future stays or deposits consumed from earlier ones.
type Aggregate struct {
	Date          time.Time
	PaymentTotals map[int]float64
	RefundTotals  map[int]float64
	Revenue       RevenueComponents
	CashOverShort float64
	StaffAccount  float64
	GuestLedger   float64
	InvoiceCount  int
	ReceiptCount  int
	RefundCount   int
}

// CheckResult is the typed outcome of the double-entry balance guard.
type CheckResult struct {
	Balanced bool
	// Expected and Actual are the debit and credit totals implied by
	// the aggregate.
	Expected float64
	Actual   float64
}

// Difference returns the signed debit-minus-credit gap.
func (c CheckResult) Difference() float64 {
	return Round2(c.Expected - c.Actual)
}

// AggregateDate sums one revenue date. The receipts and refunds passed
// in are those already assigned to this date by the cutoff policy; the
// invoice results cover every invoice recognized on the date.
func AggregateDate(date time.Time, results []InvoiceResult, receipts, refunds []pms.Voucher) *Aggregate {
	ag := &Aggregate{
		Date:          date,
		PaymentTotals: make(map[int]float64),
		RefundTotals:  make(map[int]float64),
		InvoiceCount:  len(results),
		ReceiptCount:  len(receipts),
		RefundCount:   len(refunds),
	}

	for _, r := range receipts {
		ag.PaymentTotals[r.PaymentMethodID] = Round2(ag.PaymentTotals[r.PaymentMethodID] + r.Amount)
	}
	for _, r := range refunds {
		ag.RefundTotals[r.PaymentMethodID] = Round2(ag.RefundTotals[r.PaymentMethodID] + math.Abs(r.Amount))
	}

	var cashOverShort, staffAccount float64
	for _, res := range results {
		ag.Revenue.Add(res.Components)
		if res.Match.ToCashOverShort() {
			cashOverShort += res.Match.Diff
		}
		staffAccount += res.Match.Shortage()
	}
	ag.CashOverShort = Round2(cashOverShort)
	ag.StaffAccount = Round2(staffAccount)

	// Solve for the residual so the batch balances by construction.
	// The staff-account debit stands in for cash never received, so it
	// offsets the revenue credit the same way a payment debit would.
	ag.GuestLedger = Round2(
		ag.paymentSum() + ag.StaffAccount - ag.Revenue.Total() - ag.CashOverShort - ag.refundSum(),
	)

	return ag
}

// Check verifies that the debit and credit totals implied by the
// aggregate agree within epsilon. A failed check means corrupted or
// partial inputs produced a false fully-paid picture; the date must be
// aborted, never posted.
func (ag *Aggregate) Check(epsilon float64) CheckResult {
	debits := ag.paymentSum() + ag.StaffAccount
	credits := ag.Revenue.Total() + ag.refundSum()

	if ag.CashOverShort < 0 {
		debits += -ag.CashOverShort
	} else {
		credits += ag.CashOverShort
	}
	if ag.GuestLedger < 0 {
		debits += -ag.GuestLedger
	} else {
		credits += ag.GuestLedger
	}

	debits = Round2(debits)
	credits = Round2(credits)

	return CheckResult{
		Balanced: math.Abs(debits-credits) <= epsilon,
		Expected: debits,
		Actual:   credits,
	}
}

func (ag *Aggregate) paymentSum() float64 {
	var sum float64
	for _, v := range ag.PaymentTotals {
		sum += v
	}
	return Round2(sum)
}

func (ag *Aggregate) refundSum() float64 {
	var sum float64
	for _, v := range ag.RefundTotals {
		sum += v
	}
	return Round2(sum)
}
