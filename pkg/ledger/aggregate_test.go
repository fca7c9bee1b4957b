package ledger

import (
	"testing"
	"time"

	"github.com/hotelops/folio-ledger/pkg/pms"
)

var testDate = time.Date(2024, 3, 15, 0, 0, 0, 0, time.Local)

func TestAggregateOverpaidScenario(t *testing.T) {
	// Receipts Cash:60 + Card:50 against one invoice of 105.00 (VAT
	// 5.00): net 110 vs 105 is an overage of 5.00 credited to
	// cash-over/short, and the guest ledger resolves to zero.
	matcher := NewMatcher(0.01, 10.00)
	invoice := pms.Invoice{InvoiceNumber: "INV-1", ReservationNumber: "RES-1", TotalAmount: 105.00, VatAmount: 5.00}
	receipts := []pms.Voucher{
		{VoucherNumber: "RC-1", ReservationNumber: "RES-1", Amount: 60.00, PaymentMethodID: 1},
		{VoucherNumber: "RC-2", ReservationNumber: "RES-1", Amount: 50.00, PaymentMethodID: 2},
	}

	match := matcher.Match(invoice, receipts, nil)
	if match.Outcome != OutcomeOverpaid {
		t.Fatalf("outcome = %s, expected OVERPAID", match.Outcome)
	}

	results := []InvoiceResult{{Match: match, Components: ExtractComponents(invoice)}}
	ag := AggregateDate(testDate, results, receipts, nil)

	if ag.PaymentTotals[1] != 60.00 || ag.PaymentTotals[2] != 50.00 {
		t.Errorf("payment totals = %v, expected Cash 60 / Card 50", ag.PaymentTotals)
	}
	if ag.Revenue.IndividualRate != 100.00 || ag.Revenue.VAT != 5.00 {
		t.Errorf("revenue = %+v, expected rate 100 / VAT 5", ag.Revenue)
	}
	if ag.CashOverShort != 5.00 {
		t.Errorf("CashOverShort = %.2f, expected 5.00", ag.CashOverShort)
	}
	if ag.StaffAccount != 0 {
		t.Errorf("StaffAccount = %.2f, expected 0", ag.StaffAccount)
	}
	if ag.GuestLedger != 0 {
		t.Errorf("GuestLedger = %.2f, expected 0", ag.GuestLedger)
	}

	check := ag.Check(0.01)
	if !check.Balanced {
		t.Errorf("Check() unbalanced: debits %.2f, credits %.2f", check.Expected, check.Actual)
	}
}

func TestAggregateStaffAccountScenario(t *testing.T) {
	matcher := NewMatcher(0.01, 10.00)
	invoice := pms.Invoice{InvoiceNumber: "INV-2", ReservationNumber: "RES-2", TotalAmount: 100.00, VatAmount: 0}
	receipts := []pms.Voucher{
		{VoucherNumber: "RC-3", ReservationNumber: "RES-2", Amount: 80.00, PaymentMethodID: 1},
	}

	match := matcher.Match(invoice, receipts, nil)
	if match.Outcome != OutcomeUnderpaidLarge {
		t.Fatalf("outcome = %s, expected UNDERPAID_LARGE", match.Outcome)
	}

	ag := AggregateDate(testDate,
		[]InvoiceResult{{Match: match, Components: ExtractComponents(invoice)}},
		receipts, nil)

	if ag.StaffAccount != 20.00 {
		t.Errorf("StaffAccount = %.2f, expected 20.00", ag.StaffAccount)
	}
	if ag.CashOverShort != 0 {
		t.Errorf("CashOverShort = %.2f, expected 0", ag.CashOverShort)
	}
	// 80 received + 20 staff debit covers the 100 revenue credit.
	if ag.GuestLedger != 0 {
		t.Errorf("GuestLedger = %.2f, expected 0", ag.GuestLedger)
	}
	if check := ag.Check(0.01); !check.Balanced {
		t.Errorf("Check() unbalanced: debits %.2f, credits %.2f", check.Expected, check.Actual)
	}
}

func TestAggregatePrepaymentResidual(t *testing.T) {
	// A receipt with no recognized invoice is a prepayment: the guest
	// ledger absorbs it as a credit.
	receipts := []pms.Voucher{
		{VoucherNumber: "RC-4", ReservationNumber: "RES-9", Amount: 250.00, PaymentMethodID: 9},
	}

	ag := AggregateDate(testDate, nil, receipts, nil)
	if ag.GuestLedger != 250.00 {
		t.Errorf("GuestLedger = %.2f, expected 250.00", ag.GuestLedger)
	}
	if check := ag.Check(0.01); !check.Balanced {
		t.Errorf("Check() unbalanced: debits %.2f, credits %.2f", check.Expected, check.Actual)
	}
}

func TestAggregateRefundTotals(t *testing.T) {
	refunds := []pms.Voucher{
		{VoucherNumber: "RF-1", ReservationNumber: "RES-5", Amount: -30.00, PaymentMethodID: 2},
		{VoucherNumber: "RF-2", ReservationNumber: "RES-6", Amount: 20.00, PaymentMethodID: 2},
	}

	ag := AggregateDate(testDate, nil, nil, refunds)
	if ag.RefundTotals[2] != 50.00 {
		t.Errorf("RefundTotals[2] = %.2f, expected 50.00 (absolute amounts)", ag.RefundTotals[2])
	}
	// Refunds with nothing against them debit the guest ledger.
	if ag.GuestLedger != -50.00 {
		t.Errorf("GuestLedger = %.2f, expected -50.00", ag.GuestLedger)
	}
	if check := ag.Check(0.01); !check.Balanced {
		t.Errorf("Check() unbalanced: debits %.2f, credits %.2f", check.Expected, check.Actual)
	}
}
