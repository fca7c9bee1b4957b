package ledger

import (
	"testing"

	"github.com/hotelops/folio-ledger/pkg/pms"
)

func receiptsOf(amounts ...float64) []pms.Voucher {
	var vouchers []pms.Voucher
	for i, a := range amounts {
		vouchers = append(vouchers, pms.Voucher{
			VoucherNumber: "R" + string(rune('A'+i)), Amount: a, PaymentMethodID: 1,
		})
	}
	return vouchers
}

func TestMatchClassification(t *testing.T) {
	matcher := NewMatcher(0.01, 10.00)
	invoice := pms.Invoice{InvoiceNumber: "INV-1", ReservationNumber: "RES-1", TotalAmount: 100.00}

	tests := []struct {
		name     string
		receipts []pms.Voucher
		refunds  []pms.Voucher
		outcome  Outcome
		diff     float64
	}{
		{"exact", receiptsOf(100.00), nil, OutcomeExact, 0},
		{"exact within tolerance", receiptsOf(100.01), nil, OutcomeExact, 0.01},
		{"overpaid", receiptsOf(100.02), nil, OutcomeOverpaid, 0.02},
		{"underpaid tolerable", receiptsOf(92.00), nil, OutcomeUnderpaidTolerable, -8.00},
		{"underpaid at tolerance edge", receiptsOf(90.00), nil, OutcomeUnderpaidTolerable, -10.00},
		{"underpaid large", receiptsOf(80.00), nil, OutcomeUnderpaidLarge, -20.00},
		{"no net payment", nil, nil, OutcomeNoNetPayment, -100.00},
		{"receipts fully refunded", receiptsOf(100.00), receiptsOf(-100.00), OutcomeNoNetPayment, -100.00},
		{"split receipts exact", receiptsOf(60.00, 40.00), nil, OutcomeExact, 0},
		{"refund reduces net", receiptsOf(110.00), receiptsOf(10.00), OutcomeExact, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := matcher.Match(invoice, tt.receipts, tt.refunds)
			if result.Outcome != tt.outcome {
				t.Errorf("outcome = %s, expected %s (diff %.2f)", result.Outcome, tt.outcome, result.Diff)
			}
			if result.Diff != tt.diff {
				t.Errorf("diff = %.2f, expected %.2f", result.Diff, tt.diff)
			}
		})
	}
}

func TestMatchRefundAbsoluteValue(t *testing.T) {
	matcher := NewMatcher(0, 0)
	invoice := pms.Invoice{InvoiceNumber: "INV-2", TotalAmount: 50.00}

	// Platforms report refunds either negative or positive; both reduce net.
	for _, refundAmount := range []float64{-20.00, 20.00} {
		result := matcher.Match(invoice, receiptsOf(70.00), []pms.Voucher{{Amount: refundAmount}})
		if result.Net != 50.00 {
			t.Errorf("net with refund %.2f = %.2f, expected 50.00", refundAmount, result.Net)
		}
		if result.Outcome != OutcomeExact {
			t.Errorf("outcome = %s, expected EXACT", result.Outcome)
		}
	}
}

func TestMatchShortage(t *testing.T) {
	matcher := NewMatcher(0, 0)

	result := matcher.Match(pms.Invoice{TotalAmount: 100.00}, receiptsOf(80.00), nil)
	if result.Outcome != OutcomeUnderpaidLarge {
		t.Fatalf("outcome = %s, expected UNDERPAID_LARGE", result.Outcome)
	}
	if got := result.Shortage(); got != 20.00 {
		t.Errorf("Shortage() = %.2f, expected 20.00", got)
	}
	if result.ToCashOverShort() {
		t.Error("UNDERPAID_LARGE should not route to cash-over/short")
	}
	if !result.ToStaffAccount() {
		t.Error("UNDERPAID_LARGE should route to staff account")
	}

	exact := matcher.Match(pms.Invoice{TotalAmount: 100.00}, receiptsOf(100.00), nil)
	if got := exact.Shortage(); got != 0 {
		t.Errorf("Shortage() for EXACT = %.2f, expected 0", got)
	}
	if !exact.ToCashOverShort() {
		t.Error("EXACT should route its (zero) diff to cash-over/short")
	}
}

func TestMatcherDefaults(t *testing.T) {
	matcher := NewMatcher(0, 0)
	if matcher.ExactTolerance != DefaultExactTolerance {
		t.Errorf("ExactTolerance = %v, expected %v", matcher.ExactTolerance, DefaultExactTolerance)
	}
	if matcher.UnderpayTolerance != DefaultUnderpayTolerance {
		t.Errorf("UnderpayTolerance = %v, expected %v", matcher.UnderpayTolerance, DefaultUnderpayTolerance)
	}
}
