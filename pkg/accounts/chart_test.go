package accounts

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	chart, err := Load("testdata/chart-of-accounts.yaml")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	acc, ok := chart.PaymentMethod(1)
	if !ok {
		t.Fatal("payment method 1 not mapped")
	}
	if acc.Code != "011500020" || acc.Name != "Cash (FO)" {
		t.Errorf("method 1 = %+v, expected Cash (FO) 011500020", acc)
	}

	if _, ok := chart.PaymentMethod(42); ok {
		t.Error("unmapped method 42 should not resolve")
	}

	if chart.GuestLedger.Code != "021100010" {
		t.Errorf("GuestLedger.Code = %s, expected 021100010", chart.GuestLedger.Code)
	}
	if chart.Suspense.Code != "011200999" {
		t.Errorf("Suspense.Code = %s, expected 011200999", chart.Suspense.Code)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("testdata/does-not-exist.yaml"); err == nil {
		t.Error("expected error for missing chart file")
	}
}

func TestLoadMissingCode(t *testing.T) {
	content := `payment_methods:
  - id: 1
    code: "011500020"
    name: "Cash"
revenue:
  individual_rate:
    code: "101000020"
    name: "Individual Rate"
clearing:
  guest_ledger:
    code: "021100010"
    name: "Guest Ledger"
`
	path := filepath.Join(t.TempDir(), "chart.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected validation error for chart with missing codes")
	}
}

func TestLoadNoPaymentMethods(t *testing.T) {
	content := `revenue:
  individual_rate: {code: "101000020", name: "Individual Rate"}
  vat: {code: "021500010", name: "VAT"}
  municipality_tax: {code: "021500090", name: "Municipality Tax"}
  penalties: {code: "101000090", name: "Penalties"}
clearing:
  cash_over_short: {code: "505000098", name: "Cash Over & Short"}
  guest_ledger: {code: "021100010", name: "Guest Ledger"}
  staff_account: {code: "011600050", name: "Staff Account"}
suspense: {code: "011200999", name: "Suspense"}
`
	path := filepath.Join(t.TempDir(), "chart.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected validation error for chart with no payment methods")
	}
}

func TestMethodIDsSorted(t *testing.T) {
	chart, err := Load("testdata/chart-of-accounts.yaml")
	if err != nil {
		t.Fatal(err)
	}
	ids := chart.MethodIDs()
	expected := []int{1, 2, 9}
	if len(ids) != len(expected) {
		t.Fatalf("MethodIDs() = %v, expected %v", ids, expected)
	}
	for i := range ids {
		if ids[i] != expected[i] {
			t.Fatalf("MethodIDs() = %v, expected %v", ids, expected)
		}
	}
}
