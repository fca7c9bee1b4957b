package ledger

import (
	"testing"

	"github.com/hotelops/folio-ledger/pkg/pms"
)

func TestExtractComponentsFallback(t *testing.T) {
	inv := pms.Invoice{TotalAmount: 115.00, VatAmount: 15.00}

	c := ExtractComponents(inv)
	if c.IndividualRate != 100.00 {
		t.Errorf("IndividualRate = %.2f, expected 100.00", c.IndividualRate)
	}
	if c.VAT != 15.00 {
		t.Errorf("VAT = %.2f, expected 15.00", c.VAT)
	}
	if c.MunicipalityTax != 0 || c.Penalties != 0 {
		t.Errorf("expected empty tax/penalty buckets, got %+v", c)
	}
	if c.Total() != 115.00 {
		t.Errorf("Total() = %.2f, expected 115.00", c.Total())
	}
}

func TestExtractComponentsItemized(t *testing.T) {
	inv := pms.Invoice{
		TotalAmount: 136.50,
		VatAmount:   6.50,
		Items: []pms.InvoiceItem{
			{SubTotal: 100.00, ItemType: "IndividualRate"},
			{SubTotal: 10.00, ItemType: "MunicipalityFee"},
			{SubTotal: 20.00, ItemType: "NoShowPenalty"},
		},
	}

	c := ExtractComponents(inv)
	if c.IndividualRate != 100.00 {
		t.Errorf("IndividualRate = %.2f, expected 100.00", c.IndividualRate)
	}
	if c.MunicipalityTax != 10.00 {
		t.Errorf("MunicipalityTax = %.2f, expected 10.00", c.MunicipalityTax)
	}
	if c.Penalties != 20.00 {
		t.Errorf("Penalties = %.2f, expected 20.00", c.Penalties)
	}
	if c.VAT != 6.50 {
		t.Errorf("VAT = %.2f, expected 6.50", c.VAT)
	}
}

func TestExtractComponentsLegacyTypeField(t *testing.T) {
	inv := pms.Invoice{
		TotalAmount: 110.00,
		VatAmount:   10.00,
		Items: []pms.InvoiceItem{
			{SubTotal: 100.00, LegacyType: "municipality tax"},
		},
	}

	c := ExtractComponents(inv)
	if c.MunicipalityTax != 100.00 {
		t.Errorf("MunicipalityTax = %.2f, expected 100.00", c.MunicipalityTax)
	}
}

func TestExtractComponentsDiscountClamped(t *testing.T) {
	inv := pms.Invoice{
		TotalAmount: 80.00,
		VatAmount:   0,
		Items: []pms.InvoiceItem{
			{SubTotal: 100.00, ItemType: "IndividualRate"},
			{SubTotal: -20.00, ItemType: "IndividualRate"},
			{SubTotal: -5.00, ItemType: "MunicipalityFee"},
		},
	}

	c := ExtractComponents(inv)
	if c.IndividualRate != 80.00 {
		t.Errorf("IndividualRate = %.2f, expected 80.00", c.IndividualRate)
	}
	// A bucket that nets negative is clamped, never emitted as a
	// negative revenue credit.
	if c.MunicipalityTax != 0 {
		t.Errorf("MunicipalityTax = %.2f, expected 0", c.MunicipalityTax)
	}
}

func TestExtractComponentsVatExceedsTotal(t *testing.T) {
	inv := pms.Invoice{TotalAmount: 10.00, VatAmount: 12.00}
	c := ExtractComponents(inv)
	if c.IndividualRate != 0 {
		t.Errorf("IndividualRate = %.2f, expected clamp to 0", c.IndividualRate)
	}
}
