package ledger

import (
	"strings"

	"github.com/hotelops/folio-ledger/pkg/pms"
)

// RevenueComponents decomposes an invoice into typed revenue buckets.
// All values are non-negative; their sum reconciles to the invoice total
// within item-decomposition rounding.
type RevenueComponents struct {
	IndividualRate  float64
	VAT             float64
	MunicipalityTax float64
	Penalties       float64
}

// Total returns the component sum, rounded.
func (c RevenueComponents) Total() float64 {
	return Round2(c.IndividualRate + c.VAT + c.MunicipalityTax + c.Penalties)
}

// Add accumulates another component set element-wise.
func (c *RevenueComponents) Add(o RevenueComponents) {
	c.IndividualRate = Round2(c.IndividualRate + o.IndividualRate)
	c.VAT = Round2(c.VAT + o.VAT)
	c.MunicipalityTax = Round2(c.MunicipalityTax + o.MunicipalityTax)
	c.Penalties = Round2(c.Penalties + o.Penalties)
}

// ExtractComponents decomposes an invoice's line items into revenue
// buckets. The VAT bucket always comes from the invoice's reported VAT
// amount. Itemized line details are authoritative when present; without
// them the whole net amount falls back into the individual-rate bucket.
func ExtractComponents(inv pms.Invoice) RevenueComponents {
	c := RevenueComponents{VAT: Round2(inv.VatAmount)}

	if len(inv.Items) == 0 {
		c.IndividualRate = Round2(inv.TotalAmount - inv.VatAmount)
		if c.IndividualRate < 0 {
			c.IndividualRate = 0
		}
		return c
	}

	// Discount lines carry negative subtotals and net against their
	// bucket; buckets are clamped at zero after accumulation.
	for _, item := range inv.Items {
		switch classifyItemTag(item.Tag()) {
		case bucketMunicipality:
			c.MunicipalityTax += item.SubTotal
		case bucketPenalty:
			c.Penalties += item.SubTotal
		default:
			c.IndividualRate += item.SubTotal
		}
	}

	c.IndividualRate = clampRound(c.IndividualRate)
	c.MunicipalityTax = clampRound(c.MunicipalityTax)
	c.Penalties = clampRound(c.Penalties)
	return c
}

type itemBucket int

const (
	bucketRate itemBucket = iota
	bucketMunicipality
	bucketPenalty
)

// classifyItemTag maps a folio item-type tag onto a revenue bucket.
// Anything unrecognized counts as room rate.
func classifyItemTag(tag string) itemBucket {
	t := strings.ToLower(tag)
	switch {
	case strings.Contains(t, "municipal"), strings.Contains(t, "fee"):
		return bucketMunicipality
	case strings.Contains(t, "penalt"), strings.Contains(t, "fine"),
		strings.Contains(t, "no-show"), strings.Contains(t, "noshow"):
		return bucketPenalty
	default:
		return bucketRate
	}
}

func clampRound(v float64) float64 {
	r := Round2(v)
	if r < 0 {
		return 0
	}
	return r
}
