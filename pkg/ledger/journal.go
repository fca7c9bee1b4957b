package ledger

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/hotelops/folio-ledger/pkg/accounts"
)

// DescriptionWidth is the target ledger's fixed description field width.
const DescriptionWidth = 40

// BatchMeta identifies one ledger batch: the document code plus the
// per-(document, year, month) serial, and the revenue date it covers.
type BatchMeta struct {
	Document string
	Year     string
	Month    string
	Serial   int
	Date     time.Time
	Currency string
	Rate     float64
}

// Key returns the batch's document-year-month-serial identity.
func (m BatchMeta) Key() string {
	return fmt.Sprintf("%s-%s-%s-%d", m.Document, m.Year, m.Month, m.Serial)
}

// JournalLine is one debit or credit row of a batch. Foreign columns
// mirror local ones at rate 1.0 (single currency).
type JournalLine struct {
	Line          int
	Account       string
	DebitLocal    float64
	CreditLocal   float64
	DebitForeign  float64
	CreditForeign float64
	Description   string
}

// Builder turns per-date aggregates into ordered journal lines.
type Builder struct {
	chart *accounts.Chart
}

// NewBuilder creates a journal entry builder over a chart of accounts.
func NewBuilder(chart *accounts.Chart) *Builder {
	return &Builder{chart: chart}
}

// Build emits the journal lines for one revenue date in deterministic
// order: payment-method debits, staff-account debit, guest-ledger debit,
// revenue credits, refund credits, cash-over/short, guest-ledger credit.
// The returned lines sum to zero; a non-zero sum is an error and the
// batch must not be posted.
func (b *Builder) Build(meta BatchMeta, ag *Aggregate) ([]JournalLine, error) {
	var lines []JournalLine
	dateKey := DateKey(ag.Date)

	add := func(acc accounts.Account, debit, credit float64, label string) {
		lines = append(lines, JournalLine{
			Line:          len(lines) + 1,
			Account:       acc.Code,
			DebitLocal:    debit,
			CreditLocal:   credit,
			DebitForeign:  debit,
			CreditForeign: credit,
			Description:   truncate(fmt.Sprintf("FO Dep.: %s for %s", label, dateKey), DescriptionWidth),
		})
	}

	// Payment method debits, ascending method id for stable output.
	for _, id := range sortedMethodIDs(ag.PaymentTotals) {
		amount := ag.PaymentTotals[id]
		if amount <= 0 {
			continue
		}
		acc, ok := b.chart.PaymentMethod(id)
		if !ok {
			acc = b.chart.Suspense
			slog.Warn("Unknown payment method, posting to suspense",
				"method_id", id, "amount", amount)
		}
		add(acc, amount, 0, acc.Name)
	}

	if ag.StaffAccount > 0 {
		add(b.chart.StaffAccount, ag.StaffAccount, 0, b.chart.StaffAccount.Name)
	}
	if ag.GuestLedger < 0 {
		add(b.chart.GuestLedger, -ag.GuestLedger, 0, b.chart.GuestLedger.Name)
	}

	// Revenue component credits.
	if ag.Revenue.IndividualRate > 0 {
		add(b.chart.IndividualRate, 0, ag.Revenue.IndividualRate, b.chart.IndividualRate.Name)
	}
	if ag.Revenue.VAT > 0 {
		add(b.chart.VAT, 0, ag.Revenue.VAT, b.chart.VAT.Name)
	}
	if ag.Revenue.MunicipalityTax > 0 {
		add(b.chart.MunicipalityTax, 0, ag.Revenue.MunicipalityTax, b.chart.MunicipalityTax.Name)
	}
	if ag.Revenue.Penalties > 0 {
		add(b.chart.Penalties, 0, ag.Revenue.Penalties, b.chart.Penalties.Name)
	}

	// Refund credits, ascending method id.
	for _, id := range sortedMethodIDs(ag.RefundTotals) {
		amount := ag.RefundTotals[id]
		if amount <= 0 {
			continue
		}
		acc, ok := b.chart.PaymentMethod(id)
		if !ok {
			acc = b.chart.Suspense
			slog.Warn("Unknown refund method, posting to suspense",
				"method_id", id, "amount", amount)
		}
		add(acc, 0, amount, "Refund "+acc.Name)
	}

	switch {
	case ag.CashOverShort < 0:
		add(b.chart.CashOverShort, -ag.CashOverShort, 0, b.chart.CashOverShort.Name)
	case ag.CashOverShort > 0:
		add(b.chart.CashOverShort, 0, ag.CashOverShort, b.chart.CashOverShort.Name)
	}

	if ag.GuestLedger > 0 {
		add(b.chart.GuestLedger, 0, ag.GuestLedger, b.chart.GuestLedger.Name)
	}

	if err := VerifyBalanced(lines); err != nil {
		return nil, err
	}
	return lines, nil
}

// VerifyBalanced checks the zero-sum post-condition on a line set.
func VerifyBalanced(lines []JournalLine) error {
	var debit, credit int64
	for _, l := range lines {
		debit += cents(l.DebitLocal)
		credit += cents(l.CreditLocal)
	}
	if debit != credit {
		return fmt.Errorf("journal lines do not balance: debit %.2f, credit %.2f",
			float64(debit)/100, float64(credit)/100)
	}
	return nil
}

// FormatBatch renders a batch as text for dry-run output.
func FormatBatch(meta BatchMeta, lines []JournalLine) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s  %s  currency=%s rate=%.1f\n",
		meta.Key(), DateKey(meta.Date), meta.Currency, meta.Rate))
	for _, l := range lines {
		sb.WriteString(fmt.Sprintf("  %2d  %-12s  Dr %10.2f  Cr %10.2f  %s\n",
			l.Line, l.Account, l.DebitLocal, l.CreditLocal, l.Description))
	}
	return sb.String()
}

func sortedMethodIDs(totals map[int]float64) []int {
	ids := make([]int, 0, len(totals))
	for id := range totals {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func truncate(s string, width int) string {
	if len(s) <= width {
		return s
	}
	return s[:width]
}
