// Package accounts provides the chart-of-accounts mapping loaded from a
// YAML configuration file, so different deployments can supply their own
// ledger accounts without code changes.
package accounts

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Account is a general-ledger account code with its display name.
type Account struct {
	Code string `yaml:"code"`
	Name string `yaml:"name"`
}

// PaymentMethodMapping binds a platform payment-method id to an account.
type PaymentMethodMapping struct {
	ID   int    `yaml:"id"`
	Code string `yaml:"code"`
	Name string `yaml:"name"`
}

// chartFile is the on-disk YAML layout.
type chartFile struct {
	PaymentMethods []PaymentMethodMapping `yaml:"payment_methods"`
	Revenue        struct {
		IndividualRate  Account `yaml:"individual_rate"`
		VAT             Account `yaml:"vat"`
		MunicipalityTax Account `yaml:"municipality_tax"`
		Penalties       Account `yaml:"penalties"`
	} `yaml:"revenue"`
	Clearing struct {
		CashOverShort Account `yaml:"cash_over_short"`
		GuestLedger   Account `yaml:"guest_ledger"`
		StaffAccount  Account `yaml:"staff_account"`
	} `yaml:"clearing"`
	Suspense Account `yaml:"suspense"`
}

// Chart maps payment methods, revenue buckets and clearing entries onto
// ledger accounts.
type Chart struct {
	paymentMethods map[int]Account

	IndividualRate  Account
	VAT             Account
	MunicipalityTax Account
	Penalties       Account

	CashOverShort Account
	GuestLedger   Account
	StaffAccount  Account

	// Suspense receives amounts for payment-method ids with no mapping.
	Suspense Account
}

// Load reads a chart-of-accounts YAML file.
func Load(path string) (*Chart, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read chart file: %w", err)
	}

	var file chartFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse chart YAML: %w", err)
	}

	chart := &Chart{
		paymentMethods:  make(map[int]Account, len(file.PaymentMethods)),
		IndividualRate:  file.Revenue.IndividualRate,
		VAT:             file.Revenue.VAT,
		MunicipalityTax: file.Revenue.MunicipalityTax,
		Penalties:       file.Revenue.Penalties,
		CashOverShort:   file.Clearing.CashOverShort,
		GuestLedger:     file.Clearing.GuestLedger,
		StaffAccount:    file.Clearing.StaffAccount,
		Suspense:        file.Suspense,
	}

	for _, pm := range file.PaymentMethods {
		chart.paymentMethods[pm.ID] = Account{Code: pm.Code, Name: pm.Name}
	}

	if err := chart.Validate(); err != nil {
		return nil, err
	}
	return chart, nil
}

// Validate checks that every account the journal builder can emit has a
// code.
func (c *Chart) Validate() error {
	var missing []string

	check := func(name string, acc Account) {
		if acc.Code == "" {
			missing = append(missing, name)
		}
	}
	check("revenue.individual_rate", c.IndividualRate)
	check("revenue.vat", c.VAT)
	check("revenue.municipality_tax", c.MunicipalityTax)
	check("revenue.penalties", c.Penalties)
	check("clearing.cash_over_short", c.CashOverShort)
	check("clearing.guest_ledger", c.GuestLedger)
	check("clearing.staff_account", c.StaffAccount)
	check("suspense", c.Suspense)

	if len(missing) > 0 {
		return fmt.Errorf("chart of accounts is missing codes for: %v", missing)
	}
	if len(c.paymentMethods) == 0 {
		return fmt.Errorf("chart of accounts maps no payment methods")
	}
	return nil
}

// PaymentMethod returns the account for a payment-method id and whether
// a mapping exists. Callers fall back to Suspense when it does not.
func (c *Chart) PaymentMethod(id int) (Account, bool) {
	acc, ok := c.paymentMethods[id]
	return acc, ok
}

// MethodIDs returns all mapped payment-method ids in ascending order.
func (c *Chart) MethodIDs() []int {
	ids := make([]int, 0, len(c.paymentMethods))
	for id := range c.paymentMethods {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
