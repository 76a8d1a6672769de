package models

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ContractKind discriminates the contract variants.
type ContractKind string

const (
	ContractSale  ContractKind = "SALE"
	ContractLease ContractKind = "LEASE"
)

// ContractDateLayout is the date format used in contract records.
const ContractDateLayout = "2006-01-02"

var (
	salesTaxRate      = decimal.RequireFromString("0.05")
	recordingFee      = decimal.RequireFromString("100.00")
	lowProcessingFee  = decimal.RequireFromString("295.00")
	highProcessingFee = decimal.RequireFromString("495.00")
	financeThreshold  = decimal.NewFromInt(10000)
	leaseResidualRate = decimal.RequireFromString("0.5")
	leaseFeeRate      = decimal.RequireFromString("0.07")
)

const (
	leaseAnnualRate     = 0.04
	leaseTermMonths     = 36
	longLoanAnnualRate  = 0.0425
	longLoanTermMonths  = 48
	shortLoanAnnualRate = 0.0525
	shortLoanTermMonths = 24
)

// SaleTerms holds the fields only a sale carries.
type SaleTerms struct {
	FinanceOption bool            `json:"finance_option"`
	ProcessingFee decimal.Decimal `json:"processing_fee"`
}

// Contract is a sale or lease of one inventory vehicle. Exactly one of the
// variant fields is set, matching Kind.
type Contract struct {
	Kind          ContractKind `json:"kind"`
	Date          time.Time    `json:"date"`
	CustomerName  string       `json:"customer_name"`
	CustomerEmail string       `json:"customer_email"`
	Vehicle       Vehicle      `json:"vehicle"`
	Sale          *SaleTerms   `json:"sale,omitempty"`
}

// NewSalesContract prices a sale. The processing fee is fixed here.
func NewSalesContract(date time.Time, customerName, customerEmail string, vehicle Vehicle, financed bool) Contract {
	fee := highProcessingFee
	if vehicle.Price.LessThan(financeThreshold) {
		fee = lowProcessingFee
	}
	return Contract{
		Kind:          ContractSale,
		Date:          date,
		CustomerName:  customerName,
		CustomerEmail: customerEmail,
		Vehicle:       vehicle,
		Sale:          &SaleTerms{FinanceOption: financed, ProcessingFee: fee},
	}
}

// NewLeaseContract prices a lease.
func NewLeaseContract(date time.Time, customerName, customerEmail string, vehicle Vehicle) Contract {
	return Contract{
		Kind:          ContractLease,
		Date:          date,
		CustomerName:  customerName,
		CustomerEmail: customerEmail,
		Vehicle:       vehicle,
	}
}

// Validate rejects contracts with missing customer data or a mismatched variant.
func (c Contract) Validate() error {
	switch {
	case strings.TrimSpace(c.CustomerName) == "":
		return fmt.Errorf("%w: customer name is required", ErrInvalidContract)
	case strings.TrimSpace(c.CustomerEmail) == "":
		return fmt.Errorf("%w: customer email is required", ErrInvalidContract)
	case !recordSafe(c.CustomerName, c.CustomerEmail):
		return fmt.Errorf("%w: customer fields must not contain %q or line breaks", ErrInvalidContract, FieldSeparator)
	}
	switch c.Kind {
	case ContractSale:
		if c.Sale == nil {
			return fmt.Errorf("%w: sale terms missing", ErrInvalidContract)
		}
	case ContractLease:
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidContract, c.Kind)
	}
	return nil
}

// Financed reports whether a sale is financed. Leases are never financed.
func (c Contract) Financed() bool {
	return c.Kind == ContractSale && c.Sale != nil && c.Sale.FinanceOption
}

// ExpectedEndingValue is the lease residual; zero for sales.
func (c Contract) ExpectedEndingValue() decimal.Decimal {
	if c.Kind != ContractLease {
		return decimal.Zero
	}
	return c.Vehicle.Price.Mul(leaseResidualRate)
}

// LeaseFee is the lease origination fee; zero for sales.
func (c Contract) LeaseFee() decimal.Decimal {
	if c.Kind != ContractLease {
		return decimal.Zero
	}
	return c.Vehicle.Price.Mul(leaseFeeRate)
}

// TotalPrice is the amount the customer is charged over the contract.
func (c Contract) TotalPrice() decimal.Decimal {
	price := c.Vehicle.Price
	switch c.Kind {
	case ContractSale:
		fee := decimal.Zero
		if c.Sale != nil {
			fee = c.Sale.ProcessingFee
		}
		return price.Add(price.Mul(salesTaxRate)).Add(recordingFee).Add(fee)
	case ContractLease:
		return c.LeaseFee().Add(c.ExpectedEndingValue())
	default:
		return decimal.Zero
	}
}

// MonthlyPayment amortizes TotalPrice over the variant's term.
// Unfinanced sales pay nothing monthly.
func (c Contract) MonthlyPayment() decimal.Decimal {
	switch c.Kind {
	case ContractSale:
		if !c.Financed() {
			return decimal.Zero
		}
		if c.Vehicle.Price.GreaterThanOrEqual(financeThreshold) {
			return Amortize(c.TotalPrice(), longLoanAnnualRate, longLoanTermMonths)
		}
		return Amortize(c.TotalPrice(), shortLoanAnnualRate, shortLoanTermMonths)
	case ContractLease:
		return Amortize(c.TotalPrice(), leaseAnnualRate, leaseTermMonths)
	default:
		return decimal.Zero
	}
}

// Record renders the contract log line for the variant.
func (c Contract) Record() string {
	fields := []string{
		string(c.Kind),
		c.Date.Format(ContractDateLayout),
		c.CustomerName,
		c.CustomerEmail,
		c.Vehicle.DataRecord(),
	}
	switch c.Kind {
	case ContractSale:
		financed := "NO"
		if c.Financed() {
			financed = "YES"
		}
		fields = append(fields,
			c.TotalPrice().StringFixed(2),
			financed,
			c.MonthlyPayment().StringFixed(2))
	case ContractLease:
		fields = append(fields,
			c.ExpectedEndingValue().StringFixed(2),
			c.LeaseFee().StringFixed(2),
			c.TotalPrice().StringFixed(2),
			c.MonthlyPayment().StringFixed(2))
	}
	return strings.Join(fields, FieldSeparator)
}

// Amortize returns the level monthly payment P*r/(1-(1+r)^-n) with r = annualRate/12.
func Amortize(principal decimal.Decimal, annualRate float64, months int) decimal.Decimal {
	if months <= 0 {
		return decimal.Zero
	}
	p := principal.InexactFloat64()
	if annualRate == 0 {
		return decimal.NewFromFloat(p / float64(months))
	}
	r := annualRate / 12.0
	return decimal.NewFromFloat(p * (r / (1 - math.Pow(1+r, -float64(months)))))
}
