package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

var contractDate = time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

func pricedVehicle(price string) Vehicle {
	v := sampleVehicle()
	v.Price = decimal.RequireFromString(price)
	return v
}

func TestSalesContractPricing(t *testing.T) {
	tests := []struct {
		name     string
		price    string
		financed bool
		fee      string
		total    string
		monthly  string
	}{
		{name: "cheap cash", price: "9999", fee: "295.00", total: "10893.95", monthly: "0.00"},
		{name: "cheap financed", price: "9999", financed: true, fee: "295.00", total: "10893.95", monthly: "479.15"},
		{name: "threshold financed", price: "10000", financed: true, fee: "495.00", total: "11095.00", monthly: "251.76"},
		{name: "expensive financed", price: "20000", financed: true, fee: "495.00", total: "21595.00", monthly: "490.01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewSalesContract(contractDate, "Bob", "bob@example.com", pricedVehicle(tt.price), tt.financed)
			assert.Equal(t, tt.fee, c.Sale.ProcessingFee.StringFixed(2))
			assert.Equal(t, tt.total, c.TotalPrice().StringFixed(2))
			assert.Equal(t, tt.monthly, c.MonthlyPayment().StringFixed(2))
			assert.Equal(t, tt.financed, c.Financed())
			assert.True(t, c.ExpectedEndingValue().IsZero())
		})
	}
}

func TestLeaseContractPricing(t *testing.T) {
	c := NewLeaseContract(contractDate, "Ann", "ann@example.com", pricedVehicle("30000"))

	assert.Equal(t, "15000.00", c.ExpectedEndingValue().StringFixed(2))
	assert.Equal(t, "2100.00", c.LeaseFee().StringFixed(2))
	assert.Equal(t, "17100.00", c.TotalPrice().StringFixed(2))
	assert.Equal(t, "504.86", c.MonthlyPayment().StringFixed(2))
	assert.False(t, c.Financed())
}

func TestContractRecord(t *testing.T) {
	sale := NewSalesContract(contractDate, "Bob", "bob@example.com", pricedVehicle("9999"), false)
	assert.Equal(t,
		"SALE|2024-03-15|Bob|bob@example.com|10112|1993|Ford|Explorer||Red|525123|9999.00|10893.95|NO|0.00",
		sale.Record())

	lease := NewLeaseContract(contractDate, "Ann", "ann@example.com", pricedVehicle("30000"))
	assert.Equal(t,
		"LEASE|2024-03-15|Ann|ann@example.com|10112|1993|Ford|Explorer||Red|525123|30000.00|15000.00|2100.00|17100.00|504.86",
		lease.Record())
}

func TestContractValidate(t *testing.T) {
	v := pricedVehicle("1000")

	assert.NoError(t, NewLeaseContract(contractDate, "Ann", "a@x", v).Validate())
	assert.ErrorIs(t, NewLeaseContract(contractDate, " ", "a@x", v).Validate(), ErrInvalidContract)
	assert.ErrorIs(t, NewSalesContract(contractDate, "Ann", "", v, false).Validate(), ErrInvalidContract)
	assert.ErrorIs(t, Contract{Kind: ContractSale, CustomerName: "A", CustomerEmail: "a@x"}.Validate(), ErrInvalidContract)
	assert.ErrorIs(t, NewLeaseContract(contractDate, "Ann|Lee\nSALE", "a@x", v).Validate(), ErrInvalidContract)
	assert.ErrorIs(t, NewSalesContract(contractDate, "Ann", "a@x\r", v, true).Validate(), ErrInvalidContract)
	assert.ErrorIs(t, NewSalesContract(contractDate, "Ann", "a|x", v, false).Validate(), ErrInvalidContract)
	assert.ErrorIs(t, Contract{Kind: "RENT", CustomerName: "A", CustomerEmail: "a@x"}.Validate(), ErrInvalidContract)
}

func TestAmortizeZeroRate(t *testing.T) {
	assert.Equal(t, "100.00", Amortize(decimal.NewFromInt(1200), 0, 12).StringFixed(2))
	assert.True(t, Amortize(decimal.NewFromInt(1200), 0.05, 0).IsZero())
}
