package models

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// FieldSeparator delimits fields in every canonical record.
	FieldSeparator = "|"
	// VehicleFieldCount is the number of fields in a canonical vehicle record.
	VehicleFieldCount = 8
)

// Vehicle is a single unit of inventory. VIN is the identity key.
type Vehicle struct {
	VIN      int             `json:"vin"`
	Year     int             `json:"year"`
	Make     string          `json:"make"`
	Model    string          `json:"model"`
	Type     string          `json:"type"`
	Color    string          `json:"color"`
	Odometer int64           `json:"odometer"`
	Price    decimal.Decimal `json:"price"`
}

// Record renders the canonical vin|year|make|model|type|color|odometer|price form.
func (v Vehicle) Record() string {
	return strings.Join([]string{
		strconv.Itoa(v.VIN),
		strconv.Itoa(v.Year),
		v.Make,
		v.Model,
		v.Type,
		v.Color,
		strconv.FormatInt(v.Odometer, 10),
		v.Price.StringFixed(2),
	}, FieldSeparator)
}

// DataRecord renders the vehicle as it appears inside a contract log line: the
// type value is left out but its slot is kept.
func (v Vehicle) DataRecord() string {
	withoutType := v
	withoutType.Type = ""
	return withoutType.Record()
}

// Equal compares every field; prices are compared by value.
func (v Vehicle) Equal(other Vehicle) bool {
	return v.VIN == other.VIN &&
		v.Year == other.Year &&
		v.Make == other.Make &&
		v.Model == other.Model &&
		v.Type == other.Type &&
		v.Color == other.Color &&
		v.Odometer == other.Odometer &&
		v.Price.Equal(other.Price)
}

// Validate checks the invariants a vehicle must hold before it enters an inventory.
func (v Vehicle) Validate() error {
	record := v.Record()
	switch {
	case strings.TrimSpace(v.Make) == "":
		return formatErrorf(record, "make is blank")
	case strings.TrimSpace(v.Model) == "":
		return formatErrorf(record, "model is blank")
	case strings.TrimSpace(v.Type) == "":
		return formatErrorf(record, "type is blank")
	case strings.TrimSpace(v.Color) == "":
		return formatErrorf(record, "color is blank")
	case !recordSafe(v.Make, v.Model, v.Type, v.Color):
		return formatErrorf(record, "text fields must not contain %q or line breaks", FieldSeparator)
	case v.Odometer < 0:
		return formatErrorf(record, "odometer is negative")
	case v.Price.IsNegative():
		return formatErrorf(record, "price is negative")
	}
	return nil
}

// recordSafe reports whether every value fits in a single record field.
func recordSafe(values ...string) bool {
	for _, value := range values {
		if strings.ContainsAny(value, FieldSeparator+"\r\n") {
			return false
		}
	}
	return true
}

// String renders a fixed-width row for terminal listings.
func (v Vehicle) String() string {
	return fmt.Sprintf("%-6d %-4d %-10s %-12s %-6s %-10s %9d $%12s",
		v.VIN, v.Year, v.Make, v.Model, v.Type, v.Color, v.Odometer, v.Price.StringFixed(2))
}

// ParseVehicleRecord is the inverse of Record. A blank line yields (nil, nil).
// Fields are trimmed; extra trailing fields are ignored.
func ParseVehicleRecord(line string) (*Vehicle, error) {
	if strings.TrimSpace(line) == "" {
		return nil, nil
	}

	parts := strings.Split(line, FieldSeparator)
	if len(parts) < VehicleFieldCount {
		return nil, formatErrorf(line, "expected %d fields, got %d", VehicleFieldCount, len(parts))
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	vin, err := strconv.Atoi(parts[0])
	if err != nil {
		return nil, formatErrorf(line, "vin %q is not an integer", parts[0])
	}
	year, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil, formatErrorf(line, "year %q is not an integer", parts[1])
	}
	odometer, err := strconv.ParseInt(parts[6], 10, 64)
	if err != nil {
		return nil, formatErrorf(line, "odometer %q is not an integer", parts[6])
	}
	price, err := decimal.NewFromString(parts[7])
	if err != nil {
		return nil, formatErrorf(line, "price %q is not a decimal", parts[7])
	}

	return &Vehicle{
		VIN:      vin,
		Year:     year,
		Make:     parts[2],
		Model:    parts[3],
		Type:     parts[4],
		Color:    parts[5],
		Odometer: odometer,
		Price:    price,
	}, nil
}
