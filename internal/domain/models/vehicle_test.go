package models

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleVehicle() Vehicle {
	return Vehicle{VIN: 10112, Year: 1993, Make: "Ford", Model: "Explorer", Type: "SUV", Color: "Red", Odometer: 525123, Price: decimal.RequireFromString("995.00")}
}

func TestVehicleRecordRoundTrip(t *testing.T) {
	v := sampleVehicle()
	assert.Equal(t, "10112|1993|Ford|Explorer|SUV|Red|525123|995.00", v.Record())

	parsed, err := ParseVehicleRecord(v.Record())
	require.NoError(t, err)
	assert.True(t, v.Equal(*parsed))
}

func TestDataRecordKeepsEmptyTypeSlot(t *testing.T) {
	assert.Equal(t, "10112|1993|Ford|Explorer||Red|525123|995.00", sampleVehicle().DataRecord())
}

func TestEqualComparesPriceByValue(t *testing.T) {
	a := sampleVehicle()
	b := sampleVehicle()
	b.Price = decimal.RequireFromString("995")
	assert.True(t, a.Equal(b))

	b.Color = "Blue"
	assert.False(t, a.Equal(b))
}

func TestParseVehicleRecord(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    *Vehicle
		wantErr bool
	}{
		{name: "blank", line: "   ", want: nil},
		{name: "trimmed fields", line: " 1 | 2020 | Kia | Soul | Car | Gray | 100 | 30000 ", want: &Vehicle{VIN: 1, Year: 2020, Make: "Kia", Model: "Soul", Type: "Car", Color: "Gray", Odometer: 100, Price: decimal.NewFromInt(30000)}},
		{name: "extra fields ignored", line: "1|2020|Kia|Soul|Car|Gray|100|30000|extra", want: &Vehicle{VIN: 1, Year: 2020, Make: "Kia", Model: "Soul", Type: "Car", Color: "Gray", Odometer: 100, Price: decimal.NewFromInt(30000)}},
		{name: "too few fields", line: "1|2020|Kia|Soul|Car", wantErr: true},
		{name: "bad vin", line: "x|2020|Kia|Soul|Car|Gray|100|30000", wantErr: true},
		{name: "bad year", line: "1|20x0|Kia|Soul|Car|Gray|100|30000", wantErr: true},
		{name: "bad odometer", line: "1|2020|Kia|Soul|Car|Gray|1e3|30000", wantErr: true},
		{name: "bad price", line: "1|2020|Kia|Soul|Car|Gray|100|cheap", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseVehicleRecord(tt.line)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidRecord))
				var formatErr *FormatError
				require.ErrorAs(t, err, &formatErr)
				assert.Equal(t, tt.line, formatErr.Record)
				return
			}
			require.NoError(t, err)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.True(t, tt.want.Equal(*got), "got %+v", got)
		})
	}
}

func TestVehicleValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Vehicle)
		ok     bool
	}{
		{name: "valid", mutate: func(*Vehicle) {}, ok: true},
		{name: "zero price", mutate: func(v *Vehicle) { v.Price = decimal.Zero }, ok: true},
		{name: "blank make", mutate: func(v *Vehicle) { v.Make = " " }},
		{name: "blank model", mutate: func(v *Vehicle) { v.Model = "" }},
		{name: "blank type", mutate: func(v *Vehicle) { v.Type = "" }},
		{name: "blank color", mutate: func(v *Vehicle) { v.Color = "" }},
		{name: "separator in make", mutate: func(v *Vehicle) { v.Make = "Land|Rover" }},
		{name: "newline in model", mutate: func(v *Vehicle) { v.Model = "Explorer\n11|2020" }},
		{name: "carriage return in type", mutate: func(v *Vehicle) { v.Type = "SUV\r" }},
		{name: "separator in color", mutate: func(v *Vehicle) { v.Color = "Red|Black" }},
		{name: "negative odometer", mutate: func(v *Vehicle) { v.Odometer = -1 }},
		{name: "negative price", mutate: func(v *Vehicle) { v.Price = decimal.NewFromInt(-5) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := sampleVehicle()
			tt.mutate(&v)
			err := v.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidRecord)
		})
	}
}
