package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Dealership identifies the single dealership that owns an inventory.
type Dealership struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

// Record renders the name|address|phone header line.
func (d Dealership) Record() string {
	return strings.Join([]string{d.Name, d.Address, d.Phone}, FieldSeparator)
}

// Inventory is the vehicle collection of one dealership, keyed by VIN.
// It is not safe for concurrent use.
type Inventory struct {
	Dealership

	vehicles []Vehicle
	index    map[int]int
}

// NewInventory returns an empty inventory for the dealership.
func NewInventory(d Dealership) *Inventory {
	return &Inventory{
		Dealership: d,
		index:      make(map[int]int),
	}
}

// Len returns the number of vehicles held.
func (inv *Inventory) Len() int {
	return len(inv.vehicles)
}

// Add inserts v unless its VIN is already present. It reports whether v was added.
func (inv *Inventory) Add(v Vehicle) bool {
	if _, exists := inv.index[v.VIN]; exists {
		return false
	}
	inv.index[v.VIN] = len(inv.vehicles)
	inv.vehicles = append(inv.vehicles, v)
	return true
}

// Replace stores v, overwriting any vehicle with the same VIN in place.
func (inv *Inventory) Replace(v Vehicle) {
	if pos, exists := inv.index[v.VIN]; exists {
		inv.vehicles[pos] = v
		return
	}
	inv.Add(v)
}

// RemoveByVIN deletes the matching vehicle and reports whether one was removed.
func (inv *Inventory) RemoveByVIN(vin int) bool {
	pos, exists := inv.index[vin]
	if !exists {
		return false
	}
	inv.vehicles = append(inv.vehicles[:pos], inv.vehicles[pos+1:]...)
	delete(inv.index, vin)
	for i := pos; i < len(inv.vehicles); i++ {
		inv.index[inv.vehicles[i].VIN] = i
	}
	return true
}

// Find returns the vehicle with the given VIN.
func (inv *Inventory) Find(vin int) (Vehicle, bool) {
	pos, exists := inv.index[vin]
	if !exists {
		return Vehicle{}, false
	}
	return inv.vehicles[pos], true
}

// All returns a snapshot of every vehicle in storage order.
func (inv *Inventory) All() []Vehicle {
	return inv.filter(func(Vehicle) bool { return true })
}

// ByPrice returns vehicles priced within [min, max].
func (inv *Inventory) ByPrice(min, max decimal.Decimal) []Vehicle {
	return inv.filter(func(v Vehicle) bool {
		return v.Price.GreaterThanOrEqual(min) && v.Price.LessThanOrEqual(max)
	})
}

// ByMakeModel matches make and model independently; a blank filter matches anything.
func (inv *Inventory) ByMakeModel(makeFilter, modelFilter string) []Vehicle {
	makeMatch := containsFold(makeFilter)
	modelMatch := containsFold(modelFilter)
	return inv.filter(func(v Vehicle) bool {
		return makeMatch(v.Make) && modelMatch(v.Model)
	})
}

// ByYear returns vehicles with a model year within [min, max].
func (inv *Inventory) ByYear(min, max int) []Vehicle {
	return inv.filter(func(v Vehicle) bool {
		return v.Year >= min && v.Year <= max
	})
}

// ByColor returns vehicles whose color contains the filter.
func (inv *Inventory) ByColor(color string) []Vehicle {
	match := containsFold(color)
	return inv.filter(func(v Vehicle) bool { return match(v.Color) })
}

// ByMileage returns vehicles with an odometer reading within [min, max].
func (inv *Inventory) ByMileage(min, max int64) []Vehicle {
	return inv.filter(func(v Vehicle) bool {
		return v.Odometer >= min && v.Odometer <= max
	})
}

// ByType returns vehicles whose type contains the filter.
func (inv *Inventory) ByType(vehicleType string) []Vehicle {
	match := containsFold(vehicleType)
	return inv.filter(func(v Vehicle) bool { return match(v.Type) })
}

func (inv *Inventory) filter(keep func(Vehicle) bool) []Vehicle {
	out := make([]Vehicle, 0, len(inv.vehicles))
	for _, v := range inv.vehicles {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

func containsFold(filter string) func(string) bool {
	needle := strings.ToLower(strings.TrimSpace(filter))
	return func(value string) bool {
		if needle == "" {
			return true
		}
		return strings.Contains(strings.ToLower(value), needle)
	}
}
