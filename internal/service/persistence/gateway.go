package persistence

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/teagang/dealership/internal/domain/models"
)

// Defaults used when the store is empty or the header is incomplete.
const (
	DefaultName        = "Your Dealership"
	DefaultAddress     = "123 Main st"
	DefaultPhone       = "888-888-8888"
	DefaultHeaderPhone = "000-000-0000"
	BlankHeaderAddress = "Your address"
)

// Backend is a storage strategy. Fetch returns (nil, nil) when the store holds
// no dealership yet. Store replaces everything the backend holds.
type Backend interface {
	Name() string
	Fetch(ctx context.Context) (*models.Snapshot, error)
	Store(ctx context.Context, dealership models.Dealership, vehicles []models.Vehicle) error
}

// ContractStore appends write-once contract records.
type ContractStore interface {
	AppendContract(ctx context.Context, contract models.Contract) error
}

// Gateway applies the load, duplicate and corrupt-record rules on top of a Backend.
type Gateway struct {
	backend Backend
	logger  *zap.Logger
}

// NewGateway wires a gateway over the provided backend.
func NewGateway(backend Backend, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{backend: backend, logger: logger.With(zap.String("backend", backend.Name()))}
}

// Backend returns the underlying storage strategy.
func (g *Gateway) Backend() Backend {
	return g.backend
}

// DefaultInventory is the inventory used when nothing has been stored yet.
func DefaultInventory() *models.Inventory {
	return models.NewInventory(models.Dealership{
		Name:    DefaultName,
		Address: DefaultAddress,
		Phone:   DefaultPhone,
	})
}

// Load materializes the inventory. On a store failure it returns the default
// inventory together with the error; a partial inventory is never returned.
func (g *Gateway) Load(ctx context.Context) (*models.Inventory, models.LoadStats, error) {
	stats := models.LoadStats{}

	snapshot, err := g.backend.Fetch(ctx)
	if err != nil {
		g.logger.Error("failed to load inventory", zap.Error(err))
		return DefaultInventory(), stats, asStoreError(g.backend.Name(), "load", err)
	}
	if snapshot == nil {
		g.logger.Info("no stored inventory, using default dealership")
		return DefaultInventory(), stats, nil
	}

	inv := models.NewInventory(ParseHeader(snapshot.Header))
	for _, record := range snapshot.Records {
		g.ingest(inv, record, &stats)
	}

	g.logger.Info("inventory loaded",
		zap.Int("loaded", stats.Loaded),
		zap.Int("skipped", stats.Skipped),
		zap.Int("duplicate", stats.Duplicate))
	return inv, stats, nil
}

// Save persists the dealership header and every vehicle, replacing prior state.
func (g *Gateway) Save(ctx context.Context, inv *models.Inventory) error {
	if err := g.backend.Store(ctx, inv.Dealership, inv.All()); err != nil {
		g.logger.Error("failed to save inventory", zap.Error(err))
		return asStoreError(g.backend.Name(), "save", err)
	}
	g.logger.Debug("inventory saved", zap.Int("vehicles", inv.Len()))
	return nil
}

// Repair feeds operator-corrected records through the load rules against inv
// and then saves the whole inventory. Blank lines are ignored.
func (g *Gateway) Repair(ctx context.Context, inv *models.Inventory, records []string) (models.LoadStats, error) {
	stats := models.LoadStats{}
	for _, record := range records {
		g.ingest(inv, record, &stats)
	}
	if err := g.Save(ctx, inv); err != nil {
		return stats, err
	}
	return stats, nil
}

func (g *Gateway) ingest(inv *models.Inventory, record string, stats *models.LoadStats) {
	if strings.TrimSpace(record) == "" {
		return
	}

	vehicle, err := ParseRecord(record)
	if err != nil {
		g.logger.Warn("skipping invalid vehicle record", zap.String("record", record), zap.Error(err))
		stats.Skipped++
		stats.BadRecords = append(stats.BadRecords, record)
		return
	}

	if !inv.Add(*vehicle) {
		g.logger.Warn("skipping duplicate vin", zap.Int("vin", vehicle.VIN), zap.String("record", record))
		stats.Duplicate++
		return
	}
	stats.Loaded++
}

// ParseRecord applies the full shape check to a stored record: field count,
// numeric fields, non-blank text fields and non-negative odometer and price.
func ParseRecord(record string) (*models.Vehicle, error) {
	vehicle, err := models.ParseVehicleRecord(record)
	if err != nil {
		return nil, err
	}
	if vehicle == nil {
		return nil, &models.FormatError{Record: record, Msg: "blank record"}
	}
	vehicle.Price = vehicle.Price.Round(2)
	if err := vehicle.Validate(); err != nil {
		var formatErr *models.FormatError
		if errors.As(err, &formatErr) {
			formatErr.Record = record
		}
		return nil, err
	}
	return vehicle, nil
}

// ParseHeader reads name|address|phone, substituting defaults for missing or blank fields.
// A blank header line uses BlankHeaderAddress for the address.
func ParseHeader(header string) models.Dealership {
	if strings.TrimSpace(header) == "" {
		return models.Dealership{Name: DefaultName, Address: BlankHeaderAddress, Phone: DefaultHeaderPhone}
	}
	fields := strings.Split(header, models.FieldSeparator)
	field := func(i int, fallback string) string {
		if i < len(fields) {
			if v := strings.TrimSpace(fields[i]); v != "" {
				return v
			}
		}
		return fallback
	}
	return models.Dealership{
		Name:    field(0, DefaultName),
		Address: field(1, DefaultAddress),
		Phone:   field(2, DefaultHeaderPhone),
	}
}

func asStoreError(backend, op string, err error) error {
	var storeErr *models.StoreUnavailableError
	if errors.As(err, &storeErr) {
		return err
	}
	return &models.StoreUnavailableError{Backend: backend, Op: op, Err: err}
}
