package dealer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/teagang/dealership/internal/domain/models"
	"github.com/teagang/dealership/internal/service/notify"
	"github.com/teagang/dealership/internal/service/persistence"
)

var errNoContractStore = errors.New("no contract store configured")

// DealRequest carries the customer side of a sale or lease.
type DealRequest struct {
	VIN           int       `json:"vin" binding:"required"`
	CustomerName  string    `json:"customer_name" binding:"required"`
	CustomerEmail string    `json:"customer_email" binding:"required"`
	Financed      bool      `json:"financed"`
	Date          time.Time `json:"date"`
}

// Service owns the in-memory inventory and serializes every read and write
// of it, so the HTTP server, the scheduler and the shell can share one instance.
type Service struct {
	mu        sync.Mutex
	gateway   *persistence.Gateway
	contracts persistence.ContractStore
	notifier  notify.Notifier
	inv       *models.Inventory
	stats     models.LoadStats
	now       func() time.Time
	logger    *zap.Logger
}

// NewService wires the dealer service. The inventory stays at the default
// dealership until Load is called.
func NewService(gateway *persistence.Gateway, contracts persistence.ContractStore, notifier notify.Notifier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Service{
		gateway:   gateway,
		contracts: contracts,
		notifier:  notifier,
		inv:       persistence.DefaultInventory(),
		now:       time.Now,
		logger:    logger,
	}
}

// Load replaces the in-memory inventory with the stored one. On a store
// failure the default inventory is installed and the error returned.
func (s *Service) Load(ctx context.Context) (models.LoadStats, error) {
	inv, stats, err := s.gateway.Load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inv = inv
	s.stats = stats
	return stats, err
}

// LoadStats returns the counters of the last load. BadRecords lists the
// records still waiting for a repair.
func (s *Service) LoadStats() models.LoadStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := s.stats
	stats.BadRecords = append([]string(nil), s.stats.BadRecords...)
	return stats
}

// Dealership returns the dealership header.
func (s *Service) Dealership() models.Dealership {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inv.Dealership
}

// Snapshot returns the header and a copy of every vehicle in storage order.
func (s *Service) Snapshot(context.Context) (models.Dealership, []models.Vehicle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inv.Dealership, s.inv.All()
}

// Vehicles returns every vehicle in storage order.
func (s *Service) Vehicles() []models.Vehicle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inv.All()
}

// Find returns the vehicle with the given VIN or ErrVehicleNotFound.
func (s *Service) Find(vin int) (models.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.inv.Find(vin)
	if !ok {
		return models.Vehicle{}, fmt.Errorf("%w: vin %d", models.ErrVehicleNotFound, vin)
	}
	return v, nil
}

// ByPrice returns vehicles priced within [min, max].
func (s *Service) ByPrice(min, max decimal.Decimal) []models.Vehicle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inv.ByPrice(min, max)
}

// ByMakeModel returns vehicles whose make and model contain the filters; blank filters match all.
func (s *Service) ByMakeModel(makeFilter, modelFilter string) []models.Vehicle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inv.ByMakeModel(makeFilter, modelFilter)
}

// ByYear returns vehicles with a model year within [min, max].
func (s *Service) ByYear(min, max int) []models.Vehicle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inv.ByYear(min, max)
}

// ByColor returns vehicles whose color contains the filter.
func (s *Service) ByColor(color string) []models.Vehicle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inv.ByColor(color)
}

// ByMileage returns vehicles with an odometer reading within [min, max].
func (s *Service) ByMileage(min, max int64) []models.Vehicle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inv.ByMileage(min, max)
}

// ByType returns vehicles whose type contains the filter.
func (s *Service) ByType(vehicleType string) []models.Vehicle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inv.ByType(vehicleType)
}

// AddVehicle validates v and saves the inventory. A VIN collision returns a
// DuplicateKeyError unless replace is set, in which case the stored vehicle is
// overwritten in place. If the save fails the in-memory change is undone.
func (s *Service) AddVehicle(ctx context.Context, v models.Vehicle, replace bool) (replaced bool, err error) {
	v.Make = strings.TrimSpace(v.Make)
	v.Model = strings.TrimSpace(v.Model)
	v.Type = strings.TrimSpace(v.Type)
	v.Color = strings.TrimSpace(v.Color)
	v.Price = v.Price.Round(2)
	if err := v.Validate(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	previous, exists := s.inv.Find(v.VIN)
	switch {
	case exists && !replace:
		return false, &models.DuplicateKeyError{VIN: v.VIN}
	case exists:
		s.inv.Replace(v)
	default:
		s.inv.Add(v)
	}

	if err := s.gateway.Save(ctx, s.inv); err != nil {
		if exists {
			s.inv.Replace(previous)
		} else {
			s.inv.RemoveByVIN(v.VIN)
		}
		return false, err
	}

	s.logger.Info("vehicle stored", zap.Int("vin", v.VIN), zap.Bool("replaced", exists))
	return exists, nil
}

// RemoveVehicle deletes the vehicle and saves the inventory.
func (s *Service) RemoveVehicle(ctx context.Context, vin int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.inv.Find(vin); !ok {
		return fmt.Errorf("%w: vin %d", models.ErrVehicleNotFound, vin)
	}

	before := s.inv.All()
	s.inv.RemoveByVIN(vin)
	if err := s.gateway.Save(ctx, s.inv); err != nil {
		s.inv = rebuild(s.inv.Dealership, before)
		return err
	}

	s.logger.Info("vehicle removed", zap.Int("vin", vin))
	return nil
}

// Repair feeds corrected records through the load rules and saves. Records
// that are still invalid replace the pending bad records of the last load.
func (s *Service) Repair(ctx context.Context, records []string) (models.LoadStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats, err := s.gateway.Repair(ctx, s.inv, records)
	s.stats.BadRecords = append([]string(nil), stats.BadRecords...)
	if err != nil {
		return stats, err
	}

	s.logger.Info("records repaired",
		zap.Int("loaded", stats.Loaded),
		zap.Int("skipped", stats.Skipped),
		zap.Int("duplicate", stats.Duplicate))
	return stats, nil
}

// Quote prices a deal for the vehicle without recording it.
func (s *Service) Quote(vin int, kind models.ContractKind, financed bool) (models.Contract, error) {
	vehicle, err := s.Find(vin)
	if err != nil {
		return models.Contract{}, err
	}

	date := s.now()
	switch kind {
	case models.ContractSale:
		return models.NewSalesContract(date, "", "", vehicle, financed), nil
	case models.ContractLease:
		return models.NewLeaseContract(date, "", "", vehicle), nil
	default:
		return models.Contract{}, fmt.Errorf("%w: unknown kind %q", models.ErrInvalidContract, kind)
	}
}

// Sell records a sales contract for an inventory vehicle.
func (s *Service) Sell(ctx context.Context, req DealRequest) (models.Contract, error) {
	return s.record(ctx, models.ContractSale, req)
}

// Lease records a lease contract for an inventory vehicle.
func (s *Service) Lease(ctx context.Context, req DealRequest) (models.Contract, error) {
	return s.record(ctx, models.ContractLease, req)
}

func (s *Service) record(ctx context.Context, kind models.ContractKind, req DealRequest) (models.Contract, error) {
	contract, err := s.appendContract(ctx, kind, req)
	if err != nil {
		return models.Contract{}, err
	}

	if err := s.notifier.NotifyContract(ctx, contract); err != nil {
		s.logger.Warn("deal notification failed", zap.Int("vin", contract.Vehicle.VIN), zap.Error(err))
	}
	return contract, nil
}

func (s *Service) appendContract(ctx context.Context, kind models.ContractKind, req DealRequest) (models.Contract, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	vehicle, ok := s.inv.Find(req.VIN)
	if !ok {
		return models.Contract{}, fmt.Errorf("%w: vin %d", models.ErrVehicleNotFound, req.VIN)
	}

	date := req.Date
	if date.IsZero() {
		date = s.now()
	}
	name := strings.TrimSpace(req.CustomerName)
	email := strings.TrimSpace(req.CustomerEmail)

	var contract models.Contract
	if kind == models.ContractSale {
		contract = models.NewSalesContract(date, name, email, vehicle, req.Financed)
	} else {
		contract = models.NewLeaseContract(date, name, email, vehicle)
	}
	if err := contract.Validate(); err != nil {
		return models.Contract{}, err
	}

	if s.contracts == nil {
		return models.Contract{}, &models.StoreUnavailableError{Backend: "contracts", Op: "append", Err: errNoContractStore}
	}
	if err := s.contracts.AppendContract(ctx, contract); err != nil {
		s.logger.Error("failed to record contract", zap.Int("vin", vehicle.VIN), zap.Error(err))
		return models.Contract{}, &models.StoreUnavailableError{Backend: "contracts", Op: "append", Err: err}
	}

	s.logger.Info("contract recorded",
		zap.String("kind", string(kind)),
		zap.Int("vin", vehicle.VIN),
		zap.String("total", contract.TotalPrice().StringFixed(2)))
	return contract, nil
}

func rebuild(dealership models.Dealership, vehicles []models.Vehicle) *models.Inventory {
	inv := models.NewInventory(dealership)
	for _, v := range vehicles {
		inv.Add(v)
	}
	return inv
}
