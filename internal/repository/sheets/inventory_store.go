package sheets

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/teagang/dealership/internal/domain/models"
)

const (
	inventorySheet = "Inventory"
	// InventoryRange covers the header row and every vehicle row.
	InventoryRange = inventorySheet + "!A:H"
	// ContractsRange receives one appended row per contract.
	ContractsRange = "Contracts!A:P"
)

// InventoryStore keeps the inventory on the Inventory tab (row 1 is the
// dealership header) and appends contracts to the Contracts tab.
type InventoryStore struct {
	repo   Repository
	logger *zap.Logger
}

// NewInventoryStore wraps a sheet repository as an inventory backend.
func NewInventoryStore(repo Repository, logger *zap.Logger) *InventoryStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryStore{repo: repo, logger: logger}
}

// Name identifies the backend in logs and errors.
func (s *InventoryStore) Name() string { return "sheets" }

// Fetch reads the Inventory tab. An empty tab means no stored inventory.
func (s *InventoryStore) Fetch(ctx context.Context) (*models.Snapshot, error) {
	rows, err := s.repo.ReadRange(ctx, InventoryRange)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	snapshot := &models.Snapshot{
		Header:  joinCells(rows[0]),
		Records: make([]string, 0, len(rows)-1),
	}
	for _, row := range rows[1:] {
		snapshot.Records = append(snapshot.Records, joinCells(row))
	}
	return snapshot, nil
}

// Store overwrites the tab from A1 and clears any rows left over from a
// longer previous inventory.
func (s *InventoryStore) Store(ctx context.Context, dealership models.Dealership, vehicles []models.Vehicle) error {
	rows := make([][]interface{}, 0, len(vehicles)+1)
	rows = append(rows, []interface{}{dealership.Name, dealership.Address, dealership.Phone})
	for _, v := range vehicles {
		rows = append(rows, splitCells(v.Record()))
	}

	target := fmt.Sprintf("%s!A1:H%d", inventorySheet, len(rows))
	if err := s.repo.UpdateRange(ctx, target, rows); err != nil {
		return err
	}

	tail := fmt.Sprintf("%s!A%d:H", inventorySheet, len(rows)+1)
	if err := s.repo.ClearRange(ctx, tail); err != nil {
		return err
	}

	s.logger.Debug("inventory written to sheet", zap.Int("vehicles", len(vehicles)))
	return nil
}

// AppendContract appends the contract record as one row.
func (s *InventoryStore) AppendContract(ctx context.Context, contract models.Contract) error {
	return s.repo.WriteRow(ctx, ContractsRange, splitCells(contract.Record()))
}

func joinCells(row []interface{}) string {
	cells := make([]string, len(row))
	for i, cell := range row {
		cells[i] = strings.TrimSpace(fmt.Sprint(cell))
	}
	return strings.Join(cells, models.FieldSeparator)
}

func splitCells(record string) []interface{} {
	parts := strings.Split(record, models.FieldSeparator)
	cells := make([]interface{}, len(parts))
	for i, part := range parts {
		cells[i] = part
	}
	return cells
}
