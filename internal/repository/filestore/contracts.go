package filestore

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/teagang/dealership/internal/domain/models"
)

// ContractLog appends contract records to a pipe-delimited log file.
type ContractLog struct {
	path   string
	logger *zap.Logger
}

// NewContractLog builds an append-only contract log at path.
func NewContractLog(path string, logger *zap.Logger) *ContractLog {
	if logger == nil {
		logger = zap.NewNop()
	}
	if path == "" {
		path = DefaultContractsFile
	}
	return &ContractLog{path: path, logger: logger}
}

// AppendContract writes one record line for the contract.
func (l *ContractLog) AppendContract(ctx context.Context, contract models.Contract) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	file, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, filePerm)
	if err != nil {
		return fmt.Errorf("open contract log %s: %w", l.path, err)
	}

	if _, err := file.WriteString(contract.Record() + "\n"); err != nil {
		_ = file.Close()
		return fmt.Errorf("append contract to %s: %w", l.path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close contract log %s: %w", l.path, err)
	}

	l.logger.Debug("contract appended", zap.String("kind", string(contract.Kind)), zap.Int("vin", contract.Vehicle.VIN))
	return nil
}
