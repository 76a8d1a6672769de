package filestore

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/teagang/dealership/internal/domain/models"
)

const (
	// DefaultInventoryFile is the inventory file name used when none is configured.
	DefaultInventoryFile = "inventory.csv"
	// DefaultContractsFile is the contract log file name used when none is configured.
	DefaultContractsFile = "contracts.csv"

	filePerm = 0o644
)

// InventoryRepository stores the inventory as a pipe-delimited flat file.
type InventoryRepository struct {
	path   string
	logger *zap.Logger
}

// NewInventoryRepository builds a file backed inventory store at path.
func NewInventoryRepository(path string, logger *zap.Logger) *InventoryRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	if path == "" {
		path = DefaultInventoryFile
	}
	return &InventoryRepository{path: path, logger: logger}
}

// Name identifies the backend in logs and errors.
func (r *InventoryRepository) Name() string { return "file" }

// Path returns the inventory file location.
func (r *InventoryRepository) Path() string { return r.path }

// Fetch reads the header line and every following line. A missing file means
// no stored inventory.
func (r *InventoryRepository) Fetch(ctx context.Context) (*models.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open inventory file %s: %w", r.path, err)
	}
	defer func() { _ = file.Close() }()

	snapshot := &models.Snapshot{}
	scanner := bufio.NewScanner(file)
	first := true
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if first {
			snapshot.Header = line
			first = false
			continue
		}
		snapshot.Records = append(snapshot.Records, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read inventory file %s: %w", r.path, err)
	}

	r.logger.Debug("inventory file read", zap.String("path", r.path), zap.Int("records", len(snapshot.Records)))
	return snapshot, nil
}

// Store rewrites the whole file through a temp file renamed over the target,
// so a failed write leaves the previous file untouched.
func (r *InventoryRepository) Store(ctx context.Context, dealership models.Dealership, vehicles []models.Vehicle) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString(dealership.Record())
	b.WriteByte('\n')
	for _, v := range vehicles {
		b.WriteString(v.Record())
		b.WriteByte('\n')
	}

	if err := atomicWriteFile(r.path, []byte(b.String()), filePerm); err != nil {
		return fmt.Errorf("write inventory file %s: %w", r.path, err)
	}
	return nil
}

// atomicWriteFile writes content to path by writing to a temp file in the same directory
// and then renaming it over the destination.
func atomicWriteFile(path string, content []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	base := filepath.Base(path)

	tmp, err := os.CreateTemp(dir, base+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}
