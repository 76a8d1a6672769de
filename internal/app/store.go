package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/teagang/dealership/internal/config"
	"github.com/teagang/dealership/internal/repository/filestore"
	"github.com/teagang/dealership/internal/repository/mongodb"
	"github.com/teagang/dealership/internal/repository/postgres"
	"github.com/teagang/dealership/internal/repository/sheets"
	"github.com/teagang/dealership/internal/service/dealer"
	"github.com/teagang/dealership/internal/service/notify"
	"github.com/teagang/dealership/internal/service/persistence"
	whatsappclient "github.com/teagang/dealership/pkg/clients/whatsapp"
	"github.com/teagang/dealership/pkg/logger"
)

// Store is the backend selected by DEALER_STORE together with its contract log.
type Store struct {
	Backend   persistence.Backend
	Contracts persistence.ContractStore
	close     func(context.Context) error
}

// Close releases connections held by the backend.
func (s *Store) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}

// OpenStore connects the configured backend.
func OpenStore(ctx context.Context, cfg *config.Config, base *zap.Logger) (*Store, error) {
	switch cfg.Store.Backend {
	case config.StoreFile:
		return &Store{
			Backend:   filestore.NewInventoryRepository(cfg.Store.InventoryFile, logger.Named(base, "repo.file")),
			Contracts: filestore.NewContractLog(cfg.Store.ContractsFile, logger.Named(base, "repo.contracts")),
		}, nil

	case config.StorePostgres:
		db, err := postgres.Open(cfg.Postgres.DSN)
		if err != nil {
			return nil, err
		}
		repo := postgres.NewRepository(db, cfg.Store.DealershipID, logger.Named(base, "repo.postgres"))
		if err := repo.Migrate(ctx); err != nil {
			_ = repo.Close()
			return nil, err
		}
		return &Store{
			Backend:   repo,
			Contracts: repo,
			close:     func(context.Context) error { return repo.Close() },
		}, nil

	case config.StoreMongoDB:
		repo, err := mongodb.NewMongoDBRepository(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName, cfg.Store.DealershipID, logger.Named(base, "repo.mongodb"))
		if err != nil {
			return nil, err
		}
		return &Store{Backend: repo, Contracts: repo, close: repo.Close}, nil

	case config.StoreSheets:
		sheetsRepo, err := sheets.NewGoogleSheetRepository(ctx, cfg.Sheets, logger.Named(base, "repo.sheets"))
		if err != nil {
			return nil, err
		}
		store := sheets.NewInventoryStore(sheetsRepo, logger.Named(base, "repo.sheets"))
		return &Store{Backend: store, Contracts: store}, nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// NewNotifier returns the WhatsApp notifier when configured, otherwise a no-op.
func NewNotifier(cfg *config.Config, base *zap.Logger) notify.Notifier {
	if !cfg.WhatsApp.Enabled() {
		base.Info("whatsapp notifications disabled")
		return notify.Nop{}
	}
	client := whatsappclient.NewClient(cfg.WhatsApp)
	return notify.NewWhatsAppNotifier(cfg.WhatsApp, client, logger.Named(base, "svc.notify"))
}

// NewDealer wires the gateway and dealer service over store and loads the
// inventory. A store failure on load is logged and the default inventory kept.
func NewDealer(ctx context.Context, store *Store, notifier notify.Notifier, base *zap.Logger) *dealer.Service {
	gateway := persistence.NewGateway(store.Backend, logger.Named(base, "svc.persistence"))
	svc := dealer.NewService(gateway, store.Contracts, notifier, logger.Named(base, "svc.dealer"))
	if _, err := svc.Load(ctx); err != nil {
		base.Error("inventory load failed, starting with the default dealership", zap.Error(err))
	}
	return svc
}
