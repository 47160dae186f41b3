package cas

import (
	"go.trai.ch/delta/internal/core/domain"
	"go.trai.ch/delta/internal/core/ports"
	"go.trai.ch/zerr"
)

// Open returns the match store selected by settings.
func Open(settings domain.Settings, logger ports.Logger) (ports.MatchStore, error) {
	switch settings.StoreBackend {
	case domain.StoreBackendJSON, "":
		return NewStore(settings.StorePath), nil
	case domain.StoreBackendBadger:
		cfg := DefaultBadgerConfig(settings.StorePath)
		cfg.Logger = logger
		return openBadger(cfg)
	case domain.StoreBackendMemory:
		cfg := InMemoryBadgerConfig()
		cfg.Logger = logger
		return openBadger(cfg)
	default:
		return nil, zerr.With(
			zerr.Wrap(domain.ErrUnknownStoreBackend, "failed to open match store"),
			"backend", settings.StoreBackend,
		)
	}
}

func openBadger(cfg BadgerConfig) (ports.MatchStore, error) {
	store, err := OpenBadger(cfg)
	if err != nil {
		return nil, err
	}
	return store, nil
}
