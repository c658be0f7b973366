package config

import (
	"context"
	"errors"

	"github.com/equilobe/library-go/librarystore/postgresengine"
)

// OpenStore connects with the configured driver and builds a postgresengine.Store on top.
// The returned close function releases all connections.
func OpenStore(ctx context.Context, cfg Config, options ...postgresengine.Option) (*postgresengine.Store, func(), error) {
	switch cfg.DBAdapter {
	case AdapterPGXPool:
		return openPGXStore(ctx, cfg, options...)

	case AdapterSQLDB:
		return openSQLDBStore(ctx, cfg, options...)

	case AdapterSQLX:
		db, err := NewSQLX(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}

		closeFn := func() { _ = db.Close() }

		store, err := postgresengine.NewStoreFromSQLX(db, options...)
		if err != nil {
			closeFn()
			return nil, nil, err
		}

		return store, closeFn, nil

	default:
		return nil, nil, errors.Join(ErrInvalidConfig, errors.New("unknown dbAdapter "+cfg.DBAdapter))
	}
}

func openPGXStore(ctx context.Context, cfg Config, options ...postgresengine.Option) (*postgresengine.Store, func(), error) {
	pool, err := NewPGXPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}

	if cfg.ReplicaDatabaseURL == "" {
		store, storeErr := postgresengine.NewStoreFromPGXPool(pool, options...)
		if storeErr != nil {
			pool.Close()
			return nil, nil, storeErr
		}

		return store, pool.Close, nil
	}

	replica, err := NewPGXPool(ctx, cfg.ReplicaDatabaseURL)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}

	closeFn := func() {
		replica.Close()
		pool.Close()
	}

	store, err := postgresengine.NewStoreFromPGXPoolAndReplica(pool, replica, options...)
	if err != nil {
		closeFn()
		return nil, nil, err
	}

	return store, closeFn, nil
}

func openSQLDBStore(ctx context.Context, cfg Config, options ...postgresengine.Option) (*postgresengine.Store, func(), error) {
	db, err := NewSQLDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}

	if cfg.ReplicaDatabaseURL == "" {
		store, storeErr := postgresengine.NewStoreFromSQLDB(db, options...)
		if storeErr != nil {
			_ = db.Close()
			return nil, nil, storeErr
		}

		return store, func() { _ = db.Close() }, nil
	}

	replica, err := NewSQLDB(ctx, cfg.ReplicaDatabaseURL)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	closeFn := func() {
		_ = replica.Close()
		_ = db.Close()
	}

	store, err := postgresengine.NewStoreFromSQLDBAndReplica(db, replica, options...)
	if err != nil {
		closeFn()
		return nil, nil, err
	}

	return store, closeFn, nil
}
