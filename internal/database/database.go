// Package database implements the contest store on SQLite, MySQL and MongoDB.
package database

import (
	"context"
	"fmt"
	"log/slog"

	"refcontest/internal/config"
	"refcontest/internal/contest"
)

// Store is a contest store that owns a connection.
type Store interface {
	contest.Store
	Close()
}

var (
	_ Store = (*SQLStore)(nil)
	_ Store = (*MongoDB)(nil)
)

// Open connects the store selected by conf.Store.Driver.
func Open(ctx context.Context, conf *config.Config, log *slog.Logger) (Store, error) {
	switch conf.Store.Driver {
	case config.DriverSQLite, "":
		return OpenSQLite(ctx, conf.Store.Path, log)
	case config.DriverMySQL:
		return OpenMySQL(ctx, conf.MySQL, log)
	case config.DriverMongo:
		return NewMongoClient(ctx, conf.Mongo, log)
	default:
		return nil, fmt.Errorf("unknown store driver %q", conf.Store.Driver)
	}
}
