//go:build integration

package database

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"github.com/testcontainers/testcontainers-go/modules/mysql"

	"refcontest/internal/config"
)

func TestMySQLStore(t *testing.T) {
	ctx := context.Background()
	container, err := mysql.Run(ctx, "mysql:8.4",
		mysql.WithDatabase("refcontest"),
		mysql.WithUsername("contest"),
		mysql.WithPassword("contest"),
	)
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "3306/tcp")
	require.NoError(t, err)

	root := config.MySQLConfig{
		HostName: host,
		Port:     port.Port(),
		UserName: "root",
		Password: "contest",
	}

	open := func(t *testing.T) Store {
		// a fresh database per test keeps the suite independent
		name := "t_" + uuid.NewString()[:8]
		admin, err := sql.Open("mysql", fmt.Sprintf("%s:%s@tcp(%s:%s)/", root.UserName, root.Password, root.HostName, root.Port))
		require.NoError(t, err)
		_, err = admin.ExecContext(ctx, fmt.Sprintf("CREATE DATABASE %s", name))
		require.NoError(t, err)
		_ = admin.Close()

		conf := root
		conf.Database = name
		store, err := OpenMySQL(ctx, conf, discardLogger())
		require.NoError(t, err)
		return store
	}
	suite.Run(t, &StoreSuite{open: open})
}

func TestMongoStore(t *testing.T) {
	ctx := context.Background()
	container, err := mongodb.Run(ctx, "mongo:7", mongodb.WithReplicaSet("rs0"))
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	open := func(t *testing.T) Store {
		conf := config.MongoConfig{Database: "t_" + uuid.NewString()[:8]}
		store, err := ConnectMongo(ctx, uri, conf, discardLogger())
		require.NoError(t, err)
		return store
	}
	suite.Run(t, &StoreSuite{open: open})
}
