// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TourMind Contributors

//go:build integration

package neo4j_test

import (
	"context"
	"os"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	tcneo4j "github.com/testcontainers/testcontainers-go/modules/neo4j"

	"github.com/tourmind/tourmind/internal/graph"
)

const testPassword = "tourmind-test"

// testDriver is the shared graph connection for integration tests.
var testDriver neo4j.DriverWithContext

// testCleanup is called to terminate the container after tests.
var testCleanup func()

// TestMain sets up a Neo4j testcontainer, runs migrations, and opens the
// shared driver.
func TestMain(m *testing.M) {
	ctx := context.Background()

	container, err := tcneo4j.Run(ctx, "neo4j:5", tcneo4j.WithAdminPassword(testPassword))
	if err != nil {
		panic("failed to start neo4j container: " + err.Error())
	}

	uri, err := container.BoltUrl(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		panic("failed to get bolt url: " + err.Error())
	}

	migrator, err := graph.NewMigrator(uri, "neo4j", testPassword)
	if err != nil {
		_ = container.Terminate(ctx)
		panic("failed to create migrator: " + err.Error())
	}
	if err := migrator.Up(); err != nil {
		_ = migrator.Close()
		_ = container.Terminate(ctx)
		panic("failed to run migrations: " + err.Error())
	}
	if err := migrator.Close(); err != nil {
		_ = container.Terminate(ctx)
		panic("failed to close migrator: " + err.Error())
	}

	driver, err := graph.Connect(ctx, graph.Config{
		URI:      uri,
		Username: "neo4j",
		Password: testPassword,
	})
	if err != nil {
		_ = container.Terminate(ctx)
		panic("failed to connect: " + err.Error())
	}

	testDriver = driver
	testCleanup = func() {
		_ = driver.Close(ctx)
		_ = container.Terminate(ctx)
	}

	code := m.Run()

	testCleanup()

	os.Exit(code)
}

// deleteUser removes a test user and everything attached to it.
func deleteUser(t *testing.T, username string) {
	t.Helper()
	t.Cleanup(func() {
		_, _ = neo4j.ExecuteQuery(context.Background(), testDriver,
			`MATCH (u:User {username: $username}) DETACH DELETE u`,
			map[string]any{"username": username},
			neo4j.EagerResultTransformer)
	})
}
