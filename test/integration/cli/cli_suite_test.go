// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TourMind Contributors

//go:build integration

package cli_test

import (
	"bytes"
	"context"
	"os/exec"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/testcontainers/testcontainers-go"
	tcneo4j "github.com/testcontainers/testcontainers-go/modules/neo4j"

	"github.com/tourmind/tourmind/internal/graph"
)

func TestCLI(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "CLI Integration Suite")
}

const graphPassword = "tourmind-test"

// testEnv holds the graph container the CLI subprocesses run against and
// a driver for verifying what they wrote.
type testEnv struct {
	ctx       context.Context
	container testcontainers.Container
	driver    neo4j.DriverWithContext
	uri       string
}

var env *testEnv

var _ = BeforeSuite(func() {
	var err error
	env, err = setupCLITestEnv()
	Expect(err).NotTo(HaveOccurred())
})

var _ = AfterSuite(func() {
	if env != nil {
		env.cleanup()
	}
})

func setupCLITestEnv() (*testEnv, error) {
	ctx := context.Background()

	container, err := tcneo4j.Run(ctx, "neo4j:5", tcneo4j.WithAdminPassword(graphPassword))
	if err != nil {
		return nil, err
	}

	uri, err := container.BoltUrl(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}

	driver, err := graph.Connect(ctx, graph.Config{
		URI:      uri,
		Username: "neo4j",
		Password: graphPassword,
		Database: graph.DefaultDatabase,
	})
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}

	return &testEnv{ctx: ctx, container: container, driver: driver, uri: uri}, nil
}

func (e *testEnv) cleanup() {
	if e.driver != nil {
		_ = e.driver.Close(e.ctx)
	}
	if e.container != nil {
		_ = e.container.Terminate(e.ctx)
	}
}

// runCLI executes the tourmind binary from source. Stdout and stderr come
// back separately; slog writes to stderr, so JSON on stdout stays
// parseable. XDG_CONFIG_HOME points at an empty directory to keep a
// developer's config file out of the run.
func runCLI(args ...string) (stdout, stderr string, err error) {
	cmd := exec.CommandContext(env.ctx, "go", append([]string{"run", "."}, args...)...)
	cmd.Dir = "../../../cmd/tourmind"
	cmd.Env = append(cmd.Environ(), "XDG_CONFIG_HOME="+GinkgoT().TempDir())

	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf
	err = cmd.Run()
	return outBuf.String(), errBuf.String(), err
}

// graphFlags points a subcommand at the suite's container.
func graphFlags() []string {
	return []string{"--graph-uri", env.uri, "--graph-password", graphPassword}
}

// countNodes runs a Cypher query that returns a single count named n.
func countNodes(query string, params map[string]any) int64 {
	GinkgoHelper()

	result, err := neo4j.ExecuteQuery(env.ctx, env.driver, query, params,
		neo4j.EagerResultTransformer, neo4j.ExecuteQueryWithDatabase(graph.DefaultDatabase))
	Expect(err).NotTo(HaveOccurred())
	Expect(result.Records).To(HaveLen(1))

	n, _, err := neo4j.GetRecordValue[int64](result.Records[0], "n")
	Expect(err).NotTo(HaveOccurred())
	return n
}
