// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TourMind Contributors

//go:build integration

package cli_test

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
)

// serviceStatus mirrors the JSON the status command emits.
type serviceStatus struct {
	Service   string `json:"service"`
	Reachable bool   `json:"reachable"`
	Detail    string `json:"detail"`
	Error     string `json:"error"`
}

var _ = Describe("Status Command", func() {
	It("reports the graph as reachable in JSON", func() {
		stdout, stderr, err := runCLI(append([]string{"status", "--json"}, graphFlags()...)...)
		Expect(err).NotTo(HaveOccurred(), "status command failed: %s", stderr)

		var statuses []serviceStatus
		Expect(json.Unmarshal([]byte(stdout), &statuses)).To(Succeed(), "stdout was not JSON: %s", stdout)
		Expect(statuses).To(HaveLen(3))

		byService := make(map[string]serviceStatus, len(statuses))
		for _, s := range statuses {
			byService[s.Service] = s
		}

		Expect(byService["graph"].Reachable).To(BeTrue(), "graph error: %s", byService["graph"].Error)
		Expect(byService["graph"].Detail).To(Equal(env.uri))

		// No model endpoint is guaranteed in CI, so only its presence is
		// checked, not its state.
		Expect(byService).To(HaveKey("llm"))

		Expect(byService["weather"].Reachable).To(BeFalse())
		Expect(byService["weather"].Detail).To(Equal("API key not configured"))
		Expect(byService["weather"].Error).To(BeEmpty())
	})

	It("marks the weather check as skipped in the table", func() {
		stdout, stderr, err := runCLI(append([]string{"status"}, graphFlags()...)...)
		Expect(err).NotTo(HaveOccurred(), "status command failed: %s", stderr)
		Expect(stdout).To(ContainSubstring("SERVICE"))
		Expect(stdout).To(ContainSubstring("graph"))
		Expect(stdout).To(ContainSubstring("ok"))
		Expect(stdout).To(ContainSubstring("skipped"))
		Expect(stdout).To(ContainSubstring("API key not configured"))
	})
})
