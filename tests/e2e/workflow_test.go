package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestE2E_CompleteGraphRunLifecycle exercises the full stack against a
// running server: graph authoring, run creation, engine execution, and
// event-sourced state persisted through to the read side. The graph is
// a three-node "start -> print" flow carrying a string constant across a
// data edge, covering both control-flow and data-dependency edges in
// one pass.
//
// 1. HTTP API (graphs, runs)
// 2. Graph binding against the registered brick pack
// 3. Event sourcing (domain events persisted, outbox relayed to NATS)
// 4. Graph execution engine (S0-S5 step loop)
// 5. Run status transitions through to completion
func TestE2E_CompleteGraphRunLifecycle(t *testing.T) {
	harness := SetupE2ETest(t)

	t.Log("Creating graph...")
	g := createGraph(t, harness, startPrintDocument())
	graphID, ok := g["id"].(string)
	require.True(t, ok && graphID != "", "graph id should not be empty")
	t.Logf("Created graph: %s", graphID)

	t.Log("Starting run...")
	run := createRun(t, harness, graphID, map[string]interface{}{"mode": "normal"})
	runID, ok := run["id"].(string)
	require.True(t, ok && runID != "", "run id should not be empty")
	t.Logf("Created run: %s", runID)

	t.Log("Waiting for run to complete...")
	finalRun := waitForRunCompletion(t, harness, runID, 30)

	t.Log("Verifying final run state...")
	assert.Equal(t, "completed", finalRun["status"], "run should be completed")
	assert.NotNil(t, finalRun["completed_at"], "run should have a completion timestamp")
}

// TestE2E_SteppedRunAdvancesOneTickAtATime exercises stepped mode: the
// engine should make no progress until Step is called, and each Step
// call should advance exactly one micro-tick.
func TestE2E_SteppedRunAdvancesOneTickAtATime(t *testing.T) {
	harness := SetupE2ETest(t)

	g := createGraph(t, harness, startPrintDocument())
	graphID := g["id"].(string)

	run := createRun(t, harness, graphID, map[string]interface{}{"mode": "stepped"})
	runID := run["id"].(string)
	assert.Equal(t, "running", run["status"], "stepped run should be running once created and advance only on Step calls")

	for i := 0; i < 10; i++ {
		done := stepRun(t, harness, runID)
		if done {
			break
		}
	}

	final := getRun(t, harness, runID)
	assert.Contains(t, []interface{}{"completed", "errored"}, final["status"],
		"stepped run should reach a terminal state within 10 steps")
}

// TestE2E_RunWithUnknownGraphReturnsNotFound verifies that starting a
// run against a nonexistent graph surfaces a 404 rather than a 500 or
// a silently-created dangling run.
func TestE2E_RunWithUnknownGraphReturnsNotFound(t *testing.T) {
	harness := SetupE2ETest(t)

	body, _ := json.Marshal(map[string]interface{}{"mode": "normal"})
	resp, err := harness.HTTPClient.Post(
		harness.URL("/graphs/00000000-0000-0000-0000-000000000000/runs"),
		"application/json", bytes.NewBuffer(body),
	)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "starting a run on an unknown graph should 404")
}

// Helper functions and fixtures

// startPrintDocument builds a minimal three-node graph: a start node
// raises its "begin" execution output into print's "execute" input,
// while a string constant feeds print's "value" input over a data
// edge. Exercises both control-flow and data-dependency edges.
func startPrintDocument() map[string]interface{} {
	return map[string]interface{}{
		"nodes": []map[string]interface{}{
			{
				"id":       "start-1",
				"position": map[string]float64{"x": 0, "y": 0},
				"type":     "v1",
				"data":     map[string]interface{}{"brickId": "start"},
			},
			{
				"id":       "const-1",
				"position": map[string]float64{"x": 0, "y": 120},
				"type":     "v1",
				"data": map[string]interface{}{
					"brickId":   "const_string",
					"arguments": map[string]string{"value": "hello from e2e"},
				},
			},
			{
				"id":       "print-1",
				"position": map[string]float64{"x": 200, "y": 60},
				"type":     "v1",
				"data":     map[string]interface{}{"brickId": "print"},
			},
		},
		"edges": []map[string]interface{}{
			{
				"id":           "e-control",
				"source":       "start-1",
				"sourceHandle": "begin",
				"target":       "print-1",
				"targetHandle": "execute",
			},
			{
				"id":           "e-data",
				"source":       "const-1",
				"sourceHandle": "out",
				"target":       "print-1",
				"targetHandle": "value",
			},
		},
	}
}

func createGraph(t *testing.T, h *TestHarness, document map[string]interface{}) map[string]interface{} {
	t.Helper()

	payload := map[string]interface{}{
		"name":        "e2e test graph",
		"description": "created by an end-to-end test",
		"document":    document,
	}
	body, _ := json.Marshal(payload)
	resp, err := h.HTTPClient.Post(h.URL("/graphs"), "application/json", bytes.NewBuffer(body))
	require.NoError(t, err, "failed to create graph")
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode, "create graph should return 201. Body: %s", string(bodyBytes))

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(bodyBytes, &result), "failed to decode graph response")
	return result
}

func createRun(t *testing.T, h *TestHarness, graphID string, payload map[string]interface{}) map[string]interface{} {
	t.Helper()

	body, _ := json.Marshal(payload)
	url := h.URL(fmt.Sprintf("/graphs/%s/runs", graphID))
	resp, err := h.HTTPClient.Post(url, "application/json", bytes.NewBuffer(body))
	require.NoError(t, err, "failed to create run")
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode, "create run should return 201. Body: %s", string(bodyBytes))

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(bodyBytes, &result), "failed to decode run response")
	return result
}

func getRun(t *testing.T, h *TestHarness, runID string) map[string]interface{} {
	t.Helper()

	resp, err := h.HTTPClient.Get(h.URL("/runs/" + runID))
	require.NoError(t, err, "failed to get run")
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode, "get run should return 200. Body: %s", string(bodyBytes))

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(bodyBytes, &result), "failed to decode run response")
	return result
}

// stepRun advances a stepped-mode run by one engine tick and reports
// whether the run reached a terminal state.
func stepRun(t *testing.T, h *TestHarness, runID string) bool {
	t.Helper()

	resp, err := h.HTTPClient.Post(h.URL("/runs/"+runID+"/step"), "application/json", nil)
	require.NoError(t, err, "failed to step run")
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode, "step run should return 200. Body: %s", string(bodyBytes))

	var result struct {
		Done bool `json:"done"`
	}
	require.NoError(t, json.Unmarshal(bodyBytes, &result))
	return result.Done
}

func waitForRunCompletion(t *testing.T, h *TestHarness, runID string, timeoutSeconds int) map[string]interface{} {
	t.Helper()

	for i := 0; i < timeoutSeconds; i++ {
		run := getRun(t, h, runID)

		status, ok := run["status"].(string)
		require.True(t, ok, "invalid status type in run response: %v", run["status"])

		t.Logf("Run %s status: %s (attempt %d/%d)", runID, status, i+1, timeoutSeconds)

		switch status {
		case "completed", "errored", "cancelled":
			return run
		}

		time.Sleep(1 * time.Second)
	}

	t.Fatalf("run %s did not complete within %d seconds", runID, timeoutSeconds)
	return nil
}
