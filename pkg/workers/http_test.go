package workers_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordinoproj/ordino/pkg/models"
	"github.com/ordinoproj/ordino/pkg/registry"
	"github.com/ordinoproj/ordino/pkg/workers"
)

func TestHTTPTransportSend(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, http.MethodPost, request.Method)
		assert.Equal(t, "/workers/design-reviewer", request.URL.Path)
		assert.Equal(t, "application/json", request.Header.Get("Content-Type"))

		var body map[string]any

		err := json.NewDecoder(request.Body).Decode(&body)
		assert.NoError(t, err)
		assert.Equal(t, "review the payment design document", body["description"])
		assert.NotEmpty(t, body["id"])

		response := map[string]any{
			"complianceRate":   92.0,
			"unfulfilledItems": []string{},
		}

		writer.Header().Set("Content-Type", "application/json")

		err = json.NewEncoder(writer).Encode(response)
		if err != nil {
			http.Error(writer, err.Error(), http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	transport := workers.NewHTTPTransport(server.URL, slog.Default())

	outputs, err := transport.Send(context.Background(), &models.DelegationRequest{
		ID:          "req-1",
		WorkerType:  registry.WorkerDesignReviewer,
		Description: "review the payment design document",
	})
	require.NoError(t, err)

	assert.InEpsilon(t, 92.0, outputs["complianceRate"], 0.0001)
}

func TestHTTPTransportWorkerReportedFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.Header().Set("Content-Type", "application/json")
		writer.WriteHeader(http.StatusInternalServerError)

		_ = json.NewEncoder(writer).Encode(map[string]any{"error": "reviewer crashed"})
	}))
	defer server.Close()

	transport := workers.NewHTTPTransport(server.URL, slog.Default())

	_, err := transport.Send(context.Background(), &models.DelegationRequest{
		ID:          "req-2",
		WorkerType:  registry.WorkerDesignReviewer,
		Description: "review",
	})
	require.Error(t, err)

	assert.True(t, workers.IsWorkerFailure(err))
	assert.Contains(t, err.Error(), "reviewer crashed")
}

func TestHTTPTransportErrorStatusWithoutBody(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		http.Error(writer, "not here", http.StatusNotFound)
	}))
	defer server.Close()

	transport := workers.NewHTTPTransport(server.URL, slog.Default())

	_, err := transport.Send(context.Background(), &models.DelegationRequest{
		ID:          "req-3",
		WorkerType:  registry.WorkerCodeFixer,
		Description: "fix",
	})
	require.Error(t, err)

	assert.True(t, workers.IsWorkerFailure(err))
	assert.Contains(t, err.Error(), "status 404")
}

func TestHTTPTransportUndecodableResponse(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		_, _ = writer.Write([]byte("this is not json"))
	}))
	defer server.Close()

	transport := workers.NewHTTPTransport(server.URL, slog.Default())

	_, err := transport.Send(context.Background(), &models.DelegationRequest{
		ID:          "req-4",
		WorkerType:  registry.WorkerCodeFixer,
		Description: "fix",
	})
	require.Error(t, err)

	assert.True(t, workers.IsProtocol(err))
}

func TestHTTPTransportThroughClientTimeout(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)

		_ = json.NewEncoder(writer).Encode(map[string]any{"approved": true})
	}))
	defer server.Close()

	transport := workers.NewHTTPTransport(server.URL, slog.Default())
	client := workers.NewClient(newTestRegistry(), transport, nil, nil, slog.Default(), 50*time.Millisecond)

	result, err := client.Invoke(context.Background(), "wf-1", &models.DelegationRequest{
		WorkerType:  registry.WorkerQualityChecker,
		Description: "check applied fixes",
	})
	require.Error(t, err)

	assert.True(t, workers.IsTimeout(err))
	assert.Equal(t, models.DelegationOutcomeTimeout, result.Outcome)
}
