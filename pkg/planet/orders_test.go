package planet

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeOrders simulates the orders API: each order serves its configured
// state sequence, then deliveries once ready.
type fakeOrders struct {
	t *testing.T
	// states per item id, consumed one per GET; the last entry repeats.
	states map[string][]string
	polls  map[string]int
	orders map[string]string // order id -> item id
}

func newFakeOrders(t *testing.T, states map[string][]string) *fakeOrders {
	return &fakeOrders{
		t:      t,
		states: states,
		polls:  map[string]int{},
		orders: map[string]string{},
	}
}

func (f *fakeOrders) stateFor(itemID string) string {
	seq := f.states[itemID]
	if len(seq) == 0 {
		return "success"
	}
	i := f.polls[itemID]
	if i >= len(seq) {
		i = len(seq) - 1
	}
	f.polls[itemID]++
	return seq[i]
}

func (f *fakeOrders) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /orders/v2", func(w http.ResponseWriter, r *http.Request) {
		var req orderRequest
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(f.t, req.Products, 1)
		require.Len(f.t, req.Products[0].ItemIDs, 1)
		require.Len(f.t, req.Tools, 1)
		require.NotNil(f.t, req.Tools[0].Clip)
		require.NotNil(f.t, req.Tools[0].Clip.AOI)

		itemID := req.Products[0].ItemIDs[0]
		orderID := "order-" + itemID
		f.orders[orderID] = itemID
		writeJSON(f.t, w, Order{ID: orderID, Name: req.Name, State: "queued"})
	})

	mux.HandleFunc("GET /orders/v2/{id}", func(w http.ResponseWriter, r *http.Request) {
		orderID := r.PathValue("id")
		itemID, ok := f.orders[orderID]
		if !ok {
			http.NotFound(w, r)
			return
		}
		order := Order{ID: orderID, State: f.stateFor(itemID)}
		if stateOf(order.State) == OrderReady {
			order.Links.Results = []OrderDelivery{
				{
					Name:     fmt.Sprintf("files/%s.tif", itemID),
					Location: fmt.Sprintf("http://%s/deliveries/%s.tif", r.Host, itemID),
				},
				{
					Name:     fmt.Sprintf("files/%s_metadata.json", itemID),
					Location: fmt.Sprintf("http://%s/deliveries/%s_metadata.json", r.Host, itemID),
				},
			}
		}
		writeJSON(f.t, w, order)
	})

	mux.HandleFunc("GET /deliveries/{name}", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "payload-%s", r.PathValue("name"))
	})

	return mux
}

func instantSleeper(context.Context, time.Duration) error { return nil }

func testBatchParams(t *testing.T, saveDir string, ids ...string) BatchParams {
	t.Helper()
	return BatchParams{
		AOI:         testAOI(t),
		FeatureName: "reservoir",
		ItemIDs:     ids,
		ItemType:    "PSOrthoTile",
		SaveDir:     saveDir,
	}
}

func TestClipBatchHappyPath(t *testing.T) {
	fake := newFakeOrders(t, map[string][]string{
		"a": {"queued", "running", "success"},
		"b": {"success"},
	})
	client := newTestClient(t, fake.handler())
	saveDir := filepath.Join(t.TempDir(), "clips")

	report, err := client.Orders().ClipBatch(context.Background(),
		testBatchParams(t, saveDir, "a", "b"),
		WithSleeper(instantSleeper),
	)
	require.NoError(t, err)
	require.Len(t, report.Results, 2)
	assert.Equal(t, []string{"a", "b"}, report.Succeeded())
	assert.Empty(t, report.Failed())

	data, err := os.ReadFile(filepath.Join(saveDir, "reservoir_a_a.tif"))
	require.NoError(t, err)
	assert.Equal(t, "payload-a.tif", string(data))

	_, err = os.Stat(filepath.Join(saveDir, "reservoir_b_b_metadata.json"))
	assert.NoError(t, err, "metadata sidecar downloaded too")
}

func TestClipBatchIsolatesTimeouts(t *testing.T) {
	states := map[string][]string{
		"item-1": {"success"},
		"item-2": {"success"},
		"item-3": {"running"}, // never becomes ready
		"item-4": {"success"},
		"item-5": {"success"},
	}
	fake := newFakeOrders(t, states)
	client := newTestClient(t, fake.handler())
	saveDir := filepath.Join(t.TempDir(), "clips")

	report, err := client.Orders().ClipBatch(context.Background(),
		testBatchParams(t, saveDir, "item-1", "item-2", "item-3", "item-4", "item-5"),
		WithSleeper(instantSleeper),
		WithMaxPollAttempts(3),
	)
	require.NoError(t, err, "per-item failures must not abort the batch")
	require.Len(t, report.Results, 5)

	assert.Equal(t, []string{"item-1", "item-2", "item-4", "item-5"}, report.Succeeded())

	failed := report.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "item-3", failed[0].ItemID)
	var timeoutErr *TimeoutError
	require.ErrorAs(t, failed[0].Err, &timeoutErr)
	assert.Equal(t, 3, timeoutErr.Attempts)

	entries, err := os.ReadDir(saveDir)
	require.NoError(t, err)
	for _, entry := range entries {
		assert.NotContains(t, entry.Name(), "item-3", "no partial file for the timed-out item")
	}
}

func TestClipBatchFailedOrder(t *testing.T) {
	fake := newFakeOrders(t, map[string][]string{
		"bad":  {"queued", "failed"},
		"good": {"success"},
	})
	client := newTestClient(t, fake.handler())
	saveDir := t.TempDir()

	report, err := client.Orders().ClipBatch(context.Background(),
		testBatchParams(t, saveDir, "bad", "good"),
		WithSleeper(instantSleeper),
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"good"}, report.Succeeded())
	failed := report.Failed()
	require.Len(t, failed, 1)
	var actErr *ActivationError
	require.ErrorAs(t, failed[0].Err, &actErr)
	assert.Equal(t, "bad", actErr.ItemID)
}

func TestClipBatchActivationRejected(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"no permission"}`, http.StatusForbidden)
	}))

	report, err := client.Orders().ClipBatch(context.Background(),
		testBatchParams(t, t.TempDir(), "x"),
		WithSleeper(instantSleeper),
	)
	require.NoError(t, err)

	failed := report.Failed()
	require.Len(t, failed, 1)
	var actErr *ActivationError
	require.ErrorAs(t, failed[0].Err, &actErr)
	assert.True(t, IsAuth(actErr.Err))
}

func TestClipBatchDownloadFailureLeavesNoPartialFile(t *testing.T) {
	fake := newFakeOrders(t, map[string][]string{"a": {"success"}})
	orders := fake.handler()
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/deliveries/") {
			http.Error(w, "gone", http.StatusNotFound)
			return
		}
		orders.ServeHTTP(w, r)
	})
	client := newTestClient(t, handler)
	saveDir := filepath.Join(t.TempDir(), "clips")

	report, err := client.Orders().ClipBatch(context.Background(),
		testBatchParams(t, saveDir, "a"),
		WithSleeper(instantSleeper),
	)
	require.NoError(t, err)

	failed := report.Failed()
	require.Len(t, failed, 1)
	var dlErr *DownloadError
	require.ErrorAs(t, failed[0].Err, &dlErr)

	entries, err := os.ReadDir(saveDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "failed download must not leave a partial file")
}

func TestClipBatchIdempotentSaveDir(t *testing.T) {
	fake := newFakeOrders(t, map[string][]string{"a": {"success"}})
	client := newTestClient(t, fake.handler())
	saveDir := t.TempDir()

	params := testBatchParams(t, saveDir, "a")
	_, err := client.Orders().ClipBatch(context.Background(), params, WithSleeper(instantSleeper))
	require.NoError(t, err)
	_, err = client.Orders().ClipBatch(context.Background(), params, WithSleeper(instantSleeper))
	require.NoError(t, err, "pre-existing save dir must not fail")
}

func TestClipBatchValidation(t *testing.T) {
	client := newTestClient(t, http.NotFoundHandler())

	_, err := client.Orders().ClipBatch(context.Background(), BatchParams{})
	assert.ErrorIs(t, err, ErrInvalidParams)

	params := testBatchParams(t, t.TempDir(), "a")
	params.AOI = nil
	_, err = client.Orders().ClipBatch(context.Background(), params)
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func TestStateOf(t *testing.T) {
	assert.Equal(t, OrderReady, stateOf("success"))
	assert.Equal(t, OrderReady, stateOf("partial"))
	assert.Equal(t, OrderFailed, stateOf("failed"))
	assert.Equal(t, OrderFailed, stateOf("cancelled"))
	assert.Equal(t, OrderPending, stateOf("queued"))
	assert.Equal(t, OrderPending, stateOf("running"))
}

func TestDeliveryFileName(t *testing.T) {
	assert.Equal(t, "dam_item1_item1.tif", deliveryFileName("dam", "item1", "files/item1.tif"))
	assert.Equal(t, "item1_item1.tif", deliveryFileName("", "item1", "item1.tif"))
}
