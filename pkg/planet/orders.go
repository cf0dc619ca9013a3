package planet

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb/geojson"
)

// DefaultProductBundle is the bundle requested for clip orders. The comma
// form is a fallback list: the API takes the leftmost bundle the item
// actually has.
const DefaultProductBundle = "analytic_sr,analytic"

const (
	defaultPollInterval    = 10 * time.Second
	defaultMaxPollAttempts = 60
)

// OrderService places clip orders and downloads their deliveries.
type OrderService struct {
	client *Client
}

// OrderState is the lifecycle state of one clip order as seen by the poll
// loop. An order starts Pending and ends Ready, Failed, or TimedOut.
type OrderState int

const (
	// OrderPending means the provider is still processing the order.
	OrderPending OrderState = iota
	// OrderReady means the deliveries can be downloaded.
	OrderReady
	// OrderFailed means the provider reported the order as failed.
	OrderFailed
	// OrderTimedOut means the polling budget ran out before the order
	// became ready.
	OrderTimedOut
)

// stateOf maps the provider's state strings onto the poll machine.
// "partial" counts as ready: some assets were clipped and are
// downloadable.
func stateOf(state string) OrderState {
	switch state {
	case "success", "partial":
		return OrderReady
	case "failed", "cancelled":
		return OrderFailed
	default:
		return OrderPending
	}
}

// Sleeper blocks between poll attempts. Tests inject one to drive the
// loop without real delays.
type Sleeper func(ctx context.Context, d time.Duration) error

func defaultSleeper(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// OrderOption configures clip order placement and polling.
type OrderOption func(*orderConfig)

type orderConfig struct {
	bundle       string
	pollInterval time.Duration
	maxAttempts  int
	sleep        Sleeper
	progress     ProgressFunc
}

func newOrderConfig(opts ...OrderOption) orderConfig {
	cfg := orderConfig{
		bundle:       DefaultProductBundle,
		pollInterval: defaultPollInterval,
		maxAttempts:  defaultMaxPollAttempts,
		sleep:        defaultSleeper,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithProductBundle overrides the product bundle requested for each order.
func WithProductBundle(bundle string) OrderOption {
	return func(cfg *orderConfig) {
		if bundle != "" {
			cfg.bundle = bundle
		}
	}
}

// WithPollInterval sets the delay between readiness checks.
func WithPollInterval(d time.Duration) OrderOption {
	return func(cfg *orderConfig) {
		if d > 0 {
			cfg.pollInterval = d
		}
	}
}

// WithMaxPollAttempts bounds the number of readiness checks per order.
func WithMaxPollAttempts(n int) OrderOption {
	return func(cfg *orderConfig) {
		if n > 0 {
			cfg.maxAttempts = n
		}
	}
}

// WithSleeper replaces the delay function used between poll attempts.
func WithSleeper(s Sleeper) OrderOption {
	return func(cfg *orderConfig) {
		if s != nil {
			cfg.sleep = s
		}
	}
}

// WithDownloadProgress reports delivery download progress.
func WithDownloadProgress(p ProgressFunc) OrderOption {
	return func(cfg *orderConfig) { cfg.progress = p }
}

// Order is the provider's view of one order.
type Order struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	State string     `json:"state"`
	Links orderLinks `json:"_links"`
}

type orderLinks struct {
	Self    string          `json:"_self"`
	Results []OrderDelivery `json:"results"`
}

// OrderDelivery is one downloadable file produced by an order: the clipped
// raster plus its XML and JSON metadata sidecars.
type OrderDelivery struct {
	Name     string `json:"name"`
	Location string `json:"location"`
}

type orderRequest struct {
	Name     string         `json:"name"`
	Products []orderProduct `json:"products"`
	Tools    []orderTool    `json:"tools"`
}

type orderProduct struct {
	ItemIDs       []string `json:"item_ids"`
	ItemType      string   `json:"item_type"`
	ProductBundle string   `json:"product_bundle"`
}

type orderTool struct {
	Clip *clipConfig `json:"clip,omitempty"`
}

type clipConfig struct {
	AOI *geojson.Geometry `json:"aoi"`
}

// BatchParams describes one download-and-clip batch.
type BatchParams struct {
	// AOI is the clip polygon.
	AOI *geojson.Geometry
	// FeatureName labels output files and order names.
	FeatureName string
	// ItemIDs are processed in order; one item's failure never aborts the
	// rest.
	ItemIDs []string
	// ItemType is the Planet product of the listed items.
	ItemType string
	// SaveDir receives the downloaded deliveries. Created if absent.
	SaveDir string
}

// Validate ensures the provided batch parameters are usable.
func (p BatchParams) Validate() error {
	if p.AOI == nil {
		return fmt.Errorf("%w: AOI geometry is required", ErrInvalidParams)
	}
	if p.ItemType == "" {
		return fmt.Errorf("%w: item type is required", ErrInvalidParams)
	}
	if len(p.ItemIDs) == 0 {
		return fmt.Errorf("%w: at least one item id is required", ErrInvalidParams)
	}
	if p.SaveDir == "" {
		return fmt.Errorf("%w: save dir is required", ErrInvalidParams)
	}
	return nil
}

// ItemResult is the per-item outcome of a batch: downloaded file paths on
// success, the failure reason otherwise.
type ItemResult struct {
	ItemID string
	Paths  []string
	Err    error
}

// BatchReport collects per-item outcomes in input order.
type BatchReport struct {
	Results []ItemResult
}

// Succeeded returns the ids of items whose deliveries were all downloaded.
func (r *BatchReport) Succeeded() []string {
	var ids []string
	for _, res := range r.Results {
		if res.Err == nil {
			ids = append(ids, res.ItemID)
		}
	}
	return ids
}

// Failed returns the results of items that did not complete.
func (r *BatchReport) Failed() []ItemResult {
	var failed []ItemResult
	for _, res := range r.Results {
		if res.Err != nil {
			failed = append(failed, res)
		}
	}
	return failed
}

// ClipBatch clips and downloads each item in params.ItemIDs, in order. A
// per-item failure is recorded in the report and processing moves on; the
// returned error is reserved for failures outside any single item (bad
// parameters, save dir creation).
func (s *OrderService) ClipBatch(ctx context.Context, params BatchParams, opts ...OrderOption) (*BatchReport, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(params.SaveDir, 0o755); err != nil {
		return nil, fmt.Errorf("create save dir: %w", err)
	}

	cfg := newOrderConfig(opts...)
	report := &BatchReport{Results: make([]ItemResult, 0, len(params.ItemIDs))}

	for _, itemID := range params.ItemIDs {
		paths, err := s.clipOne(ctx, params, itemID, cfg)
		report.Results = append(report.Results, ItemResult{ItemID: itemID, Paths: paths, Err: err})
		if err != nil && s.client.logger != nil {
			s.client.logger.Errorf("planet: item %s failed: %v", itemID, err)
		}
		if ctx.Err() != nil {
			break
		}
	}
	return report, nil
}

// clipOne runs the full activate, poll, download cycle for a single item.
func (s *OrderService) clipOne(ctx context.Context, params BatchParams, itemID string, cfg orderConfig) ([]string, error) {
	order, err := s.PlaceClip(ctx, params, itemID, cfg.bundle)
	if err != nil {
		return nil, &ActivationError{ItemID: itemID, Err: err}
	}

	order, state, attempts, err := s.waitReady(ctx, order, cfg)
	switch {
	case err != nil:
		return nil, &ActivationError{ItemID: itemID, Err: err}
	case state == OrderFailed:
		return nil, &ActivationError{ItemID: itemID, Err: fmt.Errorf("order %s reported state %q", order.ID, order.State)}
	case state == OrderTimedOut:
		return nil, &TimeoutError{ItemID: itemID, Attempts: attempts}
	}

	var paths []string
	for _, delivery := range order.Links.Results {
		dest := filepath.Join(params.SaveDir, deliveryFileName(params.FeatureName, itemID, delivery.Name))
		if err := s.client.DownloadAssetWithProgress(ctx, delivery.Location, dest, cfg.progress); err != nil {
			return nil, &DownloadError{ItemID: itemID, URL: delivery.Location, Err: err}
		}
		paths = append(paths, dest)
	}
	return paths, nil
}

// PlaceClip creates one clip order for a single item and returns the
// provider's order record.
func (s *OrderService) PlaceClip(ctx context.Context, params BatchParams, itemID, bundle string) (*Order, error) {
	req := orderRequest{
		Name: orderName(params.FeatureName, itemID),
		Products: []orderProduct{{
			ItemIDs:       []string{itemID},
			ItemType:      params.ItemType,
			ProductBundle: bundle,
		}},
		Tools: []orderTool{{Clip: &clipConfig{AOI: params.AOI}}},
	}

	var order Order
	if err := s.client.doJSON(ctx, http.MethodPost, endpoint(s.client.ordersURL), req, &order); err != nil {
		return nil, err
	}
	if order.ID == "" {
		return nil, errors.New("order response missing id")
	}
	return &order, nil
}

// Get fetches the current state of an order.
func (s *OrderService) Get(ctx context.Context, orderID string) (*Order, error) {
	var order Order
	if err := s.client.doJSON(ctx, http.MethodGet, endpoint(s.client.ordersURL, orderID), nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// waitReady polls the order until it leaves Pending or the attempt budget
// is spent. It returns the last order record, the terminal state, and the
// number of attempts used.
func (s *OrderService) waitReady(ctx context.Context, order *Order, cfg orderConfig) (*Order, OrderState, int, error) {
	state := stateOf(order.State)
	for attempt := 0; ; attempt++ {
		if state != OrderPending {
			return order, state, attempt, nil
		}
		if attempt >= cfg.maxAttempts {
			return order, OrderTimedOut, attempt, nil
		}
		if err := cfg.sleep(ctx, cfg.pollInterval); err != nil {
			return order, state, attempt, err
		}

		refreshed, err := s.Get(ctx, order.ID)
		if err != nil {
			return order, state, attempt, err
		}
		order = refreshed
		state = stateOf(order.State)
		if s.client.logger != nil {
			s.client.logger.Debugf("planet: order %s state=%s attempt=%d", order.ID, order.State, attempt+1)
		}
	}
}

// orderName labels the order so it can be found again in the provider UI.
func orderName(featureName, itemID string) string {
	if featureName == "" {
		featureName = "clip"
	}
	return fmt.Sprintf("%s_%s_%s", featureName, itemID, uuid.NewString()[:8])
}

// deliveryFileName derives the local file name for one delivery.
func deliveryFileName(featureName, itemID, deliveryName string) string {
	base := filepath.Base(deliveryName)
	if featureName == "" {
		return fmt.Sprintf("%s_%s", itemID, base)
	}
	return fmt.Sprintf("%s_%s_%s", featureName, itemID, base)
}
