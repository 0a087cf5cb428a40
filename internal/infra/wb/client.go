package wb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/dvvinfo/btlz-wb-test/internal/core/domain"
	"github.com/dvvinfo/btlz-wb-test/internal/core/errs"
)

// Wildberries publishes box tariffs on its common API; the endpoint takes an
// ISO date query parameter and a bearer token.
const defaultBaseURL = "https://common-api.wildberries.ru/api/v1/tariffs/box"

const defaultTimeout = 30 * time.Second

const opFetch = "wb.fetch_box_tariffs"

// Config holds source API settings.
type Config struct {
	URL     string        `yaml:"url"`
	Token   string        `yaml:"token"`
	Timeout time.Duration `yaml:"timeout"`
}

// Client fetches box tariffs from the Wildberries common API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	clock      clockwork.Clock
	log        *slog.Logger
}

// NewClient creates a source client. The clock supplies the date query
// parameter; the request date is the local calendar day, matching the
// upstream contract.
func NewClient(cfg Config, clock clockwork.Clock, log *slog.Logger) *Client {
	baseURL := cfg.URL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		token:   cfg.Token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		clock: clock,
		log:   log,
	}
}

// tariffsResponse is the expected payload envelope. The pointer levels let
// validation distinguish a missing level from an empty list.
type tariffsResponse struct {
	Response *struct {
		Data *struct {
			WarehouseList []domain.RawBoxTariff `json:"warehouseList"`
		} `json:"data"`
	} `json:"response"`
}

// FetchBoxTariffs requests the current day's box tariffs. Failures carry an
// errs classification: transport errors are network or timeout, non-2xx maps
// through the status code, and a malformed body is a validation error.
func (c *Client) FetchBoxTariffs(ctx context.Context) ([]domain.RawBoxTariff, error) {
	date := c.clock.Now().Format(domain.DateFormat)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?date="+url.QueryEscape(date), nil)
	if err != nil {
		return nil, errs.E(errs.KindUnknown, opFetch, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, errs.E(errs.KindTimeout, opFetch, err)
		}
		return nil, errs.E(errs.KindNetwork, opFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errs.FromStatus(opFetch, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.E(errs.KindNetwork, opFetch, fmt.Errorf("failed to read response body: %w", err))
	}

	var parsed tariffsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, errs.E(errs.KindValidation, opFetch, fmt.Errorf("failed to decode tariffs payload: %w", err))
	}
	if parsed.Response == nil || parsed.Response.Data == nil || parsed.Response.Data.WarehouseList == nil {
		return nil, errs.E(errs.KindValidation, opFetch, errors.New("payload missing response.data.warehouseList"))
	}
	for i, w := range parsed.Response.Data.WarehouseList {
		if w.WarehouseName == "" {
			return nil, errs.E(errs.KindValidation, opFetch,
				fmt.Errorf("warehouseList[%d] missing warehouseName", i))
		}
	}

	c.log.Debug("fetched box tariffs", "date", date, "warehouses", len(parsed.Response.Data.WarehouseList))
	return parsed.Response.Data.WarehouseList, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
