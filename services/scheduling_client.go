package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// contextCacheTTL bounds how stale a cached upstream document may be.
// Operating hours and availability change on human timescales, so a short
// TTL removes repeat round-trips during a scheduling session without
// risking a meaningfully outdated prompt.
const contextCacheTTL = 5 * time.Minute

// SchedulingClient talks to the upstream scheduler API that owns operating
// hours, availability, holidays, break timings, and overtime data. Responses
// are returned as decoded JSON; shape interpretation belongs to the pipeline.
type SchedulingClient struct {
	BaseURL    string
	HTTPClient *http.Client
	Redis      *redis.Client // optional read-through cache, nil disables caching
}

func NewSchedulingClient(baseURL string, timeout time.Duration, rdb *redis.Client) *SchedulingClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &SchedulingClient{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
		Redis: rdb,
	}
}

// GetOperatingHours fetches the hospital operating hours for a location.
func (c *SchedulingClient) GetOperatingHours(ctx context.Context, token, tenantID, locationID string) (any, error) {
	cacheKey := fmt.Sprintf("schedctx:hours:%s:%s", tenantID, locationID)
	if cached, ok := c.cacheGet(ctx, cacheKey); ok {
		return cached, nil
	}
	data, err := c.doRequest(ctx, http.MethodGet, "/api/v1/HospitalOperatingHours/location", token, tenantLocationParams(tenantID, locationID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch operating hours: %w", err)
	}
	c.cacheSet(ctx, cacheKey, data)
	return data, nil
}

// SearchAvailability fetches grouped employee availability. The filters
// mirror the upstream search contract; pass nil to omit a filter.
func (c *SchedulingClient) SearchAvailability(ctx context.Context, token, tenantID, locationID string, isAvailable, isActive *bool) (map[string]any, error) {
	cacheKey := fmt.Sprintf("schedctx:availability:%s:%s:%s:%s", tenantID, locationID, boolFilterKey(isAvailable), boolFilterKey(isActive))
	if cached, ok := c.cacheGet(ctx, cacheKey); ok {
		if doc, isMap := cached.(map[string]any); isMap {
			return doc, nil
		}
	}

	filters := map[string]any{}
	if isAvailable != nil {
		filters["isAvailable"] = *isAvailable
	}
	if isActive != nil {
		filters["isActive"] = *isActive
	}

	data, err := c.doRequest(ctx, http.MethodPost, "/api/v1/EmployeeAvailability/search", token, tenantLocationParams(tenantID, locationID), filters)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch employee availability: %w", err)
	}
	doc, ok := data.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("availability response was not a JSON object")
	}
	c.cacheSet(ctx, cacheKey, doc)
	return doc, nil
}

// GetHolidays fetches the location's holidays, optionally for a single year.
func (c *SchedulingClient) GetHolidays(ctx context.Context, token, tenantID, locationID string, year int) (any, error) {
	params := tenantLocationParams(tenantID, locationID)
	if year > 0 {
		params.Set("year", strconv.Itoa(year))
	}
	data, err := c.doRequest(ctx, http.MethodGet, "/api/v1/Holidays/location", token, params, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch holidays: %w", err)
	}
	return data, nil
}

// GetBreakTimings fetches per-location break timing rules.
func (c *SchedulingClient) GetBreakTimings(ctx context.Context, token, tenantID, locationID string) (any, error) {
	data, err := c.doRequest(ctx, http.MethodGet, "/api/v1/BreakTimings/location", token, tenantLocationParams(tenantID, locationID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch break timings: %w", err)
	}
	return data, nil
}

// GetOvertime fetches per-location overtime information.
func (c *SchedulingClient) GetOvertime(ctx context.Context, token, tenantID, locationID string) (any, error) {
	data, err := c.doRequest(ctx, http.MethodGet, "/api/v1/Overtime/location", token, tenantLocationParams(tenantID, locationID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch overtime information: %w", err)
	}
	return data, nil
}

func (c *SchedulingClient) doRequest(ctx context.Context, method, path, token string, params url.Values, body any) (any, error) {
	requestURL := c.BaseURL + path
	if len(params) > 0 {
		requestURL += "?" + params.Encode()
	}

	var payload io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		payload = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, payload)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", path, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned status %d", path, resp.StatusCode)
	}

	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return decoded, nil
}

func (c *SchedulingClient) cacheGet(ctx context.Context, key string) (any, bool) {
	if c.Redis == nil {
		return nil, false
	}
	raw, err := c.Redis.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("cache read for %s failed: %v", key, err)
		}
		return nil, false
	}
	var decoded any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, false
	}
	return decoded, true
}

func (c *SchedulingClient) cacheSet(ctx context.Context, key string, value any) {
	if c.Redis == nil {
		return
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.Redis.Set(ctx, key, encoded, contextCacheTTL).Err(); err != nil {
		log.Printf("cache write for %s failed: %v", key, err)
	}
}

func tenantLocationParams(tenantID, locationID string) url.Values {
	params := url.Values{}
	params.Set("tenantId", tenantID)
	params.Set("locationId", locationID)
	return params
}

func boolFilterKey(value *bool) string {
	if value == nil {
		return "any"
	}
	return strconv.FormatBool(*value)
}
