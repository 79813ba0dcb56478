package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"alianca-go/internal/gateway"
)

// Gateway talks to a Supabase project's PostgREST endpoint.
type Gateway struct {
	restURL string
	apiKey  string
	client  *http.Client
}

type Config struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

func New(cfg Config) *Gateway {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Gateway{
		restURL: strings.TrimRight(cfg.URL, "/") + "/rest/v1",
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: timeout},
	}
}

func (g *Gateway) Select(ctx context.Context, table string, query gateway.Query, dest any) error {
	if err := gateway.ValidateIdentifier(table); err != nil {
		return err
	}
	if err := query.Validate(); err != nil {
		return err
	}

	params := url.Values{}
	params.Set("select", "*")
	encodeFilters(params, query.Filters)
	if len(query.Orders) > 0 {
		parts := make([]string, 0, len(query.Orders))
		for _, order := range query.Orders {
			dir := "asc"
			if order.Desc {
				dir = "desc"
			}
			parts = append(parts, order.Column+"."+dir)
		}
		params.Set("order", strings.Join(parts, ","))
	}
	if query.Limit > 0 {
		params.Set("limit", strconv.Itoa(query.Limit))
	}

	body, _, err := g.do(ctx, http.MethodGet, table, params, nil, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("decode %s rows: %w", table, err)
	}
	return nil
}

func (g *Gateway) Insert(ctx context.Context, table string, row any) error {
	if err := gateway.ValidateIdentifier(table); err != nil {
		return err
	}
	payload, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("marshal %s row: %w", table, err)
	}

	headers := map[string]string{"Prefer": "return=minimal"}
	_, _, err = g.do(ctx, http.MethodPost, table, url.Values{}, payload, headers)
	return err
}

func (g *Gateway) Upsert(ctx context.Context, table string, row any, conflictColumns ...string) error {
	if err := gateway.ValidateIdentifier(table); err != nil {
		return err
	}
	for _, column := range conflictColumns {
		if err := gateway.ValidateIdentifier(column); err != nil {
			return err
		}
	}
	payload, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("marshal %s row: %w", table, err)
	}

	params := url.Values{}
	if len(conflictColumns) > 0 {
		params.Set("on_conflict", strings.Join(conflictColumns, ","))
	}
	headers := map[string]string{"Prefer": "resolution=merge-duplicates,return=minimal"}
	_, _, err = g.do(ctx, http.MethodPost, table, params, payload, headers)
	return err
}

func (g *Gateway) Update(ctx context.Context, table string, filters []gateway.Filter, patch map[string]any) (int64, error) {
	if err := checkMutation(table, filters); err != nil {
		return 0, err
	}
	for column := range patch {
		if err := gateway.ValidateIdentifier(column); err != nil {
			return 0, err
		}
	}
	if len(patch) == 0 {
		return 0, nil
	}
	payload, err := json.Marshal(patch)
	if err != nil {
		return 0, fmt.Errorf("marshal %s patch: %w", table, err)
	}

	params := url.Values{}
	encodeFilters(params, filters)
	headers := map[string]string{"Prefer": "return=representation"}
	body, _, err := g.do(ctx, http.MethodPatch, table, params, payload, headers)
	if err != nil {
		return 0, err
	}
	return countRows(body)
}

func (g *Gateway) Delete(ctx context.Context, table string, filters []gateway.Filter) (int64, error) {
	if err := checkMutation(table, filters); err != nil {
		return 0, err
	}

	params := url.Values{}
	encodeFilters(params, filters)
	headers := map[string]string{"Prefer": "return=representation"}
	body, _, err := g.do(ctx, http.MethodDelete, table, params, nil, headers)
	if err != nil {
		return 0, err
	}
	return countRows(body)
}

func (g *Gateway) Count(ctx context.Context, table string, filters []gateway.Filter) (int64, error) {
	if err := gateway.ValidateIdentifier(table); err != nil {
		return 0, err
	}
	if err := gateway.ValidateFilters(filters); err != nil {
		return 0, err
	}

	params := url.Values{}
	params.Set("select", "*")
	encodeFilters(params, filters)
	headers := map[string]string{"Prefer": "count=exact"}
	_, header, err := g.do(ctx, http.MethodHead, table, params, nil, headers)
	if err != nil {
		return 0, err
	}
	return parseContentRange(header.Get("Content-Range"))
}

func (g *Gateway) do(ctx context.Context, method, table string, params url.Values, payload []byte, headers map[string]string) ([]byte, http.Header, error) {
	endpoint := g.restURL + "/" + table
	if encoded := params.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("apikey", g.apiKey)
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%s %s: %w", method, table, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s response: %w", table, err)
	}
	if resp.StatusCode >= 400 {
		return nil, nil, parseError(respBody, resp.StatusCode)
	}
	return respBody, resp.Header, nil
}

func checkMutation(table string, filters []gateway.Filter) error {
	if err := gateway.ValidateIdentifier(table); err != nil {
		return err
	}
	if len(filters) == 0 {
		return gateway.ErrMissingFilters
	}
	return gateway.ValidateFilters(filters)
}

func encodeFilters(params url.Values, filters []gateway.Filter) {
	for _, filter := range filters {
		if filter.Op == gateway.OpIn {
			values := filter.Value.([]any)
			quoted := make([]string, 0, len(values))
			for _, value := range values {
				quoted = append(quoted, quoteListValue(formatValue(value)))
			}
			params.Add(filter.Column, "in.("+strings.Join(quoted, ",")+")")
			continue
		}
		params.Add(filter.Column, string(filter.Op)+"."+formatValue(filter.Value))
	}
}

func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return v
	case time.Time:
		return v.UTC().Format(time.RFC3339Nano)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func quoteListValue(value string) string {
	return `"` + strings.ReplaceAll(strings.ReplaceAll(value, `\`, `\\`), `"`, `\"`) + `"`
}

func countRows(body []byte) (int64, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return 0, nil
	}
	var rows []json.RawMessage
	if err := json.Unmarshal(body, &rows); err != nil {
		return 0, fmt.Errorf("decode affected rows: %w", err)
	}
	return int64(len(rows)), nil
}

// parseContentRange reads the total from headers like "0-24/42" or "*/0".
func parseContentRange(value string) (int64, error) {
	idx := strings.LastIndex(value, "/")
	if idx == -1 || idx == len(value)-1 {
		return 0, fmt.Errorf("unexpected content-range %q", value)
	}
	total, err := strconv.ParseInt(value[idx+1:], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("unexpected content-range %q: %w", value, err)
	}
	return total, nil
}

func parseError(body []byte, statusCode int) error {
	var payload struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details string `json:"details"`
		Hint    string `json:"hint"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Message == "" {
		return &gateway.Error{StatusCode: statusCode, Message: strings.TrimSpace(string(body))}
	}
	return &gateway.Error{
		StatusCode: statusCode,
		Code:       payload.Code,
		Message:    payload.Message,
		Details:    payload.Details,
		Hint:       payload.Hint,
	}
}
