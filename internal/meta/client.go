package meta

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"whatsapp-admin/internal/config"

	"go.uber.org/zap"
)

// Client talks to the Meta Graph API. All requests carry a comma-separated
// fields query parameter and the access token as a query parameter.
type Client struct {
	baseURL         string
	version         string
	httpClient      *http.Client
	fieldRetryLimit int
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL:         strings.TrimRight(cfg.GraphBaseURL, "/"),
		version:         cfg.GraphAPIVersion,
		httpClient:      &http.Client{Timeout: cfg.HTTPTimeout},
		fieldRetryLimit: cfg.FieldRetryLimit,
	}
}

func (c *Client) endpoint(path string, fields []string, params url.Values, token string) string {
	q := url.Values{}
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	if len(fields) > 0 {
		q.Set("fields", strings.Join(fields, ","))
	}
	q.Set("access_token", token)
	return fmt.Sprintf("%s/%s/%s?%s", c.baseURL, c.version, path, q.Encode())
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		var envelope struct {
			Error APIError `json:"error"`
		}
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
			apiErr = &envelope.Error
			apiErr.Status = resp.StatusCode
		} else {
			apiErr.Message = strings.TrimSpace(string(body))
		}
		return nil, apiErr
	}

	return body, nil
}

// FetchAll follows paging.next cursors until the API reports no further
// pages and returns every item. Hierarchies are small (hundreds of items),
// so accumulating in memory is fine. Any non-success response aborts the
// whole fetch.
func (c *Client) FetchAll(ctx context.Context, path string, fields []string, token string) ([]json.RawMessage, error) {
	next := c.endpoint(path, fields, nil, token)

	var items []json.RawMessage
	for next != "" {
		body, err := c.get(ctx, next)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", path, err)
		}

		var page Page
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("decode page of %s: %w", path, err)
		}

		items = append(items, page.Data...)
		// paging.next is a fully-formed follow-up URL, token included
		next = page.Paging.Next
	}
	return items, nil
}

// FetchEntity requests an entity with the candidate field list and
// negotiates down: every time the API rejects a nameable field, that field
// is dropped and the request retried. When the error cannot be attributed
// to a single field, or the attempt cap is reached, the minimal field set
// is requested instead. Only a failing minimal request surfaces an error.
func (c *Client) FetchEntity(ctx context.Context, entityID string, candidate, minimal []string, token string) (json.RawMessage, error) {
	fields := ensureID(candidate)

	for attempt := 0; attempt < c.fieldRetryLimit && len(fields) > 0; attempt++ {
		body, err := c.get(ctx, c.endpoint(entityID, fields, nil, token))
		if err == nil {
			return body, nil
		}

		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			break
		}
		rejected := apiErr.RejectedField()
		if rejected == "" {
			break
		}

		trimmed := removeField(fields, rejected)
		if len(trimmed) == len(fields) {
			// rejected a field we never asked for, no point retrying
			break
		}
		zap.S().Debugf("field %q rejected for %s, retrying without it", rejected, entityID)
		fields = trimmed
	}

	body, err := c.get(ctx, c.endpoint(entityID, ensureID(minimal), nil, token))
	if err != nil {
		return nil, fmt.Errorf("fetch entity %s: %w", entityID, err)
	}
	return body, nil
}

func ensureID(fields []string) []string {
	for _, f := range fields {
		if f == "id" {
			return fields
		}
	}
	return append([]string{"id"}, fields...)
}

func removeField(fields []string, name string) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f != name {
			out = append(out, f)
		}
	}
	return out
}

// --- Typed fetches used by the sync engine ---

func (c *Client) GetBusiness(ctx context.Context, remoteID, token string) (*Business, error) {
	raw, err := c.FetchEntity(ctx, remoteID, BusinessFields, BusinessMinimalFields, token)
	if err != nil {
		return nil, err
	}
	var b Business
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, fmt.Errorf("decode business %s: %w", remoteID, err)
	}
	return &b, nil
}

func (c *Client) GetWabaAccount(ctx context.Context, remoteID, token string) (*WabaAccount, error) {
	raw, err := c.FetchEntity(ctx, remoteID, WabaAccountFields, WabaAccountMinimalFields, token)
	if err != nil {
		return nil, err
	}
	var acc WabaAccount
	if err := json.Unmarshal(raw, &acc); err != nil {
		return nil, fmt.Errorf("decode waba account %s: %w", remoteID, err)
	}
	return &acc, nil
}

func (c *Client) GetPhoneNumber(ctx context.Context, remoteID, token string) (*PhoneNumber, error) {
	raw, err := c.FetchEntity(ctx, remoteID, PhoneNumberFields, PhoneNumberMinimalFields, token)
	if err != nil {
		return nil, err
	}
	var pn PhoneNumber
	if err := json.Unmarshal(raw, &pn); err != nil {
		return nil, fmt.Errorf("decode phone number %s: %w", remoteID, err)
	}
	return &pn, nil
}

// ListOwnedAccounts returns the WABA accounts a business owns. Only the
// minimal fields are requested; callers enrich each account through the
// adaptive entity fetch.
func (c *Client) ListOwnedAccounts(ctx context.Context, businessID, token string) ([]WabaAccount, error) {
	return c.listAccounts(ctx, businessID+"/owned_whatsapp_business_accounts", token)
}

// ListClientAccounts returns the WABA accounts shared with a business as a
// client.
func (c *Client) ListClientAccounts(ctx context.Context, businessID, token string) ([]WabaAccount, error) {
	return c.listAccounts(ctx, businessID+"/client_whatsapp_business_accounts", token)
}

func (c *Client) listAccounts(ctx context.Context, path, token string) ([]WabaAccount, error) {
	items, err := c.FetchAll(ctx, path, WabaAccountMinimalFields, token)
	if err != nil {
		return nil, err
	}
	accounts := make([]WabaAccount, 0, len(items))
	for _, item := range items {
		var acc WabaAccount
		if err := json.Unmarshal(item, &acc); err != nil {
			zap.S().Warnf("skipping undecodable waba account item: %v", err)
			continue
		}
		accounts = append(accounts, acc)
	}
	return accounts, nil
}

// ListPhoneNumbers returns the phone numbers of a WABA account with minimal
// fields; details come from the adaptive per-number fetch.
func (c *Client) ListPhoneNumbers(ctx context.Context, accountRemoteID, token string) ([]PhoneNumber, error) {
	items, err := c.FetchAll(ctx, accountRemoteID+"/phone_numbers", PhoneNumberMinimalFields, token)
	if err != nil {
		return nil, err
	}
	numbers := make([]PhoneNumber, 0, len(items))
	for _, item := range items {
		var pn PhoneNumber
		if err := json.Unmarshal(item, &pn); err != nil {
			zap.S().Warnf("skipping undecodable phone number item: %v", err)
			continue
		}
		numbers = append(numbers, pn)
	}
	return numbers, nil
}

// ListTemplates returns the full template collection of a WABA account.
func (c *Client) ListTemplates(ctx context.Context, accountRemoteID, token string) ([]MessageTemplate, error) {
	items, err := c.FetchAll(ctx, accountRemoteID+"/message_templates", TemplateFields, token)
	if err != nil {
		return nil, err
	}
	templates := make([]MessageTemplate, 0, len(items))
	for _, item := range items {
		var tmpl MessageTemplate
		if err := json.Unmarshal(item, &tmpl); err != nil {
			zap.S().Warnf("skipping undecodable template item: %v", err)
			continue
		}
		templates = append(templates, tmpl)
	}
	return templates, nil
}
