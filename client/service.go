package client

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-openapi/inflect"

	"github.com/Nioron07/Easy-Acumatica/odata"
)

// ServiceName derives the conventional accessor name of a top-level entity,
// pluralized snake case: SalesOrder becomes sales_orders.
func ServiceName(entity string) string {
	return inflect.Pluralize(inflect.Underscore(entity))
}

// Service exposes the record operations of one top-level entity.
type Service struct {
	client *Client
	entity string
}

// Service returns the operations for a top-level entity, e.g. "Contact".
func (c *Client) Service(entity string) *Service {
	return &Service{client: c, entity: entity}
}

// Entity returns the entity name this service operates on.
func (s *Service) Entity() string { return s.entity }

func (s *Service) path(segments ...string) string {
	parts := []string{s.client.endpointPath(), s.entity}
	for _, seg := range segments {
		parts = append(parts, url.PathEscape(seg))
	}
	return strings.Join(parts, "/")
}

// GetList fetches records matching the query options.
func (s *Service) GetList(ctx context.Context, opts odata.QueryOptions) ([]map[string]any, error) {
	params, err := opts.ToParams()
	if err != nil {
		return nil, err
	}
	var out []map[string]any
	if err := s.client.call(ctx, http.MethodGet, s.path(), params, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByKeys fetches one record addressed by its key fields, in schema order.
func (s *Service) GetByKeys(ctx context.Context, keys []string, opts odata.QueryOptions) (map[string]any, error) {
	params, err := opts.ToParams()
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := s.client.call(ctx, http.MethodGet, s.path(keys...), params, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PutEntity creates or updates a record. The body is sent as-is, so callers
// hand it the wire shape, typically a Record payload or a generated stub.
func (s *Service) PutEntity(ctx context.Context, body any, opts odata.QueryOptions) (map[string]any, error) {
	params, err := opts.ToParams()
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := s.client.call(ctx, http.MethodPut, s.path(), params, body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes the record addressed by its key fields.
func (s *Service) Delete(ctx context.Context, keys []string) error {
	return s.client.call(ctx, http.MethodDelete, s.path(keys...), nil, nil, nil)
}

// InvokeAction runs a custom action against a record. Parameters are
// value-wrapped on the wire and empty ones are pruned, matching what the
// endpoint accepts.
func (s *Service) InvokeAction(ctx context.Context, action string, entity map[string]any, parameters map[string]any) error {
	body := map[string]any{"entity": entity}
	if wrapped := wrapParameters(parameters); len(wrapped) > 0 {
		body["parameters"] = wrapped
	}
	path := s.path() + "/" + url.PathEscape(action)
	return s.client.call(ctx, http.MethodPost, path, nil, body, nil)
}

func wrapParameters(parameters map[string]any) map[string]any {
	wrapped := make(map[string]any, len(parameters))
	for k, v := range parameters {
		if v == nil || v == "" {
			continue
		}
		wrapped[k] = map[string]any{"value": v}
	}
	return wrapped
}

// PutFile attaches a file to the record addressed by its key fields.
func (s *Service) PutFile(ctx context.Context, keys []string, filename string, data []byte, comment string) error {
	segments := append(append([]string(nil), keys...), "files", filename)
	path := s.path(segments...)
	query := map[string]string(nil)
	if comment != "" {
		query = map[string]string{"comment": comment}
	}
	return s.client.call(ctx, http.MethodPut, path, query, data, nil)
}

// AdHocSchema fetches the field metadata the endpoint reports for this
// entity, including user-defined fields.
func (s *Service) AdHocSchema(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	if err := s.client.call(ctx, http.MethodGet, s.path("$adHocSchema"), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
