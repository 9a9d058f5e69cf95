package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/w-h-a/redflag/retriever"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

var errNotFound = errors.New("qdrant: not found")

type qdrantRetriever struct {
	options retriever.Options
	apiKey  string
	client  *http.Client
}

// Search maps qdrant's cosine score onto a distance so that callers see
// the same 1 - similarity contract as the pgvector backend.
func (r *qdrantRetriever) Search(ctx context.Context, vector []float32, limit int) ([]retriever.Neighbor, error) {
	if limit < 1 || len(vector) == 0 {
		return nil, nil
	}

	req := map[string]any{
		"vector":       vector,
		"limit":        limit,
		"with_payload": true,
		"with_vector":  false,
	}

	var rsp qdrantEnvelope[[]pointResult]

	path := fmt.Sprintf("/collections/%s/points/search", url.PathEscape(r.options.Collection))

	if err := r.do(ctx, http.MethodPost, path, req, &rsp); err != nil {
		return nil, fmt.Errorf("search similar cases: %w", err)
	}

	neighbors := make([]retriever.Neighbor, 0, len(rsp.Result))

	for _, point := range rsp.Result {
		id, err := uuid.Parse(point.Id)
		if err != nil {
			r.options.Logger.Warn("skipping point with non-uuid id", zap.String("id", point.Id))
			continue
		}

		neighbors = append(neighbors, retriever.Neighbor{
			CaseId:   id,
			Content:  point.Payload.Content,
			Distance: 1 - point.Score,
		})
	}

	return neighbors, nil
}

func (r *qdrantRetriever) Get(ctx context.Context, ids []uuid.UUID) ([]retriever.Case, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, id.String())
	}

	req := map[string]any{
		"ids":          keys,
		"with_payload": true,
		"with_vector":  false,
	}

	var rsp qdrantEnvelope[[]pointResult]

	path := fmt.Sprintf("/collections/%s/points", url.PathEscape(r.options.Collection))

	if err := r.do(ctx, http.MethodPost, path, req, &rsp); err != nil {
		return nil, fmt.Errorf("get cases: %w", err)
	}

	cases := make([]retriever.Case, 0, len(rsp.Result))

	for _, point := range rsp.Result {
		id, err := uuid.Parse(point.Id)
		if err != nil {
			continue
		}

		cases = append(cases, retriever.Case{
			Id:       id,
			Content:  point.Payload.Content,
			Category: point.Payload.Category,
		})
	}

	return cases, nil
}

func (r *qdrantRetriever) Store(ctx context.Context, c retriever.Case) (uuid.UUID, error) {
	if r.options.Dimensions > 0 && len(c.Embedding) != r.options.Dimensions {
		return uuid.Nil, fmt.Errorf("embedding has %d dimensions, want %d", len(c.Embedding), r.options.Dimensions)
	}

	if c.Id == uuid.Nil {
		c.Id = uuid.New()
	}

	point := map[string]any{
		"id":     c.Id.String(),
		"vector": c.Embedding,
		"payload": casePayload{
			Content:  c.Content,
			Category: c.Category,
		},
	}

	req := map[string]any{
		"points": []map[string]any{point},
	}

	var rsp qdrantEnvelope[json.RawMessage]

	path := fmt.Sprintf("/collections/%s/points?wait=true", url.PathEscape(r.options.Collection))

	if err := r.do(ctx, http.MethodPut, path, req, &rsp); err != nil {
		return uuid.Nil, fmt.Errorf("store case: %w", err)
	}

	if !strings.EqualFold(rsp.Status.State, "ok") && len(rsp.Status.Error) > 0 {
		return uuid.Nil, errors.New(rsp.Status.Error)
	}

	return c.Id, nil
}

func (r *qdrantRetriever) do(ctx context.Context, method string, path string, req any, rsp any) error {
	u := r.options.Location + path

	var buf io.Reader
	if req != nil {
		data, err := json.Marshal(req)
		if err != nil {
			return err
		}
		buf = bytes.NewReader(data)
	}

	request, err := http.NewRequestWithContext(ctx, method, u, buf)
	if err != nil {
		return err
	}

	request.Header.Set("Content-Type", "application/json")

	if len(r.apiKey) > 0 {
		request.Header.Set("api-key", r.apiKey)
	}

	response, err := r.client.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	payload, err := io.ReadAll(response.Body)
	if err != nil {
		return err
	}

	if response.StatusCode == http.StatusNotFound {
		return errNotFound
	}

	if response.StatusCode >= 400 {
		return fmt.Errorf("qdrant http %d: %s", response.StatusCode, string(payload))
	}

	if rsp != nil && len(payload) > 0 {
		if err := json.Unmarshal(payload, rsp); err != nil {
			return err
		}
	}

	return nil
}

func (r *qdrantRetriever) configure(ctx context.Context) error {
	path := fmt.Sprintf("/collections/%s", url.PathEscape(r.options.Collection))

	var rsp qdrantEnvelope[json.RawMessage]

	err := r.do(ctx, http.MethodGet, path, nil, &rsp)
	if err == nil {
		return nil
	}

	if !errors.Is(err, errNotFound) {
		return err
	}

	req := map[string]any{
		"vectors": map[string]any{
			"size":     r.options.Dimensions,
			"distance": "Cosine",
		},
	}

	if err := r.do(ctx, http.MethodPut, path, req, &rsp); err != nil {
		return err
	}

	if !strings.EqualFold(rsp.Status.State, "ok") {
		return errors.New(rsp.Status.Error)
	}

	return nil
}

func NewRetriever(opts ...retriever.Option) retriever.Retriever {
	options := retriever.NewOptions(opts...)

	if len(options.Location) == 0 || len(options.Collection) == 0 || options.Dimensions == 0 {
		detail := "missing location, collection, or dimensions for qdrant retriever"
		options.Logger.Error(detail)
		panic(detail)
	}

	r := &qdrantRetriever{
		options: options,
		client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}

	if key, ok := ApiKeyFrom(options.Context); ok {
		r.apiKey = key
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := r.configure(ctx); err != nil {
		detail := "failed to configure qdrant collection"
		options.Logger.Error(detail, zap.Error(err))
		panic(detail)
	}

	return r
}
