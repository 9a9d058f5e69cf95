package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/w-h-a/redflag/recognizer"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const maxResponseBytes = 8 << 20

type httpRecognizer struct {
	options recognizer.Options
	client  *http.Client
}

func (r *httpRecognizer) Recognize(ctx context.Context, filename string, image []byte) (recognizer.Result, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return recognizer.Result{}, r.fail("failed to create multipart file", err)
	}

	if _, err := io.Copy(part, bytes.NewReader(image)); err != nil {
		return recognizer.Result{}, r.fail("failed to write image", err)
	}

	if err := writer.Close(); err != nil {
		return recognizer.Result{}, r.fail("failed to close multipart writer", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.options.Location, body)
	if err != nil {
		return recognizer.Result{}, r.fail("failed to build request", err)
	}

	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	r.options.Logger.Info("requesting recognition", zap.String("location", r.options.Location), zap.Int("bytes", len(image)))

	rsp, err := r.client.Do(req)
	if err != nil {
		return recognizer.Result{}, r.fail("failed to reach recognizer", err)
	}
	defer rsp.Body.Close()

	if rsp.StatusCode < 200 || rsp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(rsp.Body, 1024))
		return recognizer.Result{}, r.fail("unexpected recognizer status", fmt.Errorf("status: %s body: %s", rsp.Status, string(b)))
	}

	var result recognizer.Result
	if err := json.NewDecoder(io.LimitReader(rsp.Body, maxResponseBytes)).Decode(&result); err != nil {
		return recognizer.Result{}, r.fail("failed to decode recognizer response", err)
	}

	r.options.Logger.Info(
		"recognition complete",
		zap.Int("risk_score", result.RiskScore),
		zap.String("risk_level", result.RiskLevel),
		zap.Int("patterns", len(result.Patterns)),
		zap.Int("embedding_dims", len(result.Embedding)),
	)

	return result, nil
}

func (r *httpRecognizer) fail(detail string, err error) error {
	r.options.Logger.Error(detail, zap.Error(err))
	return fmt.Errorf("%w: %s: %v", recognizer.ErrRecognitionFailed, detail, err)
}

func NewRecognizer(opts ...recognizer.Option) recognizer.Recognizer {
	options := recognizer.NewOptions(opts...)

	if len(options.Location) == 0 {
		detail := "recognizer location is required"
		options.Logger.Error(detail)
		panic(detail)
	}

	r := &httpRecognizer{
		options: options,
		client: &http.Client{
			Timeout:   options.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}

	return r
}
