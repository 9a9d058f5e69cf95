package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/redflag/enricher"
	imagememory "github.com/w-h-a/redflag/imagestore/memory"
	"github.com/w-h-a/redflag/internal/service/analysis"
	"github.com/w-h-a/redflag/internal/service/user"
	"github.com/w-h-a/redflag/recognizer"
	httprecognizer "github.com/w-h-a/redflag/recognizer/http"
	"github.com/w-h-a/redflag/retriever"
	retrievermemory "github.com/w-h-a/redflag/retriever/memory"
	storermemory "github.com/w-h-a/redflag/storer/memory"
	"go.uber.org/zap"
)

type staticGenerator struct{}

func (staticGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return "account, transfer", nil
}

type fixture struct {
	router     http.Handler
	recognized atomic.Int32
	failing    atomic.Bool
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{}

	model := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.recognized.Add(1)
		if f.failing.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, recognizer.Result{
			OcrText:     "your account is frozen, transfer now",
			RiskScore:   78,
			RiskLevel:   "HIGH",
			Description: "urgency pressure",
			Patterns: []recognizer.Pattern{
				{PatternType: "URGENCY", DetectedSentence: "transfer now", Keyword: "transfer", PatternScore: 80},
				{PatternType: "THREAT", DetectedSentence: "your account is frozen", Keyword: "frozen", PatternScore: 70},
			},
			Embedding: []float32{1, 0, 0},
		})
	}))
	t.Cleanup(model.Close)

	ctx := context.Background()

	cases := retrievermemory.NewRetriever(retriever.WithDimensions(3))
	for _, c := range []retriever.Case{
		{Content: "bank account frozen, send money to a safe account", Category: "IMPERSONATION", Embedding: []float32{1, 0, 0}},
		{Content: "refund requires a small transfer fee first", Category: "REFUND", Embedding: []float32{1, 1, 0}},
		{Content: "hi mom, new phone, buy gift cards", Category: "FAMILY", Embedding: []float32{0, 1, 0}},
	} {
		_, err := cases.Store(ctx, c)
		require.NoError(t, err)
	}

	store := storermemory.NewStorer()

	service := analysis.New(
		httprecognizer.NewRecognizer(recognizer.WithLocation(model.URL)),
		cases,
		enricher.NewEnricher(staticGenerator{}),
		imagememory.NewImageStore(),
		store,
		analysis.WithLogger(zap.NewNop()),
	)

	f.router = NewRouter(NewHandler(service, user.New(store, zap.NewNop()), zap.NewNop()))

	return f
}

func uploadRequest(t *testing.T, contentType string, data []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="image"; filename="chat.png"`)
	header.Set("Content-Type", contentType)

	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analysis/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return req
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) errorDetail {
	t.Helper()

	var body errorBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body), rr.Body.String())
	return body.Error
}

func TestUploadThenDetail(t *testing.T) {
	f := newFixture(t)
	userId := uuid.New()

	req := uploadRequest(t, "image/png", bytes.Repeat([]byte{0x89}, 2048))
	req.AddCookie(&http.Cookie{Name: userCookie, Value: userId.String()})
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var uploaded analysis.UploadResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &uploaded))
	assert.NotEqual(t, uuid.Nil, uploaded.AnalysisId)
	assert.Contains(t, uploaded.ImageUrl, "analysis/")

	req = httptest.NewRequest(http.MethodGet, "/api/v1/analysis/"+uploaded.AnalysisId.String(), nil)
	req.Header.Set(userHeader, userId.String())
	rr = httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var detail analysis.Detail
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &detail))

	assert.Equal(t, uploaded.AnalysisId.String(), detail.AnalysisId)
	assert.Equal(t, 78, detail.RiskScore)
	assert.Len(t, detail.PsychologicalPatterns, 2)
	require.Len(t, detail.SimilarCases, 3)

	assert.Equal(t, "IMPERSONATION", detail.SimilarCases[0].Category)
	assert.InDelta(t, 1.0, detail.SimilarCases[0].SimilarityScore, 1e-9)
	assert.InDelta(t, 0.71, detail.SimilarCases[1].SimilarityScore, 1e-9)
	assert.InDelta(t, 0.0, detail.SimilarCases[2].SimilarityScore, 1e-9)

	for i, c := range detail.SimilarCases {
		assert.Equal(t, i+1, c.MatchedRank)
		assert.Equal(t, "transfer, frozen", c.HighlightUser)
		assert.Equal(t, "account, transfer", c.HighlightCase)
	}
}

func TestUploadErrors(t *testing.T) {
	tests := []struct {
		name        string
		identity    string
		contentType string
		data        []byte
		failing     bool
		status      int
		code        string
		recognized  int32
	}{
		{name: "no identity", contentType: "image/png", data: []byte{1}, status: http.StatusUnauthorized, code: "UNAUTHENTICATED"},
		{name: "bad identity", identity: "nope", contentType: "image/png", data: []byte{1}, status: http.StatusBadRequest, code: "INVALID_USER_ID"},
		{name: "gif", identity: uuid.NewString(), contentType: "image/gif", data: []byte{1}, status: http.StatusUnsupportedMediaType, code: "UNSUPPORTED_TYPE"},
		{name: "empty", identity: uuid.NewString(), contentType: "image/png", data: nil, status: http.StatusBadRequest, code: "EMPTY_FILE"},
		{name: "recognizer down", identity: uuid.NewString(), contentType: "image/jpeg", data: []byte{1, 2, 3}, failing: true, status: http.StatusBadGateway, code: "RECOGNITION_FAILED", recognized: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.failing.Store(tt.failing)

			req := uploadRequest(t, tt.contentType, tt.data)
			if len(tt.identity) > 0 {
				req.Header.Set(userHeader, tt.identity)
			}
			rr := httptest.NewRecorder()
			f.router.ServeHTTP(rr, req)

			require.Equal(t, tt.status, rr.Code, rr.Body.String())
			assert.Equal(t, tt.code, decodeError(t, rr).Code)
			assert.Equal(t, tt.recognized, f.recognized.Load())
		})
	}
}

func TestUploadMissingField(t *testing.T) {
	f := newFixture(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("other", "value"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analysis/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set(userHeader, uuid.NewString())
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDetailErrors(t *testing.T) {
	f := newFixture(t)
	owner := uuid.New()

	req := uploadRequest(t, "image/png", []byte{1, 2, 3})
	req.Header.Set(userHeader, owner.String())
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var uploaded analysis.UploadResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &uploaded))

	tests := []struct {
		name   string
		user   string
		id     string
		status int
		code   string
	}{
		{name: "other user", user: uuid.NewString(), id: uploaded.AnalysisId.String(), status: http.StatusForbidden, code: "FORBIDDEN"},
		{name: "missing", user: owner.String(), id: uuid.NewString(), status: http.StatusNotFound, code: "NOT_FOUND"},
		{name: "malformed id", user: owner.String(), id: "abc", status: http.StatusBadRequest, code: "INVALID_ANALYSIS_ID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/analysis/"+tt.id, nil)
			req.Header.Set(userHeader, tt.user)
			rr := httptest.NewRecorder()
			f.router.ServeHTTP(rr, req)

			require.Equal(t, tt.status, rr.Code, rr.Body.String())
			assert.Equal(t, tt.code, decodeError(t, rr).Code)
		})
	}
}

func TestIssueUser(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/user/issue", nil)
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var issued userResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &issued))

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, userCookie, cookies[0].Name)
	assert.Equal(t, issued.UserId, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, 30*24*60*60, cookies[0].MaxAge)
	assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/user/issue", nil)
	req.AddCookie(cookies[0])
	rr = httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, rr.Result().Cookies())

	var again userResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &again))
	assert.Equal(t, issued.UserId, again.UserId)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/user/me", nil)
	req.AddCookie(cookies[0])
	rr = httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestIssueUserOverTLS(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/user/issue", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].Secure)
	assert.Equal(t, http.SameSiteNoneMode, cookies[0].SameSite)
}

func TestCurrentUserErrors(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/user/me", nil)
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/user/me", nil)
	req.AddCookie(&http.Cookie{Name: userCookie, Value: uuid.NewString()})
	rr = httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHealth(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}
