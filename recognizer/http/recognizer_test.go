package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/redflag/recognizer"
)

func TestRecognize(t *testing.T) {
	var gotName string
	var gotBytes []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)

		file, header, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()

		gotName = header.Filename
		gotBytes, _ = io.ReadAll(file)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ocrText":     "send me the code",
			"riskScore":   78,
			"riskLevel":   "HIGH",
			"description": "urgency and authority",
			"psychologicalPatterns": []map[string]any{
				{"patternType": "URGENCY", "detectedSentence": "right now", "keyword": "now", "patternScore": 80},
				{"patternType": "AUTHORITY", "detectedSentence": "this is the bank", "keyword": "bank", "patternScore": 70},
			},
			"embedding": []float32{0.1, -0.2, 0.3},
		})
	}))
	defer srv.Close()

	r := NewRecognizer(recognizer.WithLocation(srv.URL))

	result, err := r.Recognize(t.Context(), "chat.png", []byte("png-bytes"))
	require.NoError(t, err)

	assert.Equal(t, "chat.png", gotName)
	assert.Equal(t, []byte("png-bytes"), gotBytes)
	assert.Equal(t, 78, result.RiskScore)
	assert.Equal(t, "HIGH", result.RiskLevel)
	assert.Len(t, result.Patterns, 2)
	assert.Equal(t, []string{"now", "bank"}, result.Keywords())
	assert.Equal(t, []float32{0.1, -0.2, 0.3}, result.Embedding)
}

func TestRecognizeFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "non-success status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("{not json"))
			},
		},
		{
			name: "empty body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			r := NewRecognizer(recognizer.WithLocation(srv.URL))

			_, err := r.Recognize(t.Context(), "chat.jpg", []byte("jpg"))
			require.Error(t, err)
			assert.ErrorIs(t, err, recognizer.ErrRecognitionFailed)
		})
	}
}

func TestRecognizeTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	r := NewRecognizer(
		recognizer.WithLocation(srv.URL),
		recognizer.WithTimeout(20*time.Millisecond),
	)

	_, err := r.Recognize(t.Context(), "chat.jpg", []byte("jpg"))
	assert.ErrorIs(t, err, recognizer.ErrRecognitionFailed)
}

func TestNewRecognizerRequiresLocation(t *testing.T) {
	assert.Panics(t, func() {
		NewRecognizer()
	})
}
