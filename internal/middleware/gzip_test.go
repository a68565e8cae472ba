package middleware

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmeshcher/puntodeagua/internal/model"
)

const orderJSON = `{"customer_name":"Ana Pérez","quantities":{"18L":2,"12L":0,"5L":1},"total":12.50}`

type orderEcho struct {
	CustomerName string `json:"customer_name"`
	Bottles      int    `json:"bottles"`
	Total        string `json:"total"`
}

// orderEchoHandler разбирает заказ из тела запроса и отвечает его сводкой.
func orderEchoHandler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Content-Encoding"))

		var req struct {
			CustomerName string           `json:"customer_name"`
			Quantities   model.Quantities `json:"quantities"`
			Total        decimal.Decimal  `json:"total"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "malformed order", http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(orderEcho{
			CustomerName: req.CustomerName,
			Bottles:      req.Quantities.Total(),
			Total:        req.Total.StringFixed(2),
		})
	}
}

func gzipBytes(t *testing.T, data []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write(data)
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

func TestGzipMiddleware(t *testing.T) {
	compressed := gzipBytes(t, []byte(orderJSON))

	type want struct {
		statusCode      int
		contentEncoding string
		order           *orderEcho
		bodyContains    string
	}

	tests := []struct {
		name    string
		body    []byte
		headers map[string]string
		want    want
	}{
		{
			name: "gzip order, gzip response",
			body: compressed,
			headers: map[string]string{
				"Content-Encoding": "gzip",
				"Accept-Encoding":  "gzip",
				"Content-Type":     "application/json",
			},
			want: want{
				statusCode:      http.StatusOK,
				contentEncoding: "gzip",
				order:           &orderEcho{CustomerName: "Ana Pérez", Bottles: 3, Total: "12.50"},
			},
		},
		{
			name: "gzip order, plain response",
			body: compressed,
			headers: map[string]string{
				"Content-Encoding": "gzip",
				"Content-Type":     "application/json",
			},
			want: want{
				statusCode: http.StatusOK,
				order:      &orderEcho{CustomerName: "Ana Pérez", Bottles: 3, Total: "12.50"},
			},
		},
		{
			name: "plain order, gzip response",
			body: []byte(orderJSON),
			headers: map[string]string{
				"Accept-Encoding": "gzip",
				"Content-Type":    "application/json",
			},
			want: want{
				statusCode:      http.StatusOK,
				contentEncoding: "gzip",
				order:           &orderEcho{CustomerName: "Ana Pérez", Bottles: 3, Total: "12.50"},
			},
		},
		{
			name: "body is not gzip",
			body: []byte(orderJSON),
			headers: map[string]string{
				"Content-Encoding": "gzip",
				"Accept-Encoding":  "gzip",
				"Content-Type":     "application/json",
			},
			want: want{
				statusCode:   http.StatusBadRequest,
				bodyContains: "invalid gzip body",
			},
		},
		{
			name: "truncated gzip stream",
			body: compressed[:len(compressed)/2],
			headers: map[string]string{
				"Content-Encoding": "gzip",
				"Content-Type":     "application/json",
			},
			want: want{
				statusCode:   http.StatusBadRequest,
				bodyContains: "malformed order",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewReader(tt.body))
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			w := httptest.NewRecorder()

			GzipMiddleware(orderEchoHandler(t)).ServeHTTP(w, req)

			res := w.Result()
			defer res.Body.Close()

			require.Equal(t, tt.want.statusCode, res.StatusCode)
			assert.Equal(t, tt.want.contentEncoding, res.Header.Get("Content-Encoding"))

			var body io.Reader = res.Body
			if res.Header.Get("Content-Encoding") == "gzip" {
				gr, err := gzip.NewReader(res.Body)
				require.NoError(t, err)
				defer gr.Close()
				body = gr
			}
			raw, err := io.ReadAll(body)
			require.NoError(t, err)

			if tt.want.order != nil {
				var got orderEcho
				require.NoError(t, json.Unmarshal(raw, &got))
				assert.Equal(t, *tt.want.order, got)
			}
			if tt.want.bodyContains != "" {
				assert.True(t, strings.Contains(string(raw), tt.want.bodyContains), "body %q", raw)
			}
		})
	}
}
