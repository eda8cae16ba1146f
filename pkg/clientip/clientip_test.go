package clientip_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/avetch/accesskit/pkg/clientip"
)

func newRequest(remoteAddr string, headers map[string]string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = remoteAddr
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return req
}

func TestGetIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{
			name:       "remote addr fallback",
			remoteAddr: "203.0.113.7:51234",
			want:       "203.0.113.7",
		},
		{
			name:       "remote addr without port",
			remoteAddr: "203.0.113.7",
			want:       "203.0.113.7",
		},
		{
			name:       "cloudflare header wins",
			remoteAddr: "10.0.0.1:1234",
			headers: map[string]string{
				"CF-Connecting-IP": "198.51.100.4",
				"X-Forwarded-For":  "192.0.2.9",
			},
			want: "198.51.100.4",
		},
		{
			name:       "platform header before forwarded",
			remoteAddr: "10.0.0.1:1234",
			headers: map[string]string{
				"DO-Connecting-IP": "198.51.100.5",
				"X-Forwarded-For":  "192.0.2.9",
			},
			want: "198.51.100.5",
		},
		{
			name:       "first valid forwarded entry",
			remoteAddr: "10.0.0.1:1234",
			headers: map[string]string{
				"X-Forwarded-For": "not-an-ip, 192.0.2.9, 10.0.0.2",
			},
			want: "192.0.2.9",
		},
		{
			name:       "real ip header",
			remoteAddr: "10.0.0.1:1234",
			headers: map[string]string{
				"X-Real-IP": "192.0.2.10",
			},
			want: "192.0.2.10",
		},
		{
			name:       "spoofed header with garbage falls through",
			remoteAddr: "203.0.113.7:51234",
			headers: map[string]string{
				"CF-Connecting-IP": "<script>alert(1)</script>",
				"X-Forwarded-For":  "999.999.999.999",
			},
			want: "203.0.113.7",
		},
		{
			name:       "ipv6 is normalized",
			remoteAddr: "10.0.0.1:1234",
			headers: map[string]string{
				"X-Real-IP": "2001:0db8:0000:0000:0000:0000:0000:0001",
			},
			want: "2001:db8::1",
		},
		{
			name:       "garbage remote addr yields empty",
			remoteAddr: "not-an-address",
			want:       "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, clientip.GetIP(newRequest(tt.remoteAddr, tt.headers)))
		})
	}
}

func TestMiddleware_StoresIPInContext(t *testing.T) {
	t.Parallel()

	var seen string
	handler := clientip.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = clientip.GetIPFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := newRequest("203.0.113.7:51234", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "203.0.113.7", seen)
}

func TestGetIPFromContext_Missing(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, clientip.GetIPFromContext(req.Context()))
}
