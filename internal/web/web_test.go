package web

import (
	"io/fs"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatic_HasClientFiles(t *testing.T) {
	for _, name := range []string{"index.html", "state.js", "app.js", "style.css"} {
		_, err := fs.Stat(Static(), name)
		assert.NoError(t, err, name)
	}
}

func TestHandler(t *testing.T) {
	tests := []struct {
		path        string
		status      int
		contentType string
	}{
		{"/", http.StatusOK, "text/html"},
		{"/static/app.js", http.StatusOK, "javascript"},
		{"/static/state.js", http.StatusOK, "javascript"},
		{"/static/style.css", http.StatusOK, "text/css"},
		{"/static/missing.js", http.StatusNotFound, ""},
		{"/elsewhere", http.StatusNotFound, ""},
	}

	h := Handler()
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			require.Equal(t, tt.status, rec.Code)
			if tt.contentType != "" {
				assert.Contains(t, rec.Header().Get("Content-Type"), tt.contentType)
			}
		})
	}
}

func TestHandler_IndexLoadsAssets(t *testing.T) {
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	body := rec.Body.String()
	assert.Contains(t, body, `src="/static/app.js"`)
	assert.Contains(t, body, `src="/static/state.js"`)
	assert.Less(t, strings.Index(body, "/static/state.js"), strings.Index(body, "/static/app.js"))
	assert.Contains(t, body, `href="/static/style.css"`)
}
