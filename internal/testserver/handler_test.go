package testserver

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHandler_Status(t *testing.T) {
	h := NewHandler()
	assert.Equal(t, http.StatusTeapot, get(t, h, "/status/418").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/status/99").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/status/abc").Code)
}

func TestHandler_Redirect(t *testing.T) {
	h := NewHandler()

	rec := get(t, h, "/redirect/3")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/redirect/2", rec.Header().Get("Location"))
	assert.Equal(t, "3", rec.Header().Get("X-Hops-Left"))

	rec = get(t, h, "/redirect/0")
	assert.Equal(t, "/echo", rec.Header().Get("Location"))
}

func TestHandler_Bytes(t *testing.T) {
	rec := get(t, NewHandler(), "/bytes/300")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.Bytes()
	require.Len(t, body, 300)
	assert.Equal(t, byte(0), body[256])
	assert.Equal(t, byte(255), body[255])
}

func TestHandler_EchoOverServer(t *testing.T) {
	server := httptest.NewServer(NewHandler())
	defer server.Close()

	req, err := http.NewRequest("PURGE", server.URL+"/echo?x=1", nil)
	require.NoError(t, err)
	req.Header.Set("X-Token", "abc")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var e Echo
	require.NoError(t, json.Unmarshal(data, &e))
	assert.Equal(t, "PURGE", e.Method)
	assert.Equal(t, "/echo", e.Path)
	assert.Equal(t, "x=1", e.Query)
	assert.Equal(t, []string{"abc"}, e.Headers["X-Token"])
}

func TestHandler_Delay(t *testing.T) {
	rec := get(t, NewHandler(), "/delay/1")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "waited 1ms", rec.Body.String())
}
