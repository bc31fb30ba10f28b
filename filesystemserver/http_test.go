package filesystemserver_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gstbrowser/connector/filesystemserver"
	"github.com/gstbrowser/connector/filesystemserver/handler"
)

type httpBody struct {
	Status string `json:"status"`
	Err    int    `json:"err"`
	Files  []struct {
		Name      string  `json:"name"`
		Type      string  `json:"type"`
		Size      *int64  `json:"size"`
		Thumbnail *string `json:"thumbnail"`
	} `json:"files"`
	Tree json.RawMessage `json:"tree"`
}

func serve(t *testing.T, h http.Handler, req *http.Request) (*httptest.ResponseRecorder, httpBody) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

	var body httpBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return rec, body
}

func multipartUpload(t *testing.T, target string, fields map[string]string, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHTTPHandler(t *testing.T) {
	root := t.TempDir()
	other := t.TempDir()
	profiles := handler.Profiles{
		handler.DefaultProfile: {RootDir: root},
		"other":                {RootDir: other},
	}
	h := filesystemserver.NewHTTPHandler(profiles, filesystemserver.HTTPOptions{
		MaxUploadSize: 1024,
		CORSOrigins:   []string{"*"},
		Metrics:       true,
	})

	t.Run("missing action", func(t *testing.T) {
		_, body := serve(t, h, httptest.NewRequest(http.MethodGet, "/connector", nil))
		assert.Equal(t, "ERR", body.Status)
		assert.Equal(t, handler.ErrMissingAction, body.Err)
	})

	t.Run("unknown action", func(t *testing.T) {
		_, body := serve(t, h, httptest.NewRequest(http.MethodGet, "/?action=explode", nil))
		assert.Equal(t, handler.ErrMissingAction, body.Err)
	})

	t.Run("mkdir from the query string", func(t *testing.T) {
		_, body := serve(t, h, httptest.NewRequest(http.MethodGet, "/connector?action=mkdir&dir=docs", nil))
		assert.Equal(t, "OK", body.Status)
		assert.NotEmpty(t, body.Tree)
		require.Len(t, body.Files, 1)
		assert.Equal(t, "docs", body.Files[0].Name)
		assert.Nil(t, body.Files[0].Size)
	})

	t.Run("parameters from a form body", func(t *testing.T) {
		form := url.Values{"action": {"mkdir"}, "path": {"docs"}, "dir": {"drafts"}}
		req := httptest.NewRequest(http.MethodPost, "/connector", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		_, body := serve(t, h, req)
		assert.Equal(t, "OK", body.Status)
		assert.DirExists(t, filepath.Join(root, "docs", "drafts"))
	})

	t.Run("query string wins over the body", func(t *testing.T) {
		form := url.Values{"action": {"tree"}}
		req := httptest.NewRequest(http.MethodPost, "/connector?action=files&path=docs", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		_, body := serve(t, h, req)
		assert.Equal(t, "OK", body.Status)
		assert.Empty(t, body.Tree)
		require.Len(t, body.Files, 1)
		assert.Equal(t, "drafts", body.Files[0].Name)
	})

	t.Run("upload", func(t *testing.T) {
		req := multipartUpload(t, "/connector",
			map[string]string{"action": "upload", "path": "docs"},
			"Résumé final.txt", []byte("resume"))

		_, body := serve(t, h, req)
		assert.Equal(t, "OK", body.Status)
		assert.Equal(t, []string{"Resume-final.txt", "drafts"}, []string{body.Files[0].Name, body.Files[1].Name})

		data, err := os.ReadFile(filepath.Join(root, "docs", "Resume-final.txt"))
		require.NoError(t, err)
		assert.Equal(t, "resume", string(data))
	})

	t.Run("upload without a file", func(t *testing.T) {
		form := url.Values{"action": {"upload"}}
		req := httptest.NewRequest(http.MethodPost, "/connector", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		_, body := serve(t, h, req)
		assert.Equal(t, handler.ErrUpload, body.Err)
	})

	t.Run("upload too large", func(t *testing.T) {
		req := multipartUpload(t, "/connector",
			map[string]string{"action": "upload"},
			"big.bin", bytes.Repeat([]byte("x"), 4096))

		_, body := serve(t, h, req)
		assert.Equal(t, "ERR", body.Status)
		assert.Equal(t, handler.ErrUploadFileSize, body.Err)
		assert.NoFileExists(t, filepath.Join(root, "big.bin"))
	})

	t.Run("config selects the profile", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(other, "only-here.txt"), []byte("x"), 0644))

		_, body := serve(t, h, httptest.NewRequest(http.MethodGet, "/connector?config=other&action=files", nil))
		require.Len(t, body.Files, 1)
		assert.Equal(t, "only-here.txt", body.Files[0].Name)
		require.NotNil(t, body.Files[0].Thumbnail)
		assert.Equal(t, "", *body.Files[0].Thumbnail)
	})

	t.Run("errors keep HTTP 200", func(t *testing.T) {
		_, body := serve(t, h, httptest.NewRequest(http.MethodGet, "/connector?action=files&path=missing", nil))
		assert.Equal(t, handler.ErrDirectoryNotFound, body.Err)
	})

	t.Run("request id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/connector?action=tree", nil)
		req.Header.Set("X-Request-ID", "abc-123")
		rec, _ := serve(t, h, req)
		assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))

		rec, _ = serve(t, h, httptest.NewRequest(http.MethodGet, "/connector?action=tree", nil))
		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	})

	t.Run("cors preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/connector", nil)
		req.Header.Set("Origin", "https://app.example")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("healthz", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
	})

	t.Run("metrics", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "connector_requests_total")
	})
}

func TestCORSAllowList(t *testing.T) {
	h := filesystemserver.NewHTTPHandler(testProfiles(t.TempDir()), filesystemserver.HTTPOptions{
		CORSOrigins: []string{"https://files.example"},
	})

	req := httptest.NewRequest(http.MethodGet, "/connector?action=tree", nil)
	req.Header.Set("Origin", "https://files.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "https://files.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/connector?action=tree", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.NotContains(t, rec.Body.String(), "connector_requests_total")
}
