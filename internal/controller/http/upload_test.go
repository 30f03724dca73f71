package http

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nextstepz/community/internal/storage"
)

type fakeUploader struct {
	in   storage.UploadInput
	body []byte
}

func (f *fakeUploader) MaxSize() int64 { return 64 }

func (f *fakeUploader) Upload(_ context.Context, in storage.UploadInput) (*storage.UploadOutput, error) {
	if in.ContentType != "image/png" {
		return nil, storage.ErrUnsupportedType
	}
	f.in = in
	f.body, _ = io.ReadAll(in.Reader)
	return &storage.UploadOutput{Key: "posts/u1/a.png", URL: "http://cdn/posts/u1/a.png", Size: in.Size, UploadedAt: time.Now()}, nil
}

func multipartRequest(t *testing.T, contentType string, data []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="avatar.png"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/uploads", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUpload(t *testing.T) {
	uploader := &fakeUploader{}
	r := newRouter(NewUploadHandler(uploader, nil), "u1")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, multipartRequest(t, "image/png", []byte("png-bytes")))
	require.Equal(t, http.StatusCreated, rec.Code)

	assert.Equal(t, "u1", uploader.in.OwnerID)
	assert.Equal(t, "avatar.png", uploader.in.Filename)
	assert.Equal(t, int64(9), uploader.in.Size)
	assert.Equal(t, []byte("png-bytes"), uploader.body)
	assert.Equal(t, "http://cdn/posts/u1/a.png", decode[storage.UploadOutput](t, rec).URL)
}

func TestUploadRejects(t *testing.T) {
	r := newRouter(NewUploadHandler(&fakeUploader{}, nil), "u1")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, multipartRequest(t, "video/mp4", []byte("movie")))
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/uploads", bytes.NewReader([]byte("{}"))))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	newRouter(NewUploadHandler(&fakeUploader{}, nil), "").ServeHTTP(rec, multipartRequest(t, "image/png", []byte("x")))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSwaggerServesJSON(t *testing.T) {
	spec := []byte("openapi: 3.0.3\ninfo:\n  title: Community\n  version: 1.2.0\npaths:\n  /posts:\n    get:\n      responses:\n        200:\n          description: ok\n")
	h, err := NewSwaggerHandler("Community", "/api/v1/community", spec)
	require.NoError(t, err)
	r := newRouter(h, "")

	rec := do(t, r, http.MethodGet, "/docs/openapi.json", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	doc := decode[map[string]any](t, rec)
	assert.Equal(t, "3.0.3", doc["openapi"])

	responses := doc["paths"].(map[string]any)["/posts"].(map[string]any)["get"].(map[string]any)["responses"].(map[string]any)
	assert.Contains(t, responses, "200")

	rec = do(t, r, http.MethodGet, "/docs", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := rec.Body.String()
	assert.Contains(t, page, "openapi.yaml")
	assert.Contains(t, page, `<html lang="vi">`)
	assert.Contains(t, page, "<h1>Community v1.2.0</h1>")
	assert.Contains(t, page, `href="/api/v1/community/docs/openapi.json"`)

	_, err = NewSwaggerHandler("x", "", []byte("\t: not yaml"))
	assert.Error(t, err)
}
