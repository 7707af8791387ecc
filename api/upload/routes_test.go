package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngHeader is enough of a PNG file for content sniffing
var pngHeader = []byte("\x89PNG\x0D\x0A\x1A\x0A\x00\x00\x00\x0DIHDR")

type recordingProvider struct {
	maxBytes int64
	received []byte
	ext      string
	mime     string
}

func (p *recordingProvider) MaxBytes() int64 {
	return p.maxBytes
}

func (p *recordingProvider) Upload(ctx context.Context, part io.Reader, ext string, mime string) (string, error) {
	data, err := io.ReadAll(part)
	if err != nil {
		return "", err
	}

	p.received = data
	p.ext = ext
	p.mime = mime
	return "https://food-connect-images.s3.amazonaws.com/foods/image" + ext, nil
}

func multipartRequest(t *testing.T, field string, content []byte) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, "food.bin")
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	request := httptest.NewRequest(http.MethodPost, "/", body)
	request.Header.Set("Content-Type", writer.FormDataContentType())
	return request
}

func TestUploadImage(t *testing.T) {
	provider := &recordingProvider{maxBytes: 1 << 20}
	router := Routes(provider)

	content := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0x42}, 2048)...)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, multipartRequest(t, "file", content))
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	var response map[string]string
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Equal(t, "https://food-connect-images.s3.amazonaws.com/foods/image.png", response["url"])
	assert.Equal(t, content, provider.received)
	assert.Equal(t, "image/png", provider.mime)
}

func TestUploadRejections(t *testing.T) {
	provider := &recordingProvider{maxBytes: 1 << 20}
	router := Routes(provider)

	tests := []struct {
		name    string
		request *http.Request
	}{
		{"wrong field", multipartRequest(t, "image", pngHeader)},
		{"not an image", multipartRequest(t, "file", []byte("just some notes about the food"))},
		{"not multipart", httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(pngHeader))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, tt.request)
			assert.Equal(t, http.StatusBadRequest, recorder.Code)
		})
	}

	assert.Nil(t, provider.received)
}
