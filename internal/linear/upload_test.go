package linear

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestUpload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"fileUpload":{"success":true,"uploadFile":{
			"uploadUrl":"https://uploads.example.com/put/abc",
			"assetUrl":"https://uploads.example.com/abc/logo.png",
			"contentType":"image/png",
			"headers":[{"key":"x-amz-acl","value":"public-read"}]}}}}`))
	}))
	defer server.Close()

	client := NewClient("token").WithEndpoint(server.URL)

	slot, err := client.RequestUpload(context.Background(), "logo.png", "image/png", 1234)

	require.NoError(t, err)
	assert.Equal(t, "https://uploads.example.com/put/abc", slot.UploadURL)
	assert.Equal(t, "https://uploads.example.com/abc/logo.png", slot.AssetURL)
	require.Len(t, slot.Headers, 1)
	assert.Equal(t, "x-amz-acl", slot.Headers[0].Key)
}

func TestRequestUploadMissingSlot(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"fileUpload":{"success":false,"uploadFile":null}}}`))
	}))
	defer server.Close()

	client := NewClient("token").WithEndpoint(server.URL)

	_, err := client.RequestUpload(context.Background(), "logo.png", "image/png", 1234)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "logo.png")
}

func TestUploadFileRetriesTransientFailures(t *testing.T) {
	var attempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "image/png", r.Header.Get("Content-Type"))
		assert.Equal(t, "public-read", r.Header.Get("x-amz-acl"))
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, []byte("png-bytes"), body)
	}))
	defer server.Close()

	client := NewClient("token")
	slot := &UploadSlot{
		UploadURL:   server.URL,
		ContentType: "image/png",
		Headers:     []UploadHeader{{Key: "x-amz-acl", Value: "public-read"}},
	}

	err := client.UploadFile(context.Background(), slot, []byte("png-bytes"))

	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
}
