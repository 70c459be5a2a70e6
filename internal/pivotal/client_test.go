package pivotal

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	client := NewClient("test-token", 99)

	assert.Equal(t, "test-token", client.token)
	assert.Equal(t, 99, client.projectID)
	assert.Equal(t, DefaultEndpoint, client.endpoint)
	require.NotNil(t, client.httpClient)
	assert.Equal(t, DefaultTimeout, client.httpClient.Timeout)
}

func TestWithEndpoint(t *testing.T) {
	client := NewClient("token", 1)

	custom := client.WithEndpoint("https://tracker.example.com/services/v5/")

	assert.Equal(t, "https://tracker.example.com/services/v5", custom.endpoint)
	assert.Equal(t, DefaultEndpoint, client.endpoint, "original client should be unchanged")
	assert.Equal(t, "token", custom.token)
	assert.Equal(t, 1, custom.projectID)
}

func TestWithHTTPClient(t *testing.T) {
	httpClient := &http.Client{}
	client := NewClient("token", 1).WithHTTPClient(httpClient)

	assert.Same(t, httpClient, client.httpClient)
	assert.Equal(t, "token", client.token)
}

func TestGetSendsTokenAndSurfacesErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("X-TrackerToken"))
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid authentication credentials"}`))
	}))
	defer server.Close()

	client := NewClient("secret", 99).WithEndpoint(server.URL)

	_, _, err := client.get(context.Background(), client.buildURL(client.projectPath("/stories"), nil))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
	assert.Contains(t, err.Error(), "invalid authentication credentials")
}

func TestBuildURL(t *testing.T) {
	client := NewClient("token", 99)

	tests := []struct {
		name   string
		path   string
		params map[string]string
		want   string
	}{
		{
			name: "no params",
			path: "/projects/99/epics",
			want: DefaultEndpoint + "/projects/99/epics",
		},
		{
			name:   "with params",
			path:   "/projects/99/stories",
			params: map[string]string{"limit": "100", "offset": "200"},
			want:   DefaultEndpoint + "/projects/99/stories?limit=100&offset=200",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, client.buildURL(tt.path, tt.params))
		})
	}
}

func TestSiteURL(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		path     string
		want     string
	}{
		{
			name:     "site-relative download path",
			endpoint: DefaultEndpoint,
			path:     "/file_attachments/88/download",
			want:     "https://www.pivotaltracker.com/file_attachments/88/download",
		},
		{
			name:     "absolute URL passes through",
			endpoint: DefaultEndpoint,
			path:     "https://cdn.example.com/file.png",
			want:     "https://cdn.example.com/file.png",
		},
		{
			name:     "test endpoint without API suffix",
			endpoint: "http://127.0.0.1:8080",
			path:     "/file_attachments/88/download",
			want:     "http://127.0.0.1:8080/file_attachments/88/download",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewClient("token", 1).WithEndpoint(tt.endpoint)
			assert.Equal(t, tt.want, client.siteURL(tt.path))
		})
	}
}
