package github

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repodoc/internal/providers"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(WithBaseURL(server.URL))
}

func TestListDirectoryRoot(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/acme/widgets/contents", r.URL.Path)
		w.Write([]byte(`[
			{"name":"src","path":"src","type":"dir","sha":"d1"},
			{"name":"README.md","path":"README.md","type":"file","sha":"f1"}
		]`))
	})

	nodes, err := client.ListDirectory(context.Background(), "acme/widgets", "")
	require.NoError(t, err)
	require.Len(t, nodes, 2)

	assert.Equal(t, "src", nodes[0].Path)
	assert.True(t, nodes[0].IsDir())
	assert.Equal(t, "README.md", nodes[1].Path)
	assert.False(t, nodes[1].IsDir())
	assert.Equal(t, "f1", nodes[1].Revision)
}

func TestListDirectorySkipsSubmodules(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"name":"vendored","path":"vendored","type":"submodule","sha":"s1"},
			{"name":"main.go","path":"main.go","type":"file","sha":"f1"}
		]`))
	})

	nodes, err := client.ListDirectory(context.Background(), "acme/widgets", "")
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "main.go", nodes[0].Path)
}

func TestListDirectoryNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"Not Found"}`))
	})

	_, err := client.ListDirectory(context.Background(), "acme/private", "")
	var reqErr *providers.RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, http.StatusNotFound, reqErr.Status)
	assert.Equal(t, "Not Found", reqErr.Message)
}

func TestListDirectoryUnexpectedShape(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		// A file object where a listing array was expected.
		w.Write([]byte(`{"name":"README.md","path":"README.md","type":"file"}`))
	})

	_, err := client.ListDirectory(context.Background(), "acme/widgets", "README.md")
	var shapeErr *providers.ShapeError
	require.True(t, errors.As(err, &shapeErr))
}

func TestReadFileDecodesBase64(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte("# Widgets"))
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/acme/widgets/contents/README.md", r.URL.Path)
		w.Write([]byte(`{"name":"README.md","path":"README.md","type":"file","size":9,"encoding":"base64","content":"` + encoded + `"}`))
	})

	content, err := client.ReadFile(context.Background(), "acme/widgets", "README.md")
	require.NoError(t, err)
	assert.Equal(t, "# Widgets", content.Content)
	assert.Equal(t, "README.md", content.Path)
	assert.Equal(t, 9, content.Size)
}

func TestReadFileUndecodableContent(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "invalid base64",
			body: `{"path":"a.bin","type":"file","encoding":"base64","content":"!!!not-base64!!!"}`,
		},
		{
			name: "unknown encoding",
			body: `{"path":"a.bin","type":"file","encoding":"none","content":"x"}`,
		},
		{
			name: "non-utf8 payload",
			body: `{"path":"a.bin","type":"file","encoding":"base64","content":"` +
				base64.StdEncoding.EncodeToString([]byte{0xff, 0xfe, 0x00, 0x01}) + `"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			})

			content, err := client.ReadFile(context.Background(), "acme/widgets", "a.bin")
			require.NoError(t, err, "undecodable content must not fail the call")
			assert.Equal(t, UndecodableContent, content.Content)
		})
	}
}

func TestAuthorizationHeader(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := New(WithBaseURL(server.URL), WithToken("tok123"))
	require.True(t, client.Authenticated())

	_, err := client.ListDirectory(context.Background(), "acme/widgets", "")
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok123", gotAuth)

	anon := New(WithBaseURL(server.URL))
	assert.False(t, anon.Authenticated())
}
