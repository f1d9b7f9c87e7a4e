package httpclient

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaborage/go-rest/codec"
	"github.com/gaborage/go-rest/internal/testutil"
	"github.com/gaborage/go-rest/logger"
)

func TestRequestBuilderGet(t *testing.T) {
	server := testutil.NewIPv4Server(t, echoHandler())
	c := NewBuilder(logger.Nop()).WithBaseURL(server.URL).Build()

	resp, err := NewRequest[echoed](c).
		URL("/search").
		WithQuery("q", "hello world").
		WithQuery("page", 2).
		WithHeader("X-Trace", "abc").
		WithBearerToken("tok").
		Get(context.Background())
	require.NoError(t, err)
	require.NotNil(t, resp.Data)

	assert.Equal(t, "GET", resp.Data.Method)
	assert.Equal(t, "/search", resp.Data.Path)
	assert.Equal(t, "q=hello%20world&page=2", resp.Data.Query)
	assert.Equal(t, []string{"abc"}, resp.Data.Headers["X-Trace"])
	assert.Equal(t, []string{"Bearer tok"}, resp.Data.Headers["Authorization"])
}

func TestRequestBuilderPostJSON(t *testing.T) {
	server := testutil.NewIPv4Server(t, echoHandler())
	c := New(logger.Nop())

	resp, err := NewRequest[echoed](c).
		URL(server.URL).
		WithData(user{ID: 5, Name: "lin"}).
		WithAPIKey(testAPIKey, "k-1").
		Post(context.Background())
	require.NoError(t, err)
	require.NotNil(t, resp.Data)

	assert.Equal(t, "POST", resp.Data.Method)
	assert.Equal(t, testContentType, resp.Data.ContentType)
	assert.JSONEq(t, `{"id":5,"name":"lin"}`, resp.Data.Body)
	assert.Equal(t, []string{"k-1"}, resp.Data.Headers["X-Api-Key"])
}

func TestRequestBuilderContentTypes(t *testing.T) {
	server := testutil.NewIPv4Server(t, echoHandler())
	c := New(logger.Nop())

	t.Run("form", func(t *testing.T) {
		resp, err := NewRequest[echoed](c).
			URL(server.URL).
			WithData(map[string]string{"b": "2", "a": "1"}).
			WithContentType(codec.FormURLEncoded).
			Put(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "a=1&b=2", resp.Data.Body)
	})

	t.Run("explicit body", func(t *testing.T) {
		resp, err := NewRequest[echoed](c).
			URL(server.URL).
			WithBody(codec.NewBinary([]byte("raw"))).
			Patch(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "raw", resp.Data.Body)
		assert.Equal(t, "application/octet-stream", resp.Data.ContentType)
	})

	t.Run("bad shape", func(t *testing.T) {
		_, err := NewRequest[echoed](c).
			URL(server.URL).
			WithData("text").
			WithContentType(codec.Binary).
			Post(context.Background())
		assert.True(t, IsErrorType(err, ValidationError))
	})
}

func TestRequestBuilderBuild(t *testing.T) {
	c := New(logger.Nop())

	req, err := NewRequest[string](c).
		URL("http://example.com/a?x=1").
		WithQueries(map[string]string{"z": "1", "y": "2"}).
		WithHeaders(map[string]string{"A": "1"}).
		WithBasicAuth("user", "p@ss").
		Build()
	require.NoError(t, err)

	assert.Equal(t, "http://example.com/a?x=1&y=2&z=1", req.URL)
	assert.Equal(t, "1", req.Headers["A"])
	assert.Equal(t, "Basic "+base64.StdEncoding.EncodeToString([]byte("user:p@ss")), req.Headers[HeaderAuthorization])
	assert.Nil(t, req.Body)
}

func TestRequestBuilderDeleteAndHead(t *testing.T) {
	server := testutil.NewIPv4Server(t, echoHandler())
	c := New(logger.Nop())

	resp, err := NewRequest[echoed](c).URL(server.URL).Delete(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "DELETE", resp.Data.Method)

	head, err := NewRequest[echoed](c).URL(server.URL).Head(context.Background())
	require.NoError(t, err)
	assert.True(t, head.IsSuccess)
	assert.Nil(t, head.Data)
}
