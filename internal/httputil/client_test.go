package httputil

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestStandardClient_Wraps(t *testing.T) {
	customClient := &http.Client{}
	client := NewStandardClient(customClient)
	assert.Same(t, customClient, client.Client)

	assert.Same(t, http.DefaultClient, NewStandardClient(nil).Client)
}

func TestDoJSON_RoundTrip(t *testing.T) {
	mock := NewMockHTTPClient()
	mock.AddResponse(http.StatusOK, `{"name":"echo","count":3}`)

	var out payload
	err := DoJSON(context.Background(), mock, http.MethodPost, "http://optimizer/api/optimize", payload{Name: "in", Count: 1}, &out)
	require.NoError(t, err)
	assert.Equal(t, payload{Name: "echo", Count: 3}, out)

	req := mock.GetRequest(0)
	require.NotNil(t, req)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
	assert.JSONEq(t, `{"name":"in","count":1}`, mock.GetBody(0))
}

func TestDoJSON_NoBody(t *testing.T) {
	mock := NewMockHTTPClient()
	mock.AddResponse(http.StatusOK, `ignored`)

	require.NoError(t, DoJSON(context.Background(), mock, http.MethodGet, "http://optimizer/api/health", nil, nil))
	assert.Empty(t, mock.GetRequest(0).Header.Get("Content-Type"))
	assert.Empty(t, mock.GetBody(0))
}

func TestDoJSON_StatusError(t *testing.T) {
	mock := NewMockHTTPClient()
	mock.AddResponse(http.StatusBadGateway, "  upstream down \n")

	err := DoJSON(context.Background(), mock, http.MethodGet, "http://x", nil, &payload{})
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadGateway, se.StatusCode)
	assert.Equal(t, "upstream down", se.Body)
	assert.Contains(t, err.Error(), "502")
}

func TestDoJSON_MalformedBody(t *testing.T) {
	mock := NewMockHTTPClient()
	mock.AddResponse(http.StatusOK, `{"name":`)

	err := DoJSON(context.Background(), mock, http.MethodGet, "http://x", nil, &payload{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestDoJSON_TransportError(t *testing.T) {
	boom := errors.New("connection refused")
	mock := NewMockHTTPClient()
	mock.AddErrorResponse(boom)

	err := DoJSON(context.Background(), mock, http.MethodGet, "http://x", nil, nil)
	assert.ErrorIs(t, err, boom)
}

func TestDoJSON_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mock := NewMockHTTPClient()
	mock.AddResponse(http.StatusOK, `{}`)
	err := DoJSON(ctx, mock, http.MethodGet, "http://x", nil, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDoJSON_AgainstServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteJSONOK(w, payload{Name: r.URL.Path, Count: 7})
	}))
	defer srv.Close()

	var out payload
	require.NoError(t, DoJSON(context.Background(), NewStandardClient(srv.Client()), http.MethodGet, srv.URL+"/health", nil, &out))
	assert.Equal(t, payload{Name: "/health", Count: 7}, out)
}

func TestMockHTTPClient_DoFunc(t *testing.T) {
	mock := NewMockHTTPClient()
	mock.DoFunc = func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("custom")
	}
	err := DoJSON(context.Background(), mock, http.MethodGet, "http://x", nil, nil)
	assert.EqualError(t, err, "custom")
	assert.Equal(t, 1, mock.RequestCount())
}

func TestMockHTTPClient_DefaultErrorAndReset(t *testing.T) {
	mock := NewMockHTTPClient()
	mock.DefaultError = errors.New("down")
	assert.Error(t, DoJSON(context.Background(), mock, http.MethodGet, "http://x", nil, nil))

	mock.Reset()
	assert.Zero(t, mock.RequestCount())
	assert.Nil(t, mock.GetRequest(0))
	assert.NoError(t, DoJSON(context.Background(), mock, http.MethodGet, "http://x", nil, nil))
}
