package eastmoney

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	client := NewClient(WithBaseURL(server.URL), WithRateLimit(1000))
	return client, server
}

func TestGetQuotePE(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/qt/stock/get", r.URL.Path)
		assert.Equal(t, "1.000001", r.URL.Query().Get("secid"))
		assert.Equal(t, "f57,f58,f162,f167", r.URL.Query().Get("fields"))
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		assert.Equal(t, DefaultReferer, r.Header.Get("Referer"))
		w.Write([]byte(`jQuery112309({"data":{"f57":"000001","f58":"上证指数","f162":13.42,"f167":1.31}});`))
	})
	defer server.Close()

	pe, err := client.GetQuotePE(context.Background(), "1.000001")
	require.NoError(t, err)
	assert.Equal(t, 13.42, pe)
}

func TestGetQuotePE_NonPositive(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"f57":"000001","f58":"上证指数","f162":0}}`))
	})
	defer server.Close()

	_, err := client.GetQuotePE(context.Background(), "1.000001")
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestGetQuotePE_EmptyData(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"rc":0,"data":null}`))
	})
	defer server.Close()

	_, err := client.GetQuotePE(context.Background(), "1.999999")
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestGetQuotePE_ServerError(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	})
	defer server.Close()

	_, err := client.GetQuotePE(context.Background(), "1.000001")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.HTTPStatus())
}

func TestGetBondYield(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/qt/bond/trends2/get", r.URL.Path)
		assert.Equal(t, "105.BCNY10Y", r.URL.Query().Get("secid"))
		assert.Equal(t, "0", r.URL.Query().Get("iscr"))
		w.Write([]byte(`({"data":{"trends":["2025-08-22 14:58,1.7191,0,0,0,0","2025-08-22 14:59,1.7195,0,0,0,0","2025-08-22 15:00,1.7205,0,0,0,0"]}})`))
	})
	defer server.Close()

	yield, err := client.GetBondYield(context.Background(), "105.BCNY10Y")
	require.NoError(t, err)
	assert.Equal(t, 1.7205, yield)
}

func TestGetBondYield_NoTrends(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"trends":[]}}`))
	})
	defer server.Close()

	_, err := client.GetBondYield(context.Background(), "105.BCNY10Y")
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestGetNorthboundKlines(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/qt/kamtbs.kline/get", r.URL.Path)
		assert.Equal(t, "101", r.URL.Query().Get("klt"))
		assert.Equal(t, "6", r.URL.Query().Get("lmt"))
		w.Write([]byte(`{"data":{"klines":["2025-08-18,12.50,0.3","2025-08-19,-4.20,0.1","2025-08-20,30.00,0.8"]}}`))
	})
	defer server.Close()

	points, err := client.GetNorthboundKlines(context.Background(), 6)
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.Equal(t, FlowPoint{Date: "2025-08-18", Net: 12.5}, points[0])
	assert.Equal(t, FlowPoint{Date: "2025-08-19", Net: -4.2}, points[1])
	assert.Equal(t, FlowPoint{Date: "2025-08-20", Net: 30.0}, points[2])
}

func TestGetNorthboundKlines_MalformedRow(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"klines":["2025-08-18,abc,0.3"]}}`))
	})
	defer server.Close()

	_, err := client.GetNorthboundKlines(context.Background(), 6)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}
