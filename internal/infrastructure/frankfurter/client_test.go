package frankfurter_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"pricetrack/internal/domain"
	"pricetrack/internal/domain/entity"
	"pricetrack/internal/domain/service/fx"
	"pricetrack/internal/domain/value"
	"pricetrack/internal/infrastructure/frankfurter"
	"pricetrack/internal/infrastructure/web"
	"pricetrack/pkg/errcodes"
)

func server(t *testing.T, status int, body string, gotPath *string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*gotPath = r.URL.String()
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return srv
}

func TestClient_Rate(t *testing.T) {
	rq := require.New(t)

	var path string

	// 2024-06-08 is a Saturday; the API answers with Friday's fixing.
	srv := server(t, http.StatusOK, `{"amount":1.0,"base":"USD","date":"2024-06-07","rates":{"CAD":1.3757}}`, &path)

	client := frankfurter.NewClient(web.NewFetcher(web.Options{}), srv.URL)

	q, err := client.Rate(context.Background(), value.MustParseDate("2024-06-08"), value.USD, value.CAD)
	rq.NoError(err)
	rq.Equal("/2024-06-08?from=USD&to=CAD", path)
	rq.Equal("1.3757", q.Rate.String())
	rq.Equal(value.MustParseDate("2024-06-07"), q.EffectiveDate)
	rq.Equal(frankfurter.ProviderName, client.Name())
}

func TestClient_RateWithConverter(t *testing.T) {
	rq := require.New(t)

	var path string

	srv := server(t, http.StatusOK, `{"amount":1,"base":"USD","date":"2024-06-10","rates":{"CAD":1.37}}`, &path)

	client := frankfurter.NewClient(web.NewFetcher(web.Options{}), srv.URL).WithName("ecb")
	conv := fx.NewConverter(client, value.CAD)

	d := value.MustParseDate("2024-06-10")
	got, err := conv.Convert(context.Background(), d, entity.MustMoney("225.00", value.USD))
	rq.NoError(err)
	rq.Equal("308.25", got.Amount.StringFixed(2))
	rq.Equal("ecb", got.FX.Provider)
	rq.Equal(d, got.FX.Date)
}

func TestClient_RateErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "server error", status: http.StatusInternalServerError, body: "oops"},
		{name: "not found", status: http.StatusNotFound, body: `{"message":"not found"}`},
		{name: "malformed", status: http.StatusOK, body: `<html>`},
		{name: "missing currency", status: http.StatusOK, body: `{"amount":1,"base":"USD","date":"2024-06-10","rates":{"EUR":0.9}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rq := require.New(t)

			var path string

			srv := server(t, tt.status, tt.body, &path)
			client := frankfurter.NewClient(web.NewFetcher(web.Options{}), srv.URL)

			_, err := client.Rate(context.Background(), value.MustParseDate("2024-06-10"), value.USD, value.CAD)
			rq.Error(err)
			rq.True(domain.HasCode(err, errcodes.RateUnavailable))
		})
	}
}
