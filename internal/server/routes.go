package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"pricetrack/pkg/httpx/reply"
	"pricetrack/pkg/logx"
	"pricetrack/pkg/middlewarex"
)

const logFieldMaxLen = 2048

func (s Server) RegisterRoutes(r chi.Router) {
	r.Route("/", func(r chi.Router) {
		r.Route("/v1", func(r chi.Router) {
			r.Get("/sources", handler(s.getV1Sources))
			r.Route("/series", func(r chi.Router) {
				r.Get("/", handler(s.getV1Series))
				r.Get("/{sourceId}", handler(s.getV1SourceSeries))
			})
		})
	})
}

// Handler is the full middleware chain around the routes.
func (s Server) Handler() http.Handler {
	masker := logx.NewSensitiveDataMasker()

	r := chi.NewRouter()
	r.Use(
		middlewarex.TraceID,
		middlewarex.Logger,
		middlewarex.Recovery,
		middlewarex.RequestLogging(masker, logFieldMaxLen),
		middlewarex.ResponseLogging(masker, logFieldMaxLen),
	)

	s.RegisterRoutes(r)

	return r
}

func handler(f func(http.ResponseWriter, *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := f(w, r); err != nil {
			reply.Error(r.Context(), w, err)
		}
	}
}
