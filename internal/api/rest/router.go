package rest

import (
	"context"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/oshokin/security-zone/internal/domain/zone"
	"github.com/oshokin/security-zone/internal/logger"
	"github.com/oshokin/security-zone/internal/repository/history"
)

// Service is the zone controller as seen by the HTTP surface.
type Service interface {
	SetSurveillance(ctx context.Context, armed bool, actor *zone.Actor) (zone.Snapshot, error)
	Snapshot() zone.Snapshot
}

// HistoryReader returns recent transitions of a zone.
type HistoryReader interface {
	Recent(ctx context.Context, zoneName string, limit int) ([]history.Entry, error)
}

// NewRouter registers the routes. The history route is only served when
// reader is not nil.
func NewRouter(service Service, reader HistoryReader) *mux.Router {
	h := &handler{
		service: service,
		history: reader,
	}

	r := mux.NewRouter()
	r.HandleFunc("/health", h.health).Methods(http.MethodGet)

	api := r.PathPrefix("/api/zone").Subrouter()
	api.HandleFunc("", h.getZone).Methods(http.MethodGet)
	api.HandleFunc("/surveillance", h.putSurveillance).Methods(http.MethodPut)

	if reader != nil {
		api.HandleFunc("/history", h.getHistory).Methods(http.MethodGet)
	}

	return r
}

// NewHandler wraps the router with panic recovery and access logging.
func NewHandler(ctx context.Context, service Service, reader HistoryReader) http.Handler {
	accessLog := zap.NewStdLog(logger.FromContext(ctx).Desugar().Named("http")).Writer()

	return handlers.LoggingHandler(
		accessLog,
		handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(NewRouter(service, reader)),
	)
}
