package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/TemirB/order-finalizer/internal/application/service"
	"github.com/TemirB/order-finalizer/internal/domain"
	"github.com/TemirB/order-finalizer/internal/observability"
)

//go:generate mockgen -source httpapi.go -destination=httpapi_mock_test.go -package=httpapi

const (
	msgOrderNotFound  = "Order not found"
	msgFinalizeFailed = "An error occurred while finalizing the order."
)

type ServerWithStats interface {
	GetByIDWithStats(ctx context.Context, id string) (*domain.Order, service.LookupStats, error)
	FinalizeWithStats(ctx context.Context, id string) (service.FinalizeStats, error)
	CreateOrder(ctx context.Context, req domain.CreateOrderRequest) (*domain.Order, error)
	UpdateShipping(ctx context.Context, id string, info domain.ShippingInfo) (*domain.Order, error)
}

type Server struct {
	service ServerWithStats
	router  chi.Router
	logger  *zap.Logger
	metrics observability.Metrics
}

func New(service ServerWithStats, logger *zap.Logger, metrics observability.Metrics, corsOrigins []string) *Server {
	s := &Server{
		service: service,
		logger:  logger,
		router:  chi.NewRouter(),
		metrics: metrics,
	}
	s.routes(corsOrigins)
	return s
}

func (s *Server) routes(corsOrigins []string) {
	s.router.Use(
		middleware.RequestID,
		middleware.RealIP,
		RequestLogger(s.logger),
		middleware.Recoverer,
		cors.Handler(cors.Options{
			AllowedOrigins: corsOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
			ExposedHeaders: []string{"Server-Timing", "X-Source"},
			MaxAge:         300,
		}),
		ServerTimingApp(s.metrics),
	)

	s.router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	s.router.Get("/order/{order_id}", s.getOrder)
	s.router.Post("/order/create_preliminary_order", s.createOrder)
	s.router.Put("/order/update_order_with_user_info/{order_id}", s.updateOrder)
	s.router.Post("/finalize-order", s.finalizeOrder)
}

type errorResponse struct {
	Error string `json:"error"`
}

type successResponse struct {
	Success bool `json:"success"`
}

type orderResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	OrderID string `json:"order_id"`
}

const maxBodyBytes = 1 << 20

// decodeBody reads exactly one JSON value from the request body into v. It
// writes the error response itself and reports whether the caller should go on.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := r.Header.Get("Content-Type")
	if !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSON(w, http.StatusUnsupportedMediaType, errorResponse{Error: "Content-Type must be application/json"})
		return false
	}

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	err := dec.Decode(v)
	if err == nil {
		// anything after the value, whitespace aside, is rejected
		if extra := dec.Decode(&struct{}{}); !errors.Is(extra, io.EOF) {
			err = errTrailingData
		}
	}
	if err != nil {
		s.logger.Warn("Error while decoding JSON",
			zap.Error(err),
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad json"})
		return false
	}
	return true
}

var errTrailingData = errors.New("unexpected data after JSON value")

func (s *Server) finalizeOrder(w http.ResponseWriter, r *http.Request) {
	var req domain.FinalizeRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	st, err := s.service.FinalizeWithStats(r.Context(), string(req.OrderID))

	observability.AppendServerTimings(w,
		observability.Timing{Name: "lookup", DurMs: st.LookupMs},
		observability.Timing{Name: "customer_mail", DurMs: st.CustomerMailMs},
		observability.Timing{Name: "developer_mail", DurMs: st.DeveloperMailMs},
		observability.Timing{Name: "save", DurMs: st.SaveMs},
	)

	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, successResponse{Success: true})
	case errors.Is(err, domain.ErrOrderNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: msgOrderNotFound})
	default:
		s.logger.Error("Error finalizing order",
			zap.String("order_id", string(req.OrderID)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: msgFinalizeFailed})
	}
}

func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateOrderRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	order, err := s.service.CreateOrder(r.Context(), req)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, orderResponse{
			Success: true,
			Message: "Preliminary order created successfully",
			OrderID: order.ID,
		})
	case errors.Is(err, domain.ErrInvalidOrder):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to create preliminary order"})
	}
}

func (s *Server) updateOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "order_id")

	var info domain.ShippingInfo
	if !s.decodeBody(w, r, &info) {
		return
	}

	order, err := s.service.UpdateShipping(r.Context(), id, info)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, orderResponse{
			Success: true,
			Message: "Order updated with user information successfully",
			OrderID: order.ID,
		})
	case errors.Is(err, domain.ErrOrderNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: msgOrderNotFound})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "server error"})
	}
}

func (s *Server) getOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "order_id")

	order, st, err := s.service.GetByIDWithStats(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: msgOrderNotFound})
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "server error"})
		return
	}

	observability.AppendServerTiming(w, "cache", st.CacheMs, "")
	observability.AppendServerTiming(w, "db", st.DBMs, "")
	observability.AppendServerTiming(w, "source", 0, string(st.Source))
	w.Header().Set("X-Source", string(st.Source))
	observability.SetIfPos(w, "X-Cache-Time", st.CacheMs)
	observability.SetIfPos(w, "X-DB-Time", st.DBMs)

	writeJSON(w, http.StatusOK, order)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// Handle mounts an extra handler, e.g. /metrics, on the router.
func (s *Server) Handle(pattern string, h http.Handler) { s.router.Handle(pattern, h) }

// ListenAndServe serves until ctx is done, then drains in-flight requests
// for at most shutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Handler() http.Handler { return s.router }
