package payments

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/alovak/tuitionpay/internal/middleware"
	"github.com/alovak/tuitionpay/payments/models"
	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 64 << 10

// API is the HTTP API of the payment relay
type API struct {
	payments *Service
	logger   *slog.Logger
}

func NewAPI(payments *Service, logger *slog.Logger) *API {
	if logger == nil {
		logger = slog.Default()
	}
	return &API{
		payments: payments,
		logger:   logger,
	}
}

func (a *API) AppendRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/fees", a.getFees)
		r.Post("/calculate-payment", a.calculatePayment)
		r.Post("/initiate-payment", a.initiatePayment)
	})
}

func (a *API) getFees(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.FeeStructureResponse{FeeStructure: a.payments.FeeStructure()})
}

func (a *API) calculatePayment(w http.ResponseWriter, r *http.Request) {
	req := models.CalculateRequest{}
	if err := decodeBody(w, r, &req); err != nil {
		a.writeError(w, r, validationError("program and percentage are required"))
		return
	}

	breakdown, err := a.payments.CalculatePayment(req)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	if !a.payments.KnownProgram(req.Program) {
		middleware.LoggerFrom(r, a.logger).Warn("unknown program quoted as zero", slog.String("program", req.Program))
	}

	writeJSON(w, http.StatusOK, breakdown)
}

func (a *API) initiatePayment(w http.ResponseWriter, r *http.Request) {
	logger := middleware.LoggerFrom(r, a.logger)

	req := models.PaymentRequest{}
	if err := decodeBody(w, r, &req); err != nil {
		e := validationError("invalid request body")
		e.Err = err
		a.writeError(w, r, e)
		return
	}
	if req.Program != "" && !a.payments.KnownProgram(req.Program) {
		logger.Warn("initiating payment for unknown program", slog.String("program", req.Program))
	}

	resp, err := a.payments.InitiatePayment(r.Context(), req)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	logger.Info("payment initiated",
		slog.String("txn_ref", resp.TransactionRef),
		slog.String("program", req.Program),
	)
	writeJSON(w, http.StatusOK, resp)
}

// writeError logs err and renders it as {message, details}.
func (a *API) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var e *Error
	if !errors.As(err, &e) {
		e = internalError(err)
	}

	logger := middleware.LoggerFrom(r, a.logger)
	attrs := []any{slog.Int("status", e.StatusCode), slog.String("kind", e.Kind.Error())}
	if e.Err != nil {
		attrs = append(attrs, slog.String("err", e.Err.Error()))
	}
	if e.StatusCode >= http.StatusInternalServerError {
		logger.Error(e.Message, attrs...)
	} else {
		logger.Warn(e.Message, attrs...)
	}

	writeJSON(w, e.StatusCode, models.ErrorResponse{Message: e.Message, Details: e.Details})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
