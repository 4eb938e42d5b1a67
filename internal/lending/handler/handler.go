package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"creditline/internal/lending/models"
	id "creditline/pkg/domain"
	dErrors "creditline/pkg/domain-errors"
	"creditline/pkg/platform/httputil"
	"creditline/pkg/requestcontext"
)

// Service is the lending API the handler drives.
type Service interface {
	Register(ctx context.Context, req *models.Registration) (*models.Customer, error)
	CheckEligibility(ctx context.Context, req *models.LoanApplication) (*models.EligibilityResult, error)
	CreateLoan(ctx context.Context, req *models.LoanApplication) (*models.OriginationResult, error)
	GetLoan(ctx context.Context, loanID id.LoanID) (*models.LoanDetail, error)
	ListCustomerLoans(ctx context.Context, customerID id.CustomerID) ([]*models.Loan, error)
}

// Handler serves the lending endpoints under /api.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the lending routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/", h.HandleIndex)
		r.Get("/register", describe(registerDescriptor))
		r.Post("/register", h.HandleRegister)
		r.Get("/check-eligibility", describe(checkEligibilityDescriptor))
		r.Post("/check-eligibility", h.HandleCheckEligibility)
		r.Get("/create-loan", describe(createLoanDescriptor))
		r.Post("/create-loan", h.HandleCreateLoan)
		r.Get("/view-loan/{loan_id}", h.HandleViewLoan)
		r.Get("/view-loans/{customer_id}", h.HandleViewLoans)
	})
}

var endpointIndex = map[string]string{
	"register":          "/api/register",
	"check_eligibility": "/api/check-eligibility",
	"create_loan":       "/api/create-loan",
	"view_loan":         "/api/view-loan/{loan_id}",
	"view_loans":        "/api/view-loans/{customer_id}",
}

// endpointDescriptor documents a POST endpoint's body for GET callers.
type endpointDescriptor struct {
	Message string            `json:"message"`
	Method  string            `json:"method"`
	Fields  map[string]string `json:"fields"`
}

var loanFields = map[string]string{
	"customer_id":   "integer",
	"loan_amount":   "decimal",
	"interest_rate": "decimal",
	"tenure":        "integer",
}

var (
	registerDescriptor = endpointDescriptor{
		Message: "Customer registration",
		Method:  http.MethodPost,
		Fields: map[string]string{
			"first_name":     "string",
			"last_name":      "string",
			"age":            "integer",
			"monthly_income": "decimal",
			"phone_number":   "string",
		},
	}
	checkEligibilityDescriptor = endpointDescriptor{Message: "Loan eligibility check", Method: http.MethodPost, Fields: loanFields}
	createLoanDescriptor       = endpointDescriptor{Message: "Loan creation", Method: http.MethodPost, Fields: loanFields}
)

func describe(d endpointDescriptor) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, d)
	}
}

func (h *Handler) HandleIndex(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, endpointIndex)
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RegisterRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	customer, err := h.service.Register(ctx, req.Registration())
	if err != nil {
		h.writeServiceError(ctx, w, "failed to register customer", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toRegisterResponse(customer))
}

func (h *Handler) HandleCheckEligibility(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[LoanRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.CheckEligibility(ctx, req.Application())
	if err != nil {
		h.writeServiceError(ctx, w, "failed to check eligibility", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toEligibilityResponse(result))
}

// HandleCreateLoan answers 201 for an originated loan and 200 for a rejection.
func (h *Handler) HandleCreateLoan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[LoanRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.CreateLoan(ctx, req.Application())
	if err != nil {
		h.writeServiceError(ctx, w, "failed to create loan", err)
		return
	}
	status := http.StatusOK
	if result.Approved {
		status = http.StatusCreated
	}
	httputil.WriteJSON(w, status, toCreateLoanResponse(result))
}

func (h *Handler) HandleViewLoan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	loanID, err := id.ParseLoanID(chi.URLParam(r, "loan_id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	detail, err := h.service.GetLoan(ctx, loanID)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to view loan", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toLoanDetailResponse(detail))
}

func (h *Handler) HandleViewLoans(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	customerID, err := id.ParseCustomerID(chi.URLParam(r, "customer_id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	loans, err := h.service.ListCustomerLoans(ctx, customerID)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to view loans", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toLoanSummaries(loans))
}

// writeServiceError logs server-side failures at error level and client
// mistakes at info level, then writes the mapped response.
func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	requestID := requestcontext.RequestID(ctx)
	if status := dErrors.HTTPStatus(dErrors.CodeOf(err)); status >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, msg, "request_id", requestID, "error", err)
	} else {
		h.logger.InfoContext(ctx, msg, "request_id", requestID, "error", err)
	}
	httputil.WriteError(w, err)
}
