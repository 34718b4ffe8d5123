/*
handlers.go - HTTP API handlers for the household ledger engine

PURPOSE:
  Exposes the engine via REST. Handles HTTP request/response, JSON
  serialization, and delegates to the Ledger (writes) and Aggregator
  (reads). All logging and observability lives here or further out; the
  engine itself only returns errors.

ENDPOINTS:
  Ledger:
    POST   /api/entries                       Record income
    GET    /api/entries                       List income entries
    POST   /api/exits                         Record expense (cash/installment)
    GET    /api/exits                         List exits with plans
    GET    /api/installments?plan_id=         List a plan's installments
    PUT    /api/installments/{id}/status      Mark installment paid

  Aggregation:
    GET    /api/summary?as_of=                Financial summary
    GET    /api/recent-transactions?limit=&as_of=  Merged feed
    GET    /api/reports/summary.xlsx          XLSX report export
    GET    /api/reports/summary.pdf           PDF report export

  Catalog:
    GET/POST /api/users /api/companies /api/products

ERROR HANDLING:
  Engine errors are discriminated and mapped:
  - 400: validation (bad amount, empty line items, bad schedule, ...)
  - 404: referenced id not found
  - 409: already paid, duplicate idempotency key
  - 500: persistence or unexpected failure

SEE ALSO:
  - dto.go:    Request/response data structures
  - server.go: Router setup and middleware
  - report.go: XLSX/PDF rendering
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/warp/ledger-engine/ledger"
)

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Ledger     *ledger.Ledger
	Aggregator *ledger.Aggregator
	Repo       ledger.Repository
	Catalog    ledger.Catalog

	// today is swappable for tests.
	today func() ledger.Date
}

// NewHandler creates a handler over the engine components.
func NewHandler(l *ledger.Ledger, agg *ledger.Aggregator, repo ledger.Repository, catalog ledger.Catalog) *Handler {
	return &Handler{
		Ledger:     l,
		Aggregator: agg,
		Repo:       repo,
		Catalog:    catalog,
		today:      ledger.Today,
	}
}

// =============================================================================
// ENTRY HANDLERS
// =============================================================================

// CreateEntry records a new income entry.
func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	var req CreateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	amount, err := ledger.ParseMoney(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid amount (use a decimal string like \"57.48\")", err)
		return
	}
	refDate, err := ledger.ParseDate(req.ReferenceDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid reference_date format (use YYYY-MM-DD)", err)
		return
	}

	entry, err := h.Ledger.CreateEntry(r.Context(), ledger.EntryInput{
		RecordedBy:    ledger.UserID(req.RecordedBy),
		Beneficiary:   ledger.UserID(req.Beneficiary),
		ReferenceDate: refDate,
		Amount:        amount,
		PayingParty:   ledger.CompanyID(req.PayingParty),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, entryDTO(entry))
}

// ListEntries returns all income entries.
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Repo.Entries(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	dtos := make([]EntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = entryDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// EXIT HANDLERS
// =============================================================================

// CreateExit records a new expense, generating its installment schedule when
// the payment method asks for one.
func (h *Handler) CreateExit(w http.ResponseWriter, r *http.Request) {
	var req CreateExitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	exitDate, err := ledger.ParseDate(req.ExitDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid exit_date format (use YYYY-MM-DD)", err)
		return
	}

	in := ledger.ExitInput{
		RecordedBy:     ledger.UserID(req.RecordedBy),
		ExitDate:       exitDate,
		Payee:          ledger.CompanyID(req.Payee),
		PaymentMethod:  ledger.PaymentMethod(req.PaymentMethod),
		Note:           req.Note,
		IdempotencyKey: req.IdempotencyKey,
	}
	for _, uid := range req.Responsible {
		in.Responsible = append(in.Responsible, ledger.UserID(uid))
	}
	for i, li := range req.LineItems {
		price, err := ledger.ParseMoney(li.UnitPrice)
		if err != nil {
			writeError(w, http.StatusBadRequest,
				"Invalid unit_price in line_items["+strconv.Itoa(i)+"]", err)
			return
		}
		in.LineItems = append(in.LineItems, ledger.LineItemInput{
			Product:   ledger.ProductID(li.ProductID),
			Quantity:  li.Quantity,
			UnitPrice: price,
		})
	}
	if req.Installments != nil {
		firstDue, err := ledger.ParseDate(req.Installments.FirstDueDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid first_due_date format (use YYYY-MM-DD)", err)
			return
		}
		in.Installments = &ledger.InstallmentConfig{
			Count:        req.Installments.Count,
			FirstDueDate: firstDue,
		}
	}

	exit, installments, err := h.Ledger.CreateExit(r.Context(), in)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, exitDTO(exit, installments, h.today()))
}

// ListExits returns all exits; installment exits include their schedule.
func (h *Handler) ListExits(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	exits, err := h.Repo.Exits(ctx)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	today := h.today()
	dtos := make([]ExitDTO, len(exits))
	for i, x := range exits {
		var installments []ledger.Installment
		if x.PlanID != "" {
			if installments, err = h.Repo.InstallmentsByPlan(ctx, x.PlanID); err != nil {
				writeDomainError(w, err)
				return
			}
		}
		dtos[i] = exitDTO(x, installments, today)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// INSTALLMENT HANDLERS
// =============================================================================

// ListInstallments returns installments, optionally filtered by plan.
func (h *Handler) ListInstallments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var installments []ledger.Installment
	var err error
	if planID := r.URL.Query().Get("plan_id"); planID != "" {
		installments, err = h.Repo.InstallmentsByPlan(ctx, ledger.PlanID(planID))
	} else {
		installments, err = h.Repo.Installments(ctx)
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}

	today := h.today()
	dtos := make([]InstallmentDTO, len(installments))
	for i, inst := range installments {
		dtos[i] = installmentDTO(inst, today)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// MarkInstallmentPaid sets an installment's paid date. Paying an already
// paid installment is a 409, never a silent overwrite.
func (h *Handler) MarkInstallmentPaid(w http.ResponseWriter, r *http.Request) {
	id := ledger.InstallmentID(chi.URLParam(r, "id"))

	var req MarkPaidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	paidDate, err := ledger.ParseDate(req.PaidDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid paid_date format (use YYYY-MM-DD)", err)
		return
	}

	inst, err := h.Ledger.MarkInstallmentPaid(r.Context(), id, paidDate)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, installmentDTO(inst, h.today()))
}

// =============================================================================
// AGGREGATION HANDLERS
// =============================================================================

// GetSummary returns the financial summary as of a reference day.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	asOf, ok := h.asOfParam(w, r)
	if !ok {
		return
	}

	summary, err := h.Aggregator.Summary(r.Context(), asOf)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summaryDTO(summary))
}

// GetRecentTransactions returns the merged income/expense feed.
func (h *Handler) GetRecentTransactions(w http.ResponseWriter, r *http.Request) {
	asOf, ok := h.asOfParam(w, r)
	if !ok {
		return
	}

	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid limit", err)
			return
		}
		limit = n
	}

	views, err := h.Aggregator.RecentTransactions(r.Context(), limit, asOf)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	ctx := r.Context()
	dtos := make([]TransactionDTO, len(views))
	for i, v := range views {
		dtos[i] = TransactionDTO{
			ID:           v.ID,
			Kind:         string(v.Kind),
			Date:         v.Date.String(),
			Amount:       v.Amount.String(),
			Counterparty: string(v.Counterparty),
		}
		// Names are resolved here, at presentation time; a missing catalog
		// row degrades to the bare id rather than failing the feed.
		if company, err := h.Catalog.Company(ctx, v.Counterparty); err == nil {
			dtos[i].CounterpartyName = company.Name
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) asOfParam(w http.ResponseWriter, r *http.Request) (ledger.Date, bool) {
	raw := r.URL.Query().Get("as_of")
	if raw == "" {
		return h.today(), true
	}
	asOf, err := ledger.ParseDate(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid as_of format (use YYYY-MM-DD)", err)
		return ledger.Date{}, false
	}
	return asOf, true
}

// =============================================================================
// CATALOG HANDLERS
// =============================================================================

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Catalog.Users(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := make([]UserDTO, len(users))
	for i, u := range users {
		dtos[i] = UserDTO{ID: string(u.ID), Name: u.Name}
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req UserDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	u := ledger.User{ID: ledger.UserID(req.ID), Name: req.Name}
	if err := h.Catalog.SaveUser(r.Context(), u); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, UserDTO{ID: string(u.ID), Name: u.Name})
}

func (h *Handler) ListCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := h.Catalog.Companies(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := make([]CompanyDTO, len(companies))
	for i, c := range companies {
		dtos[i] = CompanyDTO{ID: string(c.ID), Name: c.Name}
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateCompany(w http.ResponseWriter, r *http.Request) {
	var req CompanyDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	c := ledger.Company{ID: ledger.CompanyID(req.ID), Name: req.Name}
	if err := h.Catalog.SaveCompany(r.Context(), c); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, CompanyDTO{ID: string(c.ID), Name: c.Name})
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.Catalog.Products(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := make([]ProductDTO, len(products))
	for i, p := range products {
		dtos[i] = ProductDTO{ID: string(p.ID), Name: p.Name, ReferencePrice: p.ReferencePrice.String()}
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	price := ledger.Money{}
	if req.ReferencePrice != "" {
		var err error
		if price, err = ledger.ParseMoney(req.ReferencePrice); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid reference_price", err)
			return
		}
	}
	p := ledger.Product{ID: ledger.ProductID(req.ID), Name: req.Name, ReferencePrice: price}
	if err := h.Catalog.SaveProduct(r.Context(), p); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ProductDTO{
		ID: string(p.ID), Name: p.Name, ReferencePrice: p.ReferencePrice.String(),
	})
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps discriminated engine errors onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case ledger.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Not found", err)
	case ledger.IsConflict(err):
		writeError(w, http.StatusConflict, "Conflict", err)
	case errors.Is(err, ledger.ErrValidation):
		writeError(w, http.StatusBadRequest, "Validation failed", err)
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}
