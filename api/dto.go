/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the engine's domain records from the external API contract. Amounts cross
  the wire as decimal strings ("57.48"), never as binary floats; dates as
  YYYY-MM-DD.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

SEE ALSO:
  - handlers.go: Uses these types
  - ledger/types.go: The domain records behind them
*/
package api

import (
	"time"

	"github.com/warp/ledger-engine/ledger"
)

// ErrorResponse is the JSON body of every error status.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// ENTRIES
// =============================================================================

type EntryDTO struct {
	ID            string `json:"id"`
	RecordedBy    string `json:"recorded_by"`
	Beneficiary   string `json:"beneficiary"`
	ReferenceDate string `json:"reference_date"`
	Amount        string `json:"amount"`
	PayingParty   string `json:"paying_party"`
	RegisteredAt  string `json:"registered_at"`
}

type CreateEntryRequest struct {
	RecordedBy    string `json:"recorded_by"`
	Beneficiary   string `json:"beneficiary"`
	ReferenceDate string `json:"reference_date"`
	Amount        string `json:"amount"`
	PayingParty   string `json:"paying_party"`
}

func entryDTO(e ledger.Entry) EntryDTO {
	return EntryDTO{
		ID:            string(e.ID),
		RecordedBy:    string(e.RecordedBy),
		Beneficiary:   string(e.Beneficiary),
		ReferenceDate: e.ReferenceDate.String(),
		Amount:        e.Amount.String(),
		PayingParty:   string(e.PayingParty),
		RegisteredAt:  e.RegisteredAt.Format(time.RFC3339),
	}
}

// =============================================================================
// EXITS
// =============================================================================

type LineItemDTO struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	LineTotal string `json:"line_total"`
}

type ExitDTO struct {
	ID            string           `json:"id"`
	RecordedBy    string           `json:"recorded_by"`
	ExitDate      string           `json:"exit_date"`
	Payee         string           `json:"payee"`
	PaymentMethod string           `json:"payment_method"`
	Responsible   []string         `json:"responsible"`
	LineItems     []LineItemDTO    `json:"line_items"`
	TotalAmount   string           `json:"total_amount"`
	Note          string           `json:"note,omitempty"`
	RegisteredAt  string           `json:"registered_at"`
	PlanID        string           `json:"plan_id,omitempty"`
	Installments  []InstallmentDTO `json:"installments,omitempty"`
}

type LineItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

type InstallmentConfigRequest struct {
	Count        int    `json:"count"`
	FirstDueDate string `json:"first_due_date"`
}

type CreateExitRequest struct {
	RecordedBy     string                    `json:"recorded_by"`
	ExitDate       string                    `json:"exit_date"`
	Payee          string                    `json:"payee"`
	PaymentMethod  string                    `json:"payment_method"`
	Responsible    []string                  `json:"responsible"`
	LineItems      []LineItemRequest         `json:"line_items"`
	Note           string                    `json:"note,omitempty"`
	Installments   *InstallmentConfigRequest `json:"installments,omitempty"`
	IdempotencyKey string                    `json:"idempotency_key,omitempty"`
}

func exitDTO(x ledger.Exit, installments []ledger.Installment, today ledger.Date) ExitDTO {
	dto := ExitDTO{
		ID:            string(x.ID),
		RecordedBy:    string(x.RecordedBy),
		ExitDate:      x.ExitDate.String(),
		Payee:         string(x.Payee),
		PaymentMethod: string(x.PaymentMethod),
		TotalAmount:   x.TotalAmount.String(),
		Note:          x.Note,
		RegisteredAt:  x.RegisteredAt.Format(time.RFC3339),
		PlanID:        string(x.PlanID),
	}
	for _, uid := range x.Responsible {
		dto.Responsible = append(dto.Responsible, string(uid))
	}
	for _, li := range x.LineItems {
		dto.LineItems = append(dto.LineItems, LineItemDTO{
			ProductID: string(li.Product),
			Quantity:  li.Quantity,
			UnitPrice: li.UnitPrice.String(),
			LineTotal: li.LineTotal.String(),
		})
	}
	for _, inst := range installments {
		dto.Installments = append(dto.Installments, installmentDTO(inst, today))
	}
	return dto
}

// =============================================================================
// INSTALLMENTS
// =============================================================================

type InstallmentDTO struct {
	ID       string `json:"id"`
	PlanID   string `json:"plan_id"`
	Sequence int    `json:"sequence"`
	DueDate  string `json:"due_date"`
	Amount   string `json:"amount"`
	PaidDate string `json:"paid_date,omitempty"`
	// Status is derived from due/paid date at response time, never stored.
	Status string `json:"status"`
}

type MarkPaidRequest struct {
	PaidDate string `json:"paid_date"`
}

func installmentDTO(inst ledger.Installment, today ledger.Date) InstallmentDTO {
	dto := InstallmentDTO{
		ID:       string(inst.ID),
		PlanID:   string(inst.PlanID),
		Sequence: inst.Sequence,
		DueDate:  inst.DueDate.String(),
		Amount:   inst.Amount.String(),
		Status:   string(ledger.StatusOf(inst, today)),
	}
	if inst.PaidDate != nil {
		dto.PaidDate = inst.PaidDate.String()
	}
	return dto
}

// =============================================================================
// SUMMARY + FEED
// =============================================================================

type SummaryDTO struct {
	AsOf                    string `json:"as_of"`
	Balance                 string `json:"balance"`
	TotalEntries            string `json:"total_entries"`
	TotalExits              string `json:"total_exits"`
	TotalInstallmentPlanned string `json:"total_installment_planned"`
	TotalPaid               string `json:"total_paid"`
	TotalPending            string `json:"total_pending"`
}

func summaryDTO(s ledger.Summary) SummaryDTO {
	return SummaryDTO{
		AsOf:                    s.AsOf.String(),
		Balance:                 s.Balance.String(),
		TotalEntries:            s.TotalEntries.String(),
		TotalExits:              s.TotalExits.String(),
		TotalInstallmentPlanned: s.TotalInstallmentPlanned.String(),
		TotalPaid:               s.TotalPaid.String(),
		TotalPending:            s.TotalPending.String(),
	}
}

type TransactionDTO struct {
	ID           string `json:"id"`
	Kind         string `json:"kind"`
	Date         string `json:"date"`
	Amount       string `json:"amount"`
	Counterparty string `json:"counterparty"`
	// CounterpartyName is resolved from the catalog at response time.
	CounterpartyName string `json:"counterparty_name,omitempty"`
}

// =============================================================================
// CATALOG
// =============================================================================

type UserDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type CompanyDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ProductDTO struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	ReferencePrice string `json:"reference_price"`
}
