/*
dto.go - Data Transfer Objects for API responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific formatting (amounts as strings, RFC3339 timestamps)
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Response: Complex response wrappers

AMOUNT FORMATTING:
  Amounts are serialized as decimal strings, never as JSON numbers, so
  clients don't round-trip money through float64.

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/warp/recon-engine/recon"
)

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// ResultDTO is one counterparty's reconciled position.
type ResultDTO struct {
	CounterpartyID string `json:"counterparty_id"`
	TotalLent      string `json:"total_lent"`
	TotalPaid      string `json:"total_paid"`
	NetBalance     string `json:"net_balance"`
	Status         string `json:"status"`
}

// SummaryDTO is the rollup handed to presentation and to the assistant
// collaborator; Text is the preformatted one-line context string.
type SummaryDTO struct {
	TotalCounterparties int    `json:"total_counterparties"`
	Balanced            int    `json:"balanced"`
	Overpaid            int    `json:"overpaid"`
	Underpaid           int    `json:"underpaid"`
	TotalLent           string `json:"total_lent"`
	TotalPaid           string `json:"total_paid"`
	NetBalance          string `json:"net_balance"`
	Text                string `json:"text"`
}

// RunDTO describes one reconciliation run. Results is omitted in listings.
type RunDTO struct {
	ID             string      `json:"id"`
	CreatedAt      string      `json:"created_at"`
	LendingFile    string      `json:"lending_file"`
	SettlementFile string      `json:"settlement_file"`
	LendingRows    int         `json:"lending_rows"`
	SettlementRows int         `json:"settlement_rows"`
	AmountPolicy   string      `json:"amount_policy"`
	Summary        SummaryDTO  `json:"summary"`
	Results        []ResultDTO `json:"results,omitempty"`
}

// ErrorResponse is the uniform error envelope. Details carries the
// ingestion error text verbatim (row and column included) so the UI can
// surface it unchanged.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERTERS
// =============================================================================

func toResultDTOs(results []recon.Result) []ResultDTO {
	dtos := make([]ResultDTO, len(results))
	for i, r := range results {
		dtos[i] = ResultDTO{
			CounterpartyID: r.CounterpartyID,
			TotalLent:      r.TotalLent.String(),
			TotalPaid:      r.TotalPaid.String(),
			NetBalance:     r.NetBalance.String(),
			Status:         string(r.Status),
		}
	}
	return dtos
}

func toSummaryDTO(s recon.Summary) SummaryDTO {
	return SummaryDTO{
		TotalCounterparties: s.TotalCounterparties,
		Balanced:            s.Balanced,
		Overpaid:            s.Overpaid,
		Underpaid:           s.Underpaid,
		TotalLent:           s.TotalLent.String(),
		TotalPaid:           s.TotalPaid.String(),
		NetBalance:          s.NetBalance.String(),
		Text:                s.String(),
	}
}

func toRunDTO(run recon.Run, includeResults bool) RunDTO {
	dto := RunDTO{
		ID:             run.ID,
		CreatedAt:      run.CreatedAt.UTC().Format(time.RFC3339),
		LendingFile:    run.LendingFile,
		SettlementFile: run.SettlementFile,
		LendingRows:    run.LendingRows,
		SettlementRows: run.SettlementRows,
		AmountPolicy:   run.AmountPolicy,
		Summary:        toSummaryDTO(run.Summary),
	}
	if includeResults {
		dto.Results = toResultDTOs(run.Results)
	}
	return dto
}
