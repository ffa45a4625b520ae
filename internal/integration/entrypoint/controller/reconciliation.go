// Package controller implements HTTP handlers for the API endpoints.
package controller

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/concilia/backend/internal/application/usecase/reconciliation"
	domainerror "github.com/concilia/backend/internal/domain/error"
	"github.com/concilia/backend/internal/integration/entrypoint/dto"
	"github.com/concilia/backend/internal/integration/entrypoint/middleware"
)

// ReconciliationController handles reconciliation endpoints.
type ReconciliationController struct {
	listSuggestionsUseCase *reconciliation.ListSuggestionsUseCase
	createMatchUseCase     *reconciliation.CreateMatchUseCase
	reviewMatchUseCase     *reconciliation.ReviewMatchUseCase
	getMatchGroupUseCase   *reconciliation.GetMatchGroupUseCase
	unlinkUseCase          *reconciliation.UnlinkUseCase
	integrityUseCase       *reconciliation.IntegrityUseCase
}

// NewReconciliationController creates a new reconciliation controller instance.
func NewReconciliationController(
	listSuggestionsUseCase *reconciliation.ListSuggestionsUseCase,
	createMatchUseCase *reconciliation.CreateMatchUseCase,
	reviewMatchUseCase *reconciliation.ReviewMatchUseCase,
	getMatchGroupUseCase *reconciliation.GetMatchGroupUseCase,
	unlinkUseCase *reconciliation.UnlinkUseCase,
	integrityUseCase *reconciliation.IntegrityUseCase,
) *ReconciliationController {
	return &ReconciliationController{
		listSuggestionsUseCase: listSuggestionsUseCase,
		createMatchUseCase:     createMatchUseCase,
		reviewMatchUseCase:     reviewMatchUseCase,
		getMatchGroupUseCase:   getMatchGroupUseCase,
		unlinkUseCase:          unlinkUseCase,
		integrityUseCase:       integrityUseCase,
	}
}

// ListSuggestions handles GET /reconciliation/suggestions requests.
func (c *ReconciliationController) ListSuggestions(ctx *gin.Context) {
	companyID, ok := middleware.GetCompanyIDFromContext(ctx)
	if !ok {
		respondUnauthenticated(ctx)
		return
	}

	input := reconciliation.ListSuggestionsInput{
		CompanyID: companyID,
		Limit:     queryInt(ctx, "limit", 0),
		Offset:    queryInt(ctx, "offset", 0),
	}
	input.PeriodStart, input.PeriodEnd = queryPeriod(ctx)

	if raw := ctx.Query("account_id"); raw != "" {
		accountID, err := uuid.Parse(raw)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error: "Invalid account ID format",
			})
			return
		}
		input.AccountID = &accountID
	}

	output, err := c.listSuggestionsUseCase.Execute(ctx.Request.Context(), input)
	if err != nil {
		c.handleReconciliationError(ctx, err)
		return
	}

	suggestions := make([]dto.SuggestionDTO, len(output.Suggestions))
	for i, s := range output.Suggestions {
		entries := make([]dto.LedgerEntryDTO, len(s.LedgerEntries))
		for j, e := range s.LedgerEntries {
			entries[j] = dto.ToLedgerEntryDTO(e)
		}
		suggestions[i] = dto.SuggestionDTO{
			BankTransaction:  dto.ToBankTransactionDTO(s.BankTransaction),
			LedgerEntries:    entries,
			Score:            s.Score.StringFixed(4),
			Confidence:       string(s.Confidence),
			Reason:           s.Reason,
			GroupSize:        s.GroupSize,
			AmountDifference: s.AmountDifference.String(),
		}
	}

	ctx.JSON(http.StatusOK, dto.ListSuggestionsResponseDTO{
		Suggestions: suggestions,
		Summary:     dto.ToMatchingSummaryDTO(output.Summary),
	})
}

// CreateMatch handles POST /reconciliation/matches requests.
func (c *ReconciliationController) CreateMatch(ctx *gin.Context) {
	companyID, ok := middleware.GetCompanyIDFromContext(ctx)
	if !ok {
		respondUnauthenticated(ctx)
		return
	}

	var req dto.CreateMatchRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid request body: " + err.Error(),
		})
		return
	}

	bankTransactionID, err := uuid.Parse(req.BankTransactionID)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid bank transaction ID format",
		})
		return
	}

	ledgerEntryIDs, err := dto.ParseUUIDs(req.LedgerEntryIDs)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid ledger entry ID format",
		})
		return
	}

	output, err := c.createMatchUseCase.Execute(ctx.Request.Context(), reconciliation.CreateMatchInput{
		CompanyID:         companyID,
		BankTransactionID: bankTransactionID,
		LedgerEntryIDs:    ledgerEntryIDs,
	})
	if err != nil {
		c.handleReconciliationError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.CreateMatchResponseDTO{
		BankTransactionID: output.BankTransactionID.String(),
		Status:            string(output.Status),
		GroupSize:         output.GroupSize,
		MatchedAmount:     output.MatchedAmount.String(),
		AmountDifference:  output.AmountDifference.String(),
	})
}

// ReviewMatch handles PATCH /reconciliation/matches/:bankTransactionID requests.
func (c *ReconciliationController) ReviewMatch(ctx *gin.Context) {
	companyID, ok := middleware.GetCompanyIDFromContext(ctx)
	if !ok {
		respondUnauthenticated(ctx)
		return
	}

	bankTransactionID, err := uuid.Parse(ctx.Param("bankTransactionID"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid bank transaction ID format",
		})
		return
	}

	var req dto.ReviewMatchRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid request body: " + err.Error(),
		})
		return
	}

	output, err := c.reviewMatchUseCase.Execute(ctx.Request.Context(), reconciliation.ReviewMatchInput{
		CompanyID:         companyID,
		BankTransactionID: bankTransactionID,
		Decision:          reconciliation.ReviewDecision(req.Decision),
	})
	if err != nil {
		c.handleReconciliationError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ReviewMatchResponseDTO{
		BankTransactionID: output.BankTransactionID.String(),
		MatchStatus:       string(output.MatchStatus),
		BankStatus:        string(output.BankStatus),
	})
}

// GetMatchGroup handles GET /reconciliation/matches/:bankTransactionID requests.
func (c *ReconciliationController) GetMatchGroup(ctx *gin.Context) {
	companyID, ok := middleware.GetCompanyIDFromContext(ctx)
	if !ok {
		respondUnauthenticated(ctx)
		return
	}

	bankTransactionID, err := uuid.Parse(ctx.Param("bankTransactionID"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid bank transaction ID format",
		})
		return
	}

	output, err := c.getMatchGroupUseCase.Execute(ctx.Request.Context(), reconciliation.GetMatchGroupInput{
		CompanyID:         companyID,
		BankTransactionID: bankTransactionID,
	})
	if err != nil {
		c.handleReconciliationError(ctx, err)
		return
	}

	matches := make([]dto.MatchDTO, len(output.Matches))
	for i, m := range output.Matches {
		matches[i] = dto.ToMatchDTO(m)
	}
	entries := make([]dto.LedgerEntryDTO, len(output.LedgerEntries))
	for i, e := range output.LedgerEntries {
		entries[i] = dto.ToLedgerEntryDTO(e)
	}

	ctx.JSON(http.StatusOK, dto.GetMatchGroupResponseDTO{
		BankTransaction:  dto.ToBankTransactionDTO(output.BankTransaction),
		Matches:          matches,
		LedgerEntries:    entries,
		MatchedAmount:    output.MatchedAmount.String(),
		AmountDifference: output.AmountDifference.String(),
		Confidence:       string(output.Confidence),
	})
}

// UnlinkMatch handles DELETE /reconciliation/matches/:bankTransactionID requests.
func (c *ReconciliationController) UnlinkMatch(ctx *gin.Context) {
	companyID, ok := middleware.GetCompanyIDFromContext(ctx)
	if !ok {
		respondUnauthenticated(ctx)
		return
	}

	bankTransactionID, err := uuid.Parse(ctx.Param("bankTransactionID"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid bank transaction ID format",
		})
		return
	}

	output, err := c.unlinkUseCase.Execute(ctx.Request.Context(), reconciliation.UnlinkInput{
		CompanyID:         companyID,
		BankTransactionID: bankTransactionID,
	})
	if err != nil {
		c.handleReconciliationError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.UnlinkMatchResponseDTO{
		BankTransactionID: output.BankTransactionID.String(),
		EntriesReleased:   output.EntriesReleased,
	})
}

// GetIntegrityReport handles GET /reconciliation/integrity requests.
func (c *ReconciliationController) GetIntegrityReport(ctx *gin.Context) {
	companyID, ok := middleware.GetCompanyIDFromContext(ctx)
	if !ok {
		respondUnauthenticated(ctx)
		return
	}

	accountID, err := uuid.Parse(ctx.Query("account_id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "A valid account_id query parameter is required",
		})
		return
	}

	input := reconciliation.IntegrityReportInput{
		CompanyID: companyID,
		AccountID: accountID,
	}
	input.PeriodStart, input.PeriodEnd = queryPeriod(ctx)

	output, err := c.integrityUseCase.Report(ctx.Request.Context(), input)
	if err != nil {
		c.handleReconciliationError(ctx, err)
		return
	}

	duplicates := make([]dto.DuplicateIdentifierGroupDTO, len(output.Duplicates))
	for i, d := range output.Duplicates {
		ids := make([]string, len(d.TransactionIDs))
		for j, id := range d.TransactionIDs {
			ids[j] = id.String()
		}
		duplicates[i] = dto.DuplicateIdentifierGroupDTO{
			FitID:          d.FitID,
			TransactionIDs: ids,
			AnyConfirmed:   d.AnyConfirmed,
		}
	}

	ctx.JSON(http.StatusOK, dto.IntegrityReportResponseDTO{
		TotalTransactions:  output.TotalTransactions,
		WithBankIdentifier: output.WithBankIdentifier,
		IdentifierCoverage: output.IdentifierCoverage,
		Duplicates:         duplicates,
	})
}

// ValidateTransaction handles GET /reconciliation/integrity/:bankTransactionID requests.
func (c *ReconciliationController) ValidateTransaction(ctx *gin.Context) {
	companyID, ok := middleware.GetCompanyIDFromContext(ctx)
	if !ok {
		respondUnauthenticated(ctx)
		return
	}

	bankTransactionID, err := uuid.Parse(ctx.Param("bankTransactionID"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid bank transaction ID format",
		})
		return
	}

	output, err := c.integrityUseCase.Validate(ctx.Request.Context(), reconciliation.ValidateTransactionInput{
		CompanyID:         companyID,
		BankTransactionID: bankTransactionID,
	})
	if err != nil {
		c.handleReconciliationError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"bank_transaction_id": output.BankTransactionID.String(),
		"valid":               output.Valid,
		"warnings":            output.Warnings,
	})
}

// handleReconciliationError maps reconciliation errors to HTTP responses.
func (c *ReconciliationController) handleReconciliationError(ctx *gin.Context, err error) {
	var recErr *domainerror.ReconciliationError
	if errors.As(err, &recErr) {
		resp := dto.ErrorResponse{
			Error:   recErr.Message,
			Code:    string(recErr.Code),
			Details: recErr.ConflictingTransactionIDs,
		}
		ctx.JSON(statusCodeForReconciliationError(recErr.Code), resp)
		return
	}

	ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{
		Error: "An internal error occurred",
	})
}

// statusCodeForReconciliationError maps error codes to HTTP status codes.
func statusCodeForReconciliationError(code domainerror.ReconciliationErrorCode) int {
	switch code {
	case domainerror.ErrCodeBankTransactionNotFound,
		domainerror.ErrCodeLedgerEntryNotFound,
		domainerror.ErrCodeMatchGroupNotFound:
		return http.StatusNotFound
	case domainerror.ErrCodeEmptyLedgerEntryIDs,
		domainerror.ErrCodeInvalidMatchType,
		domainerror.ErrCodeInvalidPeriod:
		return http.StatusBadRequest
	case domainerror.ErrCodeAlreadyReconciled,
		domainerror.ErrCodeLedgerEntryNotEligible,
		domainerror.ErrCodeDuplicateIdentifierConflict,
		domainerror.ErrCodeReconciliationLocked:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondUnauthenticated writes the standard missing-authentication response.
func respondUnauthenticated(ctx *gin.Context) {
	ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{
		Error: "User not authenticated",
		Code:  string(domainerror.ErrCodeMissingToken),
	})
}

// queryInt parses an integer query parameter, falling back to def.
func queryInt(ctx *gin.Context, name string, def int) int {
	raw := ctx.Query(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return def
	}
	return v
}

// queryPeriod parses period_start/period_end query parameters (YYYY-MM-DD).
// Absent bounds default to an open period ending tomorrow.
func queryPeriod(ctx *gin.Context) (time.Time, time.Time) {
	start := time.Time{}
	end := time.Now().UTC().Add(24 * time.Hour)

	if raw := ctx.Query("period_start"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			start = t
		}
	}
	if raw := ctx.Query("period_end"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			// Inclusive end of day.
			end = t.Add(24*time.Hour - time.Nanosecond)
		}
	}
	return start, end
}
