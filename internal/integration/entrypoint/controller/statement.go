// Package controller implements HTTP handlers for the API endpoints.
package controller

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/concilia/backend/internal/application/usecase/statement"
	domainerror "github.com/concilia/backend/internal/domain/error"
	"github.com/concilia/backend/internal/integration/entrypoint/dto"
	"github.com/concilia/backend/internal/integration/entrypoint/middleware"
)

// maxStatementSize caps uploaded statement files at 10 MB.
const maxStatementSize = 10 << 20

// StatementController handles bank statement endpoints.
type StatementController struct {
	uploadUseCase *statement.UploadStatementUseCase
	listUseCase   *statement.ListStatementsUseCase
}

// NewStatementController creates a new statement controller instance.
func NewStatementController(
	uploadUseCase *statement.UploadStatementUseCase,
	listUseCase *statement.ListStatementsUseCase,
) *StatementController {
	return &StatementController{
		uploadUseCase: uploadUseCase,
		listUseCase:   listUseCase,
	}
}

// Upload handles POST /statements/upload requests. The statement file comes
// either as the multipart "file" field or as the raw request body with the
// filename in the "filename" query parameter.
func (c *StatementController) Upload(ctx *gin.Context) {
	companyID, ok := middleware.GetCompanyIDFromContext(ctx)
	if !ok {
		respondUnauthenticated(ctx)
		return
	}
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		respondUnauthenticated(ctx)
		return
	}

	accountID, err := uuid.Parse(c.accountIDParam(ctx))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "A valid account_id is required",
		})
		return
	}

	fileName, content, err := c.readFile(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Failed to read statement file: " + err.Error(),
		})
		return
	}

	output, err := c.uploadUseCase.Execute(ctx.Request.Context(), statement.UploadStatementInput{
		CompanyID:  companyID,
		AccountID:  accountID,
		UploadedBy: userID,
		FileName:   fileName,
		Content:    content,
	})
	if err != nil {
		c.handleStatementError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.UploadStatementResponseDTO{
		StatementID:      output.StatementID.String(),
		TransactionCount: output.TransactionCount,
		PeriodStart:      output.PeriodStart.Format("2006-01-02"),
		PeriodEnd:        output.PeriodEnd.Format("2006-01-02"),
		Replaced:         output.Replaced,
		Warnings:         output.Warnings,
		Matching:         dto.ToMatchingSummaryDTO(output.Matching),
	})
}

// List handles GET /statements requests.
func (c *StatementController) List(ctx *gin.Context) {
	companyID, ok := middleware.GetCompanyIDFromContext(ctx)
	if !ok {
		respondUnauthenticated(ctx)
		return
	}

	input := statement.ListStatementsInput{
		CompanyID: companyID,
		Limit:     queryInt(ctx, "limit", 0),
		Offset:    queryInt(ctx, "offset", 0),
	}
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

	statements, err := c.listUseCase.Execute(ctx.Request.Context(), input)
	if err != nil {
		c.handleStatementError(ctx, err)
		return
	}

	out := make([]dto.StatementDTO, len(statements))
	for i, s := range statements {
		out[i] = dto.ToStatementDTO(s)
	}
	ctx.JSON(http.StatusOK, dto.ListStatementsResponseDTO{Statements: out})
}

// accountIDParam reads the account id from the multipart form or the query.
func (c *StatementController) accountIDParam(ctx *gin.Context) string {
	if v := ctx.PostForm("account_id"); v != "" {
		return v
	}
	return ctx.Query("account_id")
}

// readFile extracts the statement bytes and filename from the request.
func (c *StatementController) readFile(ctx *gin.Context) (string, []byte, error) {
	if strings.HasPrefix(ctx.ContentType(), "multipart/") {
		header, err := ctx.FormFile("file")
		if err != nil {
			return "", nil, err
		}
		if header.Size > maxStatementSize {
			return "", nil, errors.New("file exceeds the maximum allowed size")
		}
		f, err := header.Open()
		if err != nil {
			return "", nil, err
		}
		defer f.Close()
		content, err := io.ReadAll(f)
		if err != nil {
			return "", nil, err
		}
		return header.Filename, content, nil
	}

	content, err := io.ReadAll(io.LimitReader(ctx.Request.Body, maxStatementSize+1))
	if err != nil {
		return "", nil, err
	}
	if len(content) > maxStatementSize {
		return "", nil, errors.New("file exceeds the maximum allowed size")
	}
	fileName := ctx.Query("filename")
	if fileName == "" {
		fileName = "statement.ofx"
	}
	return fileName, content, nil
}

// handleStatementError maps statement errors to HTTP responses.
func (c *StatementController) handleStatementError(ctx *gin.Context, err error) {
	var stmErr *domainerror.StatementError
	if errors.As(err, &stmErr) {
		resp := dto.ErrorResponse{
			Error: stmErr.Message,
			Code:  string(stmErr.Code),
		}
		if stmErr.ParsedAccount != nil {
			resp.Details = []string{
				"parsed bank code: " + stmErr.ParsedAccount.BankCode,
				"parsed account number: " + stmErr.ParsedAccount.AccountNumber,
			}
		}
		ctx.JSON(statusCodeForStatementError(stmErr.Code), resp)
		return
	}

	ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{
		Error: "An internal error occurred",
	})
}

// statusCodeForStatementError maps error codes to HTTP status codes.
func statusCodeForStatementError(code domainerror.StatementErrorCode) int {
	switch code {
	case domainerror.ErrCodeUnsupportedExtension,
		domainerror.ErrCodeEmptyStatementFile:
		return http.StatusBadRequest
	case domainerror.ErrCodeInvalidFormat,
		domainerror.ErrCodeMalformedStatement:
		return http.StatusUnprocessableEntity
	case domainerror.ErrCodeAccountMismatch:
		return http.StatusConflict
	case domainerror.ErrCodeAccountNotFound,
		domainerror.ErrCodeStatementNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
