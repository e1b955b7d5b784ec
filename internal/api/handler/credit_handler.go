package handler

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/hydrochain/hydrochain-api/internal/core/domain"
	"github.com/hydrochain/hydrochain-api/internal/core/ports"
)

// CreditHandler handles HTTP requests for credit lifecycle operations.
type CreditHandler struct {
	service ports.CreditService
}

func NewCreditHandler(service ports.CreditService) *CreditHandler {
	return &CreditHandler{service: service}
}

// Issue handles POST /v1/credits.
//
// Issuance is deliberately not idempotent: two identical requests mint two
// distinct credits.
//
// @Summary      Issue a new hydrogen credit
// @Tags         credits
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      issueCreditRequest  true  "Volume in kg and optional description"
// @Success      200   {object}  issueCreditResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /v1/credits [post]
func (h *CreditHandler) Issue(c echo.Context) error {
	userID, email, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req issueCreditRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "Valid volume is required"})
	}

	result, err := h.service.IssueCredit(c.Request().Context(), ports.IssueCreditInput{
		UserID:      userID,
		Email:       email,
		VolumeKg:    parseVolume(req.Volume),
		Description: req.Description,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			return c.JSON(http.StatusUnauthorized, errorResponse{Error: "Invalid user token"})
		case errors.Is(err, domain.ErrForbidden):
			return c.JSON(http.StatusForbidden, errorResponse{Error: "Only producers can issue credits"})
		case errors.Is(err, domain.ErrInvalidVolume):
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "Valid volume is required"})
		case errors.Is(err, domain.ErrStorageFailure):
			return c.JSON(http.StatusInternalServerError, errorResponse{Error: "Failed to store credit in database"})
		}
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "Internal server error"})
	}

	return c.JSON(http.StatusOK, issueCreditResponse{
		Success: true,
		Credit:  toCreditResponse(result.Credit),
		Blockchain: settlementResponse{
			TokenID:     result.Settlement.TokenID,
			TxHash:      result.Settlement.TxHash,
			BlockNumber: result.Settlement.BlockNumber,
			Simulated:   result.Settlement.Simulated,
		},
		Message: result.Message,
	})
}

// parseVolume converts the loosely-typed volume field into a decimal. Any
// missing, non-numeric or non-finite value maps to zero, which the service
// rejects after the role check so the documented validation order holds.
func parseVolume(v any) decimal.Decimal {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return decimal.Zero
		}
		return decimal.NewFromFloat(n)
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		if err != nil {
			return decimal.Zero
		}
		return d
	default:
		return decimal.Zero
	}
}

// Transfer handles POST /v1/credits/:id/transfer.
//
// @Summary      Transfer a credit to another user
// @Tags         credits
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true  "Credit id"
// @Param        body  body      transferCreditRequest  true  "Recipient email"
// @Success      200   {object}  creditResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/credits/{id}/transfer [post]
func (h *CreditHandler) Transfer(c echo.Context) error {
	userID, _, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req transferCreditRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	credit, err := h.service.TransferCredit(c.Request().Context(), ports.TransferCreditInput{
		CreditID:    c.Param("id"),
		FromUserID:  userID,
		ToUserEmail: req.ToEmail,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toCreditResponse(credit))
}

// Verify handles POST /v1/credits/:id/verify. Route is RBAC-guarded to the
// verifier role.
//
// @Summary      Mark an issued credit as verified
// @Tags         credits
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Credit id"
// @Success      200  {object}  creditResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /v1/credits/{id}/verify [post]
func (h *CreditHandler) Verify(c echo.Context) error {
	if _, _, _, err := ctxIdentity(c); err != nil {
		return err
	}

	credit, err := h.service.VerifyCredit(c.Request().Context(), ports.VerifyCreditInput{
		CreditID: c.Param("id"),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toCreditResponse(credit))
}

// Retire handles POST /v1/credits/:id/retire.
//
// @Summary      Retire a credit
// @Tags         credits
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Credit id"
// @Success      200  {object}  creditResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /v1/credits/{id}/retire [post]
func (h *CreditHandler) Retire(c echo.Context) error {
	userID, _, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	credit, err := h.service.RetireCredit(c.Request().Context(), ports.RetireCreditInput{
		CreditID: c.Param("id"),
		UserID:   userID,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toCreditResponse(credit))
}

// Get handles GET /v1/credits/:id.
//
// @Summary      Get a credit by id
// @Tags         credits
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Credit id"
// @Success      200  {object}  creditResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/credits/{id} [get]
func (h *CreditHandler) Get(c echo.Context) error {
	userID, _, role, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	credit, err := h.service.GetCredit(c.Request().Context(), ports.GetCreditInput{
		CreditID: c.Param("id"),
		UserID:   userID,
		Role:     role,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toCreditResponse(credit))
}

// List handles GET /v1/credits. It returns the caller's own credits,
// newest first.
//
// @Summary      List the caller's credits
// @Tags         credits
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  listCreditsResponse
// @Router       /v1/credits [get]
func (h *CreditHandler) List(c echo.Context) error {
	userID, _, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	credits, err := h.service.ListCredits(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	items := make([]creditResponse, 0, len(credits))
	for _, credit := range credits {
		items = append(items, toCreditResponse(credit))
	}
	return c.JSON(http.StatusOK, listCreditsResponse{Data: items})
}

// ListTransactions handles GET /v1/credits/:id/transactions. It returns the
// credit's provenance chain, oldest first.
//
// @Summary      List a credit's provenance chain
// @Tags         credits
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Credit id"
// @Success      200  {object}  listTransactionsResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/credits/{id}/transactions [get]
func (h *CreditHandler) ListTransactions(c echo.Context) error {
	userID, _, role, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	txs, err := h.service.ListTransactions(c.Request().Context(), ports.GetCreditInput{
		CreditID: c.Param("id"),
		UserID:   userID,
		Role:     role,
	})
	if err != nil {
		return err
	}

	items := make([]transactionResponse, 0, len(txs))
	for _, tx := range txs {
		items = append(items, toTransactionResponse(tx))
	}
	return c.JSON(http.StatusOK, listTransactionsResponse{Data: items})
}
