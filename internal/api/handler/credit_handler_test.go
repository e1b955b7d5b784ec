package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/hydrochain/hydrochain-api/internal/core/domain"
	"github.com/hydrochain/hydrochain-api/internal/core/ports"
)

// stubCreditService lets each test script the outcome of a single call.
type stubCreditService struct {
	issueResult *ports.IssueCreditResult
	issueErr    error
	lastIssue   ports.IssueCreditInput

	credit *domain.Credit
	err    error
	txs    []*domain.Transaction
}

func (s *stubCreditService) IssueCredit(_ context.Context, input ports.IssueCreditInput) (*ports.IssueCreditResult, error) {
	s.lastIssue = input
	if s.issueErr != nil {
		return nil, s.issueErr
	}
	return s.issueResult, nil
}

func (s *stubCreditService) TransferCredit(context.Context, ports.TransferCreditInput) (*domain.Credit, error) {
	return s.credit, s.err
}

func (s *stubCreditService) VerifyCredit(context.Context, ports.VerifyCreditInput) (*domain.Credit, error) {
	return s.credit, s.err
}

func (s *stubCreditService) RetireCredit(context.Context, ports.RetireCreditInput) (*domain.Credit, error) {
	return s.credit, s.err
}

func (s *stubCreditService) GetCredit(context.Context, ports.GetCreditInput) (*domain.Credit, error) {
	return s.credit, s.err
}

func (s *stubCreditService) ListCredits(context.Context, string) ([]*domain.Credit, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []*domain.Credit{s.credit}, nil
}

func (s *stubCreditService) ListTransactions(context.Context, ports.GetCreditInput) ([]*domain.Transaction, error) {
	return s.txs, s.err
}

func issuedCredit() *domain.Credit {
	return &domain.Credit{
		ID:            "credit_1",
		OwnerID:       "alice_id",
		TokenID:       "GHC_1700000000000000000",
		VolumeKg:      decimal.RequireFromString("1000"),
		Status:        domain.StatusIssued,
		SettlementRef: "0xdeadbeef",
		Metadata: domain.CreditMetadata{
			Description: "Green Hydrogen Credit",
			Producer:    "alice@h2.example",
		},
	}
}

// newIssueContext builds an authenticated echo context for POST /v1/credits.
func newIssueContext(t *testing.T, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(http.MethodPost, "/v1/credits", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", "alice_id")
	c.Set("email", "alice@h2.example")
	c.Set("role", "producer")
	return c, rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return body
}

func TestIssueHandler_Success(t *testing.T) {
	svc := &stubCreditService{issueResult: &ports.IssueCreditResult{
		Credit: issuedCredit(),
		Settlement: &domain.SettlementResult{
			TokenID:     "GHC_1700000000000000000",
			TxHash:      "0xdeadbeef",
			BlockNumber: 18_600_000,
			Simulated:   true,
		},
		Message: "Credit issued successfully",
	}}
	h := NewCreditHandler(svc)

	c, rec := newIssueContext(t, `{"volume": 1000}`)
	if err := h.Issue(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["success"] != true {
		t.Error("expected success=true")
	}
	if body["message"] != "Credit issued successfully" {
		t.Errorf("unexpected message: %v", body["message"])
	}

	blockchain, _ := body["blockchain"].(map[string]any)
	tokenID, _ := blockchain["tokenId"].(string)
	if !strings.HasPrefix(tokenID, "GHC_") {
		t.Errorf("blockchain.tokenId must match GHC_<digits>, got %q", tokenID)
	}

	credit, _ := body["credit"].(map[string]any)
	if credit["volume"] != float64(1000) {
		t.Errorf("expected credit volume 1000, got %v", credit["volume"])
	}
	if credit["status"] != "issued" {
		t.Errorf("expected status issued, got %v", credit["status"])
	}

	if !svc.lastIssue.VolumeKg.Equal(decimal.RequireFromString("1000")) {
		t.Errorf("service received wrong volume: %s", svc.lastIssue.VolumeKg)
	}
}

func TestIssueHandler_Forbidden(t *testing.T) {
	h := NewCreditHandler(&stubCreditService{issueErr: domain.ErrForbidden})

	c, rec := newIssueContext(t, `{"volume": 1000}`)
	if err := h.Issue(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["error"] != "Only producers can issue credits" {
		t.Errorf("unexpected body: %v", body)
	}
}

func TestIssueHandler_InvalidVolume(t *testing.T) {
	h := NewCreditHandler(&stubCreditService{issueErr: domain.ErrInvalidVolume})

	c, rec := newIssueContext(t, `{"volume": -5}`)
	if err := h.Issue(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["error"] != "Valid volume is required" {
		t.Errorf("unexpected body: %v", body)
	}
}

func TestIssueHandler_StorageFailure(t *testing.T) {
	h := NewCreditHandler(&stubCreditService{issueErr: domain.ErrStorageFailure})

	c, rec := newIssueContext(t, `{"volume": 1000}`)
	if err := h.Issue(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["error"] != "Failed to store credit in database" {
		t.Errorf("unexpected body: %v", body)
	}
}

func TestIssueHandler_MissingIdentity(t *testing.T) {
	h := NewCreditHandler(&stubCreditService{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/credits", strings.NewReader(`{"volume": 1000}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Issue(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 HTTPError, got %v", err)
	}
}

func TestParseVolume(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want string
	}{
		{"number", float64(1000), "1000"},
		{"fraction", float64(2.5), "2.5"},
		{"negative passes through", float64(-5), "-5"},
		{"string is zero", "1000", "0"},
		{"nil is zero", nil, "0"},
		{"bool is zero", true, "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := parseVolume(tc.in)
			if !got.Equal(decimal.RequireFromString(tc.want)) {
				t.Fatalf("parseVolume(%v) = %s, want %s", tc.in, got, tc.want)
			}
		})
	}
}
