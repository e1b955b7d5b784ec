package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/hydrochain/hydrochain-api/internal/api/metrics"
	"github.com/hydrochain/hydrochain-api/internal/core/domain"
	"github.com/hydrochain/hydrochain-api/internal/core/ports"
)

const (
	defaultDescription = "Green Hydrogen Credit"
	// settlementScale is the fixed-point exponent of the ledger token:
	// 1 kg = 10^6 units.
	settlementScale = 6
)

// CreditService implements the credit lifecycle: issuance with best-effort
// on-chain settlement, transfer, verification and retirement.
type CreditService struct {
	credits       ports.CreditRepository
	transactions  ports.TransactionRepository
	users         ports.UserRepository
	roles         ports.RoleResolver
	settlement    ports.SettlementProvider // nil when the chain is not configured
	fallback      ports.SettlementProvider
	audit         ports.AuditRecorder
	settleTimeout time.Duration
	logger        zerolog.Logger
}

// NewCreditService wires the credit use cases. settlement may be nil, in
// which case every mint uses the fallback provider. fallback must never be
// nil and must never fail.
func NewCreditService(
	credits ports.CreditRepository,
	transactions ports.TransactionRepository,
	users ports.UserRepository,
	roles ports.RoleResolver,
	settlement ports.SettlementProvider,
	fallback ports.SettlementProvider,
	audit ports.AuditRecorder,
	settleTimeout time.Duration,
	logger zerolog.Logger,
) *CreditService {
	if settleTimeout <= 0 {
		settleTimeout = 5 * time.Second
	}
	return &CreditService{
		credits:       credits,
		transactions:  transactions,
		users:         users,
		roles:         roles,
		settlement:    settlement,
		fallback:      fallback,
		audit:         audit,
		settleTimeout: settleTimeout,
		logger:        logger,
	}
}

// IssueCredit mints one credit for a producer. Validation short-circuits in
// order (identity, role, volume) with no side effects; the settlement attempt
// is best-effort with a simulated fallback; the credit insert is terminal on
// failure; the provenance record is fire-and-forget.
//
// Issuance is intentionally not idempotent: two identical requests mint two
// distinct credits.
func (s *CreditService) IssueCredit(ctx context.Context, input ports.IssueCreditInput) (*ports.IssueCreditResult, error) {
	role, err := s.roles.RoleByUserID(ctx, input.UserID)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if role != domain.RoleProducer {
		return nil, domain.ErrForbidden
	}

	if !input.VolumeKg.IsPositive() {
		return nil, domain.ErrInvalidVolume
	}

	description := input.Description
	if description == "" {
		description = defaultDescription
	}
	now := time.Now().UTC()

	settlement := s.mint(ctx, input, description, now)

	credit := &domain.Credit{
		OwnerID:       input.UserID,
		TokenID:       settlement.TokenID,
		VolumeKg:      input.VolumeKg,
		Status:        domain.StatusIssued,
		SettlementRef: settlement.TxHash,
		Metadata: domain.CreditMetadata{
			Description: description,
			IssuedAt:    now,
			Producer:    input.Email,
		},
		CreatedAt: now,
	}

	if err := s.credits.Create(ctx, credit); err != nil {
		s.logger.Error().Err(err).
			Str("owner_id", input.UserID).
			Str("settlement_ref", settlement.TxHash).
			Msg("failed to store credit")
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageFailure, err)
	}

	s.audit.Record(domain.Transaction{
		CreditID:      credit.ID,
		FromOwnerID:   nil,
		ToOwnerID:     input.UserID,
		Type:          domain.TxTypeIssue,
		VolumeKg:      input.VolumeKg,
		SettlementRef: settlement.TxHash,
		CreatedAt:     now,
	})

	settlementLabel := "onchain"
	if settlement.Simulated {
		settlementLabel = "simulated"
	}
	metrics.CreditsIssuedTotal.WithLabelValues(settlementLabel).Inc()

	s.logger.Info().
		Str("credit_id", credit.ID).
		Str("token_id", credit.TokenID).
		Str("owner_id", input.UserID).
		Bool("simulated", settlement.Simulated).
		Msg("credit issued")

	return &ports.IssueCreditResult{
		Credit:     credit,
		Settlement: settlement,
		Message:    "Credit issued successfully",
	}, nil
}

// mint performs the single settlement attempt and falls back to the local
// simulator on any error. It never fails: settlement unavailability degrades
// gracefully rather than blocking issuance.
func (s *CreditService) mint(ctx context.Context, input ports.IssueCreditInput, description string, now time.Time) *domain.SettlementResult {
	req := ports.MintRequest{
		VolumeUnits: input.VolumeKg.Shift(settlementScale).IntPart(),
		MetadataURI: metadataURI(description, input, now),
	}

	if s.settlement != nil {
		mintCtx, cancel := context.WithTimeout(ctx, s.settleTimeout)
		defer cancel()

		start := time.Now()
		result, err := s.settlement.Mint(mintCtx, req)
		metrics.SettlementDuration.Observe(time.Since(start).Seconds())
		if err == nil {
			return result
		}

		metrics.SettlementFallbackTotal.WithLabelValues("mint_failed").Inc()
		s.logger.Warn().Err(err).
			Str("owner_id", input.UserID).
			Msg("on-chain mint failed, falling back to simulated settlement")
	} else {
		metrics.SettlementFallbackTotal.WithLabelValues("unconfigured").Inc()
	}

	// The fallback provider cannot fail.
	result, _ := s.fallback.Mint(ctx, req)
	return result
}

// metadataURI encodes the issuance document as a base64 data URI, the form
// the settlement contract stores as the token's metadata reference.
func metadataURI(description string, input ports.IssueCreditInput, now time.Time) string {
	doc := map[string]any{
		"description": description,
		"volume_kg":   input.VolumeKg.String(),
		"producer":    input.Email,
		"issued_at":   now.Format(time.RFC3339),
	}
	raw, _ := json.Marshal(doc)
	return "data:application/json;base64," + base64.StdEncoding.EncodeToString(raw)
}

// TransferCredit moves ownership of a credit to the user identified by
// ToUserEmail. Only the current owner may transfer.
func (s *CreditService) TransferCredit(ctx context.Context, input ports.TransferCreditInput) (*domain.Credit, error) {
	credit, err := s.credits.FindByID(ctx, input.CreditID)
	if err != nil {
		return nil, err
	}
	if credit.OwnerID != input.FromUserID {
		return nil, domain.ErrForbidden
	}
	if !credit.Status.CanTransitionTo(domain.StatusOwned) {
		return nil, domain.ErrInvalidTransition
	}

	recipient, err := s.users.FindByEmail(ctx, input.ToUserEmail)
	if err != nil {
		return nil, err
	}

	if err := s.credits.UpdateLifecycle(ctx, credit.ID, domain.StatusOwned, recipient.ID); err != nil {
		return nil, err
	}

	from := credit.OwnerID
	s.audit.Record(domain.Transaction{
		CreditID:      credit.ID,
		FromOwnerID:   &from,
		ToOwnerID:     recipient.ID,
		Type:          domain.TxTypeTransfer,
		VolumeKg:      credit.VolumeKg,
		SettlementRef: credit.SettlementRef,
		CreatedAt:     time.Now().UTC(),
	})

	s.logger.Info().
		Str("credit_id", credit.ID).
		Str("from", from).
		Str("to", recipient.ID).
		Msg("credit transferred")

	credit.OwnerID = recipient.ID
	credit.Status = domain.StatusOwned
	return credit, nil
}

// VerifyCredit marks an issued credit as verified. Verification changes no
// ownership, so no provenance record is written.
func (s *CreditService) VerifyCredit(ctx context.Context, input ports.VerifyCreditInput) (*domain.Credit, error) {
	credit, err := s.credits.FindByID(ctx, input.CreditID)
	if err != nil {
		return nil, err
	}
	if !credit.Status.CanTransitionTo(domain.StatusVerified) {
		return nil, domain.ErrInvalidTransition
	}

	if err := s.credits.UpdateLifecycle(ctx, credit.ID, domain.StatusVerified, credit.OwnerID); err != nil {
		return nil, err
	}

	s.logger.Info().Str("credit_id", credit.ID).Msg("credit verified")

	credit.Status = domain.StatusVerified
	return credit, nil
}

// RetireCredit permanently retires a credit held by the caller. Retirement is
// terminal.
func (s *CreditService) RetireCredit(ctx context.Context, input ports.RetireCreditInput) (*domain.Credit, error) {
	credit, err := s.credits.FindByID(ctx, input.CreditID)
	if err != nil {
		return nil, err
	}
	if credit.OwnerID != input.UserID {
		return nil, domain.ErrForbidden
	}
	if !credit.Status.CanTransitionTo(domain.StatusRetired) {
		return nil, domain.ErrInvalidTransition
	}

	if err := s.credits.UpdateLifecycle(ctx, credit.ID, domain.StatusRetired, credit.OwnerID); err != nil {
		return nil, err
	}

	owner := credit.OwnerID
	s.audit.Record(domain.Transaction{
		CreditID:      credit.ID,
		FromOwnerID:   &owner,
		ToOwnerID:     owner,
		Type:          domain.TxTypeRetire,
		VolumeKg:      credit.VolumeKg,
		SettlementRef: credit.SettlementRef,
		CreatedAt:     time.Now().UTC(),
	})

	s.logger.Info().Str("credit_id", credit.ID).Msg("credit retired")

	credit.Status = domain.StatusRetired
	return credit, nil
}

// GetCredit fetches one credit. Auditor and regulatory roles may read any
// credit; other roles only their own.
func (s *CreditService) GetCredit(ctx context.Context, input ports.GetCreditInput) (*domain.Credit, error) {
	credit, err := s.credits.FindByID(ctx, input.CreditID)
	if err != nil {
		return nil, err
	}
	if !canRead(input.Role, input.UserID, credit) {
		return nil, domain.ErrForbidden
	}
	return credit, nil
}

// ListCredits returns the caller's credits.
func (s *CreditService) ListCredits(ctx context.Context, ownerID string) ([]*domain.Credit, error) {
	return s.credits.ListByOwner(ctx, ownerID)
}

// ListTransactions returns a credit's provenance chain, oldest first.
func (s *CreditService) ListTransactions(ctx context.Context, input ports.GetCreditInput) ([]*domain.Transaction, error) {
	credit, err := s.credits.FindByID(ctx, input.CreditID)
	if err != nil {
		return nil, err
	}
	if !canRead(input.Role, input.UserID, credit) {
		return nil, domain.ErrForbidden
	}
	return s.transactions.ListByCredit(ctx, credit.ID)
}

func canRead(role domain.Role, userID string, credit *domain.Credit) bool {
	if role == domain.RoleAuditor || role == domain.RoleRegulatory {
		return true
	}
	return credit.OwnerID == userID
}
