// Package auth runs the sign-in pipeline: parse the message, recover the signer,
// check the round nonce against the oracle, then find or create the identity.
package auth

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Soul-Brews-Studio/shrimp-oracle/internal/common/errors"
	"github.com/Soul-Brews-Studio/shrimp-oracle/internal/identity"
	"github.com/Soul-Brews-Studio/shrimp-oracle/pkg/chainlink"
	"github.com/Soul-Brews-Studio/shrimp-oracle/pkg/nonce"
	"github.com/Soul-Brews-Studio/shrimp-oracle/pkg/proofoftime"
	"github.com/Soul-Brews-Studio/shrimp-oracle/pkg/siwe"
)

// Stage is a step of the verification pipeline
type Stage string

const (
	StageReceived          Stage = "received"
	StageParsed            Stage = "parsed"
	StageSignatureVerified Stage = "signature_verified"
	StageTimeVerified      Stage = "time_verified"
	StageResolved          Stage = "resolved"
	StageRejected          Stage = "rejected"
)

// Config tunes the pipeline
type Config struct {
	AppName        string
	MaxRoundAge    uint64
	OracleTimeout  time.Duration
	StoreTimeout   time.Duration
	AllowedDomains []string
}

// Service handles sign-in verification and identity lookups
type Service struct {
	verifier  siwe.Verifier
	oracle    chainlink.RoundReader
	nonces    nonce.Source
	validator *proofoftime.Validator
	store     identity.Store
	tokens    TokenIssuer
	cfg       Config
	allowed   map[string]struct{}
	logger    *zap.Logger
}

// NewService creates a new auth service
func NewService(
	verifier siwe.Verifier,
	oracle chainlink.RoundReader,
	nonces nonce.Source,
	store identity.Store,
	tokens TokenIssuer,
	cfg Config,
	logger *zap.Logger,
) *Service {
	allowed := make(map[string]struct{}, len(cfg.AllowedDomains))
	for _, d := range cfg.AllowedDomains {
		if d = strings.ToLower(strings.TrimSpace(d)); d != "" {
			allowed[d] = struct{}{}
		}
	}

	return &Service{
		verifier:  verifier,
		oracle:    oracle,
		nonces:    nonces,
		validator: proofoftime.NewValidator(cfg.MaxRoundAge),
		store:     store,
		tokens:    tokens,
		cfg:       cfg,
		allowed:   allowed,
		logger:    logger,
	}
}

// VerifyInput is one sign-in attempt
type VerifyInput struct {
	Message   string
	Signature string
	// Realm accepts anything ParseRealm does; empty means human
	Realm identity.Realm
	// Name overrides the default display name when the identity is created
	Name string
}

// ProofOfTime ties a sign-in to the oracle rounds it was checked against
type ProofOfTime struct {
	RoundID        string  `json:"roundId" example:"110680464442257320247"`
	CurrentRoundID string  `json:"currentRoundId" example:"110680464442257320250"`
	Price          float64 `json:"price" example:"98000.12"`
	Timestamp      int64   `json:"timestamp" example:"1738584000"`
	Feed           string  `json:"feed" example:"BTC/USD"`
}

// VerifyResult is the outcome of a successful sign-in
type VerifyResult struct {
	Identity    *identity.Identity
	Created     bool
	ProofOfTime ProofOfTime
	Token       string
	ExpiresAt   time.Time
}

// Verify runs the pipeline. Each stage aborts on failure; nothing is written before the identity stage.
func (s *Service) Verify(ctx context.Context, in VerifyInput) (*VerifyResult, error) {
	result, err := s.verify(ctx, in)
	if err != nil {
		code := errors.CodeInternal
		var appErr *errors.AppError
		if stderrors.As(err, &appErr) {
			code = appErr.Code
		}
		verifyOutcomes.WithLabelValues(code).Inc()
		return nil, err
	}
	verifyOutcomes.WithLabelValues(resultOK).Inc()
	return result, nil
}

func (s *Service) verify(ctx context.Context, in VerifyInput) (*VerifyResult, error) {
	log := s.logger
	reject := func(stage Stage, err *errors.AppError) error {
		log.Info("sign-in rejected",
			zap.String("stage", string(stage)),
			zap.String("reason", err.Code),
			zap.NamedError("cause", err.Err),
		)
		return err
	}

	log.Debug("sign-in received", zap.String("stage", string(StageReceived)))

	// Parsed
	msg, err := siwe.Parse(in.Message)
	if err != nil {
		return nil, reject(StageParsed, errors.MalformedMessage(err.Error()).WithError(err))
	}
	if !s.domainAllowed(msg.Domain) {
		return nil, reject(StageParsed, errors.MalformedMessage("Message domain is not accepted"))
	}
	// realm and name travel with the message, so they share its error code
	realm, err := identity.ParseRealm(string(in.Realm))
	if err != nil {
		return nil, reject(StageParsed, errors.MalformedMessage("Unknown realm").WithError(err))
	}
	name := ""
	if in.Name != "" {
		n, err := identity.ValidateDisplayName(in.Name)
		if err != nil {
			return nil, reject(StageParsed, errors.MalformedMessage("Display name must be 1-64 characters on one line").WithError(err))
		}
		name = n
	}
	log = log.With(zap.String("realm", string(realm)))
	log = log.With(zap.String("address", msg.Address.Hex()), zap.String("round_id", msg.Nonce))

	// SignatureVerified
	if _, err := s.verifier.Verify(in.Message, in.Signature, msg.Address); err != nil {
		message := "Invalid signature"
		if stderrors.Is(err, siwe.ErrAddressMismatch) {
			message = "Signature does not match address"
		}
		return nil, reject(StageSignatureVerified, errors.InvalidSignature(message).WithError(err))
	}

	// TimeVerified
	sample, err := s.readOracle(ctx)
	if err != nil {
		return nil, reject(StageTimeVerified, errors.OracleUnavailable(err))
	}
	if err := s.validator.Check(msg.Nonce, sample.RoundID); err != nil {
		appErr := errors.SignatureExpired(msg.Nonce, sample.RoundID).WithError(err)
		return nil, reject(StageTimeVerified, appErr)
	}

	// Resolved
	wallet := strings.ToLower(msg.Address.Hex())
	found, created, err := s.findOrCreate(ctx, identity.NewIdentity{
		Realm:         realm,
		WalletAddress: wallet,
		DisplayName:   name,
	})
	if err != nil {
		return nil, reject(StageResolved, errors.StoreError(err))
	}

	token, expiresAt, err := s.tokens.Issue(found)
	if err != nil {
		return nil, reject(StageResolved, errors.Internal("Failed to issue session token").WithError(err))
	}

	log.Info("sign-in accepted",
		zap.String("stage", string(StageResolved)),
		zap.String("identity_id", found.ID),
		zap.Bool("created", created),
		zap.String("current_round_id", sample.RoundID),
	)

	return &VerifyResult{
		Identity: found,
		Created:  created,
		ProofOfTime: ProofOfTime{
			RoundID:        msg.Nonce,
			CurrentRoundID: sample.RoundID,
			Price:          sample.Price,
			Timestamp:      sample.Timestamp,
			Feed:           sample.Feed,
		},
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

func (s *Service) domainAllowed(domain string) bool {
	if len(s.allowed) == 0 {
		return true
	}
	_, ok := s.allowed[strings.ToLower(domain)]
	return ok
}

// readOracle always reads the chain; the nonce cache is never used for freshness
func (s *Service) readOracle(ctx context.Context) (*chainlink.Sample, error) {
	ctx, cancel := withTimeout(ctx, s.cfg.OracleTimeout)
	defer cancel()

	start := time.Now()
	sample, err := s.oracle.ReadLatestRound(ctx)
	oracleReadDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}
	observeRound(sample.RoundID)
	return sample, nil
}

// findOrCreate resolves the race between concurrent first sign-ins through the
// store's uniqueness constraint: the loser re-reads the winner's row.
func (s *Service) findOrCreate(ctx context.Context, in identity.NewIdentity) (*identity.Identity, bool, error) {
	ctx, cancel := withTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	found, err := s.store.FindByWallet(ctx, in.Realm, in.WalletAddress)
	if err != nil {
		return nil, false, err
	}
	if found != nil {
		return found, false, nil
	}

	created, err := s.store.Create(ctx, in)
	if err == nil {
		identitiesCreated.WithLabelValues(string(in.Realm)).Inc()
		return created, true, nil
	}
	if !stderrors.Is(err, identity.ErrDuplicateWallet) {
		return nil, false, err
	}

	found, err = s.store.FindByWallet(ctx, in.Realm, in.WalletAddress)
	if err != nil {
		return nil, false, err
	}
	if found == nil {
		return nil, false, stderrors.New("identity vanished after duplicate insert")
	}
	return found, false, nil
}

// Check is a read-only lookup of a wallet in one realm. A nil identity means not registered.
func (s *Service) Check(ctx context.Context, realm identity.Realm, address string) (*identity.Identity, error) {
	if !realm.Valid() {
		return nil, errors.InvalidInput("Unknown realm")
	}
	wallet, err := identity.NormalizeWallet(address)
	if err != nil {
		return nil, errors.InvalidInput("Invalid wallet address")
	}

	ctx, cancel := withTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	found, err := s.store.FindByWallet(ctx, realm, wallet)
	if err != nil {
		s.logger.Error("failed to check identity", zap.String("address", wallet), zap.Error(err))
		return nil, errors.StoreError(err)
	}
	return found, nil
}

// LookupResult holds a wallet's identity in every realm
type LookupResult struct {
	Address string
	Human   *identity.Identity
	Agent   *identity.Identity
}

// Lookup checks a wallet across all realms
func (s *Service) Lookup(ctx context.Context, address string) (*LookupResult, error) {
	result := &LookupResult{}
	for _, realm := range identity.Realms {
		found, err := s.Check(ctx, realm, address)
		if err != nil {
			return nil, err
		}
		switch realm {
		case identity.RealmHuman:
			result.Human = found
		case identity.RealmAgent:
			result.Agent = found
		}
	}
	result.Address = strings.ToLower(strings.TrimSpace(address))
	return result, nil
}

// Me returns the identity a session token was issued for
func (s *Service) Me(ctx context.Context, id string) (*identity.Identity, error) {
	ctx, cancel := withTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	found, err := s.store.Get(ctx, id)
	if err != nil {
		s.logger.Error("failed to get identity", zap.String("identity_id", id), zap.Error(err))
		return nil, errors.StoreError(err)
	}
	if found == nil {
		return nil, errors.NotFound("Identity")
	}
	return found, nil
}

// Nonce is what a client needs to build its sign-in message
type Nonce struct {
	Sample    *chainlink.Sample
	Statement string
}

// Nonce returns the current round to embed as the message nonce
func (s *Service) Nonce(ctx context.Context) (*Nonce, error) {
	ctx, cancel := withTimeout(ctx, s.cfg.OracleTimeout)
	defer cancel()

	sample, err := s.nonces.Latest(ctx)
	if err != nil {
		s.logger.Warn("failed to read nonce source", zap.Error(err))
		return nil, errors.OracleUnavailable(err)
	}
	return &Nonce{
		Sample:    sample,
		Statement: siwe.BuildStatement(s.cfg.AppName, sample.Feed, sample.Price),
	}, nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
