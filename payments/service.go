package payments

import (
	"context"
	"errors"
	"strings"

	"github.com/alovak/tuitionpay/internal/gateway"
	"github.com/alovak/tuitionpay/internal/pricing"
	"github.com/alovak/tuitionpay/internal/txref"
	"github.com/alovak/tuitionpay/payments/models"
)

// Gateway initializes a payment with the external provider and returns the
// hosted payment page URL. *gateway.Client implements it.
type Gateway interface {
	Initialize(ctx context.Context, req gateway.InitializeRequest) (string, error)
}

type Service struct {
	fees    *pricing.Schedule
	gateway Gateway
	refs    *txref.Generator
	cfg     *Config
}

func NewService(fees *pricing.Schedule, gw Gateway, refs *txref.Generator, cfg *Config) *Service {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if fees == nil {
		fees = pricing.DefaultSchedule()
	}
	if refs == nil {
		refs = txref.NewGenerator(cfg.ReferencePrefix)
	}
	return &Service{
		fees:    fees,
		gateway: gw,
		refs:    refs,
		cfg:     cfg,
	}
}

func (s *Service) FeeStructure() map[string]int64 {
	return s.fees.Fees()
}

func (s *Service) KnownProgram(program string) bool {
	_, ok := s.fees.TotalFee(program)
	return ok
}

// CalculatePayment quotes what a payer would be charged. Unknown programs
// quote as zero.
func (s *Service) CalculatePayment(req models.CalculateRequest) (pricing.Breakdown, error) {
	if strings.TrimSpace(req.Program) == "" || !req.Percentage.Valid() {
		return pricing.Breakdown{}, validationError("program and percentage are required")
	}
	return s.fees.Compute(req.Program, float64(*req.Percentage)), nil
}

// InitiatePayment prices the request on the server side and asks the gateway
// for a payment page. It makes at most one outbound call (plus configured
// retries when the gateway does not answer).
//
// The outbound call is detached from ctx cancellation: a client that hangs up
// does not abort a payment the gateway may already be creating.
func (s *Service) InitiatePayment(ctx context.Context, req models.PaymentRequest) (*models.PaymentResponse, error) {
	if missing := req.MissingFields(); len(missing) > 0 {
		return nil, validationError("missing required fields: " + strings.Join(missing, ", "))
	}
	if !req.Percentage.Valid() {
		return nil, validationError("percentage must be a number")
	}
	if !s.cfg.HasGatewayCredentials() {
		return nil, configurationError("Payment gateway credentials are not configured")
	}
	if s.gateway == nil {
		return nil, internalError(errors.New("no gateway client"))
	}

	breakdown := s.fees.Compute(req.Program, float64(*req.Percentage))
	ref := s.refs.New(req.Phone)

	url, err := s.gateway.Initialize(context.WithoutCancel(ctx), gateway.InitializeRequest{
		Amount:          breakdown.ChargeAmount(),
		TransactionRef:  ref,
		MobileNumber:    strings.TrimSpace(req.Phone),
		EmailAddress:    strings.TrimSpace(req.Email),
		MerchantBoxCode: s.cfg.MerchantBoxID,
		CallbackURL:     s.cfg.CallbackURL,
		LogoURL:         s.cfg.LogoURL,
	})
	if err != nil {
		return nil, classifyGatewayError(err)
	}

	return &models.PaymentResponse{PaymentURL: url, TransactionRef: ref}, nil
}

func classifyGatewayError(err error) *Error {
	var statusErr *gateway.StatusError
	var unreachable *gateway.UnreachableError

	switch {
	case errors.As(err, &statusErr):
		return gatewayRejectedError(statusErr.StatusCode, statusErr.Message, statusErr.Details, err)
	case errors.As(err, &unreachable):
		return gatewayUnreachableError(err)
	case errors.Is(err, gateway.ErrMissingPaymentURL):
		return gatewayProtocolError(err)
	default:
		return internalError(err)
	}
}
