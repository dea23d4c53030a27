package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/sds-studio/sds/internal/payment/adapters"
	paymentdomain "github.com/sds-studio/sds/internal/payment/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log        *zap.Logger
	PaymentSvc paymentdomain.Service
	Adapters   *adapters.Registry
}

type Service struct {
	log        *zap.Logger
	paymentSvc paymentdomain.Service
	adapters   *adapters.Registry
}

func NewService(p Params) paymentdomain.Ingestor {
	return &Service{
		log:        p.Log.Named("payment.webhook"),
		paymentSvc: p.PaymentSvc,
		adapters:   p.Adapters,
	}
}

// IngestWebhook runs the signature gate for the provider, normalizes
// the payload, and hands the event to the payment service. Signature
// failures drop the delivery without touching the store; there is no
// internal retry, so a persistently wrong secret silently loses events.
func (s *Service) IngestWebhook(ctx context.Context, provider string, payload []byte, headers http.Header) error {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if provider == "" {
		return paymentdomain.ErrInvalidProvider
	}
	adapter, err := s.adapters.Adapter(provider)
	if err != nil {
		return err
	}

	if err := adapter.Verify(ctx, payload, headers); err != nil {
		s.log.Warn("webhook signature rejected", zap.String("provider", provider))
		return err
	}
	if !json.Valid(payload) {
		return paymentdomain.ErrInvalidPayload
	}

	event, err := adapter.Parse(ctx, payload)
	if err != nil {
		if errors.Is(err, paymentdomain.ErrEventIgnored) {
			s.log.Info("webhook event ignored", zap.String("provider", provider))
			return nil
		}
		return err
	}
	if event.RawPayload == nil {
		event.RawPayload = payload
	}

	return s.paymentSvc.ProcessEvent(ctx, event, payload)
}
