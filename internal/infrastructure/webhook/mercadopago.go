package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Zhima-Mochi/snackhouse/internal/domain/payment"
	"github.com/Zhima-Mochi/snackhouse/internal/observability"
)

const (
	approvedAction = "payment.approved"

	defaultTimeout = 10 * time.Second
)

// Config carries the processor endpoint and the public host the processor
// calls back on.
type Config struct {
	// ProcessorURL is the registration endpoint of the external processor.
	ProcessorURL string
	// APIHost is this service's public host, path prefix included if the
	// service sits behind one.
	APIHost string
	Timeout time.Duration
}

// Adapter talks to the external payment processor's webhook registration API
// and translates its callbacks into payment state.
type Adapter struct {
	client       *http.Client
	processorURL string
	apiHost      string
	log          observability.Logger
}

func New(cfg Config, logger observability.Logger) *Adapter {
	if logger == nil {
		logger = observability.NopLogger()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Adapter{
		client:       &http.Client{Timeout: timeout},
		processorURL: cfg.ProcessorURL,
		apiHost:      cfg.APIHost,
		log:          logger,
	}
}

type registerRequest struct {
	WebhookURL string  `json:"webhook_url"`
	Value      float64 `json:"value"`
}

type registerResponse struct {
	PaymentCode string `json:"payment_code"`
}

// Register announces the callback URL for the order to the processor and
// stores the returned payment code as the payment reference. Every failure
// wraps payment.ErrAdapter with its cause; the transport boundary matches on
// the sentinel and keeps its response generic.
func (a *Adapter) Register(ctx context.Context, p *payment.Payment) (*payment.Payment, error) {
	callback := fmt.Sprintf("https://%s/%d/pagamento", a.apiHost, p.OrderID)
	body, err := json.Marshal(registerRequest{WebhookURL: callback, Value: p.Amount})
	if err != nil {
		a.log.Error("register_marshal_failed", observability.F("error", err.Error()))
		return nil, fmt.Errorf("%w: encode request: %w", payment.ErrAdapter, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.processorURL, bytes.NewReader(body))
	if err != nil {
		a.log.Error("register_request_build_failed", observability.F("error", err.Error()))
		return nil, fmt.Errorf("%w: build request: %w", payment.ErrAdapter, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		a.log.Warn("register_call_failed",
			observability.F("order_id", p.OrderID),
			observability.F("error", err.Error()),
		)
		return nil, fmt.Errorf("%w: %w", payment.ErrAdapter, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		a.log.Warn("register_rejected",
			observability.F("order_id", p.OrderID),
			observability.F("status", resp.StatusCode),
		)
		return nil, fmt.Errorf("%w: processor status %d", payment.ErrAdapter, resp.StatusCode)
	}

	var parsed registerResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		a.log.Warn("register_decode_failed",
			observability.F("order_id", p.OrderID),
			observability.F("error", err.Error()),
		)
		return nil, fmt.Errorf("%w: decode response: %w", payment.ErrAdapter, err)
	}
	if parsed.PaymentCode == "" {
		a.log.Warn("register_missing_payment_code",
			observability.F("order_id", p.OrderID))
		return nil, fmt.Errorf("%w: response carries no payment code", payment.ErrAdapter)
	}

	p.Reference = parsed.PaymentCode
	return p, nil
}

// Ingest applies a callback payload to the payment. Only the approved action
// changes state; everything else is a no-op. A string "id" field, when
// present, overwrites the reference.
func (a *Adapter) Ingest(payload map[string]any, p *payment.Payment) *payment.Payment {
	if action, ok := payload["action"].(string); ok && action == approvedAction {
		p.State = payment.StateApproved
	}
	if id, ok := payload["id"].(string); ok {
		p.Reference = id
	}
	return p
}

var _ payment.WebhookAdapter = (*Adapter)(nil)
