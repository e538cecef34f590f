package stores

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/inkwell/internal/api"
	"github.com/desertthunder/inkwell/internal/models"
	"github.com/desertthunder/inkwell/internal/shared"
)

// PaymentsStore caches billing state: the available plans, the user's
// subscription, and the payment history.
type PaymentsStore struct {
	client   *api.Client
	logger   *log.Logger
	notifier shared.Notifier

	mu           sync.Mutex
	plans        []models.SubscriptionPlan
	subscription *models.Subscription
	history      []models.PaymentRecord
	provider     *models.ProviderConfig
	loading      bool
	lastError    string
}

// NewPaymentsStore creates a payments store around the given API client.
// notifier receives a message after each successful subscription mutation.
func NewPaymentsStore(client *api.Client, logger *log.Logger, notifier shared.Notifier) *PaymentsStore {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	if notifier == nil {
		notifier = shared.NewLogNotifier(logger)
	}
	return &PaymentsStore{
		client:   client,
		logger:   shared.WithLogger(logger, "store", "payments"),
		notifier: notifier,
	}
}

// Plans returns the cached plan listing.
func (s *PaymentsStore) Plans() []models.SubscriptionPlan {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.SubscriptionPlan, len(s.plans))
	copy(out, s.plans)
	return out
}

// Subscription returns the cached subscription, nil when the user has none.
func (s *PaymentsStore) Subscription() *models.Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subscription == nil {
		return nil
	}
	sub := *s.subscription
	return &sub
}

// History returns the cached payment records.
func (s *PaymentsStore) History() []models.PaymentRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.PaymentRecord, len(s.history))
	copy(out, s.history)
	return out
}

// Loading reports whether a billing fetch is in flight.
func (s *PaymentsStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// LastError returns the message of the most recent failed operation.
func (s *PaymentsStore) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

// FetchPlans loads the available subscription plans.
func (s *PaymentsStore) FetchPlans(ctx context.Context) models.Result {
	s.setLoading(true)
	defer s.setLoading(false)

	var plans []models.SubscriptionPlan
	if err := s.client.GetJSON(ctx, "/payments/plans/", &plans); err != nil {
		return s.fail("Failed to load plans", err)
	}

	s.mu.Lock()
	s.plans = plans
	s.lastError = ""
	s.mu.Unlock()
	return models.OK()
}

// FetchSubscription loads the user's subscription. Having no subscription
// is a normal account state, not an error: a not-found response clears the
// cached value and succeeds.
func (s *PaymentsStore) FetchSubscription(ctx context.Context) models.Result {
	s.setLoading(true)
	defer s.setLoading(false)

	var sub models.Subscription
	err := s.client.GetJSON(ctx, "/payments/subscription/", &sub)

	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case err == nil:
		s.subscription = &sub
		s.lastError = ""
		return models.OK()
	case api.IsKind(err, api.KindNotFound):
		s.subscription = nil
		s.lastError = ""
		return models.OK()
	default:
		s.lastError = api.MessageOr(err, "Failed to load subscription")
		s.logger.Warnf("subscription fetch failed: %v", err)
		return models.Fail(s.lastError)
	}
}

// FetchHistory loads the user's payment records.
func (s *PaymentsStore) FetchHistory(ctx context.Context) models.Result {
	s.setLoading(true)
	defer s.setLoading(false)

	var history []models.PaymentRecord
	if err := s.client.GetJSON(ctx, "/payments/payments/", &history); err != nil {
		return s.fail("Failed to load payment history", err)
	}

	s.mu.Lock()
	s.history = history
	s.lastError = ""
	s.mu.Unlock()
	return models.OK()
}

// ProviderConfig returns the payment provider's public configuration,
// fetching and caching it on first use.
func (s *PaymentsStore) ProviderConfig(ctx context.Context) (*models.ProviderConfig, models.Result) {
	s.mu.Lock()
	if s.provider != nil {
		cfg := *s.provider
		s.mu.Unlock()
		return &cfg, models.OK()
	}
	s.mu.Unlock()

	var cfg models.ProviderConfig
	if err := s.client.GetJSON(ctx, "/payments/config/", &cfg); err != nil {
		return nil, s.fail("Failed to load payment configuration", err)
	}

	s.mu.Lock()
	s.provider = &cfg
	s.mu.Unlock()
	return &cfg, models.OK()
}

// CreateSubscription subscribes the user to a plan.
func (s *PaymentsStore) CreateSubscription(ctx context.Context, input models.SubscriptionCreate) models.Result {
	return s.mutate(ctx, "/payments/subscription/create/", input,
		"Subscribed", "Your subscription is active.", "Failed to create subscription")
}

// CancelSubscription cancels at the end of the current billing period.
func (s *PaymentsStore) CancelSubscription(ctx context.Context) models.Result {
	return s.mutate(ctx, "/payments/subscription/cancel/", nil,
		"Subscription canceled", "Your subscription ends at the close of the billing period.", "Failed to cancel subscription")
}

// ReactivateSubscription undoes a pending cancellation.
func (s *PaymentsStore) ReactivateSubscription(ctx context.Context) models.Result {
	return s.mutate(ctx, "/payments/subscription/reactivate/", nil,
		"Subscription reactivated", "Your subscription will renew as usual.", "Failed to reactivate subscription")
}

// UpdateSubscription switches the subscription to a different plan.
func (s *PaymentsStore) UpdateSubscription(ctx context.Context, input models.SubscriptionUpdate) models.Result {
	return s.mutate(ctx, "/payments/subscription/update/", input,
		"Plan changed", "Your subscription has been updated.", "Failed to update subscription")
}

// mutate posts a subscription mutation, then re-fetches the subscription so
// the cache reflects what the backend actually did rather than what the
// client asked for.
func (s *PaymentsStore) mutate(ctx context.Context, path string, body any, title, message, fallback string) models.Result {
	if err := s.client.PostJSON(ctx, path, body, nil); err != nil {
		result := s.fail(fallback, err)
		s.notifier.Notify(fallback, result.Error, shared.NotifyError)
		return result
	}

	if result := s.FetchSubscription(ctx); !result.Success {
		s.logger.Warnf("subscription refresh after mutation failed: %s", result.Error)
	}
	s.notifier.Notify(title, message, shared.NotifySuccess)
	return models.OK()
}

func (s *PaymentsStore) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

func (s *PaymentsStore) fail(fallback string, err error) models.Result {
	message := api.MessageOr(err, fallback)
	s.mu.Lock()
	s.lastError = message
	s.mu.Unlock()
	s.logger.Warnf("%s: %v", fallback, err)
	return models.Fail(message)
}
