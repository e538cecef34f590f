package models

// SubscriptionStatus enumerates the billing states reported by the backend.
type SubscriptionStatus string

const (
	SubscriptionActive     SubscriptionStatus = "active"
	SubscriptionCanceled   SubscriptionStatus = "canceled"
	SubscriptionPastDue    SubscriptionStatus = "past_due"
	SubscriptionIncomplete SubscriptionStatus = "incomplete"
)

// SubscriptionPlan represents a purchasable plan.
type SubscriptionPlan struct {
	ID               int     `json:"id"`
	Name             string  `json:"name"`
	PlanType         string  `json:"plan_type"`
	Price            float64 `json:"price"`
	Currency         string  `json:"currency"`
	Interval         string  `json:"interval"`
	MaxBooksPerMonth int     `json:"max_books_per_month"`
	MaxPagesPerBook  int     `json:"max_pages_per_book"`
	PrioritySupport  bool    `json:"priority_support"`
	CustomCovers     bool    `json:"custom_covers"`
	APIAccess        bool    `json:"api_access"`
	IsActive         bool    `json:"is_active"`
}

// Subscription represents the user's current subscription, if any.
type Subscription struct {
	ID                 int                `json:"id"`
	Plan               SubscriptionPlan   `json:"plan"`
	Status             SubscriptionStatus `json:"status"`
	CurrentPeriodStart string             `json:"current_period_start"`
	CurrentPeriodEnd   string             `json:"current_period_end"`
	CancelAtPeriodEnd  bool               `json:"cancel_at_period_end"`
}

// Active reports whether the subscription is currently in good standing.
func (s *Subscription) Active() bool {
	return s != nil && s.Status == SubscriptionActive
}

// PaymentRecord represents one historical payment.
type PaymentRecord struct {
	ID          int     `json:"id"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	Status      string  `json:"status"`
	CreatedAt   string  `json:"created_at"`
	Description string  `json:"description,omitempty"`
}

// ProviderConfig carries the payment provider's public client configuration.
type ProviderConfig struct {
	PublishableKey string `json:"publishableKey"`
}

// SubscriptionCreate carries a subscription creation request.
type SubscriptionCreate struct {
	PlanID          int    `json:"plan_id"`
	PaymentMethodID string `json:"payment_method_id,omitempty"`
}

// SubscriptionUpdate carries a plan change request.
type SubscriptionUpdate struct {
	PlanID int `json:"plan_id"`
}
