package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/desertthunder/inkwell/internal/models"
	"github.com/desertthunder/inkwell/internal/server"
	"github.com/desertthunder/inkwell/internal/shared"
	"github.com/urfave/cli/v3"
)

// checkoutTimeout bounds how long the listener waits for the provider's
// redirect before giving up.
const checkoutTimeout = 5 * time.Minute

// PaymentsPlans fetches and prints the available subscription plans.
func (r *Runner) PaymentsPlans(ctx context.Context, cmd *cli.Command) error {
	if result := r.payments.FetchPlans(ctx); !result.Success {
		return fmt.Errorf("%w: %s", shared.ErrAPIRequest, result.Error)
	}

	plans := r.payments.Plans()
	if cmd.Bool("json") {
		return r.writeJSON(plans, cmd.Bool("pretty"))
	}

	r.writePlainHeader("Plans")
	for _, plan := range plans {
		r.writePlain("[%d] %s: %.2f %s / %s\n", plan.ID, plan.Name, plan.Price, plan.Currency, plan.Interval)
		r.writePlain("    %d books/month, up to %d pages\n", plan.MaxBooksPerMonth, plan.MaxPagesPerBook)
	}
	return nil
}

// PaymentsSubscription prints the current subscription, if any.
func (r *Runner) PaymentsSubscription(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAuth(ctx); err != nil {
		return err
	}
	if result := r.payments.FetchSubscription(ctx); !result.Success {
		return fmt.Errorf("%w: %s", shared.ErrAPIRequest, result.Error)
	}

	sub := r.payments.Subscription()
	if sub == nil {
		return r.writePlain("No active subscription\n")
	}

	if cmd.Bool("json") {
		return r.writeJSON(sub, cmd.Bool("pretty"))
	}

	r.writePlainHeader("Subscription")
	r.writePlain("Plan: %s (%.2f %s / %s)\n", sub.Plan.Name, sub.Plan.Price, sub.Plan.Currency, sub.Plan.Interval)
	r.writePlain("Status: %s\n", sub.Status)
	r.writePlain("Current period: %s to %s\n", sub.CurrentPeriodStart, sub.CurrentPeriodEnd)
	if sub.CancelAtPeriodEnd {
		r.writePlainln("Cancels at period end")
	}
	return nil
}

// PaymentsHistory prints past payment records.
func (r *Runner) PaymentsHistory(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAuth(ctx); err != nil {
		return err
	}
	if result := r.payments.FetchHistory(ctx); !result.Success {
		return fmt.Errorf("%w: %s", shared.ErrAPIRequest, result.Error)
	}

	history := r.payments.History()
	if cmd.Bool("json") {
		return r.writeJSON(history, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Payments (%d)", len(history)))
	for _, record := range history {
		r.writePlain("%s  %.2f %s  %s\n", record.CreatedAt, record.Amount, record.Currency, record.Status)
	}
	return nil
}

// PaymentsSubscribe creates a subscription for the given plan.
func (r *Runner) PaymentsSubscribe(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAuth(ctx); err != nil {
		return err
	}

	planID := int(cmd.Int("plan"))
	if planID == 0 {
		return fmt.Errorf("%w: --plan", shared.ErrMissingArgument)
	}

	input := models.SubscriptionCreate{
		PlanID:          planID,
		PaymentMethodID: cmd.String("payment-method"),
	}
	if result := r.payments.CreateSubscription(ctx, input); !result.Success {
		return fmt.Errorf("%w: %s", shared.ErrAPIRequest, result.Error)
	}

	if sub := r.payments.Subscription(); sub != nil {
		return r.writePlain("✓ Subscribed to %s\n", sub.Plan.Name)
	}
	return r.writePlainln("✓ Subscription created")
}

// requireSubscription refreshes the subscription and fails when there is
// none to operate on.
func (r *Runner) requireSubscription(ctx context.Context) error {
	if result := r.payments.FetchSubscription(ctx); !result.Success {
		return fmt.Errorf("%w: %s", shared.ErrAPIRequest, result.Error)
	}
	if r.payments.Subscription() == nil {
		return fmt.Errorf("%w: subscribe with 'inkwell payments subscribe'", shared.ErrNoSubscription)
	}
	return nil
}

// PaymentsCancel flags the subscription to end at the period boundary.
func (r *Runner) PaymentsCancel(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAuth(ctx); err != nil {
		return err
	}
	if err := r.requireSubscription(ctx); err != nil {
		return err
	}
	if result := r.payments.CancelSubscription(ctx); !result.Success {
		return fmt.Errorf("%w: %s", shared.ErrAPIRequest, result.Error)
	}
	return r.writePlainln("✓ Subscription will cancel at the end of the current period")
}

// PaymentsReactivate clears a pending cancellation.
func (r *Runner) PaymentsReactivate(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAuth(ctx); err != nil {
		return err
	}
	if err := r.requireSubscription(ctx); err != nil {
		return err
	}
	if result := r.payments.ReactivateSubscription(ctx); !result.Success {
		return fmt.Errorf("%w: %s", shared.ErrAPIRequest, result.Error)
	}
	return r.writePlainln("✓ Subscription reactivated")
}

// PaymentsChangePlan switches the subscription to a different plan.
func (r *Runner) PaymentsChangePlan(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAuth(ctx); err != nil {
		return err
	}

	planID := int(cmd.Int("plan"))
	if planID == 0 {
		return fmt.Errorf("%w: --plan", shared.ErrMissingArgument)
	}
	if err := r.requireSubscription(ctx); err != nil {
		return err
	}

	if result := r.payments.UpdateSubscription(ctx, models.SubscriptionUpdate{PlanID: planID}); !result.Success {
		return fmt.Errorf("%w: %s", shared.ErrAPIRequest, result.Error)
	}

	if sub := r.payments.Subscription(); sub != nil {
		return r.writePlain("✓ Switched to %s\n", sub.Plan.Name)
	}
	return r.writePlainln("✓ Plan updated")
}

// checkoutSession is the server's response to a hosted checkout request.
type checkoutSession struct {
	URL string `json:"checkout_url"`
}

// PaymentsCheckout runs a hosted checkout flow: it requests a checkout
// session from the server, opens the provider's payment page in the
// browser, and waits for the redirect on a local listener.
func (r *Runner) PaymentsCheckout(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAuth(ctx); err != nil {
		return err
	}

	planID := int(cmd.Int("plan"))
	if planID == 0 {
		return fmt.Errorf("%w: --plan", shared.ErrMissingArgument)
	}

	state := shared.GenerateID()
	handler := server.NewCheckoutHandler(state)

	router := server.NewBasicRouter()
	router.Use(server.Logging(r.logger))
	router.Handler(handler)

	addr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	srv := &http.Server{Addr: addr, Handler: router}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			r.logger.Errorf("checkout listener: %v", err)
		}
	}()
	defer srv.Shutdown(context.Background())

	local := fmt.Sprintf("http://%s", addr)
	body := map[string]any{
		"plan_id":     planID,
		"state":       state,
		"success_url": local + "/checkout/success",
		"cancel_url":  local + "/checkout/cancel",
	}

	var checkout checkoutSession
	if err := r.client.PostJSON(ctx, "/payments/checkout-session/", body, &checkout); err != nil {
		return fmt.Errorf("%w: failed to create checkout session", err)
	}

	r.writePlainln("Opening checkout in your browser...")
	if err := shared.OpenBrowser(checkout.URL); err != nil {
		r.writePlain("Visit this URL to complete checkout:\n\n%s\n\n", checkout.URL)
	}

	select {
	case result := <-handler.Result():
		if err := result.Error(); err != nil {
			return fmt.Errorf("checkout failed: %w", err)
		}
		if result.Canceled {
			return r.writePlainln("Checkout canceled, no charge was made")
		}
		r.writePlainln("✓ Checkout complete")
		if res := r.payments.FetchSubscription(ctx); res.Success {
			if sub := r.payments.Subscription(); sub != nil {
				r.writePlain("Plan: %s\n", sub.Plan.Name)
			}
		}
		return nil
	case <-time.After(checkoutTimeout):
		return fmt.Errorf("%w: checkout timed out after %s", shared.ErrTimeout, checkoutTimeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}
