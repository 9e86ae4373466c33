// Package payments creates Stripe Checkout sessions for shop purchases.
package payments

import (
	"fmt"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/checkout/session"
)

// ActionType identifies what a completed checkout should grant.
type ActionType string

const (
	ActionPremium      ActionType = "premium"
	ActionRefill       ActionType = "refill"
	ActionStreakFreeze ActionType = "streak_freeze"
)

// Client wraps checkout session creation. With no API key configured it
// is disabled and CreateCheckout reports an error.
type Client struct {
	enabled bool
	appURL  string
}

func New(apiKey, appURL string) *Client {
	if apiKey == "" {
		return &Client{appURL: appURL}
	}
	stripe.Key = apiKey
	return &Client{enabled: true, appURL: appURL}
}

func (c *Client) Enabled() bool { return c.enabled }

// CreateCheckout opens a checkout session for the given price and returns
// the processor-hosted redirect URL. mode is "payment" or "subscription".
func (c *Client) CreateCheckout(userID, priceID, mode string, action ActionType) (string, error) {
	if !c.enabled {
		return "", fmt.Errorf("payments not configured")
	}

	checkoutMode := stripe.CheckoutSessionModePayment
	if mode == "subscription" {
		checkoutMode = stripe.CheckoutSessionModeSubscription
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(checkoutMode)),
		ClientReferenceID: stripe.String(userID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(c.appURL + "/shop?checkout=success&session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripe.String(c.appURL + "/shop?checkout=cancelled"),
	}
	params.AddMetadata("action_type", string(action))

	s, err := session.New(params)
	if err != nil {
		return "", fmt.Errorf("creating checkout session: %w", err)
	}
	return s.URL, nil
}

// Fulfilment describes a checkout session the processor reports as paid.
type Fulfilment struct {
	UserID string
	Action ActionType
	Paid   bool
}

// VerifySession fetches a checkout session and reports whether it was
// paid, along with who paid and what the purchase grants.
func (c *Client) VerifySession(sessionID string) (Fulfilment, error) {
	if !c.enabled {
		return Fulfilment{}, fmt.Errorf("payments not configured")
	}

	s, err := session.Get(sessionID, nil)
	if err != nil {
		return Fulfilment{}, fmt.Errorf("fetching checkout session: %w", err)
	}
	return Fulfilment{
		UserID: s.ClientReferenceID,
		Action: ActionType(s.Metadata["action_type"]),
		Paid:   s.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
	}, nil
}
