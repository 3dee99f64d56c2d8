package payments

import (
	"context" // Context for gateway calls

	"github.com/stripe/stripe-go/v82"               // Stripe SDK types
	"github.com/stripe/stripe-go/v82/paymentintent" // Stripe payment intents API
)

// Gateway is the card-payment collaborator: it authorizes an amount and
// returns an opaque client secret the frontend uses to complete the charge.
// Settlement runs only after the client confirms the charge succeeded.
type Gateway interface {
	CreateIntent(ctx context.Context, amountCents int64, currency string) (string, error)
}

// StripeGateway implements Gateway against the Stripe PaymentIntents API
type StripeGateway struct{}

// NewStripeGateway configures the global Stripe client with the secret key
// and returns a gateway bound to it
func NewStripeGateway(secretKey string) *StripeGateway {
	stripe.Key = secretKey // Stripe SDK uses a package-level key
	return &StripeGateway{}
}

// CreateIntent creates a card payment intent and returns its client secret
func (g *StripeGateway) CreateIntent(ctx context.Context, amountCents int64, currency string) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(amountCents),            // Amount in the currency's smallest unit
		Currency:           stripe.String(currency),              // e.g. "usd"
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}), // Card payments only
	}
	params.Context = ctx // Propagate the request deadline to Stripe
	intent, err := paymentintent.New(params)
	if err != nil {
		return "", err // Return error if the gateway refused the intent
	}
	return intent.ClientSecret, nil // Opaque secret for the client
}
