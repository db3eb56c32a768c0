package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/checkout/session"
	"github.com/stripe/stripe-go/v78/webhook"

	"xposure-ticketing/models"
	"xposure-ticketing/services"
)

// StripeProvider implements services.PaymentProvider on Stripe hosted
// checkout.
type StripeProvider struct {
	webhookSecret string
}

func NewStripeProvider(secretKey, webhookSecret string) *StripeProvider {
	stripe.Key = secretKey
	return &StripeProvider{webhookSecret: webhookSecret}
}

func (p *StripeProvider) CreateSession(ctx context.Context, req services.SessionRequest) (*services.Session, error) {
	// Stripe wants the smallest currency unit.
	unitAmount := req.UnitAmount.Mul(decimal.NewFromInt(100)).IntPart()

	product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
		Name:        stripe.String(req.EventTitle),
		Description: stripe.String(req.Description),
	}
	if req.ImageURL != "" {
		product.Images = stripe.StringSlice([]string{req.ImageURL})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:    stripe.String(req.SuccessURL),
		CancelURL:     stripe.String(req.CancelURL),
		CustomerEmail: stripe.String(req.CustomerEmail),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:    stripe.String(strings.ToLower(req.Currency)),
					UnitAmount:  stripe.Int64(unitAmount),
					ProductData: product,
				},
				Quantity: stripe.Int64(int64(req.Quantity)),
			},
		},
	}
	params.Context = ctx
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	sess, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe checkout session: %w", err)
	}

	return &services.Session{ID: sess.ID, URL: sess.URL}, nil
}

// VerifyNotification authenticates the webhook payload against the
// endpoint secret before reading anything out of it.
func (p *StripeProvider) VerifyNotification(payload []byte, signature string) (*services.Notification, error) {
	event, err := webhook.ConstructEvent(payload, signature, p.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidSignature, err)
	}

	if event.Type != "checkout.session.completed" {
		return &services.Notification{Completed: false}, nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return nil, fmt.Errorf("%w: malformed checkout session payload", models.ErrInvalidSignature)
	}

	return &services.Notification{SessionID: sess.ID, Completed: true}, nil
}
