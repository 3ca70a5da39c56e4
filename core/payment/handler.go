package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/irsalhamdi/prep-center/api/web"
	"github.com/irsalhamdi/prep-center/api/weberr"
	"github.com/irsalhamdi/prep-center/config"
	"github.com/irsalhamdi/prep-center/core/course"
	"github.com/irsalhamdi/prep-center/database"
	"github.com/irsalhamdi/prep-center/validate"
	"github.com/jmoiron/sqlx"
	"github.com/plutov/paypal/v4"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v74"
	stripecl "github.com/stripe/stripe-go/v74/client"
	"github.com/stripe/stripe-go/v74/webhook"
)

const maxWebhookBody = 65536

var zeroDecimal = map[string]bool{
	"bif": true, "clp": true, "djf": true, "gnf": true, "jpy": true, "kmf": true, "krw": true, "mga": true,
	"pyg": true, "rwf": true, "ugx": true, "vnd": true, "vuv": true, "xaf": true, "xof": true, "xpf": true,
}

func MinorUnits(amount decimal.Decimal, currency string) int64 {
	if zeroDecimal[strings.ToLower(currency)] {
		return amount.Round(0).IntPart()
	}
	return amount.Shift(2).Round(0).IntPart()
}

func checkout(ctx context.Context, db *sqlx.DB, w http.ResponseWriter, r *http.Request) (Checkout, course.Course, error) {
	var in Checkout
	if err := web.Decode(w, r, &in); err != nil {
		return Checkout{}, course.Course{}, weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
	}
	in.Email = validate.NormalizeEmail(in.Email)

	if err := validate.Check(in); err != nil {
		return Checkout{}, course.Course{}, weberr.BadRequest(err)
	}

	if err := validate.CheckID(in.CourseID); err != nil {
		return Checkout{}, course.Course{}, weberr.NotFound(fmt.Errorf("course[%s]: %w", in.CourseID, err))
	}

	c, err := course.Fetch(ctx, db, in.CourseID)
	if err != nil {
		if errors.Is(err, database.ErrDBNotFound) {
			return Checkout{}, course.Course{}, weberr.NotFound(fmt.Errorf("course[%s] not found", in.CourseID))
		}
		return Checkout{}, course.Course{}, fmt.Errorf("fetching course[%s]: %w", in.CourseID, err)
	}

	return in, c, nil
}

func prepare(ctx context.Context, db *sqlx.DB, in Checkout, c course.Course, prov Provider, sessionID, currency string) error {
	now := time.Now().UTC()
	p := Payment{
		ID:        validate.GenerateID(),
		CourseID:  c.ID,
		Email:     in.Email,
		Amount:    c.Price,
		Currency:  strings.ToLower(currency),
		Status:    Pending,
		Provider:  prov,
		SessionID: sessionID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := Create(ctx, db, p); err != nil {
		return fmt.Errorf("creating the payment bound to %s session[%s]: %w", prov, sessionID, err)
	}
	return nil
}

// settle moves the payment of sessionID to status. A payment already there, or completed, is left
// alone; an unknown session is database.ErrDBNotFound.
func settle(ctx context.Context, db *sqlx.DB, sessionID string, status Status) error {
	up := StatusUp{
		SessionID: sessionID,
		Status:    status,
		UpdatedAt: time.Now().UTC(),
	}

	n, err := UpdateStatus(ctx, db, up)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	if _, err := FetchBySessionID(ctx, db, sessionID); err != nil {
		return err
	}
	return nil
}

func settleResponse(err error, sessionID string, status Status) error {
	fields := weberr.WithFields(map[string]interface{}{
		"session_id": sessionID,
		"status":     status,
	})

	if errors.Is(err, database.ErrDBNotFound) {
		return weberr.NotFound(fmt.Errorf("no payment bound to session[%s]", sessionID), fields)
	}
	return weberr.InternalError(fmt.Errorf("recording the settled payment of session[%s]: %w", sessionID, err), fields)
}

func withSessionID(successURL string) string {
	sep := "?"
	if strings.Contains(successURL, "?") {
		sep = "&"
	}
	return successURL + sep + "session_id={CHECKOUT_SESSION_ID}"
}

func HandleCreateSession(db *sqlx.DB, strp *stripecl.API, cfg config.Stripe, currency string) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		in, c, err := checkout(ctx, db, w, r)
		if err != nil {
			return err
		}

		params := &stripe.CheckoutSessionParams{
			SuccessURL:        stripe.String(withSessionID(cfg.SuccessURL)),
			CancelURL:         stripe.String(cfg.CancelURL),
			Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
			CustomerEmail:     stripe.String(in.Email),
			ClientReferenceID: stripe.String(c.ID),

			LineItems: []*stripe.CheckoutSessionLineItemParams{{
				Quantity: stripe.Int64(1),

				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(strings.ToLower(currency)),
					UnitAmount: stripe.Int64(MinorUnits(c.Price, currency)),

					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(c.Title),
						Description: stripe.String(c.Description),
					},
				},
			}},
		}
		params.Context = ctx
		params.AddMetadata("course_id", c.ID)

		s, err := strp.CheckoutSessions.New(params)
		if err != nil {
			return fmt.Errorf("creating stripe session for course[%s]: %w", c.ID, err)
		}

		if err := prepare(ctx, db, in, c, Stripe, s.ID, currency); err != nil {
			return err
		}

		return web.Respond(ctx, w, sessionResponse{SessionID: s.ID, URL: s.URL}, http.StatusOK)
	}
}

func HandleStripeWebhook(db *sqlx.DB, cfg config.Stripe) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		b, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
		if err != nil {
			return weberr.BadRequest(fmt.Errorf("cannot read the request body: %w", err))
		}

		sig := r.Header.Get("Stripe-Signature")
		if sig == "" {
			return weberr.BadRequest(errors.New("received stripe event is not signed"))
		}

		event, err := webhook.ConstructEvent(b, sig, cfg.WebhookSecret)
		if err != nil {
			return weberr.BadRequest(fmt.Errorf("cannot construct stripe event: %w", err))
		}

		var status Status
		switch event.Type {
		case "checkout.session.completed":
			status = Completed
		case "checkout.session.expired":
			status = Expired
		default:
			return web.Respond(ctx, w, nil, http.StatusNoContent)
		}

		var session stripe.CheckoutSession
		if err = json.Unmarshal(event.Data.Raw, &session); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode stripe event: %w", err))
		}

		if session.Mode != stripe.CheckoutSessionModePayment {
			return web.Respond(ctx, w, nil, http.StatusNoContent)
		}

		// Delayed payment methods complete the session before the money arrives.
		if status == Completed && session.PaymentStatus == stripe.CheckoutSessionPaymentStatusUnpaid {
			return web.Respond(ctx, w, nil, http.StatusNoContent)
		}

		if err := settle(ctx, db, session.ID, status); err != nil {
			return settleResponse(err, session.ID, status)
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}

func HandleShow(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		sessionID := web.Param(r, "session_id")

		p, err := FetchBySessionID(ctx, db, sessionID)
		if err != nil {
			if errors.Is(err, database.ErrDBNotFound) {
				return weberr.NotFound(fmt.Errorf("no payment bound to session[%s]", sessionID))
			}
			return fmt.Errorf("fetching payment of session[%s]: %w", sessionID, err)
		}

		return web.Respond(ctx, w, p, http.StatusOK)
	}
}

func HandlePaypalCreate(db *sqlx.DB, pp *paypal.Client, cfg config.Paypal, currency string) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		in, c, err := checkout(ctx, db, w, r)
		if err != nil {
			return err
		}

		cur := strings.ToUpper(currency)
		value := c.Price.StringFixed(2)
		if zeroDecimal[strings.ToLower(currency)] {
			value = c.Price.StringFixed(0)
		}

		units := []paypal.PurchaseUnitRequest{{
			ReferenceID: c.ID,
			Description: c.Title,

			Amount: &paypal.PurchaseUnitAmount{
				Currency: cur,
				Value:    value,
			},
		}}

		app := &paypal.ApplicationContext{
			ReturnURL: cfg.ReturnURL,
			CancelURL: cfg.CancelURL,
		}

		ord, err := pp.CreateOrder(ctx, "CAPTURE", units, nil, app)
		if err != nil {
			return fmt.Errorf("creating paypal order for course[%s]: %w", c.ID, err)
		}

		var approve string
		for _, l := range ord.Links {
			if l.Rel == "approve" || l.Rel == "payer-action" {
				approve = l.Href
				break
			}
		}
		if approve == "" {
			return fmt.Errorf("paypal order[%s] carries no approve link", ord.ID)
		}

		if err := prepare(ctx, db, in, c, Paypal, ord.ID, currency); err != nil {
			return err
		}

		return web.Respond(ctx, w, sessionResponse{SessionID: ord.ID, URL: approve}, http.StatusOK)
	}
}

func HandlePaypalCapture(db *sqlx.DB, pp *paypal.Client) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		orderID := web.Param(r, "id")

		p, err := FetchBySessionID(ctx, db, orderID)
		if err != nil {
			if errors.Is(err, database.ErrDBNotFound) {
				return weberr.NotFound(fmt.Errorf("no payment bound to paypal order[%s]", orderID))
			}
			return fmt.Errorf("fetching payment of paypal order[%s]: %w", orderID, err)
		}
		if p.Provider != Paypal {
			return weberr.NotFound(fmt.Errorf("payment of session[%s] is a %s payment", orderID, p.Provider))
		}

		resp, err := pp.CaptureOrder(ctx, orderID, paypal.CaptureOrderRequest{})
		if err != nil {
			return fmt.Errorf("capturing paypal order[%s]: %w", orderID, err)
		}

		if resp.Status != "COMPLETED" {
			err := fmt.Errorf("captured order[%s] with status[%s] different from 'COMPLETED'", orderID, resp.Status)
			return weberr.NewError(err, "payment was not completed", http.StatusUnprocessableEntity)
		}

		if err := settle(ctx, db, orderID, Completed); err != nil {
			return settleResponse(err, orderID, Completed)
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}
