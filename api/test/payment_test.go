package test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync/atomic"

	"github.com/gorilla/mux"
	"github.com/irsalhamdi/prep-center/api/web"
	"github.com/plutov/paypal/v4"
	mock "github.com/stripe/stripe-mock/param"
)

type mockPaypal struct {
	expectedValue string
	orders        int64
}

func (m *mockPaypal) handle() http.Handler {
	token := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := map[string]any{"access_token": "A21AA", "token_type": "Bearer", "expires_in": 32400}
		web.Respond(context.Background(), w, tok, 200)
	})

	checkout := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var pu struct {
			Units []paypal.PurchaseUnitRequest `json:"purchase_units"`
		}
		if err := json.NewDecoder(r.Body).Decode(&pu); err != nil {
			web.Respond(context.Background(), w, nil, 400)
			return
		}

		if len(pu.Units) != 1 {
			web.Respond(context.Background(), w, nil, 400)
			return
		}

		if pu.Units[0].Amount == nil || pu.Units[0].Amount.Value != m.expectedValue {
			web.Respond(context.Background(), w, nil, 400)
			return
		}

		id := fmt.Sprintf("PAYPAL%d", atomic.AddInt64(&m.orders, 1))
		ord := paypal.Order{
			ID:     id,
			Status: "CREATED",
			Links:  []paypal.Link{{Href: "https://www.sandbox.paypal.com/checkoutnow?token=" + id, Rel: "approve", Method: "GET"}},
		}
		web.Respond(context.Background(), w, ord, 201)
	})

	capture := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ord := paypal.Order{ID: mux.Vars(r)["id"], Status: "COMPLETED"}
		web.Respond(context.Background(), w, ord, 201)
	})

	r := mux.NewRouter()
	r.Handle("/v1/oauth2/token", token).Methods("POST")
	r.Handle("/v2/checkout/orders", checkout).Methods("POST")
	r.Handle("/v2/checkout/orders/{id}/capture", capture).Methods("POST")
	return r
}

type mockStripe struct {
	expectedAmount int64
	sessions       int64
}

func lineItems(params map[string]any) []map[string]any {
	var items []map[string]any
	switch lines := params["line_items"].(type) {
	case []any:
		for _, li := range lines {
			if it, ok := li.(map[string]any); ok {
				items = append(items, it)
			}
		}
	case map[string]any:
		for _, li := range lines {
			if it, ok := li.(map[string]any); ok {
				items = append(items, it)
			}
		}
	}
	return items
}

func (m *mockStripe) handle() http.Handler {
	checkout := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		params, err := mock.ParseParams(r)
		if err != nil {
			web.Respond(context.Background(), w, nil, 400)
			return
		}

		items := lineItems(params)
		if len(items) != 1 {
			web.Respond(context.Background(), w, nil, 400)
			return
		}

		it := items[0]
		if it["quantity"] != "1" {
			web.Respond(context.Background(), w, nil, 400)
			return
		}

		pd, _ := it["price_data"].(map[string]any)
		s, _ := pd["unit_amount"].(string)
		amount, err := strconv.ParseInt(s, 10, 64)
		if err != nil || amount != m.expectedAmount {
			web.Respond(context.Background(), w, nil, 400)
			return
		}

		id := fmt.Sprintf("cs_test_%d", atomic.AddInt64(&m.sessions, 1))
		sess := map[string]any{
			"id":     id,
			"object": "checkout.session",
			"mode":   "payment",
			"url":    "https://checkout.stripe.com/c/pay/" + id,
		}
		web.Respond(context.Background(), w, sess, 200)
	})

	r := mux.NewRouter()
	r.Handle("/v1/checkout/sessions", checkout).Methods("POST")
	return r
}
