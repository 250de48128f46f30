package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Handlers struct {
	Auth     *AuthHandler
	Catalog  *CatalogHandler
	Cart     *CartHandler
	Checkout *CheckoutHandler
	Orders   *OrdersHandler
	Content  *ContentHandler
}

// NewRouter wires the whole HTTP surface: public storefront routes,
// session-scoped shopper routes and the admin console.
func NewRouter(h Handlers, auth SessionResolver, requestTimeout time.Duration) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(Identity(auth))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Public storefront
		r.Get("/products", h.Catalog.Browse)
		r.Get("/products/{product_id}", h.Catalog.Get)
		r.Get("/projects", h.Content.ListProjects)
		r.Get("/repairs/{ticket_code}", h.Content.TrackRepair)
		r.Post("/repairs", h.Content.SubmitRepair)
		r.Post("/commissions", h.Content.SubmitCommission)

		r.Post("/auth/register", h.Auth.Register)
		r.Post("/auth/login", h.Auth.Login)
		r.Post("/auth/logout", h.Auth.Logout)
		r.Get("/auth/me", h.Auth.Me)

		// Shopper routes, session token or guest key required
		r.Group(func(r chi.Router) {
			r.Use(RequireUserKey)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", h.Cart.GetCart)
				r.Post("/items", h.Cart.AddItem)
				r.Put("/items/{product_id}", h.Cart.UpdateQuantity)
				r.Delete("/items/{product_id}", h.Cart.RemoveItem)
				r.Delete("/", h.Cart.ClearCart)
			})

			r.Post("/checkout", h.Checkout.Initiate)
			r.Post("/orders/{order_id}/proof", h.Checkout.AttachProof)
			r.Get("/orders", h.Orders.ListMine)
			r.Get("/orders/{order_id}", h.Orders.GetMine)
		})

		// Operations console
		r.Route("/admin", func(r chi.Router) {
			r.Use(RequireAdmin)

			r.Get("/products", h.Catalog.ListAll)
			r.Post("/products", h.Catalog.Create)
			r.Put("/products/{product_id}", h.Catalog.Update)
			r.Delete("/products/{product_id}", h.Catalog.Delete)

			r.Get("/orders", h.Orders.ListAll)
			r.Put("/orders/{order_id}/status", h.Orders.UpdateStatus)

			r.Get("/users", h.Auth.ListUsers)
			r.Put("/users/{user_id}/role", h.Auth.UpdateRole)

			r.Get("/repairs", h.Content.ListRepairs)
			r.Post("/repairs/{ticket_code}/advance", h.Content.AdvanceRepair)
			r.Get("/commissions", h.Content.ListCommissions)
			r.Put("/commissions/{commission_id}", h.Content.UpdateCommission)
		})
	})

	return otelhttp.NewHandler(r, "cuervo-blanco-web")
}
