package api

import (
	"net/http"

	"github.com/velora/storefront/pkg/httputil"
	"github.com/velora/storefront/pkg/middleware"
	"github.com/velora/storefront/pkg/observability"
	"github.com/velora/storefront/pkg/storage"
)

// ProductHandlers handles the catalog endpoints. Reads are public with
// optional auth; writes are gated on the admin/seller allow-list.
type ProductHandlers struct {
	products storage.ProductStore
}

// NewProductHandlers creates the product handlers
func NewProductHandlers(products storage.ProductStore) *ProductHandlers {
	return &ProductHandlers{products: products}
}

// list handles GET /products and GET /products/featured
func (h *ProductHandlers) list(featuredOnly bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products, err := h.products.List(r.Context(), featuredOnly)
		if err != nil {
			observability.FromContext(r.Context()).WithError(err).Error("product list failed")
			httputil.WriteInternalError(w, "Internal server error")
			return
		}
		httputil.WriteSuccess(w, "", map[string]interface{}{"products": products})
	}
}

// get handles GET /products/{id}
func (h *ProductHandlers) get(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.ParsePathString(r, "id")
	if err != nil {
		httputil.WriteBadRequest(w, "Product id is required")
		return
	}

	product, err := h.products.Get(r.Context(), id)
	if err != nil {
		observability.FromContext(r.Context()).WithError(err).Error("product lookup failed")
		httputil.WriteInternalError(w, "Internal server error")
		return
	}
	if product == nil {
		httputil.WriteNotFound(w, "Product not found")
		return
	}

	httputil.WriteSuccess(w, "", map[string]interface{}{"product": product})
}

// create handles POST /products; reaches here only through the
// authenticate + RequireRole(admin, seller) pipeline
func (h *ProductHandlers) create(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req createProductRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.Name, "name") {
		return
	}
	if req.Price <= 0 {
		httputil.WriteBadRequest(w, "price must be positive")
		return
	}

	product, err := h.products.Create(r.Context(), storage.NewProduct{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Featured:    req.Featured,
		SellerID:    principal.ID,
	})
	if err != nil {
		observability.FromContext(r.Context()).WithError(err).Error("product create failed")
		httputil.WriteInternalError(w, "Internal server error")
		return
	}

	httputil.WriteCreated(w, "Product created", map[string]interface{}{"product": product})
}
