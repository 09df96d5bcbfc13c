package httpx

import (
	"net/http"
	"strconv"

	"github.com/ariefcatur/go-catalog-orders/internal/catalog"
	"github.com/ariefcatur/go-catalog-orders/internal/storefront"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type ProductsHandler struct {
	Svc *storefront.Service
}

type productReq struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name" validate:"required,max=100"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description" validate:"max=500"`
	CategoryID  int64           `json:"category_id" validate:"required,gt=0"`
	IsActive    *bool           `json:"is_active"`
}

func (h *ProductsHandler) Register(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/paged", h.paged)
		r.Get("/category/{categoryID}", h.byCategory)
		r.Get("/{id}", h.get)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
}

func (h *ProductsHandler) list(w http.ResponseWriter, r *http.Request) {
	ps, err := h.Svc.ListProducts(r.Context())
	if err != nil {
		writeStoreErr(w, r, err)
		return
	}
	list(w, ps)
}

func (h *ProductsHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	p, err := h.Svc.GetProduct(r.Context(), id)
	if err != nil {
		writeStoreErr(w, r, err)
		return
	}
	found(w, p)
}

// paged reads ?page=&pageSize=; missing or malformed values fall back to the
// service clamp.
func (h *ProductsHandler) paged(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	res, err := h.Svc.PagedProducts(r.Context(), page, size)
	if err != nil {
		writeStoreErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *ProductsHandler) byCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "categoryID")
	if !ok {
		return
	}
	ps, err := h.Svc.ProductsByCategory(r.Context(), id)
	if err != nil {
		writeStoreErr(w, r, err)
		return
	}
	list(w, ps)
}

func (req productReq) product(id int64) (*catalog.Product, bool) {
	if req.Price.IsNegative() {
		return nil, false
	}
	p := &catalog.Product{
		ID:          id,
		Name:        req.Name,
		Price:       req.Price,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		IsActive:    true,
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	return p, true
}

func (h *ProductsHandler) create(w http.ResponseWriter, r *http.Request) {
	var req productReq
	if !decode(w, r, &req) {
		return
	}
	p, ok := req.product(0)
	if !ok {
		writeErr(w, http.StatusBadRequest, "price must not be negative")
		return
	}
	id, err := h.Svc.CreateProduct(r.Context(), p)
	if err != nil {
		writeStoreErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, createdResp{ID: id})
}

func (h *ProductsHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req productReq
	if !decode(w, r, &req) {
		return
	}
	if req.ID != 0 && req.ID != id {
		writeErr(w, http.StatusBadRequest, "id mismatch")
		return
	}
	p, ok := req.product(id)
	if !ok {
		writeErr(w, http.StatusBadRequest, "price must not be negative")
		return
	}
	updated, err := h.Svc.UpdateProduct(r.Context(), p)
	if err != nil {
		writeStoreErr(w, r, err)
		return
	}
	done(w, updated)
}

func (h *ProductsHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	deleted, err := h.Svc.DeleteProduct(r.Context(), id)
	if err != nil {
		writeStoreErr(w, r, err)
		return
	}
	done(w, deleted)
}
