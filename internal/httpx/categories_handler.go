package httpx

import (
	"net/http"

	"github.com/ariefcatur/go-catalog-orders/internal/catalog"
	"github.com/ariefcatur/go-catalog-orders/internal/storefront"
	"github.com/go-chi/chi/v5"
)

type CategoriesHandler struct {
	Svc *storefront.Service
}

type categoryReq struct {
	ID          int64  `json:"id"`
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
	IsActive    *bool  `json:"is_active"`
}

func (h *CategoriesHandler) Register(r chi.Router) {
	r.Route("/categories", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/{id}", h.get)
		r.Get("/{id}/products", h.getWithProducts)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
}

func (h *CategoriesHandler) list(w http.ResponseWriter, r *http.Request) {
	cs, err := h.Svc.ListCategories(r.Context())
	if err != nil {
		writeStoreErr(w, r, err)
		return
	}
	list(w, cs)
}

func (h *CategoriesHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	c, err := h.Svc.GetCategory(r.Context(), id)
	if err != nil {
		writeStoreErr(w, r, err)
		return
	}
	found(w, c)
}

func (h *CategoriesHandler) getWithProducts(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	c, err := h.Svc.GetCategoryWithProducts(r.Context(), id)
	if err != nil {
		writeStoreErr(w, r, err)
		return
	}
	if c != nil && c.Products == nil {
		c.Products = []catalog.Product{}
	}
	found(w, c)
}

func (h *CategoriesHandler) create(w http.ResponseWriter, r *http.Request) {
	var req categoryReq
	if !decode(w, r, &req) {
		return
	}
	id, err := h.Svc.CreateCategory(r.Context(), &catalog.Category{Name: req.Name, Description: req.Description})
	if err != nil {
		writeStoreErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, createdResp{ID: id})
}

func (h *CategoriesHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req categoryReq
	if !decode(w, r, &req) {
		return
	}
	if req.ID != 0 && req.ID != id {
		writeErr(w, http.StatusBadRequest, "id mismatch")
		return
	}
	c := &catalog.Category{ID: id, Name: req.Name, Description: req.Description, IsActive: true}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}
	updated, err := h.Svc.UpdateCategory(r.Context(), c)
	if err != nil {
		writeStoreErr(w, r, err)
		return
	}
	done(w, updated)
}

func (h *CategoriesHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	deleted, err := h.Svc.DeleteCategory(r.Context(), id)
	if err != nil {
		writeStoreErr(w, r, err)
		return
	}
	done(w, deleted)
}
