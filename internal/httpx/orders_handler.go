package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/ariefcatur/go-catalog-orders/internal/catalog"
	"github.com/ariefcatur/go-catalog-orders/internal/storefront"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// IdempotencyStore backs the Idempotency-Key header on POST /orders.
type IdempotencyStore interface {
	Lookup(ctx context.Context, key string) (int64, bool, error)
	Remember(ctx context.Context, key string, orderID int64) error
}

type OrdersHandler struct {
	Svc *storefront.Service
	// Idem may be nil, which turns idempotency keys off.
	Idem IdempotencyStore
}

type orderLineReq struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gt=0"`
}

type createOrderReq struct {
	CustomerName string         `json:"customer_name" validate:"required,max=100"`
	ContactEmail string         `json:"contact_email" validate:"omitempty,email,max=100"`
	Items        []orderLineReq `json:"items" validate:"dive"`
}

type createOrderResp struct {
	ID          int64           `json:"id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Idempotent  bool            `json:"idempotent"`
}

type updateOrderReq struct {
	ID           int64                `json:"id"`
	CustomerName string               `json:"customer_name" validate:"required,max=100"`
	ContactEmail string               `json:"contact_email" validate:"omitempty,email,max=100"`
	Status       *catalog.OrderStatus `json:"status" validate:"required"`
}

type statusReq struct {
	Status *catalog.OrderStatus `json:"status" validate:"required"`
}

type updateItemReq struct {
	Quantity  int             `json:"quantity" validate:"required,gt=0"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type salesResp struct {
	Start       *time.Time      `json:"start,omitempty"`
	End         *time.Time      `json:"end,omitempty"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

func (h *OrdersHandler) Register(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/sales", h.sales)
		r.Get("/status/{status}", h.byStatus)
		r.Get("/{id}", h.get)
		r.Put("/{id}", h.update)
		r.Put("/{id}/status", h.updateStatus)
		r.Delete("/{id}", h.delete)
		r.Get("/{id}/items", h.listItems)
		r.Delete("/{id}/items", h.clearItems)
		r.Put("/{id}/items/{itemID}", h.updateItem)
		r.Delete("/{id}/items/{itemID}", h.deleteItem)
	})
}

func (h *OrdersHandler) list(w http.ResponseWriter, r *http.Request) {
	out, err := h.Svc.ListOrders(r.Context())
	if err != nil {
		writeStoreErr(w, r, err)
		return
	}
	list(w, out)
}

func (h *OrdersHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	o, err := h.Svc.GetOrder(r.Context(), id)
	if err != nil {
		writeStoreErr(w, r, err)
		return
	}
	found(w, o)
}

func (h *OrdersHandler) byStatus(w http.ResponseWriter, r *http.Request) {
	status, err := catalog.ParseOrderStatus(chi.URLParam(r, "status"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	out, err := h.Svc.OrdersByStatus(r.Context(), status)
	if err != nil {
		writeStoreErr(w, r, err)
		return
	}
	list(w, out)
}

// sales accepts ?start= and ?end= as YYYY-MM-DD or RFC 3339; both optional.
func (h *OrdersHandler) sales(w http.ResponseWriter, r *http.Request) {
	var f catalog.SalesFilter
	for _, p := range []struct {
		name string
		dst  **time.Time
	}{{"start", &f.Start}, {"end", &f.End}} {
		raw := r.URL.Query().Get(p.name)
		if raw == "" {
			continue
		}
		t, err := parseDay(raw)
		if err != nil {
			writeErr(w, http.StatusBadRequest, "invalid "+p.name+" date")
			return
		}
		*p.dst = &t
	}
	total, err := h.Svc.TotalSales(r.Context(), f)
	if err != nil {
		writeStoreErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, salesResp{Start: f.Start, End: f.End, TotalAmount: total})
}

func parseDay(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func (h *OrdersHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createOrderReq
	if !decode(w, r, &req) {
		return
	}
	ctx := r.Context()
	log := zerolog.Ctx(ctx)

	// Fast path: same key already produced an order. The database stays the
	// source of truth for its content.
	key := r.Header.Get("Idempotency-Key")
	if key != "" && h.Idem != nil {
		orderID, seen, err := h.Idem.Lookup(ctx, key)
		if err != nil {
			log.Warn().Err(err).Msg("idempotency lookup failed")
		}
		if seen {
			o, err := h.Svc.GetOrder(ctx, orderID)
			if err != nil {
				writeStoreErr(w, r, err)
				return
			}
			if o != nil {
				writeJSON(w, http.StatusOK, createOrderResp{ID: o.ID, TotalAmount: o.TotalAmount, Idempotent: true})
				return
			}
		}
	}

	in := storefront.CreateOrderInput{CustomerName: req.CustomerName, ContactEmail: req.ContactEmail}
	for _, it := range req.Items {
		in.Items = append(in.Items, storefront.OrderLineInput{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	o, err := h.Svc.CreateOrder(ctx, in)
	if err != nil {
		writeStoreErr(w, r, err)
		return
	}

	if key != "" && h.Idem != nil {
		if err := h.Idem.Remember(ctx, key, o.ID); err != nil {
			log.Warn().Err(err).Int64("order_id", o.ID).Msg("idempotency key not stored")
		}
	}
	writeJSON(w, http.StatusCreated, createOrderResp{ID: o.ID, TotalAmount: o.TotalAmount})
}

func (h *OrdersHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req updateOrderReq
	if !decode(w, r, &req) {
		return
	}
	if req.ID != 0 && req.ID != id {
		writeErr(w, http.StatusBadRequest, "id mismatch")
		return
	}
	updated, err := h.Svc.UpdateOrder(r.Context(), storefront.UpdateOrderInput{
		ID:           id,
		CustomerName: req.CustomerName,
		ContactEmail: req.ContactEmail,
		Status:       *req.Status,
	})
	if err != nil {
		writeStoreErr(w, r, err)
		return
	}
	done(w, updated)
}

func (h *OrdersHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req statusReq
	if !decode(w, r, &req) {
		return
	}
	updated, err := h.Svc.UpdateOrderStatus(r.Context(), id, *req.Status)
	if err != nil {
		writeStoreErr(w, r, err)
		return
	}
	done(w, updated)
}

func (h *OrdersHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	deleted, err := h.Svc.DeleteOrder(r.Context(), id)
	if err != nil {
		writeStoreErr(w, r, err)
		return
	}
	done(w, deleted)
}

func (h *OrdersHandler) listItems(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	items, err := h.Svc.ListOrderItems(r.Context(), id)
	if err != nil {
		writeStoreErr(w, r, err)
		return
	}
	list(w, items)
}

func (h *OrdersHandler) clearItems(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	cleared, err := h.Svc.ClearOrderItems(r.Context(), id)
	if err != nil {
		writeStoreErr(w, r, err)
		return
	}
	done(w, cleared)
}

// itemOf loads the item and checks it belongs to the order in the path.
func (h *OrdersHandler) itemOf(w http.ResponseWriter, r *http.Request) (*catalog.OrderItem, bool) {
	orderID, ok := idParam(w, r, "id")
	if !ok {
		return nil, false
	}
	itemID, ok := idParam(w, r, "itemID")
	if !ok {
		return nil, false
	}
	it, err := h.Svc.GetOrderItem(r.Context(), itemID)
	if err != nil {
		writeStoreErr(w, r, err)
		return nil, false
	}
	if it == nil || it.OrderID != orderID {
		writeErr(w, http.StatusNotFound, "not found")
		return nil, false
	}
	return it, true
}

// updateItem changes quantity and, when given, unit price. Without a price
// the captured unit price is kept.
func (h *OrdersHandler) updateItem(w http.ResponseWriter, r *http.Request) {
	var req updateItemReq
	if !decode(w, r, &req) {
		return
	}
	it, ok := h.itemOf(w, r)
	if !ok {
		return
	}
	if req.UnitPrice.IsNegative() {
		writeErr(w, http.StatusBadRequest, "unit_price must not be negative")
		return
	}
	it.Quantity = req.Quantity
	if !req.UnitPrice.IsZero() {
		it.UnitPrice = req.UnitPrice
	}
	updated, err := h.Svc.UpdateOrderItem(r.Context(), it)
	if err != nil {
		writeStoreErr(w, r, err)
		return
	}
	done(w, updated)
}

func (h *OrdersHandler) deleteItem(w http.ResponseWriter, r *http.Request) {
	it, ok := h.itemOf(w, r)
	if !ok {
		return
	}
	deleted, err := h.Svc.DeleteOrderItem(r.Context(), it.ID)
	if err != nil {
		writeStoreErr(w, r, err)
		return
	}
	done(w, deleted)
}
