package catalog

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventCategoryDeactivated    = "CategoryDeactivated"
	EventOrderCreated           = "OrderCreated"
	EventOrderStatusChanged     = "OrderStatusChanged"
	EventOrderDeleted           = "OrderDeleted"
	EventOrderTotalRecalculated = "OrderTotalRecalculated"
)

const EventVersion = 1

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"` // aggregate id
	Payload       json.RawMessage `json:"payload"`
}

type CategoryDeactivatedPayload struct {
	CategoryID int64 `json:"category_id"`
}

type OrderLine struct {
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type OrderCreatedPayload struct {
	OrderID      int64           `json:"order_id"`
	CustomerName string          `json:"customer_name"`
	Items        []OrderLine     `json:"items"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	// Skipped lists requested products that did not exist.
	Skipped []int64 `json:"skipped,omitempty"`
}

type OrderStatusChangedPayload struct {
	OrderID int64       `json:"order_id"`
	Status  OrderStatus `json:"status"`
}

type OrderDeletedPayload struct {
	OrderID int64 `json:"order_id"`
}

type OrderTotalRecalculatedPayload struct {
	OrderID     int64           `json:"order_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Reason      string          `json:"reason"` // item_updated | item_deleted | items_cleared
}
