package catalog

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// OrderStatus is persisted as its integer value.
type OrderStatus int

const (
	StatusPending OrderStatus = iota
	StatusProcessing
	StatusShipped
	StatusDelivered
	StatusCancelled
)

var statusNames = [...]string{"Pending", "Processing", "Shipped", "Delivered", "Cancelled"}

func (s OrderStatus) Valid() bool { return s >= StatusPending && s <= StatusCancelled }

func (s OrderStatus) String() string {
	if !s.Valid() {
		return "OrderStatus(" + strconv.Itoa(int(s)) + ")"
	}
	return statusNames[s]
}

// ParseOrderStatus accepts a status name (any case) or its integer value.
func ParseOrderStatus(s string) (OrderStatus, error) {
	s = strings.TrimSpace(s)
	for i, name := range statusNames {
		if strings.EqualFold(s, name) {
			return OrderStatus(i), nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil && OrderStatus(n).Valid() {
		return OrderStatus(n), nil
	}
	return 0, fmt.Errorf("unknown order status %q", s)
}

func (s OrderStatus) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("unknown order status %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *OrderStatus) UnmarshalText(b []byte) error {
	v, err := ParseOrderStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// UnmarshalJSON takes either the name ("Shipped") or the number (2).
func (s *OrderStatus) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 1 && b[0] == '"' {
		v, err := strconv.Unquote(string(b))
		if err != nil {
			return err
		}
		return s.UnmarshalText([]byte(v))
	}
	return s.UnmarshalText(b)
}
