package domain

import (
	"errors"
	"time"
)

// Order is the canonical in-flight delivery order entity.
type Order struct {
	ID                 string      `json:"id"`
	OrderNumber        string      `json:"orderNumber"`
	CustomerName       string      `json:"customerName"`
	Address            *Address    `json:"address"`
	Status             Status      `json:"status"`
	OrderDate          time.Time   `json:"orderDate"`
	DeliveryTime       *time.Time  `json:"deliveryTime"`
	TravelTime         *int        `json:"travelTime"`
	IsManualTravelTime bool        `json:"isManualTravelTime"`
	DispatchTime       *time.Time  `json:"dispatchTime"`
	Driver             *Driver     `json:"driver"`
	IsDispatched       bool        `json:"isDispatched"`
	Note               string      `json:"note,omitempty"`
	Items              []OrderItem `json:"items"`
}

// Driver is referenced by orders but owned by the roster, not by this subsystem.
type Driver struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Product identifies the catalog entry behind a line item.
type Product struct {
	Name string  `json:"name"`
	SKU  *string `json:"sku"`
}

// OrderItem is one line of an order.
type OrderItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// OrderUpdate is a partial order: nil fields are left untouched by Merge,
// non-nil fields overwrite. DispatchTime is deliberately absent here, it
// is always derived and never set independently.
type OrderUpdate struct {
	OrderNumber        *string     `json:"orderNumber,omitempty"`
	CustomerName       *string     `json:"customerName,omitempty"`
	Address            *Address    `json:"address,omitempty"`
	Status             *Status     `json:"status,omitempty"`
	DeliveryTime       *time.Time  `json:"deliveryTime,omitempty"`
	TravelTime         *int        `json:"travelTime,omitempty"`
	IsManualTravelTime *bool       `json:"isManualTravelTime,omitempty"`
	Driver             *Driver     `json:"driver,omitempty"`
	IsDispatched       *bool       `json:"isDispatched,omitempty"`
	Note               *string     `json:"note,omitempty"`
	Items              []OrderItem `json:"items,omitempty"`
}

// Merge applies the present fields of the update onto the order and
// recomputes the dispatch time from the post-merge delivery and travel
// times, so the derived field can never go stale.
func (o *Order) Merge(u OrderUpdate) {
	if u.OrderNumber != nil {
		o.OrderNumber = *u.OrderNumber
	}
	if u.CustomerName != nil {
		o.CustomerName = *u.CustomerName
	}
	if u.Address != nil {
		addr := *u.Address
		o.Address = &addr
	}
	if u.Status != nil {
		o.Status = *u.Status
	}
	if u.DeliveryTime != nil {
		t := *u.DeliveryTime
		o.DeliveryTime = &t
	}
	if u.TravelTime != nil {
		m := *u.TravelTime
		o.TravelTime = &m
	}
	if u.IsManualTravelTime != nil {
		o.IsManualTravelTime = *u.IsManualTravelTime
	}
	if u.Driver != nil {
		d := *u.Driver
		o.Driver = &d
	}
	if u.IsDispatched != nil {
		o.IsDispatched = *u.IsDispatched
	}
	if u.Note != nil {
		o.Note = *u.Note
	}
	if u.Items != nil {
		o.Items = append([]OrderItem(nil), u.Items...)
	}

	o.DispatchTime = ComputeDispatchTime(o.DeliveryTime, o.TravelTime)
}

// Clone returns a deep copy safe for concurrent reads.
func (o *Order) Clone() *Order {
	c := *o
	if o.Address != nil {
		addr := *o.Address
		c.Address = &addr
	}
	if o.DeliveryTime != nil {
		t := *o.DeliveryTime
		c.DeliveryTime = &t
	}
	if o.TravelTime != nil {
		m := *o.TravelTime
		c.TravelTime = &m
	}
	if o.DispatchTime != nil {
		t := *o.DispatchTime
		c.DispatchTime = &t
	}
	if o.Driver != nil {
		d := *o.Driver
		c.Driver = &d
	}
	c.Items = append([]OrderItem(nil), o.Items...)
	return &c
}

var ErrOrderNotFound = errors.New("order not found")
