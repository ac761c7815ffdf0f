package model

import "time"

// ReservationStatus is the lifecycle of an ad-hoc paid reservation.
type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationCancelled ReservationStatus = "cancelled"
)

// Reservation is a single ad-hoc booking created at checkout. It is persisted
// in pending status and flipped to confirmed or cancelled by the payment
// confirmation callback.
type Reservation struct {
	ID            string            `json:"id"`
	ServiceID     string            `json:"serviceId"`
	ServiceName   string            `json:"serviceName"`
	ServicePrice  int               `json:"servicePrice"`
	Date          string            `json:"date"` // YYYY-MM-DD
	Time          string            `json:"time"` // HH:MM
	EndTime       string            `json:"endTime"`
	CustomerName  string            `json:"customerName"`
	CustomerEmail string            `json:"customerEmail"`
	CustomerPhone string            `json:"customerPhone"`
	PaymentID     string            `json:"paymentId,omitempty"`
	Status        ReservationStatus `json:"status"`
	CreatedAt     time.Time         `json:"createdAt"`
}

// ClassStatus is the lifecycle of a pack-funded scheduled class.
type ClassStatus string

const (
	ClassScheduled ClassStatus = "scheduled"
	ClassCompleted ClassStatus = "completed"
	ClassCancelled ClassStatus = "cancelled"
	ClassAbsent    ClassStatus = "absent"
)

// ScheduledClass is a booking drawn against a UserPack's class balance.
type ScheduledClass struct {
	ID            string      `json:"id"`
	UserID        string      `json:"userId"`
	UserPackID    string      `json:"userPackId"`
	Date          string      `json:"date"`
	Time          string      `json:"time"`
	EndTime       string      `json:"endTime"`
	CustomerName  string      `json:"customerName"`
	CustomerEmail string      `json:"customerEmail"`
	CustomerPhone string      `json:"customerPhone"`
	Status        ClassStatus `json:"status"`
	CreatedAt     time.Time   `json:"createdAt"`
}

// OrderSlotStatus is the per-slot state on an order-embedded service booking.
type OrderSlotStatus string

const (
	OrderSlotPending   OrderSlotStatus = "pending"
	OrderSlotCompleted OrderSlotStatus = "completed"
	OrderSlotAbsent    OrderSlotStatus = "absent"
)

// OrderSlot is a service time slot purchased as part of a product order.
// An empty status means pending.
type OrderSlot struct {
	ServiceID   string          `json:"serviceId,omitempty"`
	ServiceName string          `json:"serviceName,omitempty"`
	Date        string          `json:"date"`
	Time        string          `json:"time"`
	Status      OrderSlotStatus `json:"status,omitempty"`
}

// Occupies reports whether the slot still holds its time cell.
// Completed and absent slots free the cell.
func (s OrderSlot) Occupies() bool {
	return s.Status != OrderSlotCompleted && s.Status != OrderSlotAbsent
}

// OrderStatus is the lifecycle of a storefront order.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderCancelled OrderStatus = "cancelled"
)

// OrderItem is one line of an order.
type OrderItem struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    int    `json:"price"`
}

// Order is a storefront purchase; service items carry their own time slots.
type Order struct {
	ID            string      `json:"id"`
	Items         []OrderItem `json:"items"`
	ServiceItems  []OrderItem `json:"serviceItems"`
	SelectedSlots []OrderSlot `json:"selectedSlots"`
	Customer      Customer    `json:"customer"`
	Total         int         `json:"total"`
	Status        OrderStatus `json:"status"`
	CreatedAt     time.Time   `json:"createdAt"`
}

// Customer is the contact captured at checkout.
type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Commitment is the normalized occupancy record all three booking sources
// reduce to. Live commitments count toward the beds capacity of their
// exact (date, time) cell.
type Commitment struct {
	Time    string
	EndTime string
	Live    bool
}
