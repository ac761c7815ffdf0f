package model

import "time"

// PackStatus is the lifecycle of a purchased class pack.
type PackStatus string

const (
	PackActive    PackStatus = "active"
	PackExpired   PackStatus = "expired"
	PackExhausted PackStatus = "exhausted"
)

// UserPack is a prepaid bundle of classes owned by one user and drawn down
// by scheduling. Status transitions are evaluated lazily at read time; the
// persisted status is a cache of DeriveStatus, not a source of truth.
type UserPack struct {
	ID               string     `json:"id"`
	PackID           string     `json:"packId"`
	PackName         string     `json:"packName"`
	UserID           string     `json:"userId"`
	ClassesRemaining int        `json:"classesRemaining"`
	ClassesUsed      int        `json:"classesUsed"`
	ExpiresAt        time.Time  `json:"expiresAt"`
	PurchasedAt      time.Time  `json:"purchasedAt"`
	PaymentID        string     `json:"paymentId,omitempty"`
	Status           PackStatus `json:"status"`
}

// DeriveStatus computes the pack status at a given instant. Expiry takes
// precedence over exhaustion.
func (p UserPack) DeriveStatus(now time.Time) PackStatus {
	if now.After(p.ExpiresAt) {
		return PackExpired
	}
	if p.ClassesRemaining <= 0 {
		return PackExhausted
	}
	return PackActive
}

// NewUserPack creates an active pack from the catalog definition.
func NewUserPack(id, userID string, cfg PackConfig, now time.Time) *UserPack {
	return &UserPack{
		ID:               id,
		PackID:           cfg.ID,
		PackName:         cfg.Name,
		UserID:           userID,
		ClassesRemaining: cfg.ClassCount,
		ExpiresAt:        now.AddDate(0, 0, cfg.ValidityDays),
		PurchasedAt:      now,
		Status:           PackActive,
	}
}
