package domain

import (
	"fmt"
	"strings"
)

// OrderStatus is the lifecycle state of an order
type OrderStatus string

const (
	StatusPreparing OrderStatus = "Preparing"
	StatusReady     OrderStatus = "Ready"
	StatusDelivered OrderStatus = "Delivered"
)

// legacyStatuses maps literals written by earlier app builds to canonical statuses.
var legacyStatuses = map[string]OrderStatus{
	"preparing the order":  StatusPreparing,
	"collect your order":   StatusReady,
	"ready for collection": StatusReady,
	"order delivered":      StatusDelivered,
}

// statusRank orders statuses along the only allowed direction of travel.
var statusRank = map[OrderStatus]int{
	StatusPreparing: 0,
	StatusReady:     1,
	StatusDelivered: 2,
}

// ParseOrderStatus converts a canonical or legacy status literal into an OrderStatus.
func ParseOrderStatus(s string) (OrderStatus, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for status := range statusRank {
		if strings.ToLower(string(status)) == key {
			return status, nil
		}
	}

	if status, ok := legacyStatuses[key]; ok {
		return status, nil
	}

	return "", fmt.Errorf("unknown order status %q", s)
}

// NormalizeOrderStatus returns the canonical form of s, or s unchanged when it is not recognised.
func NormalizeOrderStatus(s string) OrderStatus {
	status, err := ParseOrderStatus(s)
	if err != nil {
		return OrderStatus(s)
	}
	return status
}

// Valid reports whether s is a canonical status
func (s OrderStatus) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// Terminal reports whether no further transition is possible
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered
}

// CanTransition reports whether an order may move from one status to another.
// Orders only move forward; staying in the same status is allowed.
func CanTransition(from, to OrderStatus) bool {
	fromRank, ok := statusRank[from]
	if !ok {
		// unknown stored status: accept any canonical target so the order can be repaired
		return to.Valid()
	}

	toRank, ok := statusRank[to]
	if !ok {
		return false
	}

	return toRank >= fromRank
}

// Aliases returns the lower-cased literals that are stored for s, canonical name first.
func (s OrderStatus) Aliases() []string {
	aliases := []string{strings.ToLower(string(s))}
	for literal, status := range legacyStatuses {
		if status == s {
			aliases = append(aliases, literal)
		}
	}
	return aliases
}
