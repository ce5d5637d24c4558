package service

import (
	"sort"

	"cashier/internal/model"
)

// stockReservation is the total quantity a checkout takes from one product.
type stockReservation struct {
	ProductID int64
	Quantity  int
}

// planReservations merges line items per product and orders them by
// ascending product id. Every checkout locks product rows in the same
// order, so two checkouts can block each other but never deadlock.
// items must already have passed validateCheckoutRequest, which bounds
// every merged quantity.
func planReservations(items []model.CheckoutItem) []stockReservation {
	totals := make(map[int64]int, len(items))
	for _, item := range items {
		totals[item.ProductID] += item.Quantity
	}

	plan := make([]stockReservation, 0, len(totals))
	for id, qty := range totals {
		plan = append(plan, stockReservation{ProductID: id, Quantity: qty})
	}

	sort.Slice(plan, func(i, j int) bool {
		return plan[i].ProductID < plan[j].ProductID
	})

	return plan
}
