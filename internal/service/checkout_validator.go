package service

import (
	"fmt"
	"math"

	"cashier/internal/model"

	"github.com/shopspring/decimal"
)

// Column limits: quantities are INTEGER and amounts NUMERIC(10,2).
const maxQuantity = math.MaxInt32

var maxAmount = decimal.New(1, 8)

// validateCheckoutRequest performs the structural checks of a checkout.
// It never touches storage, so a malformed request costs nothing.
func validateCheckoutRequest(req *model.CheckoutRequest, verifyTotal bool) error {
	if req == nil {
		return model.NewValidationError("request", "must not be empty")
	}

	if req.UserID <= 0 {
		return model.NewValidationError("userId", "must identify the acting user")
	}

	if len(req.Items) == 0 {
		return model.NewValidationError("items", "must contain at least one item")
	}

	combined := make(map[int64]int, len(req.Items))
	for i, item := range req.Items {
		if item.ProductID <= 0 {
			return model.NewValidationError(itemField(i, "productId"), "must be a positive id")
		}
		if item.Quantity <= 0 {
			return model.NewValidationError(itemField(i, "quantity"), "must be greater than zero")
		}
		if item.Quantity > maxQuantity {
			return model.NewValidationError(itemField(i, "quantity"), "must not exceed %d", maxQuantity)
		}
		// Both terms are at most maxQuantity, so the sum cannot overflow.
		combined[item.ProductID] += item.Quantity
		if combined[item.ProductID] > maxQuantity {
			return model.NewValidationError(itemField(i, "quantity"),
				"combined quantity for product %d must not exceed %d", item.ProductID, maxQuantity)
		}
		if err := validateAmount(itemField(i, "price"), item.Price); err != nil {
			return err
		}
	}

	if err := validateAmount("totalAmount", req.TotalAmount); err != nil {
		return err
	}

	if verifyTotal {
		if sum := lineItemsTotal(req.Items); !sum.Equal(req.TotalAmount) {
			return model.NewValidationError("totalAmount",
				"%s does not match the sum of line items %s", req.TotalAmount.StringFixed(2), sum.StringFixed(2))
		}
	}

	return nil
}

// validateAmount checks a money amount: not negative, below maxAmount, at
// most two decimals.
func validateAmount(field string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return model.NewValidationError(field, "must not be negative")
	}
	if amount.GreaterThanOrEqual(maxAmount) {
		return model.NewValidationError(field, "must be less than %s", maxAmount.String())
	}
	if !amount.Equal(amount.Round(2)) {
		return model.NewValidationError(field, "must have at most two decimal places")
	}
	return nil
}

// lineItemsTotal returns sum(price * quantity).
func lineItemsTotal(items []model.CheckoutItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

func itemField(i int, name string) string {
	return fmt.Sprintf("items[%d].%s", i, name)
}
