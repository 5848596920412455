package models

import "fmt"

// PartTxnType classifies part-stock-changing events. qty is always the
// magnitude; the type implies the direction (purchase in, build/loss out).
type PartTxnType string

const (
	PartTxnTypeBuildProduct PartTxnType = "build_product"
	PartTxnTypeLoss         PartTxnType = "loss"
	PartTxnTypePurchase     PartTxnType = "purchase"
)

func (t PartTxnType) Valid() bool {
	switch t {
	case PartTxnTypeBuildProduct, PartTxnTypeLoss, PartTxnTypePurchase:
		return true
	}
	return false
}

// SignedDirection is the multiplier applied to qty when summing the
// ledger: purchases add stock, builds and losses consume it.
func (t PartTxnType) SignedDirection() int {
	if t == PartTxnTypePurchase {
		return 1
	}
	return -1
}

// ProductTxnType classifies product-quantity-changing events.
type ProductTxnType string

const (
	ProductTxnTypeBuildProduct ProductTxnType = "build_product"
	ProductTxnTypeAdjustment   ProductTxnType = "adjustment"
	ProductTxnTypeLoss         ProductTxnType = "loss"
	ProductTxnTypeSale         ProductTxnType = "sale"
)

func (t ProductTxnType) Valid() bool {
	switch t {
	case ProductTxnTypeBuildProduct, ProductTxnTypeAdjustment, ProductTxnTypeLoss, ProductTxnTypeSale:
		return true
	}
	return false
}

// CostType says how the purchase cost input is expressed.
type CostType string

const (
	CostTypePerUnit CostType = "per_unit"
	CostTypeTotal   CostType = "total"
)

func (t CostType) Valid() bool {
	return t == CostTypePerUnit || t == CostTypeTotal
}

type Difficulty string

const (
	DifficultyEasy      Difficulty = "easy"
	DifficultyMedium    Difficulty = "medium"
	DifficultyDifficult Difficulty = "difficult"
	DifficultyNA        Difficulty = "NA"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyDifficult, DifficultyNA:
		return true
	}
	return false
}

type OrderStatus string

const (
	OrderStatusCreated   OrderStatus = "created"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusClosed    OrderStatus = "closed"
	OrderStatusCanceled  OrderStatus = "canceled"
)

// orderTransitions is the full transition table. canceled is reachable
// from every non-closed state; closed and canceled are terminal.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusCreated:   {OrderStatusCompleted, OrderStatusCanceled},
	OrderStatusCompleted: {OrderStatusShipped, OrderStatusCanceled},
	OrderStatusShipped:   {OrderStatusClosed, OrderStatusCanceled},
	OrderStatusClosed:    {},
	OrderStatusCanceled:  {},
}

func (s OrderStatus) Valid() bool {
	_, ok := orderTransitions[s]
	return ok
}

// CanTransitionTo validates a status change against the transition table.
func (s OrderStatus) CanTransitionTo(next OrderStatus) error {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s, next)
}

type MembershipRole string

const (
	MembershipRoleOwner  MembershipRole = "owner"
	MembershipRoleAdmin  MembershipRole = "admin"
	MembershipRoleStaff  MembershipRole = "staff"
	MembershipRoleViewer MembershipRole = "viewer"
)

func (r MembershipRole) Valid() bool {
	switch r {
	case MembershipRoleOwner, MembershipRoleAdmin, MembershipRoleStaff, MembershipRoleViewer:
		return true
	}
	return false
}
