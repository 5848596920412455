package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Order struct {
	ID         string          `gorm:"primaryKey;size:36" json:"id"`
	OrgId      string          `gorm:"size:36;index:idx_orders_org" json:"org_id"`
	Status     OrderStatus     `gorm:"size:20" json:"status"`
	PlatformId *string         `gorm:"size:36" json:"platform_id"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(20,4)" json:"total_price"`
	Notes      string          `gorm:"size:1000" json:"notes"`
	Lines      []OrderLine     `gorm:"foreignKey:OrderId" json:"lines"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

type OrderLine struct {
	ID        string          `gorm:"primaryKey;size:36" json:"id"`
	OrderId   string          `gorm:"size:36;index:idx_order_lines_order" json:"order_id"`
	ProductId string          `gorm:"size:36" json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(20,4)" json:"unit_price"`
	SaleTxnId string          `gorm:"size:36" json:"sale_txn_id"`
	CreatedAt time.Time       `json:"created_at"`
}

func (l *OrderLine) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

type NewOrderLine struct {
	ProductId string          `json:"product_id" binding:"required"`
	Quantity  int             `json:"quantity" binding:"required,gt=0"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type NewOrder struct {
	PlatformId *string        `json:"platform_id"`
	Notes      string         `json:"notes"`
	Lines      []NewOrderLine `json:"lines" binding:"required,min=1,dive"`
}

type OrderUpdate struct {
	Notes      *string `json:"notes"`
	PlatformId *string `json:"platform_id"`
}

// CreateOrder records one sale per line inside a single transaction.
// Either every line's inventory moves or none does.
func CreateOrder(ctx context.Context, db *gorm.DB, orgId string, input *NewOrder) (*Order, error) {
	if len(input.Lines) == 0 {
		return nil, fmt.Errorf("order needs at least one line")
	}
	if input.PlatformId != nil {
		if _, err := GetPlatform(ctx, db, *input.PlatformId); err != nil {
			return nil, fmt.Errorf("platform: %w", err)
		}
	}

	var order Order
	err := runInTxnWithRetry(ctx, db, func(tx *gorm.DB) error {
		order = Order{
			OrgId:      orgId,
			Status:     OrderStatusCreated,
			PlatformId: input.PlatformId,
			Notes:      input.Notes,
			TotalPrice: decimal.Zero,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		for _, line := range input.Lines {
			txn, err := recordSaleTx(ctx, tx, &NewSale{
				ProductId: line.ProductId,
				Quantity:  line.Quantity,
				UnitPrice: line.UnitPrice,
				Notes:     fmt.Sprintf("order %s", order.ID),
			})
			if err != nil {
				return err
			}
			if txn.OrgId != orgId {
				return ErrCrossTenantReference
			}
			ol := OrderLine{
				OrderId:   order.ID,
				ProductId: line.ProductId,
				Quantity:  line.Quantity,
				UnitPrice: line.UnitPrice,
				SaleTxnId: txn.ID,
			}
			if err := tx.Create(&ol).Error; err != nil {
				return err
			}
			order.Lines = append(order.Lines, ol)
			order.TotalPrice = order.TotalPrice.
				Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
		}

		return tx.Model(&Order{}).Where("id = ?", order.ID).
			Update("total_price", order.TotalPrice).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func GetOrder(ctx context.Context, db *gorm.DB, orderId string) (*Order, error) {
	var order Order
	err := db.WithContext(ctx).Preload("Lines").Where("id = ?", orderId).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

func GetOrdersByOrg(ctx context.Context, db *gorm.DB, orgId string, status OrderStatus, offset, limit int) ([]*Order, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	query := db.WithContext(ctx).Preload("Lines").Where("org_id = ?", orgId)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var orders []*Order
	err := query.Order("created_at DESC, id DESC").Offset(offset).Limit(limit).Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func UpdateOrder(ctx context.Context, db *gorm.DB, orderId string, input *OrderUpdate) (*Order, error) {
	updates := map[string]interface{}{}
	if input.Notes != nil {
		updates["notes"] = *input.Notes
	}
	if input.PlatformId != nil {
		if _, err := GetPlatform(ctx, db, *input.PlatformId); err != nil {
			return nil, fmt.Errorf("platform: %w", err)
		}
		updates["platform_id"] = *input.PlatformId
	}
	if len(updates) > 0 {
		result := db.WithContext(ctx).Model(&Order{}).Where("id = ?", orderId).Updates(updates)
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 0 {
			return nil, ErrNotFound
		}
	}
	return GetOrder(ctx, db, orderId)
}

// UpdateOrderStatus advances the order along the allowed lifecycle.
// Returns are handled by ReturnOrder, not here.
func UpdateOrderStatus(ctx context.Context, db *gorm.DB, orderId string, next OrderStatus) (*Order, error) {
	if !next.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, next)
	}

	var order Order
	err := runInTxnWithRetry(ctx, db, func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).Where("id = ?", orderId).First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := order.Status.CanTransitionTo(next); err != nil {
			return err
		}
		order.Status = next
		return tx.Model(&Order{}).Where("id = ?", orderId).Update("status", next).Error
	})
	if err != nil {
		return nil, err
	}
	return GetOrder(ctx, db, orderId)
}

// ReturnOrder cancels a shipped order. When restock is set, every line's
// quantity goes back onto its product inside the same transaction as an
// adjustment; the original sale transactions stay untouched.
func ReturnOrder(ctx context.Context, db *gorm.DB, orderId string, restock bool) (*Order, error) {
	err := runInTxnWithRetry(ctx, db, func(tx *gorm.DB) error {
		var order Order
		if err := lockForUpdate(tx).Preload("Lines").Where("id = ?", orderId).First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if order.Status != OrderStatusShipped {
			return fmt.Errorf("%w: return requires status %s, have %s",
				ErrInvalidTransition, OrderStatusShipped, order.Status)
		}

		notes := appendNote(order.Notes, "returned")
		updates := map[string]interface{}{
			"status": OrderStatusCanceled,
			"notes":  notes,
		}
		if err := tx.Model(&Order{}).Where("id = ?", orderId).Updates(updates).Error; err != nil {
			return err
		}

		if !restock {
			return nil
		}
		for _, line := range order.Lines {
			var product Product
			if err := lockForUpdate(tx).Where("id = ?", line.ProductId).First(&product).Error; err != nil {
				return err
			}
			if err := tx.Model(&Product{}).Where("id = ?", product.ID).
				Update("quantity", product.Quantity+line.Quantity).Error; err != nil {
				return err
			}
			txn := ProductTransaction{
				OrgId:          order.OrgId,
				ProductId:      product.ID,
				TxnType:        ProductTxnTypeAdjustment,
				Qty:            line.Quantity,
				UnitCostAtSale: product.TotalCost,
				Notes:          fmt.Sprintf("restock from returned order %s", order.ID),
			}
			if err := tx.Create(&txn).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return GetOrder(ctx, db, orderId)
}
