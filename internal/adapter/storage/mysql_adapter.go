package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Xelaphir/shawa/internal/core/domain"
)

type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

// --- LedgerRepository ---

func (m *MySQLAdapter) CreditComponent(ctx context.Context, customerID, componentID int64, qty int) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO component_ownership (customer_id, component_id, quantity)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE quantity = quantity + VALUES(quantity)`,
		customerID, componentID, qty,
	)
	if err != nil {
		return fmt.Errorf("credit component: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) DebitComponent(ctx context.Context, customerID, componentID int64, qty int) error {
	result, err := m.db.ExecContext(ctx, `
		UPDATE component_ownership
		SET quantity = quantity - ?
		WHERE customer_id = ? AND component_id = ? AND quantity >= ?`,
		qty, customerID, componentID, qty,
	)
	if err != nil {
		return fmt.Errorf("debit component: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrInsufficientQuantity
	}
	return nil
}

func (m *MySQLAdapter) ComponentQuantity(ctx context.Context, customerID, componentID int64) (int, error) {
	var qty int
	err := m.db.QueryRowContext(ctx, `
		SELECT quantity FROM component_ownership
		WHERE customer_id = ? AND component_id = ?`,
		customerID, componentID,
	).Scan(&qty)

	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("query component quantity: %w", err)
	}
	return qty, nil
}

func (m *MySQLAdapter) ComponentQuantities(ctx context.Context, customerID int64) (map[int64]int, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT component_id, quantity FROM component_ownership
		WHERE customer_id = ? AND quantity > 0`,
		customerID,
	)
	if err != nil {
		return nil, fmt.Errorf("query ownership: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]int)
	for rows.Next() {
		var componentID int64
		var qty int
		if err := rows.Scan(&componentID, &qty); err != nil {
			return nil, fmt.Errorf("scan ownership row: %w", err)
		}
		out[componentID] = qty
	}
	return out, rows.Err()
}

func (m *MySQLAdapter) EnsureVoucherRows(ctx context.Context, customerID int64, rarities []domain.Rarity) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	// INSERT IGNORE on the (customer_id, rarity) unique key makes
	// concurrent materialization a no-op instead of a duplicate.
	for _, rarity := range rarities {
		_, err := tx.ExecContext(ctx, `
			INSERT IGNORE INTO discount_ownership (customer_id, rarity, quantity)
			VALUES (?, ?, 0)`,
			customerID, rarity,
		)
		if err != nil {
			return fmt.Errorf("materialize voucher row rarity %d: %w", rarity, err)
		}
	}
	return tx.Commit()
}

func (m *MySQLAdapter) VoucherQuantities(ctx context.Context, customerID int64) (map[domain.Rarity]int, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT rarity, quantity FROM discount_ownership
		WHERE customer_id = ?`,
		customerID,
	)
	if err != nil {
		return nil, fmt.Errorf("query vouchers: %w", err)
	}
	defer rows.Close()

	out := make(map[domain.Rarity]int)
	for rows.Next() {
		var rarity domain.Rarity
		var qty int
		if err := rows.Scan(&rarity, &qty); err != nil {
			return nil, fmt.Errorf("scan voucher row: %w", err)
		}
		out[rarity] = qty
	}
	return out, rows.Err()
}

func (m *MySQLAdapter) CreditVoucher(ctx context.Context, customerID int64, rarity domain.Rarity, qty int) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO discount_ownership (customer_id, rarity, quantity)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE quantity = quantity + VALUES(quantity)`,
		customerID, rarity, qty,
	)
	if err != nil {
		return fmt.Errorf("credit voucher: %w", err)
	}
	return nil
}

// --- LotRepository ---

func (m *MySQLAdapter) CreateLot(ctx context.Context, lot domain.Lot) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, item := range lot.Items {
		// Lock the ownership row so two concurrent listings of the same
		// component serialize on the availability check.
		var owned int
		err := tx.QueryRowContext(ctx, `
			SELECT quantity FROM component_ownership
			WHERE customer_id = ? AND component_id = ?
			FOR UPDATE`,
			lot.SellerID, item.ComponentID,
		).Scan(&owned)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrInsufficientQuantity
		}
		if err != nil {
			return fmt.Errorf("lock ownership row: %w", err)
		}

		var reserved int
		err = tx.QueryRowContext(ctx, `
			SELECT COALESCE(SUM(li.quantity), 0)
			FROM lot_items li
			JOIN lots l ON l.id = li.lot_id
			WHERE l.seller_id = ? AND l.status = 'open' AND li.component_id = ?`,
			lot.SellerID, item.ComponentID,
		).Scan(&reserved)
		if err != nil {
			return fmt.Errorf("sum open reservations: %w", err)
		}

		if owned-reserved < item.Quantity {
			return domain.ErrInsufficientQuantity
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO lots (id, seller_id, price, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		lot.ID, lot.SellerID, lot.Price, lot.Status, lot.CreatedAt, lot.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert lot: %w", err)
	}
	for _, item := range lot.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO lot_items (lot_id, component_id, quantity)
			VALUES (?, ?, ?)`,
			lot.ID, item.ComponentID, item.Quantity,
		)
		if err != nil {
			return fmt.Errorf("insert lot item: %w", err)
		}
	}
	return tx.Commit()
}

func (m *MySQLAdapter) GetLot(ctx context.Context, lotID string) (*domain.Lot, error) {
	lot, err := scanLot(m.db.QueryRowContext(ctx, `
		SELECT id, seller_id, purchaser_id, price, status, created_at, updated_at
		FROM lots WHERE id = ?`, lotID,
	))
	if err != nil {
		return nil, err
	}
	if lot == nil {
		return nil, nil
	}

	rows, err := m.db.QueryContext(ctx, `
		SELECT component_id, quantity FROM lot_items WHERE lot_id = ?`, lotID)
	if err != nil {
		return nil, fmt.Errorf("query lot items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var item domain.LotItem
		if err := rows.Scan(&item.ComponentID, &item.Quantity); err != nil {
			return nil, fmt.Errorf("scan lot item: %w", err)
		}
		lot.Items = append(lot.Items, item)
	}
	return lot, rows.Err()
}

func (m *MySQLAdapter) OpenLots(ctx context.Context) ([]domain.Lot, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, seller_id, purchaser_id, price, status, created_at, updated_at
		FROM lots WHERE status = 'open'`)
	if err != nil {
		return nil, fmt.Errorf("query open lots: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]*domain.Lot)
	var order []string
	for rows.Next() {
		lot, err := scanLotRows(rows)
		if err != nil {
			return nil, err
		}
		byID[lot.ID] = lot
		order = append(order, lot.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(order) == 0 {
		return nil, nil
	}

	itemRows, err := m.db.QueryContext(ctx, `
		SELECT li.lot_id, li.component_id, li.quantity
		FROM lot_items li
		JOIN lots l ON l.id = li.lot_id
		WHERE l.status = 'open'`)
	if err != nil {
		return nil, fmt.Errorf("query open lot items: %w", err)
	}
	defer itemRows.Close()
	for itemRows.Next() {
		var lotID string
		var item domain.LotItem
		if err := itemRows.Scan(&lotID, &item.ComponentID, &item.Quantity); err != nil {
			return nil, fmt.Errorf("scan lot item: %w", err)
		}
		if lot, ok := byID[lotID]; ok {
			lot.Items = append(lot.Items, item)
		}
	}
	if err := itemRows.Err(); err != nil {
		return nil, err
	}

	out := make([]domain.Lot, 0, len(order))
	for _, id := range order {
		out = append(out, *byID[id])
	}
	return out, nil
}

func (m *MySQLAdapter) PurchaseLot(ctx context.Context, lotID string, purchaserID int64) (*domain.Lot, error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	lot, err := scanLot(tx.QueryRowContext(ctx, `
		SELECT id, seller_id, purchaser_id, price, status, created_at, updated_at
		FROM lots WHERE id = ?
		FOR UPDATE`, lotID,
	))
	if err != nil {
		return nil, err
	}
	if lot == nil {
		return nil, domain.ErrNotFound
	}
	if lot.Status != domain.LotStatusOpen {
		return nil, domain.ErrLotNotOpen
	}
	if lot.SellerID == purchaserID {
		return nil, domain.ErrSelfPurchase
	}

	itemRows, err := tx.QueryContext(ctx, `
		SELECT component_id, quantity FROM lot_items WHERE lot_id = ?`, lotID)
	if err != nil {
		return nil, fmt.Errorf("query lot items: %w", err)
	}
	for itemRows.Next() {
		var item domain.LotItem
		if err := itemRows.Scan(&item.ComponentID, &item.Quantity); err != nil {
			itemRows.Close()
			return nil, fmt.Errorf("scan lot item: %w", err)
		}
		lot.Items = append(lot.Items, item)
	}
	if err := itemRows.Err(); err != nil {
		itemRows.Close()
		return nil, err
	}
	itemRows.Close()

	for _, item := range lot.Items {
		// The listing invariant guarantees the seller still owns the
		// reserved quantity; a zero-row update here is corrupted state.
		result, err := tx.ExecContext(ctx, `
			UPDATE component_ownership
			SET quantity = quantity - ?
			WHERE customer_id = ? AND component_id = ? AND quantity >= ?`,
			item.Quantity, lot.SellerID, item.ComponentID, item.Quantity,
		)
		if err != nil {
			return nil, fmt.Errorf("debit seller: %w", err)
		}
		if rows, _ := result.RowsAffected(); rows == 0 {
			return nil, domain.ErrReservationViolation
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO component_ownership (customer_id, component_id, quantity)
			VALUES (?, ?, ?)
			ON DUPLICATE KEY UPDATE quantity = quantity + VALUES(quantity)`,
			purchaserID, item.ComponentID, item.Quantity,
		)
		if err != nil {
			return nil, fmt.Errorf("credit purchaser: %w", err)
		}
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE lots
		SET status = 'sold', purchaser_id = ?, updated_at = NOW()
		WHERE id = ? AND status = 'open'`,
		purchaserID, lotID,
	)
	if err != nil {
		return nil, fmt.Errorf("mark lot sold: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return nil, domain.ErrLotNotOpen
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit purchase: %w", err)
	}
	lot.Status = domain.LotStatusSold
	lot.PurchaserID = &purchaserID
	return lot, nil
}

func (m *MySQLAdapter) CancelLot(ctx context.Context, lotID string, requesterID int64) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var sellerID int64
	var status domain.LotStatus
	err = tx.QueryRowContext(ctx, `
		SELECT seller_id, status FROM lots WHERE id = ? FOR UPDATE`, lotID,
	).Scan(&sellerID, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("lock lot: %w", err)
	}
	if sellerID != requesterID {
		return domain.ErrNotSeller
	}
	if status != domain.LotStatusOpen {
		return domain.ErrLotNotOpen
	}

	// Cancelling only flips status; the reservation stops counting against
	// availability because the lot is no longer open.
	_, err = tx.ExecContext(ctx, `
		UPDATE lots SET status = 'cancelled', updated_at = NOW() WHERE id = ?`, lotID)
	if err != nil {
		return fmt.Errorf("mark lot cancelled: %w", err)
	}
	return tx.Commit()
}

// --- OrderRepository ---

func (m *MySQLAdapter) CreateOrder(ctx context.Context, order domain.Order, consumeRarity *domain.Rarity) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if consumeRarity != nil {
		result, err := tx.ExecContext(ctx, `
			UPDATE discount_ownership
			SET quantity = quantity - 1
			WHERE customer_id = ? AND rarity = ? AND quantity >= 1`,
			order.CustomerID, *consumeRarity,
		)
		if err != nil {
			return fmt.Errorf("consume voucher: %w", err)
		}
		if rows, _ := result.RowsAffected(); rows == 0 {
			return domain.ErrNoVoucherAvailable
		}
	}

	var discountRarity sql.NullInt64
	if order.DiscountRarity != nil {
		discountRarity = sql.NullInt64{Int64: int64(*order.DiscountRarity), Valid: true}
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, customer_id, price, discount_rarity, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		order.ID, order.CustomerID, order.Price, discountRarity, order.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	for _, item := range order.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, recipe_id, quantity)
			VALUES (?, ?, ?)`,
			order.ID, item.RecipeID, item.Quantity,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	return tx.Commit()
}

// --- scan helpers ---

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLotFrom(s rowScanner) (*domain.Lot, error) {
	var lot domain.Lot
	var purchaser sql.NullInt64
	err := s.Scan(&lot.ID, &lot.SellerID, &purchaser, &lot.Price, &lot.Status, &lot.CreatedAt, &lot.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if purchaser.Valid {
		lot.PurchaserID = &purchaser.Int64
	}
	return &lot, nil
}

func scanLot(row *sql.Row) (*domain.Lot, error) {
	lot, err := scanLotFrom(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan lot: %w", err)
	}
	return lot, nil
}

func scanLotRows(rows *sql.Rows) (*domain.Lot, error) {
	lot, err := scanLotFrom(rows)
	if err != nil {
		return nil, fmt.Errorf("scan lot: %w", err)
	}
	return lot, nil
}
