package tests

import (
	"context"
	"database/sql"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"

	"github.com/Xelaphir/shawa/internal/adapter/storage"
	"github.com/Xelaphir/shawa/internal/core/domain"
	"github.com/Xelaphir/shawa/internal/core/service"
)

// End-to-end flow against real MySQL (scripts/schema.sql applied) and
// Redis. Catalog rows and customers in the 920000 range belong to this
// suite.

type testEnv struct {
	mysql    *sql.DB
	redis    *redis.Client
	store    *storage.MySQLAdapter
	cache    *storage.RedisAdapter
	drafts   *service.DraftService
	ledger   *service.LedgerService
	exchange *service.ExchangeService
	orders   *service.OrderService
	cleanup  func()
}

func setupTestEnv(t *testing.T) *testEnv {
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	mysqlDSN := os.Getenv("MYSQL_DSN")
	if mysqlDSN == "" {
		mysqlDSN = "root:root@tcp(localhost:3306)/shawa?parseTime=true"
	}

	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	db, err := sql.Open("mysql", mysqlDSN)
	if err != nil {
		t.Skipf("MySQL not available: %v", err)
	}
	if err := db.Ping(); err != nil {
		t.Skipf("MySQL not available: %v", err)
	}

	store := storage.NewMySQLAdapter(db)
	cache := storage.NewRedisAdapter(rdb, time.Minute)

	env := &testEnv{
		mysql:    db,
		redis:    rdb,
		store:    store,
		cache:    cache,
		drafts:   service.NewDraftService(store, store),
		ledger:   service.NewLedgerService(store, store, cache),
		exchange: service.NewExchangeService(store, store, store, cache, 100),
		orders:   service.NewOrderService(store, store),
		cleanup: func() {
			rdb.Close()
			db.Close()
		},
	}
	env.seedCatalog(t)
	return env
}

func (e *testEnv) seedCatalog(t *testing.T) {
	ctx := context.Background()
	if _, err := e.mysql.ExecContext(ctx, `
		INSERT IGNORE INTO component_types (id, name) VALUES (920001, 'topping')`); err != nil {
		t.Fatalf("seed type: %v", err)
	}

	// One drawable component per roulette tier.
	for i, rarity := range domain.DrawableRarities() {
		id := int64(920011 + i)
		if _, err := e.mysql.ExecContext(ctx, `
			INSERT INTO components (id, type_id, rarity, is_common, cost, min_qty, max_qty, qty_step, name)
			VALUES (?, 920001, ?, FALSE, 10, 10, 100, 10, 'itest-comp')
			ON DUPLICATE KEY UPDATE rarity = VALUES(rarity), is_common = FALSE`, id, rarity); err != nil {
			t.Fatalf("seed component: %v", err)
		}
	}

	if _, err := e.mysql.ExecContext(ctx, `
		INSERT INTO discounts (rarity, percents) VALUES (?, 20)
		ON DUPLICATE KEY UPDATE percents = 20`, domain.RarityEspecial); err != nil {
		t.Fatalf("seed discount: %v", err)
	}

	for _, recipe := range []struct {
		id    int64
		price int64
	}{{920001, 300}, {920002, 450}} {
		if _, err := e.mysql.ExecContext(ctx, `
			INSERT INTO recipes (id, author_id, name, price, is_private, rating)
			VALUES (?, 920001, 'itest-recipe', ?, FALSE, 0)
			ON DUPLICATE KEY UPDATE price = VALUES(price)`, recipe.id, recipe.price); err != nil {
			t.Fatalf("seed recipe: %v", err)
		}
	}
}

func (e *testEnv) wipeCustomer(t *testing.T, customerID int64) {
	ctx := context.Background()
	for _, stmt := range []string{
		`DELETE li FROM lot_items li JOIN lots l ON l.id = li.lot_id WHERE l.seller_id = ?`,
		`DELETE FROM lots WHERE seller_id = ?`,
		`DELETE FROM component_ownership WHERE customer_id = ?`,
		`DELETE FROM discount_ownership WHERE customer_id = ?`,
		`DELETE oi FROM order_items oi JOIN orders o ON o.id = oi.order_id WHERE o.customer_id = ?`,
		`DELETE FROM orders WHERE customer_id = ?`,
	} {
		if _, err := e.mysql.ExecContext(ctx, stmt, customerID); err != nil {
			t.Fatalf("cleanup failed: %v", err)
		}
	}
	e.cache.InvalidateOwnership(ctx, customerID)
}

func TestTradeAndDiscountFlow(t *testing.T) {
	env := setupTestEnv(t)
	defer env.cleanup()
	defer env.exchange.Close()
	ctx := context.Background()

	const sellerID = 920101
	const buyerID = 920102
	env.wipeCustomer(t, sellerID)
	env.wipeCustomer(t, buyerID)

	// Seller acquires 5 units of the especial component.
	const componentID = 920014 // rarity especial per seeding order
	if err := env.store.CreditComponent(ctx, sellerID, componentID, 5); err != nil {
		t.Fatalf("credit failed: %v", err)
	}

	// List all 5, then fail to list a 6th.
	lot, err := env.exchange.ListLot(ctx, sellerID, 100, []domain.LotItem{{ComponentID: componentID, Quantity: 5}})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if _, err := env.exchange.ListLot(ctx, sellerID, 100, []domain.LotItem{{ComponentID: componentID, Quantity: 1}}); err == nil {
		t.Fatal("expected second listing to fail")
	}

	// Buyer purchases; ownership transfers.
	if _, err := env.exchange.Purchase(ctx, lot.ID, buyerID); err != nil {
		t.Fatalf("purchase failed: %v", err)
	}
	event := <-env.exchange.TradeEvents()
	if err := env.exchange.SettleTrade(ctx, event); err != nil {
		t.Fatalf("settle failed: %v", err)
	}

	owned, err := env.ledger.OwnershipOf(ctx, buyerID)
	if err != nil {
		t.Fatalf("ownership query failed: %v", err)
	}
	if owned[componentID] != 5 {
		t.Errorf("expected buyer to own 5, got %d", owned[componentID])
	}

	// The sale earned the seller one especial voucher.
	vouchers, err := env.ledger.VouchersOf(ctx, sellerID)
	if err != nil {
		t.Fatalf("voucher query failed: %v", err)
	}
	if vouchers[domain.RarityEspecial] != 1 {
		t.Fatalf("expected 1 especial voucher, got %d", vouchers[domain.RarityEspecial])
	}

	// Spend it: 300 + 450 at 20 percent off, floored.
	rarity := domain.RarityEspecial
	order, err := env.orders.PriceOrder(ctx, sellerID, map[int64]int{920001: 1, 920002: 1}, &rarity)
	if err != nil {
		t.Fatalf("price order failed: %v", err)
	}
	if order.Price != 600 {
		t.Errorf("expected final price 600, got %d", order.Price)
	}

	vouchers, _ = env.ledger.VouchersOf(ctx, sellerID)
	if vouchers[domain.RarityEspecial] != 0 {
		t.Errorf("expected voucher consumed, got %d", vouchers[domain.RarityEspecial])
	}

	// And a second discounted order has nothing left to consume.
	if _, err := env.orders.PriceOrder(ctx, sellerID, map[int64]int{920001: 1}, &rarity); err == nil {
		t.Error("expected second discounted order to fail")
	}
}

func TestConcurrentDrafts(t *testing.T) {
	env := setupTestEnv(t)
	defer env.cleanup()
	defer env.exchange.Close()
	ctx := context.Background()

	const customerID = 920103
	env.wipeCustomer(t, customerID)

	const totalDrafts = 30
	var successes atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < totalDrafts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := env.drafts.Draft(ctx, customerID); err != nil {
				t.Errorf("draft failed: %v", err)
				return
			}
			successes.Add(1)
		}()
	}
	wg.Wait()

	if successes.Load() != totalDrafts {
		t.Fatalf("expected %d successful drafts, got %d", totalDrafts, successes.Load())
	}

	quantities, err := env.store.ComponentQuantities(ctx, customerID)
	if err != nil {
		t.Fatalf("ownership query failed: %v", err)
	}
	total := 0
	for _, qty := range quantities {
		total += qty
	}
	if total != totalDrafts {
		t.Errorf("expected %d total credits, got %d", totalDrafts, total)
	}
}
