//go:build integration
// +build integration

package repository

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/handmade-market/internal/constants"
	"github.com/handmade-market/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupPostgresIntegrationDB 初始化 PostgreSQL 集成测试数据库。
func setupPostgresIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("skip postgres integration test: TEST_POSTGRES_DSN is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open postgres failed: %v", err)
	}

	cleanupModels := []interface{}{
		&models.StatusChange{},
		&models.Payment{},
		&models.OrderDetail{},
		&models.Order{},
		&models.CancelReason{},
		&models.ProductVariation{},
	}
	_ = db.Migrator().DropTable(cleanupModels...)

	if err := db.AutoMigrate(
		&models.ProductVariation{},
		&models.CancelReason{},
		&models.Order{},
		&models.OrderDetail{},
		&models.StatusChange{},
		&models.Payment{},
	); err != nil {
		t.Fatalf("migrate postgres models failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Migrator().DropTable(cleanupModels...)
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

func TestPostgresConcurrentTransitionSingleWinner(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	order := createRepoTestOrder(t, db, "PG-RACE-1")
	uow := NewUnitOfWork(db, 5*time.Second)

	const workers = 8
	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := uow.Transaction(context.Background(), func(repos Repos) error {
				current, err := repos.Orders.GetByIDForUpdate(order.ID)
				if err != nil {
					return err
				}
				if current.Status != constants.OrderStatusPending {
					return nil
				}
				affected, err := repos.Orders.UpdateStatusIfCurrent(order.ID, constants.OrderStatusPending, constants.OrderStatusProcessing, nil)
				if err != nil {
					return err
				}
				if affected == 1 {
					wins.Add(1)
				}
				return nil
			})
			if err != nil {
				t.Errorf("transition tx failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if wins.Load() != 1 {
		t.Fatalf("want exactly one winning transition, got %d", wins.Load())
	}
	stored, err := NewOrderRepository(db).GetByID(order.ID)
	if err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if stored.Status != constants.OrderStatusProcessing {
		t.Fatalf("want processing got %s", stored.Status)
	}
}

func TestPostgresConcurrentReserveNeverOversells(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	repo := NewProductVariationRepository(db)
	variation := &models.ProductVariation{
		ProductID:  1,
		Name:       "Raku bowl",
		Price:      models.MustMoney("45.00"),
		StockTotal: 5,
		IsActive:   true,
	}
	if err := repo.Create(variation); err != nil {
		t.Fatalf("create variation failed: %v", err)
	}

	const workers = 12
	var reserved atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			affected, err := repo.ReserveStock(variation.ID, 1)
			if err != nil {
				t.Errorf("reserve failed: %v", err)
				return
			}
			if affected == 1 {
				reserved.Add(1)
			}
		}()
	}
	wg.Wait()

	if reserved.Load() != 5 {
		t.Fatalf("want 5 reservations got %d", reserved.Load())
	}
	stored, err := repo.GetByID(variation.ID)
	if err != nil {
		t.Fatalf("reload variation failed: %v", err)
	}
	if stored.Available() != 0 || stored.StockLocked != 5 {
		t.Fatalf("unexpected stock: locked=%d available=%d", stored.StockLocked, stored.Available())
	}
}

func TestPostgresUnitOfWorkRollback(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	order := createRepoTestOrder(t, db, "PG-ROLLBACK-1")
	uow := NewUnitOfWork(db, 5*time.Second)

	boom := errors.New("boom")
	err := uow.Transaction(context.Background(), func(repos Repos) error {
		if _, err := repos.Orders.UpdateStatusIfCurrent(order.ID, constants.OrderStatusPending, constants.OrderStatusCanceled, nil); err != nil {
			return err
		}
		if err := repos.StatusChanges.Create(&models.StatusChange{
			OrderID:   order.ID,
			OldStatus: constants.OrderStatusPending,
			NewStatus: constants.OrderStatusCanceled,
			ChangedBy: "system",
			ChangedAt: time.Now(),
		}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("want boom got %v", err)
	}

	stored, err := NewOrderRepository(db).GetByID(order.ID)
	if err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if stored.Status != constants.OrderStatusPending {
		t.Fatalf("status should roll back, got %s", stored.Status)
	}
	changes, err := NewStatusChangeRepository(db).ListByOrder(order.ID)
	if err != nil {
		t.Fatalf("list changes failed: %v", err)
	}
	if len(changes) != 0 {
		t.Fatalf("status change should roll back, got %d", len(changes))
	}
}
