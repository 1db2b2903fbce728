package main

import (
	"github.com/handmade-market/internal/config"
	"github.com/handmade-market/internal/constants"
	"github.com/handmade-market/internal/logger"
	"github.com/handmade-market/internal/models"
	"github.com/handmade-market/internal/service"

	"github.com/shopspring/decimal"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 取消原因
	reasons := []models.CancelReason{
		{Description: "Changed my mind", RefundRate: decimal.RequireFromString("1")},
		{Description: "Found a better price elsewhere", RefundRate: decimal.RequireFromString("0.9")},
		{Description: "Delivery takes too long", RefundRate: decimal.RequireFromString("1")},
		{Description: "Item no longer needed after shipping", RefundRate: decimal.RequireFromString("0.5")},
	}
	for _, reason := range reasons {
		var existing models.CancelReason
		if err := models.DB.Where("description = ?", reason.Description).First(&existing).Error; err == nil {
			stdLog.Printf("Cancel reason already exists: %s", reason.Description)
			continue
		}
		if err := models.DB.Create(&reason).Error; err != nil {
			stdLog.Printf("Failed to create cancel reason %s: %v", reason.Description, err)
		} else {
			stdLog.Printf("Created cancel reason: %s (rate %s)", reason.Description, reason.RefundRate.String())
		}
	}

	// 商品规格
	variations := []models.ProductVariation{
		{ProductID: 1, Name: "Stoneware mug / speckled", Price: models.MustMoney("28.00"), StockTotal: 40, IsActive: true},
		{ProductID: 1, Name: "Stoneware mug / ash glaze", Price: models.MustMoney("32.50"), StockTotal: 25, IsActive: true},
		{ProductID: 2, Name: "Hand-knit scarf / wool", Price: models.MustMoney("65.00"), StockTotal: 10, IsActive: true},
		{ProductID: 3, Name: "Walnut serving board", Price: models.MustMoney("89.99"), StockTotal: 5, IsActive: true},
		{ProductID: 4, Name: "Beeswax candle set", Price: models.MustMoney("19.90"), StockTotal: 100, IsActive: true},
	}
	for _, variation := range variations {
		var existing models.ProductVariation
		if err := models.DB.Where("product_id = ? AND name = ?", variation.ProductID, variation.Name).First(&existing).Error; err == nil {
			stdLog.Printf("Variation already exists: %s", variation.Name)
			continue
		}
		if err := models.DB.Create(&variation).Error; err != nil {
			stdLog.Printf("Failed to create variation %s: %v", variation.Name, err)
		} else {
			stdLog.Printf("Created variation #%d: %s", variation.ID, variation.Name)
		}
	}

	// 开发用令牌
	authService := service.NewAuthService(cfg, nil)
	devTokens := []struct {
		userID uint
		role   string
	}{
		{userID: 1001, role: constants.ActorRoleCustomer},
		{userID: 1002, role: constants.ActorRoleCustomer},
		{userID: 9001, role: constants.ActorRoleStaff},
	}
	for _, item := range devTokens {
		token, expiresAt, err := authService.GenerateUserJWT(item.userID, item.role)
		if err != nil {
			stdLog.Printf("Failed to issue token for user %d: %v", item.userID, err)
			continue
		}
		stdLog.Printf("Dev token user=%d role=%s expires=%s\n%s", item.userID, item.role, expiresAt.Format("2006-01-02 15:04:05"), token)
	}

	stdLog.Println("Seed data created successfully!")
}
