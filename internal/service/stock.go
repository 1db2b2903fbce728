package service

import (
	"sort"

	"github.com/handmade-market/internal/logger"
	"github.com/handmade-market/internal/models"
	"github.com/handmade-market/internal/repository"
)

type stockLine struct {
	VariationID uint
	Quantity    int
}

// summarizeStockByDetails 按规格汇总数量，按 ID 升序返回以保证加锁顺序一致
func summarizeStockByDetails(details []models.OrderDetail) []stockLine {
	byVariation := make(map[uint]int)
	for _, detail := range details {
		if detail.VariationID == 0 || detail.Quantity <= 0 {
			continue
		}
		byVariation[detail.VariationID] += detail.Quantity
	}
	lines := make([]stockLine, 0, len(byVariation))
	for id, qty := range byVariation {
		lines = append(lines, stockLine{VariationID: id, Quantity: qty})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].VariationID < lines[j].VariationID })
	return lines
}

func reserveStockByDetails(variationRepo repository.ProductVariationRepository, details []models.OrderDetail) error {
	for _, line := range summarizeStockByDetails(details) {
		affected, err := variationRepo.ReserveStock(line.VariationID, line.Quantity)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrStockInsufficient
		}
	}
	return nil
}

// releaseStockByDetails 释放待支付订单的占用库存
func releaseStockByDetails(variationRepo repository.ProductVariationRepository, orderID uint, details []models.OrderDetail) error {
	for _, line := range summarizeStockByDetails(details) {
		affected, err := variationRepo.ReleaseStock(line.VariationID, line.Quantity)
		if err != nil {
			return err
		}
		if affected == 0 {
			logger.Warnw("order_stock_release_skipped",
				"order_id", orderID,
				"variation_id", line.VariationID,
				"quantity", line.Quantity,
			)
		}
	}
	return nil
}

// consumeStockByDetails 支付完成后占用转已售
func consumeStockByDetails(variationRepo repository.ProductVariationRepository, orderID uint, details []models.OrderDetail) error {
	for _, line := range summarizeStockByDetails(details) {
		affected, err := variationRepo.ConsumeStock(line.VariationID, line.Quantity)
		if err != nil {
			return err
		}
		if affected == 0 {
			logger.Warnw("order_stock_consume_skipped",
				"order_id", orderID,
				"variation_id", line.VariationID,
				"quantity", line.Quantity,
			)
		}
	}
	return nil
}

// returnSoldStockByDetails 已支付订单取消后退回已售库存
func returnSoldStockByDetails(variationRepo repository.ProductVariationRepository, orderID uint, details []models.OrderDetail) error {
	for _, line := range summarizeStockByDetails(details) {
		affected, err := variationRepo.ReturnSoldStock(line.VariationID, line.Quantity)
		if err != nil {
			return err
		}
		if affected == 0 {
			logger.Warnw("order_stock_return_skipped",
				"order_id", orderID,
				"variation_id", line.VariationID,
				"quantity", line.Quantity,
			)
		}
	}
	return nil
}
