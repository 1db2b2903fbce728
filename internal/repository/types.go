package repository

import "gorm.io/gorm"

// OrderListFilter 查询订单列表的过滤条件
type OrderListFilter struct {
	Page     int
	PageSize int
	UserID   uint
	Status   string
}

// StatusChangeListFilter 查询状态变更列表的过滤条件
type StatusChangeListFilter struct {
	Page     int
	PageSize int
	OrderID  uint
}

// applyPagination 页码小于 1 按第一页处理，pageSize 非正时不分页
func applyPagination(query *gorm.DB, page, pageSize int) *gorm.DB {
	if query == nil || pageSize <= 0 {
		return query
	}
	if page < 1 {
		page = 1
	}
	return query.Limit(pageSize).Offset((page - 1) * pageSize)
}
