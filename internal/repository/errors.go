package repository

import "errors"

var (
	ErrNotFound = errors.New("not found")
	// 一意制約違反
	ErrDuplicate = errors.New("duplicate")
	// 要求数量が在庫を超える
	ErrStockLimit = errors.New("stock limit exceeded")
)
