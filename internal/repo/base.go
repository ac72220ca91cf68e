// Package repo holds the connection handle embedded by every domain
// repository so the same code runs inside or outside a transaction.
package repo

import (
	"context"

	"gorm.io/gorm"
)

type Base struct {
	conn *gorm.DB
}

func NewBase(conn *gorm.DB) Base {
	return Base{conn: conn}
}

// DB scopes the handle to ctx so cancellation reaches the driver.
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.conn
	}
	return b.conn.WithContext(ctx)
}

// WithTx rebinds the repository to tx. A nil tx leaves it unchanged.
func (b Base) WithTx(tx *gorm.DB) Base {
	if tx != nil {
		b.conn = tx
	}
	return b
}
