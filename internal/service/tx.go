package service

import (
	"database/sql"

	"gorm.io/gorm"
)

// TxManager runs one unit of work atomically: the closure either fully
// commits or fully rolls back. *gorm.DB satisfies it directly.
type TxManager interface {
	Transaction(fc func(tx *gorm.DB) error, opts ...*sql.TxOptions) error
}
