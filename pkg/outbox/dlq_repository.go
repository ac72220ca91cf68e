package outbox

import (
	"errors"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// maxDLQErrorLen bounds error_message so a huge upstream error body cannot
// bloat the table.
const maxDLQErrorLen = 1024

// DLQRepository writes dead-lettered outbox rows. Inserts always share the
// publisher's transaction with the MarkTerminalTx of the source row.
type DLQRepository struct{}

func NewDLQRepository(*gorm.DB) *DLQRepository {
	return &DLQRepository{}
}

func (r *DLQRepository) InsertTx(tx *gorm.DB, entry models.OutboxDLQ) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	if entry.ErrorMessage != nil {
		msg := truncateUTF8(*entry.ErrorMessage, maxDLQErrorLen)
		entry.ErrorMessage = &msg
	}
	return tx.Create(&entry).Error
}

func truncateUTF8(s string, max int) string {
	if len(s) <= max {
		return s
	}
	s = s[:max]
	for len(s) > 0 && !utf8.ValidString(s) {
		s = s[:len(s)-1]
	}
	return s
}
