package store

import (
	"errors"

	"change-order-api/models"
)

// ErrNotFound is returned when an identifier does not resolve to a record.
var ErrNotFound = errors.New("change order not found")

// ChangeOrderStore is the record repository the lifecycle service writes
// through. Implementations need no durability guarantees; last write wins.
type ChangeOrderStore interface {
	Create(record *models.StoredChangeOrder) error
	FindByID(id string) (*models.StoredChangeOrder, error)
	Update(record *models.StoredChangeOrder) error
	ListAll() ([]*models.StoredChangeOrder, error)
}
