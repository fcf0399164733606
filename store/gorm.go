package store

import (
	"errors"

	"change-order-api/models"

	"gorm.io/gorm"
)

// GormStore persists change orders through GORM. It is selected when the
// database environment variables are configured; otherwise the demo runs on
// the in-memory store.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore migrates the change_orders table and returns the store.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&models.StoredChangeOrder{}); err != nil {
		return nil, err
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) Create(record *models.StoredChangeOrder) error {
	return s.db.Create(record).Error
}

func (s *GormStore) FindByID(id string) (*models.StoredChangeOrder, error) {
	var rec models.StoredChangeOrder
	if err := s.db.Where("id = ?", id).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (s *GormStore) Update(record *models.StoredChangeOrder) error {
	result := s.db.Model(&models.StoredChangeOrder{}).
		Where("id = ?", record.ID).
		Select("*").
		Updates(record)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) ListAll() ([]*models.StoredChangeOrder, error) {
	var recs []*models.StoredChangeOrder
	if err := s.db.Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}
