package store

import (
	"context"
	"errors"
	"fmt"

	"letrystudio/models"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type GormStore struct {
	db  *gorm.DB
	log zerolog.Logger
}

func NewGormStore(db *gorm.DB, log zerolog.Logger) *GormStore {
	return &GormStore{db: db, log: log}
}

func (s *GormStore) LoadAvatar(ctx context.Context) (*models.ImageRef, error) {
	var record models.AvatarRecord
	err := s.db.WithContext(ctx).Order("created_at desc").Take(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load avatar: %w", err)
	}
	avatar := record.ImageRef()
	return &avatar, nil
}

func (s *GormStore) SaveAvatar(ctx context.Context, avatar models.ImageRef) error {
	record := models.AvatarRecordFrom(avatar)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.AvatarRecord{}).Error; err != nil {
			return err
		}
		return tx.Create(&record).Error
	})
	if err == nil {
		return nil
	}

	// The slot must not keep the previous avatar once a new one was requested.
	if clearErr := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.AvatarRecord{}).Error; clearErr != nil {
		s.log.Error().Err(clearErr).Msg("[Store] could not clear avatar slot after failed save")
	}
	return &models.PersistenceFailure{Operation: "save avatar", Err: err}
}

func (s *GormStore) LoadWardrobe(ctx context.Context) ([]models.WardrobeItem, error) {
	var records []models.WardrobeRecord
	if err := s.db.WithContext(ctx).Order("position asc").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("load wardrobe: %w", err)
	}
	items := make([]models.WardrobeItem, 0, len(records))
	for _, record := range records {
		items = append(items, record.WardrobeItem())
	}
	return items, nil
}

func (s *GormStore) SaveWardrobe(ctx context.Context, items []models.WardrobeItem) error {
	records := make([]models.WardrobeRecord, 0, len(items))
	for i, item := range items {
		records = append(records, models.WardrobeRecordFrom(item, i))
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.WardrobeRecord{}).Error; err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}
		return tx.CreateInBatches(&records, 50).Error
	})
	if err != nil {
		return &models.PersistenceFailure{Operation: "save wardrobe", Err: err}
	}
	s.log.Debug().Int("items", len(records)).Msg("[Store] wardrobe rewritten")
	return nil
}
