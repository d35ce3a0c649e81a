package gormstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/finovant/accesscore"
)

// Store implements accesscore.RecordStore over a GORM database handle.
type Store struct {
	db *gorm.DB
}

// Open connects to Postgres, migrates the store's tables, and returns a
// ready [Store].
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("gormstore: open: %w", err)
	}

	if err := db.AutoMigrate(&User{}, &Business{}); err != nil {
		return nil, fmt.Errorf("gormstore: migrate: %w", err)
	}

	return &Store{db: db}, nil
}

// New wraps an existing database handle without migrating. Useful when
// the application manages the schema itself or in tests with a
// pre-opened connection.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// FindUserBySubjectID implements accesscore.RecordStore.
func (s *Store) FindUserBySubjectID(ctx context.Context, subjectID string) (*accesscore.UserRecord, error) {
	var row User
	err := s.db.WithContext(ctx).First(&row, "subject_id = ?", subjectID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: subject %s", accesscore.ErrRecordNotFound, subjectID)
	}
	if err != nil {
		return nil, fmt.Errorf("gormstore: find user: %w", err)
	}

	record := recordFromRow(row)
	return &record, nil
}

// CreateUser implements accesscore.RecordStore. A missing id is filled
// with a fresh UUID before insert.
func (s *Store) CreateUser(ctx context.Context, record accesscore.UserRecord) (*accesscore.UserRecord, error) {
	row := rowFromRecord(record)
	if row.ID == "" {
		row.ID = uuid.NewString()
	}

	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("gormstore: create user: %w", err)
	}

	created := recordFromRow(row)
	return &created, nil
}

// FindBusinessesByOwner implements accesscore.RecordStore. Results come
// back in creation order so the engine's default active business is
// stable across bootstraps.
func (s *Store) FindBusinessesByOwner(ctx context.Context, userID string) ([]accesscore.Business, error) {
	var rows []Business
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("gormstore: find businesses: %w", err)
	}

	out := make([]accesscore.Business, len(rows))
	for i, row := range rows {
		out[i] = accesscore.Business{
			ID:        row.ID,
			OwnerID:   row.OwnerID,
			Name:      row.Name,
			CreatedAt: row.CreatedAt,
		}
	}
	return out, nil
}

func recordFromRow(row User) accesscore.UserRecord {
	return accesscore.UserRecord{
		ID:        row.ID,
		SubjectID: row.SubjectID,
		Address:   row.Address,
		Role:      policyRole(row.Role),
		FirstName: row.FirstName,
		LastName:  row.LastName,
		AvatarURL: row.AvatarURL,
		Tier:      policyTier(row.Tier),
		Metadata:  row.Metadata,
		CreatedAt: row.CreatedAt,
	}
}

func rowFromRecord(record accesscore.UserRecord) User {
	return User{
		ID:        record.ID,
		SubjectID: record.SubjectID,
		Address:   record.Address,
		Role:      string(record.Role),
		FirstName: record.FirstName,
		LastName:  record.LastName,
		AvatarURL: record.AvatarURL,
		Tier:      string(record.Tier),
		Metadata:  record.Metadata,
	}
}
