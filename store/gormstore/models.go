package gormstore

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// User is the durable local profile row backing accesscore.UserRecord.
// SubjectID is the identity provider's opaque subject; it is the lookup
// key during bootstrap and therefore uniquely indexed.
type User struct {
	ID        string            `gorm:"type:uuid;primaryKey"`
	SubjectID string            `gorm:"type:varchar(255);uniqueIndex;not null"`
	Address   string            `gorm:"type:varchar(255);index;not null"`
	Role      string            `gorm:"type:varchar(50);not null"`
	FirstName string            `gorm:"type:varchar(255)"`
	LastName  string            `gorm:"type:varchar(255)"`
	AvatarURL string            `gorm:"type:varchar(1024)"`
	Tier      string            `gorm:"type:varchar(50);not null"`
	Metadata  map[string]string `gorm:"serializer:json"`
	CreatedAt time.Time         `gorm:"autoCreateTime"`
	UpdatedAt time.Time         `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt    `gorm:"index"`
}

// Business is a tenant row. Balance is bookkeeping state for the wider
// application; the engine itself only reads the ownership columns.
type Business struct {
	ID        string          `gorm:"type:uuid;primaryKey"`
	OwnerID   string          `gorm:"type:uuid;not null;index"`
	Owner     User            `gorm:"foreignKey:OwnerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Name      string          `gorm:"type:varchar(255);not null"`
	Balance   decimal.Decimal `gorm:"type:numeric(18,2);default:0"`
	CreatedAt time.Time       `gorm:"autoCreateTime"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt  `gorm:"index"`
}
