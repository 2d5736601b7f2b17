package repo

import (
	"time"

	"gorm.io/gorm"

	"go-gin-gorm-accounts/internal/domain"
)

type UserModel struct {
	ID           uint    `gorm:"primaryKey"`
	Email        string  `gorm:"uniqueIndex;size:255;not null"`
	Name         *string `gorm:"size:100"`
	PasswordHash string  `gorm:"size:100;not null"`
	Role         string  `gorm:"size:16;not null;default:USER"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	Profile *ProfileModel `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (UserModel) TableName() string { return "users" }

type ProfileModel struct {
	ID        uint    `gorm:"primaryKey"`
	UserID    uint    `gorm:"uniqueIndex;not null"`
	Bio       *string `gorm:"size:500"`
	AvatarURL *string `gorm:"size:2048"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (ProfileModel) TableName() string { return "profiles" }

// Migrate creates or updates the users and profiles tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&UserModel{}, &ProfileModel{})
}

func (m *UserModel) toDomain() *domain.User {
	u := &domain.User{
		ID:        m.ID,
		Email:     m.Email,
		Name:      m.Name,
		Role:      domain.Role(m.Role),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	if m.Profile != nil {
		u.Profile = &domain.Profile{Bio: m.Profile.Bio, AvatarURL: m.Profile.AvatarURL}
	}
	return u
}
