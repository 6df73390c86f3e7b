package models

import (
	"time"

	"github.com/stitchline/backend/internal/domain/identity"
	"github.com/stitchline/backend/internal/domain/shared"
)

// UserModel is the persistence model for identity.User
type UserModel struct {
	BaseModel
	Name         string          `gorm:"type:varchar(100);not null"`
	Email        string          `gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHash string          `gorm:"column:password_hash;type:varchar(255);not null"`
	Gender       identity.Gender `gorm:"type:varchar(10)"`
	Phone        *string         `gorm:"type:varchar(20);uniqueIndex"`
	DOB          *time.Time      `gorm:"column:dob;type:date"`
	Address      string          `gorm:"type:text"`
	Role         shared.Role     `gorm:"type:varchar(10);not null;default:user"`
	IsVerified   bool            `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the model to a domain User
func (m *UserModel) ToDomain() *identity.User {
	u := &identity.User{
		BaseEntity:   m.BaseModel.ToDomain(),
		Name:         m.Name,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Gender:       m.Gender,
		DateOfBirth:  m.DOB,
		Address:      m.Address,
		Role:         m.Role,
		IsVerified:   m.IsVerified,
	}
	if m.Phone != nil {
		u.Phone = *m.Phone
	}
	return u
}

// FromDomain populates the model from a domain User.
// An empty phone is stored as NULL so the unique index ignores it.
func (m *UserModel) FromDomain(u *identity.User) {
	m.FromDomainBaseEntity(u.BaseEntity)
	m.Name = u.Name
	m.Email = u.Email
	m.PasswordHash = u.PasswordHash
	m.Gender = u.Gender
	m.Phone = nil
	if u.Phone != "" {
		phone := u.Phone
		m.Phone = &phone
	}
	m.DOB = u.DateOfBirth
	m.Address = u.Address
	m.Role = u.Role
	m.IsVerified = u.IsVerified
}

// UserModelFromDomain creates a model from a domain User
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}
