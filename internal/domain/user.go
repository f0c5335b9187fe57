package domain

import "time"

// User is a registered account.
type User struct {
	ID                 int64      `gorm:"primaryKey;column:id" json:"id"`
	Email              string     `gorm:"column:email;size:255;uniqueIndex;not null" json:"email"`
	Name               string     `gorm:"column:name;size:100" json:"name"`
	Image              string     `gorm:"column:image;size:500" json:"image,omitempty"`
	PasswordHash       *string    `gorm:"column:password_hash" json:"-"` // never serialized
	GoogleID           *string    `gorm:"column:google_id;uniqueIndex" json:"-"`
	StripeCustomerID   *string    `gorm:"column:stripe_customer_id;size:64" json:"-"`
	RegistrationSource string     `gorm:"column:registration_source;size:20;not null;default:'email'" json:"registration_source"`
	LastLoginAt        *time.Time `gorm:"column:last_login_at" json:"last_login_at,omitempty"`
	CreatedAt          time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	IsActive           bool       `gorm:"column:is_active;default:true" json:"is_active"`
}

// TableName returns the GORM table name.
func (User) TableName() string {
	return "users"
}

// Identity is the session view of a user handed to request handlers.
type Identity struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Image string `json:"image,omitempty"`
}

// Identity returns the public session view of the user.
func (u *User) Identity() Identity {
	return Identity{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Image: u.Image,
	}
}
