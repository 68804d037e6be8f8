package models

import "time"

// User is a member of the sharing graph. Users are created by the import
// tooling; the application never registers them on its own.
type User struct {
	ID      uint    `gorm:"primaryKey" json:"id"`
	Name    string  `gorm:"not null;index" json:"name"`
	Email   *string `gorm:"uniqueIndex" json:"email,omitempty"`
	ImageID *uint   `json:"-"`
	Image   *Image  `gorm:"foreignKey:ImageID" json:"-"`
	Source  *string `json:"-"`
}

func (User) TableName() string { return "circle_user" }

// UserMinimal is the author block embedded in post and comment views.
type UserMinimal struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

// UserListEntry is one row of the trusting login picker.
type UserListEntry struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// Session identifies the authenticated viewer of a request.
type Session struct {
	UserID    uint      `json:"userId"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	ExpiresAt time.Time `json:"expiresAt"`
}
