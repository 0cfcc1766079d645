package models

import "time"

// Customer is a CRM contact. Email is stored trimmed and lowercased, so the
// unique index enforces case-insensitive uniqueness.
type Customer struct {
	ID        uint      `gorm:"primaryKey"                     json:"id"`
	Name      string    `gorm:"size:255;not null"              json:"name"`
	Email     string    `gorm:"size:255;not null;uniqueIndex"  json:"email"`
	Phone     *string   `gorm:"size:32"                        json:"phone"`
	CreatedAt time.Time `gorm:"not null;index"                 json:"created_at"`
}

// PhoneOrEmpty returns the phone number or "" when none was given.
func (c Customer) PhoneOrEmpty() string {
	if c.Phone == nil {
		return ""
	}
	return *c.Phone
}
