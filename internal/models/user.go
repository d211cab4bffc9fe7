package models

import (
	"time"

	"gorm.io/gorm"
)

// User column names used in repository filters and patches.
const (
	UserColumnID           = "id"
	UserColumnName         = "name"
	UserColumnEmail        = "email"
	UserColumnPendingTasks = "pending_tasks"
	UserColumnDateCreated  = "date_created"
)

type User struct {
	ID           string    `gorm:"primarykey;type:varchar(36)" json:"id"`
	Name         string    `gorm:"type:varchar(255);not null" json:"name"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PendingTasks TaskIDs   `gorm:"type:text;not null" json:"pendingTasks"`
	DateCreated  time.Time `gorm:"autoCreateTime" json:"dateCreated"`
}

// BeforeCreate assigns an id when the caller did not.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = NewID()
	}
	if u.PendingTasks == nil {
		u.PendingTasks = TaskIDs{}
	}
	return nil
}
