package models

import (
	"time"

	"gorm.io/gorm"
)

// UnassignedUserName is the assignedUserName of a task that has no owner.
const UnassignedUserName = "unassigned"

// Task column names used in repository filters and patches.
const (
	TaskColumnID               = "id"
	TaskColumnCompleted        = "completed"
	TaskColumnAssignedUser     = "assigned_user"
	TaskColumnAssignedUserName = "assigned_user_name"
	TaskColumnDateCreated      = "date_created"
)

type Task struct {
	ID               string    `gorm:"primarykey;type:varchar(36)" json:"id"`
	Name             string    `gorm:"type:varchar(255);not null" json:"name"`
	Description      string    `gorm:"type:text" json:"description"`
	Deadline         time.Time `gorm:"not null" json:"deadline"`
	Completed        bool      `gorm:"not null" json:"completed"`
	AssignedUser     string    `gorm:"type:varchar(36);not null" json:"assignedUser"`
	AssignedUserName string    `gorm:"type:varchar(255);not null" json:"assignedUserName"`
	DateCreated      time.Time `gorm:"autoCreateTime" json:"dateCreated"`
}

// IsPending reports whether the task belongs in its owner's pendingTasks.
func (t *Task) IsPending() bool {
	return t.AssignedUser != "" && !t.Completed
}

// BeforeCreate assigns an id when the caller did not.
func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = NewID()
	}
	if t.AssignedUserName == "" {
		t.AssignedUserName = UnassignedUserName
	}
	return nil
}
