package domain

import "time"

// Comment is a user comment on a launch.
type Comment struct {
	ID        int64     `gorm:"primaryKey;column:id" json:"id"`
	LaunchID  int64     `gorm:"column:launch_id;not null;index" json:"launchId"`
	UserID    int64     `gorm:"column:user_id;not null;index" json:"userId"`
	Body      string    `gorm:"column:body;type:text;not null" json:"body"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime;index" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// TableName returns the GORM table name.
func (Comment) TableName() string {
	return "comments"
}
