package entity

import "time"

// UserInfo 用户信息表
type UserInfo struct {
	Id        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Uuid      string    `gorm:"column:uuid;type:varchar(40);not null;uniqueIndex:uniq_user_uuid"`
	Username  string    `gorm:"column:username;type:varchar(64);not null;uniqueIndex:uniq_user_username"`
	Nickname  string    `gorm:"column:nickname;type:varchar(64)"`
	Password  string    `gorm:"column:password;type:char(64);not null"` // sha256 摘要
	IsAdmin   int8      `gorm:"column:is_admin;type:tinyint;not null;default:0"`
	Status    int8      `gorm:"column:status;type:tinyint;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;type:datetime;not null"`
}

func (UserInfo) TableName() string { return "user_info" }
