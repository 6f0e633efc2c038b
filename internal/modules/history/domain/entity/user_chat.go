package entity

import "time"

// UserChat 用户保存的一段对话。消息列表整体存 JSON，读写都是整段替换。
type UserChat struct {
	Id           int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Uuid         string    `gorm:"column:uuid;type:varchar(40);not null;uniqueIndex:uniq_user_chat_uuid"`
	UserUuid     string    `gorm:"column:user_uuid;type:varchar(40);not null;index:idx_user_chat_user"`
	Title        string    `gorm:"column:title;type:varchar(128)"`
	MessagesJson string    `gorm:"column:messages_json;type:json"`
	CreatedAt    time.Time `gorm:"column:created_at;type:datetime;not null"`
	UpdatedAt    time.Time `gorm:"column:updated_at;type:datetime;not null"`
}

func (UserChat) TableName() string { return "user_chat" }
