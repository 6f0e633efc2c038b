package repository

import (
	"context"

	"DataLink/internal/modules/history/domain/entity"
)

type UserChatRepository interface {
	// SaveUserChat 按 uuid 整段写入，存在则更新标题和消息。
	SaveUserChat(ctx context.Context, chat *entity.UserChat) error
	GetUserChatByUuid(ctx context.Context, uuid string) (*entity.UserChat, error)
	// ListUserChatsByUser 按更新时间倒序返回某个用户的全部对话。
	ListUserChatsByUser(ctx context.Context, userUuid string) ([]entity.UserChat, error)
	DeleteUserChat(ctx context.Context, uuid string, userUuid string) (bool, error)
}
