package persistence

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"DataLink/internal/modules/history/domain/entity"
	"DataLink/internal/modules/history/domain/repository"
)

type userChatRepositoryImpl struct {
	db *gorm.DB
}

func NewUserChatRepository(db *gorm.DB) repository.UserChatRepository {
	return &userChatRepositoryImpl{db: db}
}

func (r *userChatRepositoryImpl) SaveUserChat(ctx context.Context, chat *entity.UserChat) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "uuid"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "messages_json", "updated_at"}),
	}).Create(chat).Error
}

func (r *userChatRepositoryImpl) GetUserChatByUuid(ctx context.Context, uuid string) (*entity.UserChat, error) {
	var chat entity.UserChat
	err := r.db.WithContext(ctx).Where("uuid = ?", uuid).First(&chat).Error
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

func (r *userChatRepositoryImpl) ListUserChatsByUser(ctx context.Context, userUuid string) ([]entity.UserChat, error) {
	var chats []entity.UserChat
	err := r.db.WithContext(ctx).
		Where("user_uuid = ?", userUuid).
		Order("updated_at DESC").
		Find(&chats).Error
	if err != nil {
		return nil, err
	}
	return chats, nil
}

func (r *userChatRepositoryImpl) DeleteUserChat(ctx context.Context, uuid string, userUuid string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("uuid = ? AND user_uuid = ?", uuid, userUuid).
		Delete(&entity.UserChat{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
