package repository

import "DataLink/internal/modules/user/domain/entity"

// UserInfoRepository 用户仓储接口
type UserInfoRepository interface {
	CreateUserInfo(user *entity.UserInfo) error
	GetUserInfoByUsername(username string) (*entity.UserInfo, error)
	GetUserInfoByUuid(uuid string) (*entity.UserInfo, error)
}
