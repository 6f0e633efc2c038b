package service

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"DataLink/internal/modules/user/application/dto/request"
	"DataLink/internal/modules/user/application/dto/respond"
	"DataLink/internal/modules/user/domain/entity"
	"DataLink/internal/modules/user/domain/repository"
	"DataLink/pkg/util"
	"DataLink/pkg/util/myjwt"
	"DataLink/pkg/xerr"
	"DataLink/pkg/zlog"

	"gorm.io/gorm"
)

// UserInfoService 用户服务接口 (Application Service)
type UserInfoService interface {
	Register(registerReq request.RegisterRequest) (*respond.RegisterRespond, error)
	Login(loginReq request.LoginRequest) (*respond.LoginRespond, error)
}

type userInfoServiceImpl struct {
	repo repository.UserInfoRepository
}

// NewUserInfoService 构造函数
func NewUserInfoService(repo repository.UserInfoRepository) UserInfoService {
	return &userInfoServiceImpl{repo: repo}
}

func (u *userInfoServiceImpl) Register(registerReq request.RegisterRequest) (*respond.RegisterRespond, error) {
	username := strings.TrimSpace(registerReq.Username)
	if username == "" || registerReq.Password == "" {
		return nil, xerr.ErrParam
	}

	// 检查用户名是否已占用
	_, err := u.repo.GetUserInfoByUsername(username)
	if err == nil {
		return nil, xerr.New(xerr.BadRequest, "用户已存在")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		zlog.Error(err.Error())
		return nil, xerr.ErrServerError
	}

	nickname := strings.TrimSpace(registerReq.Nickname)
	if nickname == "" {
		nickname = username
	}
	newUser := entity.UserInfo{
		Uuid:      util.GenerateID("U"),
		Username:  username,
		Nickname:  nickname,
		Password:  hashPassword(registerReq.Password),
		Status:    0,
		IsAdmin:   0,
		CreatedAt: time.Now(),
	}

	if err := u.repo.CreateUserInfo(&newUser); err != nil {
		zlog.Error(err.Error())
		return nil, xerr.ErrServerError
	}

	return &respond.RegisterRespond{
		Uuid:     newUser.Uuid,
		Username: newUser.Username,
		Nickname: newUser.Nickname,
	}, nil
}

func (u *userInfoServiceImpl) Login(loginReq request.LoginRequest) (*respond.LoginRespond, error) {
	username := strings.TrimSpace(loginReq.Username)
	if username == "" || loginReq.Password == "" {
		return nil, xerr.ErrParam
	}

	user, err := u.repo.GetUserInfoByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, xerr.New(xerr.Unauthorized, "用户名或密码错误")
		}
		zlog.Error(err.Error())
		return nil, xerr.ErrServerError
	}
	if user.Password != hashPassword(loginReq.Password) {
		return nil, xerr.New(xerr.Unauthorized, "用户名或密码错误")
	}

	token, err := myjwt.GenerateToken(user.Uuid, user.Username)
	if err != nil {
		zlog.Error(err.Error())
		return nil, xerr.ErrServerError
	}

	return &respond.LoginRespond{
		Uuid:     user.Uuid,
		Username: user.Username,
		Nickname: user.Nickname,
		Token:    token,
	}, nil
}

func hashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}
