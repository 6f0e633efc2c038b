package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"

	"DataLink/internal/modules/history/application/dto/request"
	"DataLink/internal/modules/history/application/dto/respond"
	"DataLink/internal/modules/history/domain/entity"
	"DataLink/internal/modules/history/domain/repository"
	"DataLink/internal/modules/qa/domain/chatbot"
	"DataLink/pkg/util"
	"DataLink/pkg/xerr"
	"DataLink/pkg/zlog"
)

const timeLayout = "2006-01-02 15:04:05"

type HistoryService interface {
	SaveChat(ctx context.Context, userUuid string, req *request.SaveChatRequest) (*respond.SaveChatRespond, error)
	ListChats(ctx context.Context, userUuid string) ([]respond.ChatSummaryRespond, error)
	GetChat(ctx context.Context, userUuid string, uuid string) (*respond.ChatDetailRespond, error)
	DeleteChat(ctx context.Context, userUuid string, uuid string) error
}

type historyServiceImpl struct {
	chats repository.UserChatRepository
}

func NewHistoryService(chats repository.UserChatRepository) HistoryService {
	return &historyServiceImpl{chats: chats}
}

func (s *historyServiceImpl) SaveChat(ctx context.Context, userUuid string, req *request.SaveChatRequest) (*respond.SaveChatRespond, error) {
	if len(req.Messages) == 0 {
		return nil, xerr.New(xerr.BadRequest, "消息列表为空")
	}
	uuid := req.Uuid
	if uuid == "" {
		uuid = util.GenerateID("C")
	} else {
		// uuid 指定时只能更新自己的对话
		existing, err := s.chats.GetUserChatByUuid(ctx, uuid)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			zlog.Error("查询对话失败: " + err.Error())
			return nil, xerr.ErrServerError
		}
		if existing != nil && existing.UserUuid != userUuid {
			return nil, xerr.New(xerr.BadRequest, "对话不存在")
		}
	}
	title := req.Title
	if title == "" {
		title = deriveTitle(req.Messages)
	}
	raw, err := json.Marshal(req.Messages)
	if err != nil {
		return nil, xerr.New(xerr.BadRequest, "消息格式不合法")
	}
	now := time.Now()
	chat := &entity.UserChat{
		Uuid:         uuid,
		UserUuid:     userUuid,
		Title:        title,
		MessagesJson: string(raw),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.chats.SaveUserChat(ctx, chat); err != nil {
		zlog.Error("保存对话失败: " + err.Error())
		return nil, xerr.ErrServerError
	}
	return &respond.SaveChatRespond{Uuid: uuid}, nil
}

func (s *historyServiceImpl) ListChats(ctx context.Context, userUuid string) ([]respond.ChatSummaryRespond, error) {
	chats, err := s.chats.ListUserChatsByUser(ctx, userUuid)
	if err != nil {
		zlog.Error("查询对话列表失败: " + err.Error())
		return nil, xerr.ErrServerError
	}
	out := make([]respond.ChatSummaryRespond, 0, len(chats))
	for _, c := range chats {
		out = append(out, respond.ChatSummaryRespond{
			Uuid:      c.Uuid,
			Title:     c.Title,
			UpdatedAt: c.UpdatedAt.Format(timeLayout),
		})
	}
	return out, nil
}

func (s *historyServiceImpl) GetChat(ctx context.Context, userUuid string, uuid string) (*respond.ChatDetailRespond, error) {
	chat, err := s.chats.GetUserChatByUuid(ctx, uuid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, xerr.New(xerr.BadRequest, "对话不存在")
		}
		zlog.Error("查询对话失败: " + err.Error())
		return nil, xerr.ErrServerError
	}
	if chat.UserUuid != userUuid {
		return nil, xerr.New(xerr.BadRequest, "对话不存在")
	}
	var messages []chatbot.ChatTurn
	if chat.MessagesJson != "" {
		if err := json.Unmarshal([]byte(chat.MessagesJson), &messages); err != nil {
			zlog.Error("解析对话消息失败: " + err.Error())
			return nil, xerr.ErrServerError
		}
	}
	return &respond.ChatDetailRespond{
		Uuid:      chat.Uuid,
		Title:     chat.Title,
		Messages:  messages,
		CreatedAt: chat.CreatedAt.Format(timeLayout),
		UpdatedAt: chat.UpdatedAt.Format(timeLayout),
	}, nil
}

func (s *historyServiceImpl) DeleteChat(ctx context.Context, userUuid string, uuid string) error {
	ok, err := s.chats.DeleteUserChat(ctx, uuid, userUuid)
	if err != nil {
		zlog.Error("删除对话失败: " + err.Error())
		return xerr.ErrServerError
	}
	if !ok {
		return xerr.New(xerr.BadRequest, "对话不存在")
	}
	return nil
}

// deriveTitle 取第一条用户消息的前 30 个字符作为标题。
func deriveTitle(messages []chatbot.ChatTurn) string {
	for _, m := range messages {
		if m.Role != "user" || m.Content == "" {
			continue
		}
		runes := []rune(m.Content)
		if len(runes) > 30 {
			return string(runes[:30])
		}
		return m.Content
	}
	return "新对话"
}
