package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"DataLink/internal/modules/history/application/dto/request"
	"DataLink/internal/modules/history/domain/entity"
	"DataLink/internal/modules/qa/domain/chatbot"
	"DataLink/pkg/xerr"
)

type stubUserChatRepo struct {
	chats map[string]*entity.UserChat
}

func newStubUserChatRepo() *stubUserChatRepo {
	return &stubUserChatRepo{chats: map[string]*entity.UserChat{}}
}

func (s *stubUserChatRepo) SaveUserChat(ctx context.Context, chat *entity.UserChat) error {
	cp := *chat
	s.chats[chat.Uuid] = &cp
	return nil
}

func (s *stubUserChatRepo) GetUserChatByUuid(ctx context.Context, uuid string) (*entity.UserChat, error) {
	if c, ok := s.chats[uuid]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserChatRepo) ListUserChatsByUser(ctx context.Context, userUuid string) ([]entity.UserChat, error) {
	out := make([]entity.UserChat, 0)
	for _, c := range s.chats {
		if c.UserUuid == userUuid {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (s *stubUserChatRepo) DeleteUserChat(ctx context.Context, uuid string, userUuid string) (bool, error) {
	if c, ok := s.chats[uuid]; ok && c.UserUuid == userUuid {
		delete(s.chats, uuid)
		return true, nil
	}
	return false, nil
}

func TestHistoryService(t *testing.T) {
	ctx := context.Background()

	messages := []chatbot.ChatTurn{
		{Role: "user", Content: "how many passengers survived"},
		{Role: "assistant", Content: "The answer is 342."},
	}

	t.Run("保存后可按用户读回", func(t *testing.T) {
		repo := newStubUserChatRepo()
		svc := NewHistoryService(repo)

		saved, err := svc.SaveChat(ctx, "u1", &request.SaveChatRequest{Messages: messages})
		require.NoError(t, err)
		require.NotEmpty(t, saved.Uuid)

		list, err := svc.ListChats(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, list, 1)

		detail, err := svc.GetChat(ctx, "u1", saved.Uuid)
		require.NoError(t, err)
		assert.Equal(t, messages, detail.Messages)
	})

	t.Run("未指定标题时取第一条用户消息", func(t *testing.T) {
		repo := newStubUserChatRepo()
		svc := NewHistoryService(repo)

		saved, err := svc.SaveChat(ctx, "u1", &request.SaveChatRequest{Messages: messages})
		require.NoError(t, err)
		assert.Equal(t, "how many passengers survived", repo.chats[saved.Uuid].Title)
	})

	t.Run("超长标题截断到 30 个字符", func(t *testing.T) {
		repo := newStubUserChatRepo()
		svc := NewHistoryService(repo)

		long := strings.Repeat("q", 80)
		saved, err := svc.SaveChat(ctx, "u1", &request.SaveChatRequest{Messages: []chatbot.ChatTurn{{Role: "user", Content: long}}})
		require.NoError(t, err)
		assert.Len(t, repo.chats[saved.Uuid].Title, 30)
	})

	t.Run("不能读取他人对话", func(t *testing.T) {
		repo := newStubUserChatRepo()
		svc := NewHistoryService(repo)

		saved, err := svc.SaveChat(ctx, "u1", &request.SaveChatRequest{Messages: messages})
		require.NoError(t, err)

		_, err = svc.GetChat(ctx, "u2", saved.Uuid)
		require.Error(t, err)
		var ce *xerr.CodeError
		assert.ErrorAs(t, err, &ce)
	})

	t.Run("不能覆盖他人对话", func(t *testing.T) {
		repo := newStubUserChatRepo()
		svc := NewHistoryService(repo)

		saved, err := svc.SaveChat(ctx, "u1", &request.SaveChatRequest{Messages: messages})
		require.NoError(t, err)

		_, err = svc.SaveChat(ctx, "u2", &request.SaveChatRequest{Uuid: saved.Uuid, Messages: messages})
		require.Error(t, err)
	})

	t.Run("删除后列表为空", func(t *testing.T) {
		repo := newStubUserChatRepo()
		svc := NewHistoryService(repo)

		saved, err := svc.SaveChat(ctx, "u1", &request.SaveChatRequest{Messages: messages})
		require.NoError(t, err)
		require.NoError(t, svc.DeleteChat(ctx, "u1", saved.Uuid))

		list, err := svc.ListChats(ctx, "u1")
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("删除不存在的对话报错", func(t *testing.T) {
		svc := NewHistoryService(newStubUserChatRepo())
		assert.Error(t, svc.DeleteChat(ctx, "u1", "missing"))
	})

	t.Run("空消息列表拒绝保存", func(t *testing.T) {
		svc := NewHistoryService(newStubUserChatRepo())
		_, err := svc.SaveChat(ctx, "u1", &request.SaveChatRequest{})
		assert.Error(t, err)
	})
}
