package llm

import (
	"context"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// Completer 单轮补全的薄封装，承载默认采样参数。
type Completer struct {
	cm          model.BaseChatModel
	temperature float32
	maxTokens   int
}

func NewCompleter(cm model.BaseChatModel, temperature float32, maxTokens int) *Completer {
	return &Completer{cm: cm, temperature: temperature, maxTokens: maxTokens}
}

// Complete 发送单条 user 消息并返回纯文本回复。
// 传输错误原样返回；模型成功但回复为空时返回 ("", nil)，由调用方区分处理。
func (c *Completer) Complete(ctx context.Context, prompt string) (string, error) {
	return c.CompleteMessages(ctx, []*schema.Message{schema.UserMessage(prompt)})
}

func (c *Completer) CompleteMessages(ctx context.Context, msgs []*schema.Message) (string, error) {
	opts := make([]model.Option, 0, 2)
	if c.temperature > 0 {
		opts = append(opts, model.WithTemperature(c.temperature))
	}
	if c.maxTokens > 0 {
		opts = append(opts, model.WithMaxTokens(c.maxTokens))
	}
	out, err := c.cm.Generate(ctx, msgs, opts...)
	if err != nil {
		return "", err
	}
	if out == nil {
		return "", nil
	}
	return strings.TrimSpace(out.Content), nil
}
