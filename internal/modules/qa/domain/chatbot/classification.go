package chatbot

import "strings"

// Classification 问题路由类别
type Classification string

const (
	ClassDatabase       Classification = "database"
	ClassKnowledge      Classification = "knowledge"
	ClassConversational Classification = "conversational"
	ClassIrrelevant     Classification = "irrelevant"
)

// classificationPriority 固定优先级：database → knowledge → conversational → irrelevant
//
// 模型返回的文本可能很啰嗦（"This is a database question because..."），
// 按优先级做子串匹配可以让结果保持确定：第一个命中的关键词获胜。
var classificationPriority = []Classification{
	ClassDatabase,
	ClassKnowledge,
	ClassConversational,
	ClassIrrelevant,
}

// ParseClassification 把模型的分类输出解析为 Classification。
// 小写后按固定优先级做子串匹配，全部未命中时归为 irrelevant。
func ParseClassification(raw string) Classification {
	text := strings.ToLower(raw)
	for _, c := range classificationPriority {
		if strings.Contains(text, string(c)) {
			return c
		}
	}
	return ClassIrrelevant
}
