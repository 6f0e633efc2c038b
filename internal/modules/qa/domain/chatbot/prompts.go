package chatbot

import (
	"fmt"
	"strings"
)

const rewritePromptTemplate = `
Given the following conversation history and a follow-up question, rephrase the follow-up question to be a standalone question that can be understood without the history.

Chat History:
%s

Follow-up Question: %s

Standalone Question:
`

// BuildRewritePrompt 构造问题改写提示词。history 需要调用方先用 TrimHistory 截断。
func BuildRewritePrompt(history []ChatTurn, question string) string {
	lines := make([]string, 0, len(history))
	for _, turn := range history {
		lines = append(lines, fmt.Sprintf("%s: %s", turn.Role, turn.Content))
	}
	return fmt.Sprintf(rewritePromptTemplate, strings.Join(lines, "\n"), question)
}

const classifyPromptTemplate = `
Classify the user's question into ONE of the following categories:
- database: For questions about Titanic passengers, such as counts, details, ages, survival, fares, or lists (e.g., "show me details of women", "how many men").
- knowledge: For questions about company policy, employment, leave, travel, office environment, or any specific terms defined in the documents.
- conversational: ONLY for greetings (hello, hi) or simple pleasantries.
- irrelevant: For questions completely unrelated to the Titanic dataset or company policy.

Return ONLY one word.

Question:
%s
`

// BuildClassifyPrompt 构造问题分类提示词
func BuildClassifyPrompt(question string) string {
	return fmt.Sprintf(classifyPromptTemplate, question)
}

const knowledgePromptTemplate = `You are a helpful assistant. Your task is to answer the user's question based *only* on the provided context.
Do not mention the context in your answer. Just provide the answer directly.
If the information is not in the context, state that the answer is not available in the provided data.

### Context:
%s

### User's Question:
%s

### Answer:
`

// BuildKnowledgePrompt 构造知识库问答提示词，context 为召回片段原文
func BuildKnowledgePrompt(results []RetrievalResult, question string) string {
	contents := make([]string, 0, len(results))
	for _, r := range results {
		contents = append(contents, r.Content)
	}
	return fmt.Sprintf(knowledgePromptTemplate, strings.Join(contents, "\n\n"), question)
}

// RenderKnowledgeFallback 模型生成失败时的确定性兜底：直接罗列召回片段。
func RenderKnowledgeFallback(results []RetrievalResult) string {
	if len(results) == 0 {
		return AnswerNoKnowledge
	}
	var b strings.Builder
	b.WriteString("Here is the most relevant information found:\n")
	for _, r := range results {
		b.WriteString("\n- ")
		b.WriteString(strings.TrimSpace(r.Content))
	}
	return b.String()
}
