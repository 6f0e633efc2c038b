package chatbot

// 固定回复文案。conversational / irrelevant / 各类兜底分支不调用模型，直接返回这些文本。
const (
	AnswerGreeting       = "Hello! I can answer questions about the Titanic passenger dataset or the ingested company documents. What would you like to know?"
	AnswerIrrelevant     = "Please ask a question related to the dataset."
	AnswerUnsafeQuery    = "Unsafe query detected."
	AnswerNoRecords      = "No records found."
	AnswerNoKnowledge    = "No relevant information found."
	AnswerScalarTemplate = "The answer is %v."
)
