package sqlgen

import (
	"fmt"
	"regexp"
	"strings"

	"DataLink/internal/modules/qa/domain/chatbot"
	"DataLink/internal/modules/qa/domain/repository"
)

// sqlPromptTemplate NL→SQL 提示词。
// 固定 schema + 取值域 + few-shot 映射（"women" → sex = 'female' 等）内嵌在这里，
// 年龄过滤必须显式排除 NULL，survived 条件只有在问到生还时才允许加。
const sqlPromptTemplate = `You are a MySQL expert tasked with converting natural language questions into MySQL queries for the 'titanic' table.

Table Schema:
- table_name: titanic
- columns:
  - survived: INTEGER (0 = No, 1 = Yes)
  - pclass: INTEGER (Passenger Class: 1, 2, 3)
  - sex: TEXT ('male', 'female')
  - age: FLOAT (can be NULL)
  - sibsp: INTEGER (Number of Siblings/Spouses Aboard)
  - parch: INTEGER (Number of Parents/Children Aboard)
  - fare: FLOAT
  - embarked: TEXT (Port of Embarkation: 'C' = Cherbourg, 'Q' = Queenstown, 'S' = Southampton)

STRICT RULES:
1.  **Return ONLY raw SQL.** No markdown, no explanations, just the query.
2.  Use exact column names and values (e.g., sex = 'female', not 'woman').
3.  When filtering by age, always exclude NULLs (e.g., WHERE age IS NOT NULL AND ...).
4.  For general counts of passengers, use COUNT(*).
5.  For questions about survival, use survived = 1. For non-survival, use survived = 0.
6.  Do NOT add survived = 1 unless the user explicitly asks about survival.
7.  Map 'women'/'woman' to sex = 'female' and 'men'/'man' to sex = 'male'.

Examples:
- User Question: "How many passengers survived?"
  SQL Query: SELECT COUNT(*) FROM titanic WHERE survived = 1;

- User Question: "What is the total count of passengers?"
  SQL Query: SELECT COUNT(*) FROM titanic;

- User Question: "how many passengers were in pclass 1"
  SQL Query: SELECT COUNT(*) FROM titanic WHERE pclass = 1;

- User Question: "count of male and female passengers"
  SQL Query: SELECT sex, COUNT(*) FROM titanic GROUP BY sex;

- User Question: "give me details of women age group between 20 to 50"
  SQL Query: SELECT * FROM titanic WHERE sex = 'female' AND age BETWEEN 20 AND 50;

User Question:
%s

SQL Query:
`

// BuildPrompt 构造 NL→SQL 提示词
func BuildPrompt(question string) string {
	return fmt.Sprintf(sqlPromptTemplate, question)
}

const narratePromptTemplate = `The user asked: %s

The database returned the following result:
%s

Summarize this result in one or two plain sentences for the user. Do not invent numbers that are not in the result.`

// BuildNarratePrompt 构造多行查询结果的转述提示词（可选能力，失败时保留表格文本）
func BuildNarratePrompt(question, rendered string) string {
	return fmt.Sprintf(narratePromptTemplate, question, rendered)
}

// fenceRe 匹配 markdown 代码块（可带 sql 语言标记），捕获内部文本
var fenceRe = regexp.MustCompile("(?is)```(?:sql)?\\s*(.*?)```")

// ExtractSQL 从模型输出中提取候选 SQL。
// 语法是"可选的 markdown 围栏包裹一段 SQL"：优先取第一个围栏内文本，
// 没有围栏时剥掉游离的围栏标记后取全文。
func ExtractSQL(raw string) string {
	s := strings.TrimSpace(raw)
	if m := fenceRe.FindStringSubmatch(s); len(m) == 2 {
		return strings.TrimSpace(m[1])
	}
	s = strings.ReplaceAll(s, "```sql", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// forbiddenKeywords 写操作/DDL 关键词黑名单。
// 子串匹配是粗粒度的文本检查，不是 SQL 解析器：会误伤字符串字面量里的
// 关键词，换取的是任何写语句都到不了数据库。
var forbiddenKeywords = []string{"drop", "delete", "update", "insert", "alter", "truncate"}

// CheckSafety 安全门禁。命中黑名单或不是 SELECT 开头时返回 UnsafeQueryError，
// 调用方返回固定文案且绝不执行该语句。
func CheckSafety(sql string) error {
	lower := strings.ToLower(sql)
	for _, kw := range forbiddenKeywords {
		if strings.Contains(lower, kw) {
			return &chatbot.UnsafeQueryError{Keyword: kw}
		}
	}
	if !strings.HasPrefix(strings.TrimSpace(lower), "select") {
		return &chatbot.UnsafeQueryError{Keyword: "non-select statement"}
	}
	return nil
}

// FormatResult 把查询结果转成确定性的文本：
// 零行 → 固定"没有记录"文案；1 行 1 列 → 标量模板句；其余 → 表格文本。
func FormatResult(res *repository.SQLResult) string {
	if res == nil || len(res.Rows) == 0 {
		return chatbot.AnswerNoRecords
	}
	if len(res.Rows) == 1 && len(res.Rows[0]) == 1 {
		return fmt.Sprintf(chatbot.AnswerScalarTemplate, renderValue(res.Rows[0][0]))
	}
	return RenderRows(res)
}

// RenderRows 表格文本（也是模型转述失败时的兜底输出）
func RenderRows(res *repository.SQLResult) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Query result (%d rows):\n", len(res.Rows)))
	sb.WriteString(strings.Join(res.Columns, " | "))
	sb.WriteString("\n")
	for _, row := range res.Rows {
		cells := make([]string, 0, len(row))
		for _, v := range row {
			cells = append(cells, renderValue(v))
		}
		sb.WriteString(strings.Join(cells, " | "))
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func renderValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(x)
	case float64:
		return fmt.Sprintf("%g", x)
	case float32:
		return fmt.Sprintf("%g", x)
	default:
		return fmt.Sprintf("%v", x)
	}
}
