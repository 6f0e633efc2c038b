package sqlgen

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DataLink/internal/modules/qa/domain/chatbot"
	"DataLink/internal/modules/qa/domain/repository"
)

func TestExtractSQL(t *testing.T) {
	t.Run("裸 SQL 原样返回", func(t *testing.T) {
		assert.Equal(t, "SELECT COUNT(*) FROM titanic;",
			ExtractSQL("  SELECT COUNT(*) FROM titanic;\n"))
	})

	t.Run("带语言标记的围栏", func(t *testing.T) {
		raw := "```sql\nSELECT * FROM titanic WHERE sex = 'female';\n```"
		assert.Equal(t, "SELECT * FROM titanic WHERE sex = 'female';", ExtractSQL(raw))
	})

	t.Run("无语言标记的围栏", func(t *testing.T) {
		raw := "```\nSELECT COUNT(*) FROM titanic;\n```"
		assert.Equal(t, "SELECT COUNT(*) FROM titanic;", ExtractSQL(raw))
	})

	t.Run("围栏外带解释文字时取第一个围栏", func(t *testing.T) {
		raw := "Here is the query:\n```sql\nSELECT 1;\n```\nHope this helps!"
		assert.Equal(t, "SELECT 1;", ExtractSQL(raw))
	})

	t.Run("游离围栏标记被剥掉", func(t *testing.T) {
		assert.Equal(t, "SELECT 1;", ExtractSQL("```sql SELECT 1;"))
	})
}

func TestCheckSafety(t *testing.T) {
	t.Run("SELECT 放行", func(t *testing.T) {
		assert.NoError(t, CheckSafety("SELECT COUNT(*) FROM titanic WHERE survived = 1;"))
	})

	t.Run("写操作关键词全部拦截", func(t *testing.T) {
		cases := map[string]string{
			"DROP TABLE titanic;":                        "drop",
			"delete from titanic":                        "delete",
			"UPDATE titanic SET fare = 0":                "update",
			"INSERT INTO titanic VALUES (1)":             "insert",
			"ALTER TABLE titanic ADD COLUMN x INT":       "alter",
			"TRUNCATE titanic":                           "truncate",
			"SELECT 1; DROP TABLE titanic;":              "drop",
			"select * from titanic where name = 'DrOp'":  "drop",
		}
		for sql, kw := range cases {
			err := CheckSafety(sql)
			require.Error(t, err, sql)
			var unsafe *chatbot.UnsafeQueryError
			require.ErrorAs(t, err, &unsafe, sql)
			assert.Equal(t, kw, unsafe.Keyword, sql)
		}
	})

	t.Run("非 SELECT 开头拦截", func(t *testing.T) {
		err := CheckSafety("SHOW TABLES;")
		var unsafe *chatbot.UnsafeQueryError
		require.True(t, errors.As(err, &unsafe))
		assert.Equal(t, "non-select statement", unsafe.Keyword)
	})

	t.Run("前导空白不影响判定", func(t *testing.T) {
		assert.NoError(t, CheckSafety("  \n select 1"))
	})
}

func TestFormatResult(t *testing.T) {
	t.Run("零行返回固定文案", func(t *testing.T) {
		assert.Equal(t, chatbot.AnswerNoRecords, FormatResult(&repository.SQLResult{Columns: []string{"c"}}))
		assert.Equal(t, chatbot.AnswerNoRecords, FormatResult(nil))
	})

	t.Run("单行单列用标量模板", func(t *testing.T) {
		res := &repository.SQLResult{Columns: []string{"COUNT(*)"}, Rows: [][]any{{int64(342)}}}
		assert.Equal(t, "The answer is 342.", FormatResult(res))
	})

	t.Run("单行单列 NULL", func(t *testing.T) {
		res := &repository.SQLResult{Columns: []string{"age"}, Rows: [][]any{{nil}}}
		assert.Equal(t, "The answer is NULL.", FormatResult(res))
	})

	t.Run("多行渲染为表格文本", func(t *testing.T) {
		res := &repository.SQLResult{
			Columns: []string{"sex", "COUNT(*)"},
			Rows: [][]any{
				{[]byte("female"), int64(314)},
				{[]byte("male"), int64(577)},
			},
		}
		got := FormatResult(res)
		assert.Equal(t, "Query result (2 rows):\nsex | COUNT(*)\nfemale | 314\nmale | 577", got)
	})

	t.Run("浮点不带多余零", func(t *testing.T) {
		res := &repository.SQLResult{Columns: []string{"avg"}, Rows: [][]any{{29.5}}}
		assert.Equal(t, "The answer is 29.5.", FormatResult(res))
	})
}

func TestBuildPrompt(t *testing.T) {
	got := BuildPrompt("how many passengers survived?")
	assert.Contains(t, got, "table_name: titanic")
	assert.Contains(t, got, "User Question:\nhow many passengers survived?")
}
