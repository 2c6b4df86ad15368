package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/text-to-sql-chat/internal/domain"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantText  string
		wantTable bool
		wantTrace string
		wantPts   int
		wantHint  string
		omissions int
	}{
		{
			name:     "answer only",
			body:     `{"answer":"hello"}`,
			wantText: "hello",
		},
		{
			name: "missing answer",
			body: `{}`,
		},
		{
			name:      "table and trace together",
			body:      `{"answer":"ok","columns":["a"],"data":[{"a":1}],"sql":"SELECT a FROM t"}`,
			wantText:  "ok",
			wantTable: true,
			wantTrace: "SELECT a FROM t",
		},
		{
			name:      "columns with null data",
			body:      `{"answer":"ok","columns":["a"],"data":null}`,
			wantText:  "ok",
			omissions: 1,
		},
		{
			name:      "data without columns",
			body:      `{"answer":"ok","data":[{"a":1}]}`,
			wantText:  "ok",
			omissions: 1,
		},
		{
			name:      "empty sql is no trace",
			body:      `{"answer":"ok","sql":""}`,
			wantText:  "ok",
			wantTrace: "",
		},
		{
			name:     "series and hint",
			body:     `{"answer":"trend","graphData":[{"x":"Jan","y":1},{"x":"Jan","y":2}],"hint":"try filtering"}`,
			wantText: "trend",
			wantPts:  2,
			wantHint: "try filtering",
		},
		{
			name:      "malformed series keeps table",
			body:      `{"answer":"x","columns":["a"],"data":[],"graphData":"bad"}`,
			wantText:  "x",
			wantTable: true,
			omissions: 1,
		},
		{
			name:      "non string answer",
			body:      `{"answer":42}`,
			omissions: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, omissions, err := Normalize([]byte(tt.body))
			require.NoError(t, err)

			assert.Equal(t, domain.RoleAssistant, msg.Role)
			assert.Equal(t, tt.wantText, msg.Text)
			assert.Equal(t, tt.wantTable, msg.HasTable())
			assert.Len(t, omissions, tt.omissions)

			if msg.Result == nil {
				assert.Empty(t, tt.wantTrace)
				assert.Zero(t, tt.wantPts)
				assert.Empty(t, tt.wantHint)
				return
			}
			assert.Equal(t, tt.wantTrace, msg.Result.Trace)
			assert.Equal(t, tt.wantHint, msg.Result.Hint)
			if tt.wantPts > 0 {
				require.NotNil(t, msg.Result.Series)
				assert.Len(t, msg.Result.Series.Points, tt.wantPts)
			} else {
				assert.Nil(t, msg.Result.Series)
			}
		})
	}
}

func TestNormalize_InvalidBody(t *testing.T) {
	for _, body := range []string{``, `not json`, `[1,2]`, `"answer"`, `{"answer":`} {
		_, _, err := Normalize([]byte(body))
		assert.Error(t, err, "body %q", body)
	}
}

func TestNormalize_TableShape(t *testing.T) {
	body := `{"answer":"ok","columns":["month","revenue","month"],"data":[{"month":"Jan","revenue":100},{"month":"Feb"}]}`

	msg, omissions, err := Normalize([]byte(body))
	require.NoError(t, err)
	require.True(t, msg.HasTable())

	table := msg.Result.Table
	assert.Equal(t, []string{"month", "revenue"}, table.Columns)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "Jan", table.Rows[0]["month"])
	assert.Equal(t, float64(100), table.Rows[0]["revenue"])

	v, ok := table.Rows[1]["revenue"]
	assert.True(t, ok)
	assert.Nil(t, v)

	// duplicate column + filled cell
	assert.Len(t, omissions, 2)
}

func TestNormalizeHistory(t *testing.T) {
	body := `{"messages":[
		{"role":"user","content":"show users","created_at":"2024-05-01T10:00:00Z","sql":"ignored"},
		{"role":"assistant","text":"3 users","columns":["name"],"data":[{"name":"a"}]},
		{"role":"system","content":"skip me"},
		{"role":"assistant","content":"plain"}
	]}`

	messages, omissions, err := NormalizeHistory([]byte(body))
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Len(t, omissions, 1)

	assert.Equal(t, domain.RoleUser, messages[0].Role)
	assert.Equal(t, "show users", messages[0].Text)
	assert.Nil(t, messages[0].Result)
	assert.Equal(t, 2024, messages[0].CreatedAt.Year())

	assert.Equal(t, "3 users", messages[1].Text)
	assert.True(t, messages[1].HasTable())

	assert.Equal(t, "plain", messages[2].Text)
	assert.Nil(t, messages[2].Result)
}

func TestNormalizeHistory_Invalid(t *testing.T) {
	_, _, err := NormalizeHistory([]byte(`[]`))
	assert.Error(t, err)

	messages, _, err := NormalizeHistory([]byte(`{}`))
	require.NoError(t, err)
	assert.Empty(t, messages)
}
