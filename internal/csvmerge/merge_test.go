package csvmerge

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeByKey(t *testing.T) {
	a := strings.NewReader("email,first_name,phone\nmaria@example.com,Maria,0917\npaolo@example.com,Paolo,\n")
	b := strings.NewReader("Email,phone,skills\nMARIA@example.com,,english\npaolo@example.com,0918,chat\nnew@example.com,,\n")

	table, err := Merge("email", a, b)
	require.NoError(t, err)
	assert.Equal(t, []string{"email", "first_name", "phone", "skills"}, table.Header)
	require.Len(t, table.Rows, 3)
	assert.Equal(t, []string{"maria@example.com", "Maria", "0917", "english"}, table.Rows[0], "empty values never overwrite")
	assert.Equal(t, []string{"paolo@example.com", "Paolo", "0918", "chat"}, table.Rows[1])
	assert.Equal(t, []string{"new@example.com", "", "", ""}, table.Rows[2])

	var buf bytes.Buffer
	require.NoError(t, table.Write(&buf))
	assert.True(t, strings.HasPrefix(buf.String(), "email,first_name,phone,skills\n"))
}

func TestMergeKeepsRowsWithoutKey(t *testing.T) {
	table, err := Merge("email", strings.NewReader("email,name\n,Anon\n,Other\n"))
	require.NoError(t, err)
	assert.Len(t, table.Rows, 2)
}

func TestMergeMissingKeyColumn(t *testing.T) {
	_, err := Merge("email", strings.NewReader("name\nMaria\n"))
	assert.ErrorContains(t, err, `key column "email" not found`)
}
