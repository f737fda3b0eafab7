package sqlstore

import (
	"testing"
	"time"

	"github.com/koustreak/docdeck/internal/document"
	"github.com/koustreak/docdeck/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConditions(t *testing.T) {
	conds, err := Conditions(document.MustParse(`{"name":"Ada","age":{"$gte":30},"active":true,"note":null}`))
	require.NoError(t, err)

	assert.Equal(t, []Cond{
		{Column: "name", Op: "=", Value: "Ada"},
		{Column: "age", Op: ">=", Value: int64(30)},
		{Column: "active", Op: "=", Value: true},
		{Column: "note", Op: "=", Value: nil},
	}, conds)
}

func TestConditions_Empty(t *testing.T) {
	conds, err := Conditions(document.Object())
	require.NoError(t, err)
	assert.Empty(t, conds)

	conds, err = Conditions(document.Null())
	require.NoError(t, err)
	assert.Nil(t, conds)
}

func TestConditions_Rejects(t *testing.T) {
	for _, text := range []string{
		`[1]`,
		`{"$or":[{"a":1}]}`,
		`{"a":{"$in":[1,2]}}`,
		`{"a":{"$gt":1,"$lt":5}}`,
		`{"a":{"$gt":{"x":1}}}`,
		`{"a":[1,2]}`,
	} {
		t.Run(text, func(t *testing.T) {
			_, err := Conditions(document.MustParse(text))
			assert.True(t, errs.IsInvalidFilter(err), "got %v", err)
		})
	}
}

func TestAssignments(t *testing.T) {
	values, err := Assignments(document.MustParse(`{"name":"Ada","tags":["a","b"],"meta":{"k":1},"score":1.5}`))
	require.NoError(t, err)

	assert.Equal(t, []Assignment{
		{Column: "name", Value: "Ada"},
		{Column: "tags", Value: `["a","b"]`},
		{Column: "meta", Value: `{"k":1}`},
		{Column: "score", Value: 1.5},
	}, values)

	_, err = Assignments(document.String("x"))
	assert.True(t, errs.IsInvalidInput(err))
}

func TestColumn(t *testing.T) {
	assert.True(t, Column("BIGINT", []byte("42")).Equal(document.Int(42)))
	assert.True(t, Column("DOUBLE", []byte("2.5")).Equal(document.Float(2.5)))
	assert.Equal(t, "19.99", Column("DECIMAL", []byte("19.99")).Text())
	assert.Equal(t, `{"a":1}`, Column("JSON", []byte(`{"a":1}`)).Text())

	ts := time.Date(2024, 3, 1, 8, 0, 0, 0, time.FixedZone("CET", 3600))
	assert.Equal(t, "2024-03-01T07:00:00.000Z", Column("TIMESTAMP", ts).Text())
	assert.True(t, Column("", nil).IsNull())
	assert.True(t, Column("INT8", int64(3)).Equal(document.Int(3)))
}
