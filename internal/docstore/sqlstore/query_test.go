package sqlstore

import (
	"testing"

	"github.com/koustreak/docdeck/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectBuilder_Postgres(t *testing.T) {
	q, args, err := Select(Table{Name: "users"}, DialectPostgres).
		Where(Cond{Column: "age", Op: ">", Value: int64(30)}, Cond{Column: "name", Op: "=", Value: "Ada"}).
		Limit(20).
		Offset(40).
		Build()

	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "users" WHERE "age" > $1 AND "name" = $2 LIMIT $3 OFFSET $4`, q)
	assert.Equal(t, []any{int64(30), "Ada", int64(20), int64(40)}, args)
}

func TestSelectBuilder_MySQL(t *testing.T) {
	q, args, err := Select(Table{Schema: "shop", Name: "orders"}, DialectMySQL).
		Where(Cond{Column: "status", Op: "<>", Value: "void"}).
		Limit(5).
		Build()

	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM `shop`.`orders` WHERE `status` <> ? LIMIT ?", q)
	assert.Equal(t, []any{"void", int64(5)}, args)
}

func TestSelectBuilder_Count(t *testing.T) {
	q, args, err := Select(Table{Name: "users"}, DialectPostgres).
		Where(Cond{Column: "deleted", Op: "=", Value: nil}).
		Limit(10).
		Count().
		Build()

	require.NoError(t, err)
	assert.Equal(t, `SELECT COUNT(*) FROM "users" WHERE "deleted" IS NULL`, q)
	assert.Empty(t, args)
}

func TestSelectBuilder_RejectsOperator(t *testing.T) {
	_, _, err := Select(Table{Name: "users"}, DialectPostgres).
		Where(Cond{Column: "name", Op: "; DROP TABLE users; --", Value: 1}).
		Build()
	assert.True(t, errs.IsInvalidFilter(err))
}

func TestSelectBuilder_MySQLOffsetWithoutLimit(t *testing.T) {
	q, _, err := Select(Table{Name: "t"}, DialectMySQL).Offset(3).Build()
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM `t` LIMIT 18446744073709551615 OFFSET ?", q)
}

func TestQuote(t *testing.T) {
	assert.Equal(t, `"we""ird"`, DialectPostgres.Quote(`we"ird`))
	assert.Equal(t, "`we``ird`", DialectMySQL.Quote("we`ird"))
}

func TestBuildInsert(t *testing.T) {
	values := []Assignment{{Column: "name", Value: "Ada"}, {Column: "age", Value: int64(36)}}

	q, args := BuildInsert(DialectPostgres, Table{Name: "users"}, values, "id")
	assert.Equal(t, `INSERT INTO "users" ("name", "age") VALUES ($1, $2) RETURNING "id"`, q)
	assert.Equal(t, []any{"Ada", int64(36)}, args)

	q, _ = BuildInsert(DialectMySQL, Table{Schema: "app", Name: "users"}, values, "id")
	assert.Equal(t, "INSERT INTO `app`.`users` (`name`, `age`) VALUES (?, ?)", q)

	q, _ = BuildInsert(DialectPostgres, Table{Name: "users"}, nil, "")
	assert.Equal(t, `INSERT INTO "users" DEFAULT VALUES`, q)

	q, _ = BuildInsert(DialectMySQL, Table{Name: "users"}, nil, "")
	assert.Equal(t, "INSERT INTO `users` () VALUES ()", q)
}

func TestBuildUpdate(t *testing.T) {
	q, args, err := BuildUpdate(DialectPostgres, Table{Name: "users"},
		[]Assignment{{Column: "name", Value: "Grace"}},
		Cond{Column: "id", Op: "=", Value: "7", Text: true})

	require.NoError(t, err)
	assert.Equal(t, `UPDATE "users" SET "name" = $1 WHERE CAST("id" AS text) = $2`, q)
	assert.Equal(t, []any{"Grace", "7"}, args)

	_, _, err = BuildUpdate(DialectPostgres, Table{Name: "users"}, nil)
	assert.True(t, errs.IsInvalidInput(err))
}

func TestBuildDelete(t *testing.T) {
	q, args, err := BuildDelete(DialectMySQL, Table{Schema: "app", Name: "users"},
		Cond{Column: "id", Op: "=", Value: "7", Text: true})

	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM `app`.`users` WHERE CAST(`id` AS CHAR) = ?", q)
	assert.Equal(t, []any{"7"}, args)
}
