package database

import (
	"strings"

	"github.com/huandu/go-sqlbuilder"
)

// Statement builders for the PostgreSQL flavor. Values passed to them become $n placeholders
// with bound args.
type (
	SelectBuilder = sqlbuilder.SelectBuilder
	InsertBuilder = sqlbuilder.InsertBuilder
	UpdateBuilder = sqlbuilder.UpdateBuilder
	DeleteBuilder = sqlbuilder.DeleteBuilder
)

const flavor = sqlbuilder.PostgreSQL

func NewSelectBuilder() *SelectBuilder {
	return flavor.NewSelectBuilder()
}

func NewInsertBuilder() *InsertBuilder {
	return flavor.NewInsertBuilder()
}

func NewUpdateBuilder() *UpdateBuilder {
	return flavor.NewUpdateBuilder()
}

func NewDeleteBuilder() *DeleteBuilder {
	return flavor.NewDeleteBuilder()
}

// CurrentTimestamp is the storage clock, usable as a value in Assign or Values.
func CurrentTimestamp() any {
	return sqlbuilder.Raw("CURRENT_TIMESTAMP")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern turns a literal into a LIKE/ILIKE substring pattern. Wildcards typed by the
// caller match literally.
func ContainsPattern(value string) string {
	return "%" + likeEscaper.Replace(value) + "%"
}
