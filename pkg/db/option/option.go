package option

import (
	"strings"

	"github.com/smallbiznis/referralhub/pkg/db/pagination"
	"gorm.io/gorm"
)

type QueryOption interface {
	Apply(db *gorm.DB) *gorm.DB
}

type QueryOptionFunc func(db *gorm.DB) *gorm.DB

func (f QueryOptionFunc) Apply(db *gorm.DB) *gorm.DB {
	return f(db)
}

func ApplyPagination(page pagination.Pagination) QueryOption {
	return QueryOptionFunc(func(db *gorm.DB) *gorm.DB {
		n := page.Normalize()
		return db.Offset(n.Offset()).Limit(n.Limit)
	})
}

// ApplySearch adds a case-insensitive substring match of term over columns.
// Column names come from code, never from user input.
func ApplySearch(term string, columns ...string) QueryOption {
	return QueryOptionFunc(func(db *gorm.DB) *gorm.DB {
		term = strings.TrimSpace(term)
		if term == "" || len(columns) == 0 {
			return db
		}
		pattern := "%" + EscapeLike(strings.ToLower(term)) + "%"
		clauses := make([]string, 0, len(columns))
		args := make([]any, 0, len(columns))
		for _, column := range columns {
			clauses = append(clauses, "LOWER("+column+") LIKE ? ESCAPE '!'")
			args = append(args, pattern)
		}
		return db.Where("("+strings.Join(clauses, " OR ")+")", args...)
	})
}

// EscapeLike escapes LIKE wildcards with '!' so user input matches literally.
// '!' needs no quoting in any supported dialect, unlike a backslash.
func EscapeLike(value string) string {
	replacer := strings.NewReplacer(`!`, `!!`, `%`, `!%`, `_`, `!_`)
	return replacer.Replace(value)
}
