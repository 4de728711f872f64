package pkg

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/simp-lee/catalog/internal/domain"
)

// Query parameter names understood by ParseSearchQuery.
const (
	ParamSearch  = "search"
	ParamPage    = "page"
	ParamPerPage = "perPage"
	ParamSort    = "sort"
	ParamDir     = "dir"
)

// QueryDefaults configures how missing or out-of-range list parameters are
// resolved.
type QueryDefaults struct {
	PerPage    int
	MaxPerPage int
	Sort       string
}

// ParseSearchQuery extracts a 0-based SearchQuery from the request's query
// string. Unparseable numbers fall back to the defaults, perPage is capped at
// MaxPerPage and an unknown direction becomes ascending.
func ParseSearchQuery(c *gin.Context, d QueryDefaults) domain.SearchQuery {
	page, err := strconv.Atoi(c.Query(ParamPage))
	if err != nil || page < 0 {
		page = 0
	}

	perPage, err := strconv.Atoi(c.Query(ParamPerPage))
	if err != nil || perPage < 1 {
		perPage = d.PerPage
	}
	if d.MaxPerPage > 0 && perPage > d.MaxPerPage {
		perPage = d.MaxPerPage
	}

	sort := strings.TrimSpace(c.Query(ParamSort))
	if sort == "" {
		sort = d.Sort
	}

	dir, _ := domain.ParseSortDirection(c.Query(ParamDir))

	return domain.SearchQuery{
		Page:      page,
		PerPage:   perPage,
		Terms:     strings.TrimSpace(c.Query(ParamSearch)),
		Sort:      sort,
		Direction: dir,
	}
}

// Paginate returns a GORM scope that applies LIMIT and OFFSET for the query's
// 0-based page.
func Paginate(q domain.SearchQuery) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(q.Offset()).Limit(q.PerPage)
	}
}

// SortSpec describes which sort keys a listing accepts.
type SortSpec struct {
	// Columns maps public sort keys to column names.
	Columns map[string]string
	// Default is the public key used when the requested one is not in Columns.
	Default string
	// TieBreak is appended in ascending order so equal sort values keep a
	// stable order across pages.
	TieBreak string
}

// Sort returns a GORM scope that orders by the query's sort key. Only columns
// from spec are ever emitted, so the request cannot inject SQL.
func Sort(q domain.SearchQuery, spec SortSpec) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		column, ok := spec.Columns[q.Sort]
		if !ok {
			column, ok = spec.Columns[spec.Default]
		}

		var order []clause.OrderByColumn
		if ok {
			order = append(order, clause.OrderByColumn{
				Column: clause.Column{Name: column},
				Desc:   q.Direction == domain.SortDesc,
			})
		}
		if spec.TieBreak != "" && spec.TieBreak != column {
			order = append(order, clause.OrderByColumn{Column: clause.Column{Name: spec.TieBreak}})
		}
		if len(order) == 0 {
			return db
		}
		return db.Order(clause.OrderBy{Columns: order})
	}
}

// Search returns a GORM scope matching terms as a case-insensitive substring
// of any of the given columns. Blank terms match everything. LIKE wildcards
// in terms are matched literally.
func Search(terms string, columns ...string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		terms = strings.TrimSpace(terms)
		if terms == "" || len(columns) == 0 {
			return db
		}

		pattern := "%" + escapeLike(strings.ToLower(terms)) + "%"
		conds := make([]string, 0, len(columns))
		args := make([]any, 0, len(columns))
		for _, col := range columns {
			if !validFieldName.MatchString(col) {
				continue
			}
			conds = append(conds, "LOWER("+col+`) LIKE ? ESCAPE '\'`)
			args = append(args, pattern)
		}
		if len(conds) == 0 {
			return db
		}
		return db.Where("("+strings.Join(conds, " OR ")+")", args...)
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// validFieldName matches only alphanumeric characters and underscores.
var validFieldName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)
