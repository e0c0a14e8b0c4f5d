// Package table filters, sorts and paginates work cards for the orders view.
package table

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

const (
	PageSize    = 10
	Placeholder = "No Results Found"
)

const (
	ColumnOrderedBy = "orderedBy"
	ColumnName      = "name"
	ColumnStatus    = "status"
	ColumnEndDate   = "endDate"
)

type WorkCard struct {
	OrderedBy      string    `json:"orderedBy"`
	WorkName       string    `json:"workName"`
	WorkStatus     string    `json:"workStatus"`
	CompletionDate time.Time `json:"completionDate"`
}

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// State is the table's view state. The zero value is not usable, use New.
type State struct {
	SortColumn string
	Order      Direction
	Page       int
	Query      string
}

func New() *State {
	return &State{Order: Asc, Page: 1}
}

// Sort selects a column. Selecting the active ascending column again flips it to descending,
// anything else sorts ascending.
func (s *State) Sort(column string) {
	if s.SortColumn == column && s.Order == Asc {
		s.Order = Desc
	} else {
		s.Order = Asc
	}
	s.SortColumn = column
}

// Search sets the query; a changed query starts over on the first page.
func (s *State) Search(q string) {
	if q != s.Query {
		s.Page = 1
	}
	s.Query = q
}

func (s *State) SetPage(p int) {
	s.Page = p
}

type View struct {
	Rows        []WorkCard `json:"rows,omitempty"`
	Page        int        `json:"page"`
	Pages       int        `json:"pages"`
	Total       int        `json:"total"`
	SortColumn  string     `json:"sortColumn,omitempty"`
	Order       Direction  `json:"order"`
	Placeholder string     `json:"placeholder,omitempty"`
}

// Render applies the state to cards.
func (s *State) Render(cards []WorkCard) View {
	filtered := Filter(cards, s.Query)
	v := View{
		Page:       s.Page,
		Pages:      PageCount(len(filtered)),
		Total:      len(filtered),
		SortColumn: s.SortColumn,
		Order:      s.Order,
	}
	if len(filtered) == 0 {
		v.Placeholder = Placeholder
		return v
	}
	SortCards(filtered, s.SortColumn, s.Order)
	v.Rows = Paginate(filtered, s.Page)
	return v
}

// Filter keeps the cards whose work name contains q, ignoring case.
func Filter(cards []WorkCard, q string) []WorkCard {
	q = strings.ToLower(q)
	out := make([]WorkCard, 0, len(cards))
	for _, c := range cards {
		if strings.Contains(strings.ToLower(c.WorkName), q) {
			out = append(out, c)
		}
	}
	return out
}

// SortCards sorts in place. An unknown column leaves the order untouched.
func SortCards(cards []WorkCard, column string, dir Direction) {
	sign := 1
	if dir == Desc {
		sign = -1
	}

	var cmp func(a, b WorkCard) int
	switch column {
	case ColumnOrderedBy, ColumnName, ColumnStatus:
		col := collate.New(language.Und)
		field := textField(column)
		cmp = func(a, b WorkCard) int { return col.CompareString(field(a), field(b)) }
	case ColumnEndDate:
		cmp = func(a, b WorkCard) int { return a.CompletionDate.Compare(b.CompletionDate) }
	default:
		return
	}

	sort.SliceStable(cards, func(i, j int) bool {
		return sign*cmp(cards[i], cards[j]) < 0
	})
}

func textField(column string) func(WorkCard) string {
	switch column {
	case ColumnOrderedBy:
		return func(c WorkCard) string { return c.OrderedBy }
	case ColumnStatus:
		return func(c WorkCard) string { return c.WorkStatus }
	default:
		return func(c WorkCard) string { return c.WorkName }
	}
}

func PageCount(n int) int {
	return (n + PageSize - 1) / PageSize
}

// Paginate returns the cards on a 1-based page. Pages out of range are empty.
func Paginate(cards []WorkCard, page int) []WorkCard {
	start := (page - 1) * PageSize
	if page < 1 || start >= len(cards) {
		return nil
	}
	end := min(start+PageSize, len(cards))
	return cards[start:end]
}
