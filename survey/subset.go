package survey

import (
	"fmt"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/text/cases"
)

// Predicate is one column = answer condition of a subset.
type Predicate struct {
	Column     string
	Answer     string
	IgnoreCase bool
}

func (p Predicate) String() string {
	op := "="
	if p.IgnoreCase {
		op = "~"
	}
	return fmt.Sprintf("%s %s %q", p.Column, op, p.Answer)
}

// Subset is an immutable set of respondent rows of one table.
type Subset struct {
	predicates []Predicate
	members    *roaring.Bitmap
	tableID    string
	rowCount   int
}

type SubsetOption func(*subsetConfig)

type subsetConfig struct {
	ignoreCase bool
}

// IgnoreCase matches answers with Unicode case folding.
func IgnoreCase() SubsetOption {
	return func(c *subsetConfig) {
		c.ignoreCase = true
	}
}

// CreateSubset selects the respondents whose answers to column include answer.
func (t *Table) CreateSubset(column, answer string, opts ...SubsetOption) (*Subset, error) {
	cfg := &subsetConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	q, err := t.schema.Question(column)
	if err != nil {
		return nil, err
	}

	want := strings.TrimSpace(answer)
	match := func(a string) bool { return a == want }
	if cfg.ignoreCase {
		fold := cases.Fold()
		want = fold.String(want)
		match = func(a string) bool { return fold.String(a) == want }
	}

	members := roaring.New()
	t.answers(q, func(row int, answers []string) {
		for _, a := range answers {
			if match(a) {
				members.Add(uint32(row))
				return
			}
		}
	})

	return &Subset{
		predicates: []Predicate{{Column: q.Column, Answer: strings.TrimSpace(answer), IgnoreCase: cfg.ignoreCase}},
		members:    members,
		tableID:    t.id,
		rowCount:   len(t.rows),
	}, nil
}

// All returns the subset holding every respondent of the table.
func (t *Table) All() *Subset {
	members := roaring.New()
	members.AddRange(0, uint64(len(t.rows)))
	return &Subset{
		members:  members,
		tableID:  t.id,
		rowCount: len(t.rows),
	}
}

func (s *Subset) Size() int {
	return int(s.members.GetCardinality())
}

// PercentageOf returns Size as a share of total, 0 when total is 0.
func (s *Subset) PercentageOf(total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(s.Size()) / float64(total) * 100
}

// Percentage returns Size as a share of the table's respondents.
func (s *Subset) Percentage() float64 {
	return s.PercentageOf(s.rowCount)
}

func (s *Subset) Contains(row int) bool {
	if row < 0 {
		return false
	}
	return s.members.Contains(uint32(row))
}

// Members lists the row indices in ascending order.
func (s *Subset) Members() []int {
	rows := s.members.ToArray()
	out := make([]int, len(rows))
	for i, r := range rows {
		out[i] = int(r)
	}
	return out
}

func (s *Subset) Predicates() []Predicate {
	return append([]Predicate(nil), s.predicates...)
}

func (s *Subset) Description() string {
	if len(s.predicates) == 0 {
		return "all respondents"
	}
	parts := make([]string, len(s.predicates))
	for i, p := range s.predicates {
		parts[i] = p.String()
	}
	return strings.Join(parts, " AND ")
}

// Intersect keeps the rows present in both subsets.
func (s *Subset) Intersect(other *Subset) (*Subset, error) {
	if other == nil || s.tableID != other.tableID {
		return nil, ErrIncompatibleSubset
	}
	predicates := make([]Predicate, 0, len(s.predicates)+len(other.predicates))
	predicates = append(predicates, s.predicates...)
	predicates = append(predicates, other.predicates...)
	return &Subset{
		predicates: predicates,
		members:    roaring.And(s.members, other.members),
		tableID:    s.tableID,
		rowCount:   s.rowCount,
	}, nil
}
