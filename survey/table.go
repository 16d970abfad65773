package survey

import (
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/pivolan/survey_analyzer/domain/models"
	uuid "github.com/satori/go.uuid"
	"golang.org/x/sync/singleflight"
)

// Table is a loaded survey: the schema plus one row of cells per respondent.
// It never changes after New returns, so it is safe for concurrent readers.
type Table struct {
	id     string
	source string
	schema *Schema
	rows   [][]string // rows[i][slot]; absent cells are ""
	log    *slog.Logger

	distributions sync.Map // column -> *Distribution
	inflight      singleflight.Group
}

// Option configures a Table at construction.
type Option func(*tableConfig)

type tableConfig struct {
	logger *slog.Logger
	source string
}

// WithLogger routes construction diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *tableConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithSource records where the table was read from, for display only.
func WithSource(source string) Option {
	return func(c *tableConfig) {
		c.source = source
	}
}

func applyOptions(opts []Option) *tableConfig {
	cfg := &tableConfig{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// New builds a Table from a grid: header holds the data column names and each
// row holds the cells under them. Rows shorter than the header are padded as
// absent; data columns without a schema entry are dropped.
func New(entries []SchemaEntry, header []string, rows [][]string, opts ...Option) (*Table, error) {
	cfg := applyOptions(opts)
	schema, err := NewSchema(entries)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrEmptyDataset
	}

	// header position -> schema slot, -1 when the column is not in the schema
	positions := make([]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		slot, ok := schema.slot(name)
		if !ok {
			positions[i] = -1
			cfg.logger.Debug("dropping column without schema entry", "column", name)
			continue
		}
		positions[i] = slot
	}

	cells := make([][]string, len(rows))
	for r, row := range rows {
		slots := make([]string, schema.Len())
		for i, value := range row {
			if i >= len(positions) || positions[i] < 0 {
				continue
			}
			slots[positions[i]] = value
		}
		cells[r] = slots
	}

	return newTable(schema, cells, cfg), nil
}

// FromRecords builds a Table from rows keyed by column name.
func FromRecords(entries []SchemaEntry, records []map[string]string, opts ...Option) (*Table, error) {
	cfg := applyOptions(opts)
	schema, err := NewSchema(entries)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrEmptyDataset
	}

	dropped := map[string]bool{}
	cells := make([][]string, len(records))
	for r, record := range records {
		slots := make([]string, schema.Len())
		for column, value := range record {
			slot, ok := schema.slot(strings.TrimSpace(column))
			if !ok {
				if !dropped[column] {
					dropped[column] = true
					cfg.logger.Debug("dropping column without schema entry", "column", column)
				}
				continue
			}
			slots[slot] = value
		}
		cells[r] = slots
	}

	return newTable(schema, cells, cfg), nil
}

func newTable(schema *Schema, cells [][]string, cfg *tableConfig) *Table {
	for _, column := range schema.UnknownTypeColumns() {
		cfg.logger.Warn("unknown question type code, treating as text", "column", column)
	}
	return &Table{
		id:     uuid.NewV4().String(),
		source: cfg.source,
		schema: schema,
		rows:   cells,
		log:    cfg.logger,
	}
}

// ID identifies the row-index space of the table. Subsets from tables with
// different IDs cannot be combined.
func (t *Table) ID() string {
	return t.id
}

func (t *Table) Source() string {
	return t.source
}

func (t *Table) Schema() *Schema {
	return t.schema
}

// Questions lists the questions in schema order.
func (t *Table) Questions() []models.Question {
	return t.schema.Questions()
}

func (t *Table) Question(column string) (models.Question, error) {
	return t.schema.Question(column)
}

func (t *Table) RespondentCount() int {
	return len(t.rows)
}

// Cell returns the raw cell of a respondent. ok is false for an unknown column
// or a row outside the table.
func (t *Table) Cell(row int, column string) (value string, ok bool) {
	slot, found := t.schema.slot(column)
	if !found || row < 0 || row >= len(t.rows) {
		return "", false
	}
	return t.rows[row][slot], true
}

// answers walks every row and hands its normalized answers for one slot to fn.
func (t *Table) answers(q models.Question, fn func(row int, answers []string)) {
	slot, _ := t.schema.slot(q.Column)
	for r, cells := range t.rows {
		fn(r, Normalize(cells[slot], q.Type))
	}
}
