// Package loader reads survey datasets from spreadsheets, delimited files,
// compressed archives and S3 into a survey.Table.
package loader

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pivolan/survey_analyzer/survey"
)

const (
	DefaultDataSheet   = "raw data"
	DefaultSchemaSheet = "schema"
)

type Option func(*options)

type options struct {
	dataSheet   string
	schemaSheet string
	schemaFile  string
	scratchDir  string
	inferSchema bool
	logger      *slog.Logger
	s3          S3Config
	s3Client    ObjectGetter
}

// WithSheets overrides the workbook sheet names. Empty names keep the default.
func WithSheets(data, schema string) Option {
	return func(o *options) {
		if data != "" {
			o.dataSheet = data
		}
		if schema != "" {
			o.schemaSheet = schema
		}
	}
}

// WithSchemaFile reads the schema of a delimited data file from path instead
// of the <name>.schema.csv companion.
func WithSchemaFile(path string) Option {
	return func(o *options) {
		o.schemaFile = path
	}
}

// WithScratchDir unpacks archives and S3 downloads into dir. The directory is
// kept after Load returns; without it a temporary directory is used and removed.
func WithScratchDir(dir string) Option {
	return func(o *options) {
		o.scratchDir = dir
	}
}

// WithInferredSchema derives question types from the data header when the
// source has no schema.
func WithInferredSchema() Option {
	return func(o *options) {
		o.inferSchema = true
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithS3 configures the client used for s3:// sources.
func WithS3(cfg S3Config) Option {
	return func(o *options) {
		o.s3 = cfg
	}
}

// WithS3Client uses client for s3:// sources instead of building one.
func WithS3Client(client ObjectGetter) Option {
	return func(o *options) {
		o.s3Client = client
	}
}

// sheets is a source read into memory: the data grid with its header first,
// and the schema grid, nil when the source has none.
type sheets struct {
	data   [][]string
	schema [][]string
}

// Load reads source into a Table. source is a local path or an s3://bucket/key
// URL; .zip, .gz, .lz4 and .zst wrappers are unpacked first.
func Load(ctx context.Context, source string, opts ...Option) (*survey.Table, error) {
	o := &options{
		dataSheet:   DefaultDataSheet,
		schemaSheet: DefaultSchemaSheet,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(o)
	}
	start := time.Now()

	scratch := o.scratchDir
	if scratch == "" {
		dir, err := os.MkdirTemp("", "survey-*")
		if err != nil {
			return nil, fmt.Errorf("create scratch dir: %w", err)
		}
		defer os.RemoveAll(dir)
		scratch = dir
	} else if err := os.MkdirAll(scratch, 0755); err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}

	path := source
	origin := filepath.Dir(source)
	if isS3(source) {
		downloaded, err := fetchS3(ctx, o, source, scratch)
		if err != nil {
			return nil, err
		}
		path = downloaded
		origin = scratch
	} else if _, err := os.Stat(source); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", survey.ErrFileNotFound, source)
		}
		return nil, fmt.Errorf("stat %s: %w", source, err)
	}

	unpacked, err := unpackArchive(path, scratch)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", source, err)
	}
	if unpacked != path {
		o.logger.Debug("archive unpacked", "source", source, "path", unpacked)
	}

	s, err := readSheets(unpacked, origin, o)
	if err != nil {
		return nil, err
	}
	if len(s.data) == 0 {
		return nil, fmt.Errorf("%w: %s has no header row", survey.ErrEmptyDataset, source)
	}

	header := ValidateHeaders(s.data[0])
	var entries []survey.SchemaEntry
	if s.schema != nil {
		entries, err = parseSchema(s.schema)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", source, err)
		}
	} else {
		entries = survey.InferSchema(header)
	}

	table, err := survey.New(entries, header, s.data[1:],
		survey.WithLogger(o.logger),
		survey.WithSource(source),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}

	o.logger.Info("survey loaded",
		"source", source,
		"questions", len(table.Questions()),
		"respondents", table.RespondentCount(),
		"duration", time.Since(start),
	)
	return table, nil
}

func readSheets(path, origin string, o *options) (*sheets, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx", ".xlsm":
		return readWorkbook(path, o)
	case ".csv", ".tsv":
		return readDelimited(path, origin, o)
	default:
		return nil, fmt.Errorf("%w: %q", survey.ErrUnsupportedFormat, filepath.Base(path))
	}
}
