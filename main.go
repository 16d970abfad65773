package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/pivolan/survey_analyzer/config"
	"github.com/pivolan/survey_analyzer/loader"
	"github.com/pivolan/survey_analyzer/report"
	"github.com/pivolan/survey_analyzer/survey"
)

const usage = `Usage: survey_analyzer [global flags] <command> [flags] [args]

Commands:
  structure  list questions
  search     search questions or answer options
  dist       answer distribution of a question
  subset     select respondents by answers
  options    distinct answers of a question
  numeric    numeric summary of a question
  report     write a Markdown report
  repl       interactive queries
  serve      Telegram bot and upload server

Global flags:
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr, config.GetConfig())
	stop()
	os.Exit(code)
}

// app carries what every command needs.
type app struct {
	cfg     *config.Config
	log     *slog.Logger
	metrics *Metrics
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
	infer   bool
}

// run executes one command line and returns the process exit code.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer, cfg *config.Config) int {
	global := flag.NewFlagSet("survey_analyzer", flag.ContinueOnError)
	global.SetOutput(stderr)
	global.Usage = func() {
		fmt.Fprint(stderr, usage)
		global.PrintDefaults()
	}
	file := global.String("file", cfg.SurveyFile, "survey file: xlsx, csv, tsv, an archive of one, or s3://bucket/key")
	schema := global.String("schema", cfg.SchemaFile, "schema file, when it is not part of the survey file")
	dataSheet := global.String("data-sheet", cfg.DataSheet, "workbook sheet holding the responses")
	schemaSheet := global.String("schema-sheet", cfg.SchemaSheet, "workbook sheet holding the schema")
	infer := global.Bool("infer", false, "infer question types from headers when there is no schema")
	logLevel := global.String("log-level", cfg.LogLevel, "debug, info, warn or error")
	logFormat := global.String("log-format", cfg.LogFormat, "text or json")
	if err := global.Parse(args); err != nil {
		return 2
	}
	if global.NArg() == 0 {
		global.Usage()
		return 2
	}

	cfg.SurveyFile = *file
	cfg.SchemaFile = *schema
	cfg.DataSheet = *dataSheet
	cfg.SchemaSheet = *schemaSheet
	a := &app{
		cfg:     cfg,
		log:     newLogger(stderr, *logLevel, *logFormat),
		metrics: NewMetrics(),
		stdin:   stdin,
		stdout:  stdout,
		stderr:  stderr,
		infer:   *infer,
	}

	cmd, cmdArgs := global.Arg(0), global.Args()[1:]
	var err error
	switch cmd {
	case "structure":
		err = a.structure(ctx, cmdArgs)
	case "search":
		err = a.search(ctx, cmdArgs)
	case "dist":
		err = a.dist(ctx, cmdArgs)
	case "subset":
		err = a.subset(ctx, cmdArgs)
	case "options":
		err = a.options(ctx, cmdArgs)
	case "numeric":
		err = a.numeric(ctx, cmdArgs)
	case "report":
		err = a.report(ctx, cmdArgs)
	case "repl":
		err = a.repl(ctx)
	case "serve":
		err = a.serve(ctx)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", cmd)
		global.Usage()
		return 2
	}
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func (a *app) loadOptions() []loader.Option {
	opts := []loader.Option{
		loader.WithSheets(a.cfg.DataSheet, a.cfg.SchemaSheet),
		loader.WithLogger(a.log),
		loader.WithS3(loader.S3Config{
			Region:    a.cfg.S3Region,
			Endpoint:  a.cfg.S3Endpoint,
			PathStyle: a.cfg.S3PathStyle,
		}),
	}
	if a.cfg.SchemaFile != "" {
		opts = append(opts, loader.WithSchemaFile(a.cfg.SchemaFile))
	}
	if a.infer {
		opts = append(opts, loader.WithInferredSchema())
	}
	return opts
}

func (a *app) load(ctx context.Context) (*survey.Table, error) {
	if a.cfg.SurveyFile == "" {
		return nil, errors.New("no survey file, set -file or SURVEY_FILE")
	}
	started := time.Now()
	t, err := loader.Load(ctx, a.cfg.SurveyFile, a.loadOptions()...)
	a.metrics.Load(started, err)
	return t, err
}

func (a *app) flags(name, args string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	fs.Usage = func() {
		fmt.Fprintf(a.stderr, "Usage: survey_analyzer %s [flags] %s\n", name, args)
		fs.PrintDefaults()
	}
	return fs
}

// positional checks that fs got exactly n arguments.
func positional(fs *flag.FlagSet, n int) ([]string, error) {
	if fs.NArg() != n {
		fs.Usage()
		return nil, fmt.Errorf("%w: %s takes %d argument(s)", errUsage, fs.Name(), n)
	}
	return fs.Args(), nil
}

func (a *app) structure(ctx context.Context, args []string) error {
	fs := a.flags("structure", "")
	limit := fs.Int("limit", 0, "show at most N questions")
	filter := fs.String("filter", "", "only questions whose text or column contains term")
	if err := fs.Parse(args); err != nil {
		return err
	}
	t, err := a.load(ctx)
	if err != nil {
		return err
	}
	questions := t.Questions()
	if *filter != "" {
		questions = t.SearchQuestions(*filter)
	}
	fmt.Fprintf(a.stdout, "%d questions, %d respondents\n", len(t.Questions()), t.RespondentCount())
	fmt.Fprintln(a.stdout, GenerateQuestionsTable(questions, *limit))
	return nil
}

func (a *app) search(ctx context.Context, args []string) error {
	fs := a.flags("search", "<term>")
	options := fs.Bool("options", false, "search answer options instead of questions")
	if err := fs.Parse(args); err != nil {
		return err
	}
	term := strings.Join(fs.Args(), " ")
	t, err := a.load(ctx)
	if err != nil {
		return err
	}
	if *options {
		fmt.Fprintln(a.stdout, GenerateOptionMatchesTable(t.SearchOptions(term)))
		return nil
	}
	fmt.Fprintln(a.stdout, GenerateQuestionsTable(t.SearchQuestions(term), 0))
	return nil
}

func (a *app) dist(ctx context.Context, args []string) error {
	fs := a.flags("dist", "<column>")
	threshold := fs.Float64("threshold", 0, "hide answers below this percentage")
	categorical := fs.Bool("categorical", false, "reject text questions")
	if err := fs.Parse(args); err != nil {
		return err
	}
	pos, err := positional(fs, 1)
	if err != nil {
		return err
	}
	t, err := a.load(ctx)
	if err != nil {
		return err
	}
	var opts []survey.DistributionOption
	if *categorical {
		opts = append(opts, survey.CategoricalOnly())
	}
	d, err := t.Distribution(pos[0], opts...)
	a.metrics.Query("cli_dist", err)
	if err != nil {
		return err
	}
	fmt.Fprint(a.stdout, GenerateDistributionTable(d, *threshold))
	return nil
}

// predicateFlags collects repeated -and column=answer flags.
type predicateFlags []report.Group

func (p *predicateFlags) String() string {
	parts := make([]string, 0, len(*p))
	for _, g := range *p {
		parts = append(parts, g.String())
	}
	return strings.Join(parts, ", ")
}

func (p *predicateFlags) Set(v string) error {
	column, answer, ok := strings.Cut(v, "=")
	if !ok || strings.TrimSpace(column) == "" {
		return fmt.Errorf("want column=answer, got %q", v)
	}
	*p = append(*p, report.Group{Column: strings.TrimSpace(column), Answer: answer})
	return nil
}

func (a *app) subset(ctx context.Context, args []string) error {
	fs := a.flags("subset", "<column> <answer>")
	var and predicateFlags
	fs.Var(&and, "and", "narrow with column=answer, repeatable")
	ignoreCase := fs.Bool("ignore-case", false, "match answers case-insensitively")
	within := fs.String("within", "", "print the distribution of this column within the subset")
	if err := fs.Parse(args); err != nil {
		return err
	}
	pos, err := positional(fs, 2)
	if err != nil {
		return err
	}
	t, err := a.load(ctx)
	if err != nil {
		return err
	}

	return a.querySubset(t, pos[0], pos[1], and, *ignoreCase, *within)
}

func (a *app) querySubset(t *survey.Table, column, answer string, and predicateFlags, ignoreCase bool, within string) (err error) {
	defer func() { a.metrics.Query("cli_subset", err) }()

	var opts []survey.SubsetOption
	if ignoreCase {
		opts = append(opts, survey.IgnoreCase())
	}
	s, err := t.CreateSubset(column, answer, opts...)
	if err != nil {
		return err
	}
	for _, p := range and {
		next, err := t.CreateSubset(p.Column, p.Answer, opts...)
		if err != nil {
			return err
		}
		if s, err = s.Intersect(next); err != nil {
			return err
		}
	}
	fmt.Fprint(a.stdout, GenerateSubsetSummary(s, t.RespondentCount()))

	if within != "" {
		d, err := t.DistributionWithin(within, s)
		if err != nil {
			return err
		}
		fmt.Fprint(a.stdout, GenerateDistributionTable(d, 0))
	}
	return nil
}

func (a *app) options(ctx context.Context, args []string) error {
	fs := a.flags("options", "<column>")
	if err := fs.Parse(args); err != nil {
		return err
	}
	pos, err := positional(fs, 1)
	if err != nil {
		return err
	}
	t, err := a.load(ctx)
	if err != nil {
		return err
	}
	options, err := t.QuestionOptions(pos[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, GenerateOptionsList(pos[0], options))
	return nil
}

func (a *app) numeric(ctx context.Context, args []string) error {
	fs := a.flags("numeric", "<column>")
	if err := fs.Parse(args); err != nil {
		return err
	}
	pos, err := positional(fs, 1)
	if err != nil {
		return err
	}
	t, err := a.load(ctx)
	if err != nil {
		return err
	}
	stats, err := t.NumericSummary(pos[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, GenerateNumericTable(pos[0], stats))
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func (a *app) report(ctx context.Context, args []string) error {
	fs := a.flags("report", "")
	out := fs.String("out", a.cfg.ReportPath, "report file")
	charts := fs.String("charts", "", "directory for PNG charts and index.html")
	columns := fs.String("columns", "", "comma separated columns, default every choice question")
	compare := fs.String("compare", "", "comma separated columns compared within each group")
	title := fs.String("title", report.DefaultTitle, "report title")
	limit := fs.Int("limit", 0, "rows per distribution table, 0 keeps all")
	var groups predicateFlags
	fs.Var(&groups, "group", "subset to compare, column=answer, repeatable")
	if err := fs.Parse(args); err != nil {
		return err
	}
	t, err := a.load(ctx)
	if err != nil {
		return err
	}

	opts := report.Options{
		Title:          *title,
		Columns:        splitList(*columns),
		Groups:         groups,
		CompareColumns: splitList(*compare),
		Limit:          *limit,
		ChartDir:       *charts,
	}
	content, err := report.Generate(t, opts)
	a.metrics.Query("cli_report", err)
	if err != nil {
		return err
	}
	if err := report.WriteFile(*out, content); err != nil {
		return err
	}
	a.log.Info("report written", "path", *out)

	if *charts != "" {
		cols := opts.Columns
		if len(cols) == 0 {
			cols = report.ChoiceColumns(t)
		}
		ds := make([]*survey.Distribution, 0, len(cols))
		for _, c := range cols {
			d, err := t.Distribution(c)
			if err != nil {
				return err
			}
			ds = append(ds, d)
		}
		written, err := report.WriteCharts(*charts, ds, *limit)
		if err != nil {
			return err
		}
		a.log.Info("charts written", "dir", *charts, "files", len(written))
	}
	fmt.Fprintln(a.stdout, *out)
	return nil
}

func (a *app) repl(ctx context.Context) error {
	t, err := a.load(ctx)
	if err != nil {
		return err
	}
	return NewRepl(t, a.stdout, a.metrics).Run(a.stdin)
}

func (a *app) serve(ctx context.Context) error {
	if a.cfg.TgToken == "" {
		return errors.New("TG_TOKEN is not set")
	}
	var fallback *survey.Table
	if a.cfg.SurveyFile != "" {
		t, err := a.load(ctx)
		if err != nil {
			return err
		}
		fallback = t
	}

	api, err := tgbotapi.NewBotAPI(a.cfg.TgToken)
	if err != nil {
		return fmt.Errorf("telegram: %w", err)
	}
	a.log.Info("bot authorized", "account", api.Self.UserName)

	bot := NewBot(api, BotConfig{
		UploadDir:     a.cfg.UploadDir,
		PublicURL:     a.cfg.PublicURL,
		RatePerSecond: a.cfg.BotRatePerSecond,
		Default:       fallback,
		LoadOptions:   a.loadOptions(),
	}, a.log, a.metrics)

	srv := &http.Server{
		Addr:              a.cfg.HttpAddr,
		Handler:           NewServer(ctx, bot, a.metrics, a.log).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		a.log.Info("http listening", "addr", a.cfg.HttpAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("http server", "err", err)
		}
	}()

	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				bot.Cleanup(2 * time.Hour)
			}
		}
	}()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates, err := api.GetUpdatesChan(u)
	if err != nil {
		return fmt.Errorf("telegram updates: %w", err)
	}
	for {
		select {
		case <-ctx.Done():
			api.StopReceivingUpdates()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			go bot.HandleUpdate(ctx, update)
		}
	}
}
