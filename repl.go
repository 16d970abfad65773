package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pivolan/survey_analyzer/survey"
)

const replHelp = `Commands:
  list [n]                  list questions (first n)
  search <term>             search question text and columns
  searchopt <term>          search answer options of choice questions
  dist <column>             answer distribution of a question
  subset <column> <answer>  start a subset of respondents
  and <column> <answer>     narrow the current subset
  within <column>           distribution inside the current subset
  options <column>          distinct answers of a question
  numeric <column>          numeric summary of a question
  reset                     drop the current subset
  help                      show this help
  quit | exit               leave
`

var errUsage = errors.New("usage")

// Repl runs interactive queries against one table.
type Repl struct {
	table   *survey.Table
	out     io.Writer
	current *survey.Subset
	metrics *Metrics
	// channel prefixes the command label of query metrics.
	channel string
}

func NewRepl(t *survey.Table, out io.Writer, m *Metrics) *Repl {
	return &Repl{table: t, out: out, metrics: m, channel: "repl"}
}

// Run reads commands from in until quit or end of input. Command errors are
// printed and do not stop the loop.
func (r *Repl) Run(in io.Reader) error {
	fmt.Fprintf(r.out, "Loaded %d questions, %d respondents. Type help for commands.\n",
		len(r.table.Questions()), r.table.RespondentCount())
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for {
		fmt.Fprint(r.out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(r.out)
			return scanner.Err()
		}
		quit, err := r.Execute(scanner.Text())
		if err != nil {
			fmt.Fprintf(r.out, "Error: %v\n", err)
		}
		if quit {
			return nil
		}
	}
}

// Execute runs one command line.
func (r *Repl) Execute(line string) (quit bool, err error) {
	args := splitArgs(line)
	if len(args) == 0 {
		return false, nil
	}
	return r.run(strings.ToLower(args[0]), args[1:])
}

func (r *Repl) run(cmd string, args []string) (quit bool, err error) {
	defer func() { r.metrics.Query(r.channel+"_"+cmd, err) }()

	switch cmd {
	case "quit", "exit":
		return true, nil
	case "help":
		fmt.Fprint(r.out, replHelp)
	case "list":
		limit := 0
		if len(args) > 0 {
			n, convErr := strconv.Atoi(args[0])
			if convErr != nil || n < 0 {
				return false, fmt.Errorf("%w: list [n]", errUsage)
			}
			limit = n
		}
		fmt.Fprintln(r.out, GenerateQuestionsTable(r.table.Questions(), limit))
	case "search":
		questions := r.table.SearchQuestions(strings.Join(args, " "))
		if len(questions) == 0 {
			fmt.Fprintln(r.out, "No questions found.")
			return false, nil
		}
		fmt.Fprintln(r.out, GenerateQuestionsTable(questions, 0))
	case "searchopt":
		matches := r.table.SearchOptions(strings.Join(args, " "))
		if len(matches) == 0 {
			fmt.Fprintln(r.out, "No options found.")
			return false, nil
		}
		fmt.Fprintln(r.out, GenerateOptionMatchesTable(matches))
	case "dist":
		if len(args) != 1 {
			return false, fmt.Errorf("%w: dist <column>", errUsage)
		}
		d, err := r.table.Distribution(args[0])
		if err != nil {
			return false, err
		}
		fmt.Fprint(r.out, GenerateDistributionTable(d, 0))
	case "subset", "and":
		if len(args) < 2 {
			return false, fmt.Errorf("%w: %s <column> <answer>", errUsage, cmd)
		}
		s, err := r.table.CreateSubset(args[0], strings.Join(args[1:], " "))
		if err != nil {
			return false, err
		}
		if cmd == "and" {
			if r.current == nil {
				return false, errors.New("no current subset, start one with subset")
			}
			if s, err = r.current.Intersect(s); err != nil {
				return false, err
			}
		}
		r.current = s
		fmt.Fprint(r.out, GenerateSubsetSummary(s, r.table.RespondentCount()))
	case "within":
		if len(args) != 1 {
			return false, fmt.Errorf("%w: within <column>", errUsage)
		}
		if r.current == nil {
			return false, errors.New("no current subset, start one with subset")
		}
		d, err := r.table.DistributionWithin(args[0], r.current)
		if err != nil {
			return false, err
		}
		fmt.Fprint(r.out, GenerateSubsetSummary(r.current, r.table.RespondentCount()))
		fmt.Fprint(r.out, GenerateDistributionTable(d, 0))
	case "options":
		if len(args) != 1 {
			return false, fmt.Errorf("%w: options <column>", errUsage)
		}
		options, err := r.table.QuestionOptions(args[0])
		if err != nil {
			return false, err
		}
		fmt.Fprintln(r.out, GenerateOptionsList(args[0], options))
	case "numeric":
		if len(args) != 1 {
			return false, fmt.Errorf("%w: numeric <column>", errUsage)
		}
		stats, err := r.table.NumericSummary(args[0])
		if err != nil {
			return false, err
		}
		fmt.Fprintln(r.out, GenerateNumericTable(args[0], stats))
	case "reset":
		r.current = nil
		fmt.Fprintln(r.out, "Subset cleared.")
	default:
		return false, fmt.Errorf("unknown command %q, type help", cmd)
	}
	return false, nil
}

// splitArgs splits a command line on spaces, keeping "double quoted" or
// 'single quoted' runs together.
func splitArgs(line string) []string {
	var args []string
	var cur strings.Builder
	var quote rune
	inArg := false
	for _, r := range line {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
				continue
			}
			cur.WriteRune(r)
		case r == '"' || r == '\'':
			quote = r
			inArg = true
		case r == ' ' || r == '\t':
			if inArg {
				args = append(args, cur.String())
				cur.Reset()
				inArg = false
			}
		default:
			cur.WriteRune(r)
			inArg = true
		}
	}
	if inArg {
		args = append(args, cur.String())
	}
	return args
}
