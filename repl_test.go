package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplExecute(t *testing.T) {
	tests := []struct {
		name    string
		lines   []string
		want    []string
		wantErr string
	}{
		{name: "list", lines: []string{"list"}, want: []string{"Age", "Languages", "Years", "Multiple choice"}},
		{name: "list limit", lines: []string{"list 2"}, want: []string{"Languages", "3 MORE"}},
		{name: "list bad limit", lines: []string{"list x"}, wantErr: "usage"},
		{name: "search", lines: []string{"search live"}, want: []string{"Country"}},
		{name: "search nothing", lines: []string{"search zzz"}, want: []string{"No questions found."}},
		{name: "searchopt", lines: []string{"searchopt rus"}, want: []string{"Languages", "Rust"}},
		{name: "dist", lines: []string{"dist Country"}, want: []string{"United States", "66.7%", "Respondents answering: 3"}},
		{name: "dist unknown column", lines: []string{"dist Nope"}, wantErr: `"Nope"`},
		{name: "dist usage", lines: []string{"dist"}, wantErr: "usage"},
		{name: "subset quoted answer", lines: []string{`subset Country "United States"`}, want: []string{"2 of 4 respondents", "50.0%"}},
		{
			name:  "and then within",
			lines: []string{"subset Languages Rust", "and Age 25-34", "within Languages"},
			want:  []string{`Languages = "Rust" AND Age = "25-34"`, "1 of 4 respondents", "Go"},
		},
		{name: "and without subset", lines: []string{"and Age 18-24"}, wantErr: "no current subset"},
		{name: "within without subset", lines: []string{"within Age"}, wantErr: "no current subset"},
		{name: "options", lines: []string{"options Age"}, want: []string{"18-24", "25-34"}},
		{name: "numeric", lines: []string{"numeric Years"}, want: []string{"Average", "6"}},
		{name: "numeric wrong type", lines: []string{"numeric Age"}, wantErr: "invalid question type"},
		{name: "reset", lines: []string{"subset Age 18-24", "reset", "within Age"}, wantErr: "no current subset"},
		{name: "help", lines: []string{"help"}, want: []string{"searchopt <term>"}},
		{name: "unknown", lines: []string{"frobnicate"}, wantErr: "unknown command"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := &bytes.Buffer{}
			r := NewRepl(newTestTable(t), out, nil)

			var err error
			for _, line := range tt.lines {
				if _, err = r.Execute(line); err != nil {
					break
				}
			}
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, out.String(), w)
			}
		})
	}
}

func TestReplQuit(t *testing.T) {
	r := NewRepl(newTestTable(t), &bytes.Buffer{}, nil)
	for _, line := range []string{"quit", "EXIT"} {
		quit, err := r.Execute(line)
		require.NoError(t, err)
		assert.True(t, quit, line)
	}
	quit, err := r.Execute("   ")
	require.NoError(t, err)
	assert.False(t, quit)
}

func TestReplRunContinuesAfterError(t *testing.T) {
	out := &bytes.Buffer{}
	m := NewMetrics()
	r := NewRepl(newTestTable(t), out, m)

	err := r.Run(strings.NewReader("dist Nope\ndist Age\nquit\ndist Country\n"))
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Loaded 5 questions, 4 respondents.")
	assert.Contains(t, out.String(), `Error: question not found: "Nope"`)
	assert.Contains(t, out.String(), "18-24")
	assert.NotContains(t, out.String(), "Germany", "commands after quit must not run")
	assert.Equal(t, 1.0, queryCount(t, m, "repl_dist", "error"))
	assert.Equal(t, 1.0, queryCount(t, m, "repl_dist", "ok"))
}

func TestReplRunEndOfInput(t *testing.T) {
	out := &bytes.Buffer{}
	r := NewRepl(newTestTable(t), out, nil)
	require.NoError(t, r.Run(strings.NewReader("list")))
	assert.Contains(t, out.String(), "Comment")
}

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{line: "", want: nil},
		{line: "dist Age", want: []string{"dist", "Age"}},
		{line: "  dist\tAge  ", want: []string{"dist", "Age"}},
		{line: `subset Country "United States"`, want: []string{"subset", "Country", "United States"}},
		{line: `subset 'Main Branch' "I'm a developer"`, want: []string{"subset", "Main Branch", "I'm a developer"}},
		{line: `search ""`, want: []string{"search", ""}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, splitArgs(tt.line))
		})
	}
}
