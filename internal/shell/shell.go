// Package shell is a line-oriented terminal front end for the tracker.
package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"expensetracker/internal/core"
	"expensetracker/internal/display"
	applog "expensetracker/internal/log"
	"expensetracker/internal/tracker"
)

const helpText = `Commands:
  set <field> <value>   set a draft field (kind, title, date, amount)
  draft                 show the draft
  submit                validate the draft and add the record
  list                  show all records
  remove <id>           remove a record
  reset                 discard the draft
  help                  show this help
  quit                  leave the shell
`

// Shell reads commands from in and writes results to out.
type Shell struct {
	tracker   *tracker.Tracker
	formatter display.Formatter
	logger    *applog.Logger
	in        io.Reader
	out       io.Writer
	prompt    string
}

type Option func(*Shell)

func WithLocale(locale string) Option {
	return func(s *Shell) {
		s.formatter = display.NewFormatter(locale)
	}
}

func WithLogger(l *applog.Logger) Option {
	return func(s *Shell) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithPrompt sets the prompt printed before each command. Empty disables it.
func WithPrompt(p string) Option {
	return func(s *Shell) {
		s.prompt = p
	}
}

func New(tr *tracker.Tracker, in io.Reader, out io.Writer, opts ...Option) *Shell {
	s := &Shell{
		tracker:   tr,
		formatter: display.NewFormatter(""),
		logger:    applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentShell),
		in:        in,
		out:       out,
		prompt:    "> ",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run processes commands until quit, end of input or ctx cancellation.
func (s *Shell) Run(ctx context.Context) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(s.in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- sc.Err()
	}()

	for {
		s.printPrompt()
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					if err != nil {
						return fmt.Errorf("read input: %w", err)
					}
				default:
				}
				return nil
			}
			if quit := s.Exec(ctx, line); quit {
				return nil
			}
		}
	}
}

func (s *Shell) printPrompt() {
	if s.prompt != "" {
		fmt.Fprint(s.out, s.prompt)
	}
}

// Exec runs one command line and reports whether the shell should exit.
func (s *Shell) Exec(ctx context.Context, line string) bool {
	cmd, rest := splitWord(strings.TrimLeft(line, " \t"))
	switch strings.ToLower(cmd) {
	case "":
	case "set":
		s.set(rest)
	case "draft":
		s.showDraft()
	case "submit":
		s.submit(ctx)
	case "list", "ls":
		s.list(ctx)
	case "remove", "rm":
		s.remove(ctx, strings.TrimSpace(rest))
	case "reset":
		s.tracker.Reset()
		fmt.Fprintln(s.out, "Draft cleared.")
	case "help", "?":
		fmt.Fprint(s.out, helpText)
	case "quit", "exit":
		return true
	default:
		fmt.Fprintf(s.out, "Unknown command %q, type help.\n", cmd)
	}
	return false
}

// splitWord splits off the first space-delimited word. The remainder keeps
// its inner and trailing whitespace.
func splitWord(s string) (word, rest string) {
	i := strings.IndexAny(s, " \t")
	if i < 0 {
		return s, ""
	}
	return s[:i], s[i+1:]
}

func (s *Shell) set(args string) {
	field, value := splitWord(strings.TrimLeft(args, " \t"))
	if field == "" {
		fmt.Fprintln(s.out, "Usage: set <field> <value>")
		return
	}
	if err := s.tracker.SetField(strings.ToLower(field), value); err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(s.out, "ok")
}

func (s *Shell) showDraft() {
	d := s.tracker.Draft()
	kind := d.Kind.String()
	if kind == "" {
		kind = core.KindExpense.String()
	}
	title, date, amount := "-", "-", "-"
	if d.Title != nil {
		title = fmt.Sprintf("%q", *d.Title)
	}
	if d.Date != nil {
		date = d.Date.ISO()
	}
	if d.Amount != nil {
		amount = fmt.Sprint(*d.Amount)
	}
	fmt.Fprintf(s.out, "state:  %s\nkind:   %s\ntitle:  %s\ndate:   %s\namount: %s\n",
		s.tracker.State(), kind, title, date, amount)
}

func (s *Shell) submit(ctx context.Context) {
	out := s.tracker.Submit(ctx)
	if !out.OK() {
		fmt.Fprintf(s.out, "! %s\n", out.Alert)
		return
	}
	fmt.Fprintf(s.out, "Added %s %q (%s).\n", out.Record.Kind, out.Record.Title, out.Record.ID)
}

func (s *Shell) remove(ctx context.Context, id string) {
	if id == "" {
		fmt.Fprintln(s.out, "Usage: remove <id>")
		return
	}
	if err := s.tracker.Remove(ctx, id); err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(s.out, "ok")
}

func (s *Shell) list(ctx context.Context) {
	records, err := s.tracker.List(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "List failed", applog.FieldOperation, applog.OpList, applog.FieldError, err)
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	if len(records) == 0 {
		fmt.Fprintln(s.out, "No records.")
		return
	}
	RenderRecords(s.out, records, s.formatter)
}

// RenderRecords writes records as a table with localized dates and two
// decimal amounts.
func RenderRecords(w io.Writer, records []core.Record, f display.Formatter) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"ID", "Type", "Title", "Date", "Amount"})
	for _, r := range records {
		t.AppendRow(table.Row{r.ID, r.Kind.String(), r.Title, f.Date(r.Date.Time), display.Amount(r.Amount)})
	}
	t.SetStyle(table.StyleRounded)
	t.Style().Format.Header = text.FormatDefault
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 5, Align: text.AlignRight},
	})
	t.Render()
}
