// Package shell is a line-oriented terminal front end for the tracker.
package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"expensetracker/internal/core"
	"expensetracker/internal/log"
	"expensetracker/internal/services"
)

const helpText = `Commands:
  add [amount] [type] [category]  record a transaction (prompts for missing values)
  balance                         show the current balance
  list                            list all transactions
  report                          show this month's report
  export [path]                   save this month's report to a file
  help                            show this help
  quit                            leave the tracker`

// Shell reads commands from in and writes results to out.
type Shell struct {
	tracker *services.Tracker
	in      *bufio.Scanner
	out     io.Writer
	logger  *log.Logger

	positive *color.Color
	negative *color.Color
	errColor *color.Color
	prompt   string
}

type Option func(*Shell)

func WithLogger(l *log.Logger) Option {
	return func(s *Shell) {
		if l != nil {
			s.logger = l
		}
	}
}

func New(tracker *services.Tracker, in io.Reader, out io.Writer, opts ...Option) *Shell {
	s := &Shell{
		tracker:  tracker,
		in:       bufio.NewScanner(in),
		out:      out,
		logger:   log.New(log.DefaultConfig()),
		positive: color.New(color.FgGreen, color.Bold),
		negative: color.New(color.FgRed, color.Bold),
		errColor: color.New(color.FgRed),
		prompt:   "> ",
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent(log.ComponentShell)

	if !isTerminal(out) {
		for _, c := range []*color.Color{s.positive, s.negative, s.errColor} {
			c.DisableColor()
		}
	}
	return s
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Run processes commands until quit, end of input or ctx cancellation.
func (s *Shell) Run(ctx context.Context) error {
	fmt.Fprintln(s.out, "Income & Expense Tracker. Type 'help' for commands.")
	s.printBalance(ctx)

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		line, ok := s.readLine(s.prompt)
		if !ok {
			return s.in.Err()
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		cmd, args := strings.ToLower(fields[0]), fields[1:]

		switch cmd {
		case "add":
			s.add(ctx, args)
		case "balance":
			s.printBalance(ctx)
		case "list":
			s.list(ctx)
		case "report":
			s.report(ctx)
		case "export":
			s.export(ctx, strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), fields[0])))
		case "help", "?":
			fmt.Fprintln(s.out, helpText)
		case "quit", "exit":
			fmt.Fprintln(s.out, "Bye.")
			return nil
		default:
			fmt.Fprintf(s.out, "Unknown command %q. Type 'help' for a list of commands.\n", cmd)
		}
	}
}

func (s *Shell) readLine(prompt string) (string, bool) {
	fmt.Fprint(s.out, prompt)
	if !s.in.Scan() {
		fmt.Fprintln(s.out)
		return "", false
	}
	return strings.TrimSpace(s.in.Text()), true
}

// ask returns args[i] when present and otherwise prompts for the value.
func (s *Shell) ask(args []string, i int, prompt string) (string, bool) {
	if i < len(args) {
		return args[i], true
	}
	return s.readLine(prompt)
}

func (s *Shell) add(ctx context.Context, args []string) {
	amount, ok := s.ask(args, 0, "Amount: ")
	if !ok {
		return
	}
	kindText, ok := s.ask(args, 1, "Type ("+joinKinds()+"): ")
	if !ok {
		return
	}
	kind, err := core.ParseKind(kindText)
	if err != nil {
		s.fail("Please choose a type: " + joinKinds())
		return
	}
	categoryText, ok := s.ask(args, 2, "Category ("+joinCategories()+"): ")
	if !ok {
		return
	}
	category, err := core.ParseCategory(categoryText)
	if err != nil {
		s.fail("Please choose a category: " + joinCategories())
		return
	}

	tx, err := s.tracker.AddTransaction(ctx, services.AddTransactionInput{Amount: amount, Kind: kind, Category: category})
	if err != nil {
		s.fail(services.UserMessage(err))
		return
	}
	fmt.Fprintf(s.out, "Recorded: %s\n", s.tracker.Describe(tx))
	s.printBalance(ctx)
}

func (s *Shell) printBalance(ctx context.Context) {
	bal, err := s.tracker.CurrentBalance(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Balance unavailable", log.FieldError, err)
		s.fail(services.UserMessage(err))
		return
	}
	c := s.positive
	if bal.State == core.BalanceNegative {
		c = s.negative
	}
	c.Fprintln(s.out, bal.Text)
}

func (s *Shell) list(ctx context.Context) {
	txs, err := s.tracker.ListTransactions(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Listing failed", log.FieldError, err)
		s.fail(services.UserMessage(err))
		return
	}
	if len(txs) == 0 {
		fmt.Fprintln(s.out, "No transactions yet")
		return
	}
	for _, tx := range txs {
		fmt.Fprintln(s.out, s.tracker.Describe(tx))
	}
}

func (s *Shell) report(ctx context.Context) {
	rep, err := s.tracker.ViewMonthlyReport(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Report failed", log.FieldError, err)
		s.fail(services.UserMessage(err))
		return
	}
	fmt.Fprintln(s.out, rep.Text)
}

// export writes the report to path, asking for one when none was given. A
// blank answer keeps the default file name.
func (s *Shell) export(ctx context.Context, path string) {
	if path == "" {
		answer, ok := s.readLine(fmt.Sprintf("Save report as [%s]: ", s.tracker.ReportFileName()))
		if !ok {
			return
		}
		path = answer
	}

	if _, err := s.tracker.ExportMonthlyReport(ctx, path); err != nil {
		s.fail(services.UserMessage(err))
		return
	}
	fmt.Fprintln(s.out, services.MsgExportSuccess)
}

func (s *Shell) fail(msg string) {
	s.errColor.Fprintln(s.out, msg)
}

func joinKinds() string {
	kinds := core.Kinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return strings.Join(names, "/")
}

func joinCategories() string {
	cats := core.Categories()
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = string(c)
	}
	return strings.Join(names, "/")
}
