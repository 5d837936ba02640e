// Command bakeryctl manages bakery transactions over the HTTP API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"bakery/internal/client"
	"bakery/internal/core"
	"bakery/internal/summary"
)

const usage = `usage: bakeryctl [-api URL] <command> [flags]

commands:
  list                       list every transaction, newest first
  add    -date -desc -amount -type -category
  edit   -id [-date -desc -amount -type -category]
  delete -id
  summary [-month YYYY-MM] [-type all|income|expense]
  categories
`

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "bakeryctl:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	global := flag.NewFlagSet("bakeryctl", flag.ContinueOnError)
	apiURL := global.String("api", envOr("BAKERY_API_URL", "http://localhost:8081/api"), "base URL of the bakery API")
	global.Usage = func() { fmt.Fprint(global.Output(), usage) }
	if err := global.Parse(args); err != nil {
		return err
	}
	if global.NArg() == 0 {
		global.Usage()
		return errors.New("missing command")
	}

	c := client.New(*apiURL)
	cmd, rest := global.Arg(0), global.Args()[1:]

	switch cmd {
	case "list":
		txns, err := c.List(ctx)
		if err != nil {
			return err
		}
		printTransactions(out, txns)
		return nil
	case "add":
		return runAdd(ctx, c, rest, out)
	case "edit":
		return runEdit(ctx, c, rest, out)
	case "delete":
		fs := flag.NewFlagSet("delete", flag.ContinueOnError)
		id := fs.Int64("id", 0, "transaction id")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if err := c.Delete(ctx, *id); err != nil {
			return err
		}
		fmt.Fprintf(out, "deleted %d\n", *id)
		return nil
	case "summary":
		return runSummary(ctx, c, rest, out)
	case "categories":
		cats, err := c.Categories(ctx)
		if err != nil {
			return err
		}
		for _, t := range []core.TxType{core.Income, core.Expense} {
			fmt.Fprintf(out, "%s:\n", t)
			for _, name := range cats[t] {
				fmt.Fprintf(out, "  %s\n", name)
			}
		}
		return nil
	default:
		global.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// fieldFlags binds the editable transaction fields to fs.
type fieldFlags struct {
	date, desc, amount, typ, category *string
}

func bindFieldFlags(fs *flag.FlagSet, today string) fieldFlags {
	return fieldFlags{
		date:     fs.String("date", today, "date, YYYY-MM-DD"),
		desc:     fs.String("desc", "", "description"),
		amount:   fs.String("amount", "", "amount, e.g. 12.50"),
		typ:      fs.String("type", "", "income or expense"),
		category: fs.String("category", "", "category; defaults by type when adding"),
	}
}

// apply overwrites base with every flag that was set on fs.
func (ff fieldFlags) apply(fs *flag.FlagSet, base core.TransactionFields) (core.TransactionFields, error) {
	var err error
	fs.Visit(func(f *flag.Flag) {
		if err != nil {
			return
		}
		switch f.Name {
		case "date":
			base.Date, err = core.ParseDate(*ff.date)
		case "desc":
			base.Description = *ff.desc
		case "amount":
			base.Amount, err = core.ParseMoney(*ff.amount)
		case "type":
			base.Type, err = core.ParseTxType(*ff.typ)
		case "category":
			base.Category = *ff.category
		}
	})
	return base, err
}

func runAdd(ctx context.Context, c *client.Client, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	ff := bindFieldFlags(fs, core.DateOf(utcNow()).String())
	if err := fs.Parse(args); err != nil {
		return err
	}

	date, err := core.ParseDate(*ff.date)
	if err != nil {
		return err
	}
	f, err := ff.apply(fs, core.TransactionFields{Date: date})
	if err != nil {
		return err
	}
	if f.Category == "" {
		f.Category = core.DefaultCategory(f.Type)
	}

	t, err := c.Create(ctx, f)
	if err != nil {
		return err
	}
	printTransactions(out, []core.Transaction{t})
	return nil
}

func runEdit(ctx context.Context, c *client.Client, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("edit", flag.ContinueOnError)
	id := fs.Int64("id", 0, "transaction id")
	ff := bindFieldFlags(fs, "")
	if err := fs.Parse(args); err != nil {
		return err
	}

	s := client.NewSession(c, utcNow)
	if err := s.Refresh(ctx); err != nil {
		return err
	}
	current, ok := s.BeginEdit(*id)
	if !ok {
		return fmt.Errorf("transaction %d: %w", *id, core.ErrNotFound)
	}
	f, err := ff.apply(fs, current)
	if err != nil {
		s.CancelEdit()
		return err
	}

	t, err := s.Edit(ctx, *id, f)
	if err != nil {
		return err
	}
	printTransactions(out, []core.Transaction{t})
	return nil
}

func runSummary(ctx context.Context, c *client.Client, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("summary", flag.ContinueOnError)
	month := fs.String("month", "", "month, YYYY-MM (default current)")
	typ := fs.String("type", "all", "all, income or expense")
	if err := fs.Parse(args); err != nil {
		return err
	}

	v := summary.DefaultView(utcNow())
	if *month != "" {
		m, err := summary.ParseMonth(*month)
		if err != nil {
			return err
		}
		v.Month = m
	}
	tf, err := summary.ParseTypeFilter(*typ)
	if err != nil {
		return err
	}
	v.Type = tf

	d, err := c.Dashboard(ctx, v)
	if err != nil {
		return err
	}
	printDashboard(out, d)
	return nil
}

func printTransactions(out io.Writer, txns []core.Transaction) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tTYPE\tAMOUNT\tCATEGORY\tDESCRIPTION")
	for _, t := range txns {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", t.ID, t.Date, t.Type, t.Amount, t.Category, t.Description)
	}
	tw.Flush()
}

func printDashboard(out io.Writer, d summary.Dashboard) {
	fmt.Fprintf(out, "Month %s (%s)\n", d.Month, d.Type)
	fmt.Fprintf(out, "Income   %s\nExpenses %s\nProfit   %s\n", d.Stats.Income, d.Stats.Expense, d.Stats.Profit)
	if d.HighestExpense != nil {
		fmt.Fprintf(out, "Highest expense category: %s (%s)\n", d.HighestExpense.Name, d.HighestExpense.Amount)
	}
	fmt.Fprintf(out, "Today vs yesterday: income %s%%, expenses %s%%\n",
		formatGrowth(d.DayOverDay.Growth.Income), formatGrowth(d.DayOverDay.Growth.Expense))

	if len(d.Daily) > 0 {
		fmt.Fprintln(out)
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "DATE\tINCOME\tEXPENSES\tPROFIT")
		for _, day := range d.Daily {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", day.Date, day.Income, day.Expense, day.Profit)
		}
		tw.Flush()
	}

	fmt.Fprintln(out)
	printTransactions(out, d.Transactions)
}

func formatGrowth(p float64) string {
	return strconv.FormatFloat(p, 'f', 1, 64)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// utcNow matches the server, whose "today" is the UTC calendar date.
func utcNow() time.Time { return time.Now().UTC() }
