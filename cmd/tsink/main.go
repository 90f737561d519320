package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"tsink/internal/backend"
	"tsink/internal/calendar"
	"tsink/internal/cli"
	"tsink/internal/core"
	"tsink/internal/services"
	"tsink/internal/settings"
)

const usage = `Usage: tsink <command> [flags]

Commands:
  summary     print month summaries (hours, income, expenses, profit)
  income      set an income record for a calendar event
  expense     add, update, remove or list expenses
  categories  list or replace the category configuration
  docs        list available documents
  setup       create a new document and select it
  use         select a document and calendar
  export      write local settings to stdout as JSON
  import      apply recognized settings from a JSON export on stdin
`

type app struct {
	ctx      context.Context
	logger   *slog.Logger
	store    *settings.Store
	prefs    settings.Settings
	backend  *backend.Backend
	coord    *services.Coordinator
	income   *services.IncomeService
	expenses *services.ExpenseService
	config   *services.ConfigService
}

func main() {
	logger := cli.SetupLogger()
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig(logger)

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx := context.Background()
	store := cli.OpenSettings(logger, cfg.SettingsDBPath)
	defer store.Close()

	prefs, err := store.Load(ctx)
	if err != nil {
		logger.Error("failed to load settings", "error", err)
		os.Exit(1)
	}
	if cfg.SpreadsheetID != "" {
		prefs.SpreadsheetID = cfg.SpreadsheetID
	}
	if cfg.CalendarID != "" {
		prefs.CalendarID = cfg.CalendarID
	}

	b, err := backend.NewFactory(logger).Create(ctx, backend.Type(cfg.DataBackend))
	if err != nil {
		logger.Error("failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	if prefs.SpreadsheetID == "" && b.MemoryDoc != "" {
		prefs.SpreadsheetID = b.MemoryDoc
	}

	coord := services.NewCoordinatorTTL(b.Tabular, cfg.SnapshotTTL)
	a := &app{
		ctx:      ctx,
		logger:   logger,
		store:    store,
		prefs:    prefs,
		backend:  b,
		coord:    coord,
		income:   services.NewIncomeService(coord, b.Tabular),
		expenses: services.NewExpenseService(coord, b.Tabular),
		config:   services.NewConfigService(coord, b.Tabular),
	}

	if err := a.run(os.Args[1], os.Args[2:]); err != nil {
		logger.Error("command failed", "command", os.Args[1], "error", err)
		os.Exit(1)
	}
}

func (a *app) run(command string, args []string) error {
	switch command {
	case "summary":
		return a.cmdSummary(args)
	case "income":
		return a.cmdIncome(args)
	case "expense":
		return a.cmdExpense(args)
	case "categories":
		return a.cmdCategories(args)
	case "docs":
		return a.cmdDocs()
	case "setup":
		return a.cmdSetup(args)
	case "use":
		return a.cmdUse(args)
	case "export":
		return a.cmdExport()
	case "import":
		return a.cmdImport()
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func (a *app) cmdSummary(args []string) error {
	fs := flag.NewFlagSet("summary", flag.ExitOnError)
	monthCount := fs.Int("months", 3, "number of months, newest first")
	fs.Parse(args)

	now := time.Now()
	months := make([]time.Time, 0, *monthCount)
	for i := 0; i < *monthCount; i++ {
		months = append(months, now.AddDate(0, -i, 0))
	}
	events, err := calendar.MonthEvents(a.ctx, a.backend.Calendar, a.prefs.CalendarID, months)
	if err != nil {
		return fmt.Errorf("fetch events: %w", err)
	}

	incomes, _, err := a.income.List(a.ctx, a.prefs.SpreadsheetID)
	if err != nil {
		return err
	}
	expenses, err := a.expenses.List(a.ctx, a.prefs.SpreadsheetID)
	if err != nil {
		return err
	}

	for _, m := range core.BuildMonthSummaries(incomes, expenses, events, now) {
		marker := " "
		if m.IsCurrentMonth {
			marker = "*"
		}
		fmt.Printf("%s %s  worked %.1fh over %d days  income %.2f  expenses %.2f  profit %.2f %s\n",
			marker, m.Key, m.HoursWorked, m.DaysWorked, m.TotalIncome, m.TotalExpenses, m.Profit, a.prefs.Currency)
		for _, day := range m.IncompleteDays {
			fmt.Printf("    incomplete %s (%d events)\n", day.Date, len(day.Events))
		}
	}
	return nil
}

func (a *app) cmdIncome(args []string) error {
	if len(args) > 0 && args[0] == "list" {
		records, _, err := a.income.List(a.ctx, a.prefs.SpreadsheetID)
		if err != nil {
			return err
		}
		for _, r := range records {
			fmt.Printf("%s  %s  %.2f  skipped=%v  %s\n", r.Date, r.UID, r.Amount, r.Skipped, strings.Join(r.Categories, ","))
		}
		return nil
	}

	fs := flag.NewFlagSet("income set", flag.ExitOnError)
	uid := fs.String("uid", "", "stable calendar event uid")
	date := fs.String("date", core.FormatDay(time.Now()), "calendar day (YYYY-MM-DD)")
	amount := fs.Float64("amount", 0, "income amount")
	skip := fs.Bool("skip", false, "exclude this event from totals")
	cats := fs.String("categories", "", "comma-separated category names")
	fs.Parse(args)

	rec := core.IncomeRecord{
		UID:     *uid,
		Date:    *date,
		Amount:  *amount,
		Skipped: *skip,
	}
	if *cats != "" {
		rec.Categories = core.NormalizeCategories(strings.Split(*cats, ","))
	}

	_, index, err := a.income.List(a.ctx, a.prefs.SpreadsheetID)
	if err != nil {
		return err
	}
	return a.income.Upsert(a.ctx, a.prefs.SpreadsheetID, rec, index[rec.UID])
}

func (a *app) cmdExpense(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("expense needs a subcommand: add, update, rm or list")
	}
	sub, rest := args[0], args[1:]

	fs := flag.NewFlagSet("expense "+sub, flag.ExitOnError)
	name := fs.String("name", "", "expense label")
	date := fs.String("date", core.FormatDay(time.Now()), "calendar day (YYYY-MM-DD)")
	amount := fs.Float64("amount", 0, "expense amount")
	recurring := fs.Bool("recurring", false, "apply to every month")
	id := fs.String("id", "", "record id (update only; kept when empty)")
	row := fs.Int("row", 0, "row position from 'expense list'")
	fs.Parse(rest)

	doc := a.prefs.SpreadsheetID
	switch sub {
	case "list":
		records, err := a.expenses.List(a.ctx, doc)
		if err != nil {
			return err
		}
		for i, r := range records {
			fmt.Printf("row %d  %s  %s  %.2f  recurring=%v  (%s)\n", i+2, r.Date, r.Name, r.Amount, r.Recurring, r.ID)
		}
		return nil
	case "add":
		rec, err := a.expenses.Add(a.ctx, doc, core.ExpenseRecord{
			Name: *name, Date: *date, Amount: *amount, Recurring: *recurring,
		})
		if err != nil {
			return err
		}
		fmt.Printf("added %s (%s)\n", rec.Name, rec.ID)
		return nil
	case "update":
		return a.expenses.Update(a.ctx, doc, core.ExpenseRecord{
			ID: *id, Name: *name, Date: *date, Amount: *amount, Recurring: *recurring,
		}, core.RowPosition(*row))
	case "rm":
		return a.expenses.Delete(a.ctx, doc, core.RowPosition(*row))
	default:
		return fmt.Errorf("unknown expense subcommand %q", sub)
	}
}

func (a *app) cmdCategories(args []string) error {
	if len(args) > 0 && args[0] == "set" {
		fs := flag.NewFlagSet("categories set", flag.ExitOnError)
		names := fs.String("names", "", "comma-separated category names")
		fs.Parse(args[1:])
		return a.config.UpdateCategories(a.ctx, a.prefs.SpreadsheetID, strings.Split(*names, ","))
	}
	cats, err := a.config.Categories(a.ctx, a.prefs.SpreadsheetID)
	if err != nil {
		return err
	}
	for _, c := range cats {
		fmt.Println(c)
	}
	return nil
}

func (a *app) cmdDocs() error {
	docs, err := a.backend.Tabular.ListDocuments(a.ctx)
	if err != nil {
		return err
	}
	for _, d := range docs {
		fmt.Printf("%s  %s  (modified %s)\n", d.ID, d.Name, d.Modified.Format(time.RFC3339))
	}
	return nil
}

func (a *app) cmdSetup(args []string) error {
	fs := flag.NewFlagSet("setup", flag.ExitOnError)
	title := fs.String("title", "tsink", "title of the new document")
	fs.Parse(args)

	id, err := a.backend.Tabular.CreateDocument(a.ctx, *title)
	if err != nil {
		return err
	}
	if err := a.store.SetSpreadsheetID(a.ctx, id); err != nil {
		return err
	}
	fmt.Println(id)
	return nil
}

func (a *app) cmdUse(args []string) error {
	fs := flag.NewFlagSet("use", flag.ExitOnError)
	doc := fs.String("doc", "", "document id")
	cal := fs.String("calendar", "", "calendar id")
	currency := fs.String("currency", "", "currency code")
	fs.Parse(args)

	if *doc != "" {
		if err := a.store.SetSpreadsheetID(a.ctx, *doc); err != nil {
			return err
		}
	}
	if *cal != "" {
		if err := a.store.SetCalendarID(a.ctx, *cal); err != nil {
			return err
		}
	}
	if *currency != "" {
		if err := a.store.SetCurrency(a.ctx, *currency); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) cmdExport() error {
	data, err := settings.Export(a.prefs, time.Now())
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func (a *app) cmdImport() error {
	data, err := readAllStdin()
	if err != nil {
		return err
	}
	changes, err := settings.ParseImport(data)
	if err != nil {
		return err
	}
	if err := a.store.Apply(a.ctx, changes); err != nil {
		return err
	}
	a.logger.Info("settings imported", "fields", len(changes))
	return nil
}

func readAllStdin() ([]byte, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	return data, nil
}
