package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"gorm.io/gorm"

	"daily-report/internal/bot"
	"daily-report/internal/config"
	"daily-report/internal/repository"
	"daily-report/internal/service"
	"daily-report/internal/web"
)

var ErrUsage = errors.New("usage")

func PrintUsage(w io.Writer) {
	fmt.Fprintln(w, "usage: dailyreport [serve]")
	fmt.Fprintln(w, "       dailyreport export --out FILE.xlsx [--from YYYY-MM-DD] [--to YYYY-MM-DD]")
	fmt.Fprintln(w, "       dailyreport import employees|categories --file FILE(.csv|.xlsx|.xls)")
	fmt.Fprintln(w, "       dailyreport digest [--date YYYY-MM-DD]")
}

// Execute runs the subcommand named by args[0]; no arguments means serve.
func Execute(args []string) error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}
	if len(args) == 0 {
		return runServe(nil)
	}

	switch args[0] {
	case "serve":
		return runServe(args[1:])
	case "export":
		return runExport(args[1:])
	case "import":
		return runImport(args[1:])
	case "digest":
		return runDigest(args[1:])
	default:
		return fmt.Errorf("%w: unknown command %q", ErrUsage, args[0])
	}
}

type app struct {
	cfg     config.Config
	db      *gorm.DB
	lookups *repository.LookupRepository
	logs    *repository.TaskLogRepository
}

func openApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	db, err := repository.NewDB(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("db: %w", err)
	}
	return &app{
		cfg:     cfg,
		db:      db,
		lookups: repository.NewLookupRepository(db),
		logs:    repository.NewTaskLogRepository(db),
	}, nil
}

func (a *app) Close() {
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func (a *app) notifier() (bot.Notifier, error) {
	if a.cfg.TelegramToken == "" {
		return bot.LogNotifier{}, nil
	}
	return bot.NewTelegram(a.cfg.TelegramToken, a.cfg.TelegramChatID)
}

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	addr := fs.String("addr", "", "listen address (overrides HTTP_ADDR)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()
	if *addr != "" {
		a.cfg.HTTPAddr = *addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.cfg.DigestEnabled() {
		scheduler, err := a.scheduleDigest()
		if err != nil {
			return err
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	reports := service.NewReportService(a.lookups, a.logs, a.cfg.FixedFields)
	srv := web.NewServer(reports, web.Options{
		Departments: a.cfg.Departments,
		Channels:    a.cfg.Channels,
		Priorities:  a.cfg.Priorities,
		Location:    a.cfg.Location,
	})

	mode := "full-field"
	if a.cfg.FixedFields {
		mode = "fixed-field"
	}
	log.Printf("[info] daily report started (db=%s, mode=%s)", a.cfg.DatabasePath, mode)
	if err := web.Run(ctx, a.cfg.HTTPAddr, srv.Routes()); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Println("[info] shutdown complete")
	return nil
}

func (a *app) scheduleDigest() (*service.SchedulerService, error) {
	notifier, err := a.notifier()
	if err != nil {
		return nil, err
	}
	digests := service.NewDigestService(a.logs, a.cfg.Location)

	scheduler := service.NewSchedulerService(a.cfg.Location)
	if _, err := scheduler.Schedule(a.cfg.DigestSchedule, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := bot.SendDigest(jobCtx, digests, notifier, digests.Today(time.Now())); err != nil {
			log.Printf("[warn] digest: %v", err)
		}
	}); err != nil {
		return nil, fmt.Errorf("schedule digest: %w", err)
	}
	log.Printf("[info] digest scheduled (%s)", a.cfg.DigestSchedule)
	return scheduler, nil
}

func runExport(args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	out := fs.String("out", "", "output .xlsx path")
	from := fs.String("from", "", "first log_date to include")
	to := fs.String("to", "", "last log_date to include")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if *out == "" {
		return fmt.Errorf("%w: --out is required", ErrUsage)
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if dir := filepath.Dir(*out); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	f, err := os.Create(*out)
	if err != nil {
		return fmt.Errorf("create %s: %w", *out, err)
	}

	n, err := service.NewExportService(a.logs).WriteXLSX(context.Background(), f, *from, *to)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close %s: %w", *out, cerr)
	}
	if err != nil {
		return err
	}
	log.Printf("[info] exported %d entries to %s", n, *out)
	return nil
}

func runImport(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: import needs employees or categories", ErrUsage)
	}
	kind := args[0]
	if kind != "employees" && kind != "categories" {
		return fmt.Errorf("%w: unknown import kind %q", ErrUsage, kind)
	}

	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	file := fs.String("file", "", "CSV, XLSX or XLS file with a header row")
	if err := fs.Parse(args[1:]); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if *file == "" {
		return fmt.Errorf("%w: --file is required", ErrUsage)
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	f, err := os.Open(*file)
	if err != nil {
		return fmt.Errorf("open %s: %w", *file, err)
	}
	defer f.Close()

	importer := service.NewImportService(a.lookups)
	ctx := context.Background()
	var n int
	if kind == "employees" {
		n, err = importer.ImportEmployees(ctx, f, *file)
	} else {
		n, err = importer.ImportCategories(ctx, f, *file)
	}
	if err != nil {
		return fmt.Errorf("import %s: %w", kind, err)
	}
	log.Printf("[info] imported %d %s from %s", n, kind, *file)
	return nil
}

func runDigest(args []string) error {
	fs := flag.NewFlagSet("digest", flag.ContinueOnError)
	date := fs.String("date", "", "log_date to summarize (default today)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	notifier, err := a.notifier()
	if err != nil {
		return err
	}
	digests := service.NewDigestService(a.logs, a.cfg.Location)
	if *date == "" {
		*date = digests.Today(time.Now())
	}
	return bot.SendDigest(context.Background(), digests, notifier, *date)
}
