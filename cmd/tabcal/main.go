package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"tabcal/internal/config"
	"tabcal/internal/extract"
	appLog "tabcal/internal/log"
	"tabcal/internal/model"
	"tabcal/internal/pipeline"
	"tabcal/internal/temporal"
)

// flagConfig holds CLI flag values before merging with the config file.
type flagConfig struct {
	configPath string
	input      string
	kind       string
	sheet      string
	delimiter  string
	baseDate   string
	timezone   string
	name       string
	format     string
	output     string
	mapping    string
	recurrence string
	reminder   int
	refresh    string
	logLevel   string
}

func main() {
	appLog.Info("tabcal starting", "version", "0.1.0-dev")

	flags := parseFlags()
	appLog.SetLevel(appLog.ParseLevel(flags.logLevel))

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}

	// CLI flags override individual config fields when set.
	if flags.timezone != "" {
		conf.Timezone = flags.timezone
	}
	if flags.name != "" {
		conf.CalendarName = flags.name
	}
	if flags.recurrence != "" {
		conf.Recurrence = flags.recurrence
	}
	if flags.reminder >= 0 {
		conf.ReminderMinutes = flags.reminder
	}
	if flags.refresh != "" {
		conf.RefreshCron = flags.refresh
	}
	conf.Normalize()

	if flags.input == "" {
		appLog.Error("no input file", fmt.Errorf("pass -in <path>"))
		os.Exit(2)
	}

	req, err := buildRequest(flags, conf)
	if err != nil {
		appLog.Error("invalid invocation", err)
		os.Exit(2)
	}

	appLog.Info("effective config",
		"input", flags.input,
		"kind", string(req.Kind),
		"timezone", conf.Timezone,
		"calendar_name", conf.CalendarName,
		"recurrence", string(req.Recurrence),
		"reminder_minutes", req.ReminderMinutes,
		"refresh", conf.RefreshCron,
		"format", flags.format,
	)

	run := func() error { return runOnce(flags, conf, req) }

	if conf.RefreshCron == "" {
		if err := run(); err != nil {
			appLog.Error("conversion failed", err)
			os.Exit(1)
		}
		appLog.Info("tabcal exiting")
		return
	}

	// Refresh mode: re-read and re-convert the input on a cron schedule
	// until interrupted. The input path is re-read each tick, so a source
	// file updated in place produces fresh output.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	if err := run(); err != nil {
		appLog.Error("initial conversion failed", err)
	}

	c := cron.New()
	if _, err := c.AddFunc(conf.RefreshCron, func() {
		if err := run(); err != nil {
			appLog.Error("scheduled conversion failed", err)
		}
	}); err != nil {
		appLog.Error("invalid refresh schedule", err, "refresh", conf.RefreshCron)
		os.Exit(2)
	}
	c.Start()

	<-ctx.Done()
	stopCtx := c.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(5 * time.Second):
	}
	appLog.Info("tabcal exiting")
}

// buildRequest translates flags and config into a pipeline request. The
// input bytes are loaded per run, not here, so refresh mode sees updates.
func buildRequest(flags flagConfig, conf *config.Config) (pipeline.Request, error) {
	var req pipeline.Request

	if flags.kind != "" {
		req.Kind = extract.SourceKind(flags.kind)
		switch req.Kind {
		case extract.KindDocument, extract.KindSpreadsheet, extract.KindDelimited:
		default:
			return req, fmt.Errorf("unknown source kind %q", flags.kind)
		}
	} else {
		kind, err := extract.KindFromPath(flags.input)
		if err != nil {
			return req, err
		}
		req.Kind = kind
	}

	req.Sheet = flags.sheet
	req.Encodings = conf.Encodings
	req.ExtraKeywords = conf.ExtraKeywords

	switch flags.delimiter {
	case "", ",":
	case "\\t", "tab":
		req.Comma = '\t'
	default:
		req.Comma = []rune(flags.delimiter)[0]
	}
	if req.Comma == 0 && strings.HasSuffix(strings.ToLower(flags.input), ".tsv") {
		req.Comma = '\t'
	}

	if flags.baseDate != "" {
		base, err := temporal.ResolveDate(flags.baseDate, nil)
		if err != nil {
			return req, fmt.Errorf("base date %q: %w", flags.baseDate, err)
		}
		req.BaseDate = &base
	}

	if flags.mapping != "" {
		overrides, err := parseMapping(flags.mapping)
		if err != nil {
			return req, err
		}
		req.Overrides = overrides
	}

	rec, err := model.ParseRecurrence(conf.Recurrence)
	if err != nil {
		return req, err
	}
	req.Recurrence = rec
	req.ReminderMinutes = conf.ReminderMinutes

	return req, nil
}

func runOnce(flags flagConfig, conf *config.Config, req pipeline.Request) error {
	data, err := os.ReadFile(flags.input)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	req.Data = data

	out, err := pipeline.Run(req)
	if err != nil {
		return err
	}

	var payload []byte
	switch flags.format {
	case "json":
		payload, err = json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		payload = append(payload, '\n')
	case "ics", "":
		payload, err = out.EmitICS(conf.CalendarName, conf.Timezone)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown output format %q", flags.format)
	}

	if flags.output == "" || flags.output == "-" {
		_, err = os.Stdout.Write(payload)
		return err
	}
	if err := os.WriteFile(flags.output, payload, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	appLog.Info("output written", "path", flags.output, "bytes", len(payload),
		"accepted", out.Stats.Accepted, "dropped", out.Stats.Dropped, "merged", out.Stats.Merged)
	return nil
}

// parseMapping parses "-map role=Column,role=Column" overrides.
func parseMapping(s string) (map[model.Role]string, error) {
	out := map[model.Role]string{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		role, col, ok := strings.Cut(part, "=")
		if !ok || col == "" {
			return nil, fmt.Errorf("bad mapping entry %q, want role=Column", part)
		}
		switch r := model.Role(strings.TrimSpace(role)); r {
		case model.RoleDate, model.RoleTime, model.RoleTitle,
			model.RoleLocation, model.RoleEndTime, model.RoleDescription:
			out[r] = strings.TrimSpace(col)
		default:
			return nil, fmt.Errorf("unknown role %q", role)
		}
	}
	return out, nil
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", defaultConfigPath(), "Path to config file")
	flag.StringVar(&cfg.input, "in", "", "Input timetable file (pdf, xlsx, csv, tsv)")
	flag.StringVar(&cfg.kind, "kind", "", "Force source kind: document, spreadsheet or delimited (default: by extension)")
	flag.StringVar(&cfg.sheet, "sheet", "", "Spreadsheet sheet name (default: sheet with the most data)")
	flag.StringVar(&cfg.delimiter, "delimiter", "", "Field delimiter for delimited text (default: comma, tab for .tsv)")
	flag.StringVar(&cfg.baseDate, "base-date", "", "Base date for weekday-only cells, e.g. 2026-01-12")
	flag.StringVar(&cfg.timezone, "timezone", "", "IANA timezone for events (overrides config if set)")
	flag.StringVar(&cfg.name, "name", "", "Calendar name (overrides config if set)")
	flag.StringVar(&cfg.format, "format", "ics", "Output format: ics or json")
	flag.StringVar(&cfg.output, "out", "-", "Output path, - for stdout")
	flag.StringVar(&cfg.mapping, "map", "", "Role overrides, e.g. date=Day,title=Course")
	flag.StringVar(&cfg.recurrence, "recurrence", "", "Recurrence: none, weekly, daily-weekdays or an upper-case weekday")
	flag.IntVar(&cfg.reminder, "reminder", -1, "Reminder minutes before each event, 0 disables (overrides config if set)")
	flag.StringVar(&cfg.refresh, "refresh", "", "Cron schedule for re-running the conversion (overrides config if set)")
	flag.StringVar(&cfg.logLevel, "log-level", "info", "Log level: debug, info, warn, error")

	flag.Parse()

	return cfg
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "tabcal.yaml"
	}
	return home + "/.config/tabcal/config.yaml"
}
