package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/harrisonrobin/tasktrack/pkg/auth"
	"github.com/harrisonrobin/tasktrack/pkg/cli"
	"github.com/harrisonrobin/tasktrack/pkg/config"
	"github.com/harrisonrobin/tasktrack/pkg/gcal"
	"github.com/harrisonrobin/tasktrack/pkg/tracker"
	"github.com/spf13/pflag"
	"golang.org/x/term"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("tasktrack: ")

	// 1. Parse Flags
	flags := pflag.NewFlagSet("tasktrack", pflag.ExitOnError)
	calendarName := flags.StringP("calendar", "c", "", "Google Calendar name to sync with (overrides config)")
	setCalendar := flags.String("set-calendar", "", "Set the default Google Calendar name")
	doAuth := flags.Bool("auth", false, "Authenticate with Google Calendar")
	sync := flags.Bool("sync", false, "Enable the Sync to Calendar menu entry")
	noColor := flags.Bool("no-color", false, "Disable coloured output")
	flags.Parse(os.Args[1:])

	// 2. Handle Set Calendar
	if *setCalendar != "" {
		cfg, err := config.Load()
		if err != nil {
			log.Fatalf("Error loading config: %v", err)
		}
		cfg.Calendar = *setCalendar
		if err := config.Save(cfg); err != nil {
			log.Fatalf("Error saving config: %v", err)
		}
		fmt.Printf("Default calendar set to: %s\n", *setCalendar)
		return
	}

	// 3. Resolve Config (Priority: Flag > Config > Default)
	cfg, err := config.Load()
	if err != nil {
		log.Printf("Warning: could not load config, using defaults: %v", err)
		cfg = &config.Config{Calendar: config.DefaultCalendar}
	}
	if *calendarName != "" {
		cfg.Calendar = *calendarName
	}
	dir, err := config.Dir()
	if err != nil {
		log.Fatalf("could not find path to configuration directory: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Handle Authentication
	if *doAuth {
		if err := auth.Reset(dir); err != nil {
			log.Fatalf("%v. Please delete it manually", err)
		}
		if _, err := auth.HTTPClient(ctx, dir, auth.CalendarScopes); err != nil {
			log.Fatalf("Authentication failed: %v", err)
		}
		log.Printf("Authentication successful! Token saved to %s", auth.TokenFile)
		return
	}

	// 5. Interactive Session
	opts := []cli.Option{
		cli.WithColor(!*noColor && cfg.ColorEnabled(term.IsTerminal(int(os.Stdout.Fd())))),
	}
	if *sync || *calendarName != "" {
		opts = append(opts, cli.WithSync(calendarSync(dir, cfg.Calendar)))
	}

	store := tracker.NewStore()
	if err := cli.New(store, os.Stdin, os.Stdout, opts...).Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("Error: %v", err)
	}
}

// calendarSync connects lazily so the browser flow only runs when the user
// actually asks for a push.
func calendarSync(dir, calendarName string) cli.SyncFunc {
	var client *gcal.Client
	return func(ctx context.Context, tasks []tracker.Task, removed []string) (string, error) {
		if client == nil {
			httpClient, err := auth.HTTPClient(ctx, dir, auth.CalendarScopes)
			if err != nil {
				return "not connected", err
			}
			c, err := gcal.NewClient(ctx, httpClient, calendarName)
			if err != nil {
				return "not connected", err
			}
			client = c
		}
		report, err := client.Sync(ctx, tasks, removed)
		return report.String(), err
	}
}
