package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"

	"tournament-stats/internal/apierr"
	"tournament-stats/internal/config"
	"tournament-stats/internal/discord"
	"tournament-stats/internal/pipeline"
	"tournament-stats/internal/ratelimit"
	"tournament-stats/internal/riot"
	"tournament-stats/internal/sheets"
)

const (
	exitOK     = 0
	exitFailed = 1
	exitConfig = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	envFile := flag.String("env", "", "Path to a .env file (default: .env, ../.env)")
	dryRun := flag.Bool("dry-run", false, "Print rows to stdout instead of writing to the sheet")
	flag.Parse()

	var loaded string
	if *envFile != "" {
		loaded = config.LoadEnv(*envFile)
	} else {
		loaded = config.LoadEnv()
	}
	if loaded != "" {
		fmt.Printf("Loaded .env from: %s\n", loaded)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Printf("Configuration error: %v", err)
		return exitConfig
	}

	runID := uuid.NewString()
	start := time.Now()
	printBanner(cfg, runID, *dryRun)

	ctx := pipeline.SetupSignalHandler(nil)

	var notifier *discord.WebhookClient
	if cfg.DiscordWebhookURL != "" && !*dryRun {
		notifier = discord.NewWebhookClient(cfg.DiscordWebhookURL)
	}
	abort := func(err error) int {
		log.Printf("[Pipeline] Run failed before processing codes: %v", err)
		if notifier != nil {
			nctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if nerr := notifier.SendRunFailed(nctx, runID, err); nerr != nil {
				log.Printf("[Discord] Failed to send notification: %v", nerr)
			}
		}
		return exitFailed
	}

	// Check the key once up front so a bad key writes nothing
	validator := riot.NewKeyValidator(riot.WithBaseURL(riot.PlatformBaseURL(cfg.Region)))
	valid, err := validator.ValidateKey(ctx, cfg.RiotAPIKey)
	switch {
	case err != nil:
		log.Printf("[Riot] Could not validate API key, continuing: %v", err)
	case !valid:
		return abort(fmt.Errorf("riot API key %s rejected (expired dev key?): %w", riot.MaskAPIKey(cfg.RiotAPIKey), apierr.ErrAuth))
	default:
		fmt.Println("API key OK")
	}

	limiter := ratelimit.New(ratelimit.SystemClock{}, cfg.APIDelay, cfg.RateWindows()...)
	client, err := riot.NewClient(cfg.RiotAPIKey, cfg.Region, limiter)
	if err != nil {
		return abort(err)
	}

	var writer pipeline.Writer
	spreadsheet := "stdout"
	if *dryRun {
		writer = sheets.NewConsoleWriter(os.Stdout)
	} else {
		sw, err := openSheet(ctx, cfg)
		if err != nil {
			return abort(err)
		}
		writer = sw
		spreadsheet = cfg.SpreadsheetName
		if cfg.SpreadsheetID != "" {
			spreadsheet = cfg.SpreadsheetID
		}
		spreadsheet += " / " + cfg.Worksheet
	}

	driver := pipeline.NewDriver(client, client, writer, pipeline.Config{
		MaxAttempts: cfg.MaxAttempts,
		BaseDelay:   cfg.RetryBaseDelay,
		Location:    cfg.Location,
		Clock:       ratelimit.SystemClock{},
	})
	driver.OnTransition(func(code string, from, to pipeline.State) {
		if to.Terminal() {
			log.Printf("[Pipeline] %s: %s -> %s", code, from, to)
		}
	})

	summary := driver.Run(ctx, cfg.Codes)

	fmt.Println()
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println("Run complete")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println(summary)
	fmt.Printf("Run ID: %s\n", runID)

	if notifier != nil {
		report := discord.RunReport{
			RunID:        runID,
			Spreadsheet:  spreadsheet,
			CodesDone:    summary.CodesDone,
			CodesSkipped: summary.CodesSkipped,
			CodesFailed:  summary.CodesFailed,
			RowsWritten:  summary.RowsWritten,
			Runtime:      time.Since(start),
		}
		if summary.Fatal != nil {
			report.FatalCause = summary.Fatal.Error()
		}
		nctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := notifier.SendRunSummary(nctx, report); err != nil {
			log.Printf("[Discord] Failed to send notification: %v", err)
		}
	}

	if errors.Is(summary.Fatal, apierr.ErrAuth) {
		fmt.Println("Authentication was rejected. Regenerate the Riot key or share the sheet with the service account.")
	}
	if summary.ExitCode() != exitOK {
		return exitFailed
	}
	return exitOK
}

// openSheet connects to the spreadsheet and prepares the worksheet and
// header before any Riot call is made.
func openSheet(ctx context.Context, cfg config.Config) (*sheets.Writer, error) {
	if _, err := os.Stat(cfg.CredentialsFile); err != nil {
		return nil, fmt.Errorf("google credentials %s: %w", cfg.CredentialsFile, err)
	}

	w, err := sheets.NewWriter(ctx, cfg.CredentialsFile, sheets.Target{
		SpreadsheetID:   cfg.SpreadsheetID,
		SpreadsheetName: cfg.SpreadsheetName,
		Worksheet:       cfg.Worksheet,
	})
	if err != nil {
		return nil, err
	}
	if err := w.EnsureWorksheet(ctx); err != nil {
		return nil, err
	}
	if _, err := w.EnsureHeader(ctx); err != nil {
		return nil, err
	}
	fmt.Printf("Connected to spreadsheet %s, worksheet '%s'\n", w.SpreadsheetID(), cfg.Worksheet)
	return w, nil
}

func printBanner(cfg config.Config, runID string, dryRun bool) {
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println("Riot Tournament Stats -> Google Sheets")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Run ID:     %s\n", runID)
	fmt.Printf("API key:    %s (%s)\n", riot.MaskAPIKey(cfg.RiotAPIKey), cfg.KeyTier)
	fmt.Printf("Region:     %s\n", cfg.Region)
	fmt.Printf("Timezone:   %s\n", cfg.Location)
	fmt.Printf("Codes:      %d\n", len(cfg.Codes))
	if dryRun {
		fmt.Println("Mode:       dry run (rows printed, nothing written)")
	}
	fmt.Println(strings.Repeat("=", 60))
}
