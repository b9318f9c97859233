package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	_ "time/tzdata"

	"tournament-stats/internal/apierr"
	"tournament-stats/internal/config"
	"tournament-stats/internal/ratelimit"
	"tournament-stats/internal/riot"
	"tournament-stats/internal/stats"
)

func main() {
	config.LoadEnv()

	code := flag.String("code", "", "Tournament code to check")
	region := flag.String("region", "", "Regional route (default: RIOT_REGION or americas)")
	flag.Parse()

	if *code == "" {
		fmt.Println("Usage: go run ./cmd/codecheck --code=NA04a-XXXX")
		os.Exit(1)
	}

	apiKey := os.Getenv("RIOT_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("RIOT-DEV-KEY")
	}
	if *region == "" {
		*region = os.Getenv("RIOT_REGION")
	}
	if *region == "" {
		*region = "americas"
	}
	tz := os.Getenv("GAME_TIMEZONE")
	if tz == "" {
		tz = "America/New_York"
	}
	loc, err := config.ParseLocation(tz)
	if err != nil {
		log.Fatalf("Bad GAME_TIMEZONE: %v", err)
	}

	ctx := context.Background()

	// Step 1: Validate the key
	fmt.Printf("\n1. Validating API key %s...\n", riot.MaskAPIKey(apiKey))
	validator := riot.NewKeyValidator(riot.WithBaseURL(riot.PlatformBaseURL(*region)))
	valid, err := validator.ValidateKey(ctx, apiKey)
	if err != nil {
		log.Fatalf("Failed to validate key: %v", err)
	}
	if !valid {
		fmt.Println("   Result: REJECTED (expired or wrong key)")
		os.Exit(1)
	}
	fmt.Println("   Result: OK")

	limiter := ratelimit.New(ratelimit.SystemClock{}, 0, ratelimit.DevWindows()...)
	client, err := riot.NewClient(apiKey, *region, limiter)
	if err != nil {
		log.Fatalf("Failed to create Riot client: %v", err)
	}

	// Step 2: Resolve the code
	fmt.Printf("\n2. Resolving tournament code %s...\n", *code)
	ids, err := client.ResolveMatchIDs(ctx, *code)
	if errors.Is(err, apierr.ErrNotFound) {
		fmt.Println("   No matches yet (code unused or game still in progress)")
		return
	}
	if err != nil {
		log.Fatalf("Failed to resolve code (%s): %v", apierr.Kind(err), err)
	}
	for _, id := range ids {
		fmt.Printf("   %s\n", id)
	}

	// Step 3: Fetch each match and preview its rows
	fmt.Printf("\n3. Fetching %d match(es)...\n", len(ids))
	for _, id := range ids {
		match, err := client.FetchMatch(ctx, id)
		if err != nil {
			fmt.Printf("   %s: %v\n", id, err)
			continue
		}

		rows := stats.ExtractRows(*code, match, loc)
		kind := "custom"
		if !match.Info.IsCustomGame() {
			kind = fmt.Sprintf("queue %d", match.Info.QueueID)
		}
		fmt.Printf("   %s (%s, patch %s, %.1f min): %d rows\n",
			id, kind, match.Info.GameVersion, float64(match.Info.DurationSeconds())/60, len(rows))
		for _, r := range rows {
			fmt.Printf("     %-5s %-20s %-12s %2d/%2d/%2d  KDA %.2f  CS/min %.2f  %s\n",
				r.Side, r.SummonerName, r.Champion, r.Kills, r.Deaths, r.Assists, r.KDA, r.CSPerMinute, r.Result)
		}
	}

	fmt.Println("\nDone!")
}
