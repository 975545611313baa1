package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/cursorwatch/cursorwatch/pkg/client"
	"github.com/cursorwatch/cursorwatch/pkg/config"
	"github.com/cursorwatch/cursorwatch/pkg/transport"
	"github.com/cursorwatch/cursorwatch/pkg/usage"
)

var (
	Version = "v1.0.0"
)

func main() {
	if len(os.Args) < 2 {
		usageAndExit()
	}

	switch os.Args[1] {
	case "check":
		runCheck(os.Args[2:])
	case "summary":
		runSummary(os.Args[2:])
	case "history":
		runHistory()
	case "version":
		fmt.Println("cursorwatch", Version)
	default:
		usageAndExit()
	}
}

func usageAndExit() {
	fmt.Println("Usage: cursorwatch <check [token] | summary [--force] | history | version>")
	fmt.Println()
	fmt.Println("  check    probe the Cursor usage endpoint directly (no daemon needed)")
	fmt.Println("  summary  print the current usage summary via cursorwatch-d")
	fmt.Println("  history  print recent fetch history via cursorwatch-d")
	fmt.Println()
	fmt.Println("Environment: CURSORWATCH_TOKEN, CURSORWATCH_PROXY, CURSORWATCH_ENDPOINT")
	os.Exit(1)
}

// runCheck exercises the same transport pipeline the daemon uses: same
// redirect bound, same cookie normalization. Useful for debugging tokens and
// proxies without a running daemon.
func runCheck(args []string) {
	cfg, _ := config.EnvProvider{}.Load()
	if len(args) > 0 {
		cfg.AuthToken = args[0]
	}
	if cfg.AuthToken == "" {
		fmt.Println("No token. Set CURSORWATCH_TOKEN or pass it as an argument.")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 45*time.Second)
	defer cancel()

	fmt.Printf("GET %s%s\n", transport.DefaultBaseURL, transport.UsageSummaryPath)
	c := transport.NewClient(cfg.AuthToken, cfg.ProxyURL)
	body, err := c.Fetch(ctx, transport.DefaultBaseURL+transport.UsageSummaryPath)
	if err != nil {
		fmt.Printf("FAILED (%s): %v\n", transport.KindOf(err), err)
		fmt.Println(usage.UserMessage(err))
		os.Exit(1)
	}

	summary, err := usage.ParseSummary(body)
	if err != nil {
		fmt.Printf("FAILED (%s): response did not match the usage summary schema\n", transport.KindOf(err))
		os.Exit(1)
	}

	fmt.Println("OK")
	printSummary(summary)
}

func runSummary(args []string) {
	force := len(args) > 0 && args[0] == "--force"

	c := client.NewClient(os.Getenv("CURSORWATCH_ENDPOINT"))
	resp, err := c.GetSummary(context.Background(), force)
	if err != nil {
		fmt.Printf("Error contacting daemon: %v\n", err)
		fmt.Println("Is cursorwatch-d running?")
		os.Exit(1)
	}

	fmt.Printf("Source: %s\n", resp.Source)
	if resp.Message != "" {
		fmt.Printf("Warning: %s\n", resp.Message)
	}
	printSummary(resp.Summary)
}

func runHistory() {
	c := client.NewClient(os.Getenv("CURSORWATCH_ENDPOINT"))
	records, err := c.GetHistory(context.Background(), 20)
	if err != nil {
		fmt.Printf("Error contacting daemon: %v\n", err)
		fmt.Println("Is cursorwatch-d running?")
		os.Exit(1)
	}

	for _, rec := range records {
		line := fmt.Sprintf("%s  %-12s", rec.At.Local().Format("2006-01-02 15:04:05"), rec.Source)
		if rec.ErrorKind != "" {
			line += "  " + rec.ErrorKind
		} else {
			line += fmt.Sprintf("  %3d%%  (%.0f/%.0f)", rec.Percentage, rec.Used, rec.Limit)
		}
		fmt.Println(line)
	}
}

func printSummary(s *usage.UsageSummary) {
	if s == nil {
		return
	}
	fmt.Printf("Plan: %s (%s)\n", s.MembershipType, s.LimitType)
	if s.BillingCycleStart != "" {
		fmt.Printf("Billing cycle: %s .. %s\n", s.BillingCycleStart, s.BillingCycleEnd)
	}
	if s.IsUnlimited {
		fmt.Println("Usage: unlimited plan")
		return
	}
	if s.IndividualUsage != nil && s.IndividualUsage.Overall != nil {
		o := s.IndividualUsage.Overall
		fmt.Printf("Individual: %.0f of %.0f used, %.0f remaining (%d%%)\n", o.Used, o.Limit, o.Remaining, o.Percentage())
	}
	if s.TeamUsage != nil {
		if b := s.TeamUsage.OnDemand; b != nil && b.Enabled {
			fmt.Printf("Team on-demand: %.0f of %.0f used (%d%%)\n", b.Used, b.Limit, b.Percentage())
		}
		if b := s.TeamUsage.Pooled; b != nil && b.Enabled {
			fmt.Printf("Team pooled: %.0f of %.0f used (%d%%)\n", b.Used, b.Limit, b.Percentage())
		}
	}
	if s.AutoModelSelectedDisplayMessage != "" {
		fmt.Println(s.AutoModelSelectedDisplayMessage)
	}
}
