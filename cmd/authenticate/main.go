package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"upstox-mcp/internal/auth"
	"upstox-mcp/internal/creds"
	"upstox-mcp/internal/faults"
	"upstox-mcp/internal/logger"
	"upstox-mcp/internal/store"
	"upstox-mcp/internal/upstox"
)

// The authenticate command is the only place reauthorization happens: it
// walks the operator through the browser flow, captures the redirect on the
// local port, exchanges the code, and persists the new credential.
func main() {
	configPath := flag.String("config", "config.yaml", "path to the config file")
	manual := flag.Bool("manual", false, "paste the authorization code instead of capturing the redirect")
	debug := flag.Bool("debug", false, "print masked credentials and extra hints")
	flag.Parse()

	_ = godotenv.Load()
	if err := logger.Init(); err != nil {
		log.Fatal(err)
	}

	cfg, err := store.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	apiKey := os.Getenv("UPSTOX_API_KEY")
	apiSecret := os.Getenv("UPSTOX_API_SECRET")
	if apiKey == "" || apiSecret == "" {
		fmt.Println("UPSTOX_API_KEY and UPSTOX_API_SECRET must be set.")
		fmt.Println("Add them to your environment or a .env file:")
		fmt.Println("  UPSTOX_API_KEY=your_api_key")
		fmt.Println("  UPSTOX_API_SECRET=your_api_secret")
		os.Exit(1)
	}

	if *debug {
		fmt.Printf("API key:      %s\n", mask(apiKey))
		fmt.Printf("API secret:   %s\n", mask(apiSecret))
		fmt.Printf("Redirect URI: %s\n", cfg.Upstox.RedirectURI)
		fmt.Println()
	}

	ctx := context.Background()
	credStore := creds.NewFileStore(cfg.Upstox.TokenFile)
	flow := auth.NewFlow(auth.FlowConfig{
		ClientID:       apiKey,
		ClientSecret:   apiSecret,
		RedirectURI:    cfg.Upstox.RedirectURI,
		ListenAddr:     cfg.Auth.ListenAddr,
		CaptureTimeout: time.Duration(cfg.Auth.CaptureTimeoutSeconds) * time.Second,
	}, credStore)

	authURL, err := flow.BuildAuthorizationURL()
	if err != nil {
		log.Fatalf("build authorization URL: %v", err)
	}

	fmt.Println("Step 1: visit this URL to authorize:")
	fmt.Println()
	fmt.Println("  " + authURL)
	fmt.Println()

	var code string
	if *manual {
		code = readCode()
	} else {
		fmt.Printf("Step 2: waiting for the redirect on %s (timeout %ds)...\n",
			cfg.Auth.ListenAddr, cfg.Auth.CaptureTimeoutSeconds)
		code, err = flow.CaptureRedirect(ctx)
		if err != nil {
			if faults.Is(err, faults.AuthTimeout) {
				log.Fatalf("%v\nRe-run this command, or use -manual to paste the code yourself.", err)
			}
			log.Fatalf("capture redirect: %v", err)
		}
	}

	fmt.Println("Exchanging code for access token...")
	cred, err := flow.ExchangeCode(ctx, code)
	if err != nil {
		if faults.Is(err, faults.AuthRejected) {
			log.Fatalf("%v\nCodes are single-use and expire within minutes; get a fresh one and try again.", err)
		}
		log.Fatalf("exchange code: %v", err)
	}

	fmt.Printf("Authenticated. Token valid until %s.\n", cred.ExpiresAt.Format(time.RFC1123))
	fmt.Printf("Credential saved to %s.\n", cfg.Upstox.TokenFile)

	verify(ctx, cfg, cred.AccessToken)
}

// verify confirms the fresh token works by fetching the profile and, when
// available, the market status.
func verify(ctx context.Context, cfg *store.Config, token string) {
	client := upstox.NewClient(upstox.Params{
		BaseURL:      cfg.Upstox.BaseURL,
		Timeout:      time.Duration(cfg.Upstox.TimeoutSeconds) * time.Second,
		RateLimitRPS: cfg.Upstox.RateLimitRPS,
	})

	profile, err := client.GetProfile(ctx, token)
	if err != nil {
		fmt.Printf("Warning: could not verify the token against the profile endpoint: %v\n", err)
		return
	}
	fmt.Printf("Connected as %s (%s), broker %s, exchanges %s.\n",
		profile.UserName, profile.Email, profile.Broker, strings.Join(profile.Exchanges, ", "))

	status, err := client.GetMarketStatus(ctx, token)
	if err != nil {
		fmt.Printf("Could not fetch market status: %v\n", err)
		return
	}
	for exchange, st := range status {
		fmt.Printf("  %s: %s\n", exchange, st)
	}
}

func readCode() string {
	fmt.Println("Step 2: after authorizing you will be redirected to a URL like")
	fmt.Println("  http://localhost:8080/?code=XXXXX&state=...")
	fmt.Print("Paste the code parameter here: ")

	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		log.Fatal("no code entered")
	}
	code := strings.TrimSpace(scanner.Text())

	// Tolerate a pasted full redirect URL and pull the code out of it.
	if strings.Contains(code, "code=") {
		code = strings.SplitN(code, "code=", 2)[1]
		code = strings.SplitN(code, "&", 2)[0]
	}
	if code == "" {
		log.Fatal("no code entered")
	}
	return code
}

func mask(s string) string {
	if len(s) <= 10 {
		return "****"
	}
	return s[:6] + "..." + s[len(s)-4:]
}
