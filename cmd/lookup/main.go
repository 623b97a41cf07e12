// Command lookup asks public IP-echo services for this machine's internet
// facing address and classifies the User-Agent it sends while doing so.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ivugurura/iplens/config"
	"github.com/ivugurura/iplens/internal/classify"
	"github.com/ivugurura/iplens/internal/connection"
	"github.com/ivugurura/iplens/internal/logging"
	"github.com/ivugurura/iplens/internal/lookup"
	"github.com/ivugurura/iplens/internal/netutil"
)

const defaultUserAgent = "iplens-lookup/1.0"

func main() {
	_ = godotenv.Load()
	os.Exit(run(os.Args[1:], config.LoadConfig(), os.Stdout, os.Stderr))
}

type report struct {
	Timestamp string                  `json:"timestamp"`
	Address   *lookup.Info            `json:"address,omitempty"`
	DualStack *lookup.DualStack       `json:"dualStack,omitempty"`
	UserAgent string                  `json:"userAgent"`
	Browser   classify.BrowserProfile `json:"browser"`
}

func run(args []string, cfg *config.Config, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("lookup", flag.ContinueOnError)
	fs.SetOutput(stderr)

	dual := fs.Bool("dual", false, "query every service concurrently and report IPv4 and IPv6 separately")
	timeout := fs.Duration("timeout", cfg.LookupTimeout, "wait per service")
	proxyURL := fs.String("proxy", cfg.LookupProxy, "outbound proxy (http://, socks5://)")
	servicesFile := fs.String("services", cfg.LookupServicesFile, "JSON file replacing the built-in service list")
	userAgent := fs.String("ua", defaultUserAgent, "User-Agent to send and classify")
	all := fs.Bool("all", !cfg.LookupRequireCORS, "also use services that browsers cannot reach (no CORS)")
	asJSON := fs.Bool("json", false, "print JSON instead of a table")
	only4 := fs.Bool("4", false, "dial over IPv4 only")
	only6 := fs.Bool("6", false, "dial over IPv6 only")
	logLevel := fs.String("log-level", cfg.LogLevel, "debug|info|warn|error")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *only4 && *only6 {
		fmt.Fprintln(stderr, "-4 and -6 are mutually exclusive")
		return 2
	}

	logger := logging.New(stderr, *logLevel, cfg.LogFormat)

	family := "any"
	switch {
	case *only4:
		family = "ipv4"
	case *only6:
		family = "ipv6"
	}
	hc, err := netutil.NewHTTPClient(netutil.ClientOptions{Timeout: *timeout, Family: family, ProxyURL: *proxyURL})
	if err != nil {
		fmt.Fprintln(stderr, "http client:", err)
		return 2
	}

	services := lookup.DefaultServices
	if *servicesFile != "" {
		services, err = lookup.LoadServices(*servicesFile)
		if err != nil {
			fmt.Fprintln(stderr, "services:", err)
			return 2
		}
	}

	client := lookup.NewClient(
		lookup.WithHTTPClient(hc),
		lookup.WithServices(services),
		lookup.WithTimeout(*timeout),
		lookup.WithRequireCORS(!*all),
		lookup.WithUserAgent(*userAgent),
		lookup.WithLogger(logger),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rep := report{
		UserAgent: *userAgent,
		Browser:   classify.Profile(*userAgent),
	}
	if *dual {
		ds, err := client.ResolveDualStack(ctx)
		if err != nil {
			return failed(stderr, err)
		}
		rep.DualStack = &ds
	} else {
		info, err := client.Resolve(ctx)
		if err != nil {
			return failed(stderr, err)
		}
		rep.Address = &info
	}
	rep.Timestamp = connection.FormatTimestamp(time.Now())

	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep); err != nil {
			fmt.Fprintln(stderr, "write output:", err)
			return 1
		}
		return 0
	}
	fmt.Fprintln(stdout, render(rep))
	return 0
}

func failed(stderr io.Writer, err error) int {
	if errors.Is(err, lookup.ErrNoAddress) {
		fmt.Fprintln(stderr, "Could not determine your public IP address. Check your connection and try again.")
	} else {
		fmt.Fprintln(stderr, "lookup failed:", err)
	}
	return 1
}
