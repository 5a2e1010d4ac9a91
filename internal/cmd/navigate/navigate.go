// Package navigate drives a navigation synchronizer against a running web
// server and prints the resulting document state.
package navigate

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"strings"

	entrypoint "github.com/louisbranch/pagesync/internal/platform/cmd"
	"github.com/louisbranch/pagesync/internal/services/navigator"
)

// ErrUsage marks configuration errors that should exit with a usage code.
var ErrUsage = errors.New("usage")

// Config holds navigate command configuration.
type Config struct {
	BaseURL   string `env:"PAGESYNC_NAVIGATE_BASE_URL"  envDefault:"http://localhost:8080/"`
	Policy    string `env:"PAGESYNC_NAVIGATE_POLICY"    envDefault:"discard-stale"`
	Analytics bool   `env:"PAGESYNC_NAVIGATE_ANALYTICS" envDefault:"true"`
	// Sequential waits for each navigation before starting the next.
	Sequential bool `env:"PAGESYNC_NAVIGATE_SEQUENTIAL"`
	// Links are followed in order after the initial page load.
	Links []string

	policy navigator.FailurePolicy
}

// Result is the JSON document printed after all navigations settle.
type Result struct {
	Location string                  `json:"location"`
	Document navigator.DocumentState `json:"document"`
	Requests []RequestResult         `json:"requests"`
}

// RequestResult reports the outcome of one navigation.
type RequestResult struct {
	ID      uint64 `json:"id"`
	Route   string `json:"route"`
	Outcome string `json:"outcome"`
	Error   string `json:"error,omitempty"`
}

// ParseConfig parses environment and flags into a Config. Positional
// arguments are the links to follow.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.BaseURL, "base", cfg.BaseURL, "Site base URL")
	fs.StringVar(&cfg.Policy, "policy", cfg.Policy, "Failure policy: discard-stale or apply-always")
	fs.BoolVar(&cfg.Analytics, "analytics", cfg.Analytics, "Report page views to the server")
	fs.BoolVar(&cfg.Sequential, "sequential", cfg.Sequential, "Wait for each navigation before the next")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	policy, err := navigator.ParseFailurePolicy(cfg.Policy)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return Config{}, fmt.Errorf("%w: base url is required", ErrUsage)
	}
	cfg.policy = policy
	cfg.Links = fs.Args()
	return cfg, nil
}

// Run boots a synchronizer at the base URL, follows every link and writes
// the final state to out as JSON.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceNavigate, func(ctx context.Context) error {
		result, err := Navigate(ctx, cfg)
		if err != nil {
			return err
		}
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(result); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
		return nil
	})
}

// Navigate performs the navigations and returns the settled state.
func Navigate(ctx context.Context, cfg Config) (Result, error) {
	fetcher, err := navigator.NewHTTPFetcher(cfg.BaseURL, nil)
	if err != nil {
		return Result{}, err
	}
	var analytics navigator.Analytics
	if cfg.Analytics {
		httpAnalytics, err := navigator.NewHTTPAnalytics(cfg.BaseURL, nil)
		if err != nil {
			return Result{}, err
		}
		analytics = httpAnalytics
	}

	doc := navigator.NewDocument(navigator.DocumentState{})
	if items, err := navigator.FetchMenu(ctx, cfg.BaseURL, nil); err != nil {
		log.Printf("menu unavailable err=%v", err)
	} else {
		doc.SetMenu(items)
	}
	nav, err := navigator.New(navigator.Config{
		Fetcher:       fetcher,
		View:          doc,
		History:       doc,
		Menu:          doc,
		Analytics:     analytics,
		BaseURL:       cfg.BaseURL,
		FailurePolicy: cfg.policy,
		Logf:          log.Printf,
	})
	if err != nil {
		return Result{}, err
	}

	boot, err := nav.Boot(ctx, cfg.BaseURL, false)
	if err != nil {
		return Result{}, fmt.Errorf("boot: %w", err)
	}
	requests := []*navigator.Request{boot}
	if cfg.Sequential {
		if _, err := waitRequest(ctx, boot); err != nil {
			return Result{}, err
		}
	}
	for _, link := range cfg.Links {
		req, err := nav.Navigate(ctx, link)
		if err != nil {
			return Result{}, fmt.Errorf("navigate %s: %w", link, err)
		}
		requests = append(requests, req)
		if cfg.Sequential {
			if _, err := waitRequest(ctx, req); err != nil {
				return Result{}, err
			}
		}
	}

	result := Result{Requests: make([]RequestResult, 0, len(requests))}
	for _, req := range requests {
		outcome, err := waitRequest(ctx, req)
		if err != nil {
			return Result{}, err
		}
		entry := RequestResult{ID: req.ID, Route: req.Route, Outcome: outcome.String()}
		if reqErr := req.Err(); reqErr != nil {
			entry.Error = reqErr.Error()
		}
		result.Requests = append(result.Requests, entry)
	}
	nav.Wait()

	result.Location = nav.Location().Full
	result.Document = doc.Snapshot()
	return result, nil
}

func waitRequest(ctx context.Context, req *navigator.Request) (navigator.Outcome, error) {
	select {
	case <-req.Done():
		return req.Outcome(), nil
	case <-ctx.Done():
		return navigator.OutcomePending, fmt.Errorf("wait for request %d: %w", req.ID, ctx.Err())
	}
}
