package lookup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ivugurura/iplens/internal/classify"
)

// ErrNoAddress is returned when no configured service produced an address.
var ErrNoAddress = errors.New("failed to retrieve IP address from all services")

const maxBody = 1 << 20

type Client struct {
	httpClient  *http.Client
	services    []Service
	timeout     time.Duration
	requireCORS bool
	userAgent   string
	logger      *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithServices(s []Service) Option {
	return func(c *Client) { c.services = s }
}

// WithTimeout bounds each individual service call.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithRequireCORS limits both resolution modes to services marked
// CORSEnabled, which is what a browser can reach.
func WithRequireCORS(require bool) Option {
	return func(c *Client) { c.requireCORS = require }
}

func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient:  &http.Client{},
		services:    DefaultServices,
		timeout:     5 * time.Second,
		requireCORS: true,
		logger:      slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Resolve finds the caller's public address, preferring IPv6.
//
// IPv6-capable services are asked first, in order. The first IPv6 answer is
// returned at once; the first IPv4 answer is kept as a fallback while the
// remaining IPv6-capable services are still tried. Only when that pass
// yields nothing are the IPv4-only services asked, stopping at the first
// IPv4 answer. A failing service is skipped, never retried.
func (c *Client) Resolve(ctx context.Context) (Info, error) {
	eligible := c.eligible()

	v6, v4 := c.searchIPv6(ctx, eligible)
	if v6 != nil {
		return *v6, nil
	}
	if v4 == nil {
		v4 = c.searchIPv4(ctx, eligible)
	}
	if v4 == nil {
		return Info{}, ErrNoAddress
	}
	return *v4, nil
}

func (c *Client) searchIPv6(ctx context.Context, services []Service) (v6, v4 *Info) {
	for _, svc := range services {
		if !svc.SupportsIPv6 {
			continue
		}
		info, err := c.fetch(ctx, svc)
		if err != nil {
			c.logger.Debug("lookup: service failed", "service", svc.Name, "err", err)
			continue
		}
		if info.IPType == classify.IPv6 {
			c.logger.Debug("lookup: IPv6 address retrieved", "service", svc.Name, "ip", info.IP)
			return &info, v4
		}
		if v4 == nil {
			c.logger.Debug("lookup: IPv4 address retrieved", "service", svc.Name, "ip", info.IP)
			v4 = &info
		}
	}
	return nil, v4
}

func (c *Client) searchIPv4(ctx context.Context, services []Service) *Info {
	for _, svc := range services {
		if svc.SupportsIPv6 {
			continue
		}
		info, err := c.fetch(ctx, svc)
		if err != nil {
			c.logger.Debug("lookup: service failed", "service", svc.Name, "err", err)
			continue
		}
		if info.IPType == classify.IPv4 {
			c.logger.Debug("lookup: IPv4 address retrieved", "service", svc.Name, "ip", info.IP)
			return &info
		}
	}
	return nil
}

// DualStack holds the first address of each family seen during a
// concurrent query. Either field may be nil.
type DualStack struct {
	IPv4 *Info `json:"ipv4,omitempty"`
	IPv6 *Info `json:"ipv6,omitempty"`
}

// ResolveDualStack asks every eligible service at once and waits for all of
// them. Failures are tolerated; ErrNoAddress is returned only when no
// service answered at all.
func (c *Client) ResolveDualStack(ctx context.Context) (DualStack, error) {
	var (
		mu  sync.Mutex
		out DualStack
		g   errgroup.Group
	)

	for _, svc := range c.eligible() {
		g.Go(func() error {
			info, err := c.fetch(ctx, svc)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			switch {
			case info.IPType == classify.IPv6 && out.IPv6 == nil:
				out.IPv6 = &info
			case info.IPType == classify.IPv4 && out.IPv4 == nil:
				out.IPv4 = &info
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		c.logger.Debug("lookup: dual stack query had failures", "err", err)
	}
	if out.IPv4 == nil && out.IPv6 == nil {
		return out, ErrNoAddress
	}
	return out, nil
}

func (c *Client) eligible() []Service {
	if !c.requireCORS {
		return c.services
	}
	out := make([]Service, 0, len(c.services))
	for _, s := range c.services {
		if s.CORSEnabled {
			out = append(out, s)
		}
	}
	return out
}

func (c *Client) fetch(ctx context.Context, svc Service) (Info, error) {
	parse, ok := parsers[svc.Vendor]
	if !ok {
		return Info{}, fmt.Errorf("%s: unknown vendor %q", svc.Name, svc.Vendor)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, svc.URL, nil)
	if err != nil {
		return Info{}, fmt.Errorf("%s: %w", svc.Name, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Info{}, fmt.Errorf("%s: %w", svc.Name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return Info{}, fmt.Errorf("%s: read body: %w", svc.Name, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Info{}, fmt.Errorf("%s: http status %d", svc.Name, resp.StatusCode)
	}

	info, err := parse(body)
	if err != nil {
		return Info{}, fmt.Errorf("%s: decode: %w", svc.Name, err)
	}
	info, err = normalize(info, svc.Name)
	if err != nil {
		return Info{}, fmt.Errorf("%s: %w", svc.Name, err)
	}
	return info, nil
}
