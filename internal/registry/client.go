// Package registry looks up published package metadata on the npm registry.
//
// The client fetches the "latest" document of a scoped package
// (GET <base>/<scope>/<pkg>/latest) and extracts its version. Lookups are
// memoized per client: concurrent calls for the same package share one
// request and successful results are cached for the client's lifetime.
package registry

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
	"golang.org/x/mod/semver"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// Defaults for a new Client.
const (
	DefaultBaseURL = "https://registry.npmjs.org"
	DefaultScope   = "@grainular"
	DefaultTimeout = 10 * time.Second
)

// maxBodyBytes caps how much of a registry response is read.
const maxBodyBytes = 4 << 20

var nameRe = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*$`)

var (
	versionPath     = jp.MustParseString("$.version")
	namePath        = jp.MustParseString("$.name")
	descriptionPath = jp.MustParseString("$.description")
	licensePath     = jp.MustParseString("$.license")
	homepagePath    = jp.MustParseString("$.homepage")
)

// ValidName reports whether pkg is a valid unscoped npm package name.
func ValidName(pkg string) bool {
	return len(pkg) <= 214 && nameRe.MatchString(pkg)
}

// Manifest is the subset of a package's latest document the tools use.
type Manifest struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description,omitempty"`
	License     string `json:"license,omitempty"`
	Homepage    string `json:"homepage,omitempty"`
}

// Client queries the npm registry.
type Client struct {
	baseURL    string
	scope      string
	timeout    time.Duration
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
	userAgent  string

	group singleflight.Group
	mu    sync.Mutex
	cache map[string]*Manifest
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets the registry base URL.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithScope sets the npm scope packages are looked up under.
func WithScope(scope string) Option {
	return func(c *Client) {
		if scope != "" && !strings.HasPrefix(scope, "@") {
			scope = "@" + scope
		}
		c.scope = scope
	}
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout bounds each request. Zero disables the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithRateLimit limits outgoing requests to rps per second. Zero or
// negative means unlimited.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		} else {
			c.limiter = nil
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// New creates a registry client.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		scope:      DefaultScope,
		timeout:    DefaultTimeout,
		httpClient: http.DefaultClient,
		logger:     slog.New(slog.DiscardHandler),
		userAgent:  "nordsite",
		cache:      make(map[string]*Manifest),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URL returns the "latest" document URL for pkg.
func (c *Client) URL(pkg string) string {
	if c.scope == "" {
		return c.baseURL + "/" + pkg + "/latest"
	}
	return c.baseURL + "/" + c.scope + "/" + pkg + "/latest"
}

// PackageVersion returns the latest published version of pkg.
func (c *Client) PackageVersion(ctx context.Context, pkg string) (string, error) {
	m, err := c.lookup(ctx, pkg)
	if err != nil {
		return "", err
	}
	return m.Version, nil
}

// Manifest returns the latest document of pkg.
func (c *Client) Manifest(ctx context.Context, pkg string) (*Manifest, error) {
	m, err := c.lookup(ctx, pkg)
	if err != nil {
		return nil, err
	}
	cp := *m
	return &cp, nil
}

// lookup returns the cached manifest of pkg or joins the in-flight request
// for it. The request itself is detached from ctx so that one caller giving
// up does not fail the others; each caller only waits on its own ctx.
func (c *Client) lookup(ctx context.Context, pkg string) (*Manifest, error) {
	c.mu.Lock()
	m, ok := c.cache[pkg]
	c.mu.Unlock()
	if ok {
		c.logger.Debug("registry cache hit", "package", pkg, "version", m.Version)
		return m, nil
	}

	ch := c.group.DoChan(pkg, func() (any, error) {
		m, err := c.fetchManifest(context.WithoutCancel(ctx), pkg)
		if err != nil {
			return nil, err
		}
		c.store(pkg, m)
		return m, nil
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("lookup of %s abandoned: %w", pkg, context.Cause(ctx))
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			c.logger.Debug("registry request shared", "package", pkg)
		}
		return res.Val.(*Manifest), nil
	}
}

func (c *Client) fetchManifest(ctx context.Context, pkg string) (*Manifest, error) {
	doc, err := c.fetch(ctx, pkg)
	if err != nil {
		return nil, err
	}
	version, err := versionOf(pkg, doc)
	if err != nil {
		return nil, err
	}
	m := &Manifest{
		Name:        stringAt(doc, namePath),
		Version:     version,
		Description: stringAt(doc, descriptionPath),
		License:     stringAt(doc, licensePath),
		Homepage:    stringAt(doc, homepagePath),
	}
	if m.Name == "" {
		m.Name = c.scopedName(pkg)
	}
	return m, nil
}

func (c *Client) scopedName(pkg string) string {
	if c.scope == "" {
		return pkg
	}
	return c.scope + "/" + pkg
}

func (c *Client) store(pkg string, m *Manifest) {
	c.mu.Lock()
	c.cache[pkg] = m
	c.mu.Unlock()
}

// fetch requests and parses the latest document of pkg.
func (c *Client) fetch(ctx context.Context, pkg string) (any, error) {
	if !ValidName(pkg) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, pkg)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait for %s: %w", pkg, err)
		}
	}

	url := c.URL(pkg)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", pkg, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug("registry response",
		"package", pkg,
		"status", resp.StatusCode,
		"duration", time.Since(start).Round(time.Millisecond))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Package: pkg, URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response for %s: %w", pkg, err)
	}

	doc, err := oj.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("%w for %s: %v", ErrMalformedResponse, pkg, err)
	}
	return doc, nil
}

func versionOf(pkg string, doc any) (string, error) {
	matches := versionPath.Get(doc)
	if len(matches) == 0 {
		return "", fmt.Errorf("%w (package %s)", ErrMissingVersion, pkg)
	}
	v, ok := matches[0].(string)
	if !ok {
		return "", fmt.Errorf("%w (package %s): version is %T", ErrMissingVersion, pkg, matches[0])
	}
	if !semver.IsValid("v" + v) {
		return "", fmt.Errorf("%w %q for package %s", ErrInvalidVersion, v, pkg)
	}
	return v, nil
}

func stringAt(doc any, path jp.Expr) string {
	for _, m := range path.Get(doc) {
		if s, ok := m.(string); ok {
			return s
		}
	}
	return ""
}
