package browse

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog"

	"github.com/roach88/soundcheck/internal/gate"
	"github.com/roach88/soundcheck/internal/log"
	"github.com/roach88/soundcheck/internal/page"
)

const (
	// DefaultEndpoint is the request path captured and, when stubbed,
	// substituted.
	DefaultEndpoint = "/festivals"

	// DefaultNavigationTimeout bounds one full capture: navigation,
	// settling, toggles, and the node read.
	DefaultNavigationTimeout = 30 * time.Second

	// DefaultSettle is how long the DOM must hold still before a
	// snapshot is read.
	DefaultSettle = 300 * time.Millisecond
)

// ErrNotStarted is returned by Capture before Start has connected a
// browser.
var ErrNotStarted = errors.New("browser not started")

// Driver owns one browser and captures page snapshots from it. Captures
// are serialized; Exchange reports the festivals exchange of the most
// recent one.
type Driver struct {
	sel        Selectors
	endpoint   string
	settle     time.Duration
	navTimeout time.Duration
	browserURL string
	client     *http.Client
	log        zerolog.Logger

	capMu sync.Mutex // serializes captures

	mu       sync.Mutex
	browser  *rod.Browser
	launch   *launcher.Launcher
	exchange *gate.Response
}

// Option configures a Driver.
type Option func(*Driver)

// WithBrowserURL attaches to an already-running browser over its DevTools
// URL instead of launching one.
func WithBrowserURL(url string) Option {
	return func(d *Driver) { d.browserURL = url }
}

// WithSelectors overrides the node selectors. Zero fields keep their
// defaults.
func WithSelectors(s Selectors) Option {
	return func(d *Driver) { d.sel = d.sel.merged(s) }
}

// WithEndpoint changes the request path the driver intercepts.
func WithEndpoint(path string) Option {
	return func(d *Driver) { d.endpoint = path }
}

// WithSettle changes how long the DOM must hold still before a snapshot
// is read.
func WithSettle(window time.Duration) Option {
	return func(d *Driver) { d.settle = window }
}

// WithNavigationTimeout bounds each capture end to end.
func WithNavigationTimeout(timeout time.Duration) Option {
	return func(d *Driver) { d.navTimeout = timeout }
}

// WithLogger overrides the component logger.
func WithLogger(l zerolog.Logger) Option {
	return func(d *Driver) { d.log = l }
}

// New builds a Driver. Callers must Start it before the first Capture and
// Close it when done.
func New(opts ...Option) *Driver {
	d := &Driver{
		sel:        DefaultSelectors(),
		endpoint:   DefaultEndpoint,
		settle:     DefaultSettle,
		navTimeout: DefaultNavigationTimeout,
		client:     &http.Client{Timeout: 10 * time.Second},
		log:        log.WithComponent("browse"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start launches a headless browser, or connects to the one named by
// WithBrowserURL. The context bounds the browser connection: cancelling
// it tears down every open page. Starting a started driver is a no-op.
func (d *Driver) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.browser != nil {
		return nil
	}

	controlURL := d.browserURL
	if controlURL == "" {
		l := launcher.New().Headless(true)
		u, err := l.Launch()
		if err != nil {
			return fmt.Errorf("launch browser: %w", err)
		}
		d.launch = l
		controlURL = u
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		if d.launch != nil {
			d.launch.Kill()
			d.launch = nil
		}
		return fmt.Errorf("connect browser: %w", err)
	}

	d.browser = browser
	d.log.Debug().Str("control_url", controlURL).Msg("browser connected")
	return nil
}

// Close disconnects from the browser and cleans up a launched process.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.browser == nil {
		return nil
	}

	err := d.browser.Close()
	d.browser = nil
	if d.launch != nil {
		d.launch.Cleanup()
		d.launch = nil
	}
	return err
}

// CaptureOptions control a single capture.
type CaptureOptions struct {
	// Stub, when non-nil, pins how the festivals request resolves.
	Stub *Stub

	// Toggles are festival card positions whose headers are activated,
	// in order, after the page settles and before the snapshot is read.
	Toggles []int
}

func (o CaptureOptions) validate() error {
	if o.Stub != nil {
		if err := o.Stub.validate(); err != nil {
			return err
		}
	}
	for _, i := range o.Toggles {
		if i < 0 {
			return fmt.Errorf("toggle festival %d: index out of range", i)
		}
	}
	return nil
}

// Capture navigates to pageURL in a fresh incognito context, waits for
// the render to settle, applies any toggles, and reads the snapshot.
// The festivals exchange resolved along the way is available from
// Exchange until the next capture.
func (d *Driver) Capture(ctx context.Context, pageURL string, opts CaptureOptions) (page.Snapshot, error) {
	if err := opts.validate(); err != nil {
		return page.Snapshot{}, err
	}
	browser, err := d.connected()
	if err != nil {
		return page.Snapshot{}, err
	}

	d.capMu.Lock()
	defer d.capMu.Unlock()
	d.record(nil)

	incognito, err := browser.Incognito()
	if err != nil {
		return page.Snapshot{}, fmt.Errorf("incognito context: %w", err)
	}
	pg, err := incognito.Page(proto.TargetCreateTarget{})
	if err != nil {
		return page.Snapshot{}, fmt.Errorf("open page: %w", err)
	}
	defer func() { _ = pg.Close() }()
	pg = pg.Context(ctx).Timeout(d.navTimeout)

	router := pg.HijackRequests()
	if err := router.Add("*"+d.endpoint, "", d.resolveFestivals(opts.Stub)); err != nil {
		return page.Snapshot{}, fmt.Errorf("install intercept: %w", err)
	}
	go router.Run()
	defer func() { _ = router.Stop() }()

	if err := pg.Navigate(pageURL); err != nil {
		return page.Snapshot{}, fmt.Errorf("navigate %s: %w", pageURL, err)
	}
	if err := d.waitSettled(pg); err != nil {
		return page.Snapshot{}, err
	}

	for _, idx := range opts.Toggles {
		if err := d.toggleCard(pg, idx); err != nil {
			return page.Snapshot{}, err
		}
	}

	snap, err := d.readSnapshot(pg)
	if err != nil {
		return page.Snapshot{}, err
	}
	d.log.Debug().
		Str("url", pageURL).
		Int("festivals", len(snap.Festivals)).
		Strs("notices", snap.Notices).
		Msg("captured page snapshot")
	return snap, nil
}

// Exchange returns the festivals exchange resolved during the most recent
// capture, in gate-checkable form. ok is false when the page never
// requested the endpoint.
func (d *Driver) Exchange() (gate.Response, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.exchange == nil {
		return gate.Response{}, false
	}
	return *d.exchange, true
}

func (d *Driver) connected() (*rod.Browser, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.browser == nil {
		return nil, ErrNotStarted
	}
	return d.browser, nil
}

func (d *Driver) record(r *gate.Response) {
	d.mu.Lock()
	d.exchange = r
	d.mu.Unlock()
}

// waitSettled blocks until the initial load finished, in-flight requests
// went quiet, and the DOM held still for the settle window.
func (d *Driver) waitSettled(pg *rod.Page) error {
	if err := pg.WaitLoad(); err != nil {
		return fmt.Errorf("wait load: %w", err)
	}
	pg.WaitRequestIdle(d.settle, nil, nil, nil)()
	return d.waitRendered(pg)
}

func (d *Driver) waitRendered(pg *rod.Page) error {
	if err := pg.WaitDOMStable(d.settle, 0); err != nil {
		return fmt.Errorf("wait render: %w", err)
	}
	return nil
}

// toggleCard activates the header of the festival card at display
// position idx and waits for the resulting render.
func (d *Driver) toggleCard(pg *rod.Page, idx int) error {
	cards, err := pg.Elements(d.sel.Festival)
	if err != nil {
		return fmt.Errorf("find festival cards: %w", err)
	}
	if idx >= len(cards) {
		return fmt.Errorf("toggle festival %d: index out of range (%d cards)", idx, len(cards))
	}
	header, err := cards[idx].Element(d.sel.Name)
	if err != nil {
		return fmt.Errorf("festival header %d: %w", idx, err)
	}
	if err := header.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("toggle festival %d: %w", idx, err)
	}
	return d.waitRendered(pg)
}
