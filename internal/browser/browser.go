// Package browser owns the headless Chrome shared by the math backend and
// the exporters.
package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-tex2pdf/internal/fileutil"
	"github.com/alnah/go-tex2pdf/internal/process"
)

// Sentinel errors for browser failures.
var (
	ErrConnect    = errors.New("failed to connect to browser")
	ErrPageCreate = errors.New("failed to create browser page")
	ErrPageLoad   = errors.New("failed to load page")
	ErrClosed     = errors.New("browser is closed")
)

// DefaultTimeout bounds page loads when the context has no deadline.
const DefaultTimeout = 30 * time.Second

// Browser lazily launches one Chrome process. It is safe for concurrent use.
type Browser struct {
	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
	closed   bool
	timeout  time.Duration
	log      *slog.Logger
}

// New returns a Browser that launches Chrome on first use.
func New(timeout time.Duration, log *slog.Logger) *Browser {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Browser{timeout: timeout, log: log}
}

// Timeout returns the page load timeout.
func (b *Browser) Timeout() time.Duration { return b.timeout }

// Connect launches Chrome if it is not running yet.
func (b *Browser) Connect() (*rod.Browser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrClosed
	}
	if b.browser != nil {
		return b.browser, nil
	}

	l := launcher.New()

	// Use pre-installed browser if specified (Docker/containerized environments)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containerized environments
	if os.Getenv("CI") == "true" || os.Getenv("ROD_BROWSER_BIN") != "" || os.Getenv("ROD_NO_SANDBOX") == "1" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnect, err)
	}

	br := rod.New().ControlURL(u)
	if err := br.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("%w: %v", ErrConnect, err)
	}

	b.log.Debug("browser launched", "pid", l.PID())
	b.browser = br
	b.launcher = l
	return br, nil
}

// Load opens htmlContent in a new page and waits for it to load. The
// content is written to a temp file so relative resources resolve. The
// caller closes the page.
func (b *Browser) Load(ctx context.Context, htmlContent string) (*rod.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	br, err := b.Connect()
	if err != nil {
		return nil, err
	}

	path, cleanup, err := fileutil.WriteTempFile(htmlContent, "html")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	page, err := br.Page(proto.TargetCreateTarget{URL: "file://" + path})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}

	timeout, err := b.remaining(ctx)
	if err != nil {
		_ = page.Close()
		return nil, err
	}
	if err := page.Timeout(timeout).WaitLoad(); err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	return page.Context(ctx), nil
}

// Blank opens an empty page. The caller closes it.
func (b *Browser) Blank() (*rod.Page, error) {
	br, err := b.Connect()
	if err != nil {
		return nil, err
	}
	page, err := br.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	return page, nil
}

// remaining returns the time left before the context deadline, or the
// default timeout.
func (b *Browser) remaining(ctx context.Context) (time.Duration, error) {
	if deadline, ok := ctx.Deadline(); ok {
		d := time.Until(deadline)
		if d <= 0 {
			return 0, context.DeadlineExceeded
		}
		return d, nil
	}
	return b.timeout, nil
}

// Close shuts Chrome down and kills its process group. Further use returns
// ErrClosed.
func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	if b.browser == nil {
		return nil
	}
	err := b.browser.Close()
	if b.launcher != nil {
		if pid := b.launcher.PID(); pid > 0 {
			process.KillProcessGroup(pid)
		}
		b.launcher.Kill()
	}
	b.browser = nil
	b.launcher = nil
	return err
}
