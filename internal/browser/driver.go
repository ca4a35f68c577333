package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"tagexport/internal/console"
	"tagexport/internal/export"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

// settleWindow is how long the page must stay quiet to count as idle.
const settleWindow = 500 * time.Millisecond

// Driver implements console.Remote on a single Rod page.
type Driver struct {
	cfg     Config
	manager *SessionManager
	browser *rod.Browser
	page    *rod.Page
	logger  *zap.Logger

	dirOnce     sync.Once
	downloadDir string
	tempDir     bool
	dirErr      error
	closeOnce   sync.Once
	closeErr    error
}

var _ console.Remote = (*Driver)(nil)

// textPattern matches an element whose whole text is text, ignoring
// surrounding whitespace.
func textPattern(text string) string {
	return `/^\s*` + regexp.QuoteMeta(text) + `\s*$/`
}

func find(p *rod.Page, l console.Locator) (*rod.Element, error) {
	if l.Text == "" {
		return p.Element(l.CSS)
	}
	return p.ElementR(l.CSS, textPattern(l.Text))
}

// Navigate loads url and waits for the load event.
func (d *Driver) Navigate(ctx context.Context, url string) error {
	p := d.page.Context(ctx).Timeout(d.cfg.NavigationTimeout())
	if err := p.Navigate(url); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	return p.WaitLoad()
}

// Visible reports whether l is on the page and visible right now.
func (d *Driver) Visible(ctx context.Context, l console.Locator) (bool, error) {
	p := d.page.Context(ctx)
	var (
		ok  bool
		el  *rod.Element
		err error
	)
	if l.Text == "" {
		ok, el, err = p.Has(l.CSS)
	} else {
		ok, el, err = p.HasR(l.CSS, textPattern(l.Text))
	}
	if err != nil || !ok {
		return false, err
	}
	return el.Visible()
}

// WaitVisible waits up to timeout for l to appear and become visible.
func (d *Driver) WaitVisible(ctx context.Context, l console.Locator, timeout time.Duration) error {
	p := d.page.Context(ctx).Timeout(timeout)
	el, err := find(p, l)
	if err != nil {
		return fmt.Errorf("wait for %s: %w", l, err)
	}
	if err := el.WaitVisible(); err != nil {
		return fmt.Errorf("wait for %s to be visible: %w", l, err)
	}
	return nil
}

// Fill replaces the content of the input at l.
func (d *Driver) Fill(ctx context.Context, l console.Locator, text string) error {
	p := d.page.Context(ctx).Timeout(d.cfg.ActionTimeout())
	el, err := find(p, l)
	if err != nil {
		return fmt.Errorf("element not found: %s: %w", l, err)
	}
	if err := el.SelectAllText(); err != nil {
		return fmt.Errorf("select %s: %w", l, err)
	}
	return el.Input(text)
}

// Click clicks the element at l.
func (d *Driver) Click(ctx context.Context, l console.Locator) error {
	p := d.page.Context(ctx).Timeout(d.cfg.ActionTimeout())
	el, err := find(p, l)
	if err != nil {
		return fmt.Errorf("element not found: %s: %w", l, err)
	}
	return el.Click(proto.InputMouseButtonLeft, 1)
}

// Texts returns the trimmed text of every element matching l.CSS, keeping
// only those equal to l.Text when it is set.
func (d *Driver) Texts(ctx context.Context, l console.Locator) ([]string, error) {
	p := d.page.Context(ctx).Timeout(d.cfg.ActionTimeout())
	els, err := p.Elements(l.CSS)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", l.CSS, err)
	}
	texts := make([]string, 0, len(els))
	for _, el := range els {
		t, err := el.Text()
		if err != nil {
			return nil, fmt.Errorf("read text of %s: %w", l.CSS, err)
		}
		t = strings.TrimSpace(t)
		if l.Text != "" && t != l.Text {
			continue
		}
		texts = append(texts, t)
	}
	return texts, nil
}

// WaitIdle waits for the page to load and its network and DOM to settle.
func (d *Driver) WaitIdle(ctx context.Context, timeout time.Duration) error {
	return d.page.Context(ctx).Timeout(timeout).WaitStable(settleWindow)
}

// ExpectDownload arms the browser download listener. The returned artifact
// waits at most DownloadTimeout, measured from now.
func (d *Driver) ExpectDownload(ctx context.Context) (export.Artifact, error) {
	dir, err := d.ensureDownloadDir()
	if err != nil {
		return nil, err
	}
	dctx, cancel := context.WithTimeout(ctx, d.cfg.DownloadTimeout())
	wait := d.browser.Context(dctx).WaitDownload(dir)
	return &download{dir: dir, wait: wait, ctx: dctx, cancel: cancel}, nil
}

func (d *Driver) ensureDownloadDir() (string, error) {
	d.dirOnce.Do(func() {
		if d.cfg.DownloadDir != "" {
			d.downloadDir = d.cfg.DownloadDir
			d.dirErr = os.MkdirAll(d.downloadDir, 0o755)
			return
		}
		d.downloadDir, d.dirErr = os.MkdirTemp("", "tagexport-download-")
		d.tempDir = d.dirErr == nil
	})
	if d.dirErr != nil {
		return "", fmt.Errorf("download dir: %w", d.dirErr)
	}
	return d.downloadDir, nil
}

// Close closes the page and shuts the browser down. Only the first call
// does anything.
func (d *Driver) Close() error {
	d.closeOnce.Do(func() {
		if err := d.page.Close(); err != nil {
			d.logger.Debug("Page close failed", zap.Error(err))
		}
		d.closeErr = d.manager.Shutdown()
		if d.tempDir {
			if err := os.RemoveAll(d.downloadDir); err != nil {
				d.logger.Warn("Failed to remove download dir", zap.String("dir", d.downloadDir), zap.Error(err))
			}
		}
	})
	return d.closeErr
}

type download struct {
	dir    string
	wait   func() *proto.PageDownloadWillBegin
	ctx    context.Context
	cancel context.CancelFunc
}

// Wait blocks until the browser reports the download completed.
func (dl *download) Wait(ctx context.Context) (string, error) {
	defer dl.cancel()
	stop := context.AfterFunc(ctx, dl.cancel)
	defer stop()

	info := dl.wait()
	if err := dl.ctx.Err(); err != nil {
		return "", fmt.Errorf("wait for download: %w", err)
	}
	if info == nil {
		return "", errors.New("download did not start")
	}
	return filepath.Join(dl.dir, info.GUID), nil
}
