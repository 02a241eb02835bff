package rod

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"sync"
	"time"

	"vision-agent/internal/application/port/output"
	"vision-agent/internal/domain/entity"

	"github.com/disintegration/imaging"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/google/uuid"
	"github.com/ysmood/gson"
)

var (
	_ output.SurfacePort     = (*BrowserAdapter)(nil)
	_ output.SurfaceProvider = (*Provider)(nil)
)

const (
	defaultSlowMotion     = time.Duration(0)
	defaultTimeout        = 10 * time.Second
	defaultViewportWidth  = 1280
	defaultViewportHeight = 800
	defaultMaxCaptureW    = 1024
	defaultJPEGQuality    = 80
)

type BrowserConfig struct {
	Headless        bool
	SlowMotion      time.Duration
	Timeout         time.Duration
	NoSandbox       bool
	DevTools        bool
	ViewportWidth   int
	ViewportHeight  int
	MaxCaptureWidth int
	StartURL        string
}

func DefaultConfig() BrowserConfig {
	return BrowserConfig{
		Headless:        false,
		SlowMotion:      defaultSlowMotion,
		Timeout:         defaultTimeout,
		NoSandbox:       false,
		DevTools:        false,
		ViewportWidth:   defaultViewportWidth,
		ViewportHeight:  defaultViewportHeight,
		MaxCaptureWidth: defaultMaxCaptureW,
		StartURL:        "about:blank",
	}
}

// Provider launches a dedicated browser for every acquired surface.
type Provider struct {
	cfg BrowserConfig
}

func NewProvider(cfg BrowserConfig) *Provider {
	return &Provider{cfg: cfg}
}

func (p *Provider) Acquire(ctx context.Context) (output.SurfacePort, error) {
	return NewBrowserAdapter(ctx, p.cfg)
}

type BrowserAdapter struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	page     *rod.Page
	cfg      BrowserConfig

	mu     sync.Mutex
	closed bool
}

func NewBrowserAdapter(ctx context.Context, cfg BrowserConfig) (*BrowserAdapter, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.ViewportWidth <= 0 || cfg.ViewportHeight <= 0 {
		cfg.ViewportWidth, cfg.ViewportHeight = defaultViewportWidth, defaultViewportHeight
	}
	if cfg.MaxCaptureWidth <= 0 {
		cfg.MaxCaptureWidth = defaultMaxCaptureW
	}
	if ctx == nil {
		ctx = context.Background()
	}

	l := launcher.New().
		Context(ctx).
		Headless(cfg.Headless).
		Devtools(cfg.DevTools).
		NoSandbox(cfg.NoSandbox)

	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(url).SlowMotion(cfg.SlowMotion)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("failed to connect browser: %w", err)
	}

	b := &BrowserAdapter{browser: browser, launcher: l, cfg: cfg}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = b.Release()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	b.page = page

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             cfg.ViewportWidth,
		Height:            cfg.ViewportHeight,
		DeviceScaleFactor: 1,
	}); err != nil {
		_ = b.Release()
		return nil, fmt.Errorf("failed to set viewport: %w", err)
	}

	if cfg.StartURL != "" && cfg.StartURL != "about:blank" {
		if err := b.Navigate(ctx, cfg.StartURL); err != nil {
			_ = b.Release()
			return nil, err
		}
	}
	return b, nil
}

func (b *BrowserAdapter) IsReady() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return !b.closed && b.page != nil
}

func (b *BrowserAdapter) ensureReady() error {
	if !b.IsReady() {
		return fmt.Errorf("browser surface released")
	}
	return nil
}

func (b *BrowserAdapter) Click(ctx context.Context, x, y float64) error {
	if err := b.ensureReady(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	page := b.page.Context(ctx)
	if err := dispatchMouse(page, proto.InputDispatchMouseEventTypeMouseMoved, x, y, 0); err != nil {
		return fmt.Errorf("mouse move failed: %w", err)
	}
	if err := dispatchMouse(page, proto.InputDispatchMouseEventTypeMousePressed, x, y, 1); err != nil {
		return fmt.Errorf("click failed: %w", err)
	}
	if err := dispatchMouse(page, proto.InputDispatchMouseEventTypeMouseReleased, x, y, 0); err != nil {
		return fmt.Errorf("click failed: %w", err)
	}
	return nil
}

func (b *BrowserAdapter) Move(ctx context.Context, x, y float64) error {
	if err := b.ensureReady(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := dispatchMouse(b.page.Context(ctx), proto.InputDispatchMouseEventTypeMouseMoved, x, y, 0); err != nil {
		return fmt.Errorf("mouse move failed: %w", err)
	}
	return nil
}

// dispatchMouse sends one left-button mouse event through page, so the
// call is bound to page's context. page.Mouse always uses the context the
// page was created with. buttons is the pressed-button bitmask after the
// event.
func dispatchMouse(page *rod.Page, typ proto.InputDispatchMouseEventType, x, y float64, buttons int) error {
	ev := proto.InputDispatchMouseEvent{
		Type:    typ,
		X:       x,
		Y:       y,
		Buttons: gson.Int(buttons),
	}
	if typ != proto.InputDispatchMouseEventTypeMouseMoved {
		ev.Button = proto.InputMouseButtonLeft
		ev.ClickCount = 1
	}
	return ev.Call(page)
}

func (b *BrowserAdapter) Navigate(ctx context.Context, url string) error {
	if err := b.ensureReady(); err != nil {
		return err
	}
	page := b.page.Context(ctx).Timeout(b.cfg.Timeout)
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("wait load failed: %w", err)
	}
	return nil
}

func (b *BrowserAdapter) Capture(ctx context.Context) (*entity.Capture, error) {
	if err := b.ensureReady(); err != nil {
		return nil, err
	}
	raw, err := b.page.Context(ctx).Timeout(b.cfg.Timeout).Screenshot(false, &proto.PageCaptureScreenshot{
		Format:  proto.PageCaptureScreenshotFormatJpeg,
		Quality: gson.Int(defaultJPEGQuality),
	})
	if err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}

	data, width, height, scale, err := downscale(raw, b.cfg.MaxCaptureWidth)
	if err != nil {
		return nil, err
	}

	return &entity.Capture{
		ID:      uuid.NewString(),
		URL:     b.CurrentURL(),
		Data:    data,
		Format:  "jpeg",
		Width:   width,
		Height:  height,
		Scale:   scale,
		TakenAt: time.Now(),
	}, nil
}

// downscale re-encodes raw as JPEG no wider than maxWidth and reports the
// image/surface pixel ratio.
func downscale(raw []byte, maxWidth int) ([]byte, int, int, float64, error) {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, 0, 0, 0, fmt.Errorf("image decode failed: %w", err)
	}

	origWidth := img.Bounds().Dx()
	scale := 1.0
	if maxWidth > 0 && origWidth > maxWidth {
		img = imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
		scale = float64(maxWidth) / float64(origWidth)
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: 75}); err != nil {
		return nil, 0, 0, 0, fmt.Errorf("jpeg encode failed: %w", err)
	}
	return buf.Bytes(), img.Bounds().Dx(), img.Bounds().Dy(), scale, nil
}

func (b *BrowserAdapter) CurrentURL() string {
	if !b.IsReady() {
		return ""
	}
	info, err := b.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

// Release closes the browser and kills its process. Safe to call twice.
func (b *BrowserAdapter) Release() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	var err error
	if b.browser != nil {
		err = b.browser.Close()
	}
	if b.launcher != nil {
		b.launcher.Kill()
		b.launcher.Cleanup()
	}
	return err
}
