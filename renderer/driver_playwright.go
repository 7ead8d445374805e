package renderer

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
)

func init() {
	RegisterDriver("playwright", func() Driver { return &playwrightDriver{} })
}

// playwrightDriver drives Chromium through the Playwright node runtime.
// Playwright screenshots only encode png and jpeg, so webp requests are
// rejected before launch when this driver is selected.
type playwrightDriver struct{}

func (d *playwrightDriver) Name() string { return "playwright" }

func (d *playwrightDriver) Formats() []string {
	return []string{FormatPNG, FormatJPEG}
}

func (d *playwrightDriver) Launch(ctx context.Context, opts LaunchOptions) (Session, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, NewError(KindConfiguration, "start playwright", err)
	}

	launchOpts := playwright.BrowserTypeLaunchOptions{}
	if opts.ExecPath != "" {
		launchOpts.ExecutablePath = playwright.String(opts.ExecPath)
	}
	browser, err := pw.Chromium.Launch(launchOpts)
	if err != nil {
		_ = pw.Stop()
		return nil, NewError(KindConfiguration, "launch browser", err)
	}

	browserCtx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		DeviceScaleFactor: playwright.Float(opts.Scale),
		Viewport:          &playwright.Size{Width: opts.Width, Height: opts.Height},
	})
	if err != nil {
		_ = browser.Close()
		_ = pw.Stop()
		return nil, NewError(KindConfiguration, "create browser context", err)
	}

	page, err := browserCtx.NewPage()
	if err != nil {
		_ = browserCtx.Close()
		_ = browser.Close()
		_ = pw.Stop()
		return nil, NewError(KindConfiguration, "create page", err)
	}

	return &playwrightSession{
		pw:      pw,
		browser: browser,
		context: browserCtx,
		page:    page,
	}, nil
}

type playwrightSession struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page
}

func (s *playwrightSession) Load(ctx context.Context, html string, timeout time.Duration) error {
	err := s.page.SetContent(html, playwright.PageSetContentOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   playwright.Float(float64(timeout.Milliseconds())),
	})
	if err != nil {
		if isPlaywrightTimeout(err) {
			return Errorf(KindTimeout, "load content",
				"content did not settle within %s", timeout)
		}
		return NewError(KindRender, "load content", err)
	}
	return nil
}

func (s *playwrightSession) MeasureSVG(ctx context.Context) (*Extent, error) {
	value, err := s.page.Evaluate(measureScript)
	if err != nil {
		return nil, NewError(KindRender, "measure svg", err)
	}
	if value == nil {
		return nil, nil
	}
	box, ok := value.(map[string]any)
	if !ok {
		return nil, Errorf(KindRender, "measure svg",
			"unexpected measurement result %T", value)
	}
	return &Extent{
		Width:  toFloat(box["width"]),
		Height: toFloat(box["height"]),
	}, nil
}

func (s *playwrightSession) Resize(ctx context.Context, width, height int, scale float64) error {
	// Scale was fixed when the browser context was created; only the logical
	// viewport changes here.
	if err := s.page.SetViewportSize(width, height); err != nil {
		return NewError(KindRender, "resize viewport", err)
	}
	return nil
}

func (s *playwrightSession) Capture(ctx context.Context, enc Encoding) ([]byte, error) {
	shot := playwright.PageScreenshotOptions{
		FullPage:       playwright.Bool(true),
		OmitBackground: playwright.Bool(true),
	}
	switch enc.Format {
	case FormatJPEG:
		shot.Type = playwright.ScreenshotTypeJpeg
		if enc.Quality != nil {
			shot.Quality = playwright.Int(*enc.Quality)
		}
	default:
		shot.Type = playwright.ScreenshotTypePng
	}

	buf, err := s.page.Screenshot(shot)
	if err != nil {
		return nil, NewError(KindRender, "capture screenshot", err)
	}
	return buf, nil
}

func (s *playwrightSession) Close() error {
	var errs []error
	if err := s.page.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := s.context.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := s.browser.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := s.pw.Stop(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func isPlaywrightTimeout(err error) bool {
	return errors.Is(err, playwright.ErrTimeout) ||
		strings.Contains(err.Error(), "Timeout")
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}
