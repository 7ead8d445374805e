package renderer

import (
	"context"
	"encoding/base64"
	"errors"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

func init() {
	RegisterDriver("chrome", func() Driver { return &chromeDriver{} })
}

// chromeDriver drives headless Chrome/Chromium over the DevTools protocol.
// It is the default driver and the only one whose screenshot encoder speaks
// webp natively.
type chromeDriver struct{}

func (d *chromeDriver) Name() string { return "chrome" }

func (d *chromeDriver) Formats() []string {
	return []string{FormatPNG, FormatJPEG, FormatWebP}
}

func (d *chromeDriver) Launch(ctx context.Context, opts LaunchOptions) (Session, error) {
	allocOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}

	// The session outlives the caller's context on purpose: a launched render
	// runs to completion or failure, and Close is the only disposal path.
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	sess := &chromeSession{
		ctx:     browserCtx,
		cancels: []context.CancelFunc{cancelBrowser, cancelAlloc},
	}

	// Starting the browser and priming the viewport up front makes a missing
	// or broken Chrome install fail here instead of mid-pipeline.
	err := chromedp.Run(browserCtx,
		chromedp.EmulateViewport(int64(opts.Width), int64(opts.Height),
			chromedp.EmulateScale(opts.Scale)),
		chromedp.ActionFunc(func(ctx context.Context) error {
			return emulation.SetDefaultBackgroundColorOverride().
				WithColor(&cdp.RGBA{R: 0, G: 0, B: 0, A: 0}).
				Do(ctx)
		}),
	)
	if err != nil {
		sess.Close()
		return nil, NewError(KindConfiguration, "launch chrome", err)
	}
	return sess, nil
}

type chromeSession struct {
	ctx     context.Context
	cancels []context.CancelFunc
}

func (s *chromeSession) Load(ctx context.Context, html string, timeout time.Duration) error {
	loadCtx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()

	dataURI := "data:text/html;base64," + base64.StdEncoding.EncodeToString([]byte(html))
	err := chromedp.Run(loadCtx,
		chromedp.Navigate(dataURI),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return Errorf(KindTimeout, "load content",
				"content did not settle within %s", timeout)
		}
		return NewError(KindRender, "load content", err)
	}
	return nil
}

func (s *chromeSession) MeasureSVG(ctx context.Context) (*Extent, error) {
	var extent *Extent
	if err := chromedp.Run(s.ctx, chromedp.Evaluate(measureScript, &extent)); err != nil {
		return nil, NewError(KindRender, "measure svg", err)
	}
	return extent, nil
}

func (s *chromeSession) Resize(ctx context.Context, width, height int, scale float64) error {
	err := chromedp.Run(s.ctx,
		chromedp.EmulateViewport(int64(width), int64(height), chromedp.EmulateScale(scale)))
	if err != nil {
		return NewError(KindRender, "resize viewport", err)
	}
	return nil
}

func (s *chromeSession) Capture(ctx context.Context, enc Encoding) ([]byte, error) {
	var buf []byte
	err := chromedp.Run(s.ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		params := page.CaptureScreenshot().
			WithFormat(screenshotFormat(enc.Format)).
			WithCaptureBeyondViewport(true).
			WithFromSurface(true)
		if enc.Quality != nil {
			params = params.WithQuality(int64(*enc.Quality))
		}
		var err error
		buf, err = params.Do(ctx)
		return err
	}))
	if err != nil {
		return nil, NewError(KindRender, "capture screenshot", err)
	}
	return buf, nil
}

func (s *chromeSession) Close() error {
	err := chromedp.Cancel(s.ctx)
	for _, cancel := range s.cancels {
		cancel()
	}
	return err
}

func screenshotFormat(format string) page.CaptureScreenshotFormat {
	switch format {
	case FormatJPEG:
		return page.CaptureScreenshotFormatJpeg
	case FormatWebP:
		return page.CaptureScreenshotFormatWebp
	default:
		return page.CaptureScreenshotFormatPng
	}
}
