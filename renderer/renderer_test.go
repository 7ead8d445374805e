package renderer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDriver scripts the engine-facing half of the pipeline so the render
// state machine can be exercised without a browser.
type fakeDriver struct {
	name      string
	formats   []string
	launchErr error

	mu       sync.Mutex
	launches []LaunchOptions
	sessions []*fakeSession

	// template copied into every launched session
	session fakeSession
}

func (d *fakeDriver) Name() string      { return d.name }
func (d *fakeDriver) Formats() []string { return d.formats }

func (d *fakeDriver) Launch(ctx context.Context, opts LaunchOptions) (Session, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.launchErr != nil {
		return nil, d.launchErr
	}
	sess := d.session
	d.launches = append(d.launches, opts)
	d.sessions = append(d.sessions, &sess)
	return &sess, nil
}

type fakeSession struct {
	extent     *Extent
	loadErr    error
	measureErr error
	captureErr error
	buffer     []byte

	loadedHTML string
	resizedW   int
	resizedH   int
	scale      float64
	closed     bool
}

func (s *fakeSession) Load(ctx context.Context, html string, timeout time.Duration) error {
	s.loadedHTML = html
	return s.loadErr
}

func (s *fakeSession) MeasureSVG(ctx context.Context) (*Extent, error) {
	return s.extent, s.measureErr
}

func (s *fakeSession) Resize(ctx context.Context, width, height int, scale float64) error {
	s.resizedW, s.resizedH, s.scale = width, height, scale
	return nil
}

func (s *fakeSession) Capture(ctx context.Context, enc Encoding) ([]byte, error) {
	return s.buffer, s.captureErr
}

func (s *fakeSession) Close() error {
	s.closed = true
	return nil
}

var fakeSeq atomic.Int64

func registerFake(d *fakeDriver) string {
	name := fmt.Sprintf("fake-%d", fakeSeq.Add(1))
	d.name = name
	if d.formats == nil {
		d.formats = Formats
	}
	RegisterDriver(name, func() Driver { return d })
	return name
}

func TestRenderHappyPath(t *testing.T) {
	driver := &fakeDriver{session: fakeSession{
		extent: &Extent{Width: 300.4, Height: 149.6},
		buffer: []byte("png-bytes"),
	}}
	name := registerFake(driver)

	result, err := Render(context.Background(), `<svg width="300" height="150"></svg>`,
		Options{Driver: name})
	require.NoError(t, err)

	// Measured extent rounded up, never the attribute guess.
	assert.Equal(t, 301, result.Width)
	assert.Equal(t, 150, result.Height)
	assert.Equal(t, FormatPNG, result.Format)
	assert.Equal(t, []byte("png-bytes"), result.Buffer)
	assert.Empty(t, result.SavedPath)

	require.Len(t, driver.launches, 1)
	launch := driver.launches[0]
	assert.Equal(t, 300, launch.Width, "initial viewport seeded from markup")
	assert.Equal(t, 150, launch.Height)
	assert.Equal(t, DefaultDeviceScaleFactor, launch.Scale)

	sess := driver.sessions[0]
	assert.True(t, sess.closed, "session must be released")
	assert.Equal(t, 301, sess.resizedW)
	assert.Equal(t, 150, sess.resizedH)
	assert.Contains(t, sess.loadedHTML, `<svg width="300"`)
}

func TestRenderResultUsesMeasurementNotGuess(t *testing.T) {
	driver := &fakeDriver{session: fakeSession{
		extent: &Extent{Width: 120, Height: 80},
		buffer: []byte("x"),
	}}
	name := registerFake(driver)

	result, err := Render(context.Background(), `<svg width="999" height="999"></svg>`,
		Options{Driver: name})
	require.NoError(t, err)
	assert.Equal(t, 120, result.Width)
	assert.Equal(t, 80, result.Height)
}

func TestRenderCollapsedExtentClampsToOne(t *testing.T) {
	driver := &fakeDriver{session: fakeSession{
		extent: &Extent{Width: 0, Height: 0},
		buffer: []byte("x"),
	}}
	name := registerFake(driver)

	result, err := Render(context.Background(), `<svg></svg>`, Options{Driver: name})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Width)
	assert.Equal(t, 1, result.Height)
}

func TestRenderValidation(t *testing.T) {
	driver := &fakeDriver{session: fakeSession{
		extent: &Extent{Width: 1, Height: 1},
		buffer: []byte("x"),
	}}
	name := registerFake(driver)

	t.Run("empty svg", func(t *testing.T) {
		_, err := Render(context.Background(), "", Options{Driver: name})
		assert.True(t, IsKind(err, KindValidation))
	})

	t.Run("unknown output type", func(t *testing.T) {
		_, err := Render(context.Background(), "<svg/>", Options{Driver: name, OutputType: "gif"})
		assert.True(t, IsKind(err, KindValidation))
	})

	t.Run("no engine launched", func(t *testing.T) {
		assert.Empty(t, driver.launches)
	})
}

func TestRenderFormatUnsupportedByDriver(t *testing.T) {
	driver := &fakeDriver{formats: []string{FormatPNG, FormatJPEG}}
	name := registerFake(driver)

	_, err := Render(context.Background(), "<svg/>", Options{Driver: name, OutputType: FormatWebP})
	assert.True(t, IsKind(err, KindValidation))
	assert.Empty(t, driver.launches)
}

func TestRenderUnknownDriver(t *testing.T) {
	_, err := Render(context.Background(), "<svg/>", Options{Driver: "no-such-driver"})
	assert.True(t, IsKind(err, KindConfiguration))
}

func TestRenderLaunchFailure(t *testing.T) {
	driver := &fakeDriver{launchErr: NewError(KindConfiguration, "launch chrome", errors.New("not installed"))}
	name := registerFake(driver)

	_, err := Render(context.Background(), "<svg/>", Options{Driver: name})
	assert.True(t, IsKind(err, KindConfiguration))
}

func TestRenderSessionClosedOnFailure(t *testing.T) {
	t.Run("load failure", func(t *testing.T) {
		driver := &fakeDriver{session: fakeSession{
			loadErr: Errorf(KindTimeout, "load content", "content did not settle within 1s"),
		}}
		name := registerFake(driver)

		_, err := Render(context.Background(), "<svg/>", Options{Driver: name})
		assert.True(t, IsKind(err, KindTimeout))
		require.Len(t, driver.sessions, 1)
		assert.True(t, driver.sessions[0].closed)
	})

	t.Run("no svg element", func(t *testing.T) {
		driver := &fakeDriver{session: fakeSession{extent: nil}}
		name := registerFake(driver)

		_, err := Render(context.Background(), "<div></div>", Options{Driver: name})
		assert.True(t, IsKind(err, KindDimension))
		require.Len(t, driver.sessions, 1)
		assert.True(t, driver.sessions[0].closed)
	})

	t.Run("empty capture buffer", func(t *testing.T) {
		driver := &fakeDriver{session: fakeSession{extent: &Extent{Width: 1, Height: 1}}}
		name := registerFake(driver)

		_, err := Render(context.Background(), "<svg/>", Options{Driver: name})
		assert.True(t, IsKind(err, KindRender))
		require.Len(t, driver.sessions, 1)
		assert.True(t, driver.sessions[0].closed)
	})
}

func TestRenderSavePath(t *testing.T) {
	driver := &fakeDriver{session: fakeSession{
		extent: &Extent{Width: 10, Height: 10},
		buffer: []byte("image-data"),
	}}
	name := registerFake(driver)

	path := filepath.Join(t.TempDir(), "out.png")
	result, err := Render(context.Background(), "<svg/>", Options{Driver: name, SavePath: path})
	require.NoError(t, err)
	assert.Equal(t, path, result.SavedPath)

	saved, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("image-data"), saved)
}

func TestRenderDebugDir(t *testing.T) {
	driver := &fakeDriver{session: fakeSession{
		extent: &Extent{Width: 10, Height: 10},
		buffer: []byte("image-data"),
	}}
	name := registerFake(driver)

	dir := t.TempDir()
	_, err := Render(context.Background(), "<svg/>", Options{Driver: name, DebugDir: dir})
	require.NoError(t, err)

	html, err := os.ReadFile(filepath.Join(dir, "document.html"))
	require.NoError(t, err)
	assert.Contains(t, string(html), "<svg/>")

	capture, err := os.ReadFile(filepath.Join(dir, "capture.png"))
	require.NoError(t, err)
	assert.Equal(t, []byte("image-data"), capture)
}

func TestRenderDefaultsAppliedToOutOfRangeOptions(t *testing.T) {
	driver := &fakeDriver{session: fakeSession{
		extent: &Extent{Width: 5, Height: 5},
		buffer: []byte("x"),
	}}
	name := registerFake(driver)

	_, err := Render(context.Background(), "<svg/>", Options{
		Driver:            name,
		DeviceScaleFactor: -3,
		Quality:           7,
		Timeout:           -time.Second,
	})
	require.NoError(t, err)
	require.Len(t, driver.launches, 1)
	assert.Equal(t, DefaultDeviceScaleFactor, driver.launches[0].Scale)
}
