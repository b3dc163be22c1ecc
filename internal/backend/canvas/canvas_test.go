package canvas

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"viz-engine/internal/backend"
	"viz-engine/internal/camera"
	"viz-engine/internal/compositor"
	"viz-engine/internal/geometry"
	"viz-engine/internal/math3d"
)

func TestParseCSS(t *testing.T) {
	sheet, err := ParseCSS(`
/* panel */
@media screen { .ignored { color: #000; } }
div { color: #123456; }
.panel { background: #11223344; left: 20px; top: 8; padding: 3px; font-size: 18px; border: #ffffff; }
.title { color: #ff0000; }
.subject { color: #00ff00; }
.panel { left: 30px; }
`)
	require.NoError(t, err)
	st := sheet.Panel()
	assert.Equal(t, math3d.Hex("#11223344"), st.Background)
	assert.Equal(t, 30, st.Left)
	assert.Equal(t, 8, st.Top)
	assert.Equal(t, 3, st.Padding)
	assert.Equal(t, 18.0, st.FontSize)
	assert.True(t, st.HasBorder)
	assert.Equal(t, math3d.Hex("#ff0000"), st.TitleColor)
	assert.Equal(t, math3d.Hex("#00ff00"), st.SubjectColor)
	assert.Empty(t, sheet.Props("div"))
}

func TestDefaultPanelCSSParses(t *testing.T) {
	sheet, err := ParseCSS(DefaultPanelCSS)
	require.NoError(t, err)
	st := sheet.Panel()
	assert.Equal(t, 12, st.Left)
	assert.Equal(t, 12, st.Top)
	assert.Equal(t, math3d.Hex("#9ad0ff"), st.SubjectColor)
}

func TestParsePx(t *testing.T) {
	n, ok := ParsePx(" 14px ")
	assert.True(t, ok)
	assert.Equal(t, 14.0, n)
	_, ok = ParsePx("auto")
	assert.False(t, ok)
}

func frameOf(t *testing.T, d geometry.Description, cam camera.State, ms float64) compositor.Frame {
	t.Helper()
	var c compositor.Compositor
	f := c.Compose(d, cam, ms)
	f.Subject = "Chemistry"
	return f
}

func TestDrawAtomicStructure(t *testing.T) {
	size := image.Pt(160, 120)
	surface := backend.NewBuffer(size)
	b := New(Options{})
	require.NoError(t, b.Init(surface))
	defer b.Close()

	d := geometry.NewLibrary().Describe(string(geometry.AtomicStructure))
	f := frameOf(t, d, camera.Default(d.SuggestedCameraDistance), 0)
	require.NoError(t, b.Draw(f, size))
	require.Equal(t, 1, surface.Presents())

	img := surface.Last()
	require.Equal(t, size, img.Bounds().Size())
	center := img.RGBAAt(size.X/2, size.Y/2)
	assert.Greater(t, center.R, uint8(200), "nucleus at the center: %v", center)
	assert.Less(t, center.G, uint8(150))
	assert.Equal(t, uint8(255), center.A)

	bg := NewGradient().Frame(size)
	panel := b.PanelRect(f)
	assert.Equal(t, image.Pt(12, 12), panel.Min)
	assert.NotEqual(t, bg.RGBAAt(panel.Min.X+1, panel.Min.Y+1), img.RGBAAt(panel.Min.X+1, panel.Min.Y+1))
}

func TestDrawKeepsDescriptionOrder(t *testing.T) {
	// The second sphere sits behind the first but is listed later, so it is painted on top.
	d := geometry.Description{Primitives: []geometry.Primitive{
		geometry.Sphere("front", math3d.V3(0, 0, 1), 1, math3d.Hex("#ff0000")),
		geometry.Point("back", math3d.V3(0, 0, -1), 1, math3d.Hex("#0000ff")),
	}}
	size := image.Pt(100, 100)
	b := New(Options{})
	require.NoError(t, b.Init(backend.NewBuffer(size)))
	img := b.Render(frameOf(t, d, camera.State{Distance: 8}, 0), size)
	px := img.RGBAAt(50, 50)
	assert.Greater(t, px.B, uint8(250), "%v", px)
	assert.Less(t, px.R, uint8(5), "%v", px)
}

type markupOnly struct{}

func (markupOnly) Size() image.Point                   { return image.Pt(10, 10) }
func (markupOnly) Mount(*html.Node) error              { return nil }
func (markupOnly) Update(id, attr, value string) error { return nil }

func TestInitErrors(t *testing.T) {
	b := New(Options{})
	var unavailable *backend.SurfaceUnavailableError
	assert.ErrorAs(t, b.Init(nil), &unavailable)
	assert.True(t, backend.IsInitError(b.Init(markupOnly{})))
	assert.Error(t, b.Draw(compositor.Frame{}, image.Pt(10, 10)))
}

func TestFeedBackgroundCovers(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 40, 10))
	draw.Draw(src, src.Bounds(), image.NewUniform(color.RGBA{G: 200, A: 255}), image.Point{}, draw.Src)
	fb := FeedBackground{Feed: StillFeed{Image: src}, Fallback: NewGradient()}
	out := fb.Frame(image.Pt(20, 20))
	require.Equal(t, image.Rect(0, 0, 20, 20), out.Bounds())
	px := out.RGBAAt(10, 10)
	assert.InDelta(t, 200, px.G, 2)
	assert.Zero(t, px.R)

	empty := FeedBackground{Feed: StillFeed{}, Fallback: NewGradient()}
	assert.Equal(t, NewGradient().Frame(image.Pt(5, 5)).Pix, empty.Frame(image.Pt(5, 5)).Pix)
}

func TestConvexHull(t *testing.T) {
	pts := []compositor.Point{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 2}, {X: 0, Y: 2}, {X: 1, Y: 0}}
	hull := convexHull(pts)
	assert.ElementsMatch(t, []compositor.Point{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 2}, {X: 0, Y: 2}}, hull)
}

func TestPainterEllipse(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 40, 40))
	p := newPainter(dst)
	p.ellipse(compositor.Point{X: 20, Y: 20}, 12, 6, 0, false)
	p.fill(math3d.Hex("#ff0000"))

	assert.Equal(t, color.RGBA{255, 0, 0, 255}, dst.RGBAAt(20, 20))
	assert.Equal(t, uint8(255), dst.RGBAAt(30, 20).R, "inside the major radius")
	assert.Zero(t, dst.RGBAAt(20, 29).A, "outside the minor radius")
	assert.Zero(t, dst.RGBAAt(35, 20).A)

	ring := image.NewRGBA(image.Rect(0, 0, 40, 40))
	p = newPainter(ring)
	p.ellipse(compositor.Point{X: 20, Y: 20}, 12, 12, 0, false)
	p.ellipse(compositor.Point{X: 20, Y: 20}, 6, 6, 0, true)
	p.fill(math3d.Hex("#ff0000"))
	assert.Zero(t, ring.RGBAAt(20, 20).A, "reversed winding cuts a hole")
	assert.Equal(t, uint8(255), ring.RGBAAt(29, 20).A)
}
