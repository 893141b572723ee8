package screenshot

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edharness/internal/harness"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
}

// writePPM writes a binary (P6) PPM, the format the editor's screenshot helper uses.
func writePPM(t *testing.T, path string, img *image.RGBA) {
	t.Helper()
	b := img.Bounds()
	var buf bytes.Buffer
	buf.WriteString("P6\n")
	buf.WriteString(strconv.Itoa(b.Dx()) + " " + strconv.Itoa(b.Dy()) + "\n255\n")
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.RGBAAt(x, y)
			buf.Write([]byte{c.R, c.G, c.B})
		}
	}
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
}

func TestSimilarity(t *testing.T) {
	grey := color.RGBA{0x80, 0x80, 0x80, 0xff}
	black := color.RGBA{0, 0, 0, 0xff}
	white := color.RGBA{0xff, 0xff, 0xff, 0xff}

	half := solid(2, 1, black)
	half.SetRGBA(1, 0, white)

	tests := []struct {
		name string
		a, b image.Image
		want float64
	}{
		{"identical", solid(4, 4, grey), solid(4, 4, grey), 1},
		{"opposite", solid(4, 4, black), solid(4, 4, white), 0},
		{"half the pixels differ fully", half, solid(2, 1, black), 0.5},
		{"different dimensions", solid(4, 4, grey), solid(4, 5, grey), 0},
		{"empty images", solid(0, 0, grey), solid(0, 0, grey), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Similarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestSimilarity_IgnoresOrigin(t *testing.T) {
	a := solid(4, 4, color.RGBA{10, 20, 30, 255})
	b := a.SubImage(image.Rect(2, 2, 4, 4))
	c := solid(2, 2, color.RGBA{10, 20, 30, 255})

	assert.InDelta(t, 1.0, Similarity(b, c), 1e-9)
}

func TestPixelComparer_PPMAgainstPNG(t *testing.T) {
	dir := t.TempDir()
	img := solid(3, 2, color.RGBA{0x20, 0x40, 0x60, 0xff})
	img.SetRGBA(1, 1, color.RGBA{0xff, 0x00, 0x10, 0xff})

	produced := filepath.Join(dir, "AreaLight_1.ppm")
	golden := filepath.Join(dir, "AreaLight_1.png")
	writePPM(t, produced, img)
	writePNG(t, golden, img)

	cmp := &PixelComparer{}
	res, err := cmp.Compare(context.Background(), produced, golden)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, res.Similarity, 1e-9)
	assert.Equal(t, DefaultThreshold, res.Threshold)
	assert.True(t, res.Passed)
	assert.Empty(t, res.DiffPath)
}

func TestPixelComparer_FailureWritesDiff(t *testing.T) {
	dir := t.TempDir()
	golden := filepath.Join(dir, "golden.ppm")
	produced := filepath.Join(dir, "SpotLight_3.ppm")
	writePPM(t, golden, solid(4, 4, color.RGBA{0, 0, 0, 0xff}))
	writePPM(t, produced, solid(4, 4, color.RGBA{0xff, 0xff, 0xff, 0xff}))

	cmp := &PixelComparer{Threshold: 0.5, DiffDir: filepath.Join(dir, "diffs")}
	res, err := cmp.Compare(context.Background(), produced, golden)
	require.NoError(t, err)
	assert.False(t, res.Passed)
	assert.Equal(t, 0.5, res.Threshold)
	assert.Equal(t, filepath.Join(dir, "diffs", "SpotLight_3.diff.png"), res.DiffPath)

	diff, err := LoadImage(res.DiffPath)
	require.NoError(t, err)
	r, g, b, _ := diff.At(0, 0).RGBA()
	assert.Equal(t, []uint32{0xffff, 0xffff, 0xffff}, []uint32{r, g, b})
	assert.Contains(t, res.String(), "FAIL SpotLight_3.ppm")
}

func TestPixelComparer_WithDiffDir(t *testing.T) {
	base := &PixelComparer{Threshold: 0.9, DiffDir: "/logs/diffs"}

	var cmp DiffDirComparer = base
	moved, ok := cmp.WithDiffDir("/logs/run-1/Suite/diffs/Case").(*PixelComparer)
	require.True(t, ok)
	assert.Equal(t, "/logs/run-1/Suite/diffs/Case", moved.DiffDir)
	assert.Equal(t, 0.9, moved.Threshold)
	assert.Equal(t, "/logs/diffs", base.DiffDir, "the original keeps its directory")
}

func TestPixelComparer_Errors(t *testing.T) {
	dir := t.TempDir()
	golden := filepath.Join(dir, "golden.png")
	writePNG(t, golden, solid(1, 1, color.RGBA{1, 2, 3, 255}))
	garbage := filepath.Join(dir, "garbage.ppm")
	require.NoError(t, os.WriteFile(garbage, []byte("not an image"), 0644))

	cmp := &PixelComparer{}

	_, err := cmp.Compare(context.Background(), filepath.Join(dir, "absent.ppm"), golden)
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = cmp.Compare(context.Background(), garbage, golden)
	assert.ErrorContains(t, err, "failed to decode")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = cmp.Compare(ctx, golden, golden)
	assert.ErrorIs(t, err, context.Canceled)
}

// stubComparer returns canned results keyed by produced path.
type stubComparer struct {
	results map[string]Comparison
	errs    map[string]error
	calls   []string
}

func (s *stubComparer) Compare(_ context.Context, produced, golden string) (Comparison, error) {
	s.calls = append(s.calls, produced)
	if err := s.errs[produced]; err != nil {
		return Comparison{Pair: Pair{produced, golden}}, err
	}
	res := s.results[produced]
	res.Pair = Pair{produced, golden}
	return res, nil
}

func TestCompareAll(t *testing.T) {
	dir := t.TempDir()
	golden1 := filepath.Join(dir, "AreaLight_1.ppm")
	golden2 := filepath.Join(dir, "AreaLight_2.ppm")
	require.NoError(t, os.WriteFile(golden1, nil, 0644))
	require.NoError(t, os.WriteFile(golden2, nil, 0644))

	pairs := []Pair{{"p1", golden1}, {"p2", golden2}}

	t.Run("all pass", func(t *testing.T) {
		stub := &stubComparer{results: map[string]Comparison{
			"p1": {Passed: true, Similarity: 1},
			"p2": {Passed: true, Similarity: 0.995},
		}}
		results, err := CompareAll(context.Background(), stub, "C1", pairs)
		require.NoError(t, err)
		assert.Len(t, results, 2)
	})

	t.Run("mismatch keeps comparing", func(t *testing.T) {
		stub := &stubComparer{
			results: map[string]Comparison{"p2": {Passed: true}},
			errs:    map[string]error{"p1": errors.New("produced image: missing")},
		}
		results, err := CompareAll(context.Background(), stub, "C1", pairs)
		require.Error(t, err)
		assert.ErrorIs(t, err, harness.ErrValidationFailure)
		assert.Equal(t, []string{"p1", "p2"}, stub.calls)
		assert.Len(t, results, 2)
		assert.Contains(t, err.Error(), "1 of 2 screenshot(s)")
	})

	t.Run("missing golden is a precursor error", func(t *testing.T) {
		stub := &stubComparer{}
		_, err := CompareAll(context.Background(), stub, "C1", []Pair{{"p1", filepath.Join(dir, "absent.ppm")}})
		assert.ErrorIs(t, err, harness.ErrPrecursorMissing)
		assert.Empty(t, stub.calls)
	})
}
