package screenshot

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	// Registers the PBM, PGM, PPM and PAM decoders with image.Decode.
	_ "github.com/spakin/netpbm"

	"edharness/internal/harness"
	"edharness/pkg/logging"
)

// DefaultThreshold is the similarity a produced image needs to pass.
const DefaultThreshold = 0.99

// Pair is a produced screenshot and the golden image it must match.
type Pair struct {
	Produced string `json:"produced"`
	Golden   string `json:"golden"`
}

// Comparison is the outcome of comparing one Pair.
type Comparison struct {
	Pair
	Similarity float64 `json:"similarity"`
	Threshold  float64 `json:"threshold"`
	Passed     bool    `json:"passed"`
	// DiffPath points at an image marking the differing pixels, when one was written.
	DiffPath string `json:"diff_path,omitempty"`
}

func (c Comparison) String() string {
	verdict := "PASS"
	if !c.Passed {
		verdict = "FAIL"
	}
	return fmt.Sprintf("%s %s: similarity %.4f (threshold %.4f)", verdict, filepath.Base(c.Produced), c.Similarity, c.Threshold)
}

// Comparer compares a produced image with a golden image.
type Comparer interface {
	Compare(ctx context.Context, produced, golden string) (Comparison, error)
}

// DiffDirComparer is a Comparer whose diff image directory can be changed per case.
type DiffDirComparer interface {
	Comparer
	WithDiffDir(dir string) Comparer
}

// PixelComparer compares decoded images pixel by pixel.
type PixelComparer struct {
	// Threshold defaults to DefaultThreshold when zero.
	Threshold float64
	// DiffDir receives a PNG marking differing pixels for every failed
	// comparison. Empty disables diff images.
	DiffDir string
}

// Compare implements Comparer.
func (c *PixelComparer) Compare(ctx context.Context, produced, golden string) (Comparison, error) {
	result := Comparison{
		Pair:      Pair{Produced: produced, Golden: golden},
		Threshold: c.threshold(),
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	goldenImg, err := LoadImage(golden)
	if err != nil {
		return result, fmt.Errorf("golden image: %w", err)
	}
	producedImg, err := LoadImage(produced)
	if err != nil {
		return result, fmt.Errorf("produced image: %w", err)
	}

	result.Similarity = Similarity(producedImg, goldenImg)
	result.Passed = result.Similarity >= result.Threshold
	logging.Debug("Screenshot", "%s", result)

	if !result.Passed && c.DiffDir != "" && sameSize(producedImg, goldenImg) {
		path := filepath.Join(c.DiffDir, diffName(produced))
		if err := writeDiff(path, producedImg, goldenImg); err != nil {
			logging.Warn("Screenshot", "could not write diff image for %s: %v", produced, err)
		} else {
			result.DiffPath = path
		}
	}
	return result, nil
}

// WithDiffDir returns a copy of c that writes diff images to dir.
func (c *PixelComparer) WithDiffDir(dir string) Comparer {
	cp := *c
	cp.DiffDir = dir
	return &cp
}

func (c *PixelComparer) threshold() float64 {
	if c.Threshold > 0 {
		return c.Threshold
	}
	return DefaultThreshold
}

// CompareAll compares every pair in order. Every pair is compared even after a
// failure so the report lists all mismatches.
//
// A missing golden image is an ErrPrecursorMissing; an unreadable or
// dissimilar produced image is an ErrValidationFailure.
func CompareAll(ctx context.Context, cmp Comparer, caseID string, pairs []Pair) ([]Comparison, error) {
	results := make([]Comparison, 0, len(pairs))
	var failures []string

	for _, p := range pairs {
		if _, err := os.Stat(p.Golden); err != nil {
			return results, harness.NewError(harness.ErrPrecursorMissing, caseID, fmt.Errorf("golden image %s: %w", p.Golden, err))
		}

		res, err := cmp.Compare(ctx, p.Produced, p.Golden)
		if err != nil {
			if ctx.Err() != nil {
				return results, err
			}
			results = append(results, res)
			failures = append(failures, fmt.Sprintf("%s: %v", filepath.Base(p.Produced), err))
			continue
		}
		results = append(results, res)
		if !res.Passed {
			failures = append(failures, res.String())
		}
	}

	if len(failures) > 0 {
		return results, harness.NewError(harness.ErrValidationFailure, caseID,
			fmt.Errorf("%d of %d screenshot(s) did not match: %s", len(failures), len(pairs), strings.Join(failures, "; ")))
	}
	return results, nil
}

// LoadImage decodes a PNG or netpbm image from disk.
func LoadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	logging.Debug("Screenshot", "decoded %s as %s %v", filepath.Base(path), format, img.Bounds().Size())
	return img, nil
}

// Similarity returns the mean agreement of the RGB channels of a and b, in
// [0, 1]. Images of different dimensions have similarity 0; two empty images
// are identical.
func Similarity(a, b image.Image) float64 {
	if !sameSize(a, b) {
		return 0
	}

	ab, bb := a.Bounds(), b.Bounds()
	w, h := ab.Dx(), ab.Dy()
	if w == 0 || h == 0 {
		return 1
	}

	var diff float64
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r1, g1, b1, _ := a.At(ab.Min.X+x, ab.Min.Y+y).RGBA()
			r2, g2, b2, _ := b.At(bb.Min.X+x, bb.Min.Y+y).RGBA()
			diff += channelDiff(r1, r2) + channelDiff(g1, g2) + channelDiff(b1, b2)
		}
	}

	// RGBA() values are 16 bit.
	return 1 - diff/(float64(w*h)*3*0xffff)
}

func channelDiff(a, b uint32) float64 {
	if a > b {
		return float64(a - b)
	}
	return float64(b - a)
}

func sameSize(a, b image.Image) bool {
	return a.Bounds().Size() == b.Bounds().Size()
}

func diffName(produced string) string {
	base := filepath.Base(produced)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".diff.png"
}

// writeDiff writes a black image with every differing pixel in white.
func writeDiff(path string, a, b image.Image) error {
	ab, bb := a.Bounds(), b.Bounds()
	diff := image.NewRGBA(image.Rect(0, 0, ab.Dx(), ab.Dy()))
	white := color.RGBA{0xff, 0xff, 0xff, 0xff}
	black := color.RGBA{0x00, 0x00, 0x00, 0xff}

	for y := 0; y < ab.Dy(); y++ {
		for x := 0; x < ab.Dx(); x++ {
			r1, g1, b1, _ := a.At(ab.Min.X+x, ab.Min.Y+y).RGBA()
			r2, g2, b2, _ := b.At(bb.Min.X+x, bb.Min.Y+y).RGBA()
			if r1 != r2 || g1 != g2 || b1 != b2 {
				diff.SetRGBA(x, y, white)
			} else {
				diff.SetRGBA(x, y, black)
			}
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, diff); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
