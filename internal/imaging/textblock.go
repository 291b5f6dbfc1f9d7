package imaging

import (
	"image"
	"image/color"
	"math"
	"sort"

	"github.com/anthonynsimon/bild/effect"
)

// TextRegion is an area whose edges look like a line of text.
type TextRegion struct {
	Bounds     image.Rectangle
	Confidence float64
}

// textWindows are the probe sizes, from small to large type.
var textWindows = []image.Point{{80, 25}, {100, 30}, {150, 40}, {200, 50}}

const (
	// edgeThreshold is the Sobel magnitude above which a pixel counts as an edge.
	edgeThreshold = 64

	// Text has a moderate edge density; blank areas and photos fall outside.
	minTextDensity  = 0.05
	peakTextDensity = 0.2
	maxTextDensity  = 0.4
)

// DetectTextRegions slides probe windows over img and keeps those with a
// text-like edge density and mostly horizontal edge runs. Overlapping hits are
// merged; the result is sorted by confidence, highest first. Bounds are in img's
// coordinate space.
func DetectTextRegions(img image.Image, minConfidence float64) []TextRegion {
	b := img.Bounds()
	edges := edgeMap(img)
	w, h := b.Dx(), b.Dy()

	var hits []TextRegion
	for _, win := range textWindows {
		stepX, stepY := win.X/2, win.Y/2
		for y := 0; y+win.Y <= h; y += stepY {
			for x := 0; x+win.X <= w; x += stepX {
				r := image.Rect(x, y, x+win.X, y+win.Y)
				density := edgeDensity(edges, r)
				if density < minTextDensity || density > maxTextDensity {
					continue
				}
				conf := horizontalScore(edges, r) * (1 - math.Abs(density-peakTextDensity)/peakTextDensity)
				if conf < minConfidence {
					continue
				}
				hits = append(hits, TextRegion{
					Bounds:     r.Add(b.Min),
					Confidence: math.Round(conf*1000) / 1000,
				})
			}
		}
	}

	regions := mergeRegions(hits)
	sort.SliceStable(regions, func(i, j int) bool {
		return regions[i].Confidence > regions[j].Confidence
	})
	return regions
}

// TextBlock returns the union of all text regions grown by pad pixels and clipped
// to img. ok is false when nothing looks like text.
func TextBlock(img image.Image, minConfidence float64, pad int) (image.Rectangle, bool) {
	regions := DetectTextRegions(img, minConfidence)
	if len(regions) == 0 {
		return image.Rectangle{}, false
	}
	block := regions[0].Bounds
	for _, r := range regions[1:] {
		block = block.Union(r.Bounds)
	}
	block = image.Rect(block.Min.X-pad, block.Min.Y-pad, block.Max.X+pad, block.Max.Y+pad)
	return block.Intersect(img.Bounds()), true
}

// edgeMap marks pixels whose Sobel magnitude exceeds edgeThreshold. Indexing is
// [y][x] relative to the image origin.
func edgeMap(img image.Image) [][]bool {
	var mag image.Image = effect.Sobel(effect.Grayscale(img))
	mb := mag.Bounds()

	edges := make([][]bool, mb.Dy())
	for y := range edges {
		edges[y] = make([]bool, mb.Dx())
		for x := range edges[y] {
			g := color.GrayModel.Convert(mag.At(mb.Min.X+x, mb.Min.Y+y)).(color.Gray)
			edges[y][x] = g.Y > edgeThreshold
		}
	}
	return edges
}

func edgeDensity(edges [][]bool, r image.Rectangle) float64 {
	n := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if edges[y][x] {
				n++
			}
		}
	}
	return float64(n) / float64(r.Dx()*r.Dy())
}

// horizontalScore is the share of edge runs that are horizontal.
func horizontalScore(edges [][]bool, r image.Rectangle) float64 {
	horizontal, vertical := 0, 0

	for y := r.Min.Y; y < r.Max.Y; y++ {
		in := false
		for x := r.Min.X; x < r.Max.X; x++ {
			if edges[y][x] && !in {
				horizontal++
			}
			in = edges[y][x]
		}
	}
	for x := r.Min.X; x < r.Max.X; x++ {
		in := false
		for y := r.Min.Y; y < r.Max.Y; y++ {
			if edges[y][x] && !in {
				vertical++
			}
			in = edges[y][x]
		}
	}

	if horizontal+vertical == 0 {
		return 0
	}
	return float64(horizontal) / float64(horizontal+vertical)
}

// mergeRegions folds each region into the first earlier one it overlaps.
func mergeRegions(regions []TextRegion) []TextRegion {
	merged := make([]TextRegion, 0, len(regions))
	for _, r := range regions {
		folded := false
		for i := range merged {
			if r.Bounds.Overlaps(merged[i].Bounds) {
				merged[i].Bounds = merged[i].Bounds.Union(r.Bounds)
				merged[i].Confidence = math.Max(merged[i].Confidence, r.Confidence)
				folded = true
				break
			}
		}
		if !folded {
			merged = append(merged, r)
		}
	}
	return merged
}
