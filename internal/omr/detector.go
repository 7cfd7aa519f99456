// Package omr reads filled bubbles from a captured answer-sheet image.
//
// The detector expects a single, roughly axis-aligned capture of the
// fixed-proportion sheet layout: the student-code digit grid in the top
// band and the answer grid below it. It does no perspective correction.
package omr

import (
	"image"
	"math"
	"strconv"
)

// Grid geometry as proportions of the captured frame. The answer grid sits
// under the student-code band; both are fixed by the printed sheet layout.
const (
	grayThreshold = 128

	answerGridLeft   = 0.15
	answerGridTop    = 0.30
	answerGridWidth  = 0.70
	answerGridHeight = 0.60

	// A bubble counts as a candidate only past this fill ratio.
	fillThreshold = 0.4

	bubbleRadiusScale = 0.3

	codeDigits       = 5
	codeRegionTop    = 0.05
	codeRegionHeight = 0.20
	codeColumnLeft   = 0.30
	codeColumnWidth  = 0.06
	codeRadiusScale  = 0.6
)

// Options describes the answer grid printed on the sheet being read.
type Options struct {
	TotalQuestions     int
	ChoicesPerQuestion int

	// VersionCodes are the known version codes for the exam. Version marks
	// are not read from pixels; the first candidate is reported and the
	// operator confirms or corrects it before submission.
	VersionCodes []string

	// ChoiceLabels is the label alphabet; the first ChoicesPerQuestion
	// entries are used.
	ChoiceLabels []string
}

// Detection is the operator-facing read of one captured sheet. Answers maps
// 1-based question numbers (as strings) to detected labels; unanswered
// questions are absent.
type Detection struct {
	StudentCode string            `json:"student_code"`
	VersionCode string            `json:"version_code"`
	Answers     map[string]string `json:"answers"`
}

// bitmap is the binarized frame: true where the pixel is dark (a mark).
type bitmap struct {
	width  int
	height int
	dark   []bool
}

// Detect reads the student code and per-question answers from img. Geometry
// failures (degenerate dimensions, bubbles off-frame) degrade to missing
// answers rather than failing the scan, so partial reads stay usable for
// operator correction.
func Detect(img image.Image, opts Options) *Detection {
	bm := binarize(img)

	det := &Detection{
		StudentCode: detectStudentCode(bm, bubbleRadius(bm, opts)*codeRadiusScale),
		VersionCode: defaultVersionCode(opts.VersionCodes),
		Answers:     detectAnswers(bm, opts),
	}
	return det
}

// bubbleRadius is the answer-grid sampling radius: 0.3 times the smaller
// cell dimension. Zero when the grid is degenerate.
func bubbleRadius(bm *bitmap, opts Options) float64 {
	if opts.TotalQuestions <= 0 || opts.ChoicesPerQuestion <= 0 {
		return 0
	}
	rowHeight := float64(bm.height) * answerGridHeight / float64(opts.TotalQuestions)
	colWidth := float64(bm.width) * answerGridWidth / float64(opts.ChoicesPerQuestion)
	return math.Min(rowHeight, colWidth) * bubbleRadiusScale
}

func defaultVersionCode(candidates []string) string {
	if len(candidates) > 0 {
		return candidates[0]
	}
	return "A"
}

// binarize converts img to a dark-pixel mask: luminance grayscale with the
// standard 0.299/0.587/0.114 weights, then a fixed threshold at 128.
func binarize(img image.Image) *bitmap {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	bm := &bitmap{width: w, height: h, dark: make([]bool, w*h)}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			// RGBA returns 16-bit channels; scale down to 8-bit.
			gray := 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)
			bm.dark[y*w+x] = gray < grayThreshold
		}
	}
	return bm
}

// darknessRatio samples every pixel within radius of (cx, cy) that lies
// inside the frame and returns the dark fraction. Out-of-frame or empty
// samples yield 0.
func (bm *bitmap) darknessRatio(cx, cy, radius float64) float64 {
	darkPixels := 0
	totalPixels := 0

	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy > radius*radius {
				continue
			}
			px := int(math.Floor(cx + dx))
			py := int(math.Floor(cy + dy))
			if px < 0 || px >= bm.width || py < 0 || py >= bm.height {
				continue
			}
			if bm.dark[py*bm.width+px] {
				darkPixels++
			}
			totalPixels++
		}
	}

	if totalPixels == 0 {
		return 0
	}
	return float64(darkPixels) / float64(totalPixels)
}

func detectAnswers(bm *bitmap, opts Options) map[string]string {
	answers := make(map[string]string)
	if opts.TotalQuestions <= 0 || opts.ChoicesPerQuestion <= 0 {
		return answers
	}

	labels := opts.ChoiceLabels
	if len(labels) > opts.ChoicesPerQuestion {
		labels = labels[:opts.ChoicesPerQuestion]
	}
	if len(labels) < opts.ChoicesPerQuestion {
		return answers
	}

	gridLeft := float64(bm.width) * answerGridLeft
	gridTop := float64(bm.height) * answerGridTop
	rowHeight := float64(bm.height) * answerGridHeight / float64(opts.TotalQuestions)
	colWidth := float64(bm.width) * answerGridWidth / float64(opts.ChoicesPerQuestion)
	radius := bubbleRadius(bm, opts)
	if radius <= 0 {
		return answers
	}

	for q := 0; q < opts.TotalQuestions; q++ {
		centerY := gridTop + (float64(q)+0.5)*rowHeight

		// Among candidates past the fill threshold the darkest bubble
		// wins; the first column keeps ties.
		maxDarkness := 0.0
		selected := ""

		for c := 0; c < opts.ChoicesPerQuestion; c++ {
			centerX := gridLeft + (float64(c)+0.5)*colWidth
			darkness := bm.darknessRatio(centerX, centerY, radius)
			if darkness > fillThreshold && darkness > maxDarkness {
				maxDarkness = darkness
				selected = labels[c]
			}
		}

		if selected != "" {
			answers[strconv.Itoa(q+1)] = selected
		}
	}

	return answers
}

// detectStudentCode reads the 5-digit code grid in the top band. Each digit
// column has ten row bubbles (0-9); the darkest row wins with no threshold
// gate, so an unmarked column reads as '0'.
func detectStudentCode(bm *bitmap, radius float64) string {
	regionTop := float64(bm.height) * codeRegionTop
	regionHeight := float64(bm.height) * codeRegionHeight
	colWidth := float64(bm.width) * codeColumnWidth

	code := make([]byte, 0, codeDigits)
	for d := 0; d < codeDigits; d++ {
		colCenterX := float64(bm.width)*codeColumnLeft + float64(d)*colWidth

		maxDarkness := 0.0
		selected := byte('0')
		for digit := 0; digit < 10; digit++ {
			rowCenterY := regionTop + (float64(digit)+0.5)*(regionHeight/10)
			ratio := bm.darknessRatio(colCenterX, rowCenterY, radius)
			if ratio > maxDarkness {
				maxDarkness = ratio
				selected = byte('0' + digit)
			}
		}
		code = append(code, selected)
	}

	return string(code)
}
