package omr

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testWidth  = 800
	testHeight = 1000
)

func testOptions(questions, choices int) Options {
	return Options{
		TotalQuestions:     questions,
		ChoicesPerQuestion: choices,
		VersionCodes:       []string{"A", "B"},
		ChoiceLabels:       []string{"A", "B", "C", "D", "E", "F"},
	}
}

// blankSheet builds an all-white capture.
func blankSheet(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.White)
		}
	}
	return img
}

// fillCircle paints a solid black disc, the way a fully marked bubble reads
// after binarization.
func fillCircle(img *image.RGBA, cx, cy, r float64) {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				img.Set(int(cx+dx), int(cy+dy), color.Black)
			}
		}
	}
}

// answerCellCenter mirrors the detector's grid geometry for a given
// question row and choice column (both 0-based).
func answerCellCenter(w, h, questions, choices, q, c int) (float64, float64, float64) {
	gridLeft := float64(w) * answerGridLeft
	gridTop := float64(h) * answerGridTop
	rowHeight := float64(h) * answerGridHeight / float64(questions)
	colWidth := float64(w) * answerGridWidth / float64(choices)
	cx := gridLeft + (float64(c)+0.5)*colWidth
	cy := gridTop + (float64(q)+0.5)*rowHeight
	radius := min(rowHeight, colWidth) * bubbleRadiusScale
	return cx, cy, radius
}

func codeCellCenter(w, h, column, digit int) (float64, float64) {
	cx := float64(w)*codeColumnLeft + float64(column)*float64(w)*codeColumnWidth
	cy := float64(h)*codeRegionTop + (float64(digit)+0.5)*(float64(h)*codeRegionHeight/10)
	return cx, cy
}

func TestDetectSingleFilledBubble(t *testing.T) {
	opts := testOptions(10, 4)
	img := blankSheet(testWidth, testHeight)

	// Question 2 (0-based row 1), choice C (column 2).
	cx, cy, r := answerCellCenter(testWidth, testHeight, 10, 4, 1, 2)
	fillCircle(img, cx, cy, r)

	det := Detect(img, opts)
	require.NotNil(t, det)

	assert.Equal(t, map[string]string{"2": "C"}, det.Answers)
	assert.Equal(t, "A", det.VersionCode)
}

func TestDetectDarkestCandidateWins(t *testing.T) {
	opts := testOptions(5, 4)
	img := blankSheet(testWidth, testHeight)

	// Same row: a lightly marked B (just past the threshold) and a fully
	// marked D. The darker mark must win.
	bx, by, r := answerCellCenter(testWidth, testHeight, 5, 4, 2, 1)
	fillCircle(img, bx, by, r*0.72) // ~52% of the sample disc

	dx, dy, _ := answerCellCenter(testWidth, testHeight, 5, 4, 2, 3)
	fillCircle(img, dx, dy, r)

	det := Detect(img, opts)
	assert.Equal(t, "D", det.Answers["3"])
}

func TestDetectBelowThresholdIsUnanswered(t *testing.T) {
	opts := testOptions(5, 4)
	img := blankSheet(testWidth, testHeight)

	// A faint smudge: ~25% of the sample disc, under the 0.4 gate.
	cx, cy, r := answerCellCenter(testWidth, testHeight, 5, 4, 0, 0)
	fillCircle(img, cx, cy, r*0.5)

	det := Detect(img, opts)
	assert.Empty(t, det.Answers)
}

func TestDetectStudentCode(t *testing.T) {
	opts := testOptions(10, 4)
	img := blankSheet(testWidth, testHeight)

	_, _, bubbleR := answerCellCenter(testWidth, testHeight, 10, 4, 0, 0)
	codeR := bubbleR * codeRadiusScale

	// Mark 4-0-7 in the first three columns; the last two stay blank and
	// must default to '0'.
	for col, digit := range []int{4, 0, 7} {
		cx, cy := codeCellCenter(testWidth, testHeight, col, digit)
		fillCircle(img, cx, cy, codeR)
	}

	det := Detect(img, opts)
	assert.Equal(t, "40700", det.StudentCode)
}

func TestDetectBlankSheet(t *testing.T) {
	det := Detect(blankSheet(testWidth, testHeight), testOptions(10, 4))

	assert.Empty(t, det.Answers)
	assert.Equal(t, "00000", det.StudentCode)
	assert.Equal(t, "A", det.VersionCode)
}

func TestDetectDegenerateImage(t *testing.T) {
	// A 1x1 capture has no usable geometry; the scan must degrade to no
	// answers rather than fail.
	det := Detect(image.NewRGBA(image.Rect(0, 0, 1, 1)), testOptions(10, 4))

	assert.Empty(t, det.Answers)
	assert.Len(t, det.StudentCode, 5)
}

func TestDetectNoKnownVersions(t *testing.T) {
	opts := testOptions(5, 4)
	opts.VersionCodes = nil

	det := Detect(blankSheet(testWidth, testHeight), opts)
	assert.Equal(t, "A", det.VersionCode)
}
