package srv

import (
	"image"
	"image/color"
	"image/draw"
	"io/ioutil"

	"github.com/hajimehoshi/bitmapfont/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const dejaVuBoldFilename = "/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf"

// screenFonts are the three text sizes of the status screen. When the
// truetype file is missing (non-Raspbian host, stripped image) everything
// falls back to the embedded bitmap font.
type screenFonts struct {
	header font.Face
	title  font.Face
	status font.Face
}

func loadScreenFonts() *screenFonts {
	fallback := &screenFonts{
		header: bitmapfont.Face,
		title:  bitmapfont.Face,
		status: bitmapfont.Face,
	}

	rawFont, err := ioutil.ReadFile(dejaVuBoldFilename)
	if err != nil {
		logrus.Infof("Truetype font unavailable, using bitmap font: %v", err)
		return fallback
	}
	parsedFont, err := opentype.Parse(rawFont)
	if err != nil {
		logrus.Warnf("Unable to parse %s, using bitmap font: %v", dejaVuBoldFilename, err)
		return fallback
	}

	newFace := func(size float64) font.Face {
		face, err := opentype.NewFace(parsedFont, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
		if err != nil {
			logrus.Warnf("Unable to build %gpt face, using bitmap font: %v", size, err)
			return bitmapfont.Face
		}
		return face
	}
	return &screenFonts{header: newFace(32), title: newFace(28), status: newFace(22)}
}

// AddLabel draws label with its baseline at (x, y).
func AddLabel(img *image.RGBA, x, y int, label string, face font.Face, col color.RGBA) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(label)
}

func FillRect(img *image.RGBA, r image.Rectangle, col color.RGBA) {
	draw.Draw(img, r, &image.Uniform{col}, image.Point{}, draw.Src)
}

// DrawProgressBar renders the bar at the bottom of the status screen: a
// white outline with a green fill proportional to progress.
func DrawProgressBar(img *image.RGBA, progress float64) {
	if progress < 0 {
		progress = 0
	} else if progress > 1 {
		progress = 1
	}
	FillRect(img, image.Rect(20, 190, 220, 215), color.RGBA{255, 255, 255, 255})
	FillRect(img, image.Rect(22, 192, 218, 213), color.RGBA{0, 0, 0, 255})
	FillRect(img, image.Rect(22, 192, 22+int(196*progress), 213), color.RGBA{0, 255, 0, 255})
}

// TruncateLabel limits a status line to maxRunes so it never overflows the
// panel.
func TruncateLabel(label string, maxRunes int) string {
	runes := []rune(label)
	if len(runes) <= maxRunes {
		return label
	}
	return string(runes[:maxRunes])
}
