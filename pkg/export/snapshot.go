// Package export renders the analytics summary to a standalone image.
//
// SVG output is drawn with svgo, PNG output with gg using the x/image basic
// font so no system fonts are required.
package export

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"git.sr.ht/~sbinet/gg"
	svg "github.com/ajstarks/svgo"
	"golang.org/x/image/font/basicfont"

	"github.com/Dicklesworthstone/reviews_copilot/pkg/model"
)

// SnapshotOptions configures an analytics snapshot
type SnapshotOptions struct {
	Path      string
	Format    string // "svg" or "png"; inferred from Path when empty
	Analytics *model.Analytics
	Title     string
	Source    string // API base the numbers came from
	Generated time.Time
}

const (
	canvasWidth  = 720
	margin       = 32
	cardHeight   = 72
	barRowHeight = 26
	labelWidth   = 120
	pctWidth     = 56
)

var (
	colorBackground = color.RGBA{0x1e, 0x1e, 0x2e, 0xff}
	colorCard       = color.RGBA{0x31, 0x32, 0x44, 0xff}
	colorText       = color.RGBA{0xcd, 0xd6, 0xf4, 0xff}
	colorMuted      = color.RGBA{0x93, 0x99, 0xb2, 0xff}
	colorTrack      = color.RGBA{0x45, 0x47, 0x5a, 0xff}
	colorTopic      = color.RGBA{0x89, 0xb4, 0xfa, 0xff}

	sentimentColors = map[string]color.RGBA{
		string(model.SentimentPositive): {0xa6, 0xe3, 0xa1, 0xff},
		string(model.SentimentNeutral):  {0xf9, 0xe2, 0xaf, 0xff},
		string(model.SentimentNegative): {0xf3, 0x8b, 0xa8, 0xff},
	}
)

// snapshotLayout is the format-independent description of the image
type snapshotLayout struct {
	title    string
	subtitle string
	cards    [3][2]string // label, value
	sections []barSection
	height   int
}

type barSection struct {
	heading string
	bars    []model.Bar
	color   func(label string) color.RGBA
}

// SaveAnalyticsSnapshot writes the analytics summary to opts.Path
func SaveAnalyticsSnapshot(opts SnapshotOptions) error {
	if opts.Analytics == nil {
		return fmt.Errorf("no analytics to export")
	}
	format := strings.ToLower(opts.Format)
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(opts.Path)), ".")
	}
	if format != "svg" && format != "png" {
		return fmt.Errorf("unsupported snapshot format %q (want svg or png)", format)
	}
	if dir := filepath.Dir(opts.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	layout := buildLayout(opts)
	if format == "svg" {
		return writeSVG(opts.Path, layout)
	}
	return writePNG(opts.Path, layout)
}

func buildLayout(opts SnapshotOptions) snapshotLayout {
	a := *opts.Analytics
	a.Normalize()

	title := opts.Title
	if title == "" {
		title = "Review Analytics"
	}
	generated := opts.Generated
	if generated.IsZero() {
		generated = time.Now()
	}
	subtitle := generated.Format("2006-01-02 15:04")
	if opts.Source != "" {
		subtitle += "  " + opts.Source
	}

	l := snapshotLayout{
		title:    title,
		subtitle: subtitle,
		cards: [3][2]string{
			{"Total Reviews", fmt.Sprintf("%d", a.TotalReviews)},
			{"Avg Rating", strconv.FormatFloat(a.AvgRating, 'f', -1, 64)},
			{"Positive", fmt.Sprintf("%d", a.SentimentCount(model.SentimentPositive))},
		},
		sections: []barSection{
			{
				heading: "Sentiment",
				bars:    a.SentimentBars(),
				color: func(label string) color.RGBA {
					if c, ok := sentimentColors[label]; ok {
						return c
					}
					return colorTopic
				},
			},
			{
				heading: "Top Topics",
				bars:    a.TopicBars(model.TopTopics),
				color:   func(string) color.RGBA { return colorTopic },
			},
		},
	}

	h := margin + 48 + cardHeight + margin
	for _, s := range l.sections {
		h += 28 + len(s.bars)*barRowHeight + 16
	}
	l.height = h + margin
	return l
}

func hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func writeSVG(path string, l snapshotLayout) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	canvas := svg.New(f)
	canvas.Start(canvasWidth, l.height)
	canvas.Rect(0, 0, canvasWidth, l.height, "fill:"+hex(colorBackground))

	font := "font-family:monospace;fill:"
	y := margin + 16
	canvas.Text(margin, y, l.title, font+hex(colorText)+";font-size:20px;font-weight:bold")
	canvas.Text(margin, y+22, l.subtitle, font+hex(colorMuted)+";font-size:12px")

	y = margin + 48
	cardW := (canvasWidth - 2*margin - 2*16) / 3
	for i, card := range l.cards {
		x := margin + i*(cardW+16)
		canvas.Roundrect(x, y, cardW, cardHeight, 8, 8, "fill:"+hex(colorCard))
		canvas.Text(x+14, y+26, card[0], font+hex(colorMuted)+";font-size:12px")
		canvas.Text(x+14, y+56, card[1], font+hex(colorText)+";font-size:24px;font-weight:bold")
	}
	y += cardHeight + margin

	trackW := canvasWidth - 2*margin - labelWidth - pctWidth
	for _, s := range l.sections {
		canvas.Text(margin, y+14, s.heading, font+hex(colorText)+";font-size:14px;font-weight:bold")
		y += 28
		for _, b := range s.bars {
			canvas.Text(margin, y+14, b.Label, font+hex(colorText)+";font-size:12px")
			x := margin + labelWidth
			canvas.Rect(x, y+2, trackW, 14, "fill:"+hex(colorTrack))
			if w := int(b.Fill * float64(trackW)); w > 0 {
				canvas.Rect(x, y+2, w, 14, "fill:"+hex(s.color(b.Label)))
			}
			canvas.Text(x+trackW+8, y+14, strings.TrimSpace(fmt.Sprintf("%d %s", b.Count, b.Pct)), font+hex(colorMuted)+";font-size:12px")
			y += barRowHeight
		}
		y += 16
	}

	canvas.End()
	return f.Close()
}

func setColor(dc *gg.Context, c color.RGBA) {
	dc.SetRGB(float64(c.R)/255, float64(c.G)/255, float64(c.B)/255)
}

func writePNG(path string, l snapshotLayout) error {
	dc := gg.NewContext(canvasWidth, l.height)
	setColor(dc, colorBackground)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	y := float64(margin + 16)
	setColor(dc, colorText)
	dc.DrawString(l.title, margin, y)
	setColor(dc, colorMuted)
	dc.DrawString(l.subtitle, margin, y+20)

	y = float64(margin + 48)
	cardW := float64(canvasWidth-2*margin-2*16) / 3
	for i, card := range l.cards {
		x := float64(margin) + float64(i)*(cardW+16)
		setColor(dc, colorCard)
		dc.DrawRoundedRectangle(x, y, cardW, cardHeight, 8)
		dc.Fill()
		setColor(dc, colorMuted)
		dc.DrawString(card[0], x+14, y+26)
		setColor(dc, colorText)
		dc.DrawString(card[1], x+14, y+54)
	}
	y += cardHeight + margin

	trackW := float64(canvasWidth - 2*margin - labelWidth - pctWidth)
	for _, s := range l.sections {
		setColor(dc, colorText)
		dc.DrawString(s.heading, margin, y+14)
		y += 28
		for _, b := range s.bars {
			setColor(dc, colorText)
			dc.DrawString(b.Label, margin, y+14)
			x := float64(margin + labelWidth)
			setColor(dc, colorTrack)
			dc.DrawRectangle(x, y+2, trackW, 14)
			dc.Fill()
			if w := b.Fill * trackW; w > 0 {
				setColor(dc, s.color(b.Label))
				dc.DrawRectangle(x, y+2, w, 14)
				dc.Fill()
			}
			setColor(dc, colorMuted)
			dc.DrawString(strings.TrimSpace(fmt.Sprintf("%d %s", b.Count, b.Pct)), x+trackW+8, y+14)
			y += barRowHeight
		}
		y += 16
	}

	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
