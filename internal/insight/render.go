package insight

import (
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"

	"github.com/wireman27/bengaluru-ofc-data/internal/config"
	"github.com/wireman27/bengaluru-ofc-data/internal/domain"
)

const frameWidth = 640

// RenderSpreadGIF draws one frame per mapped operator, in first-seen order,
// and assembles the frames into a looping animation. Every frame uses the
// same fixed bounds so the operators compare at a single scale. Rows without
// an operator are left out entirely.
func RenderSpreadGIF(rows []domain.SpreadRow, bounds config.Bounds, delay int, outPath string, logger *slog.Logger) error {
	companies, groups := groupByCompany(rows)
	if len(companies) == 0 {
		logger.Warn("no mapped operators to render, skipping animation")
		return nil
	}

	tmpDir, err := os.MkdirTemp("", "ofc-frames-")
	if err != nil {
		return fmt.Errorf("create frame dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	anim := &gif.GIF{}
	for _, company := range companies {
		framePath := filepath.Join(tmpDir, frameFileName(company))
		if err := saveFrame(framePath, company, groups[company], bounds); err != nil {
			return err
		}

		// Round-trip through the PNG on disk, then drop it; the frames are
		// transient, only the animation is a deliverable.
		frame, err := loadFrame(framePath)
		if err != nil {
			return err
		}
		if err := os.Remove(framePath); err != nil {
			return fmt.Errorf("remove frame: %w", err)
		}

		anim.Image = append(anim.Image, palettize(frame))
		anim.Delay = append(anim.Delay, delay)
		logger.Debug("rendered frame", "company", company, "portions", len(groups[company]))
	}

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create animation file: %w", err)
	}
	defer out.Close()

	if err := gif.EncodeAll(out, anim); err != nil {
		return fmt.Errorf("encode animation: %w", err)
	}
	logger.Info("animation written", "path", outPath, "frames", len(anim.Image))
	return nil
}

// groupByCompany buckets spread rows per operator, preserving first-seen
// order and skipping unmapped rows.
func groupByCompany(rows []domain.SpreadRow) ([]string, map[string][]domain.SpreadRow) {
	var order []string
	groups := make(map[string][]domain.SpreadRow)
	for _, r := range rows {
		if r.Company == "" {
			continue
		}
		if _, ok := groups[r.Company]; !ok {
			order = append(order, r.Company)
		}
		groups[r.Company] = append(groups[r.Company], r)
	}
	return order, groups
}

func frameFileName(company string) string {
	return strings.ReplaceAll(strings.ToLower(company), " ", "_") + ".png"
}

func saveFrame(path, title string, rows []domain.SpreadRow, b config.Bounds) error {
	height := int(frameWidth * (b.MaxLat - b.MinLat) / (b.MaxLon - b.MinLon))
	dc := gg.NewContext(frameWidth, height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	dc.SetFontFace(basicfont.Face7x13)
	dc.SetRGB(0, 0, 0)
	dc.DrawStringAnchored(title, frameWidth/2, 16, 0.5, 0.5)

	dc.SetRGB255(31, 119, 180)
	dc.SetLineWidth(1)
	for _, row := range rows {
		for i, pt := range row.Geometry {
			x := (pt[0] - b.MinLon) / (b.MaxLon - b.MinLon) * frameWidth
			y := float64(height) - (pt[1]-b.MinLat)/(b.MaxLat-b.MinLat)*float64(height)
			if i == 0 {
				dc.MoveTo(x, y)
			} else {
				dc.LineTo(x, y)
			}
		}
		dc.Stroke()
	}

	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("save frame %s: %w", path, err)
	}
	return nil
}

func loadFrame(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open frame: %w", err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode frame %s: %w", path, err)
	}
	return img, nil
}

func palettize(img image.Image) *image.Paletted {
	b := img.Bounds()
	p := image.NewPaletted(b, palette.Plan9)
	draw.FloydSteinberg.Draw(p, b, img, b.Min)
	return p
}
