package render

import (
	_ "embed"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	errs "github.com/matzehuels/ebdgraph/pkg/errors"
)

// DefaultBackgroundColor is the fill used by [AddBackground] when no color
// is given.
const DefaultBackgroundColor = "#f3f1f6"

// WatermarkScale is the share of the smaller image dimension the watermark
// occupies.
const WatermarkScale = 0.8

//go:embed logo.svg
var logoSVG []byte

var (
	svgTagRe    = regexp.MustCompile(`(?s)<svg\b[^>]*>`)
	widthAttrRe = regexp.MustCompile(`\swidth="([0-9.]+)(?:pt|px)?"`)
	heightRe    = regexp.MustCompile(`\sheight="([0-9.]+)(?:pt|px)?"`)
	prologRe    = regexp.MustCompile(`(?s)^\s*(<\?xml[^>]*\?>\s*)?(<!DOCTYPE[^>]*>\s*)?`)
)

// Dimensions returns the width and height of the root svg element. A "pt"
// or "px" unit suffix is ignored.
func Dimensions(svg []byte) (width, height float64, err error) {
	tag := svgTagRe.Find(svg)
	if tag == nil {
		return 0, 0, errs.New(errs.ErrCodeInvalidFormat, "no <svg> element found")
	}
	w := widthAttrRe.FindSubmatch(tag)
	h := heightRe.FindSubmatch(tag)
	if w == nil || h == nil {
		return 0, 0, errs.New(errs.ErrCodeInvalidFormat, "svg element lacks width or height")
	}
	if width, err = strconv.ParseFloat(string(w[1]), 64); err != nil {
		return 0, 0, errs.Wrap(errs.ErrCodeInvalidFormat, err, "parse width")
	}
	if height, err = strconv.ParseFloat(string(h[1]), 64); err != nil {
		return 0, 0, errs.Wrap(errs.ErrCodeInvalidFormat, err, "parse height")
	}
	return width, height, nil
}

// AddWatermark places the logo behind the diagram. The logo is scaled to
// [WatermarkScale] of the diagram's smaller dimension and centered.
func AddWatermark(svg []byte) ([]byte, error) {
	w, h, err := Dimensions(svg)
	if err != nil {
		return nil, err
	}
	lw, lh, err := Dimensions(logoSVG)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "embedded logo")
	}

	var scale, dx, dy float64
	if h >= w {
		scale = w * WatermarkScale / lw
		dx = (w - w*WatermarkScale) / 2
		dy = (h - lh*scale) / 2
	} else {
		scale = h * WatermarkScale / lh
		dx = (w - lw*scale) / 2
		dy = (h - h*WatermarkScale) / 2
	}

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="no"?>` + "\n")
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" width="%s" height="%s">`+"\n",
		formatFloat(w), formatFloat(h))
	fmt.Fprintf(&b, `<g transform="translate(%s, %s) scale(%s)">`+"\n", formatFloat(dx), formatFloat(dy), formatFloat(scale))
	b.Write(stripProlog(logoSVG))
	b.WriteString("\n</g>\n")
	b.Write(stripProlog(svg))
	b.WriteString("\n</svg>\n")
	return []byte(b.String()), nil
}

// AddBackground inserts a rectangle filling the whole image as the first
// child of the root element. An empty color selects [DefaultBackgroundColor].
func AddBackground(svg []byte, color string) ([]byte, error) {
	if color == "" {
		color = DefaultBackgroundColor
	}
	loc := svgTagRe.FindIndex(svg)
	if loc == nil {
		return nil, errs.New(errs.ErrCodeInvalidFormat, "no <svg> element found")
	}
	rect := fmt.Sprintf("\n"+`<rect width="100%%" height="100%%" fill="%s"/>`, color)

	out := make([]byte, 0, len(svg)+len(rect))
	out = append(out, svg[:loc[1]]...)
	out = append(out, rect...)
	out = append(out, svg[loc[1]:]...)
	return out, nil
}

func stripProlog(svg []byte) []byte {
	return []byte(strings.TrimSpace(string(prologRe.ReplaceAll(svg, nil))))
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
