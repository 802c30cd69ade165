package heatmap

import (
	"image/color"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// ScaleInfo names a color scale for display.
type ScaleInfo struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

// Scale maps a normalized position in [0, 1] onto a color.
type Scale struct {
	ScaleInfo
	lut [256]color.NRGBA
}

// DefaultScale is used for unrecognized scale names.
const DefaultScale = "gray"

// Anchor colors sampled evenly along each perceptual colormap. The lookup
// tables interpolate between neighbours in RGB.
var scaleDefs = []struct {
	info    ScaleInfo
	anchors []string
}{
	{ScaleInfo{"gray", "Gray"}, []string{"#000000", "#ffffff"}},
	{ScaleInfo{"viridis", "Viridis"}, []string{
		"#440154", "#472d7b", "#3b528b", "#2c728e", "#21918c",
		"#28ae80", "#5ec962", "#addc30", "#fde725",
	}},
	{ScaleInfo{"plasma", "Plasma"}, []string{
		"#0d0887", "#46039f", "#7201a8", "#9c179e", "#bd3786",
		"#d8576b", "#ed7953", "#fb9f3a", "#fdca26", "#f0f921",
	}},
	{ScaleInfo{"magma", "Magma"}, []string{
		"#000004", "#180f3d", "#440f76", "#721f81", "#9e2f7f",
		"#cd4071", "#f1605d", "#fd9668", "#feca8d", "#fcfdbf",
	}},
	{ScaleInfo{"inferno", "Inferno"}, []string{
		"#000004", "#1b0c41", "#4a0c6b", "#781c6d", "#a52c60",
		"#cf4446", "#ed6925", "#fb9b06", "#f7d13d", "#fcffa4",
	}},
}

var (
	scales     []*Scale
	scalesByID = map[string]*Scale{}
)

func init() {
	for _, def := range scaleDefs {
		s := &Scale{ScaleInfo: def.info}
		s.lut = buildLUT(def.anchors)
		scales = append(scales, s)
		scalesByID[def.info.Name] = s
	}
}

// buildLUT interpolates 256 colors between evenly spaced anchors in RGB.
func buildLUT(hexes []string) [256]color.NRGBA {
	anchors := make([]colorful.Color, len(hexes))
	for i, h := range hexes {
		c, err := colorful.Hex(h)
		if err != nil {
			panic("heatmap: bad anchor color " + h)
		}
		anchors[i] = c
	}

	var lut [256]color.NRGBA
	segments := float64(len(anchors) - 1)
	for i := range lut {
		pos := float64(i) / 255 * segments
		seg := min(int(pos), len(anchors)-2)
		c := anchors[seg].BlendRgb(anchors[seg+1], pos-float64(seg)).Clamped()
		r, g, b := c.RGB255()
		lut[i] = color.NRGBA{R: r, G: g, B: b, A: 0xff}
	}
	return lut
}

// Scales lists every color scale in display order.
func Scales() []ScaleInfo {
	out := make([]ScaleInfo, len(scales))
	for i, s := range scales {
		out[i] = s.ScaleInfo
	}
	return out
}

// LookupScale returns the named scale. Names are matched case-insensitively;
// an unknown name returns the gray scale and false.
func LookupScale(name string) (*Scale, bool) {
	if s, ok := scalesByID[strings.ToLower(strings.TrimSpace(name))]; ok {
		return s, true
	}
	return scalesByID[DefaultScale], false
}

// At returns the color at position t, clamped into [0, 1].
func (s *Scale) At(t float64) color.NRGBA {
	if math.IsNaN(t) || t <= 0 {
		return s.lut[0]
	}
	if t >= 1 {
		return s.lut[255]
	}
	return s.lut[int(math.Round(t*255))]
}
