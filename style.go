package stats

import "image/color"

//NumStyleColors is the number of point colors in a VisualizationStyle.
const NumStyleColors = 4

//VisualizationStyle holds the base colors used when overlaying graphics
//for the properties. Colors are packed as 0xAABBGGRR.
type VisualizationStyle struct {
	PointColors [NumStyleColors]uint32 `yaml:"point_colors"`
	LineColor   uint32                 `yaml:"line_color"`
}

//DefaultStyle returns the default palette.
func DefaultStyle() VisualizationStyle {
	return VisualizationStyle{
		PointColors: [NumStyleColors]uint32{0xffe3cea6, 0xffb4781f, 0xff8adfb2, 0xff2ca033},
		LineColor:   0x55cccccc,
	}
}

//PointColor returns the ith point color, cycling through the palette.
func (S *VisualizationStyle) PointColor(i int) color.NRGBA {
	return unpackColor(S.PointColors[i%NumStyleColors])
}

//Line returns the line color.
func (S *VisualizationStyle) Line() color.NRGBA {
	return unpackColor(S.LineColor)
}

func unpackColor(c uint32) color.NRGBA {
	return color.NRGBA{R: uint8(c), G: uint8(c >> 8), B: uint8(c >> 16), A: uint8(c >> 24)}
}
