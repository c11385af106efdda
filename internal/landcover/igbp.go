// Package landcover holds the static categorical land-cover reference tables.
// The tables are loaded once at init and never mutated, so concurrent reads
// need no synchronization.
package landcover

import (
	"fmt"
	"image/color"
)

// Band names the raster source must supply for the categorical products,
// matching the source datasets (MODIS MCD12Q1 and ESA WorldCover).
const (
	BandIGBP       = "LC_Type1"
	BandWorldCover = "Map"
)

// Class is one categorical land-cover class.
type Class struct {
	Code        int
	Name        string
	Description string
	Color       color.RGBA
}

// Unclassified is the bucket for codes outside the known table: provider fill
// values, masked codes, anything unexpected. Such pixels stay in the totals
// so percentages remain honest, but are reported as their own category.
var Unclassified = Class{Code: 0, Name: "Unclassified", Description: "Code outside the reference table", Color: color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}}

// The 17 IGBP classes of the MODIS MCD12Q1 LC_Type1 band, with the standard
// visualization palette.
var igbpClasses = []Class{
	{1, "Evergreen Needleleaf Forest", "Dominated by evergreen conifer trees", hexColor(0x05450a)},
	{2, "Evergreen Broadleaf Forest", "Dominated by evergreen broadleaf trees", hexColor(0x086a10)},
	{3, "Deciduous Needleleaf Forest", "Dominated by deciduous conifer trees", hexColor(0x54a708)},
	{4, "Deciduous Broadleaf Forest", "Dominated by deciduous broadleaf trees", hexColor(0x78d203)},
	{5, "Mixed Forest", "No forest type exceeds 60% of landscape", hexColor(0x009900)},
	{6, "Closed Shrublands", "Shrub canopy cover over 60%", hexColor(0xc6b044)},
	{7, "Open Shrublands", "Shrub canopy cover 10-60%", hexColor(0xdcd159)},
	{8, "Woody Savannas", "Tree cover 30-60%, canopy over 2m", hexColor(0xdade48)},
	{9, "Savannas", "Tree cover 10-30%, canopy over 2m", hexColor(0xfbff13)},
	{10, "Grasslands", "Dominated by herbaceous annuals", hexColor(0xb6ff05)},
	{11, "Permanent Wetlands", "Permanently inundated mixed water and vegetation", hexColor(0x27ff87)},
	{12, "Croplands", "At least 60% cultivated cropland", hexColor(0xc24f44)},
	{13, "Urban and Built-up Lands", "At least 30% impervious surface", hexColor(0xa5a5a5)},
	{14, "Cropland/Natural Vegetation Mosaics", "Small-scale cultivation mosaics", hexColor(0xff6d4c)},
	{15, "Snow and Ice", "Snow or ice cover most of the year", hexColor(0x69fff8)},
	{16, "Barren", "At most 10% vegetated cover", hexColor(0xf9ffa4)},
	{17, "Water Bodies", "At least 60% permanent water", hexColor(0x1c0dff)},
}

var igbpByCode = func() map[int]Class {
	m := make(map[int]Class, len(igbpClasses))
	for _, c := range igbpClasses {
		m[c.Code] = c
	}
	return m
}()

// IGBPClasses returns the 17-entry table in code order, read-only.
func IGBPClasses() []Class {
	return igbpClasses
}

// LookupIGBP resolves a raw class code. Unknown codes, including provider
// fill values, map to Unclassified rather than erroring; they are never
// silently merged into class 1.
func LookupIGBP(code int) Class {
	if c, ok := igbpByCode[code]; ok {
		return c
	}
	return Unclassified
}

func hexColor(rgb uint32) color.RGBA {
	return color.RGBA{
		R: uint8(rgb >> 16),
		G: uint8(rgb >> 8),
		B: uint8(rgb),
		A: 0xff,
	}
}

func (c Class) String() string {
	return fmt.Sprintf("%d:%s", c.Code, c.Name)
}
