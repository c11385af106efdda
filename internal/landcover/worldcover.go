package landcover

// The 11 ESA WorldCover 10m v100 classes with their documented palette.
var worldCoverClasses = []Class{
	{10, "Tree cover", "Trees over 10% of the pixel", hexColor(0x006400)},
	{20, "Shrubland", "Woody plants under 5m", hexColor(0xffbb22)},
	{30, "Grassland", "Herbaceous cover", hexColor(0xffff4c)},
	{40, "Cropland", "Cultivated and managed land", hexColor(0xf096ff)},
	{50, "Built-up", "Buildings and paved surfaces", hexColor(0xfa0000)},
	{60, "Bare / sparse vegetation", "Exposed soil, sand or rock", hexColor(0xb4b4b4)},
	{70, "Snow and ice", "Persistent snow or glacier", hexColor(0xf0f0f0)},
	{80, "Permanent water bodies", "Lakes, rivers, sea", hexColor(0x0064c8)},
	{90, "Herbaceous wetland", "Seasonally or permanently flooded vegetation", hexColor(0x0096a0)},
	{95, "Mangroves", "Coastal woody wetlands", hexColor(0x00cf75)},
	{100, "Moss and lichen", "Moss and lichen cover", hexColor(0xfae6a0)},
}

var worldCoverByCode = func() map[int]Class {
	m := make(map[int]Class, len(worldCoverClasses))
	for _, c := range worldCoverClasses {
		m[c.Code] = c
	}
	return m
}()

// WorldCoverClasses returns the 11-entry table in code order, read-only.
func WorldCoverClasses() []Class {
	return worldCoverClasses
}

// LookupWorldCover resolves a raw WorldCover code, mapping anything unknown
// to Unclassified.
func LookupWorldCover(code int) Class {
	if c, ok := worldCoverByCode[code]; ok {
		return c
	}
	return Unclassified
}
