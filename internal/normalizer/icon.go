package normalizer

import (
	"strconv"
	"strings"

	"cwa-dashboard/internal/models"
)

type codeRange struct {
	lo, hi   int
	category models.IconCategory
}

// iconRanges groups CWA weather codes into coarse classes. Codes inside a
// class are not told apart.
var iconRanges = []codeRange{
	{1, 1, models.IconClear},
	{2, 4, models.IconPartlyCloudy},
	{5, 7, models.IconOvercast},
	{8, 11, models.IconLightRain},
	{12, 18, models.IconRain},
	{19, 23, models.IconThunderstorm},
	{24, 28, models.IconFog},
}

// IconFor maps a condition code to its category. Anything that is not a base-10
// integer inside a known range is IconUnknown.
func IconFor(code string) models.IconCategory {
	n, err := strconv.Atoi(strings.TrimSpace(code))
	if err != nil {
		return models.IconUnknown
	}
	for _, r := range iconRanges {
		if n >= r.lo && n <= r.hi {
			return r.category
		}
	}
	return models.IconUnknown
}
