package scrape

import (
	"sort"
	"strings"
)

// Category is a site result category. The set is closed; icons we don't
// recognize map to CategoryUnknown.
type Category string

const (
	CategoryMovies   Category = "movies"
	CategoryXXX      Category = "xxx"
	CategoryMusic    Category = "music"
	CategoryTVShows  Category = "tvshows"
	CategorySoftware Category = "software"
	CategoryGames    Category = "games"
	CategoryUnknown  Category = "unknown"
)

// categoryCodes maps a category name to the numeric codes the site's
// search form submits for it.
var categoryCodes = map[Category][]string{
	CategoryMovies:   {"48", "17", "44", "45", "47", "50", "51", "52", "42", "46"},
	CategoryXXX:      {"4"},
	CategoryMusic:    {"23", "24", "25", "26"},
	CategoryTVShows:  {"18", "41", "49"},
	CategorySoftware: {"33", "34", "43"},
	CategoryGames:    {"27", "28", "29", "30", "31", "32", "40", "53"},
}

var codeCategory = func() map[string]Category {
	m := make(map[string]Category)
	for cat, codes := range categoryCodes {
		for _, code := range codes {
			m[code] = cat
		}
	}
	return m
}()

// CategoryNames lists the selectable categories, sorted. "" (all) is
// always valid and not listed.
func CategoryNames() []string {
	names := make([]string, 0, len(categoryCodes))
	for cat := range categoryCodes {
		names = append(names, string(cat))
	}
	sort.Strings(names)
	return names
}

// ValidCategory reports whether name is a selectable category or the
// empty "all categories" value.
func ValidCategory(name string) bool {
	if name == "" {
		return true
	}
	_, ok := categoryCodes[Category(name)]
	return ok
}

// QueryCodes returns the semicolon-joined code list for the search URL.
// The empty category searches everything.
func QueryCodes(name string) string {
	return strings.Join(categoryCodes[Category(name)], ";")
}

// DecodeIcon maps a category icon filename (".../cat_new17.gif") to its
// category. Unknown icons map to CategoryUnknown.
func DecodeIcon(src string) Category {
	name := src
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimPrefix(name, "cat_new")
	name = strings.TrimSuffix(name, ".gif")

	if cat, ok := codeCategory[name]; ok {
		return cat
	}
	return CategoryUnknown
}
