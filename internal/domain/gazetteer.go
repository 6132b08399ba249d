package domain

import (
	"regexp"
	"strings"
)

// Place classification inside the gazetteer.
const (
	kindCountry = iota
	kindCity
	kindRegion
)

// place is one gazetteer row: a canonical name, optional aliases, a center
// coordinate, a classification, and an ISO country code where applicable.
type place struct {
	name    string
	aliases []string
	lat     float64
	lng     float64
	kind    int
	country string
}

// places is the embedded gazetteer table. Center coordinates are the
// conventional country/region centroids; cities use their city-proper
// coordinates. Aliases cover demonyms and common metonyms ("Kremlin" for
// Russia). City names are never aliased under their country so the
// longest-match rule, not table order, decides between them.
var places = []place{
	// Countries.
	{name: "Russia", aliases: []string{"russian", "kremlin"}, lat: 61.524, lng: 105.3188, kind: kindCountry, country: "RU"},
	{name: "United States", aliases: []string{"america", "american", "u.s.", "usa"}, lat: 37.0902, lng: -95.7129, kind: kindCountry, country: "US"},
	{name: "China", aliases: []string{"chinese"}, lat: 35.8617, lng: 104.1954, kind: kindCountry, country: "CN"},
	{name: "Ukraine", aliases: []string{"ukrainian"}, lat: 48.3794, lng: 31.1656, kind: kindCountry, country: "UA"},
	{name: "United Kingdom", aliases: []string{"britain", "british", "england", "uk"}, lat: 55.3781, lng: -3.436, kind: kindCountry, country: "GB"},
	{name: "France", aliases: []string{"french"}, lat: 46.2276, lng: 2.2137, kind: kindCountry, country: "FR"},
	{name: "Germany", aliases: []string{"german"}, lat: 51.1657, lng: 10.4515, kind: kindCountry, country: "DE"},
	{name: "Israel", aliases: []string{"israeli"}, lat: 31.0461, lng: 34.8516, kind: kindCountry, country: "IL"},
	{name: "Iran", aliases: []string{"iranian"}, lat: 32.4279, lng: 53.688, kind: kindCountry, country: "IR"},
	{name: "Iraq", aliases: []string{"iraqi"}, lat: 33.2232, lng: 43.6793, kind: kindCountry, country: "IQ"},
	{name: "Syria", aliases: []string{"syrian"}, lat: 34.8021, lng: 38.9968, kind: kindCountry, country: "SY"},
	{name: "India", aliases: []string{"indian"}, lat: 20.5937, lng: 78.9629, kind: kindCountry, country: "IN"},
	{name: "Pakistan", aliases: []string{"pakistani"}, lat: 30.3753, lng: 69.3451, kind: kindCountry, country: "PK"},
	{name: "Japan", aliases: []string{"japanese"}, lat: 36.2048, lng: 138.2529, kind: kindCountry, country: "JP"},
	{name: "South Korea", lat: 35.9078, lng: 127.7669, kind: kindCountry, country: "KR"},
	{name: "North Korea", lat: 40.3399, lng: 127.5101, kind: kindCountry, country: "KP"},
	{name: "Taiwan", aliases: []string{"taiwanese"}, lat: 23.6978, lng: 120.9605, kind: kindCountry, country: "TW"},
	{name: "Brazil", aliases: []string{"brazilian"}, lat: -14.235, lng: -51.9253, kind: kindCountry, country: "BR"},
	{name: "Mexico", aliases: []string{"mexican"}, lat: 23.6345, lng: -102.5528, kind: kindCountry, country: "MX"},
	{name: "Canada", aliases: []string{"canadian"}, lat: 56.1304, lng: -106.3468, kind: kindCountry, country: "CA"},
	{name: "Australia", aliases: []string{"australian"}, lat: -25.2744, lng: 133.7751, kind: kindCountry, country: "AU"},
	{name: "Turkey", aliases: []string{"turkish"}, lat: 38.9637, lng: 35.2433, kind: kindCountry, country: "TR"},
	{name: "Egypt", aliases: []string{"egyptian"}, lat: 26.8206, lng: 30.8025, kind: kindCountry, country: "EG"},
	{name: "Saudi Arabia", aliases: []string{"saudi"}, lat: 23.8859, lng: 45.0792, kind: kindCountry, country: "SA"},
	{name: "Nigeria", aliases: []string{"nigerian"}, lat: 9.082, lng: 8.6753, kind: kindCountry, country: "NG"},
	{name: "South Africa", lat: -30.5595, lng: 22.9375, kind: kindCountry, country: "ZA"},
	{name: "Ethiopia", aliases: []string{"ethiopian"}, lat: 9.145, lng: 40.4897, kind: kindCountry, country: "ET"},
	{name: "Sudan", aliases: []string{"sudanese"}, lat: 12.8628, lng: 30.2176, kind: kindCountry, country: "SD"},
	{name: "Afghanistan", aliases: []string{"afghan"}, lat: 33.9391, lng: 67.71, kind: kindCountry, country: "AF"},
	{name: "Poland", aliases: []string{"polish"}, lat: 51.9194, lng: 19.1451, kind: kindCountry, country: "PL"},
	{name: "Italy", aliases: []string{"italian"}, lat: 41.8719, lng: 12.5674, kind: kindCountry, country: "IT"},
	{name: "Spain", aliases: []string{"spanish"}, lat: 40.4637, lng: -3.7492, kind: kindCountry, country: "ES"},
	{name: "Greece", aliases: []string{"greek"}, lat: 39.0742, lng: 21.8243, kind: kindCountry, country: "GR"},
	{name: "Indonesia", aliases: []string{"indonesian"}, lat: -0.7893, lng: 113.9213, kind: kindCountry, country: "ID"},
	{name: "Philippines", aliases: []string{"filipino"}, lat: 12.8797, lng: 121.774, kind: kindCountry, country: "PH"},
	{name: "Venezuela", aliases: []string{"venezuelan"}, lat: 6.4238, lng: -66.5897, kind: kindCountry, country: "VE"},
	{name: "Argentina", aliases: []string{"argentine"}, lat: -38.4161, lng: -63.6167, kind: kindCountry, country: "AR"},
	{name: "Moldova", aliases: []string{"moldovan"}, lat: 47.4116, lng: 28.3699, kind: kindCountry, country: "MD"},
	{name: "Belarus", aliases: []string{"belarusian"}, lat: 53.7098, lng: 27.9534, kind: kindCountry, country: "BY"},
	{name: "Yemen", aliases: []string{"yemeni"}, lat: 15.5527, lng: 48.5164, kind: kindCountry, country: "YE"},
	{name: "Lebanon", aliases: []string{"lebanese"}, lat: 33.8547, lng: 35.8623, kind: kindCountry, country: "LB"},
	{name: "Haiti", aliases: []string{"haitian"}, lat: 18.9712, lng: -72.2852, kind: kindCountry, country: "HT"},
	{name: "Chile", aliases: []string{"chilean"}, lat: -35.6751, lng: -71.543, kind: kindCountry, country: "CL"},

	// Major cities.
	{name: "Moscow", lat: 55.7558, lng: 37.6173, kind: kindCity, country: "RU"},
	{name: "Washington", lat: 38.9072, lng: -77.0369, kind: kindCity, country: "US"},
	{name: "New York", lat: 40.7128, lng: -74.006, kind: kindCity, country: "US"},
	{name: "Los Angeles", lat: 34.0522, lng: -118.2437, kind: kindCity, country: "US"},
	{name: "Chicago", lat: 41.8781, lng: -87.6298, kind: kindCity, country: "US"},
	{name: "London", lat: 51.5074, lng: -0.1278, kind: kindCity, country: "GB"},
	{name: "Paris", lat: 48.8566, lng: 2.3522, kind: kindCity, country: "FR"},
	{name: "Berlin", lat: 52.52, lng: 13.405, kind: kindCity, country: "DE"},
	{name: "Kyiv", aliases: []string{"kiev"}, lat: 50.4501, lng: 30.5234, kind: kindCity, country: "UA"},
	{name: "Beijing", lat: 39.9042, lng: 116.4074, kind: kindCity, country: "CN"},
	{name: "Shanghai", lat: 31.2304, lng: 121.4737, kind: kindCity, country: "CN"},
	{name: "Tokyo", lat: 35.6762, lng: 139.6503, kind: kindCity, country: "JP"},
	{name: "Seoul", lat: 37.5665, lng: 126.978, kind: kindCity, country: "KR"},
	{name: "Tehran", lat: 35.6892, lng: 51.389, kind: kindCity, country: "IR"},
	{name: "Jerusalem", lat: 31.7683, lng: 35.2137, kind: kindCity, country: "IL"},
	{name: "Gaza", lat: 31.5017, lng: 34.4668, kind: kindCity, country: "PS"},
	{name: "Baghdad", lat: 33.3152, lng: 44.3661, kind: kindCity, country: "IQ"},
	{name: "Damascus", lat: 33.5138, lng: 36.2765, kind: kindCity, country: "SY"},
	{name: "Istanbul", lat: 41.0082, lng: 28.9784, kind: kindCity, country: "TR"},
	{name: "Cairo", lat: 30.0444, lng: 31.2357, kind: kindCity, country: "EG"},
	{name: "Mumbai", lat: 19.076, lng: 72.8777, kind: kindCity, country: "IN"},
	{name: "Delhi", lat: 28.7041, lng: 77.1025, kind: kindCity, country: "IN"},
	{name: "Hong Kong", lat: 22.3193, lng: 114.1694, kind: kindCity, country: "HK"},
	{name: "Singapore", lat: 1.3521, lng: 103.8198, kind: kindCity, country: "SG"},
	{name: "Sydney", lat: -33.8688, lng: 151.2093, kind: kindCity, country: "AU"},
	{name: "Brussels", lat: 50.8503, lng: 4.3517, kind: kindCity, country: "BE"},
	{name: "Geneva", lat: 46.2044, lng: 6.1432, kind: kindCity, country: "CH"},
	{name: "Vienna", lat: 48.2082, lng: 16.3738, kind: kindCity, country: "AT"},
	{name: "Rome", lat: 41.9028, lng: 12.4964, kind: kindCity, country: "IT"},
	{name: "Madrid", lat: 40.4168, lng: -3.7038, kind: kindCity, country: "ES"},
	{name: "Kabul", lat: 34.5553, lng: 69.2075, kind: kindCity, country: "AF"},
	{name: "Khartoum", lat: 15.5007, lng: 32.5599, kind: kindCity, country: "SD"},
	{name: "Minsk", lat: 53.9006, lng: 27.559, kind: kindCity, country: "BY"},
	{name: "Beirut", lat: 33.8938, lng: 35.5018, kind: kindCity, country: "LB"},

	// Named regions.
	{name: "Middle East", lat: 29.3, lng: 47.5, kind: kindRegion},
	{name: "Eastern Europe", lat: 50.0, lng: 30.0, kind: kindRegion},
	{name: "Western Europe", lat: 48.0, lng: 7.0, kind: kindRegion},
	{name: "Balkans", aliases: []string{"balkan"}, lat: 42.5, lng: 21.0, kind: kindRegion},
	{name: "Central Asia", lat: 45.0, lng: 68.0, kind: kindRegion},
	{name: "Southeast Asia", lat: 10.0, lng: 106.0, kind: kindRegion},
	{name: "South China Sea", lat: 13.0, lng: 113.5, kind: kindRegion},
	{name: "Korean Peninsula", aliases: []string{"korea"}, lat: 38.3, lng: 127.5, kind: kindRegion},
	{name: "East Africa", lat: 1.0, lng: 38.0, kind: kindRegion},
	{name: "West Africa", lat: 12.0, lng: 0.0, kind: kindRegion},
	{name: "North Africa", lat: 28.0, lng: 10.0, kind: kindRegion},
	{name: "Horn of Africa", lat: 8.0, lng: 46.0, kind: kindRegion},
	{name: "Sahel", lat: 14.5, lng: 0.0, kind: kindRegion},
	{name: "Latin America", lat: -10.0, lng: -60.0, kind: kindRegion},
	{name: "Caribbean", lat: 17.0, lng: -73.0, kind: kindRegion},
	{name: "Persian Gulf", lat: 26.5, lng: 51.5, kind: kindRegion},
}

// gazetteerIndex maps every lowercased key (canonical name or alias) to its
// place. gazetteerPatterns holds the compiled whole-word matcher per key.
// Both are built once at init and never mutated afterwards.
var (
	gazetteerIndex    map[string]*place
	gazetteerPatterns map[string]*regexp.Regexp
)

func init() {
	gazetteerIndex = make(map[string]*place, len(places)*2)
	gazetteerPatterns = make(map[string]*regexp.Regexp, len(places)*2)
	for i := range places {
		p := &places[i]
		for _, key := range append([]string{p.name}, p.aliases...) {
			k := strings.ToLower(key)
			gazetteerIndex[k] = p
			// Explicit boundary classes instead of \b: keys like "u.s."
			// end in punctuation, where \b would demand a word character.
			gazetteerPatterns[k] = regexp.MustCompile(`(?:^|[^a-z0-9])` + regexp.QuoteMeta(k) + `(?:[^a-z0-9]|$)`)
		}
	}
}

// ExtractLocation scans free text for gazetteer keys and returns the location
// of the longest whole-word match, or nil when nothing matches. Ties between
// equal-length keys fall to map iteration order (unspecified). Pure and
// deterministic given the static table; callers fall back to GlobalLocation.
func ExtractLocation(text string) *Location {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	lower := strings.ToLower(text)

	var bestKey string
	var bestPlace *place
	for key, p := range gazetteerIndex {
		if len(key) <= len(bestKey) {
			continue
		}
		if gazetteerPatterns[key].MatchString(lower) {
			bestKey = key
			bestPlace = p
		}
	}
	if bestPlace == nil {
		return nil
	}

	loc := placeLocation(bestPlace)
	loc.Confidence = ConfidenceMedium
	if len(bestKey) > 5 {
		loc.Confidence = ConfidenceHigh
	}
	return &loc
}

// LookupCountry resolves a country name or alias to its gazetteer location.
// Used by the sentiment-news adapter for the structured reporting-country
// field before falling back to text extraction.
func LookupCountry(name string) (Location, bool) {
	p, ok := gazetteerIndex[strings.ToLower(strings.TrimSpace(name))]
	if !ok || p.kind != kindCountry {
		return Location{}, false
	}
	loc := placeLocation(p)
	loc.Confidence = ConfidenceHigh
	return loc, true
}

func placeLocation(p *place) Location {
	locType := LocationLocal
	if p.kind == kindRegion {
		locType = LocationRegional
	}
	return Location{
		Name:        p.name,
		Lat:         Float64Ptr(p.lat),
		Lng:         Float64Ptr(p.lng),
		Type:        locType,
		CountryCode: p.country,
	}
}
