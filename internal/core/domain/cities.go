package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// City is an entry of the fixed gazetteer.
type City struct {
	Name     string   `json:"name"`
	Location GeoPoint `json:"location"`
}

// Cities lists the governorate seats offered in the city picker.
var Cities = []City{
	{"Tunis", GeoPoint{36.8065, 10.1815}},
	{"Sfax", GeoPoint{34.7406, 10.7603}},
	{"Sousse", GeoPoint{35.8245, 10.6346}},
	{"Kairouan", GeoPoint{35.6781, 10.0969}},
	{"Bizerte", GeoPoint{37.2746, 9.8627}},
	{"Gabès", GeoPoint{33.8881, 10.0986}},
	{"Ariana", GeoPoint{36.8625, 10.1956}},
	{"Gafsa", GeoPoint{34.4311, 8.7757}},
	{"Monastir", GeoPoint{35.7643, 10.8113}},
	{"Ben Arous", GeoPoint{36.7533, 10.2281}},
	{"Kasserine", GeoPoint{35.1722, 8.8304}},
	{"Médenine", GeoPoint{33.3399, 10.4917}},
	{"Nabeul", GeoPoint{36.4513, 10.7357}},
	{"Tataouine", GeoPoint{32.9211, 10.4509}},
	{"Béja", GeoPoint{36.7256, 9.1817}},
	{"Jendouba", GeoPoint{36.5011, 8.7803}},
	{"El Kef", GeoPoint{36.1675, 8.7047}},
	{"Mahdia", GeoPoint{35.5047, 11.0622}},
	{"Sidi Bouzid", GeoPoint{35.0382, 9.4858}},
	{"Tozeur", GeoPoint{33.9197, 8.1335}},
	{"Siliana", GeoPoint{36.0844, 9.3744}},
	{"Zaghouan", GeoPoint{36.4103, 10.1433}},
	{"Kébili", GeoPoint{33.7072, 8.9689}},
}

// FindCity looks a city up by name. Matching ignores case and, failing an
// exact match, accents ("gabes" finds "Gabès").
func FindCity(name string) (City, bool) {
	name = strings.TrimSpace(name)
	for _, c := range Cities {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	folded := foldAccents(name)
	for _, c := range Cities {
		if strings.EqualFold(foldAccents(c.Name), folded) {
			return c, true
		}
	}
	return City{}, false
}

// Point converts the city into a (non-custom) location point.
func (c City) Point() LocationPoint {
	return LocationPoint{Name: c.Name, Coords: c.Location}
}

func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
