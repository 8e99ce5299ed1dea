// Package airports holds the static reference list of the fixed origin
// airport and the destinations users may search.
package airports

import (
	_ "embed"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

//go:embed airports.yaml
var defaultData []byte

type Category string

const (
	CategoryBeach         Category = "beach"
	CategoryCity          Category = "city"
	CategoryMountain      Category = "mountain"
	CategoryEntertainment Category = "entertainment"
	CategoryHistoric      Category = "historic"
	CategoryAdventure     Category = "adventure"
)

func (c Category) valid() bool {
	switch c {
	case CategoryBeach, CategoryCity, CategoryMountain, CategoryEntertainment, CategoryHistoric, CategoryAdventure:
		return true
	}
	return false
}

type Airport struct {
	Code       string     `yaml:"code" json:"code"`
	City       string     `yaml:"city" json:"city"`
	State      string     `yaml:"state" json:"state"`
	Name       string     `yaml:"name" json:"name"`
	Categories []Category `yaml:"categories,omitempty" json:"categories,omitempty"`
}

type Origin struct {
	Airport  `yaml:",inline"`
	Timezone string `yaml:"timezone" json:"timezone"`
}

type document struct {
	Origin       Origin    `yaml:"origin"`
	Destinations []Airport `yaml:"destinations"`
}

// Directory is immutable after Load and safe for concurrent reads.
type Directory struct {
	origin       Origin
	location     *time.Location
	destinations []Airport
	byCode       map[string]Airport
}

// UnknownCodeError reports destination codes missing from the directory.
type UnknownCodeError struct {
	Codes []string
}

func (e *UnknownCodeError) Error() string {
	return "unknown destination code(s): " + strings.Join(e.Codes, ", ")
}

// Load parses a YAML directory document.
func Load(data []byte) (*Directory, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse airport directory: %w", err)
	}

	if doc.Origin.Code == "" {
		return nil, fmt.Errorf("airport directory: origin code is required")
	}

	loc := time.Local
	if doc.Origin.Timezone != "" {
		l, err := time.LoadLocation(doc.Origin.Timezone)
		if err != nil {
			return nil, fmt.Errorf("airport directory: origin timezone %q: %w", doc.Origin.Timezone, err)
		}
		loc = l
	}

	d := &Directory{
		origin:       doc.Origin,
		location:     loc,
		destinations: make([]Airport, 0, len(doc.Destinations)),
		byCode:       make(map[string]Airport, len(doc.Destinations)),
	}

	for _, a := range doc.Destinations {
		a.Code = strings.ToUpper(strings.TrimSpace(a.Code))
		if a.Code == "" {
			return nil, fmt.Errorf("airport directory: destination without code")
		}
		if _, dup := d.byCode[a.Code]; dup {
			return nil, fmt.Errorf("airport directory: duplicate destination %s", a.Code)
		}
		for _, c := range a.Categories {
			if !c.valid() {
				return nil, fmt.Errorf("airport directory: %s has unknown category %q", a.Code, c)
			}
		}
		d.destinations = append(d.destinations, a)
		d.byCode[a.Code] = a
	}

	return d, nil
}

// Default returns the directory embedded in the binary.
func Default() (*Directory, error) {
	return Load(defaultData)
}

func (d *Directory) Origin() Origin {
	return d.origin
}

// Location is the origin's timezone; "today" for date generation is computed here.
func (d *Directory) Location() *time.Location {
	return d.location
}

// Destinations returns a copy of all destinations in directory order.
func (d *Directory) Destinations() []Airport {
	out := make([]Airport, len(d.destinations))
	copy(out, d.destinations)
	return out
}

func (d *Directory) Lookup(code string) (Airport, bool) {
	a, ok := d.byCode[strings.ToUpper(strings.TrimSpace(code))]
	return a, ok
}

// CityName falls back to the code itself for unknown airports.
func (d *Directory) CityName(code string) string {
	if a, ok := d.Lookup(code); ok {
		return a.City
	}
	return code
}

// Resolve maps requested codes to airports, keeping request order and
// dropping repeats. Any unknown code fails the whole call.
func (d *Directory) Resolve(codes []string) ([]Airport, error) {
	seen := make(map[string]bool, len(codes))
	out := make([]Airport, 0, len(codes))
	var unknown []string

	for _, raw := range codes {
		code := strings.ToUpper(strings.TrimSpace(raw))
		if seen[code] {
			continue
		}
		seen[code] = true

		a, ok := d.byCode[code]
		if !ok {
			unknown = append(unknown, raw)
			continue
		}
		out = append(out, a)
	}

	if len(unknown) > 0 {
		return nil, &UnknownCodeError{Codes: unknown}
	}
	return out, nil
}
