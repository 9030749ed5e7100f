package dashboard

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed coordinates.yaml
var builtinCoordinates []byte

type Coordinate struct {
	Lat float64 `yaml:"lat" json:"lat" validate:"latitude"`
	Lon float64 `yaml:"lon" json:"lon" validate:"longitude"`
}

// Coordinates maps a location name to its map position.
type Coordinates map[string]Coordinate

type coordinatesFile struct {
	Locations map[string]Coordinate `yaml:"locations"`
}

// DefaultCoordinates returns the table shipped with the binary.
func DefaultCoordinates() (Coordinates, error) {
	return ParseCoordinates(builtinCoordinates)
}

// LoadCoordinates reads a coordinates file. An empty path means the built-in
// table.
func LoadCoordinates(path string) (Coordinates, error) {
	if path == "" {
		return DefaultCoordinates()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read coordinates file %s: %w", path, err)
	}
	coords, err := ParseCoordinates(data)
	if err != nil {
		return nil, fmt.Errorf("coordinates file %s: %w", path, err)
	}
	return coords, nil
}

func ParseCoordinates(data []byte) (Coordinates, error) {
	var file coordinatesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse coordinates: %w", err)
	}

	validate := validator.New()
	coords := make(Coordinates, len(file.Locations))
	for name, c := range file.Locations {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("coordinates: empty location name")
		}
		if err := validate.Struct(c); err != nil {
			return nil, fmt.Errorf("coordinates for %s out of range: %w", name, err)
		}
		coords[name] = c
	}
	return coords, nil
}

func (c Coordinates) Lookup(location string) (Coordinate, bool) {
	coord, ok := c[location]
	return coord, ok
}

// Missing returns the given locations that have no coordinates, sorted.
func (c Coordinates) Missing(locations []string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, l := range locations {
		if _, ok := c[l]; ok {
			continue
		}
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}
