package shared

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"

	"hotel_lookup/internal/domain"
)

// placesFile is the on-disk shape of the known place table:
//
//	[places]
//	madrid = -390625
type placesFile struct {
	Places map[string]int64 `toml:"places"`
}

// LoadPlaces reads the known place table. A missing file yields an empty
// table; places can still be discovered with a country scan.
func LoadPlaces(path string) (map[string]domain.PlaceID, error) {
	out := map[string]domain.PlaceID{}
	if path == "" {
		return out, nil
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Warn().Str("path", path).Msg("places file not found, starting with no known places")
		return out, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read places: %w", err)
	}

	var pf placesFile
	if err := toml.Unmarshal(b, &pf); err != nil {
		return nil, fmt.Errorf("parse places %s: %w", path, err)
	}
	for label, id := range pf.Places {
		key := domain.NormalizeLabel(label)
		if key == "" {
			return nil, fmt.Errorf("parse places %s: empty place label", path)
		}
		out[key] = domain.PlaceID(id)
	}
	return out, nil
}
