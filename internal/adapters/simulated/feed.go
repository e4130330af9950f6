package simulated

import (
	"context"

	"github.com/google/uuid"

	"github.com/samirrijal/tourguide/internal/core/domain"
)

// attractionNamespace keeps attraction ids stable across restarts.
var attractionNamespace = uuid.MustParse("6f1c8e62-4a0e-4c55-9a59-3d0f2b8f7a10")

type feedEntry struct {
	name, city, state string
	lat, lon          float64
}

var feedEntries = []feedEntry{
	{"Disneyland", "Anaheim", "CA", 33.817595, -117.922008},
	{"Jackson Hole", "Jackson Hole", "WY", 43.582767, -110.821999},
	{"Mojave National Preserve", "Kelso", "CA", 35.141689, -115.510399},
	{"Joshua Tree National Park", "Joshua Tree National Park", "CA", 33.881866, -115.90065},
	{"Buffalo National River", "St Joe", "AR", 35.985512, -92.757652},
	{"Hot Springs National Park", "Hot Springs", "AR", 34.52153, -93.042267},
	{"Kartchner Caverns State Park", "Benson", "AZ", 31.837551, -110.347382},
	{"Legend Valley", "Thornville", "OH", 39.937778, -82.40667},
	{"Flowers Bakery of London", "Flowers Bakery of London", "KY", 37.131527, -84.07486},
	{"McKinley Tower", "Anchorage", "AK", 61.218887, -149.877502},
	{"Flatiron Building", "New York City", "NY", 40.741112, -73.989723},
	{"Fallingwater", "Mill Run", "PA", 39.906113, -79.468056},
	{"Union Station", "Washington", "DC", 38.897095, -77.006332},
	{"Roger Dean Stadium", "Jupiter", "FL", 26.890959, -80.116577},
	{"Texas Memorial Stadium", "Austin", "TX", 30.283682, -97.732536},
	{"Bryant-Denny Stadium", "Tuscaloosa", "AL", 33.208973, -87.550438},
	{"Tiger Stadium", "Baton Rouge", "LA", 30.412035, -91.183815},
	{"Neyland Stadium", "Knoxville", "TN", 35.955013, -83.925011},
	{"Kyle Field", "College Station", "TX", 30.61025, -96.339844},
	{"San Diego Zoo", "San Diego", "CA", 32.735317, -117.149048},
	{"Zoo Tampa at Lowry Park", "Tampa", "FL", 28.012804, -82.469269},
	{"Franklin Park Zoo", "Boston", "MA", 42.302601, -71.086731},
	{"El Paso Zoo", "El Paso", "TX", 31.769125, -106.44487},
	{"Kansas City Zoo", "Kansas City", "MO", 39.007504, -94.529625},
	{"Bronx Zoo", "Bronx", "NY", 40.852905, -73.872971},
	{"Cinderella Castle", "Orlando", "FL", 28.419411, -81.5812},
}

// Feed is the built-in attraction list. It implements ports.AttractionCatalog.
type Feed struct{}

func NewFeed() *Feed { return &Feed{} }

// All returns a fresh copy of the feed.
func (Feed) All(ctx context.Context) ([]domain.Attraction, error) {
	out := make([]domain.Attraction, len(feedEntries))
	for i, e := range feedEntries {
		out[i] = domain.Attraction{
			ID:       uuid.NewSHA1(attractionNamespace, []byte(e.name)).String(),
			Name:     e.name,
			City:     e.city,
			State:    e.state,
			Location: domain.GeoPoint{Lat: e.lat, Lon: e.lon},
		}
	}
	return out, nil
}
