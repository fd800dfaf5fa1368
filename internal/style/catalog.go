package style

// Option is a selectable catalog entry.
type Option struct {
	ID    string `json:"id" doc:"Wire value" example:"poi.park"`
	Label string `json:"label" doc:"Display label" example:"Parks"`
	Group string `json:"group,omitempty" doc:"Parent group" example:"poi"`
}

// Features known to the tile provider.
var Features = []Option{
	{ID: "all", Label: "All features"},
	{ID: "administrative", Label: "Administrative"},
	{ID: "administrative.country", Label: "Countries", Group: "administrative"},
	{ID: "administrative.land_parcel", Label: "Land parcels", Group: "administrative"},
	{ID: "administrative.locality", Label: "Localities", Group: "administrative"},
	{ID: "administrative.neighborhood", Label: "Neighborhoods", Group: "administrative"},
	{ID: "administrative.province", Label: "Provinces", Group: "administrative"},
	{ID: "landscape", Label: "Landscape"},
	{ID: "landscape.man_made", Label: "Man-made", Group: "landscape"},
	{ID: "landscape.natural", Label: "Natural", Group: "landscape"},
	{ID: "landscape.natural.landcover", Label: "Landcover", Group: "landscape"},
	{ID: "landscape.natural.terrain", Label: "Terrain", Group: "landscape"},
	{ID: "poi", Label: "Points of interest"},
	{ID: "poi.attraction", Label: "Attractions", Group: "poi"},
	{ID: "poi.business", Label: "Businesses", Group: "poi"},
	{ID: "poi.government", Label: "Government", Group: "poi"},
	{ID: "poi.medical", Label: "Medical", Group: "poi"},
	{ID: "poi.park", Label: "Parks", Group: "poi"},
	{ID: "poi.place_of_worship", Label: "Places of worship", Group: "poi"},
	{ID: "poi.school", Label: "Schools", Group: "poi"},
	{ID: "poi.sports_complex", Label: "Sports complexes", Group: "poi"},
	{ID: "road", Label: "Roads"},
	{ID: "road.arterial", Label: "Arterial", Group: "road"},
	{ID: "road.highway", Label: "Highways", Group: "road"},
	{ID: "road.highway.controlled_access", Label: "Controlled access", Group: "road"},
	{ID: "road.local", Label: "Local", Group: "road"},
	{ID: "transit", Label: "Transit"},
	{ID: "transit.line", Label: "Lines", Group: "transit"},
	{ID: "transit.station", Label: "Stations", Group: "transit"},
	{ID: "transit.station.airport", Label: "Airports", Group: "transit"},
	{ID: "transit.station.bus", Label: "Bus stations", Group: "transit"},
	{ID: "transit.station.rail", Label: "Rail stations", Group: "transit"},
	{ID: "water", Label: "Water"},
}

// Elements of a feature.
var Elements = []Option{
	{ID: "all", Label: "All elements"},
	{ID: "geometry", Label: "Geometry"},
	{ID: "geometry.fill", Label: "Fill", Group: "geometry"},
	{ID: "geometry.stroke", Label: "Stroke", Group: "geometry"},
	{ID: "labels", Label: "Labels"},
	{ID: "labels.icon", Label: "Icons", Group: "labels"},
	{ID: "labels.text", Label: "Text", Group: "labels"},
	{ID: "labels.text.fill", Label: "Text fill", Group: "labels"},
	{ID: "labels.text.stroke", Label: "Text stroke", Group: "labels"},
}

// Layers are the tile provider's base layers (the lyrs parameter).
var Layers = []Option{
	{ID: "m", Label: "Roadmap"},
	{ID: "r", Label: "Altered roadmap"},
	{ID: "s", Label: "Satellite"},
	{ID: "y", Label: "Hybrid"},
	{ID: "p", Label: "Terrain"},
	{ID: "t", Label: "Terrain only"},
	{ID: "h", Label: "Roads only"},
}

// Visibilities are the accepted p.v values.
var Visibilities = []string{"on", "off", "simplified"}

// DefaultLayer is the roadmap layer.
const DefaultLayer = "m"

// IDs returns the ids of opts.
func IDs(opts []Option) []string {
	ids := make([]string, len(opts))
	for i, o := range opts {
		ids[i] = o.ID
	}
	return ids
}

// IsLayer reports whether id is a known base layer.
func IsLayer(id string) bool {
	for _, l := range Layers {
		if l.ID == id {
			return true
		}
	}
	return false
}
