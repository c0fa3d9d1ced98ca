package model

// Station is immutable reference data for one stop on the network.
// Sequence numbers are train-relative, not global: the same station
// appears at different sequence positions on different trains.
type Station struct {
	ID   uint64 // stations.id
	Code string // stations.code (e.g. "NDLS")
	Name string // stations.name
}

// RouteStop is one entry in a train's ordered stop list.  Sequence and
// CumulativeKm must both be strictly increasing along the route; the
// route graph validates this at construction time.
type RouteStop struct {
	StationID    uint64  // route_stops.station_id
	Code         string  // denormalised station code for display
	Sequence     int     // route_stops.sequence (train-relative, strictly increasing)
	CumulativeKm float64 // distance from the origin station in km
	ArriveMin    int     // arrival offset from origin departure, minutes
	DepartMin    int     // departure offset from origin departure, minutes
}
