package domain

// Coordinate represents a geographic coordinate (WGS 84).
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Viewport is a map camera region: a center point plus the latitude and
// longitude spans, in kilometers, that frame a result set.
type Viewport struct {
	Center    Coordinate `json:"center"`
	LatSpanKm float64    `json:"lat_span_km"`
	LonSpanKm float64    `json:"lon_span_km"`
}

// Bounds represents a geographic bounding box.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}
