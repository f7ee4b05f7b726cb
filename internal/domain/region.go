package domain

// RegionType classifies rows in the region reference table.
type RegionType string

const (
	RegionTypeState    RegionType = "STATE"
	RegionTypeDistrict RegionType = "DISTRICT"
	RegionTypeWard     RegionType = "WARD"
)

// Region is a row of the geographic reference table, supplied externally.
// District rows carry their state through ParentID.
type Region struct {
	ID       string
	Name     string
	Code     string
	Type     RegionType
	ParentID *string
	Lat      *float64
	Lng      *float64
}

// GeoScope qualifies a grievance or officer geographically. Two forms exist
// side by side: the canonical state/district pair and the legacy region
// code/id carried over from older records. Empty string means absent.
type GeoScope struct {
	State      string
	District   string
	RegionCode string
	RegionID   string
}

// HasStateDistrict reports whether the canonical form is populated.
func (g GeoScope) HasStateDistrict() bool {
	return g.State != "" && g.District != ""
}

func (g GeoScope) HasRegionCode() bool {
	return g.RegionCode != ""
}

func (g GeoScope) HasRegionID() bool {
	return g.RegionID != ""
}

// IsZero reports whether no geographic qualifier is present at all.
func (g GeoScope) IsZero() bool {
	return g.State == "" && g.District == "" && g.RegionCode == "" && g.RegionID == ""
}

// Matches applies the scope-matching ladder: state+district equality when
// both sides carry the canonical form, else region code equality, else
// region id equality. One side canonical and the other legacy never match;
// resolving that requires normalization against the region table first.
func (g GeoScope) Matches(other GeoScope) bool {
	if g.HasStateDistrict() && other.HasStateDistrict() {
		return g.State == other.State && g.District == other.District
	}
	if g.HasRegionCode() && other.HasRegionCode() {
		return g.RegionCode == other.RegionCode
	}
	if g.HasRegionID() && other.HasRegionID() {
		return g.RegionID == other.RegionID
	}
	return false
}
