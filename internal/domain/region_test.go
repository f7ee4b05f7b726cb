package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGeoScopeMatchesCanonical(t *testing.T) {
	a := GeoScope{State: "Odisha", District: "Cuttack"}

	assert.True(t, a.Matches(GeoScope{State: "Odisha", District: "Cuttack"}))
	assert.False(t, a.Matches(GeoScope{State: "Odisha", District: "Puri"}))
	assert.False(t, a.Matches(GeoScope{State: "Kerala", District: "Cuttack"}))
}

func TestGeoScopeMatchesLegacy(t *testing.T) {
	assert.True(t, GeoScope{RegionCode: "OD-CT"}.Matches(GeoScope{RegionCode: "OD-CT"}))
	assert.False(t, GeoScope{RegionCode: "OD-CT"}.Matches(GeoScope{RegionCode: "OD-PR"}))

	assert.True(t, GeoScope{RegionID: "r-1"}.Matches(GeoScope{RegionID: "r-1"}))
	assert.False(t, GeoScope{RegionID: "r-1"}.Matches(GeoScope{RegionID: "r-2"}))
}

func TestGeoScopeNeverMatchesAcrossForms(t *testing.T) {
	canonical := GeoScope{State: "Odisha", District: "Cuttack"}
	code := GeoScope{RegionCode: "OD-CT"}
	id := GeoScope{RegionID: "r-1"}

	assert.False(t, canonical.Matches(code))
	assert.False(t, code.Matches(canonical))
	assert.False(t, code.Matches(id))
	assert.False(t, id.Matches(code))
}

func TestGeoScopeZeroValues(t *testing.T) {
	var empty GeoScope
	assert.True(t, empty.IsZero())
	assert.False(t, empty.Matches(empty))

	partial := GeoScope{State: "Odisha"}
	assert.False(t, partial.IsZero())
	assert.False(t, partial.HasStateDistrict())
}

func TestStatusActiveAndTerminal(t *testing.T) {
	for _, status := range []GrievanceStatus{StatusNew, StatusAssigned, StatusInProgress, StatusPendingVerification} {
		assert.True(t, status.Active(), string(status))
		assert.False(t, status.Terminal(), string(status))
	}
	assert.False(t, StatusResolved.Active())
	assert.True(t, StatusResolved.Terminal())
}
