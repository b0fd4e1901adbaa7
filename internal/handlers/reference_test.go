package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/floodwatch-ke/floodwatch/internal/database"
	"github.com/floodwatch-ke/floodwatch/internal/testhelpers"
	"gorm.io/gorm"
)

func setupReferenceFixture(t *testing.T) (*http.ServeMux, *gorm.DB) {
	t.Helper()
	db := testhelpers.SetupTestDB(t)
	mux := http.NewServeMux()
	NewReferenceHandler(db).SetupRoutes(mux)
	return mux, db
}

func TestDemographicCRUD(t *testing.T) {
	mux, _ := setupReferenceFixture(t)

	var created database.Demographic
	testhelpers.NewHTTPTestContext(t, "POST", "/api/demographics", nil).
		WithJSONBody(map[string]interface{}{
			"location":   "Budalangi",
			"population": 66723,
			"households": 14230,
		}).
		Execute(mux).
		AssertStatus(http.StatusCreated).
		DecodeJSON(&created)
	if created.ID == 0 {
		t.Fatal("expected a persisted ID")
	}

	// Full replace via PUT, ID and CreatedAt preserved.
	var updated database.Demographic
	testhelpers.NewHTTPTestContext(t, "PUT", fmt.Sprintf("/api/demographics/%d", created.ID), nil).
		WithJSONBody(map[string]interface{}{
			"location":   "Budalangi",
			"population": 68000,
		}).
		Execute(mux).
		AssertStatus(http.StatusOK).
		DecodeJSON(&updated)
	if updated.ID != created.ID {
		t.Errorf("expected ID preserved, got %d", updated.ID)
	}
	if updated.Population != 68000 {
		t.Errorf("expected population replaced, got %d", updated.Population)
	}
	if updated.Households != 0 {
		t.Errorf("PUT is a full replace; households should reset, got %d", updated.Households)
	}

	testhelpers.NewHTTPTestContext(t, "DELETE", fmt.Sprintf("/api/demographics/%d", created.ID), nil).
		Execute(mux).
		AssertStatus(http.StatusNoContent)

	testhelpers.NewHTTPTestContext(t, "GET", fmt.Sprintf("/api/demographics/%d", created.ID), nil).
		Execute(mux).
		AssertStatus(http.StatusNotFound)
}

func TestHealthFacilityListByLocation(t *testing.T) {
	mux, db := setupReferenceFixture(t)

	seed := []database.HealthFacility{
		{Name: "Port Victoria Sub-County Hospital", Type: "hospital", Location: "Budalangi", Capacity: 120},
		{Name: "Ahero Health Centre", Type: "health-centre", Location: "Nyando", Capacity: 40},
	}
	for i := range seed {
		if err := db.Create(&seed[i]).Error; err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}

	var facilities []database.HealthFacility
	testhelpers.NewHTTPTestContext(t, "GET", "/api/health-facilities?location=Budalangi", nil).
		Execute(mux).
		AssertStatus(http.StatusOK).
		DecodeJSON(&facilities)

	if len(facilities) != 1 || facilities[0].Name != "Port Victoria Sub-County Hospital" {
		t.Errorf("unexpected facilities: %+v", facilities)
	}
}

func TestInfrastructureGetNotFound(t *testing.T) {
	mux, _ := setupReferenceFixture(t)

	testhelpers.NewHTTPTestContext(t, "GET", "/api/infrastructure/404", nil).
		Execute(mux).
		AssertStatus(http.StatusNotFound)
}

func TestFloodRecordCreateAndList(t *testing.T) {
	mux, _ := setupReferenceFixture(t)

	testhelpers.NewHTTPTestContext(t, "POST", "/api/flood-records", nil).
		WithJSONBody(map[string]interface{}{
			"location":      "Budalangi",
			"occurred_at":   "2024-04-20T00:00:00Z",
			"peak_level":    4.7,
			"duration_days": 12,
		}).
		Execute(mux).
		AssertStatus(http.StatusCreated)

	var records []database.FloodRecord
	testhelpers.NewHTTPTestContext(t, "GET", "/api/flood-records", nil).
		Execute(mux).
		AssertStatus(http.StatusOK).
		DecodeJSON(&records)
	if len(records) != 1 || records[0].PeakLevel != 4.7 {
		t.Errorf("unexpected records: %+v", records)
	}
}
