package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/floodwatch-ke/floodwatch/internal/database"
	"github.com/floodwatch-ke/floodwatch/internal/testhelpers"
	"gorm.io/gorm"
)

func setupReportFixture(t *testing.T) (*http.ServeMux, *gorm.DB) {
	t.Helper()
	db := testhelpers.SetupTestDB(t)
	mux := http.NewServeMux()
	NewReportHandler(db).SetupRoutes(mux)
	return mux, db
}

func TestCreateReportEndpoint(t *testing.T) {
	mux, _ := setupReportFixture(t)

	var report database.CommunityReport
	testhelpers.NewHTTPTestContext(t, "POST", "/api/reports", nil).
		WithJSONBody(map[string]string{
			"reporter_name": "Wekesa",
			"contact":       "+254700000001",
			"location":      "  Budalangi ",
			"description":   "Water over the causeway at the market",
			"severity":      "high",
		}).
		Execute(mux).
		AssertStatus(http.StatusCreated).
		DecodeJSON(&report)

	if report.Location != "Budalangi" {
		t.Errorf("expected trimmed location, got %q", report.Location)
	}
}

func TestCreateReportEndpointValidation(t *testing.T) {
	mux, _ := setupReportFixture(t)

	testhelpers.NewHTTPTestContext(t, "POST", "/api/reports", nil).
		WithJSONBody(map[string]string{"reporter_name": "Wekesa"}).
		Execute(mux).
		AssertStatus(http.StatusBadRequest).
		AssertBodyContains("location")
}

func TestListReportsByLocation(t *testing.T) {
	mux, db := setupReportFixture(t)

	seed := []database.CommunityReport{
		{Location: "Budalangi", Description: "flooded road"},
		{Location: "Nyando", Description: "bridge out"},
	}
	for i := range seed {
		if err := db.Create(&seed[i]).Error; err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}

	var reports []database.CommunityReport
	testhelpers.NewHTTPTestContext(t, "GET", "/api/reports?location=Nyando", nil).
		Execute(mux).
		AssertStatus(http.StatusOK).
		DecodeJSON(&reports)

	if len(reports) != 1 || reports[0].Description != "bridge out" {
		t.Errorf("unexpected reports: %+v", reports)
	}
}

func TestGetAndDeleteReportEndpoint(t *testing.T) {
	mux, db := setupReportFixture(t)

	report := database.CommunityReport{Location: "Budalangi", Description: "flooded road"}
	if err := db.Create(&report).Error; err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	testhelpers.NewHTTPTestContext(t, "GET", fmt.Sprintf("/api/reports/%d", report.ID), nil).
		Execute(mux).
		AssertStatus(http.StatusOK).
		AssertBodyContains("flooded road")

	testhelpers.NewHTTPTestContext(t, "DELETE", fmt.Sprintf("/api/reports/%d", report.ID), nil).
		Execute(mux).
		AssertStatus(http.StatusNoContent)

	testhelpers.NewHTTPTestContext(t, "GET", fmt.Sprintf("/api/reports/%d", report.ID), nil).
		Execute(mux).
		AssertStatus(http.StatusNotFound)
}
