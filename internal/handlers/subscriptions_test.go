package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/floodwatch-ke/floodwatch/internal/database"
	"github.com/floodwatch-ke/floodwatch/internal/services"
	"github.com/floodwatch-ke/floodwatch/internal/testhelpers"
)

func setupSubscriptionFixture(t *testing.T) (*http.ServeMux, *services.SubscriptionService) {
	t.Helper()
	db := testhelpers.SetupTestDB(t)
	subs := services.NewSubscriptionService(db)

	mux := http.NewServeMux()
	NewSubscriptionHandler(subs).SetupRoutes(mux)
	return mux, subs
}

func TestCreateSubscriptionEndpoint(t *testing.T) {
	mux, _ := setupSubscriptionFixture(t)

	var sub database.Subscription
	testhelpers.NewHTTPTestContext(t, "POST", "/api/subscriptions", nil).
		WithJSONBody(map[string]interface{}{
			"method":    "email",
			"contact":   "resident@example.com",
			"locations": []string{"Budalangi", "Nyando"},
		}).
		Execute(mux).
		AssertStatus(http.StatusCreated).
		DecodeJSON(&sub)

	if sub.ID == 0 || len(sub.Locations) != 2 {
		t.Errorf("unexpected subscription: %+v", sub)
	}
}

func TestCreateSubscriptionEndpointValidation(t *testing.T) {
	mux, _ := setupSubscriptionFixture(t)

	testhelpers.NewHTTPTestContext(t, "POST", "/api/subscriptions", nil).
		WithJSONBody(map[string]interface{}{
			"method":    "fax",
			"contact":   "x",
			"locations": []string{"Budalangi"},
		}).
		Execute(mux).
		AssertStatus(http.StatusBadRequest).
		AssertBodyContains("method")
}

func TestListSubscriptionsGroupedByLocation(t *testing.T) {
	mux, subs := setupSubscriptionFixture(t)

	if _, err := subs.Create(services.SubscriptionInput{
		Method:    database.MethodEmail,
		Contact:   "a@example.com",
		Locations: database.StringList{"Budalangi", "Nyando"},
	}); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	var grouped map[string][]services.SubscriptionSummary
	testhelpers.NewHTTPTestContext(t, "GET", "/api/subscriptions", nil).
		Execute(mux).
		AssertStatus(http.StatusOK).
		DecodeJSON(&grouped)

	if len(grouped) != 2 {
		t.Fatalf("expected 2 location keys, got %v", grouped)
	}
	if len(grouped["Budalangi"]) != 1 || grouped["Budalangi"][0].Contact != "a@example.com" {
		t.Errorf("unexpected grouping: %v", grouped)
	}
}

func TestListSubscriptionsFilteredByLocation(t *testing.T) {
	mux, subs := setupSubscriptionFixture(t)

	seed := []services.SubscriptionInput{
		{Method: database.MethodEmail, Contact: "a@example.com", Locations: database.StringList{"Budalangi"}},
		{Method: database.MethodSMS, Contact: "+254700000001", Locations: database.StringList{"Nyando"}},
	}
	for _, in := range seed {
		if _, err := subs.Create(in); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}

	var matched []database.Subscription
	testhelpers.NewHTTPTestContext(t, "GET", "/api/subscriptions?location=Budalangi", nil).
		Execute(mux).
		AssertStatus(http.StatusOK).
		DecodeJSON(&matched)

	if len(matched) != 1 || matched[0].Contact != "a@example.com" {
		t.Errorf("unexpected matches: %+v", matched)
	}
}

func TestUpdateSubscriptionEndpoint(t *testing.T) {
	mux, subs := setupSubscriptionFixture(t)

	sub, err := subs.Create(services.SubscriptionInput{
		Method:    database.MethodEmail,
		Contact:   "a@example.com",
		Locations: database.StringList{"Budalangi"},
	})
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	var updated database.Subscription
	testhelpers.NewHTTPTestContext(t, "PUT", fmt.Sprintf("/api/subscriptions/%d", sub.ID), nil).
		WithJSONBody(map[string]interface{}{"locations": []string{"Tana Delta"}}).
		Execute(mux).
		AssertStatus(http.StatusOK).
		DecodeJSON(&updated)

	if len(updated.Locations) != 1 || updated.Locations[0] != "Tana Delta" {
		t.Errorf("expected locations replaced, got %v", updated.Locations)
	}
}

func TestDeleteSubscriptionEndpoint(t *testing.T) {
	mux, subs := setupSubscriptionFixture(t)

	sub, err := subs.Create(services.SubscriptionInput{
		Method:    database.MethodSMS,
		Contact:   "+254700000001",
		Locations: database.StringList{"Budalangi"},
	})
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	testhelpers.NewHTTPTestContext(t, "DELETE", fmt.Sprintf("/api/subscriptions/%d", sub.ID), nil).
		Execute(mux).
		AssertStatus(http.StatusOK)

	testhelpers.NewHTTPTestContext(t, "DELETE", fmt.Sprintf("/api/subscriptions/%d", sub.ID), nil).
		Execute(mux).
		AssertStatus(http.StatusNotFound)
}

func TestSubscriptionAggregateEndpoints(t *testing.T) {
	mux, subs := setupSubscriptionFixture(t)

	seed := []services.SubscriptionInput{
		{Method: database.MethodEmail, Contact: "a@example.com", Locations: database.StringList{"Budalangi", "Nyando"}},
		{Method: database.MethodSMS, Contact: "+254700000001", Locations: database.StringList{"Budalangi"}},
	}
	for _, in := range seed {
		if _, err := subs.Create(in); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}

	var methodCounts map[string]int64
	testhelpers.NewHTTPTestContext(t, "GET", "/api/subscriptions/method-counts", nil).
		Execute(mux).
		AssertStatus(http.StatusOK).
		DecodeJSON(&methodCounts)
	if methodCounts["email"] != 1 || methodCounts["sms"] != 1 {
		t.Errorf("unexpected method counts: %v", methodCounts)
	}

	var locationCounts []services.LocationCount
	testhelpers.NewHTTPTestContext(t, "GET", "/api/subscriptions/location-counts", nil).
		Execute(mux).
		AssertStatus(http.StatusOK).
		DecodeJSON(&locationCounts)
	if len(locationCounts) != 2 {
		t.Errorf("expected 2 labels, got %v", locationCounts)
	}
}

func TestSubscriptionsByMonthEndpointValidation(t *testing.T) {
	mux, _ := setupSubscriptionFixture(t)

	testhelpers.NewHTTPTestContext(t, "GET", "/api/subscriptions/by-month", nil).
		Execute(mux).
		AssertStatus(http.StatusBadRequest).
		AssertBodyContains("year")

	testhelpers.NewHTTPTestContext(t, "GET", "/api/subscriptions/by-month?year=2026&month=13", nil).
		Execute(mux).
		AssertStatus(http.StatusBadRequest).
		AssertBodyContains("month")
}
