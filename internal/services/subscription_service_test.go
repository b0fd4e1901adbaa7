package services

import (
	"errors"
	"testing"
	"time"

	"github.com/floodwatch-ke/floodwatch/internal/core"
	"github.com/floodwatch-ke/floodwatch/internal/database"
	"github.com/floodwatch-ke/floodwatch/internal/testhelpers"
)

func TestCreateSubscription(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := NewSubscriptionService(db)

	sub, err := svc.Create(SubscriptionInput{
		Method:    database.MethodEmail,
		Contact:   "resident@example.com",
		Locations: database.StringList{"Budalangi", "Nyando"},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if sub.ID == 0 {
		t.Error("expected a persisted ID")
	}
	if len(sub.Locations) != 2 {
		t.Errorf("expected 2 locations, got %v", sub.Locations)
	}
}

func TestCreateSubscriptionValidation(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := NewSubscriptionService(db)

	tests := []struct {
		name  string
		input SubscriptionInput
	}{
		{"unknown method", SubscriptionInput{Method: "carrier-pigeon", Contact: "x", Locations: database.StringList{"Budalangi"}}},
		{"missing contact", SubscriptionInput{Method: database.MethodSMS, Contact: "  ", Locations: database.StringList{"Budalangi"}}},
		{"empty locations", SubscriptionInput{Method: database.MethodSMS, Contact: "+254700000001", Locations: database.StringList{}}},
		{"whitespace locations", SubscriptionInput{Method: database.MethodSMS, Contact: "+254700000001", Locations: database.StringList{"  ", ""}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(tt.input)
			if !core.IsValidation(err) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestSubscriptionLocationsTrimmedOnSave(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := NewSubscriptionService(db)

	sub, err := svc.Create(SubscriptionInput{
		Method:    database.MethodSMS,
		Contact:   "+254700000001",
		Locations: database.StringList{" Budalangi ", "", "Nyando"},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if len(sub.Locations) != 2 {
		t.Fatalf("expected empty entries dropped, got %v", sub.Locations)
	}
	if sub.Locations[0] != "Budalangi" || sub.Locations[1] != "Nyando" {
		t.Errorf("expected trimmed locations, got %v", sub.Locations)
	}
}

func TestUpdateSubscriptionReplacesLocations(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := NewSubscriptionService(db)

	sub, err := svc.Create(SubscriptionInput{
		Method:    database.MethodEmail,
		Contact:   "resident@example.com",
		Locations: database.StringList{"Budalangi", "Nyando"},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	newLocs := database.StringList{"Tana Delta"}
	updated, err := svc.Update(sub.ID, SubscriptionPatch{Locations: &newLocs})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if len(updated.Locations) != 1 || updated.Locations[0] != "Tana Delta" {
		t.Errorf("expected locations replaced wholesale, got %v", updated.Locations)
	}
	if updated.Contact != "resident@example.com" {
		t.Error("unpatched contact changed")
	}
}

func TestDeleteSubscriptionNotFound(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := NewSubscriptionService(db)

	if err := svc.Delete(42); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFindByLocationExactMatch(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := NewSubscriptionService(db)

	seed := []SubscriptionInput{
		{Method: database.MethodEmail, Contact: "a@example.com", Locations: database.StringList{"Budalangi"}},
		{Method: database.MethodSMS, Contact: "+254700000001", Locations: database.StringList{"Nyando", "Budalangi"}},
		{Method: database.MethodSMS, Contact: "+254700000002", Locations: database.StringList{"Tana Delta"}},
	}
	for _, in := range seed {
		if _, err := svc.Create(in); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	matched, err := svc.FindByLocation("Budalangi")
	if err != nil {
		t.Fatalf("FindByLocation failed: %v", err)
	}
	if len(matched) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matched))
	}

	// Matching is case-sensitive: "budalangi" is a different label.
	matched, err = svc.FindByLocation("budalangi")
	if err != nil {
		t.Fatalf("FindByLocation failed: %v", err)
	}
	if len(matched) != 0 {
		t.Errorf("expected case-sensitive match to find nothing, got %d", len(matched))
	}
}

func TestFindByLocationRejectsBlank(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := NewSubscriptionService(db)

	if _, err := svc.FindByLocation("   "); !core.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestGroupAllByLocation(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := NewSubscriptionService(db)

	sub, err := svc.Create(SubscriptionInput{
		Method:    database.MethodEmail,
		Contact:   "a@example.com",
		Locations: database.StringList{"Budalangi", "Nyando", "Tana Delta"},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	grouped, err := svc.GroupAllByLocation()
	if err != nil {
		t.Fatalf("GroupAllByLocation failed: %v", err)
	}

	if len(grouped) != 3 {
		t.Fatalf("expected subscription under 3 keys, got %d: %v", len(grouped), grouped)
	}
	for _, loc := range []string{"Budalangi", "Nyando", "Tana Delta"} {
		subs, ok := grouped[loc]
		if !ok || len(subs) != 1 {
			t.Errorf("expected one entry under %q, got %v", loc, subs)
			continue
		}
		if subs[0].ID != sub.ID || subs[0].Contact != "a@example.com" {
			t.Errorf("wrong summary under %q: %+v", loc, subs[0])
		}
	}
}

func TestCountByMethod(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := NewSubscriptionService(db)

	seed := []SubscriptionInput{
		{Method: database.MethodEmail, Contact: "a@example.com", Locations: database.StringList{"Budalangi"}},
		{Method: database.MethodEmail, Contact: "b@example.com", Locations: database.StringList{"Nyando"}},
		{Method: database.MethodSMS, Contact: "+254700000001", Locations: database.StringList{"Budalangi"}},
	}
	for _, in := range seed {
		if _, err := svc.Create(in); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	counts, err := svc.CountByMethod()
	if err != nil {
		t.Fatalf("CountByMethod failed: %v", err)
	}
	if counts[database.MethodEmail] != 2 {
		t.Errorf("expected 2 email subscriptions, got %d", counts[database.MethodEmail])
	}
	if counts[database.MethodSMS] != 1 {
		t.Errorf("expected 1 sms subscription, got %d", counts[database.MethodSMS])
	}
}

func TestCountByLocation(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := NewSubscriptionService(db)

	seed := []SubscriptionInput{
		{Method: database.MethodEmail, Contact: "a@example.com", Locations: database.StringList{"Budalangi", "Nyando"}},
		{Method: database.MethodSMS, Contact: "+254700000001", Locations: database.StringList{"Budalangi"}},
	}
	for _, in := range seed {
		if _, err := svc.Create(in); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	counts, err := svc.CountByLocation()
	if err != nil {
		t.Fatalf("CountByLocation failed: %v", err)
	}

	want := map[string]int{"Budalangi": 2, "Nyando": 1}
	if len(counts) != len(want) {
		t.Fatalf("expected %d labels, got %v", len(want), counts)
	}
	for _, c := range counts {
		if want[c.Label] != c.Count {
			t.Errorf("label %q: expected %d, got %d", c.Label, want[c.Label], c.Count)
		}
	}
}

func TestListByMonth(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := NewSubscriptionService(db)

	inside := database.Subscription{
		Method:    database.MethodEmail,
		Contact:   "a@example.com",
		Locations: database.StringList{"Budalangi"},
		CreatedAt: time.Date(2026, time.March, 15, 10, 0, 0, 0, time.UTC),
	}
	outside := database.Subscription{
		Method:    database.MethodEmail,
		Contact:   "b@example.com",
		Locations: database.StringList{"Nyando"},
		CreatedAt: time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := db.Create(&inside).Error; err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if err := db.Create(&outside).Error; err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	subs, err := svc.ListByMonth(2026, 3)
	if err != nil {
		t.Fatalf("ListByMonth failed: %v", err)
	}
	if len(subs) != 1 || subs[0].Contact != "a@example.com" {
		t.Errorf("expected only the March subscription, got %+v", subs)
	}
}

func TestListByMonthValidation(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := NewSubscriptionService(db)

	if _, err := svc.ListByMonth(2026, 0); !core.IsValidation(err) {
		t.Errorf("expected validation error for month 0, got %v", err)
	}
	if _, err := svc.ListByMonth(2026, 13); !core.IsValidation(err) {
		t.Errorf("expected validation error for month 13, got %v", err)
	}
	if _, err := svc.ListByMonth(1700, 5); !core.IsValidation(err) {
		t.Errorf("expected validation error for year 1700, got %v", err)
	}
}
