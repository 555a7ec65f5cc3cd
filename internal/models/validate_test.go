// ReelTrack - Personal Media Tracking and Recommendations
// Copyright 2026 ReelTrack contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reeltrack/reeltrack

package models

import (
	"testing"
)

func TestMediaKindValid(t *testing.T) {
	for _, k := range []MediaKind{MediaMovie, MediaSeries, MediaBook} {
		if !k.Valid() {
			t.Errorf("%s must be valid", k)
		}
	}
	if MediaKind("podcast").Valid() {
		t.Error("unknown kind must be invalid")
	}
}

func TestBundleKindValid(t *testing.T) {
	for _, k := range []BundleKind{BundleBehavior, BundleRecommendations, BundleStats} {
		if !k.Valid() {
			t.Errorf("%s must be valid", k)
		}
	}
	if BundleKind("weather").Valid() {
		t.Error("unknown bundle kind must be invalid")
	}
}

func TestSanitizeCatalogItems(t *testing.T) {
	items := []CatalogItem{
		{ID: 1, Title: "ok", Rating: 8.1, VoteCount: 100},
		{ID: 0, Title: "missing id", Rating: 8.1},
		{ID: 2, Title: "", Rating: 8.1},
		{ID: 3, Title: "rating out of scale", Rating: 11},
		{ID: 4, Title: "negative votes", Rating: 5, VoteCount: -1},
	}

	valid, dropped := SanitizeCatalogItems(items)
	if len(valid) != 1 || valid[0].ID != 1 {
		t.Errorf("valid = %+v", valid)
	}
	if dropped != 4 {
		t.Errorf("dropped = %d, want 4", dropped)
	}
}

func TestSanitizeHistory(t *testing.T) {
	records := []InteractionRecord{
		{UserID: "u1", TitleID: 1, Kind: MediaMovie},
		{UserID: "", TitleID: 2, Kind: MediaMovie},
		{UserID: "u1", TitleID: 0, Kind: MediaMovie},
		{UserID: "u1", TitleID: 3, Kind: MediaKind("bogus")},
	}

	valid, dropped := SanitizeHistory(records)
	if len(valid) != 1 || valid[0].TitleID != 1 {
		t.Errorf("valid = %+v", valid)
	}
	if dropped != 3 {
		t.Errorf("dropped = %d, want 3", dropped)
	}
}

func TestValidateRatingRecord(t *testing.T) {
	good := RatingRecord{UserID: "u1", SubjectID: 1, Rating: 3}
	if err := ValidateStruct(&good); err != nil {
		t.Errorf("valid rating rejected: %v", err)
	}

	for _, r := range []int{0, 6} {
		bad := RatingRecord{UserID: "u1", SubjectID: 1, Rating: r}
		if err := ValidateStruct(&bad); err == nil {
			t.Errorf("rating %d must be rejected", r)
		}
	}
}
