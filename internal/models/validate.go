// ReelTrack - Personal Media Tracking and Recommendations
// Copyright 2026 ReelTrack contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reeltrack/reeltrack

package models

import (
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
)

// singleton validator instance; caches struct metadata across calls
var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator instance.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// ValidateStruct validates any tagged struct with the shared validator.
func ValidateStruct(s interface{}) error {
	if err := Validator().Struct(s); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

// SanitizeCatalogItems validates externally-sourced catalog entries and
// drops the malformed ones rather than letting loosely-typed data flow
// inward. Returns the valid items and the number dropped.
func SanitizeCatalogItems(items []CatalogItem) ([]CatalogItem, int) {
	valid := make([]CatalogItem, 0, len(items))
	dropped := 0
	for i := range items {
		if err := Validator().Struct(&items[i]); err != nil {
			dropped++
			continue
		}
		valid = append(valid, items[i])
	}
	return valid, dropped
}

// SanitizeHistory validates interaction records read from the store,
// dropping records with missing identity fields or unknown media kinds.
func SanitizeHistory(records []InteractionRecord) ([]InteractionRecord, int) {
	valid := make([]InteractionRecord, 0, len(records))
	dropped := 0
	for i := range records {
		if records[i].UserID == "" || records[i].TitleID == 0 || !records[i].Kind.Valid() {
			dropped++
			continue
		}
		valid = append(valid, records[i])
	}
	return valid, dropped
}
