// ReelTrack - Personal Media Tracking and Recommendations
// Copyright 2026 ReelTrack contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reeltrack/reeltrack

package recommend

import (
	"github.com/reeltrack/reeltrack/internal/models"
)

// Mood maps a mood bucket to the static tag sets that drive its catalog
// query. The taxonomy is fixed; nothing here is derived per user.
type Mood struct {
	ID       models.MoodID
	Genres   []string
	Keywords []string
}

// moodTable is the authoritative mood taxonomy, in presentation order.
// Default-mood selection breaks overlap ties by this order, so the first
// entry doubles as the no-history fallback.
var moodTable = []Mood{
	{
		ID:       models.MoodUplifting,
		Genres:   []string{"Comedy", "Family", "Music"},
		Keywords: []string{"inspiring", "hope", "underdog"},
	},
	{
		ID:       models.MoodMindBending,
		Genres:   []string{"Science Fiction", "Mystery"},
		Keywords: []string{"time-travel", "nonlinear-timeline", "psychological"},
	},
	{
		ID:       models.MoodDarkIntense,
		Genres:   []string{"Crime", "Thriller", "Horror"},
		Keywords: []string{"neo-noir", "serial-killer"},
	},
	{
		ID:       models.MoodFeelGood,
		Genres:   []string{"Comedy", "Romance"},
		Keywords: []string{"friendship", "heartwarming"},
	},
	{
		ID:       models.MoodAdrenaline,
		Genres:   []string{"Action", "Adventure"},
		Keywords: []string{"heist", "chase", "survival"},
	},
	{
		ID:       models.MoodThoughtProvoking,
		Genres:   []string{"Drama", "Documentary"},
		Keywords: []string{"philosophy", "social-commentary"},
	},
	{
		ID:       models.MoodClassic,
		Genres:   []string{"Drama", "History"},
		Keywords: []string{"golden-age", "based-on-novel"},
	},
}

// Moods returns the mood taxonomy in presentation order. The slice is
// shared; callers must not mutate it.
func Moods() []Mood {
	return moodTable
}
