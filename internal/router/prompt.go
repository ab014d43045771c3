// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TourMind Contributors

package router

import (
	"encoding/json"
	"fmt"

	"github.com/tourmind/tourmind/internal/memory"
	"github.com/tourmind/tourmind/internal/weather"
)

// SystemPrompt is the assistant persona sent with every completion.
const SystemPrompt = "You are TourMind, a travel planning assistant. " +
	"Be concise and practical, and ground your suggestions in what is known about the user."

// WeatherPrompt fills the weather-activity template with current
// conditions and the user's preference snapshot.
func WeatherPrompt(query, city string, cond *weather.Conditions, prefs *memory.PreferenceSnapshot) string {
	return fmt.Sprintf(`Weather in %s:
%s

User preferences:
%s

Their question: %s

Suggest activities considering:
1. The current weather conditions
2. The user's previous travel history
3. Their stored interests`,
		city, asJSON(cond), asJSON(prefs), query)
}

// GeneralPrompt fills the general travel template with the user's
// preference snapshot.
func GeneralPrompt(query string, prefs *memory.PreferenceSnapshot) string {
	return fmt.Sprintf(`User preferences:
%s

Their question: %s

Provide a helpful travel-planning response considering their stored preferences and travel history.`,
		asJSON(prefs), query)
}

func asJSON(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
