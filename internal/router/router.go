// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TourMind Contributors

// Package router decides which prompt template a chat message takes.
//
// A message routes to the weather path iff it mentions any weather
// keyword; matching is case-insensitive substring. Everything else
// takes the general travel path.
package router

import (
	"strings"

	"github.com/gobwas/glob"
	"github.com/samber/oops"
)

// Route names, also used as metric labels.
const (
	RouteWeather = "weather"
	RouteGeneral = "general"
)

// weatherKeywords are the built-in triggers for the weather route.
var weatherKeywords = []string{
	"weather", "temperature", "rain", "sunny", "forecast",
	"hot", "cold", "climate", "humidity",
}

// compiledKeyword holds a keyword and its compiled glob.
type compiledKeyword struct {
	keyword string
	glob    glob.Glob
}

// Router matches chat messages against keyword patterns.
type Router struct {
	keywords []compiledKeyword
}

// New creates a Router matching the built-in weather keywords plus any
// extras from configuration. Keywords are lowercased and wrapped in
// '*' wildcards; glob metacharacters in extras are honored, so a bad
// extra pattern fails here rather than at match time.
func New(extra ...string) (*Router, error) {
	all := make([]string, 0, len(weatherKeywords)+len(extra))
	all = append(all, weatherKeywords...)
	all = append(all, extra...)

	compiled := make([]compiledKeyword, 0, len(all))
	for _, kw := range all {
		g, err := glob.Compile("*" + strings.ToLower(kw) + "*")
		if err != nil {
			return nil, oops.Code("ROUTER_INVALID_KEYWORD").
				With("keyword", kw).
				Wrap(err)
		}
		compiled = append(compiled, compiledKeyword{keyword: kw, glob: g})
	}
	return &Router{keywords: compiled}, nil
}

// Route returns RouteWeather when the message mentions any keyword,
// RouteGeneral otherwise.
func (r *Router) Route(message string) string {
	lowered := strings.ToLower(message)
	for _, kw := range r.keywords {
		if kw.glob.Match(lowered) {
			return RouteWeather
		}
	}
	return RouteGeneral
}

// Keywords returns the keyword set in match order.
func (r *Router) Keywords() []string {
	out := make([]string, len(r.keywords))
	for i, kw := range r.keywords {
		out[i] = kw.keyword
	}
	return out
}
