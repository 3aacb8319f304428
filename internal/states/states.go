// Package states provides a lookup table of US states, their USPS
// abbreviations, and their capital cities.
package states

import "strings"

// State describes one US state.
type State struct {
	Name    string
	Abbr    string
	Capital string
}

// all is kept name-ordered; All relies on it.
var all = []State{
	{"Alabama", "AL", "Montgomery"},
	{"Alaska", "AK", "Juneau"},
	{"Arizona", "AZ", "Phoenix"},
	{"Arkansas", "AR", "Little Rock"},
	{"California", "CA", "Sacramento"},
	{"Colorado", "CO", "Denver"},
	{"Connecticut", "CT", "Hartford"},
	{"Delaware", "DE", "Dover"},
	{"Florida", "FL", "Tallahassee"},
	{"Georgia", "GA", "Atlanta"},
	{"Hawaii", "HI", "Honolulu"},
	{"Idaho", "ID", "Boise"},
	{"Illinois", "IL", "Springfield"},
	{"Indiana", "IN", "Indianapolis"},
	{"Iowa", "IA", "Des Moines"},
	{"Kansas", "KS", "Topeka"},
	{"Kentucky", "KY", "Frankfort"},
	{"Louisiana", "LA", "Baton Rouge"},
	{"Maine", "ME", "Augusta"},
	{"Maryland", "MD", "Annapolis"},
	{"Massachusetts", "MA", "Boston"},
	{"Michigan", "MI", "Lansing"},
	{"Minnesota", "MN", "Saint Paul"},
	{"Mississippi", "MS", "Jackson"},
	{"Missouri", "MO", "Jefferson City"},
	{"Montana", "MT", "Helena"},
	{"Nebraska", "NE", "Lincoln"},
	{"Nevada", "NV", "Carson City"},
	{"New Hampshire", "NH", "Concord"},
	{"New Jersey", "NJ", "Trenton"},
	{"New Mexico", "NM", "Santa Fe"},
	{"New York", "NY", "Albany"},
	{"North Carolina", "NC", "Raleigh"},
	{"North Dakota", "ND", "Bismarck"},
	{"Ohio", "OH", "Columbus"},
	{"Oklahoma", "OK", "Oklahoma City"},
	{"Oregon", "OR", "Salem"},
	{"Pennsylvania", "PA", "Harrisburg"},
	{"Rhode Island", "RI", "Providence"},
	{"South Carolina", "SC", "Columbia"},
	{"South Dakota", "SD", "Pierre"},
	{"Tennessee", "TN", "Nashville"},
	{"Texas", "TX", "Austin"},
	{"Utah", "UT", "Salt Lake City"},
	{"Vermont", "VT", "Montpelier"},
	{"Virginia", "VA", "Richmond"},
	{"Washington", "WA", "Olympia"},
	{"West Virginia", "WV", "Charleston"},
	{"Wisconsin", "WI", "Madison"},
	{"Wyoming", "WY", "Cheyenne"},
}

// byKey indexes states under their lowercased name and abbreviation.
var byKey = func() map[string]State {
	m := make(map[string]State, len(all)*2)
	for _, s := range all {
		m[strings.ToLower(s.Name)] = s
		m[strings.ToLower(s.Abbr)] = s
	}
	return m
}()

// Lookup resolves a state from its full name or USPS abbreviation,
// case-insensitively and ignoring surrounding whitespace.
func Lookup(nameOrAbbr string) (State, bool) {
	s, ok := byKey[strings.ToLower(strings.TrimSpace(nameOrAbbr))]
	return s, ok
}

// All returns every state ordered by name.
func All() []State {
	out := make([]State, len(all))
	copy(out, all)
	return out
}
