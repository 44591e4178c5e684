// Package highscore contains the typed highscore data model and the
// normalization of raw API payloads into time-series points.
package highscore

// Category identifies whether a highscore row describes a player or an
// alliance. Values match the API's category codes.
type Category int

// Known categories. Out-of-range codes map to CategoryUnknown.
const (
	CategoryUnknown  Category = 0
	CategoryPlayer   Category = 1
	CategoryAlliance Category = 2
)

// CategoryFromCode maps an API category code to a Category.
// The mapping is total: unknown codes yield CategoryUnknown, never an error.
func CategoryFromCode(code int) Category {
	switch code {
	case int(CategoryPlayer):
		return CategoryPlayer
	case int(CategoryAlliance):
		return CategoryAlliance
	default:
		return CategoryUnknown
	}
}

func (c Category) String() string {
	switch c {
	case CategoryPlayer:
		return "player"
	case CategoryAlliance:
		return "alliance"
	default:
		return "unknown"
	}
}

// Type is the highscore leaderboard variant. Values match the API's type
// codes 0 through 11.
type Type int

// Known leaderboard types. Out-of-range codes map to TypeUnknown.
const (
	TypeGeneral Type = iota
	TypeEconomy
	TypeResearch
	TypeMilitary
	TypeMilitaryLost
	TypeMilitaryBuilt
	TypeMilitaryDestroyed
	TypeHonor
	TypeLifeforms
	TypeLifeformEconomy
	TypeLifeformResearch
	TypeLifeformDiscovery
	TypeUnknown
)

var typeNames = [...]string{
	TypeGeneral:           "general",
	TypeEconomy:           "economy",
	TypeResearch:          "research",
	TypeMilitary:          "military",
	TypeMilitaryLost:      "mili_lost",
	TypeMilitaryBuilt:     "mili_built",
	TypeMilitaryDestroyed: "mili_destroyed",
	TypeHonor:             "honor",
	TypeLifeforms:         "lifeforms",
	TypeLifeformEconomy:   "lf_economy",
	TypeLifeformResearch:  "lf_research",
	TypeLifeformDiscovery: "lf_discovery",
	TypeUnknown:           "unknown",
}

// TypeFromCode maps an API type code to a Type.
// The mapping is total: unknown codes yield TypeUnknown, never an error.
func TypeFromCode(code int) Type {
	if code >= 0 && code < int(TypeUnknown) {
		return Type(code)
	}
	return TypeUnknown
}

// TypeFromName maps a leaderboard name (as stored in the "type" tag) back to
// a Type. Unrecognized names yield TypeUnknown.
func TypeFromName(name string) Type {
	for t, n := range typeNames {
		if n == name {
			return Type(t)
		}
	}
	return TypeUnknown
}

func (t Type) String() string {
	if t >= 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "unknown"
}

// TypeNames returns the display names for a list of API type codes, in order.
func TypeNames(codes []int) []string {
	names := make([]string, len(codes))
	for i, c := range codes {
		names[i] = TypeFromCode(c).String()
	}
	return names
}
