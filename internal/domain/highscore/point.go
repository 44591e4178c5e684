package highscore

import "time"

// Point is one normalized highscore sample, tagged and timestamped for
// time-series storage. Points are immutable once constructed; corrections
// arrive only as new points with later timestamps.
type Point struct {
	Server   string
	Category Category
	Type     Type
	EntityID int64
	Rank     int64
	Score    int64
	// Ships is set only for (player, military) points; nil elsewhere.
	Ships     *int64
	Timestamp time.Time
}

// NewPoint constructs a Point with all fields at once. The timestamp is
// truncated to second precision, matching the storage schema.
func NewPoint(server string, cat Category, typ Type, entityID, rank, score int64, ships *int64, ts time.Time) Point {
	return Point{
		Server:    server,
		Category:  cat,
		Type:      typ,
		EntityID:  entityID,
		Rank:      rank,
		Score:     score,
		Ships:     ships,
		Timestamp: ts.Truncate(time.Second).UTC(),
	}
}

// EntityAttributes is the per-server player/alliance metadata sampled from
// the players.xml and alliances.xml endpoints once per server per sweep.
type EntityAttributes struct {
	Category Category
	ID       int64
	Name     string
	// Status is the player status string (e.g. "v", "i"); empty for alliances.
	Status string
	// Tag is the alliance tag; empty for players.
	Tag string
	// AllianceID is the player's alliance, 0 when none; 0 for alliances.
	AllianceID int64
	Timestamp  time.Time
}
