package highscore

import (
	"fmt"
	"time"

	"github.com/tidwall/gjson"
)

// The API serves XML converted to JSON: every record sits under an
// "@attributes" object and numeric values usually arrive as strings.
// gjson coerces both representations, so normalization does not depend on
// whichever the converter chose that day.

// Normalize maps a raw highscore payload into points for the requested
// (server, category, type) combination. It is a pure function: the same
// input always yields the same points, in API order, all sharing the
// response's top-level timestamp.
//
// Unknown type codes tag the points "unknown" instead of failing. Unknown
// category codes yield no points and ErrUnknownCategory.
func Normalize(raw []byte, server string, catCode, typCode int) ([]Point, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrDecode)
	}
	root := gjson.ParseBytes(raw)

	tsField := root.Get("@attributes.timestamp")
	if !tsField.Exists() {
		return nil, fmt.Errorf("%w: missing @attributes.timestamp", ErrDecode)
	}
	ts := time.Unix(tsField.Int(), 0).UTC()

	cat := CategoryFromCode(catCode)
	typ := TypeFromCode(typCode)

	switch cat {
	case CategoryPlayer:
		return normalizeRecords(root.Get("player"), server, cat, typ, ts), nil
	case CategoryAlliance:
		return normalizeRecords(root.Get("alliance"), server, cat, typ, ts), nil
	default:
		return nil, fmt.Errorf("%w: code %d", ErrUnknownCategory, catCode)
	}
}

// normalizeRecords walks the record array in API order. The converter emits
// a bare object instead of an array when there is a single record; gjson's
// Array() covers both.
func normalizeRecords(records gjson.Result, server string, cat Category, typ Type, ts time.Time) []Point {
	rows := records.Array()
	points := make([]Point, 0, len(rows))
	for _, row := range rows {
		attrs := row.Get("@attributes")
		if !attrs.Exists() {
			continue
		}
		var ships *int64
		if cat == CategoryPlayer && typ == TypeMilitary {
			// Absent ships attribute means zero, not an error.
			n := attrs.Get("ships").Int()
			ships = &n
		}
		points = append(points, NewPoint(
			server,
			cat,
			typ,
			attrs.Get("id").Int(),
			attrs.Get("position").Int(),
			attrs.Get("score").Int(),
			ships,
			ts,
		))
	}
	return points
}

// NormalizeAttributes maps a players.xml or alliances.xml payload into
// entity metadata records. Pure, same contract as Normalize.
func NormalizeAttributes(raw []byte, catCode int) ([]EntityAttributes, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrDecode)
	}
	root := gjson.ParseBytes(raw)

	tsField := root.Get("@attributes.timestamp")
	if !tsField.Exists() {
		return nil, fmt.Errorf("%w: missing @attributes.timestamp", ErrDecode)
	}
	ts := time.Unix(tsField.Int(), 0).UTC()

	cat := CategoryFromCode(catCode)
	var key string
	switch cat {
	case CategoryPlayer:
		key = "player"
	case CategoryAlliance:
		key = "alliance"
	default:
		return nil, fmt.Errorf("%w: code %d", ErrUnknownCategory, catCode)
	}

	rows := root.Get(key).Array()
	attrs := make([]EntityAttributes, 0, len(rows))
	for _, row := range rows {
		a := row.Get("@attributes")
		if !a.Exists() {
			continue
		}
		attrs = append(attrs, EntityAttributes{
			Category:   cat,
			ID:         a.Get("id").Int(),
			Name:       a.Get("name").String(),
			Status:     a.Get("status").String(),
			Tag:        a.Get("tag").String(),
			AllianceID: a.Get("alliance").Int(),
			Timestamp:  ts,
		})
	}
	return attrs, nil
}
