package query

import (
	"sort"
	"time"
)

// Sample is one displayed row: a score/rank pair at one sample time plus the
// fields the dashboard derives from its neighbors.
type Sample struct {
	Time       time.Time `json:"time"`
	LocalTime  time.Time `json:"local_time"`
	ServerTime time.Time `json:"server_time"`
	Day        string    `json:"day"`
	Rank       int64     `json:"rank"`
	Score      int64     `json:"score"`
	Delta      int64     `json:"delta"`
	TotalDelta int64     `json:"total_delta"`
	Gained     bool      `json:"gained"`
}

// Series is one entity's history over the queried range, oldest first.
type Series struct {
	Server   string   `json:"server"`
	EntityID string   `json:"entity_id"`
	Category string   `json:"category"`
	Type     string   `json:"type"`
	Samples  []Sample `json:"samples"`
}

// buildSeries merges raw score/rank records by sample time and derives the
// display fields. Records missing a score sample are dropped (rank alone is
// not displayable); a missing rank defaults to zero.
func buildSeries(p Params, records []Record, serverTZ, localTZ *time.Location) Series {
	type pair struct {
		score    int64
		rank     int64
		hasScore bool
	}
	byTime := make(map[int64]*pair)
	for _, r := range records {
		key := r.Time.Unix()
		pr, ok := byTime[key]
		if !ok {
			pr = &pair{}
			byTime[key] = pr
		}
		switch r.Field {
		case "score":
			pr.score = r.Value
			pr.hasScore = true
		case "rank":
			pr.rank = r.Value
		}
	}

	keys := make([]int64, 0, len(byTime))
	for key, pr := range byTime {
		if pr.hasScore {
			keys = append(keys, key)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	samples := make([]Sample, 0, len(keys))
	var prevScore, totalDelta int64
	for n, key := range keys {
		pr := byTime[key]
		ts := time.Unix(key, 0).UTC()
		serverTime := ts.In(serverTZ)

		var delta int64
		if n > 0 {
			delta = pr.score - prevScore
		}
		totalDelta += delta
		prevScore = pr.score

		samples = append(samples, Sample{
			Time:       ts,
			LocalTime:  ts.In(localTZ),
			ServerTime: serverTime,
			Day:        serverTime.Weekday().String(),
			Rank:       pr.rank,
			Score:      pr.score,
			Delta:      delta,
			TotalDelta: totalDelta,
			Gained:     delta > 0,
		})
	}

	return Series{
		Server:   p.Server,
		EntityID: p.EntityID,
		Category: p.Category.String(),
		Type:     p.Type.String(),
		Samples:  samples,
	}
}
