package engine

import "slices"

func NewEmptyState() State {
	return State{
		Games:      []string{},
		Transcript: []string{},
	}
}

// unionGames appends the ids not already in games, in order, skipping
// duplicates within ids too. games is returned unchanged if nothing is new.
func unionGames(games, ids []string) []string {
	var out []string
	for _, id := range ids {
		if slices.Contains(games, id) || slices.Contains(out, id) {
			continue
		}
		out = append(out, id)
	}
	if len(out) == 0 {
		return games
	}
	merged := make([]string, 0, len(games)+len(out))
	merged = append(merged, games...)
	return append(merged, out...)
}

// appendLine never writes into the backing array of lines, which may be
// shared with an already published snapshot.
func appendLine(lines []string, line string) []string {
	return append(slices.Clip(lines), line)
}

func (id Identity) PlayerIDOr(def string) string {
	if id.PlayerID == nil {
		return def
	}
	return *id.PlayerID
}

func (id Identity) PlayerTokenOr(def string) string {
	if id.PlayerToken == nil {
		return def
	}
	return *id.PlayerToken
}
