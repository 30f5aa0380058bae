package persona

// GeneralQuery is asked for every persona regardless of type; it anchors the
// evidence set in overall sentiment.
const GeneralQuery = "overall review is this game worth buying"

// typeQueries maps each archetype to the evidence angles that persona cares
// about. Queries are fixed strings so their embeddings can be precomputed
// and cached once per corpus.
var typeQueries = map[GamerType][]string{
	UltimateGamer: {
		"story and gameplay depth review",
		"endgame content and replay value",
	},
	AllRoundEnthusiast: {
		"balanced review pros and cons",
		"is the game fun for casual and hardcore players",
	},
	CloudGamer: {
		"performance on low end hardware",
		"price discount worth waiting for sale",
	},
	ConventionalPlayer: {
		"is the game similar to classic titles",
		"learning curve and accessibility",
	},
	HardwareEnthusiast: {
		"graphics quality ray tracing benchmark",
		"optimization frame rate high end pc",
	},
	PopcornGamer: {
		"is the game fun to watch streamers play",
		"story cutscenes and cinematic quality",
	},
	BackseatGamer: {
		"comparison with older games nostalgia",
		"is the game worth returning to gaming for",
	},
	TimeFiller: {
		"can the game be played in short sessions",
		"is the game too complex or time consuming",
	},
}

// QueriesFor returns the retrieval queries for one persona type, general
// query first. The returned slice is a copy.
func QueriesFor(t GamerType) []string {
	qs := make([]string, 0, 1+len(typeQueries[t]))
	qs = append(qs, GeneralQuery)
	qs = append(qs, typeQueries[t]...)
	return qs
}

// AllQueries returns the union of every query any persona type can issue,
// in a stable order, for embedding precomputation.
func AllQueries() []string {
	seen := map[string]bool{GeneralQuery: true}
	all := []string{GeneralQuery}
	for _, t := range AllTypes() {
		for _, q := range typeQueries[t] {
			if !seen[q] {
				seen[q] = true
				all = append(all, q)
			}
		}
	}
	return all
}
