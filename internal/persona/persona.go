// Package persona generates synthetic consumer profiles. Demographics are
// sampled from fixed weighted distributions (ESA 2024, Statista, Newzoo);
// the behavioral trait bundle is a pure function of the gamer type, so two
// personas of the same type differ only cosmetically.
package persona

import (
	"fmt"
	"math/rand"
)

// GamerType is the categorical persona archetype.
type GamerType string

// The eight Newzoo gamer archetypes.
const (
	UltimateGamer      GamerType = "ultimate_gamer"
	AllRoundEnthusiast GamerType = "all_round_enthusiast"
	CloudGamer         GamerType = "cloud_gamer"
	ConventionalPlayer GamerType = "conventional_player"
	HardwareEnthusiast GamerType = "hardware_enthusiast"
	PopcornGamer       GamerType = "popcorn_gamer"
	BackseatGamer      GamerType = "backseat_gamer"
	TimeFiller         GamerType = "time_filler"
)

// Traits is the behavioral bundle attached to a gamer type.
type Traits struct {
	SpendingLevel      string
	TimeInvestment     string
	Platforms          []string
	PurchaseTiming     string
	InformationSeeking string
	BrandLoyalty       string
}

// typeInfo holds everything derived from a gamer type.
type typeInfo struct {
	displayName string
	description string
	proportion  float64
	traits      Traits
}

var gamerTypes = map[GamerType]typeInfo{
	UltimateGamer: {
		displayName: "The Ultimate Gamer",
		description: "A passionate gamer who spares neither money nor time on games.",
		proportion:  0.13,
		traits: Traits{
			SpendingLevel:      "Very High",
			TimeInvestment:     "20+ hours/week",
			Platforms:          []string{"PC", "Console"},
			PurchaseTiming:     "Day-1 purchase",
			InformationSeeking: "Buys regardless of reviews",
			BrandLoyalty:       "Very High",
		},
	},
	AllRoundEnthusiast: {
		displayName: "The All-Round Enthusiast",
		description: "Enjoys every genre and keeps a balanced gaming life.",
		proportion:  0.09,
		traits: Traits{
			SpendingLevel:      "Medium-High",
			TimeInvestment:     "10-15 hours/week",
			Platforms:          []string{"PC", "Console", "Mobile"},
			PurchaseTiming:     "Buys after checking reviews",
			InformationSeeking: "Reads reviews thoroughly",
			BrandLoyalty:       "Medium",
		},
	},
	CloudGamer: {
		displayName: "The Cloud Gamer",
		description: "Plays via streaming or discounted titles, no high-end rig.",
		proportion:  0.19,
		traits: Traits{
			SpendingLevel:      "Low-Medium",
			TimeInvestment:     "5-10 hours/week",
			Platforms:          []string{"Cloud Gaming"},
			PurchaseTiming:     "Buys only on deep discount",
			InformationSeeking: "Checks optimization reviews",
			BrandLoyalty:       "Low",
		},
	},
	ConventionalPlayer: {
		displayName: "The Conventional Player",
		description: "Replays familiar games, indifferent to new releases.",
		proportion:  0.04,
		traits: Traits{
			SpendingLevel:      "Very Low",
			TimeInvestment:     "5-10 hours/week",
			Platforms:          []string{"PC", "Console"},
			PurchaseTiming:     "Almost never",
			InformationSeeking: "Indifferent",
			BrandLoyalty:       "N/A",
		},
	},
	HardwareEnthusiast: {
		displayName: "The Hardware Enthusiast",
		description: "Obsessed with the latest gear and graphics; buys games as benchmarks.",
		proportion:  0.09,
		traits: Traits{
			SpendingLevel:      "Very High",
			TimeInvestment:     "15+ hours/week",
			Platforms:          []string{"High-End PC"},
			PurchaseTiming:     "Day-1 purchase",
			InformationSeeking: "Analyzes graphics benchmarks",
			BrandLoyalty:       "Medium",
		},
	},
	PopcornGamer: {
		displayName: "The Popcorn Gamer",
		description: "Prefers watching gameplay over playing.",
		proportion:  0.13,
		traits: Traits{
			SpendingLevel:      "Very Low",
			TimeInvestment:     "20+ hours/week (watching)",
			Platforms:          []string{"YouTube"},
			PurchaseTiming:     "Almost never",
			InformationSeeking: "Lives vicariously through streams",
			BrandLoyalty:       "N/A",
		},
	},
	BackseatGamer: {
		displayName: "The Backseat Gamer",
		description: "Played hard in the past, now only watches videos.",
		proportion:  0.06,
		traits: Traits{
			SpendingLevel:      "Very Low",
			TimeInvestment:     "5-10 hours/week (watching)",
			Platforms:          []string{"YouTube"},
			PurchaseTiming:     "Never",
			InformationSeeking: "Nostalgia-driven content",
			BrandLoyalty:       "Old franchises only",
		},
	},
	TimeFiller: {
		displayName: "The Time Filler",
		description: "Plays only mobile games in spare moments.",
		proportion:  0.27,
		traits: Traits{
			SpendingLevel:      "Low",
			TimeInvestment:     "10-15 hours/week",
			Platforms:          []string{"Mobile"},
			PurchaseTiming:     "Never",
			InformationSeeking: "Mobile game news only",
			BrandLoyalty:       "N/A",
		},
	},
}

// AllTypes returns every gamer type in a stable order.
func AllTypes() []GamerType {
	return []GamerType{
		UltimateGamer, AllRoundEnthusiast, CloudGamer, ConventionalPlayer,
		HardwareEnthusiast, PopcornGamer, BackseatGamer, TimeFiller,
	}
}

// Valid reports whether t is a known gamer type.
func (t GamerType) Valid() bool {
	_, ok := gamerTypes[t]
	return ok
}

// DisplayName returns the archetype's human-readable name.
func (t GamerType) DisplayName() string { return gamerTypes[t].displayName }

// Description returns the archetype's one-line description.
func (t GamerType) Description() string { return gamerTypes[t].description }

// Traits returns the behavioral bundle for the type. Pure function: the
// same type always yields the same bundle.
func (t GamerType) Traits() Traits { return gamerTypes[t].traits }

var genderDistribution = weighted[string]{
	{"Male", 0.54},
	{"Female", 0.46},
}

var ageDistribution = weighted[string]{
	{"18-19", 0.04},
	{"20-29", 0.24},
	{"30-39", 0.26},
	{"40-49", 0.21},
	{"50-59", 0.17},
	{"60+", 0.08},
}

var ageRanges = map[string][2]int{
	"18-19": {18, 19},
	"20-29": {20, 29},
	"30-39": {30, 39},
	"40-49": {40, 49},
	"50-59": {50, 59},
	"60+":   {60, 70},
}

var koreanSurnames = []string{"Kim", "Lee", "Park", "Choi", "Jung", "Kang", "Cho", "Yoon", "Jang", "Lim"}
var maleGivenNames = []string{"Minsu", "Junhyuk", "Sungmin", "Hyunwoo", "Jihoon", "Donghyun", "Seungwoo", "Jaehyun", "Taeyoon", "Siwoo"}
var femaleGivenNames = []string{"Jieun", "Subin", "Minji", "Seoyeon", "Yujin", "Haeun", "Yerin", "Sohee", "Chaewon", "Dain"}

var occupationsByAge = map[string][]string{
	"18-19": {"university student", "high school senior", "gap-year student", "job seeker"},
	"20-29": {"university student", "graduate student", "junior employee", "startup developer", "freelancer", "content creator"},
	"30-39": {"IT company manager", "startup CTO", "freelance designer", "marketer", "accountant", "lawyer"},
	"40-49": {"senior manager", "small business owner", "company director", "homemaker", "civil servant"},
	"50-59": {"executive", "small business owner", "preparing for retirement", "homemaker"},
	"60+":   {"retiree", "small business owner", "homemaker"},
}

// Persona is a synthetic consumer profile.
type Persona struct {
	ID         string
	Name       string
	Gender     string
	Age        int
	AgeGroup   string
	Occupation string
	Type       GamerType
}

// Generator samples personas from the fixed distributions. Not safe for
// concurrent use; generation happens up front, before the simulation fans
// out.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator creates a Generator over the given random source. Tests pass
// a seeded source for determinism.
func NewGenerator(rng *rand.Rand) *Generator {
	return &Generator{rng: rng}
}

// Generate creates one persona of the given type. A zero-value type samples
// from the gamer-type distribution instead.
func (g *Generator) Generate(id string, gamerType GamerType) Persona {
	if gamerType == "" {
		gamerType = g.sampleType()
	}

	gender := genderDistribution.sample(g.rng)
	ageGroup := ageDistribution.sample(g.rng)
	bounds := ageRanges[ageGroup]
	age := bounds[0] + g.rng.Intn(bounds[1]-bounds[0]+1)

	given := maleGivenNames
	if gender == "Female" {
		given = femaleGivenNames
	}
	name := koreanSurnames[g.rng.Intn(len(koreanSurnames))] + " " + given[g.rng.Intn(len(given))]

	occs := occupationsByAge[ageGroup]

	return Persona{
		ID:         id,
		Name:       name,
		Gender:     gender,
		Age:        age,
		AgeGroup:   ageGroup,
		Occupation: occs[g.rng.Intn(len(occs))],
		Type:       gamerType,
	}
}

// GenerateBalanced creates nPerType personas for each gamer type, so the
// population covers every archetype evenly (8 types x 13 ≈ 104 by default).
func (g *Generator) GenerateBalanced(nPerType int) []Persona {
	var personas []Persona
	for _, t := range AllTypes() {
		for i := 0; i < nPerType; i++ {
			personas = append(personas, g.Generate(fmt.Sprintf("%s_%d", t, i+1), t))
		}
	}
	return personas
}

func (g *Generator) sampleType() GamerType {
	w := make(weighted[GamerType], 0, len(gamerTypes))
	for _, t := range AllTypes() {
		w = append(w, weightedItem[GamerType]{t, gamerTypes[t].proportion})
	}
	return w.sample(g.rng)
}

type weightedItem[T any] struct {
	value  T
	weight float64
}

type weighted[T any] []weightedItem[T]

// sample draws one item proportionally to its weight.
func (w weighted[T]) sample(rng *rand.Rand) T {
	total := 0.0
	for _, item := range w {
		total += item.weight
	}
	r := rng.Float64() * total
	for _, item := range w {
		r -= item.weight
		if r < 0 {
			return item.value
		}
	}
	return w[len(w)-1].value
}
