package config

// StandConfig describes the physical positions available for one stand type.
type StandConfig struct {
	Total              int
	UsesPerEvent       int
	SupportsHandedness bool
	SharedWith         string
	Groups             [][]int
	SpecificStands     []int
	Labels             []string
}

// StandConfigs maps stand type to its physical layout on the grounds.
var StandConfigs = map[string]StandConfig{
	"springboard": {
		Total:              4,
		UsesPerEvent:       3,
		SupportsHandedness: true,
		Labels:             []string{"Dummy 1", "Dummy 2", "Dummy 3", "Dummy 4"},
	},
	"underhand": {
		Total:  5,
		Labels: []string{"Stand 1", "Stand 2", "Stand 3", "Stand 4", "Stand 5"},
	},
	"standing_block": {
		Total:      5,
		SharedWith: "cookie_stack",
		Labels:     []string{"Stand 1", "Stand 2", "Stand 3", "Stand 4", "Stand 5"},
	},
	"cookie_stack": {
		Total:      5,
		SharedWith: "standing_block",
		Labels:     []string{"Stand 1", "Stand 2", "Stand 3", "Stand 4", "Stand 5"},
	},
	"saw_hand": {
		Total:  8,
		Groups: [][]int{{1, 2, 3, 4}, {5, 6, 7, 8}},
		Labels: []string{"Stand 1", "Stand 2", "Stand 3", "Stand 4", "Stand 5", "Stand 6", "Stand 7", "Stand 8"},
	},
	"stock_saw": {
		Total:          2,
		SpecificStands: []int{1, 2},
		Labels:         []string{"Stand 1", "Stand 2"},
	},
	"hot_saw": {
		Total:          4,
		SpecificStands: []int{1, 2, 3, 4},
		Labels:         []string{"Stand 1", "Stand 2", "Stand 3", "Stand 4"},
	},
	"obstacle_pole": {
		Total:  2,
		Labels: []string{"Pole 1", "Pole 2"},
	},
	"speed_climb": {
		Total:  2,
		Labels: []string{"Pole 2", "Pole 4"},
	},
	"chokerman": {
		Total:  2,
		Labels: []string{"Course 1", "Course 2"},
	},
	"axe_throw": {Total: 1, Labels: []string{"Target"}},
	"caber":     {Total: 1, Labels: []string{"Field"}},
	"peavey":    {Total: 1, Labels: []string{"Log"}},
	"pulp_toss": {Total: 1, Labels: []string{"Platform"}},
	"birling":   {Total: 1, Labels: []string{"Pond"}},
}

// PlacementPoints maps finishing position to points for college events.
var PlacementPoints = map[int]int{
	1: 10,
	2: 7,
	3: 5,
	4: 3,
	5: 2,
	6: 1,
}

// CollegeStockSawStands overrides stand numbers for college Stock Saw,
// which runs on the back pair of saw stands.
var CollegeStockSawStands = []int{7, 8}

// Team constraints for college registration.
const (
	MinTeamSize            = 4
	MaxTeamSize            = 8
	MinPerGender           = 2
	MaxClosedEventsPerComp = 6
	MaxChoppingEvents      = 2
)

// Heat spacing for pro flight construction.
const (
	MinHeatSpacing    = 4
	TargetHeatSpacing = 5
	HeatsPerFlight    = 8
)

// EventSeed describes one event in the standard catalogs.
type EventSeed struct {
	Name             string
	ScoringType      string
	StandType        string
	IsGendered       bool
	IsPartnered      bool
	PartnerGender    string
	RequiresDualRuns bool
	HasPrelims       bool
}

// CollegeOpenEvents are list-only events any college competitor may enter.
var CollegeOpenEvents = []EventSeed{
	{Name: "Axe Throw", ScoringType: "score", StandType: "axe_throw"},
	{Name: "Peavey Log Roll", ScoringType: "time", StandType: "peavey", IsPartnered: true, PartnerGender: "mixed"},
	{Name: "Caber Toss", ScoringType: "distance", StandType: "caber"},
	{Name: "Pulp Toss", ScoringType: "time", StandType: "pulp_toss", IsPartnered: true, PartnerGender: "mixed"},
}

// CollegeClosedEvents count against the per-competitor closed-event cap.
var CollegeClosedEvents = []EventSeed{
	{Name: "Underhand Hard Hit", ScoringType: "hits", StandType: "underhand", IsGendered: true},
	{Name: "Underhand Speed", ScoringType: "time", StandType: "underhand", IsGendered: true},
	{Name: "Standing Block Hard Hit", ScoringType: "hits", StandType: "standing_block", IsGendered: true},
	{Name: "Standing Block Speed", ScoringType: "time", StandType: "standing_block", IsGendered: true},
	{Name: "Single Buck", ScoringType: "time", StandType: "saw_hand", IsGendered: true},
	{Name: "Double Buck", ScoringType: "time", StandType: "saw_hand", IsGendered: true, IsPartnered: true, PartnerGender: "same"},
	{Name: "Jack & Jill Sawing", ScoringType: "time", StandType: "saw_hand", IsPartnered: true, PartnerGender: "mixed"},
	{Name: "Stock Saw", ScoringType: "time", StandType: "stock_saw", IsGendered: true},
	{Name: "Speed Climb", ScoringType: "time", StandType: "speed_climb", IsGendered: true, RequiresDualRuns: true},
	{Name: "Obstacle Pole", ScoringType: "time", StandType: "obstacle_pole", IsGendered: true},
	{Name: "Chokerman's Race", ScoringType: "time", StandType: "chokerman", IsGendered: true, RequiresDualRuns: true},
	{Name: "Birling", ScoringType: "bracket", StandType: "birling", IsGendered: true},
	{Name: "1-Board Springboard", ScoringType: "time", StandType: "springboard", IsGendered: true},
}

// ProEvents is the standard Saturday pro catalog.
var ProEvents = []EventSeed{
	{Name: "Springboard", ScoringType: "time", StandType: "springboard"},
	{Name: "Pro 1-Board", ScoringType: "time", StandType: "springboard"},
	{Name: "3-Board Jigger", ScoringType: "time", StandType: "springboard"},
	{Name: "Underhand", ScoringType: "time", StandType: "underhand", IsGendered: true},
	{Name: "Standing Block", ScoringType: "time", StandType: "standing_block", IsGendered: true},
	{Name: "Stock Saw", ScoringType: "time", StandType: "stock_saw", IsGendered: true},
	{Name: "Hot Saw", ScoringType: "time", StandType: "hot_saw"},
	{Name: "Single Buck", ScoringType: "time", StandType: "saw_hand", IsGendered: true},
	{Name: "Double Buck", ScoringType: "time", StandType: "saw_hand", IsGendered: true, IsPartnered: true},
	{Name: "Jack & Jill Sawing", ScoringType: "time", StandType: "saw_hand", IsPartnered: true, PartnerGender: "mixed"},
	{Name: "Partnered Axe Throw", ScoringType: "score", StandType: "axe_throw", IsPartnered: true, HasPrelims: true},
	{Name: "Obstacle Pole", ScoringType: "time", StandType: "obstacle_pole"},
	{Name: "Pole Climb", ScoringType: "time", StandType: "speed_climb"},
	{Name: "Cookie Stack", ScoringType: "time", StandType: "cookie_stack"},
}

// ChoppingEventNames are the college events counted against the chopping cap.
var ChoppingEventNames = []string{
	"Standing Block Hard Hit",
	"Standing Block Speed",
	"Underhand Hard Hit",
	"Underhand Speed",
}

// ListOnlyCollegeEvents run from a sign-up list and never get heats.
var ListOnlyCollegeEvents = []string{
	"Axe Throw",
	"Peavey Log Roll",
	"Caber Toss",
	"Pulp Toss",
}

// GearCategories is the controlled vocabulary accepted as gear-sharing keys
// alongside event ids and names.
var GearCategories = []string{"crosscut", "chainsaw"}

// ShirtSizes accepted on pro entry forms.
var ShirtSizes = []string{"XS", "S", "M", "L", "XL", "2XL", "3XL"}
