package services

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/cache"
	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/models"
	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/repositories"
)

// Review flag levels on pro entry previews. Red blocks, yellow needs a look.
const (
	FlagRed    = "red"
	FlagYellow = "yellow"
)

// ReviewFlag is one issue spotted on an imported entry form.
type ReviewFlag struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// CollegeImportSummary reports what a roster import created.
type CollegeImportSummary struct {
	TeamsCreated       int `json:"teams_created"`
	CompetitorsCreated int `json:"competitors_created"`
}

// collegeColumns are the resolved column indexes of a roster sheet.
type collegeColumns struct {
	school, team, name, gender, events, partners, lottery int
}

// findColumn resolves a header index, preferring an exact normalized match
// ("Name") over a containing one ("Competitor Name"). Returns -1 when absent.
func findColumn(headers []string, candidates ...string) int {
	for _, want := range candidates {
		for i, h := range headers {
			if normalizeName(h) == want {
				return i
			}
		}
	}
	for _, want := range candidates {
		for i, h := range headers {
			if strings.Contains(normalizeName(h), want) {
				return i
			}
		}
	}
	return -1
}

func field(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

func parseBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "y", "yes", "true", "1", "x":
		return true
	}
	return false
}

func parseGender(raw string) (models.Gender, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "m", "male", "men", "mens":
		return models.GenderMale, true
	case "f", "female", "women", "womens", "w":
		return models.GenderFemale, true
	}
	return "", false
}

// splitList splits a multi-value cell on semicolons or commas.
func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	sep := ";"
	if !strings.Contains(raw, ";") {
		sep = ","
	}
	var out []string
	for _, part := range strings.Split(raw, sep) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parsePartners reads "Event: Partner Name" pairs from a cell. Older exports
// flattened the whole partners map into this cell, including the reserved
// __gear_sharing__ entry; reserved keys never surface as partners, and any
// gear rules they carry come back separately for the gear-sharing field.
func parsePartners(raw string) (map[string]string, map[string]string) {
	partners := map[string]string{}
	gear := map[string]string{}
	for _, part := range splitList(raw) {
		event, partner, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		event, partner = strings.TrimSpace(event), strings.TrimSpace(partner)
		if event == "" || partner == "" {
			continue
		}
		if reservedImportKey(event) {
			if strings.Trim(event, "_") == "gear_sharing" {
				for category, token := range parseGear(partner) {
					gear[category] = token
				}
			}
			continue
		}
		partners[event] = partner
	}
	return partners, gear
}

// reservedImportKey reports whether a partners-cell key is a legacy metadata
// marker rather than an event name.
func reservedImportKey(key string) bool {
	return strings.HasPrefix(key, "__") && strings.HasSuffix(key, "__")
}

// ImportService loads registration sheets exported from the entry forms.
type ImportService struct {
	db      *sql.DB
	teams   repositories.TeamRepository
	college repositories.CollegeCompetitorRepository
	pros    repositories.ProCompetitorRepository
	events  repositories.EventRepository
	results repositories.ResultRepository
	cache   cache.Cache
	audit   *AuditService
	logger  *slog.Logger
}

func NewImportService(
	db *sql.DB,
	teams repositories.TeamRepository,
	college repositories.CollegeCompetitorRepository,
	pros repositories.ProCompetitorRepository,
	events repositories.EventRepository,
	results repositories.ResultRepository,
	c cache.Cache,
	audit *AuditService,
	logger *slog.Logger,
) *ImportService {
	return &ImportService{
		db:      db,
		teams:   teams,
		college: college,
		pros:    pros,
		events:  events,
		results: results,
		cache:   c,
		audit:   audit,
		logger:  logger,
	}
}

// ImportCollegeRoster loads a school roster sheet, creating teams and
// competitors in one transaction. Any team that would violate the
// composition rules aborts the whole import.
func (s *ImportService) ImportCollegeRoster(ctx context.Context, rc *models.RequestContext, tournamentID int, r io.Reader) (*CollegeImportSummary, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%w: roster sheet has no data rows", ErrValidationFailed)
	}

	headers := records[0]
	cols := collegeColumns{
		school:   findColumn(headers, "school"),
		team:     findColumn(headers, "team"),
		name:     findColumn(headers, "competitor", "athlete", "name"),
		gender:   findColumn(headers, "gender", "sex"),
		events:   findColumn(headers, "event"),
		partners: findColumn(headers, "partner"),
		lottery:  findColumn(headers, "lottery", "proam", "relay"),
	}
	if cols.school < 0 || cols.team < 0 || cols.name < 0 || cols.gender < 0 {
		return nil, fmt.Errorf("%w: roster sheet is missing school, team, name or gender columns", ErrValidationFailed)
	}

	type teamRows struct {
		school  string
		members []*models.CollegeCompetitor
	}
	order := []string{}
	grouped := map[string]*teamRows{}
	for line, record := range records[1:] {
		name := field(record, cols.name)
		if name == "" {
			continue
		}
		gender, ok := parseGender(field(record, cols.gender))
		if !ok {
			return nil, fmt.Errorf("%w: row %d: unrecognized gender %q for %s",
				ErrValidationFailed, line+2, field(record, cols.gender), name)
		}
		teamCode := field(record, cols.team)
		if teamCode == "" {
			return nil, fmt.Errorf("%w: row %d: %s has no team", ErrValidationFailed, line+2, name)
		}

		group, ok := grouped[teamCode]
		if !ok {
			group = &teamRows{school: field(record, cols.school)}
			grouped[teamCode] = group
			order = append(order, teamCode)
		}
		partners, gear := parsePartners(field(record, cols.partners))
		group.members = append(group.members, &models.CollegeCompetitor{
			TournamentID:  tournamentID,
			Name:          name,
			Gender:        gender,
			EventsEntered: splitList(field(record, cols.events)),
			Partners:      partners,
			GearSharing:   gear,
			LotteryOptIn:  parseBool(field(record, cols.lottery)),
			Status:        models.CompetitorActive,
		})
	}

	summary := &CollegeImportSummary{}
	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		for _, teamCode := range order {
			group := grouped[teamCode]

			team, err := s.teams.GetByCode(ctx, tournamentID, teamCode)
			switch {
			case errors.Is(err, repositories.ErrTeamNotFound):
				team = &models.Team{
					TournamentID:       tournamentID,
					TeamCode:           teamCode,
					SchoolName:         group.school,
					SchoolAbbreviation: abbreviate(teamCode),
					Status:             models.CompetitorActive,
				}
				if err := s.teams.Create(ctx, tx, team); err != nil {
					return err
				}
				summary.TeamsCreated++
			case err != nil:
				return err
			}

			for _, member := range group.members {
				member.TeamID = team.ID
				if err := s.college.Create(ctx, tx, member); err != nil {
					return err
				}
				team.Members = append(team.Members, *member)
				summary.CompetitorsCreated++
			}

			var check models.ValidationResult
			check.Merge(ValidateTeam(team))
			check.Merge(ValidateTeamEntries(team))
			for i := range team.Members {
				check.Merge(ValidateCollegeCompetitor(&team.Members[i]))
			}
			if !check.IsValid() {
				return fmt.Errorf("%w: team %s: %s", ErrValidationFailed, teamCode, check.Errors[0].Message)
			}
		}
		return s.audit.Log(ctx, tx, rc, "import.college", "tournament", &tournamentID, map[string]interface{}{
			"teams":       summary.TeamsCreated,
			"competitors": summary.CompetitorsCreated,
		})
	})
	if err != nil {
		return nil, err
	}

	cache.InvalidateTournament(s.cache, tournamentID)
	s.logger.Info("college roster imported",
		"tournament_id", tournamentID,
		"teams", summary.TeamsCreated,
		"competitors", summary.CompetitorsCreated)
	return summary, nil
}

// abbreviate takes the school prefix off a team code like "UM-A".
func abbreviate(teamCode string) string {
	if prefix, _, ok := strings.Cut(teamCode, "-"); ok {
		return prefix
	}
	return teamCode
}

// ProEntry is one parsed pro entry form row.
type ProEntry struct {
	Name          string            `json:"name"`
	Gender        models.Gender     `json:"gender"`
	Email         *string           `json:"email,omitempty"`
	Phone         *string           `json:"phone,omitempty"`
	Address       *string           `json:"address,omitempty"`
	ShirtSize     *string           `json:"shirt_size,omitempty"`
	IsALAMember   bool              `json:"is_ala_member"`
	WaiverSigned  bool              `json:"waiver_signed"`
	LotteryOptIn  bool              `json:"lottery_opt_in"`
	LeftHanded    bool              `json:"left_handed"`
	EventsEntered []string          `json:"events_entered"`
	Partners      map[string]string `json:"partners"`
	GearSharing   map[string]string `json:"gear_sharing"`
}

// ProEntryPreview pairs a parsed entry with its review flags.
type ProEntryPreview struct {
	Entry ProEntry     `json:"entry"`
	Flags []ReviewFlag `json:"flags"`
}

// ProImportSummary reports what a confirmed pro import wrote.
type ProImportSummary struct {
	CompetitorsCreated int `json:"competitors_created"`
	CompetitorsUpdated int `json:"competitors_updated"`
	ResultsCreated     int `json:"results_created"`
}

// ParseProEntries reads a pro entry sheet and flags rows for review: a
// missing waiver is red, partner and gear questions are yellow.
func (s *ImportService) ParseProEntries(r io.Reader) ([]ProEntryPreview, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%w: entry sheet has no data rows", ErrValidationFailed)
	}

	headers := records[0]
	nameCol := findColumn(headers, "competitor", "athlete", "name")
	genderCol := findColumn(headers, "gender", "sex")
	emailCol := findColumn(headers, "email")
	phoneCol := findColumn(headers, "phone")
	addressCol := findColumn(headers, "address")
	shirtCol := findColumn(headers, "shirt")
	alaCol := findColumn(headers, "ala")
	waiverCol := findColumn(headers, "waiver")
	lotteryCol := findColumn(headers, "lottery", "proam", "relay")
	leftCol := findColumn(headers, "lefthand", "left")
	eventsCol := findColumn(headers, "event")
	partnersCol := findColumn(headers, "partner")
	gearCol := findColumn(headers, "gear")
	if nameCol < 0 || genderCol < 0 {
		return nil, fmt.Errorf("%w: entry sheet is missing name or gender columns", ErrValidationFailed)
	}

	var previews []ProEntryPreview
	for line, record := range records[1:] {
		name := field(record, nameCol)
		if name == "" {
			continue
		}
		gender, ok := parseGender(field(record, genderCol))
		if !ok {
			return nil, fmt.Errorf("%w: row %d: unrecognized gender %q for %s",
				ErrValidationFailed, line+2, field(record, genderCol), name)
		}

		partners, legacyGear := parsePartners(field(record, partnersCol))
		gear := parseGear(field(record, gearCol))
		// The dedicated gear column wins over legacy partners-cell entries.
		for category, token := range legacyGear {
			if _, ok := gear[category]; !ok {
				gear[category] = token
			}
		}

		entry := ProEntry{
			Name:          name,
			Gender:        gender,
			Email:         optional(field(record, emailCol)),
			Phone:         optional(field(record, phoneCol)),
			Address:       optional(field(record, addressCol)),
			ShirtSize:     optional(field(record, shirtCol)),
			IsALAMember:   parseBool(field(record, alaCol)),
			WaiverSigned:  parseBool(field(record, waiverCol)),
			LotteryOptIn:  parseBool(field(record, lotteryCol)),
			LeftHanded:    parseBool(field(record, leftCol)),
			EventsEntered: splitList(field(record, eventsCol)),
			Partners:      partners,
			GearSharing:   gear,
		}
		previews = append(previews, ProEntryPreview{Entry: entry})
	}

	flagProEntries(previews)
	return previews, nil
}

// parseGear reads "category: token" pairs; a bare category keeps an empty
// token so the gear question gets flagged downstream.
func parseGear(raw string) map[string]string {
	out := map[string]string{}
	for _, part := range splitList(raw) {
		category, token, found := strings.Cut(part, ":")
		category = strings.TrimSpace(category)
		if category == "" {
			continue
		}
		if found {
			out[category] = strings.TrimSpace(token)
		} else {
			out[category] = ""
		}
	}
	return out
}

func flagProEntries(previews []ProEntryPreview) {
	names := map[string]int{}
	for i, p := range previews {
		names[normalizeName(p.Entry.Name)] = i
	}

	for i := range previews {
		entry := &previews[i].Entry
		flags := &previews[i].Flags

		if !entry.WaiverSigned {
			*flags = append(*flags, ReviewFlag{Level: FlagRed, Message: "no signed waiver on file"})
		}
		for eventKey, partnerName := range entry.Partners {
			j, ok := names[normalizeName(partnerName)]
			if !ok {
				*flags = append(*flags, ReviewFlag{Level: FlagYellow,
					Message: fmt.Sprintf("partner %q for %s is not in this batch", partnerName, eventKey)})
				continue
			}
			back := previews[j].Entry.Partners[eventKey]
			if normalizeName(back) != normalizeName(entry.Name) {
				*flags = append(*flags, ReviewFlag{Level: FlagYellow,
					Message: fmt.Sprintf("partner %q for %s did not name them back", partnerName, eventKey)})
			}
		}
		for category, token := range entry.GearSharing {
			if token == "" {
				*flags = append(*flags, ReviewFlag{Level: FlagYellow,
					Message: fmt.Sprintf("shares %s gear without saying who with", category)})
			}
		}
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// ConfirmProEntries writes reviewed entries: upsert by email, and a pending
// event result for every resolvable entered event.
func (s *ImportService) ConfirmProEntries(ctx context.Context, rc *models.RequestContext, tournamentID int, entries []ProEntry) (*ProImportSummary, error) {
	proType := models.EventPro
	events, err := s.events.ListByTournament(ctx, tournamentID, &proType)
	if err != nil {
		return nil, err
	}

	summary := &ProImportSummary{}
	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		for i := range entries {
			entry := &entries[i]
			comp, err := s.upsertPro(ctx, tx, tournamentID, entry, summary)
			if err != nil {
				return err
			}
			if err := s.seedProResults(ctx, tx, events, comp, summary); err != nil {
				return err
			}
		}
		return s.audit.Log(ctx, tx, rc, "import.pro", "tournament", &tournamentID, map[string]interface{}{
			"created": summary.CompetitorsCreated,
			"updated": summary.CompetitorsUpdated,
			"results": summary.ResultsCreated,
		})
	})
	if err != nil {
		return nil, err
	}

	cache.InvalidateTournament(s.cache, tournamentID)
	s.logger.Info("pro entries confirmed",
		"tournament_id", tournamentID,
		"created", summary.CompetitorsCreated,
		"updated", summary.CompetitorsUpdated)
	return summary, nil
}

func (s *ImportService) upsertPro(ctx context.Context, tx *sql.Tx, tournamentID int, entry *ProEntry, summary *ProImportSummary) (*models.ProCompetitor, error) {
	var existing *models.ProCompetitor
	if entry.Email != nil {
		found, err := s.pros.GetByEmail(ctx, tournamentID, *entry.Email)
		switch {
		case errors.Is(err, repositories.ErrProCompetitorNotFound):
		case err != nil:
			return nil, err
		default:
			existing = found
		}
	}

	if existing == nil {
		comp := &models.ProCompetitor{
			TournamentID:            tournamentID,
			Name:                    entry.Name,
			Gender:                  entry.Gender,
			Email:                   entry.Email,
			Phone:                   entry.Phone,
			Address:                 entry.Address,
			ShirtSize:               entry.ShirtSize,
			IsALAMember:             entry.IsALAMember,
			LotteryOptIn:            entry.LotteryOptIn,
			IsLeftHandedSpringboard: entry.LeftHanded,
			EventsEntered:           entry.EventsEntered,
			EntryFees:               map[string]float64{},
			FeesPaid:                map[string]bool{},
			Partners:                entry.Partners,
			GearSharing:             entry.GearSharing,
			Status:                  models.CompetitorActive,
		}
		if err := s.pros.Create(ctx, tx, comp); err != nil {
			return nil, err
		}
		summary.CompetitorsCreated++
		return comp, nil
	}

	existing.Name = entry.Name
	existing.Gender = entry.Gender
	existing.Phone = entry.Phone
	existing.Address = entry.Address
	existing.ShirtSize = entry.ShirtSize
	existing.IsALAMember = entry.IsALAMember
	existing.LotteryOptIn = entry.LotteryOptIn
	existing.IsLeftHandedSpringboard = entry.LeftHanded
	existing.EventsEntered = entry.EventsEntered
	existing.Partners = entry.Partners
	existing.GearSharing = entry.GearSharing
	if err := s.pros.Update(ctx, tx, existing); err != nil {
		return nil, err
	}
	summary.CompetitorsUpdated++
	return existing, nil
}

func (s *ImportService) seedProResults(ctx context.Context, tx *sql.Tx, events []*models.Event, comp *models.ProCompetitor, summary *ProImportSummary) error {
	for _, event := range events {
		if event.Gender != nil && *event.Gender != comp.Gender {
			continue
		}
		if !entersEvent(comp.EventsEntered, event, normalizeName(event.Name)) {
			continue
		}

		_, err := s.results.GetByCompetitor(ctx, event.ID, comp.ID, models.CompetitorPro)
		switch {
		case errors.Is(err, repositories.ErrResultNotFound):
		case err != nil:
			return err
		default:
			continue
		}

		res := &models.EventResult{
			EventID:        event.ID,
			CompetitorID:   comp.ID,
			CompetitorType: models.CompetitorPro,
			CompetitorName: comp.Name,
			Status:         models.StatusPending,
		}
		if err := s.results.Create(ctx, tx, res); err != nil {
			return err
		}
		summary.ResultsCreated++
	}
	return nil
}
