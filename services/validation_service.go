package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/config"
	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/models"
	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/repositories"
)

// Validation issue codes. Stable: clients key UI copy off them.
const (
	CodeTeamTooSmall         = "TEAM_TOO_SMALL"
	CodeTeamTooLarge         = "TEAM_TOO_LARGE"
	CodeInsufficientMales    = "INSUFFICIENT_MALES"
	CodeInsufficientFemales  = "INSUFFICIENT_FEMALES"
	CodeTeamAtMinimum        = "TEAM_AT_MINIMUM"
	CodeMissingField         = "MISSING_FIELD"
	CodeNoTeam               = "NO_TEAM"
	CodeTooManyClosedEvents  = "TOO_MANY_CLOSED_EVENTS"
	CodeTooManyChopping      = "TOO_MANY_CHOPPING_EVENTS"
	CodeEntryLimitExceeded   = "ENTRY_LIMIT_EXCEEDED"
	CodePartnerNotReciprocal = "PARTNER_NOT_RECIPROCAL"
	CodeNotALAMember         = "NOT_ALA_MEMBER"
	CodeUnpaidFees           = "UNPAID_FEES"
	CodeNoEvents             = "NO_EVENTS"
	CodeGearSharingConflict  = "GEAR_SHARING_CONFLICT"
	CodeHeatOvercapacity     = "HEAT_OVERCAPACITY"
	CodeStandCollision       = "STAND_COLLISION"
)

// maxTeamEntriesPerEvent caps one team's entries in a closed event: three
// per gender for individual events, three pairs for partnered ones.
const maxTeamEntriesPerEvent = 3

// ValidateTeam checks member count and gender composition over the team's
// loaded members.
func ValidateTeam(team *models.Team) models.ValidationResult {
	var result models.ValidationResult
	if strings.TrimSpace(team.TeamCode) == "" {
		result.AddError(CodeMissingField, "team code is required", "team_code", team.ID)
	}
	if strings.TrimSpace(team.SchoolName) == "" {
		result.AddError(CodeMissingField, "school name is required", "school_name", team.ID)
	}

	total, male, female := team.ActiveCounts()
	if total < config.MinTeamSize {
		result.AddError(CodeTeamTooSmall,
			fmt.Sprintf("team has %d active members, minimum is %d", total, config.MinTeamSize), "", team.ID)
	}
	if total > config.MaxTeamSize {
		result.AddError(CodeTeamTooLarge,
			fmt.Sprintf("team has %d active members, maximum is %d", total, config.MaxTeamSize), "", team.ID)
	}
	if male < config.MinPerGender {
		result.AddError(CodeInsufficientMales,
			fmt.Sprintf("team has %d active men, minimum is %d", male, config.MinPerGender), "", team.ID)
	}
	if female < config.MinPerGender {
		result.AddError(CodeInsufficientFemales,
			fmt.Sprintf("team has %d active women, minimum is %d", female, config.MinPerGender), "", team.ID)
	}
	if total == config.MinTeamSize {
		result.AddWarning(CodeTeamAtMinimum,
			"team is at the minimum size, a single scratch invalidates it", "", team.ID)
	}
	return result
}

// matchesCatalog reports whether an events_entered value names one of the
// catalog events, tolerating gender prefixes on the entered string.
func matchesCatalog(entry, catalogName string) bool {
	key := normalizeName(entry)
	want := normalizeName(catalogName)
	return key == want || key == "mens"+want || key == "womens"+want
}

func countMatches(eventsEntered, catalog []string) int {
	count := 0
	for _, entry := range eventsEntered {
		for _, name := range catalog {
			if matchesCatalog(entry, name) {
				count++
				break
			}
		}
	}
	return count
}

func closedEventNames() []string {
	names := make([]string, 0, len(config.CollegeClosedEvents))
	for _, seed := range config.CollegeClosedEvents {
		names = append(names, seed.Name)
	}
	return names
}

// ValidateCollegeCompetitor checks required fields, team linkage and the
// per-competitor entry caps.
func ValidateCollegeCompetitor(c *models.CollegeCompetitor) models.ValidationResult {
	var result models.ValidationResult
	if strings.TrimSpace(c.Name) == "" {
		result.AddError(CodeMissingField, "competitor name is required", "name", c.ID)
	}
	if c.Gender != models.GenderMale && c.Gender != models.GenderFemale {
		result.AddError(CodeMissingField, "competitor gender is required", "gender", c.ID)
	}
	if c.TeamID == 0 {
		result.AddError(CodeNoTeam, "competitor is not on a team", "team_id", c.ID)
	}

	if closed := countMatches(c.EventsEntered, closedEventNames()); closed > config.MaxClosedEventsPerComp {
		result.AddError(CodeTooManyClosedEvents,
			fmt.Sprintf("%s entered %d closed events, maximum is %d", c.Name, closed, config.MaxClosedEventsPerComp), "", c.ID)
	}
	if chopping := countMatches(c.EventsEntered, config.ChoppingEventNames); chopping > config.MaxChoppingEvents {
		result.AddError(CodeTooManyChopping,
			fmt.Sprintf("%s entered %d chopping events, maximum is %d", c.Name, chopping, config.MaxChoppingEvents), "", c.ID)
	}
	if len(c.EventsEntered) == 0 {
		result.AddWarning(CodeNoEvents, c.Name+" has no events entered", "events_entered", c.ID)
	}
	return result
}

// ValidateTeamEntries enforces the per-team caps for each closed event: three
// entries per gender for individual events, three pairs for partnered ones.
func ValidateTeamEntries(team *models.Team) models.ValidationResult {
	var result models.ValidationResult
	for _, seed := range config.CollegeClosedEvents {
		var males, females, total int
		for i := range team.Members {
			m := &team.Members[i]
			if m.Status != models.CompetitorActive {
				continue
			}
			entered := false
			for _, entry := range m.EventsEntered {
				if matchesCatalog(entry, seed.Name) {
					entered = true
					break
				}
			}
			if !entered {
				continue
			}
			total++
			if m.Gender == models.GenderMale {
				males++
			} else {
				females++
			}
		}

		if seed.IsPartnered {
			if pairs := total / 2; pairs > maxTeamEntriesPerEvent {
				result.AddError(CodeEntryLimitExceeded,
					fmt.Sprintf("%s has %d pairs in %s, maximum is %d", team.TeamCode, pairs, seed.Name, maxTeamEntriesPerEvent), "", team.ID)
			}
			continue
		}
		if males > maxTeamEntriesPerEvent {
			result.AddError(CodeEntryLimitExceeded,
				fmt.Sprintf("%s has %d men in %s, maximum is %d", team.TeamCode, males, seed.Name, maxTeamEntriesPerEvent), "", team.ID)
		}
		if females > maxTeamEntriesPerEvent {
			result.AddError(CodeEntryLimitExceeded,
				fmt.Sprintf("%s has %d women in %s, maximum is %d", team.TeamCode, females, seed.Name, maxTeamEntriesPerEvent), "", team.ID)
		}
	}
	return result
}

// ValidatePartners checks that every declared partnership is reciprocal and
// that both sides actually entered the event.
func ValidatePartners(members []models.CollegeCompetitor) models.ValidationResult {
	var result models.ValidationResult
	byName := make(map[string]*models.CollegeCompetitor, len(members))
	for i := range members {
		byName[normalizeName(members[i].Name)] = &members[i]
	}

	for i := range members {
		c := &members[i]
		for eventKey, partnerName := range c.Partners {
			partner, ok := byName[normalizeName(partnerName)]
			if !ok {
				result.AddError(CodePartnerNotReciprocal,
					fmt.Sprintf("%s lists partner %q for %s, who is not registered", c.Name, partnerName, eventKey), "", c.ID)
				continue
			}
			if normalizeName(partner.Partners[eventKey]) != normalizeName(c.Name) {
				result.AddError(CodePartnerNotReciprocal,
					fmt.Sprintf("%s lists %s as partner for %s, but not the other way around", c.Name, partner.Name, eventKey), "", c.ID)
			}
			if !entersEvent(partner.EventsEntered, nil, normalizeName(eventKey)) {
				result.AddError(CodePartnerNotReciprocal,
					fmt.Sprintf("%s's partner %s did not enter %s", c.Name, partner.Name, eventKey), "", partner.ID)
			}
		}
	}
	return result
}

// ValidateProCompetitor checks required fields and surfaces the review
// warnings shown on the pro roster.
func ValidateProCompetitor(p *models.ProCompetitor) models.ValidationResult {
	var result models.ValidationResult
	if strings.TrimSpace(p.Name) == "" {
		result.AddError(CodeMissingField, "competitor name is required", "name", p.ID)
	}
	if p.Gender != models.GenderMale && p.Gender != models.GenderFemale {
		result.AddError(CodeMissingField, "competitor gender is required", "gender", p.ID)
	}

	if !p.IsALAMember {
		result.AddWarning(CodeNotALAMember, p.Name+" has no ALA membership on file", "is_ala_member", p.ID)
	}
	if balance := p.FeesBalance(); balance > 0 {
		result.AddWarning(CodeUnpaidFees,
			fmt.Sprintf("%s owes $%.2f in entry fees", p.Name, balance), "fees_paid", p.ID)
	}
	if len(p.EventsEntered) == 0 {
		result.AddWarning(CodeNoEvents, p.Name+" has no events entered", "events_entered", p.ID)
	}
	for key, token := range p.GearSharing {
		if strings.TrimSpace(token) == "" {
			result.AddWarning(CodeGearSharingConflict,
				fmt.Sprintf("%s shares gear for %s without naming who with", p.Name, key), "gear_sharing", p.ID)
		}
	}
	return result
}

// ValidateHeat checks a generated heat against its event's physical limits:
// capacity, stand uniqueness, and gear shared inside the heat.
func ValidateHeat(event *models.Event, heat *models.Heat, entries map[int]HeatEntry) models.ValidationResult {
	var result models.ValidationResult

	maxCompetitors := heatCapacity(event)
	perStand := 1
	if event.IsPartnered {
		maxCompetitors *= 2
		perStand = 2
	}
	if len(heat.Competitors) > maxCompetitors {
		result.AddError(CodeHeatOvercapacity,
			fmt.Sprintf("heat %d holds %d competitors, stand capacity is %d", heat.HeatNumber, len(heat.Competitors), maxCompetitors), "", heat.ID)
	}

	standUse := map[int]int{}
	for _, id := range heat.Competitors {
		if stand, ok := heat.StandAssignments[id]; ok {
			standUse[stand]++
		}
	}
	for stand, used := range standUse {
		if used > perStand {
			result.AddError(CodeStandCollision,
				fmt.Sprintf("heat %d assigns stand %d to %d competitors", heat.HeatNumber, stand, used), "", heat.ID)
		}
	}

	// Two competitors sharing one saw cannot run head to head.
	for i := 0; i < len(heat.Competitors); i++ {
		for j := i + 1; j < len(heat.Competitors); j++ {
			a, aok := entries[heat.Competitors[i]]
			b, bok := entries[heat.Competitors[j]]
			if !aok || !bok {
				continue
			}
			if samePair(a, b) {
				continue
			}
			tokA := heatUnit{members: []HeatEntry{a}}.gearToken(event)
			if tokA != "" && tokA == (heatUnit{members: []HeatEntry{b}}).gearToken(event) {
				result.AddWarning(CodeGearSharingConflict,
					fmt.Sprintf("%s and %s share gear but are drawn in the same heat", a.Name, b.Name), "", heat.ID)
			}
		}
	}
	return result
}

func samePair(a, b HeatEntry) bool {
	return (a.PartnerID != nil && *a.PartnerID == b.CompetitorID) ||
		(b.PartnerID != nil && *b.PartnerID == a.CompetitorID)
}

// ValidationService composes the pure checks over a whole tournament.
type ValidationService struct {
	teams   repositories.TeamRepository
	college repositories.CollegeCompetitorRepository
	pros    repositories.ProCompetitorRepository
	events  repositories.EventRepository
	heats   repositories.HeatRepository
}

func NewValidationService(
	teams repositories.TeamRepository,
	college repositories.CollegeCompetitorRepository,
	pros repositories.ProCompetitorRepository,
	events repositories.EventRepository,
	heats repositories.HeatRepository,
) *ValidationService {
	return &ValidationService{teams: teams, college: college, pros: pros, events: events, heats: heats}
}

// ValidateTournament runs every check across teams, competitors and generated
// heats, and merges the issues into one report.
func (s *ValidationService) ValidateTournament(ctx context.Context, tournamentID int) (*models.ValidationResult, error) {
	var result models.ValidationResult

	teams, err := s.teams.ListByTournament(ctx, tournamentID, nil)
	if err != nil {
		return nil, err
	}
	for _, team := range teams {
		members, err := s.college.ListByTeam(ctx, team.ID)
		if err != nil {
			return nil, err
		}
		team.Members = make([]models.CollegeCompetitor, 0, len(members))
		for _, m := range members {
			team.Members = append(team.Members, *m)
			result.Merge(ValidateCollegeCompetitor(m))
		}
		result.Merge(ValidateTeam(team))
		result.Merge(ValidateTeamEntries(team))
		result.Merge(ValidatePartners(team.Members))
	}

	pros, err := s.pros.ListByTournament(ctx, tournamentID, nil)
	if err != nil {
		return nil, err
	}
	proEntries := make(map[int]HeatEntry, len(pros))
	for _, p := range pros {
		result.Merge(ValidateProCompetitor(p))
		proEntries[p.ID] = HeatEntry{CompetitorID: p.ID, Name: p.Name, Gender: p.Gender, GearSharing: p.GearSharing}
	}
	collegeEntries := map[int]HeatEntry{}
	for _, team := range teams {
		for i := range team.Members {
			m := team.Members[i]
			collegeEntries[m.ID] = HeatEntry{CompetitorID: m.ID, Name: m.Name, Gender: m.Gender, GearSharing: m.GearSharing}
		}
	}

	events, err := s.events.ListByTournament(ctx, tournamentID, nil)
	if err != nil {
		return nil, err
	}
	for _, event := range events {
		heats, err := s.heats.ListByEvent(ctx, event.ID)
		if err != nil {
			return nil, err
		}
		entries := collegeEntries
		if event.EventType == models.EventPro {
			entries = proEntries
		}
		for _, heat := range heats {
			result.Merge(ValidateHeat(event, heat, entries))
		}
	}
	return &result, nil
}
