package cache

import "fmt"

// Key builders for the cached read views. Invalidation works on these
// prefixes, so every cached payload for a tournament must live under one of
// them.

func ReportKey(tournamentID int, name string) string {
	return fmt.Sprintf("reports:%d:%s", tournamentID, name)
}

func CollegePortalKey(tournamentID int) string {
	return fmt.Sprintf("portal:college:%d", tournamentID)
}

func ProPortalKey(tournamentID int) string {
	return fmt.Sprintf("portal:pro:%d", tournamentID)
}

func StandingsPollKey(tournamentID int) string {
	return fmt.Sprintf("api:standings-poll:%d", tournamentID)
}

// InvalidateTournament drops every cached view derived from the tournament's
// state. Called after any finalization or registration change.
func InvalidateTournament(c Cache, tournamentID int) int {
	removed := 0
	removed += c.DeletePrefix(fmt.Sprintf("reports:%d:", tournamentID))
	removed += c.DeletePrefix(CollegePortalKey(tournamentID))
	removed += c.DeletePrefix(ProPortalKey(tournamentID))
	removed += c.DeletePrefix(StandingsPollKey(tournamentID))
	return removed
}
