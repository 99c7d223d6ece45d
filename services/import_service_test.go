package services

import (
	"strings"
	"testing"

	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindColumnPrefersExactMatch(t *testing.T) {
	headers := []string{"School Name", "Team", "Name", "Gender"}
	assert.Equal(t, 2, findColumn(headers, "competitor", "athlete", "name"))
	assert.Equal(t, 0, findColumn(headers, "school"))
	assert.Equal(t, -1, findColumn(headers, "waiver"))
}

func TestParseGender(t *testing.T) {
	for raw, want := range map[string]models.Gender{
		"M": models.GenderMale, "male": models.GenderMale,
		"F": models.GenderFemale, "Women": models.GenderFemale,
	} {
		got, ok := parseGender(raw)
		require.True(t, ok, raw)
		assert.Equal(t, want, got)
	}
	_, ok := parseGender("unknown")
	assert.False(t, ok)
}

func TestSplitListAndPartners(t *testing.T) {
	assert.Equal(t, []string{"Hot Saw", "Single Buck"}, splitList("Hot Saw; Single Buck"))
	assert.Equal(t, []string{"Hot Saw", "Single Buck"}, splitList("Hot Saw, Single Buck"))
	assert.Nil(t, splitList("  "))

	partners, gear := parsePartners("Double Buck: Blake Fir; Jack & Jill Sawing: Casey Oak")
	assert.Equal(t, "Blake Fir", partners["Double Buck"])
	assert.Equal(t, "Casey Oak", partners["Jack & Jill Sawing"])
	assert.Empty(t, gear)
}

func TestParsePartnersMigratesLegacyGearMarker(t *testing.T) {
	// Exports from the old system flatten the partners map into the cell,
	// reserved __gear_sharing__ entry included.
	partners, gear := parsePartners("Double Buck: Blake Fir; __gear_sharing__: crosscut: saw-alpha")

	require.Len(t, partners, 1)
	assert.Equal(t, "Blake Fir", partners["Double Buck"])
	_, hasMarker := partners["__gear_sharing__"]
	assert.False(t, hasMarker, "reserved keys must not surface as partners")

	assert.Equal(t, "saw-alpha", gear["crosscut"])
}

func TestParseGearKeepsBareCategory(t *testing.T) {
	gear := parseGear("crosscut: saw-alpha; chainsaw")
	assert.Equal(t, "saw-alpha", gear["crosscut"])
	token, ok := gear["chainsaw"]
	require.True(t, ok)
	assert.Empty(t, token)
}

func TestAbbreviate(t *testing.T) {
	assert.Equal(t, "UM", abbreviate("UM-A"))
	assert.Equal(t, "FLC", abbreviate("FLC"))
}

const proEntrySheet = `Name,Gender,Email,ALA Member,Waiver Signed,Events,Partners,Gear Sharing,Lottery
Jordan Spruce,M,jordan@example.com,yes,yes,Hot Saw; Single Buck,,,yes
Casey Oak,F,casey@example.com,no,,Jack & Jill Sawing,Jack & Jill Sawing: Pat Elm,crosscut,yes
Pat Elm,M,pat@example.com,yes,yes,Jack & Jill Sawing,Jack & Jill Sawing: Casey Oak,,no
`

func TestParseProEntriesFlags(t *testing.T) {
	svc := &ImportService{}
	previews, err := svc.ParseProEntries(strings.NewReader(proEntrySheet))
	require.NoError(t, err)
	require.Len(t, previews, 3)

	// A clean entry carries no flags.
	assert.Empty(t, previews[0].Flags)
	assert.Equal(t, []string{"Hot Saw", "Single Buck"}, previews[0].Entry.EventsEntered)
	assert.True(t, previews[0].Entry.LotteryOptIn)

	// Missing waiver is red; a bare gear category is yellow. The partnership
	// with Pat Elm is reciprocal, so it raises nothing.
	var levels []string
	for _, f := range previews[1].Flags {
		levels = append(levels, f.Level)
	}
	assert.ElementsMatch(t, []string{FlagRed, FlagYellow}, levels)

	assert.Empty(t, previews[2].Flags)
}

func TestParseProEntriesUnresolvedPartner(t *testing.T) {
	sheet := `Name,Gender,Waiver Signed,Events,Partners
Casey Oak,F,yes,Jack & Jill Sawing,Jack & Jill Sawing: Ghost Partner
`
	svc := &ImportService{}
	previews, err := svc.ParseProEntries(strings.NewReader(sheet))
	require.NoError(t, err)
	require.Len(t, previews, 1)
	require.Len(t, previews[0].Flags, 1)
	assert.Equal(t, FlagYellow, previews[0].Flags[0].Level)
	assert.Contains(t, previews[0].Flags[0].Message, "Ghost Partner")
}

func TestParseProEntriesRejectsBadGender(t *testing.T) {
	sheet := "Name,Gender\nJordan Spruce,robot\n"
	svc := &ImportService{}
	_, err := svc.ParseProEntries(strings.NewReader(sheet))
	assert.ErrorIs(t, err, ErrValidationFailed)
}
