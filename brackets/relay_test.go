package brackets

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func relayPools(perBucket int) RelayPools {
	bucket := func(ctype, gender string, base int) []RelayMember {
		out := make([]RelayMember, perBucket)
		for i := 0; i < perBucket; i++ {
			out[i] = RelayMember{
				CompetitorID:   base + i,
				CompetitorType: ctype,
				Name:           "Competitor",
				Gender:         gender,
			}
		}
		return out
	}
	return RelayPools{
		ProMen:       bucket("pro", "M", 100),
		ProWomen:     bucket("pro", "F", 200),
		CollegeMen:   bucket("college", "M", 300),
		CollegeWomen: bucket("college", "F", 400),
	}
}

func TestRelayPoolsCapacity(t *testing.T) {
	pools := relayPools(6)
	assert.Equal(t, 3, pools.Capacity())

	pools.CollegeWomen = pools.CollegeWomen[:3]
	assert.Equal(t, 1, pools.Capacity())

	pools.CollegeWomen = nil
	assert.Equal(t, 0, pools.Capacity())
}

func TestRelayDrawBuildsBalancedTeams(t *testing.T) {
	s := NewRelay()
	rng := rand.New(rand.NewSource(42))

	require.NoError(t, s.Draw(relayPools(6), 3, rng))
	assert.Equal(t, RelayDrawn, s.Status)
	require.Len(t, s.Teams, 3)

	seen := map[int]bool{}
	for i, team := range s.Teams {
		assert.Equal(t, i+1, team.Number)
		require.Len(t, team.Members, 8)

		counts := map[string]int{}
		for _, m := range team.Members {
			counts[m.CompetitorType+"/"+m.Gender]++
			assert.False(t, seen[m.CompetitorID], "competitor drawn twice")
			seen[m.CompetitorID] = true
		}
		for _, bucket := range []string{"pro/M", "pro/F", "college/M", "college/F"} {
			assert.Equal(t, 2, counts[bucket], "team %d bucket %s", team.Number, bucket)
		}
	}
}

func TestRelayDrawRefusesOverCapacity(t *testing.T) {
	s := NewRelay()
	rng := rand.New(rand.NewSource(1))

	assert.ErrorIs(t, s.Draw(relayPools(4), 3, rng), ErrRelayOverCapacity)
	assert.ErrorIs(t, s.Draw(relayPools(4), 0, rng), ErrRelayOverCapacity)
	assert.Equal(t, RelayNotDrawn, s.Status)

	require.NoError(t, s.Draw(relayPools(4), 2, rng))
	assert.ErrorIs(t, s.Draw(relayPools(4), 2, rng), ErrRelayAlreadyDrawn)
}

func TestRelayRecordTimesAndComplete(t *testing.T) {
	s := NewRelay()
	rng := rand.New(rand.NewSource(7))
	require.NoError(t, s.Draw(relayPools(4), 2, rng))

	assert.ErrorIs(t, s.RecordTime(1, "log_toss", 30), ErrRelayUnknownSubEvent)
	assert.ErrorIs(t, s.RecordTime(9, RelaySubEvents[0], 30), ErrRelayTeamNotFound)

	require.NoError(t, s.RecordTime(1, "partnered_sawing", 41.2))
	assert.Equal(t, RelayInProgress, s.Status)

	for _, sub := range RelaySubEvents[1:] {
		require.NoError(t, s.RecordTime(1, sub, 30))
	}
	team1, err := s.team(1)
	require.NoError(t, err)
	require.NotNil(t, team1.TotalTime)
	assert.InDelta(t, 131.2, *team1.TotalTime, 0.001)
	assert.Equal(t, RelayInProgress, s.Status, "one team still running")

	for _, sub := range RelaySubEvents {
		require.NoError(t, s.RecordTime(2, sub, 35))
	}
	assert.Equal(t, RelayCompleted, s.Status)

	standings := s.Standings()
	require.Len(t, standings, 2)
	assert.Equal(t, 1, standings[0].Number, "faster total leads")

	assert.ErrorIs(t, s.RecordTime(1, RelaySubEvents[0], 10), ErrBracketCompleted)
}

func TestRelayReplaceMember(t *testing.T) {
	s := NewRelay()
	rng := rand.New(rand.NewSource(3))
	require.NoError(t, s.Draw(relayPools(4), 1, rng))

	team := s.Teams[0]
	var outgoing RelayMember
	for _, m := range team.Members {
		if m.CompetitorType == "pro" && m.Gender == "F" {
			outgoing = m
			break
		}
	}

	wrongBucket := RelayMember{CompetitorID: 900, CompetitorType: "pro", Gender: "M"}
	assert.ErrorIs(t, s.ReplaceMember(1, outgoing.CompetitorID, wrongBucket), ErrRelayBucketMismatch)

	taken := team.Members[0]
	assert.ErrorIs(t, s.ReplaceMember(1, outgoing.CompetitorID, taken), ErrRelayMemberTaken)

	sub := RelayMember{CompetitorID: 901, CompetitorType: "pro", Name: "Alternate", Gender: "F"}
	require.NoError(t, s.ReplaceMember(1, outgoing.CompetitorID, sub))

	found := false
	for _, m := range team.Members {
		if m.CompetitorID == 901 {
			found = true
		}
		assert.NotEqual(t, outgoing.CompetitorID, m.CompetitorID)
	}
	assert.True(t, found)

	assert.ErrorIs(t, s.ReplaceMember(1, outgoing.CompetitorID, sub), ErrRelayMemberTaken)
}
