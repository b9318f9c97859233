package stats

import (
	"math"
	"time"

	"tournament-stats/internal/riot"
)

const (
	blueTeamID = 100

	dateLayout = "2006-01-02 03:04 PM"
)

// ExtractRows turns one match into one Row per participant. It does no I/O
// and returns the same rows for the same input.
func ExtractRows(code string, match *riot.MatchResponse, loc *time.Location) []Row {
	if match == nil {
		return nil
	}
	if loc == nil {
		loc = time.UTC
	}

	info := match.Info
	durationSec := info.DurationSeconds()
	date := time.UnixMilli(info.StartMillis()).In(loc).Format(dateLayout)

	matchID := match.Metadata.MatchID
	if matchID == "" {
		matchID = "Unknown"
	}
	if code == "" {
		code = info.TournamentCode
	}

	objectives := teamObjectives(info.Teams)

	rows := make([]Row, 0, len(info.Participants))
	for _, p := range info.Participants {
		cs := CreepScore(p)
		rows = append(rows, Row{
			Date:            date,
			MatchID:         matchID,
			TournamentCode:  code,
			DurationMinutes: round(float64(durationSec)/60, 1),

			Side:         side(p.TeamID),
			SummonerName: displayName(p),
			Tag:          p.RiotIdTagline,
			Champion:     orUnknown(p.ChampionName),
			Role:         orUnknown(p.TeamPosition),

			Kills:   p.Kills,
			Deaths:  p.Deaths,
			Assists: p.Assists,
			KDA:     KDA(p.Kills, p.Deaths, p.Assists),

			CS:          cs,
			CSPerMinute: PerMinute(cs, durationSec),

			Damage:          p.TotalDamageDealtToChampions,
			DamagePerMinute: PerMinute(p.TotalDamageDealtToChampions, durationSec),

			Gold:          p.GoldEarned,
			GoldPerMinute: PerMinute(p.GoldEarned, durationSec),

			VisionScore:        p.VisionScore,
			WardsPlaced:        p.WardsPlaced,
			WardsKilled:        p.WardsKilled,
			ControlWardsBought: p.VisionWardsBoughtInGame,

			DoubleKills: p.DoubleKills,
			TripleKills: p.TripleKills,
			QuadraKills: p.QuadraKills,
			PentaKills:  p.PentaKills,

			PhysicalDamage:  p.PhysicalDamageDealtToChampions,
			MagicDamage:     p.MagicDamageDealtToChampions,
			TrueDamage:      p.TrueDamageDealtToChampions,
			DamageTaken:     p.TotalDamageTaken,
			DamageMitigated: p.DamageSelfMitigated,

			TurretKills:     p.TurretKills,
			TurretDamage:    p.DamageDealtToTurrets,
			ObjectiveDamage: p.DamageDealtToObjectives,

			Objectives: objectives[p.TeamID],

			Result: result(p.Win),
		})
	}
	return rows
}

// KDA is (kills + assists) / deaths, rounded to 2 decimals. A deathless game
// reports kills + assists.
func KDA(kills, deaths, assists int) float64 {
	if deaths == 0 {
		return float64(kills + assists)
	}
	return round(float64(kills+assists)/float64(deaths), 2)
}

// CreepScore is lane minions plus jungle monsters.
func CreepScore(p riot.MatchParticipant) int {
	return p.TotalMinionsKilled + p.NeutralMinionsKilled
}

// PerMinute divides value by the game length in minutes, rounded to 2
// decimals. Remakes with no recorded duration yield 0.
func PerMinute(value int, durationSeconds int64) float64 {
	if durationSeconds <= 0 {
		return 0
	}
	return round(float64(value)/(float64(durationSeconds)/60), 2)
}

func teamObjectives(teams []riot.MatchTeam) map[int]TeamObjectives {
	out := make(map[int]TeamObjectives, len(teams))
	for _, t := range teams {
		o := t.Objectives
		out[t.TeamID] = TeamObjectives{
			Dragons:     o.Dragon.Kills,
			FirstDragon: o.Dragon.First,
			Barons:      o.Baron.Kills,
			FirstBaron:  o.Baron.First,
			Heralds:     o.RiftHerald.Kills,
			FirstHerald: o.RiftHerald.First,
			Grubs:       o.Horde.Kills,
			FirstGrubs:  o.Horde.First,
			Towers:      o.Tower.Kills,
			FirstTower:  o.Tower.First,
			FirstBlood:  o.Champion.First,
		}
	}
	return out
}

func displayName(p riot.MatchParticipant) string {
	if p.RiotIdGameName != "" {
		return p.RiotIdGameName
	}
	return orUnknown(p.SummonerName)
}

func side(teamID int) string {
	if teamID == blueTeamID {
		return "Blue"
	}
	return "Red"
}

func result(win bool) string {
	if win {
		return "Win"
	}
	return "Loss"
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
