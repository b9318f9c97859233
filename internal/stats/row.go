package stats

// Headers is the fixed column order of the stats worksheet. Row.Values
// returns cells in exactly this order.
var Headers = []string{
	"Date", "Match ID", "Tournament Code", "Game Duration (min)",
	"Team", "Summoner Name", "Tag", "Champion", "Role",
	"Kills", "Deaths", "Assists", "KDA",
	"CS", "CS/min",
	"Total Damage to Champions", "Damage/min",
	"Gold Earned", "Gold/min",
	"Vision Score", "Wards Placed", "Wards Killed", "Control Wards Bought",
	"Double Kills", "Triple Kills", "Quadra Kills", "Penta Kills",
	"Physical Damage", "Magic Damage", "True Damage",
	"Damage Taken", "Damage Mitigated",
	"Turret Kills", "Turret Damage", "Objective Damage",
	"Team Dragons", "Team First Dragon", "Team Barons", "Team First Baron",
	"Team Heralds", "Team First Herald", "Team Grubs", "Team First Grubs",
	"Team Towers", "Team First Tower", "Team First Blood",
	"Result",
}

// Row is one participant's line for one match.
type Row struct {
	Date            string
	MatchID         string
	TournamentCode  string
	DurationMinutes float64

	Side         string
	SummonerName string
	Tag          string
	Champion     string
	Role         string

	Kills   int
	Deaths  int
	Assists int
	KDA     float64

	CS          int
	CSPerMinute float64

	Damage          int
	DamagePerMinute float64

	Gold          int
	GoldPerMinute float64

	VisionScore        int
	WardsPlaced        int
	WardsKilled        int
	ControlWardsBought int

	DoubleKills int
	TripleKills int
	QuadraKills int
	PentaKills  int

	PhysicalDamage  int
	MagicDamage     int
	TrueDamage      int
	DamageTaken     int
	DamageMitigated int

	TurretKills     int
	TurretDamage    int
	ObjectiveDamage int

	Objectives TeamObjectives

	Result string
}

// TeamObjectives are the participant's team totals, repeated on each of the
// team's rows.
type TeamObjectives struct {
	Dragons     int
	FirstDragon bool
	Barons      int
	FirstBaron  bool
	Heralds     int
	FirstHerald bool
	Grubs       int
	FirstGrubs  bool
	Towers      int
	FirstTower  bool
	FirstBlood  bool
}

// Values returns the row's cells in Headers order.
func (r Row) Values() []interface{} {
	return []interface{}{
		r.Date, r.MatchID, r.TournamentCode, r.DurationMinutes,
		r.Side, r.SummonerName, r.Tag, r.Champion, r.Role,
		r.Kills, r.Deaths, r.Assists, r.KDA,
		r.CS, r.CSPerMinute,
		r.Damage, r.DamagePerMinute,
		r.Gold, r.GoldPerMinute,
		r.VisionScore, r.WardsPlaced, r.WardsKilled, r.ControlWardsBought,
		r.DoubleKills, r.TripleKills, r.QuadraKills, r.PentaKills,
		r.PhysicalDamage, r.MagicDamage, r.TrueDamage,
		r.DamageTaken, r.DamageMitigated,
		r.TurretKills, r.TurretDamage, r.ObjectiveDamage,
		r.Objectives.Dragons, yesNo(r.Objectives.FirstDragon), r.Objectives.Barons, yesNo(r.Objectives.FirstBaron),
		r.Objectives.Heralds, yesNo(r.Objectives.FirstHerald), r.Objectives.Grubs, yesNo(r.Objectives.FirstGrubs),
		r.Objectives.Towers, yesNo(r.Objectives.FirstTower), yesNo(r.Objectives.FirstBlood),
		r.Result,
	}
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
