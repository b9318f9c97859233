package riot

// MatchResponse represents the response from /lol/match/v5/matches/{matchId}
type MatchResponse struct {
	Metadata MatchMetadata `json:"metadata"`
	Info     MatchInfo     `json:"info"`
}

type MatchMetadata struct {
	MatchID      string   `json:"matchId"`
	Participants []string `json:"participants"` // PUUIDs
}

type MatchInfo struct {
	GameCreation       int64              `json:"gameCreation"`
	GameStartTimestamp int64              `json:"gameStartTimestamp"`
	GameEndTimestamp   int64              `json:"gameEndTimestamp"`
	GameDuration       int64              `json:"gameDuration"`
	GameVersion        string             `json:"gameVersion"`
	GameType           string             `json:"gameType"` // CUSTOM_GAME, MATCHED_GAME
	QueueID            int                `json:"queueId"`
	TournamentCode     string             `json:"tournamentCode"`
	Participants       []MatchParticipant `json:"participants"`
	Teams              []MatchTeam        `json:"teams"`
}

// DurationSeconds returns the game length in seconds. Matches created before
// gameEndTimestamp was introduced report gameDuration in milliseconds.
func (i MatchInfo) DurationSeconds() int64 {
	if i.GameEndTimestamp == 0 && i.GameDuration > 0 {
		return i.GameDuration / 1000
	}
	return i.GameDuration
}

// StartMillis returns the game start as Unix milliseconds, falling back to
// the lobby creation time.
func (i MatchInfo) StartMillis() int64 {
	if i.GameStartTimestamp > 0 {
		return i.GameStartTimestamp
	}
	return i.GameCreation
}

// Queue IDs that tournament-code lobbies are played under.
// 0 = custom game, 3130 = tournament/Battlefy custom game.
var CustomQueueIDs = map[int]bool{
	0:    true,
	3130: true,
}

// IsCustomGame reports whether the match was played in a custom lobby.
func (i MatchInfo) IsCustomGame() bool {
	return CustomQueueIDs[i.QueueID] || i.GameType == "CUSTOM_GAME"
}

type MatchParticipant struct {
	ParticipantID  int    `json:"participantId"`
	PUUID          string `json:"puuid"`
	RiotIdGameName string `json:"riotIdGameName"`
	RiotIdTagline  string `json:"riotIdTagline"`
	SummonerName   string `json:"summonerName"`
	ChampionID     int    `json:"championId"`
	ChampionName   string `json:"championName"`
	TeamPosition   string `json:"teamPosition"` // TOP, JUNGLE, MIDDLE, BOTTOM, UTILITY
	TeamID         int    `json:"teamId"`       // 100 = Blue, 200 = Red
	Win            bool   `json:"win"`

	Kills   int `json:"kills"`
	Deaths  int `json:"deaths"`
	Assists int `json:"assists"`

	DoubleKills int `json:"doubleKills"`
	TripleKills int `json:"tripleKills"`
	QuadraKills int `json:"quadraKills"`
	PentaKills  int `json:"pentaKills"`

	TotalMinionsKilled   int `json:"totalMinionsKilled"`
	NeutralMinionsKilled int `json:"neutralMinionsKilled"`

	TotalDamageDealtToChampions    int `json:"totalDamageDealtToChampions"`
	PhysicalDamageDealtToChampions int `json:"physicalDamageDealtToChampions"`
	MagicDamageDealtToChampions    int `json:"magicDamageDealtToChampions"`
	TrueDamageDealtToChampions     int `json:"trueDamageDealtToChampions"`
	TotalDamageTaken               int `json:"totalDamageTaken"`
	DamageSelfMitigated            int `json:"damageSelfMitigated"`
	DamageDealtToTurrets           int `json:"damageDealtToTurrets"`
	DamageDealtToObjectives        int `json:"damageDealtToObjectives"`
	TurretKills                    int `json:"turretKills"`

	GoldEarned int `json:"goldEarned"`

	VisionScore             int `json:"visionScore"`
	WardsPlaced             int `json:"wardsPlaced"`
	WardsKilled             int `json:"wardsKilled"`
	VisionWardsBoughtInGame int `json:"visionWardsBoughtInGame"`
}

type MatchTeam struct {
	TeamID     int            `json:"teamId"`
	Win        bool           `json:"win"`
	Objectives TeamObjectives `json:"objectives"`
}

type TeamObjectives struct {
	Atakhan    Objective `json:"atakhan"`
	Baron      Objective `json:"baron"`
	Champion   Objective `json:"champion"`
	Dragon     Objective `json:"dragon"`
	Horde      Objective `json:"horde"` // Void grubs
	Inhibitor  Objective `json:"inhibitor"`
	RiftHerald Objective `json:"riftHerald"`
	Tower      Objective `json:"tower"`
}

type Objective struct {
	First bool `json:"first"`
	Kills int  `json:"kills"`
}

// errorBody is the JSON error envelope Riot returns on non-2xx responses.
type errorBody struct {
	Status struct {
		Message    string `json:"message"`
		StatusCode int    `json:"status_code"`
	} `json:"status"`
}
