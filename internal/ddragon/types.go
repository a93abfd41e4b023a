package ddragon

type ChampionList struct {
	Version string                     `json:"version"`
	Data    map[string]ChampionSummary `json:"data"`
}

type ChampionSummary struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
}

type ChampionDetail struct {
	Data map[string]struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Skins []Skin `json:"skins"`
	} `json:"data"`
}

// Skin is one entry of a champion's skins list. Num 0 is the base skin.
type Skin struct {
	ID      string `json:"id"`
	Num     int    `json:"num"`
	Name    string `json:"name"`
	Chromas bool   `json:"chromas"`
}
