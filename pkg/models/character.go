package models

import "strings"

const (
	// NoDataSentinel is the only selectable entry when a dataset is empty or failed to load.
	NoDataSentinel = "未加载角色数据"
	// NoFileSentinel is listed when the data directory holds no dataset files.
	NoFileSentinel = "未找到JSON文件"
	// UnnamedCharacter is the display name of a record without any name.
	UnnamedCharacter = "未命名角色"
)

// CharacterRecord is one entry of a dataset file. Fields are trimmed at load
// time and never mutated afterwards.
type CharacterRecord struct {
	NameCN   string `json:"name_cn"`
	NameEN   string `json:"name_en"`
	IconURL  string `json:"icon_url"`
	SourceCN string `json:"source_cn,omitempty"`
	SourceEN string `json:"source_en,omitempty"`
	Tag      string `json:"tag,omitempty"`
}

// DisplayName is the label offered in the character selector:
// "CN (EN)" when both names exist, otherwise whichever one is set.
func (c CharacterRecord) DisplayName() string {
	cn := strings.TrimSpace(c.NameCN)
	en := strings.TrimSpace(c.NameEN)

	switch {
	case cn != "" && en != "":
		return cn + " (" + en + ")"
	case cn != "":
		return cn
	case en != "":
		return en
	default:
		return UnnamedCharacter
	}
}

// IsSentinel reports whether v is one of the placeholder entries rather than a real choice.
func IsSentinel(v string) bool {
	return v == NoDataSentinel || v == NoFileSentinel
}
