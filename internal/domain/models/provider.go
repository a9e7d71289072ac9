package models

type ProviderKind uint8

const (
	ProviderUnknown ProviderKind = iota
	ProviderFootballData
	ProviderAPIFootball
)

func (k ProviderKind) String() string {
	switch k {
	case ProviderFootballData:
		return "football-data"
	case ProviderAPIFootball:
		return "api-football"
	default:
		return "unknown"
	}
}

type ProviderConfig struct {
	Name     string
	BaseURL  string
	APIKey   string
	Enabled  bool
	IsActive bool
}
