package catalog

type ImportResponse struct {
	Message string         `json:"message"`
	Summary *ImportSummary `json:"summary"`
}

type BackfillResponse struct {
	OK      bool `json:"ok"`
	Updated int  `json:"updated"`
}

type FixPrefixRequest struct {
	Prefix string `json:"prefix"`
}

type FixPrefixResponse struct {
	OK      bool `json:"ok"`
	Renamed int  `json:"renamed"`
	Merged  int  `json:"merged"`
}
