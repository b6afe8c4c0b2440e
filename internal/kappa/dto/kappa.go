package dto

type SearchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
	Skip  int    `json:"skip"`
}
