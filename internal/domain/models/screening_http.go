package models

// Requests for screening HTTP endpoints. Defined in domain for consistency and reuse.

type ScreenRequest struct {
	Market      string   `query:"market" json:"market" default:"ALL" validate:"oneof=US KR ALL"`
	MinScore    int      `query:"min_score" json:"min_score" default:"50" validate:"gte=-100,lte=200"`
	PerfectOnly bool     `query:"perfect_only" json:"perfect_only"`
	Limit       int      `query:"limit" json:"limit" default:"20" validate:"gte=1,lte=200"`
	Filters     []string `json:"filters" validate:"required,min=1,dive,oneof=cloud_trend squeeze ma_alignment cup_handle"`
	CombineMode string   `query:"combine_mode" json:"combine_mode" default:"any" validate:"oneof=any all"`
}

type SingleFilterRequest struct {
	Market   string `query:"market" json:"market" default:"ALL" validate:"oneof=US KR ALL"`
	MinScore int    `query:"min_score" json:"min_score" default:"40" validate:"gte=-100,lte=200"`
	Limit    int    `query:"limit" json:"limit" default:"20" validate:"gte=1,lte=200"`
}

type HistoryRequest struct {
	From     string `query:"from" json:"from"`
	To       string `query:"to" json:"to"`
	Market   string `query:"market" json:"market" validate:"omitempty,oneof=US KR"`
	Ticker   string `query:"ticker" json:"ticker"`
	MinScore int    `query:"min_score" json:"min_score" default:"50" validate:"gte=-100,lte=200"`
	Limit    int    `query:"limit" json:"limit" default:"100" validate:"gte=1,lte=1000"`
	Offset   int    `query:"offset" json:"offset" validate:"gte=0"`
}
