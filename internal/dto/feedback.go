package dto

type RateRequest struct {
	Question  string `json:"question"`
	Topic     string `json:"topic"`
	Rating    int    `json:"rating"` // 1 or -1
	UserQuery string `json:"user_query"`
}

type RateResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type QuestionStatsResponse struct {
	Question string `json:"question"`
	Topic    string `json:"topic"`
	Likes    int    `json:"likes"`
	Dislikes int    `json:"dislikes"`
	Score    int    `json:"score"`
}

type HistoryEntryResponse struct {
	Ts     int64  `json:"ts"`
	Query  string `json:"query"`
	Answer string `json:"answer"`
	Source string `json:"source"`
}
