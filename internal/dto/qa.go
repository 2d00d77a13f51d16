package dto

import "campus-companion/internal/models"

// QueryResolution is the unit returned for every resolved query: the answer
// text plus provenance metadata and whatever structured fields the matched
// knowledge item carried. Absent fields stay absent in the JSON, they are
// never rendered as empty strings.
type QueryResolution struct {
	Answer          string             `json:"answer"`
	MatchedQuestion *string            `json:"matched_question,omitempty"`
	Topic           *string            `json:"topic,omitempty"`
	Steps           []string           `json:"steps,omitempty"`
	SourceURL       *string            `json:"source_url,omitempty"`
	Verified        *bool              `json:"verified,omitempty"`
	Similarity      *float64           `json:"similarity,omitempty"`
	Source          string             `json:"source"`
	Cost            *string            `json:"cost,omitempty"`
	Contacts        []models.Contact   `json:"contacts,omitempty"`
	QuickLinks      []models.QuickLink `json:"quick_links,omitempty"`
	Deadline        *string            `json:"deadline,omitempty"`
	RelatedTopics   []string           `json:"related_topics,omitempty"`
}

type TopicsResponse struct {
	Topics map[string]int `json:"topics"`
}

type TopicQuestion struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Topic    string `json:"topic"`
}

type TopicQuestionsResponse struct {
	Topic     string          `json:"topic"`
	Count     int             `json:"count"`
	Questions []TopicQuestion `json:"questions"`
}

type ReloadResponse struct {
	Status string `json:"status"`
	Items  int    `json:"items"`
}
