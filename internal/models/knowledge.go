package models

// KnowledgeItem is one FAQ-style entry from the versioned catalog.
// Question, Answer and Topic are always present; everything else is optional
// structured metadata carried through to the response untouched.
type KnowledgeItem struct {
	Question      string      `json:"question"`
	Answer        string      `json:"answer"`
	Topic         string      `json:"topic"`
	Steps         []string    `json:"steps,omitempty"`
	SourceURL     *string     `json:"source_url,omitempty"`
	Verified      *bool       `json:"verified,omitempty"`
	Cost          *string     `json:"cost,omitempty"`
	Contacts      []Contact   `json:"contacts,omitempty"`
	QuickLinks    []QuickLink `json:"quick_links,omitempty"`
	Deadline      *string     `json:"deadline,omitempty"`
	RelatedTopics []string    `json:"related_topics,omitempty"`
}

type Contact struct {
	Type  string `json:"type"`
	Label string `json:"label"`
	Value string `json:"value"`
}

type QuickLink struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}
