package model

// Option is a single selectable answer for a funnel question.
// Label is cleaned for display; Value is the uncleaned original string
// used for filtering.
type Option struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// Question is generated fresh per request from the current session and
// candidate set; never persisted.
type Question struct {
	QuestionID    FlowState `json:"questionId"`
	Title         string    `json:"title"`
	Type          string    `json:"type"` // always "single_select"
	Options       []Option  `json:"options"`
	HasNoneOption bool      `json:"hasNoneOfThese"`
	SessionID     string    `json:"sessionId"`
	NextOnSelect  FlowState `json:"nextOnSelect"`
}

// PersonResult is the presentation shape of one matched person. Display
// fields may be back-filled from the selected answers in best-effort
// mode; the stored entity is never altered.
type PersonResult struct {
	PersonID      string          `json:"personId"`
	FullName      string          `json:"fullName"`
	FirstName     string          `json:"firstName,omitempty"`
	MiddleName    string          `json:"middleName,omitempty"`
	LastName      string          `json:"lastName,omitempty"`
	Profession    string          `json:"profession,omitempty"`
	Location      string          `json:"location,omitempty"`
	Employer      string          `json:"employer,omitempty"`
	Education     []string        `json:"education"`
	Emails        []string        `json:"emails"`
	Phones        []string        `json:"phones"`
	Social        SocialLinks     `json:"social"`
	Age           *int            `json:"age,omitempty"`
	Gender        Gender          `json:"gender,omitempty"`
	RelatedPeople []RelatedPerson `json:"relatedPeople"`
	Confidence    float64         `json:"confidence"`
}

// FinalResults is the terminal artifact when the funnel reaches done
// with at least one non-"none" answer recorded.
type FinalResults struct {
	QuestionID FlowState      `json:"questionId"` // always "done"
	Results    []PersonResult `json:"results"`
	CacheUsed  bool           `json:"cacheUsed"`
}

// NoMatch is the terminal artifact when all four answers were "none".
type NoMatch struct {
	QuestionID string `json:"questionId"` // always "no_match"
}
