package model

// Gender is the optional gender attribute extracted for a person.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// SocialLinks holds per-network profile URLs. Slots are nullable; the
// merger fills only empty slots so an earlier extraction is never
// overwritten by a later one.
type SocialLinks struct {
	Instagram string `json:"instagram,omitempty"`
	Facebook  string `json:"facebook,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
	LinkedIn  string `json:"linkedin,omitempty"`
	TikTok    string `json:"tiktok,omitempty"`
}

// RelatedPerson is a person mentioned alongside a candidate (family,
// colleague, co-founder). Deduplicated by (FullName, LinkedIn).
type RelatedPerson struct {
	FullName string `json:"full_name"`
	Relation string `json:"relation,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
}

// Source records which provider result a candidate (or one of its
// fields) was extracted from. Deduplicated by (Provider, URL), keeping
// the first non-empty note.
type Source struct {
	Provider string `json:"provider"`
	URL      string `json:"url,omitempty"`
	Note     string `json:"note,omitempty"`
}

// Person is a candidate identity record. Before merging it represents a
// single extraction attempt's view; after merging it is the canonical
// entity persisted by the store and surfaced to the question funnel.
type Person struct {
	ID         string `json:"id,omitempty"`
	FullName   string `json:"full_name"`
	FirstName  string `json:"first_name,omitempty"`
	MiddleName string `json:"middle_name,omitempty"`
	LastName   string `json:"last_name,omitempty"`

	// Ordered string lists, case-insensitively deduplicated with
	// first-seen casing retained. Professions keep the primary role
	// first; the funnel's q1 options are built from professions[0].
	Professions []string `json:"professions"`
	Employers   []string `json:"employers"`
	Education   []string `json:"education"`
	Emails      []string `json:"emails"`
	Phones      []string `json:"phones"`
	Locations   []string `json:"locations"`

	Social        SocialLinks     `json:"social"`
	Age           *int            `json:"age,omitempty"`
	Gender        Gender          `json:"gender,omitempty"`
	RelatedPeople []RelatedPerson `json:"related_people"`
	Sources       []Source        `json:"sources"`

	// Confidence is the model's self-reported certainty in [0,1].
	// Merging takes the maximum of the two values.
	Confidence float64 `json:"confidence"`
}

// PrimaryProfession returns the first profession or "".
func (p *Person) PrimaryProfession() string {
	if len(p.Professions) == 0 {
		return ""
	}
	return p.Professions[0]
}

// ContactCount is the number of emails plus phones, used as a ranking
// tie-break in the best-effort fallback.
func (p *Person) ContactCount() int {
	return len(p.Emails) + len(p.Phones)
}
