package preview

// FallbackTitle is shown when metadata could not be resolved.
const FallbackTitle = "No Preview Available"

// State is a snapshot of a card's input and display fields.
type State struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Link        string `json:"link"`
	Loading     bool   `json:"loading"`
}

// Metadata holds the display fields resolved for one URL.
type Metadata struct {
	Title       string
	Description string
	Image       string
	Link        string
}

// apply copies resolved metadata onto the display fields.
func (s *State) apply(md Metadata) {
	s.Title = md.Title
	s.Description = md.Description
	s.Image = md.Image
	s.Link = md.Link
}

// fail puts the display fields into the fallback state.
func (s *State) fail() {
	s.Title = FallbackTitle
	s.Description = ""
	s.Image = ""
	s.Link = ""
}

// reset clears every field except URL.
func (s *State) reset() {
	*s = State{URL: s.URL}
}
