package remote

// BasicResponse is the service's generic status envelope.
type BasicResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

// LoginResponse is the payload of a successful login.
type LoginResponse struct {
	Error       bool        `json:"error"`
	Message     string      `json:"message"`
	LoginResult LoginResult `json:"loginResult"`
}

type LoginResult struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Token  string `json:"token"`
}

// StoriesResponse is one remote page of stories.
type StoriesResponse struct {
	Error     bool            `json:"error"`
	Message   string          `json:"message"`
	ListStory []StoryResponse `json:"listStory"`
}

// StoryResponse is a single story record as delivered by the service.
// Lon and Lat are present only when the author shared location.
type StoryResponse struct {
	ID          string   `json:"id"`
	PhotoURL    string   `json:"photoUrl"`
	CreatedAt   string   `json:"createdAt"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Lon         *float64 `json:"lon,omitempty"`
	Lat         *float64 `json:"lat,omitempty"`
}
