package media

// Item is one entry of an ordered media collection. Items loaded from the
// server carry a stable id; uploads get a generated id and a transient URL
// owned by the collection's blob registry.
type Item struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	Name      string `json:"name,omitempty"`
	MIMEType  string `json:"mime_type,omitempty"`
	Size      int64  `json:"size,omitempty"`
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
	VideoID   string `json:"video_id,omitempty"`
	Thumbnail string `json:"thumbnail,omitempty"`
	Transient bool   `json:"transient"`
}

// Upload is a raw file handed to Add.
type Upload struct {
	Name        string
	ContentType string
	Data        []byte
}

// Reason classifies why a file was not added.
type Reason string

const (
	ReasonLimitReached    Reason = "limit_reached"
	ReasonInvalidType     Reason = "invalid_type"
	ReasonTooLarge        Reason = "too_large"
	ReasonWrongDimensions Reason = "wrong_dimensions"
	ReasonUnreadable      Reason = "unreadable"
)

// Rejection records a file skipped by Add.
type Rejection struct {
	Name    string `json:"name"`
	Reason  Reason `json:"reason"`
	Message string `json:"message"`
}

// AddResult is the outcome of one Add batch.
type AddResult struct {
	Added    []Item      `json:"added"`
	Rejected []Rejection `json:"rejected"`
}
