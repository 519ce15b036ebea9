package models

type LinkOwner struct {
	Username string `json:"username"`
}

type LinkPreview struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Favicon     string `json:"favicon,omitempty"`
	Image       string `json:"image,omitempty"`
}

// Link is the client's read-only copy of a shared link.
type Link struct {
	ID          string       `json:"id"`
	URL         string       `json:"url"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	UserID      string       `json:"user_id"`
	ClickCount  int64        `json:"click_count"`
	CreatedAt   Timestamp    `json:"created_at"`
	UpdatedAt   Timestamp    `json:"updated_at"`
	User        LinkOwner    `json:"user"`
	Preview     *LinkPreview `json:"preview,omitempty"`
}

// Topic is what the list view sorts and filters as "topic": the title.
func (l Link) Topic() string {
	return l.Title
}

// Uploader prefers the uploader's username and falls back to the user id.
func (l Link) Uploader() string {
	if l.User.Username != "" {
		return l.User.Username
	}
	return l.UserID
}

// NewLink is the payload for sharing a link.
type NewLink struct {
	URL         string `json:"url" validate:"required,weburl"`
	Title       string `json:"title" validate:"notblank"`
	Description string `json:"description" validate:"notblank,min=10"`
}
