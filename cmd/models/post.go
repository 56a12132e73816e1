package models

// Post is a board entry. AuthorNickname and AuthorProfileImage are
// snapshots of the author taken at creation time and are not refreshed
// when the profile changes later. Likes mirrors len(LikeUsers).
type Post struct {
	ID                 int    `json:"id"`
	Title              string `json:"title"`
	Content            string `json:"content"`
	ImageURL           string `json:"image_url,omitempty"`
	UserID             int    `json:"user_id"`
	AuthorNickname     string `json:"author_nickname"`
	AuthorProfileImage string `json:"author_profile_image"`
	CreatedAt          string `json:"created_at"`
	UpdatedAt          string `json:"updated_at"`
	Likes              int    `json:"likes"`
	LikeUsers          []int  `json:"like_users,omitempty"`
	CommentsCount      int    `json:"comments_count"`
	ViewCount          int    `json:"view_count"`
}

func (p *Post) GetID() int   { return p.ID }
func (p *Post) SetID(id int) { p.ID = id }

// LikedBy reports whether the user is in the like set.
func (p *Post) LikedBy(userID int) bool {
	for _, id := range p.LikeUsers {
		if id == userID {
			return true
		}
	}
	return false
}
