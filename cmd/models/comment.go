package models

// Comment belongs to a post. Author fields follow the same
// snapshot-at-creation rule as Post.
type Comment struct {
	ID                 int    `json:"id"`
	PostID             int    `json:"post_id"`
	UserID             int    `json:"user_id"`
	AuthorNickname     string `json:"author_nickname"`
	AuthorProfileImage string `json:"author_profile_image"`
	Content            string `json:"content"`
	CreatedAt          string `json:"created_at"`
	UpdatedAt          string `json:"updated_at"`
}

func (c *Comment) GetID() int   { return c.ID }
func (c *Comment) SetID(id int) { c.ID = id }
