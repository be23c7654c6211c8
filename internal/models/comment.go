package models

import "time"

type Comment struct {
	ID        string    `db:"comment_id"     json:"commentId"`
	ArticleID string    `db:"article_id"     json:"articleId"`
	OwnerID   string    `db:"account_userid" json:"userid"`
	Contents  string    `db:"contents"       json:"commentContents"`
	CreatedAt time.Time `db:"created_at"     json:"createdAt"`
}

// swagger:model CommentWriteRequest
type CommentWriteRequest struct {
	ArticleID string `json:"articleId"       example:"3f1c2a9e-8d7b-4c1e-9a55-0d8c6e2b7f10"`
	Contents  string `json:"commentContents" example:"commentsContents"`
}

type CommentIDResponse struct {
	CommentID string `json:"commentId"`
}
