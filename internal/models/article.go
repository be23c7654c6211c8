package models

import "time"

type Article struct {
	ID        string    `db:"article_id"     json:"articleId"`
	OwnerID   string    `db:"account_userid" json:"userid"`
	Title     string    `db:"title"          json:"articleTitle"`
	Contents  string    `db:"contents"       json:"articleContents"`
	CreatedAt time.Time `db:"created_at"     json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at"     json:"updatedAt"`
}

// swagger:model ArticleWriteRequest
type ArticleWriteRequest struct {
	Title    string `json:"articleTitle"    example:"articleTitle"`
	Contents string `json:"articleContents" example:"articleContents"`
}

// swagger:model ArticleUpdateRequest
type ArticleUpdateRequest struct {
	ArticleID string `json:"articleId"       example:"3f1c2a9e-8d7b-4c1e-9a55-0d8c6e2b7f10"`
	Title     string `json:"articleTitle"    example:"updateArticleTitle"`
	Contents  string `json:"articleContents" example:"updateArticleContents"`
}

type ArticleIDResponse struct {
	ArticleID string `json:"articleId"`
}

type DeleteCountResponse struct {
	Count int64 `json:"count"`
}

// ArticleCommentsResponse: CommentIDs всегда массив, пустой вместо null.
type ArticleCommentsResponse struct {
	ArticleID  string   `json:"articleId"`
	CommentIDs []string `json:"commentsId"`
}
