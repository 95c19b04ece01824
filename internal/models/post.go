package models

import "time"

type Post struct {
	ID             string    `json:"id"`
	Author         string    `json:"author"`
	Content        string    `json:"content"`
	Likes          int       `json:"likes"`
	Timestamp      time.Time `json:"timestamp"`
	IsAuthorPublic bool      `json:"is_author_public"`
}
