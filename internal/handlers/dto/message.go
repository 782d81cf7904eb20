package dto

import "time"

type SendMessageRequest struct {
	Text  string   `json:"text" binding:"max=4000"`
	Files []string `json:"files" binding:"max=10"`
}

type EditMessageRequest struct {
	Text string `json:"text" binding:"required,max=4000"`
}

type SendDirectMessageRequest struct {
	Content string `json:"content" binding:"max=4000"`
}

type EditDirectMessageRequest struct {
	Content string `json:"content" binding:"required,max=4000"`
}

type MarkReadResponse struct {
	Updated int64 `json:"updated"`
}

type LastSeenResponse struct {
	LastSeen *time.Time `json:"last_seen"`
}

type FileURLResponse struct {
	StorageID string `json:"storage_id"`
	URL       string `json:"url"`
}
