package image

import "errors"

type CreateImageDTO struct {
	URL       string `json:"url" binding:"required,url"`
	Alt       string `json:"alt"`
	Width     int    `json:"width"  binding:"min=0"`
	Height    int    `json:"height" binding:"min=0"`
	SortOrder *int   `json:"sort_order"`
}

type syncResponse struct {
	TaskID  string `json:"task_id"`
	Pending int    `json:"pending"`
}

var (
	errImageNotFound   = errors.New("image not found")
	errProductNotFound = errors.New("product not found")
	errSyncDisabled    = errors.New("object storage is not configured")
	errNothingToSync   = errors.New("no unsynced images")
)
