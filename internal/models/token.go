package models

import (
	"time"
)

// TokenInfo mirrors the Redis hash kept per issued API token.
type TokenInfo struct {
	Token           string    `json:"token"`
	Username        string    `json:"username"`
	RequestCount    int       `json:"request_count"`
	LastRequestTime time.Time `json:"last_request_dttm_utc"`
	CreatedTime     time.Time `json:"created_dttm_utc"`
}
