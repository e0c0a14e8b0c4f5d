package model

import "time"

type Group struct {
	ID                   string    `json:"id"`
	GroupName            string    `json:"groupName"`
	GroupDescription     string    `json:"groupDescription"`
	GroupFullDescription string    `json:"groupFullDescription"`
	CreatedAt            time.Time `json:"createdAt"`
}
