package model

import "time"

// Membership is the association row between a client and a community. It is
// upserted on every enrollment so listing a community's members never depends
// on subscription state.
type Membership struct {
	ClientID    string
	CommunityID string
	JoinedAt    time.Time
}
