package entity

import "time"

// ReferralEdge attributes one registration to a referrer.
// A referred user has at most one edge, ever; ReferrerUserID never equals ReferredUserID.
type ReferralEdge struct {
	ReferredUserID int64     `json:"referred_user_id" bson:"_id"`
	ReferrerUserID int64     `json:"referrer_user_id" bson:"referrer_user_id"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at"`
}
