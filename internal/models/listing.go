package models

// Listing is a normalized job posting from one provider.
// Two listings with the same UID are the same posting.
type Listing struct {
	UID      string `json:"uid"` // provider tag + ":" + provider id
	Title    string `json:"title"`
	Company  string `json:"company"`
	Location string `json:"location"`
	URL      string `json:"url"`
	Source   string `json:"source"`
	PostedAt string `json:"posted_at,omitempty"` // as reported by the provider, display only
}

// Deliverable reports whether the listing can be sent to a subscriber.
func (l Listing) Deliverable() bool {
	return l.URL != ""
}

// Delivery records that a listing was sent to a subscriber.
type Delivery struct {
	SubscriberID int64  `db:"chat_id"`
	UID          string `db:"job_uid"`
	DeliveredAt  int64  `db:"sent_at"` // unix seconds
}
