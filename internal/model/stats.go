package model

// Totals are the headline counts on the admin dashboard.
type Totals struct {
	Captions int `json:"captions"`
	Users    int `json:"users"`
	Votes    int `json:"votes"`
	Images   int `json:"images"`
}

// Dashboard is the admin landing view.
type Dashboard struct {
	Totals         Totals    `json:"totals"`
	RecentCaptions []Caption `json:"recentCaptions"`
	RecentUsers    []Profile `json:"recentUsers"`
}

// UserActivity is one row of the admin user list.
type UserActivity struct {
	Profile
	DisplayName  string `json:"displayName"`
	Role         string `json:"role"`
	CaptionCount int    `json:"captionCount"`
	VoteCount    int    `json:"voteCount"`
}
