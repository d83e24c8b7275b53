package youtube

// Comment is a top-level comment from a comment thread.
type Comment struct {
	ID      string
	Author  string
	Text    string
	VideoID string
}

// CommentPage is one page of comment threads.
type CommentPage struct {
	Comments      []Comment
	NextPageToken string
}

// ThreadQuery selects comment threads of one video, newest first.
type ThreadQuery struct {
	VideoID   string
	Keyword   string
	PageSize  int64
	PageToken string
}

// Video is the snapshot the reply cycle needs from a video.
type Video struct {
	ID          string
	Title       string
	CategoryID  string
	Description string
	ChannelID   string
	LikeCount   int64
}

// Channel is the subscriber snapshot of a channel.
type Channel struct {
	ID              string
	SubscriberCount int64
}

// VideoUpdate rewrites the snippet fields the Data API requires on update.
type VideoUpdate struct {
	ID          string
	Title       string
	CategoryID  string
	Description string
}
