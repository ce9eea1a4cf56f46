package youtube

import "gopkg.in/guregu/null.v3"

// VideoStats is the engagement snapshot of a single video. Counts the
// platform withholds (e.g. hidden like counts) stay null.
type VideoStats struct {
	VideoID  string
	Views    null.Int
	Likes    null.Int
	Comments null.Int
}

type searchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title string `json:"title"`
		} `json:"snippet"`
	} `json:"items"`
}

type videosResponse struct {
	Items []struct {
		ID         string `json:"id"`
		Statistics struct {
			// the stats api reports counts as decimal strings
			ViewCount    string `json:"viewCount"`
			LikeCount    string `json:"likeCount"`
			CommentCount string `json:"commentCount"`
		} `json:"statistics"`
	} `json:"items"`
}

type errorResponse struct {
	Error struct {
		Code   int `json:"code"`
		Errors []struct {
			Reason string `json:"reason"`
		} `json:"errors"`
	} `json:"error"`
}

func (e errorResponse) quotaExceeded() bool {
	for _, detail := range e.Error.Errors {
		if detail.Reason == "quotaExceeded" || detail.Reason == "dailyLimitExceeded" {
			return true
		}
	}
	return false
}
