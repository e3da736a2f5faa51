package models

import "time"

// Delete types reported for removed comments.
const (
	DeleteTypeUser  = "user"
	DeleteTypeAdmin = "admin"
)

// AgeBuckets are the six age-distribution keys the stats block reports.
var AgeBuckets = []string{"10s", "20s", "30s", "40s", "50s", "60s_above"}

// Comment is one comment on an article. CommentNo is the source-assigned
// identifier; it is only unique within its article. ParentCommentNo is a
// soft reference: the source may point at comments that were deleted or
// never collected, so no integrity is enforced.
type Comment struct {
	CommentNo       string     `json:"comment_no"`
	ParentCommentNo string     `json:"parent_comment_no,omitempty"`
	Content         string     `json:"content"`
	Username        string     `json:"username"`
	ProfileURL      string     `json:"profile_url,omitempty"`
	Timestamp       *time.Time `json:"timestamp,omitempty"`
	Likes           int        `json:"likes"`
	Dislikes        int        `json:"dislikes"`
	ReplyCount      int        `json:"reply_count"`
	IsReply         bool       `json:"is_reply"`
	IsDeleted       bool       `json:"is_deleted"`
	DeleteType      string     `json:"delete_type,omitempty"`
	CollectedAt     time.Time  `json:"collected_at"`
}

// GenderRatio holds commenter gender percentages.
type GenderRatio struct {
	Male   float64 `json:"male"`
	Female float64 `json:"female"`
}

// CommentStats is the aggregate statistics block, at most one per article.
// TotalCount comes from the page counter and may exceed the number of
// retrievable comments once deletions are factored in.
type CommentStats struct {
	TotalCount        int                `json:"total_count"`
	CurrentCount      int                `json:"current_count"`
	UserDeletedCount  int                `json:"user_deleted_count"`
	AdminDeletedCount int                `json:"admin_deleted_count"`
	GenderRatio       GenderRatio        `json:"gender_ratio"`
	AgeDistribution   map[string]float64 `json:"age_distribution"`
	CollectedAt       time.Time          `json:"collected_at"`
}

// EmptyCommentStats returns a zeroed stats block with all age buckets present.
func EmptyCommentStats() *CommentStats {
	dist := make(map[string]float64, len(AgeBuckets))
	for _, bucket := range AgeBuckets {
		dist[bucket] = 0
	}
	return &CommentStats{AgeDistribution: dist, CollectedAt: NowKST()}
}

// CommentBatch is the payload of a comments message. PublishedAt carries the
// article timestamp read from the comment page and is used to backfill
// Article.PublishedAt when metadata collection only produced a coarse date.
type CommentBatch struct {
	ArticleURL  string        `json:"article_url"`
	TotalCount  int           `json:"total_count"`
	PublishedAt *time.Time    `json:"published_at,omitempty"`
	Comments    []Comment     `json:"comments"`
	Stats       *CommentStats `json:"stats,omitempty"`
	CollectedAt time.Time     `json:"collected_at"`
}
