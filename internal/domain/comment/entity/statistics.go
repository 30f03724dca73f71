package entity

// Statistics aggregates comment activity for one target kind
type Statistics struct {
	TotalComments int64       `json:"totalComments"`
	Replies       int64       `json:"replies"`
	SinceCount    int64       `json:"sinceCount"`
	AvgPerTarget  float64     `json:"avgPerTarget"`
	TopTargets    []TopTarget `json:"topTargets"`
}

// TopTarget is a post or question with its comment count
type TopTarget struct {
	TargetID      string `json:"targetId"`
	CommentsCount int64  `json:"commentsCount"`
}
