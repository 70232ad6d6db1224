package qdrant

import "github.com/poiesic/quaero/core"

// The subset of the Qdrant REST schema used here.

type restPoint struct {
	ID      uint64             `json:"id"`
	Vector  []float32          `json:"vector,omitempty"`
	Payload core.PointMetadata `json:"payload"`
}

type upsertBody struct {
	Points []restPoint `json:"points"`
}

type searchBody struct {
	Vector         []float32 `json:"vector"`
	Limit          int       `json:"limit"`
	ScoreThreshold *float32  `json:"score_threshold,omitempty"`
	WithPayload    bool      `json:"with_payload"`
	WithVector     bool      `json:"with_vector"`
}

type scoredPoint struct {
	ID      uint64             `json:"id"`
	Score   float32            `json:"score"`
	Payload core.PointMetadata `json:"payload"`
}

type searchResponse struct {
	Result []scoredPoint `json:"result"`
}

type matchValue struct {
	Value string `json:"value"`
}

type fieldCondition struct {
	Key   string     `json:"key"`
	Match matchValue `json:"match"`
}

type filter struct {
	Must []fieldCondition `json:"must"`
}

type deleteBody struct {
	Filter filter `json:"filter"`
}

type scrollBody struct {
	Limit       int     `json:"limit"`
	Offset      *uint64 `json:"offset,omitempty"`
	WithPayload bool    `json:"with_payload"`
	WithVector  bool    `json:"with_vector"`
}

type scrollResponse struct {
	Result struct {
		Points         []restPoint `json:"points"`
		NextPageOffset *uint64     `json:"next_page_offset"`
	} `json:"result"`
}

type vectorParams struct {
	Size     int    `json:"size"`
	Distance string `json:"distance"`
}

type createCollectionBody struct {
	Vectors vectorParams `json:"vectors"`
}

type collectionResponse struct {
	Result struct {
		Status      string `json:"status"`
		PointsCount int    `json:"points_count"`
		Config      struct {
			Params struct {
				Vectors vectorParams `json:"vectors"`
			} `json:"params"`
		} `json:"config"`
	} `json:"result"`
}
