package domain

import "time"

type AnalysisStatus string

const (
	AnalysisPending    AnalysisStatus = "pending"
	AnalysisProcessing AnalysisStatus = "processing"
	AnalysisCompleted  AnalysisStatus = "completed"
	AnalysisFailed     AnalysisStatus = "failed"
)

func ParseAnalysisStatus(s string) (AnalysisStatus, bool) {
	switch AnalysisStatus(s) {
	case AnalysisPending, AnalysisProcessing, AnalysisCompleted, AnalysisFailed:
		return AnalysisStatus(s), true
	default:
		return "", false
	}
}

// SkinAnalysis belongs to exactly one customer; ownership never transfers.
type SkinAnalysis struct {
	ID          int64          `json:"id"`
	CustomerID  int64          `json:"customerId"`
	Status      AnalysisStatus `json:"status"`
	SkinType    string         `json:"skinType,omitempty"`
	Concerns    []string       `json:"concerns,omitempty"`
	Score       int            `json:"score"`
	CreatedAt   time.Time      `json:"createdAt"`
	CompletedAt *time.Time     `json:"completedAt,omitempty"`
}

type CreateAnalysisRequest struct {
	SkinType string   `json:"skinType,omitempty"`
	Concerns []string `json:"concerns,omitempty"`
}

var validSkinTypes = map[string]bool{
	"":            true,
	"normal":      true,
	"dry":         true,
	"oily":        true,
	"combination": true,
	"sensitive":   true,
}

func (r *CreateAnalysisRequest) Validate() error {
	if !validSkinTypes[r.SkinType] {
		return ValidationError("unknown skin type")
	}
	if len(r.Concerns) > 10 {
		return ValidationError("too many concerns")
	}
	return nil
}

type AnalysisHistory struct {
	Analyses   []SkinAnalysis `json:"analyses"`
	TotalCount int64          `json:"totalCount"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	HasMore    bool           `json:"hasMore"`
}
