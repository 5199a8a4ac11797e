package chi

import (
	"encoding/json"
	"fmt"

	domeval "github.com/kailas-cloud/docinsight/internal/domain/evaluation"
)

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type uploadResponse struct {
	Message  string `json:"message"`
	Filename string `json:"filename"`
}

type documentsResponse struct {
	Documents []string `json:"documents"`
}

type sourcesResponse struct {
	Sources []string `json:"sources"`
}

type queryResult struct {
	Content string `json:"content"`
	Source  string `json:"source"`
	Page    int    `json:"page"`
}

type queryResponse struct {
	Results []queryResult `json:"results"`
	Answer  string        `json:"answer"`
}

type testSetResponse struct {
	TestSet []domeval.QAItem `json:"test_set"`
}

type scoreRequest struct {
	Question   string   `json:"question"`
	TrueAnswer string   `json:"true_answer"`
	Files      []string `json:"files"`
}

type batchRequest struct {
	Items []domeval.QAItem `json:"items"`
	Files []string         `json:"files"`
}

type batchFailure struct {
	Index    int    `json:"index"`
	Question string `json:"question"`
	Error    string `json:"error"`
}

type batchResponse struct {
	Results      []domeval.ScoredResult `json:"results"`
	AverageScore float64                `json:"average_score"`
	ScoredCount  int                    `json:"scored_count"`
	Failed       []batchFailure         `json:"failed"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// generateRequest accepts either a bare JSON array of filenames or
// an object with optional files and num_samples.
type generateRequest struct {
	Files      []string
	NumSamples *int
}

func (g *generateRequest) UnmarshalJSON(data []byte) error {
	var files []string
	if err := json.Unmarshal(data, &files); err == nil {
		g.Files = files
		return nil
	}

	var obj struct {
		Files      []string `json:"files"`
		NumSamples *int     `json:"num_samples"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("body must be a list of filenames or an object: %w", err)
	}
	g.Files, g.NumSamples = obj.Files, obj.NumSamples
	return nil
}

func reportToResponse(rep domeval.Report) batchResponse {
	failed := make([]batchFailure, len(rep.Failures))
	for i, f := range rep.Failures {
		failed[i] = batchFailure{Index: f.Index, Question: f.Question, Error: outcomeMessage(f.Err)}
	}
	results := rep.Results
	if results == nil {
		results = []domeval.ScoredResult{}
	}
	return batchResponse{
		Results:      results,
		AverageScore: rep.AverageScore,
		ScoredCount:  rep.ScoredCount,
		Failed:       failed,
	}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}
