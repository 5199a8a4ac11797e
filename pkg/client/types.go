package client

// UploadResult is the response to an upload.
type UploadResult struct {
	Message  string `json:"message"`
	Filename string `json:"filename"`
}

// QueryResult is one retrieved chunk.
type QueryResult struct {
	Content string `json:"content"`
	Source  string `json:"source"`
	Page    int    `json:"page"`
}

// QueryResponse is the answer with its supporting chunks.
type QueryResponse struct {
	Results []QueryResult `json:"results"`
	Answer  string        `json:"answer"`
}

// Insight summarizes one document.
type Insight struct {
	Summary     string   `json:"summary"`
	KeyEntities []string `json:"key_entities"`
	Topics      []string `json:"topics"`
}

// Comparison contrasts two documents.
type Comparison struct {
	Similarities []string `json:"similarities"`
	Differences  []string `json:"differences"`
	Conclusion   string   `json:"conclusion"`
}

// QAItem is a synthesized question with its reference answer.
type QAItem struct {
	Question    string `json:"question"`
	TrueAnswer  string `json:"true_answer"`
	SourceChunk string `json:"source_chunk,omitempty"`
	SourceFile  string `json:"source_file,omitempty"`
}

// ScoredResult is the judge's verdict on one question.
type ScoredResult struct {
	Question        string   `json:"question"`
	TrueAnswer      string   `json:"true_answer"`
	GeneratedAnswer string   `json:"generated_answer"`
	Score           int      `json:"score"`
	Feedback        string   `json:"feedback"`
	RelevantChunks  []string `json:"relevant_chunks"`
}

// BatchFailure is an item the service could not score.
type BatchFailure struct {
	Index    int    `json:"index"`
	Question string `json:"question"`
	Error    string `json:"error"`
}

// BatchReport is the result of a server-side batch run.
type BatchReport struct {
	Results      []ScoredResult `json:"results"`
	AverageScore float64        `json:"average_score"`
	ScoredCount  int            `json:"scored_count"`
	Failed       []BatchFailure `json:"failed"`
}

// Health is the service health report.
type Health struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Token is an access token issued by /auth. Pass AccessToken to WithAPIKey.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}
