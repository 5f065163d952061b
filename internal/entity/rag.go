package entity

// RetrievedPassage is one reference passage returned by the vector store.
// Score is nil when the store does not report one.
type RetrievedPassage struct {
	Text  string   `json:"text"`
	Score *float64 `json:"score,omitempty"`
}

type RetrieveRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

type GraphQLRequest struct {
	Query string `json:"query"`
}

type GraphQLError struct {
	Message string `json:"message"`
}

type GraphQLResponse struct {
	Data   map[string]map[string][]map[string]any `json:"data"`
	Errors []GraphQLError                         `json:"errors,omitempty"`
}
