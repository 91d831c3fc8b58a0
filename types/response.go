package types

type DataResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type SearchDocumentsResponse struct {
	Query   string       `json:"query"`
	Mode    string       `json:"mode"`
	Count   int          `json:"count"`
	Results []RankedItem `json:"results"`
}

type HealthResponse struct {
	Embeddings    bool `json:"embeddings"`
	DocumentIndex bool `json:"document_index"`
	HubIndex      bool `json:"hub_index"`
	Generator     bool `json:"generator"`
	Metadata      bool `json:"metadata"`
}
