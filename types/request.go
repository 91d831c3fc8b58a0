package types

type UploadRequest struct {
	Filename   string   `json:"filename"`
	UploadedBy string   `json:"uploaded_by"`
	Tags       []string `json:"tags"`
}

type SearchDocumentsRequest struct {
	Query string `json:"query"`
	Top   int    `json:"top,omitempty"`
	Mode  string `json:"mode,omitempty"`
}
