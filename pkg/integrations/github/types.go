package github

// FileContent is a decoded repository file together with the blob SHA
// GitHub uses as its optimistic concurrency token.
type FileContent struct {
	Path    string `json:"path"`
	SHA     string `json:"sha"`
	Size    int    `json:"size"`
	Content []byte `json:"-"`
}

// apiContentResponse is the internal GitHub API response for file content.
type apiContentResponse struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	SHA      string `json:"sha"`
	Type     string `json:"type"`
	Size     int    `json:"size"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

// apiPutRequest is the body of a contents PUT.
type apiPutRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	SHA     string `json:"sha,omitempty"`
	Branch  string `json:"branch,omitempty"`
}

type apiPutResponse struct {
	Content struct {
		SHA string `json:"sha"`
	} `json:"content"`
}
