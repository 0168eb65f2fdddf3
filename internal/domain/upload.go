package domain

// UploadSuccessMessage is the message field of every successful upload response
const UploadSuccessMessage = "File uploaded successfully"

// Multipart field names shared by the form and the handler
const (
	FieldFile = "file"
	FieldName = "name"
)

// UploadResponse is the JSON body of POST /api/upload on success
type UploadResponse struct {
	Message      string `json:"message"`
	Filename     string `json:"filename"`
	OriginalName string `json:"originalName"`
	URL          string `json:"url"`
}

// ErrorResponse is the JSON body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewUploadResponse builds the success body for a stored file
func NewUploadResponse(f *StoredFile) UploadResponse {
	return UploadResponse{
		Message:      UploadSuccessMessage,
		Filename:     f.Filename,
		OriginalName: f.OriginalName,
		URL:          f.URL,
	}
}
