package files

// uploadResponse mirrors what the web client expects after a successful upload
type uploadResponse struct {
	Success  bool   `json:"success" example:"true"`
	FileID   string `json:"fileId" example:"64f1c0d2a5b3e44e9c1a2b3c"`         // Blob store identifier
	FileURL  string `json:"fileUrl" example:"http://localhost:5013/file/64f1"` // Absolute download URL
	Filename string `json:"filename" example:"cat.png"`                        // Original client-side filename
}
