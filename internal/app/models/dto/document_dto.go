package dto

// Document types accepted by the generator
const (
	DocumentTypeEnquiry   = "enquiry"
	DocumentTypeAdmission = "admission"
)

// GenerateDocumentRequest selects the record to render.
type GenerateDocumentRequest struct {
	Type string `json:"type" binding:"required" example:"admission"`
	ID   string `json:"id" binding:"required" example:"5b0e7f9c-3c55-4a53-9a43-0d1d2b1c0f11"`
}

// GeneratedDocument is a rendered printable document.
type GeneratedDocument struct {
	Filename    string
	ContentType string
	Pages       int
	Data        []byte
}
