package domain

// ActiveDocument is the single document tools currently operate on.
type ActiveDocument struct {
	Identifier     string `json:"filename"`
	StorageLocator string `json:"path"`
}

// UploadedFile is owned by the upload registry. The identifier is the
// client-supplied name; a second upload with the same name replaces the first.
type UploadedFile struct {
	Identifier string `json:"filename"`
	StoredPath string `json:"path"`
	SizeBytes  int64  `json:"size_bytes"`
}
