package model

// PresignedUpload : адрес для прямой загрузки в хранилище и будущий публичный адрес объекта
type PresignedUpload struct {
	UploadURL string
	Key       string
	URL       string
}
