// internal/domain/common/image.go
package common

// Image is a reference to an object held by the image store.
// PublicID is the store-side key used for deletion.
type Image struct {
	PublicID string `json:"publicId" firestore:"publicId"`
	URL      string `json:"url" firestore:"url"`
}
