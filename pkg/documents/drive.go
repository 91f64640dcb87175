package documents

import (
	"net/url"
	"regexp"
	"strings"
)

var driveFileID = regexp.MustCompile(`[-\w]{25,}`)

// DownloadURL turns a Drive view link into a direct download link. Links that
// carry no Drive file id are returned unchanged.
func DownloadURL(imageRef string) string {
	imageRef = strings.TrimSpace(imageRef)
	if imageRef == "" || !strings.Contains(imageRef, "drive.google.com") {
		return imageRef
	}
	id := driveFileID.FindString(imageRef)
	if id == "" {
		return imageRef
	}
	q := url.Values{}
	q.Set("export", "download")
	q.Set("id", id)
	return "https://drive.google.com/uc?" + q.Encode()
}
