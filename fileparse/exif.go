package fileparse

import (
	"os"

	exif "github.com/dsoprea/go-exif/v3"
	goexif "github.com/rwcarlsen/goexif/exif"
	log "github.com/sirupsen/logrus"
)

// CameraFields are the EXIF fields a real camera normally writes.
var CameraFields = []string{"Make", "Model", "LensModel", "FocalLength", "ISOSpeedRatings"}

// ExtractFlatExif searches a file for an EXIF block and returns every tag as
// a name -> formatted-string pair. Files without EXIF (or with an
// unparseable block) yield nil.
func ExtractFlatExif(path string) map[string]string {
	rawExif, err := exif.SearchFileAndExtractExif(path)
	if err != nil {
		return nil
	}
	entries, _, err := exif.GetFlatExifData(rawExif, nil)
	if err != nil {
		log.Debugf("exif parse failed for %s: %v", path, err)
		return nil
	}
	tags := make(map[string]string, len(entries))
	for _, e := range entries {
		if e.TagName != "" {
			tags[e.TagName] = e.Formatted
		}
	}
	return tags
}

// MissingCameraFields returns which of the standard camera fields are absent
// from the file's EXIF block, using a structured decode so typed-but-empty
// tags still count as present.
func MissingCameraFields(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return append([]string(nil), CameraFields...)
	}
	defer f.Close()

	x, err := goexif.Decode(f)
	if err != nil {
		return append([]string(nil), CameraFields...)
	}
	var missing []string
	for _, name := range CameraFields {
		if _, err := x.Get(goexif.FieldName(name)); err != nil {
			missing = append(missing, name)
		}
	}
	return missing
}
