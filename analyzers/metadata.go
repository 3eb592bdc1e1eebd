package analyzers

import (
	"path/filepath"
	"strings"

	"github.com/synthscan/synthscan/config"
	"github.com/synthscan/synthscan/fileparse"
)

// MetadataAnalyzer scans file and container metadata for synthetic-origin
// markers.
type MetadataAnalyzer struct {
	cfg *config.Config
}

// NewMetadataAnalyzer creates a metadata analyzer.
func NewMetadataAnalyzer(cfg *config.Config) *MetadataAnalyzer {
	return &MetadataAnalyzer{cfg: cfg}
}

// ExifResult describes the EXIF scan of one file.
type ExifResult struct {
	HasExif             bool     `json:"has_exif"`
	Suspicious          bool     `json:"suspicious"`
	AIIndicators        []string `json:"ai_indicators"`
	MissingCameraFields []string `json:"missing_camera_fields,omitempty"`
}

// C2PAResult describes the embedded-credential check.
type C2PAResult struct {
	C2PAFound   bool    `json:"c2pa_found"`
	IsSynthetic bool    `json:"is_synthetic"`
	Confidence  float64 `json:"confidence"`
}

// PNGResult describes the PNG text-chunk scan.
type PNGResult struct {
	HasMetadata  bool     `json:"has_metadata"`
	AIIndicators []string `json:"ai_indicators"`
	Suspicious   bool     `json:"suspicious"`
}

// MetadataResult is the combined metadata probe outcome.
type MetadataResult struct {
	MetadataSuspicious bool     `json:"metadata_suspicious"`
	C2PASynthetic      bool     `json:"c2pa_synthetic"`
	Indicators         []string `json:"indicators"`

	Exif *ExifResult `json:"exif,omitempty"`
	C2PA *C2PAResult `json:"c2pa,omitempty"`
	PNG  *PNGResult  `json:"png,omitempty"`
}

// Analyze inspects the metadata of the file at path. For video only the MP4
// atom scan runs; for images the EXIF, container-text and C2PA scans run.
func (a *MetadataAnalyzer) Analyze(path string, isVideo bool) MetadataResult {
	if isVideo {
		indicators := a.scanVideo(path)
		return MetadataResult{
			MetadataSuspicious: len(indicators) > 0,
			Indicators:         indicators,
		}
	}

	ext := strings.ToLower(filepath.Ext(path))

	var general []string
	exifResult := a.analyzeExif(path, &general)
	c2paResult := a.analyzeC2PA(path, ext, &general)

	var pngResult *PNGResult
	var jpegIndicators []string
	switch ext {
	case ".png":
		pngResult = a.analyzePNGText(path)
	case ".jpg", ".jpeg":
		jpegIndicators = a.scanJPEGSegments(path)
	}

	indicators := append([]string(nil), exifResult.AIIndicators...)
	if pngResult != nil {
		indicators = append(indicators, pngResult.AIIndicators...)
	}
	indicators = append(indicators, jpegIndicators...)
	indicators = append(indicators, general...)

	suspicious := exifResult.Suspicious || (pngResult != nil && pngResult.Suspicious) || len(jpegIndicators) > 0

	return MetadataResult{
		MetadataSuspicious: suspicious,
		C2PASynthetic:      c2paResult.IsSynthetic,
		Indicators:         indicators,
		Exif:               exifResult,
		C2PA:               c2paResult,
		PNG:                pngResult,
	}
}

func (a *MetadataAnalyzer) analyzeExif(path string, general *[]string) *ExifResult {
	tags := fileparse.ExtractFlatExif(path)
	if tags == nil {
		*general = append(*general, "No EXIF data (suspicious for real camera)")
		return &ExifResult{HasExif: false, Suspicious: true}
	}

	var indicators []string

	software := strings.ToLower(tags["Software"])
	for _, tag := range a.cfg.AISoftwareTags {
		if strings.Contains(software, tag) {
			indicators = append(indicators, "AI software detected: "+tag)
		}
	}

	for _, value := range tags {
		valueLower := strings.ToLower(value)
		for _, marker := range a.cfg.AIWatermarkStrings {
			if strings.Contains(valueLower, marker) {
				indicators = append(indicators, "AI watermark in EXIF: "+marker)
			}
		}
	}

	missing := fileparse.MissingCameraFields(path)
	if len(missing) >= 3 {
		*general = append(*general, "Missing camera metadata")
	}

	return &ExifResult{
		HasExif:             true,
		Suspicious:          len(indicators) > 0 || len(missing) >= 3,
		AIIndicators:        indicators,
		MissingCameraFields: missing,
	}
}

func (a *MetadataAnalyzer) analyzePNGText(path string) *PNGResult {
	chunks := fileparse.ReadPNGChunks(path)
	texts := fileparse.ExtractPNGTextChunks(chunks)

	var indicators []string
	for _, t := range texts {
		keywordLower := strings.ToLower(t.Keyword)
		textLower := strings.ToLower(t.Text)

		for _, marker := range a.cfg.AIWatermarkStrings {
			if strings.Contains(keywordLower, marker) || strings.Contains(textLower, marker) {
				indicators = append(indicators, "AI indicator in PNG: "+marker)
			}
		}
		if strings.Contains(keywordLower, "software") {
			for _, tag := range a.cfg.AISoftwareTags {
				if strings.Contains(textLower, tag) {
					indicators = append(indicators, "AI software in PNG: "+tag)
				}
			}
		}
	}

	return &PNGResult{
		HasMetadata:  len(texts) > 0,
		AIIndicators: indicators,
		Suspicious:   len(indicators) > 0,
	}
}

func (a *MetadataAnalyzer) scanJPEGSegments(path string) []string {
	var indicators []string
	for _, seg := range fileparse.ReadJPEGSegments(path) {
		payload := lowerLatin1(seg.Data)
		for _, marker := range matchAny(payload, a.cfg.AIWatermarkStrings) {
			indicators = append(indicators, "AI watermark in JPEG: "+marker)
		}
	}
	return indicators
}

func (a *MetadataAnalyzer) analyzeC2PA(path, ext string, general *[]string) *C2PAResult {
	found := false
	synthetic := false

	check := func(payload string) {
		if strings.Contains(payload, "c2pa") || strings.Contains(payload, "content credentials") {
			found = true
			if strings.Contains(payload, "synthetic") || strings.Contains(payload, "ai") {
				synthetic = true
			}
		}
	}

	switch ext {
	case ".jpg", ".jpeg":
		for _, seg := range fileparse.ReadJPEGSegments(path) {
			check(lowerLatin1(seg.Data))
		}
	case ".png":
		for _, t := range fileparse.ExtractPNGTextChunks(fileparse.ReadPNGChunks(path)) {
			check(strings.ToLower(t.Keyword + t.Text))
		}
	}

	if synthetic {
		*general = append(*general, "C2PA indicates synthetic content")
	}
	confidence := 0.0
	if synthetic {
		confidence = 1.0
	}
	return &C2PAResult{C2PAFound: found, IsSynthetic: synthetic, Confidence: confidence}
}

func (a *MetadataAnalyzer) scanVideo(path string) []string {
	var indicators []string
	for _, atom := range fileparse.ParseMP4Atoms(path) {
		payload := lowerLatin1(atom.Data)
		for _, marker := range matchAny(payload, a.cfg.AIWatermarkStrings) {
			indicators = append(indicators, "AI watermark in video: "+marker)
		}
		for _, encoder := range matchAny(payload, a.cfg.SyntheticEncoders) {
			indicators = append(indicators, "Synthetic encoder: "+encoder)
		}
	}
	return indicators
}
