package pipeline

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// =============================================================================
// Video Types
// =============================================================================

// VideoSource is a user-selected video waiting for, or undergoing, frame
// extraction. It is immutable once enqueued.
type VideoSource struct {
	Name        string
	Path        string
	ContentType string

	release     func()
	releaseOnce sync.Once
}

// NewVideoSource creates a VideoSource. release is called exactly once when
// the source is no longer needed; it may be nil.
func NewVideoSource(name, path, contentType string, release func()) *VideoSource {
	return &VideoSource{
		Name:        name,
		Path:        path,
		ContentType: contentType,
		release:     release,
	}
}

// Release frees the resources behind the source. Only the first call has an
// effect.
func (v *VideoSource) Release() {
	v.releaseOnce.Do(func() {
		if v.release != nil {
			v.release()
		}
	})
}

// videoExtensions lists file extensions accepted when no content type is known.
var videoExtensions = map[string]bool{
	".mp4": true, ".m4v": true, ".mov": true, ".webm": true,
	".mkv": true, ".avi": true, ".mpg": true, ".mpeg": true,
}

// IsVideo reports whether a file with the given name and content type should
// be treated as a video.
func IsVideo(name, contentType string) bool {
	if strings.HasPrefix(contentType, "video/") {
		return true
	}
	if contentType != "" && contentType != "application/octet-stream" {
		return false
	}
	dot := strings.LastIndex(name, ".")
	if dot < 0 {
		return false
	}
	return videoExtensions[strings.ToLower(name[dot:])]
}

// FrameHandler receives frames as they are captured. Returning an error stops
// extraction of the current video.
type FrameHandler func(frame ExtractedFrame) error

// ExtractedFrame is one still captured from a video.
type ExtractedFrame struct {
	ImageData        []byte
	MimeType         string
	TimestampSeconds float64
	SourceName       string
	Index            int
}

// =============================================================================
// Classification Types
// =============================================================================

// ClassificationJob is one unit of classification work. ID is assigned when
// the frame is extracted and never changes.
type ClassificationJob struct {
	ID               string
	ImageData        []byte
	MimeType         string
	TimestampSeconds float64
	SourceName       string
}

// NewJob wraps an extracted frame in a job with the given id.
func NewJob(id string, frame ExtractedFrame) ClassificationJob {
	return ClassificationJob{
		ID:               id,
		ImageData:        frame.ImageData,
		MimeType:         frame.MimeType,
		TimestampSeconds: frame.TimestampSeconds,
		SourceName:       frame.SourceName,
	}
}

// Category is one of the fixed classification dimensions.
type Category string

const (
	CategoryComposition Category = "composition"
	CategoryAction      Category = "action"
	CategoryLighting    Category = "lighting"
	CategoryColor       Category = "color"
	CategorySetting     Category = "setting"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryComposition,
	CategoryAction,
	CategoryLighting,
	CategoryColor,
	CategorySetting,
}

// ParseCategory maps a category name to a Category.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Categories {
		if c == known {
			return c, true
		}
	}
	return "", false
}

// Classification maps categories to short labels. A missing key means the
// category does not apply; empty labels are never stored.
type Classification map[Category]string

// NewClassification keeps only known categories with non-blank labels.
func NewClassification(raw map[string]string) Classification {
	c := make(Classification)
	for k, v := range raw {
		cat, ok := ParseCategory(k)
		if !ok {
			continue
		}
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		c[cat] = v
	}
	return c
}

// Empty reports whether no category is populated.
func (c Classification) Empty() bool {
	return len(c) == 0
}

// Values returns the populated labels in category order.
func (c Classification) Values() []string {
	values := make([]string, 0, len(c))
	for _, cat := range Categories {
		if v, ok := c[cat]; ok {
			values = append(values, v)
		}
	}
	return values
}

// UnmarshalJSON accepts any JSON object and keeps only known categories with
// string labels.
func (c *Classification) UnmarshalJSON(data []byte) error {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		return errors.New("classifications must be an object")
	}
	labels := make(map[string]string, len(raw))
	for k, v := range raw {
		if s, ok := v.(string); ok {
			labels[k] = s
		}
	}
	*c = NewClassification(labels)
	return nil
}

// MarshalJSON writes keys in category order so exports are stable.
func (c Classification) MarshalJSON() ([]byte, error) {
	var b strings.Builder
	b.WriteByte('{')
	first := true
	for _, cat := range Categories {
		v, ok := c[cat]
		if !ok {
			continue
		}
		if !first {
			b.WriteByte(',')
		}
		first = false
		key, _ := json.Marshal(string(cat))
		val, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		b.Write(key)
		b.WriteByte(':')
		b.Write(val)
	}
	b.WriteByte('}')
	return []byte(b.String()), nil
}

// =============================================================================
// Collection Types
// =============================================================================

// ReferenceImage is a labeled frame in the collection. ID equals the id of
// the job that produced it.
type ReferenceImage struct {
	ID               string         `json:"id"`
	Src              string         `json:"src"`
	Classifications  Classification `json:"classifications"`
	TimestampSeconds float64        `json:"timestampSeconds"`
	SourceName       string         `json:"sourceName"`
}

// NewReferenceImage builds the collection record for a classified job.
func NewReferenceImage(job ClassificationJob, c Classification) *ReferenceImage {
	return &ReferenceImage{
		ID:               job.ID,
		Src:              DataURL(job.MimeType, job.ImageData),
		Classifications:  c,
		TimestampSeconds: job.TimestampSeconds,
		SourceName:       job.SourceName,
	}
}

// Clone returns a deep copy.
func (r ReferenceImage) Clone() ReferenceImage {
	c := make(Classification, len(r.Classifications))
	for k, v := range r.Classifications {
		c[k] = v
	}
	r.Classifications = c
	return r
}

// DataURL embeds image bytes in a data URL.
func DataURL(mimeType string, data []byte) string {
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// ParseDataURL splits a base64 data URL into media type and bytes.
func ParseDataURL(src string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(src, "data:")
	if !ok {
		return "", nil, fmt.Errorf("not a data URL")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("malformed data URL")
	}
	mimeType, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return "", nil, fmt.Errorf("data URL is not base64 encoded")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decode data URL: %w", err)
	}
	return mimeType, data, nil
}

// SortedLabels returns the distinct labels of one category, sorted.
func SortedLabels(images []ReferenceImage, cat Category) []string {
	seen := make(map[string]bool)
	var labels []string
	for _, img := range images {
		v, ok := img.Classifications[cat]
		if !ok || seen[v] {
			continue
		}
		seen[v] = true
		labels = append(labels, v)
	}
	sort.Strings(labels)
	return labels
}
