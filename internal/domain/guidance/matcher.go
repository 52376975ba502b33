package guidance

import (
	"strings"

	"frame-guide/internal/domain/entity"
)

// MatchByTranscript keeps the objects whose name occurs anywhere in the
// transcript, ignoring case. Input order is preserved.
func MatchByTranscript(objects []entity.DetectedObject, transcript string) []entity.DetectedObject {
	out := make([]entity.DetectedObject, 0, len(objects))
	text := strings.ToLower(transcript)
	if strings.TrimSpace(text) == "" {
		return out
	}
	for _, obj := range objects {
		name := strings.ToLower(strings.TrimSpace(obj.Name))
		if name == "" {
			continue
		}
		if strings.Contains(text, name) {
			out = append(out, obj)
		}
	}
	return out
}

// SelectPrimary picks the object to steer toward: the first transcript
// match when there is one, otherwise the first detection.
func SelectPrimary(objects []entity.DetectedObject, transcript string) (entity.DetectedObject, bool) {
	if len(objects) == 0 {
		return entity.DetectedObject{}, false
	}
	if matches := MatchByTranscript(objects, transcript); len(matches) > 0 {
		return matches[0], true
	}
	return objects[0], true
}
