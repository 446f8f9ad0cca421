package pipeline

import (
	"fmt"
	"sort"
	"strings"
)

// Upload is a single uploaded file as received from the transport layer.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Validator rejects uploads before any decoding is attempted.
type Validator struct {
	allowed     map[string]struct{}
	allowedList string
	maxSize     int64
}

// NewValidator builds a Validator for the given extensions (lowercase, no
// dot) and maximum size in bytes.
func NewValidator(allowed []string, maxSize int64) Validator {
	set := make(map[string]struct{}, len(allowed))
	list := make([]string, 0, len(allowed))
	for _, e := range allowed {
		if _, ok := set[e]; ok {
			continue
		}
		set[e] = struct{}{}
		list = append(list, e)
	}
	sort.Strings(list)
	return Validator{allowed: set, allowedList: strings.Join(list, ", "), maxSize: maxSize}
}

// Validate runs the extension, content type and size checks in that order
// and returns the first failure.
func (v Validator) Validate(u Upload) error {
	if err := v.CheckHeader(u.Filename, u.ContentType); err != nil {
		return err
	}
	return v.CheckSize(int64(len(u.Data)))
}

// CheckHeader validates the declared filename and content type.
func (v Validator) CheckHeader(filename, contentType string) error {
	ext := extensionOf(filename)
	if _, ok := v.allowed[ext]; !ok {
		return validationError{
			rule: RuleExtension,
			msg:  fmt.Sprintf("Invalid file type '.%s'. Allowed: %s", ext, v.allowedList),
		}
	}
	if !strings.HasPrefix(contentType, "image/") {
		return validationError{rule: RuleContentType, msg: "File must be an image."}
	}
	return nil
}

// CheckSize validates the byte length of a fully read upload.
func (v Validator) CheckSize(n int64) error {
	if n > v.maxSize {
		return validationError{
			rule: RuleSize,
			msg:  fmt.Sprintf("File too large (%d bytes). Max: %d bytes.", n, v.maxSize),
		}
	}
	return nil
}

// extensionOf returns the lowercased text after the last dot of filename, or
// "" when there is no dot.
func extensionOf(filename string) string {
	i := strings.LastIndexByte(filename, '.')
	if i < 0 {
		return ""
	}
	return strings.ToLower(filename[i+1:])
}
