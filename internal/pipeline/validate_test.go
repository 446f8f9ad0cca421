package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidator_Extension(t *testing.T) {
	v := NewValidator(DefaultAllowedExtensions, DefaultMaxFileSize)
	cases := []struct {
		filename string
		ok       bool
		msg      string
	}{
		{"scan.png", true, ""},
		{"scan.PNG", true, ""},
		{"scan.jpeg", true, ""},
		{"archive.tar.JpG", true, ""},
		{"scan.gif", false, "Invalid file type '.gif'. Allowed: jpeg, jpg, png"},
		{"", false, "Invalid file type '.'. Allowed: jpeg, jpg, png"},
		{"png", false, "Invalid file type '.'. Allowed: jpeg, jpg, png"},
		{"scan.", false, "Invalid file type '.'. Allowed: jpeg, jpg, png"},
	}
	for _, tc := range cases {
		err := v.CheckHeader(tc.filename, "image/png")
		if tc.ok {
			assert.NoError(t, err, tc.filename)
			continue
		}
		if assert.Error(t, err, tc.filename) {
			assert.True(t, IsValidation(err))
			assert.Equal(t, RuleExtension, ValidationRule(err))
			assert.Equal(t, tc.msg, err.Error())
		}
	}
}

func TestValidator_ContentType(t *testing.T) {
	v := NewValidator(DefaultAllowedExtensions, DefaultMaxFileSize)
	for _, ct := range []string{"image/png", "image/jpeg", "image/anything"} {
		assert.NoError(t, v.CheckHeader("a.png", ct), ct)
	}
	for _, ct := range []string{"", "text/plain", "application/octet-stream", "images/png", "IMAGE/PNG", "Image/jpeg", " image/png"} {
		err := v.CheckHeader("a.png", ct)
		if assert.Error(t, err, ct) {
			assert.Equal(t, RuleContentType, ValidationRule(err))
			assert.Equal(t, "File must be an image.", err.Error())
		}
	}
}

func TestValidator_ExtensionCheckedBeforeContentType(t *testing.T) {
	v := NewValidator(DefaultAllowedExtensions, DefaultMaxFileSize)
	err := v.CheckHeader("notes.txt", "text/plain")
	assert.Equal(t, RuleExtension, ValidationRule(err))
}

func TestValidator_Size(t *testing.T) {
	v := NewValidator(DefaultAllowedExtensions, DefaultMaxFileSize)
	assert.NoError(t, v.CheckSize(DefaultMaxFileSize))
	err := v.CheckSize(DefaultMaxFileSize + 1)
	if assert.Error(t, err) {
		assert.Equal(t, RuleSize, ValidationRule(err))
		assert.Equal(t, "File too large (10485761 bytes). Max: 10485760 bytes.", err.Error())
	}
}

func TestValidator_Validate(t *testing.T) {
	v := NewValidator([]string{"png"}, 4)
	assert.NoError(t, v.Validate(Upload{Filename: "a.png", ContentType: "image/png", Data: []byte("1234")}))
	err := v.Validate(Upload{Filename: "a.png", ContentType: "image/png", Data: []byte("12345")})
	assert.Equal(t, "File too large (5 bytes). Max: 4 bytes.", err.Error())
}
