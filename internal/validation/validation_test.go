package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	t.Parallel()
	// 254 chars total: 64 local + @ + 185 domain label + ".com" (4)
	emailAt254 := strings.Repeat("a", 64) + "@" + strings.Repeat("b", 185) + ".com"
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"Valid", "test@example.com", false},
		{"Exactly 254 Characters", emailAt254, false},
		{"Too Long", "a" + emailAt254, true},
		{"Invalid Format", "not-an-email", true},
		{"Missing Domain", "user@", true},
		{"Multiple At Symbols", "user@@example.com", true},
		{"Space In Local Part", "user @example.com", true},
		{"Trailing Dot In Domain", "user@example.com.", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateDisplayName(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"Valid", "Alice Smith", false},
		{"Unicode", "Zoë Åberg", false},
		{"Empty", "", true},
		{"Blank", "   ", true},
		{"Leading Space", " Alice", true},
		{"Control Char", "Al\x00ice", true},
		{"Exactly 100", strings.Repeat("é", 100), false},
		{"Too Long", strings.Repeat("a", 101), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDisplayName(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePostText(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		text    string
		wantErr bool
	}{
		{"Valid", "Day at the beach", false},
		{"Multiline", "line one\nline two", false},
		{"Empty", "", true},
		{"Whitespace Only", " \n\t", true},
		{"Invalid UTF-8", "bad \xff byte", true},
		{"At Limit", strings.Repeat("ü", MaxPostTextLength), false},
		{"Over Limit", strings.Repeat("a", MaxPostTextLength+1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePostText(tt.text)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateCircleIDs(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateCircleIDs([]uint{1, 2}))
	assert.NoError(t, ValidateCircleIDs(nil))
	assert.NoError(t, ValidateCircleIDs([]uint{}))
	assert.Error(t, ValidateCircleIDs([]uint{3, 0}))

	many := make([]uint, MaxCirclesPerPost+1)
	for i := range many {
		many[i] = uint(i + 1)
	}
	assert.Error(t, ValidateCircleIDs(many))
	assert.NoError(t, ValidateCircleIDs(many[:MaxCirclesPerPost]))
}
