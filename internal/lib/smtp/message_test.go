package smtp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildMessage(t *testing.T) {
	tests := []struct {
		name        string
		to          []string
		subject     string
		wantTo      string
		wantSubject string
	}{
		{
			name:        "ascii subject",
			to:          []string{"ann@example.com"},
			subject:     "Payment receipt",
			wantTo:      "To: ann@example.com",
			wantSubject: "Subject: Payment receipt",
		},
		{
			name:        "non-ascii subject is encoded",
			to:          []string{"a@x.io", "b@x.io"},
			subject:     "Оплата",
			wantTo:      "To: a@x.io, b@x.io",
			wantSubject: "Subject: =?utf-8?q?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := string(BuildMessage("robot@iqfit.io", tt.to, tt.subject, "hello"))

			headers, body, found := strings.Cut(msg, "\r\n\r\n")
			assert.True(t, found)
			assert.Equal(t, "hello", body)
			assert.Contains(t, headers, "From: robot@iqfit.io")
			assert.Contains(t, headers, tt.wantTo)
			assert.Contains(t, headers, tt.wantSubject)
			assert.Contains(t, headers, "Content-Type: text/plain; charset=\"UTF-8\"")
		})
	}
}
