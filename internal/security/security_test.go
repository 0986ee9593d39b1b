package security

import (
	"strings"
	"testing"
	"time"
)

// ============================================================
// ContentSanitizer
// ============================================================

func TestSanitize_RemovesScriptTags(t *testing.T) {
	s := NewContentSanitizer()

	input := `<p>Great event</p><script>alert("xss")</script>`
	got := s.Sanitize(input)

	if strings.Contains(got, "<script>") || strings.Contains(got, "alert") {
		t.Errorf("script content should be removed, got %q", got)
	}
	if !strings.Contains(got, "<p>Great event</p>") {
		t.Errorf("allowed tags should survive, got %q", got)
	}
}

func TestSanitize_RemovesEventAttributes(t *testing.T) {
	s := NewContentSanitizer()

	got := s.Sanitize(`<p onclick="steal()">Details</p>`)
	if strings.Contains(got, "onclick") {
		t.Errorf("on* attributes should be removed, got %q", got)
	}
}

func TestSanitize_AddsSafeLinkAttributes(t *testing.T) {
	s := NewContentSanitizer()

	got := s.Sanitize(`<a href="https://example.com/venue">Venue map</a>`)
	if !strings.Contains(got, `target="_blank"`) {
		t.Errorf("links should open in a new tab, got %q", got)
	}
	if !strings.Contains(got, "noopener") || !strings.Contains(got, "noreferrer") {
		t.Errorf("links should carry rel restrictions, got %q", got)
	}
}

func TestSanitize_RemovesIframes(t *testing.T) {
	s := NewContentSanitizer()

	got := s.Sanitize(`<iframe src="https://evil.example.com"></iframe><ul><li>Doors open 18:00</li></ul>`)
	if strings.Contains(got, "iframe") {
		t.Errorf("iframes should be removed, got %q", got)
	}
	if !strings.Contains(got, "<li>Doors open 18:00</li>") {
		t.Errorf("list content should survive, got %q", got)
	}
}

func TestSanitize_EmptyInput(t *testing.T) {
	s := NewContentSanitizer()
	if got := s.Sanitize(""); got != "" {
		t.Errorf("Sanitize(\"\") = %q, want empty", got)
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	s := NewContentSanitizer()

	input := `<p>Line up: <strong>TBA</strong></p><script>x()</script>`
	once := s.Sanitize(input)
	twice := s.Sanitize(once)
	if once != twice {
		t.Errorf("sanitize should be idempotent: once=%q twice=%q", once, twice)
	}
}

// ============================================================
// SSRFGuard
// ============================================================

func TestValidateURL(t *testing.T) {
	guard := NewSSRFGuard()

	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"有効なhttps URL", "https://cdn.example.com/poster.png", false},
		{"有効なhttp URL", "http://images.example.com/a.jpg", false},
		{"空URL", "", true},
		{"スキームなし", "cdn.example.com/poster.png", true},
		{"ftpスキーム", "ftp://example.com/poster.png", true},
		{"javascriptスキーム", "javascript:alert(1)", true},
		{"localhost", "http://localhost/poster.png", true},
		{"ループバックIP", "http://127.0.0.1/poster.png", true},
		{"プライベートIP 10系", "http://10.0.0.5/poster.png", true},
		{"プライベートIP 192.168系", "http://192.168.1.10/poster.png", true},
		{"プライベートIP 172.16系", "http://172.16.0.1/poster.png", true},
		{"メタデータIP", "http://169.254.169.254/latest/meta-data/", true},
		{"IPv6ループバック", "http://[::1]/poster.png", true},
		{"グローバルIP", "http://93.184.216.34/poster.png", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := guard.ValidateURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
		})
	}
}

func TestNewSafeClient_ReturnsClient(t *testing.T) {
	guard := NewSSRFGuard()

	client := guard.NewSafeClient(5*time.Second, 5*1024*1024)
	if client == nil {
		t.Fatal("expected non-nil client")
	}
}

// ============================================================
// Excerpt
// ============================================================

func TestExcerpt_StripsTags(t *testing.T) {
	got := Excerpt(`<p>An <strong>amazing</strong> night of jazz.</p>`, 100)
	if got != "An amazing night of jazz." {
		t.Errorf("Excerpt = %q, want plain text", got)
	}
}

func TestExcerpt_SkipsScriptContent(t *testing.T) {
	got := Excerpt(`<p>Jazz night</p><script>var secret = 1;</script>`, 100)
	if strings.Contains(got, "secret") {
		t.Errorf("script content must not leak into excerpt, got %q", got)
	}
	if !strings.Contains(got, "Jazz night") {
		t.Errorf("visible text should survive, got %q", got)
	}
}

func TestExcerpt_CollapsesWhitespace(t *testing.T) {
	got := Excerpt("<p>Doors\n\n  open   at</p>  <p>18:00</p>", 100)
	if got != "Doors open at 18:00" {
		t.Errorf("Excerpt = %q, want collapsed whitespace", got)
	}
}

func TestExcerpt_TruncatesAtWordBoundary(t *testing.T) {
	got := Excerpt("<p>one two three four five six seven</p>", 14)
	if !strings.HasSuffix(got, "...") {
		t.Errorf("truncated excerpt should end with ellipsis, got %q", got)
	}
	if len([]rune(got)) > 17 {
		t.Errorf("excerpt too long: %q", got)
	}
	if strings.Contains(got, "three four") {
		t.Errorf("excerpt should be cut, got %q", got)
	}
}

func TestExcerpt_EmptyInput(t *testing.T) {
	if got := Excerpt("", 100); got != "" {
		t.Errorf("Excerpt(\"\") = %q, want empty", got)
	}
	if got := Excerpt("<p>x</p>", 0); got != "" {
		t.Errorf("Excerpt with maxRunes=0 = %q, want empty", got)
	}
}
