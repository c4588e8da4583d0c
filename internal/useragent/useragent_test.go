package useragent

import "testing"

func TestDetect(t *testing.T) {
	tests := []struct {
		name        string
		ua          string
		wantOS      string
		wantVersion string
	}{
		{
			name:        "windows 10",
			ua:          "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
			wantOS:      "Windows",
			wantVersion: "10",
		},
		{
			name:        "windows 7",
			ua:          "Mozilla/5.0 (Windows NT 6.1; WOW64) AppleWebKit/537.36",
			wantOS:      "Windows",
			wantVersion: "7",
		},
		{
			name:        "windows with unmapped NT version",
			ua:          "Mozilla/5.0 (Windows NT 5.1)",
			wantOS:      "Windows",
			wantVersion: "",
		},
		{
			name:        "macos with underscored version",
			ua:          "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15",
			wantOS:      "macOS",
			wantVersion: "10.15.7",
		},
		{
			name:        "android phone",
			ua:          "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36",
			wantOS:      "Android",
			wantVersion: "14",
		},
		{
			// Safari iPhone agents say "like Mac OS X", so the Mac family
			// matches first. Mirrors the snippet's detection.
			name:        "iphone safari classifies as mac",
			ua:          "Mozilla/5.0 (iPhone; CPU iPhone OS 17_5 like Mac OS X) AppleWebKit/605.1.15",
			wantOS:      "macOS",
			wantVersion: "",
		},
		{
			name:        "ios app agent",
			ua:          "MyApp/2.1 (iPhone; iOS 17_5; Scale/3.00)",
			wantOS:      "iOS",
			wantVersion: "17.5",
		},
		{
			name:        "desktop linux",
			ua:          "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36",
			wantOS:      "Linux",
			wantVersion: "",
		},
		{
			name:        "bot without platform",
			ua:          "curl/8.4.0",
			wantOS:      "unknown",
			wantVersion: "",
		},
		{
			name:        "empty string",
			ua:          "",
			wantOS:      "unknown",
			wantVersion: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os, version := Detect(tt.ua)
			if os != tt.wantOS || version != tt.wantVersion {
				t.Errorf("Detect(%q) = (%q, %q), want (%q, %q)", tt.ua, os, version, tt.wantOS, tt.wantVersion)
			}
		})
	}
}

// Android mentions Linux in the platform token; the Android family must win.
func TestDetectAndroidBeatsLinux(t *testing.T) {
	os, _ := Detect("Mozilla/5.0 (Linux; Android 13; SM-A536B)")
	if os != "Android" {
		t.Fatalf("expected Android, got %q", os)
	}
}
