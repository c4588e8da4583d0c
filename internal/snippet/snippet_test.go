package snippet

import (
	"net/url"
	"reflect"
	"strings"
	"testing"

	"github.com/user/webstat/internal/domain"
)

func TestNewOptions(t *testing.T) {
	t.Run("Keeps Known Names Only", func(t *testing.T) {
		opts := NewOptions([]string{OptPhoneClicks, "pixel_spy", OptOSVersion})
		if !opts.Enabled(OptPhoneClicks) || !opts.Enabled(OptOSVersion) {
			t.Error("expected named options to be enabled")
		}
		if opts.Enabled("pixel_spy") {
			t.Error("unknown option must be dropped")
		}
		if opts.Enabled(OptZaloClicks) {
			t.Error("unnamed option must stay off")
		}
	})

	t.Run("List Returns Canonical Order", func(t *testing.T) {
		opts := NewOptions([]string{OptZaloClicks, OptVisitorMetrics, OptScreenDimensions})
		want := []string{OptVisitorMetrics, OptScreenDimensions, OptZaloClicks}
		if got := opts.List(); !reflect.DeepEqual(got, want) {
			t.Errorf("List() = %v, want %v", got, want)
		}
	})
}

func TestParseOptionsParam(t *testing.T) {
	tests := []struct {
		name  string
		param string
		want  []string
	}{
		{
			name:  "empty param yields all options",
			param: "",
			want:  DefaultOptions(),
		},
		{
			name:  "encoded json array",
			param: url.QueryEscape(`["phone_clicks","zalo_clicks"]`),
			want:  []string{OptPhoneClicks, OptZaloClicks},
		},
		{
			name:  "plain json array",
			param: `["os_version"]`,
			want:  []string{OptOSVersion},
		},
		{
			name:  "broken json falls back to defaults",
			param: `["os_version`,
			want:  DefaultOptions(),
		},
		{
			name:  "unknown names are filtered",
			param: `["phone_clicks","keylogger"]`,
			want:  []string{OptPhoneClicks},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseOptionsParam(tt.param).List(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassifyClick(t *testing.T) {
	all := NewOptions(DefaultOptions())

	tests := []struct {
		name     string
		href     string
		opts     Options
		wantType string
		wantOK   bool
	}{
		{
			name:     "tel link",
			href:     "tel:+84901234567",
			opts:     all,
			wantType: domain.ClickPhone,
			wantOK:   true,
		},
		{
			name:     "tel link uppercase scheme",
			href:     "TEL:+84901234567",
			opts:     all,
			wantType: domain.ClickPhone,
			wantOK:   true,
		},
		{
			name:     "zalo link",
			href:     "https://zalo.me/0901234567",
			opts:     all,
			wantType: domain.ClickZalo,
			wantOK:   true,
		},
		{
			name:     "messenger link",
			href:     "https://m.me/shop.page",
			opts:     all,
			wantType: domain.ClickMessenger,
			wantOK:   true,
		},
		{
			name:   "ordinary link",
			href:   "https://example.com/pricing",
			opts:   all,
			wantOK: false,
		},
		{
			name:   "phone clicks disabled",
			href:   "tel:+84901234567",
			opts:   NewOptions([]string{OptZaloClicks}),
			wantOK: false,
		},
		{
			name:   "zalo clicks disabled",
			href:   "https://zalo.me/0901234567",
			opts:   NewOptions([]string{OptPhoneClicks}),
			wantOK: false,
		},
		{
			name:   "empty href",
			href:   "",
			opts:   all,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clickType, ok := ClassifyClick(tt.href, tt.opts)
			if ok != tt.wantOK || clickType != tt.wantType {
				t.Errorf("ClassifyClick(%q) = (%q, %v), want (%q, %v)", tt.href, clickType, ok, tt.wantType, tt.wantOK)
			}
		})
	}
}

func TestBuildScriptURL(t *testing.T) {
	opts := NewOptions([]string{OptPhoneClicks, OptVisitorMetrics})
	got := BuildScriptURL("/tracker.js", "shop.example.com", opts)

	u, err := url.Parse(got)
	if err != nil {
		t.Fatalf("generated URL does not parse: %v", err)
	}
	q := u.Query()
	if q.Get("id") != "shop.example.com" {
		t.Errorf("id = %q", q.Get("id"))
	}
	if q.Get("options") != `["visitor_metrics","phone_clicks"]` {
		t.Errorf("options = %q", q.Get("options"))
	}
}

func TestGenerateEmbed(t *testing.T) {
	embed := GenerateEmbed("https://stats.example.com/tracker.js", NewOptions(DefaultOptions()))

	if !strings.HasPrefix(embed, "<script>") || !strings.HasSuffix(embed, "</script>") {
		t.Fatal("embed is not a script tag")
	}
	if !strings.Contains(embed, "window.location.hostname") {
		t.Error("embed must derive the site id from the host page")
	}
	if !strings.Contains(embed, `"messenger_clicks"`) {
		t.Error("embed must serialize the enabled options")
	}
	if !strings.Contains(embed, "https://stats.example.com/tracker.js?id=") {
		t.Error("embed must point at the tracker URL")
	}
}
