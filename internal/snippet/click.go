package snippet

import (
	"strings"

	"github.com/user/webstat/internal/domain"
)

// ClassifyClick maps a clicked anchor's href to a click type, honoring the
// enabled options. Matching is case-insensitive. Returns ("", false) when
// the target matches no enabled pattern.
func ClassifyClick(href string, opts Options) (string, bool) {
	h := strings.ToLower(href)
	switch {
	case opts.Enabled(OptPhoneClicks) && strings.HasPrefix(h, "tel:"):
		return domain.ClickPhone, true
	case opts.Enabled(OptZaloClicks) && strings.Contains(h, "zalo.me"):
		return domain.ClickZalo, true
	case opts.Enabled(OptMessengerClicks) && strings.Contains(h, "m.me"):
		return domain.ClickMessenger, true
	}
	return "", false
}
