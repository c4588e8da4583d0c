package snippet

import (
	"encoding/json"
	"fmt"
	"net/url"
)

// BuildScriptURL returns the tracker script URL for a site with the enabled
// options serialized the way the browser snippet expects: id as the site
// domain and options as a URL-encoded JSON array in canonical order.
func BuildScriptURL(trackerURL, siteDomain string, opts Options) string {
	names, _ := json.Marshal(opts.List())
	return fmt.Sprintf("%s?id=%s&options=%s",
		trackerURL,
		url.QueryEscape(siteDomain),
		url.QueryEscape(string(names)),
	)
}

// GenerateEmbed renders the inline script tag an operator pastes into their
// site. The injected script picks up the page's own hostname as the site id.
func GenerateEmbed(trackerURL string, opts Options) string {
	names, _ := json.Marshal(opts.List())
	return fmt.Sprintf(`<script>
  (function() {
    var trackingOptions = %s;
    var scriptElement = document.createElement('script');
    scriptElement.async = true;
    scriptElement.src = '%s?id=' + window.location.hostname + '&options=' + encodeURIComponent(JSON.stringify(trackingOptions));
    document.head.appendChild(scriptElement);
  })();
</script>`, string(names), trackerURL)
}
