package collectors

import (
	"embed"
	"encoding/json"
	"net/url"
	"strings"
)

//go:embed publisher_domain_mapping.json
var mappingFS embed.FS

var publisherMapping = loadPublisherMapping()

func loadPublisherMapping() map[string]string {
	data, err := mappingFS.ReadFile("publisher_domain_mapping.json")
	if err != nil {
		return map[string]string{}
	}
	var file struct {
		Mapping map[string]string `json:"mapping"`
	}
	if err := json.Unmarshal(data, &file); err != nil {
		return map[string]string{}
	}
	return file.Mapping
}

// extractDomain returns the host part of a link without any www prefix,
// or "" for garbage input.
func extractDomain(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Host, "www.")
}

// publisherFromDomain maps an outlet domain to its display name. Unknown
// domains map to "" and the caller keeps whatever name the page showed.
func publisherFromDomain(domain string) string {
	domain = strings.TrimPrefix(domain, "www.")
	return publisherMapping[domain]
}
