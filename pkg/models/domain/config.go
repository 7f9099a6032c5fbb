package domain

import (
	"fmt"
	"strings"
)

// Provider selects the scan export layout and the preset category map
type Provider string

const (
	ProviderAWS Provider = "aws"
	ProviderGCP Provider = "gcp"
)

// ParseProvider accepts aws or gcp; an empty value means aws
func ParseProvider(raw string) (Provider, error) {
	switch p := Provider(strings.ToLower(strings.TrimSpace(raw))); p {
	case "":
		return ProviderAWS, nil
	case ProviderAWS, ProviderGCP:
		return p, nil
	}
	return "", fmt.Errorf("unknown provider %q", raw)
}

// Categories returns the preset category map of the provider
func (p Provider) Categories() CategoryMap {
	if p == ProviderGCP {
		return GCPCategories()
	}
	return AWSCategories()
}

func (p Provider) String() string {
	return string(p)
}
