package domain

import (
	"fmt"
	"strings"
)

// ImageURLs holds the image variants for a notification type.
type ImageURLs struct {
	SM string `json:"sm,omitempty" yaml:"sm,omitempty"`
	MD string `json:"md,omitempty" yaml:"md,omitempty"`
	LG string `json:"lg,omitempty" yaml:"lg,omitempty"`
}

// ScopeEntry describes one notification type an application can send.
type ScopeEntry struct {
	Name        string    `json:"name,omitempty" yaml:"name,omitempty"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	ImageURLs   ImageURLs `json:"imageUrls" yaml:"image_urls"`
}

// Subscription is the metadata an account holds for one application feed.
type Subscription struct {
	AppDomain   string                `json:"appDomain" yaml:"app_domain"`
	Name        string                `json:"name" yaml:"name"`
	Description string                `json:"description,omitempty" yaml:"description,omitempty"`
	Icons       []string              `json:"icons,omitempty" yaml:"icons,omitempty"`
	Scope       map[string]ScopeEntry `json:"scope,omitempty" yaml:"scope,omitempty"`
}

// Icon returns the primary application icon, or an empty string.
func (s *Subscription) Icon() string {
	if s == nil || len(s.Icons) == 0 {
		return ""
	}
	return s.Icons[0]
}

// ImageFor returns the medium image for a notification type.
func (s *Subscription) ImageFor(notificationType string) string {
	if s == nil || notificationType == "" {
		return ""
	}
	entry, ok := s.Scope[notificationType]
	if !ok {
		return ""
	}
	return entry.ImageURLs.MD
}

// DisplayName returns the name to show for the subscription, falling back to the domain.
func (s *Subscription) DisplayName() string {
	if s == nil {
		return ""
	}
	if strings.TrimSpace(s.Name) != "" {
		return s.Name
	}
	return s.AppDomain
}

// Validate validates the subscription metadata.
func (s *Subscription) Validate() error {
	if strings.TrimSpace(s.AppDomain) == "" {
		return fmt.Errorf("subscription app domain cannot be empty")
	}
	for typ := range s.Scope {
		if strings.TrimSpace(typ) == "" {
			return fmt.Errorf("subscription %s: scope type cannot be empty", s.AppDomain)
		}
	}
	return nil
}
