package catalog

import (
	"fmt"
	"strings"
)

// ServiceRecord is the loosely-typed on-disk shape of one catalog entry, as
// read from YAML. Some fields left empty fall back to the document's
// defaults record (see mergeDefaults) before placeholder expansion runs. This mirrors the source design's
// reflection-based field projection, reimplemented as an explicit
// field-by-field merge (see DESIGN.md) rather than via reflection.
type ServiceRecord struct {
	ID           string   `yaml:"id"`
	Name         string   `yaml:"name"`
	ClientID     string   `yaml:"client_id"`
	ClientSecret string   `yaml:"client_secret"`
	AuthURL      string   `yaml:"auth_url"`
	LoginURL     string   `yaml:"login_url"`
	Scope        string   `yaml:"scope"`
	RedirectURI  string   `yaml:"redirect_uri"`
	ExtraURL     string   `yaml:"extra_url"`
	ServiceLink  string   `yaml:"service_link"`
	DeAuthLink   string   `yaml:"de_auth_link"`
	BrandImage   string   `yaml:"brand_image"`
	Notes        string   `yaml:"notes"`

	Hidden                         bool     `yaml:"hidden"`
	NoStateForTokenRequest         bool     `yaml:"no_state_for_token_request"`
	NoRedirectURIForRefreshRequest bool     `yaml:"no_redirect_uri_for_refresh_request"`
	CliToken                       bool     `yaml:"cli_token"`
	PreferV2                       bool     `yaml:"prefer_v2"`
	AccessTokenOnly                bool     `yaml:"access_token_only"`
	UseHostnameFromCallback        bool     `yaml:"use_hostname_from_callback"`
	AdditionalElements             []string `yaml:"additional_elements"`
}

// catalogFile is the top-level shape of the CONFIGFILE document.
type catalogFile struct {
	Defaults ServiceRecord   `yaml:"defaults"`
	Services []ServiceRecord `yaml:"services"`
}

// mergeDefaults fills the empty URL, scope, link, image and notes fields of
// r from defaults. ID, Name, ClientID and ClientSecret are never defaulted.
// Booleans and the AdditionalElements slice are not defaulted either: a
// provider that wants a flag on must set it explicitly.
func mergeDefaults(r, defaults ServiceRecord) ServiceRecord {
	if r.AuthURL == "" {
		r.AuthURL = defaults.AuthURL
	}
	if r.LoginURL == "" {
		r.LoginURL = defaults.LoginURL
	}
	if r.Scope == "" {
		r.Scope = defaults.Scope
	}
	if r.RedirectURI == "" {
		r.RedirectURI = defaults.RedirectURI
	}
	if r.ExtraURL == "" {
		r.ExtraURL = defaults.ExtraURL
	}
	if r.ServiceLink == "" {
		r.ServiceLink = defaults.ServiceLink
	}
	if r.DeAuthLink == "" {
		r.DeAuthLink = defaults.DeAuthLink
	}
	if r.BrandImage == "" {
		r.BrandImage = defaults.BrandImage
	}
	if r.Notes == "" {
		r.Notes = defaults.Notes
	}
	return r
}

// expandPlaceholders runs literal string substitution over every string
// field of r: %OAUTH_CALLBACK_URI%, %HOSTNAME%, and %<SECRET_NAME>% for any
// name present in secrets. Expansion happens after default-resolution.
func expandPlaceholders(r ServiceRecord, hostname string, secrets map[string]string) ServiceRecord {
	callbackURI := fmt.Sprintf("https://%s/logged-in", hostname)

	expand := func(s string) string {
		s = strings.ReplaceAll(s, "%OAUTH_CALLBACK_URI%", callbackURI)
		s = strings.ReplaceAll(s, "%HOSTNAME%", hostname)
		for name, value := range secrets {
			s = strings.ReplaceAll(s, "%"+name+"%", value)
		}
		return s
	}

	r.ClientID = expand(r.ClientID)
	r.ClientSecret = expand(r.ClientSecret)
	r.AuthURL = expand(r.AuthURL)
	r.LoginURL = expand(r.LoginURL)
	r.Scope = expand(r.Scope)
	r.RedirectURI = expand(r.RedirectURI)
	r.ExtraURL = expand(r.ExtraURL)
	r.ServiceLink = expand(r.ServiceLink)
	r.DeAuthLink = expand(r.DeAuthLink)
	r.BrandImage = expand(r.BrandImage)
	r.Notes = expand(r.Notes)
	return r
}

// toServiceConfig projects a fully-resolved ServiceRecord onto the strict
// ServiceConfig the rest of the broker consumes.
func toServiceConfig(r ServiceRecord) ServiceConfig {
	return ServiceConfig{
		ID:                             r.ID,
		Name:                           r.Name,
		ClientID:                       r.ClientID,
		ClientSecret:                   r.ClientSecret,
		AuthURL:                        r.AuthURL,
		LoginURL:                       r.LoginURL,
		Scope:                          r.Scope,
		RedirectURI:                    r.RedirectURI,
		ExtraURL:                       r.ExtraURL,
		ServiceLink:                    r.ServiceLink,
		DeAuthLink:                     r.DeAuthLink,
		BrandImage:                     r.BrandImage,
		Notes:                          r.Notes,
		Hidden:                         r.Hidden,
		NoStateForTokenRequest:         r.NoStateForTokenRequest,
		NoRedirectURIForRefreshRequest: r.NoRedirectURIForRefreshRequest,
		CliToken:                       r.CliToken,
		PreferV2:                       r.PreferV2,
		AccessTokenOnly:                r.AccessTokenOnly,
		UseHostnameFromCallback:        r.UseHostnameFromCallback,
		AdditionalElements:             r.AdditionalElements,
	}
}
