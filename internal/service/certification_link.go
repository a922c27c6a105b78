package service

import (
	"fmt"
	"net/url"
	"strings"
)

// CertificationLinkBuilder builds the certification link placed in outgoing
// mail. The link points at the UI origin, which calls back into the API with
// the raw token.
type CertificationLinkBuilder struct {
	baseURL string
}

// NewCertificationLinkBuilder creates a builder for the given UI origin,
// e.g. "https://app.example.com".
func NewCertificationLinkBuilder(baseURL string) *CertificationLinkBuilder {
	return &CertificationLinkBuilder{baseURL: strings.TrimRight(baseURL, "/")}
}

// Build returns the certification link carrying the raw token.
func (b *CertificationLinkBuilder) Build(token string) string {
	return fmt.Sprintf("%s/account/certification?token=%s", b.baseURL, url.QueryEscape(token))
}
