package service

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// contentPolicy keeps the formatting editors produce and strips scripts and handlers.
func contentPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowDataURIImages()
	return policy
}

func sanitizeContent(policy *bluemonday.Policy, value string) string {
	return strings.TrimSpace(policy.Sanitize(value))
}
