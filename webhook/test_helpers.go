package webhook

import "github.com/stretchr/testify/mock"

// MatchWebhook creates a custom matcher for webhook arguments in mocks
func MatchWebhook(matcher func(Webhook) bool) interface{} {
	return mock.MatchedBy(matcher)
}

// MatchCapture creates a custom matcher for capture arguments in mocks
func MatchCapture(matcher func(Capture) bool) interface{} {
	return mock.MatchedBy(matcher)
}
