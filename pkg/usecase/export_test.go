package usecase

// ValidateWebhookURL is exported for testing
var ValidateWebhookURL = validateWebhookURL

// FirstNonEmpty is exported for testing
var FirstNonEmpty = firstNonEmpty
