package config

// NewAuthForTest creates an Auth config for testing purposes
func NewAuthForTest(audience, jwksURL, noAuthUID, noAuthEmail, noAuthName string) *Auth {
	return &Auth{
		audience:    audience,
		jwksURL:     jwksURL,
		noAuthUID:   noAuthUID,
		noAuthEmail: noAuthEmail,
		noAuthName:  noAuthName,
	}
}

// NewRepositoryForTest creates a Repository config for testing purposes
func NewRepositoryForTest(backend, projectID, databaseID, prefix string) *Repository {
	return &Repository{
		backend:    backend,
		projectID:  projectID,
		databaseID: databaseID,
		prefix:     prefix,
	}
}

// NewStorageForTest creates a Storage config for testing purposes
func NewStorageForTest(backend, bucket string) *Storage {
	return &Storage{
		backend: backend,
		bucket:  bucket,
	}
}

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{
		level:  level,
		format: format,
		output: output,
	}
}

// NewNotificationForTest creates a Notification config for testing purposes
func NewNotificationForTest(defaultWebhook string, disableSlack bool) *Notification {
	return &Notification{
		defaultWebhook: defaultWebhook,
		disableSlack:   disableSlack,
	}
}
