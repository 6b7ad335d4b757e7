package inputs

// ConfigurationError reports run inputs that are missing, inconsistent or invalid.
// Message is surfaced verbatim as the run's failure.
type ConfigurationError struct {
	FieldName string
	Message   string
}

// Error returns the failure message.
func (configurationError ConfigurationError) Error() string {
	return configurationError.Message
}
