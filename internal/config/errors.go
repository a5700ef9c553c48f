package config

const (
	// Startup errors
	ErrStoreConfig           = "Invalid content store configuration"
	ErrInitializeDatabaseFmt = "Failed to initialize database: %w"

	// Editor errors
	ErrSubmissionInFlight  = "A submission for this draft is already in progress"
	ErrInternalServerError = "Internal server error"

	// Upload errors
	ErrUploadsUnavailable = "Image uploads to Sanity are currently unavailable. Please use one of the placeholder images below."
	ErrNoFileProvided     = "No file provided"
	ErrUnexpectedUpload   = "Unexpected response format from Sanity"

	// Submission errors
	ErrCreatePost = "There was an error creating your blog post. Please try again."
)
