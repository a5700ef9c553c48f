package config

const (
	EnvProjectID         = "SANITY_PROJECT_ID"
	EnvDataset           = "SANITY_DATASET"
	EnvToken             = "SANITY_API_TOKEN"
	EnvS3AccessKeyID     = "S3_ACCESS_KEY_ID"
	EnvS3SecretAccessKey = "S3_SECRET_ACCESS_KEY"
)

const (
	DraftStorageMemory = "memory"
	DraftStorageSQLite = "sqlite"

	UploadBackendSanity = "sanity"
	UploadBackendS3     = "s3"
)
