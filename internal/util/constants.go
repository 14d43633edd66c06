package util

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

// gin context keys
const ContextUserKey = "user"
