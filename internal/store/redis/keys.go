package redis

const (
	// KeyPrefix namespaces every key written by summon
	KeyPrefix = "summon:"
	// KeySnapshot holds the catalog snapshot
	KeySnapshot = KeyPrefix + "snapshot"
	// KeyUsage holds the launch counts
	KeyUsage = KeyPrefix + "usage"
)
