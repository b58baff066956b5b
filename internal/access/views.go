package access

// View codes registered by the seeder and referenced by route gating.
// Administration screens add more at runtime.
const (
	ViewClients      = "CLIENTS"
	ViewCodeSetAdmin = "CODE_SETS_ADMIN"
	ViewAccessAdmin  = "ACCESS_ADMIN"
)
