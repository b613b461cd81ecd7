package handler

const (
	// RootPath is the root path of the JSON API.
	RootPath = "/api/"

	// RouterRootPath is the root path inside a route group.
	RouterRootPath = "/"

	// RBACPath is the root path of the RBAC administration routes.
	RBACPath = RootPath + "rbac/"

	// AuthPath is the root path of the account routes.
	AuthPath = RootPath + "auth/"

	// ErrNilACDFatalLogMsg is used if app or cfg or db var pointer is nil.
	ErrNilACDFatalLogMsg = "app, cfg or db is nil"
)
